// Package corpus enumerates and reads candidate TEI documents under a
// corpus root directory.
package corpus

import (
	"io/fs"
	"path/filepath"
	"strings"

	serrors "github.com/scriptorium-project/scriptorium/core/errors"
)

// excludedNames are known non-content files shipped inside Perseus corpus
// trees: the per-work CTS metadata index and build artifacts. Excluded by
// exact name match regardless of location.
var excludedNames = map[string]struct{}{
	"__cts__.xml":      {},
	"build.xml":        {},
	"collection.xconf": {},
}

// Scan enumerates document files recursively under root. The order is the
// deterministic filesystem traversal order (lexical within each directory);
// ordering across files is irrelevant to correctness since each file maps
// to an independent record.
func Scan(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if IsDocument(d.Name()) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, &serrors.IOError{Operation: "scan", Path: root, Err: err}
	}
	return files, nil
}

// IsDocument reports whether a file name is a candidate corpus document:
// a .xml file (optionally xz-compressed) that is not a known non-content
// file.
func IsDocument(name string) bool {
	base := strings.TrimSuffix(name, ".xz")
	if _, excluded := excludedNames[base]; excluded {
		return false
	}
	return strings.HasSuffix(base, ".xml")
}
