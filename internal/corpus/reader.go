package corpus

import (
	"io"
	"os"
	"strings"

	"github.com/ulikunitz/xz"

	serrors "github.com/scriptorium-project/scriptorium/core/errors"
)

// ReadDocument reads a corpus document, transparently decompressing
// xz-compressed files. Corpus snapshots are sometimes distributed with
// per-file xz compression to keep multi-thousand-file trees small.
func ReadDocument(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &serrors.IOError{Operation: "open", Path: path, Err: err}
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".xz") {
		xr, err := xz.NewReader(f)
		if err != nil {
			return nil, &serrors.IOError{Operation: "decompress", Path: path, Err: err}
		}
		r = xr
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &serrors.IOError{Operation: "read", Path: path, Err: err}
	}
	return data, nil
}
