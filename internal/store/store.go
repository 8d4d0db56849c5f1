// Package store persists canonical texts and their segments in SQLite.
//
// Two drivers are supported, selected at build time exactly like the rest
// of the toolchain: the pure Go modernc.org/sqlite driver by default, or
// mattn/go-sqlite3 with -tags cgo_sqlite.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	serrors "github.com/scriptorium-project/scriptorium/core/errors"
)

// Text is one canonical literary work/edition. The URN is unique across the
// store and is the sole deduplication key.
type Text struct {
	ID         int64
	URN        string
	Author     string
	Title      string
	Language   string
	IsFragment bool
	Metadata   map[string]any
	SourceHash string
}

// Segment is one addressable unit of content belonging to exactly one Text.
// Sequence is the only authoritative ordering field; references are display
// keys and not guaranteed sortable.
type Segment struct {
	ID        int64
	TextID    int64
	Book      string
	Line      string
	Reference string
	Sequence  int
	Content   string
}

// Stats summarizes store contents.
type Stats struct {
	Texts    int
	Segments int
}

const schema = `
CREATE TABLE IF NOT EXISTS texts (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	urn         TEXT NOT NULL UNIQUE,
	author      TEXT NOT NULL DEFAULT 'Unknown',
	title       TEXT NOT NULL DEFAULT 'Unknown',
	language    TEXT NOT NULL,
	is_fragment INTEGER NOT NULL DEFAULT 0,
	metadata    TEXT NOT NULL DEFAULT '{}',
	source_hash TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_texts_author   ON texts(author);
CREATE INDEX IF NOT EXISTS idx_texts_language ON texts(language);

CREATE TABLE IF NOT EXISTS text_segments (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	text_id   INTEGER NOT NULL REFERENCES texts(id) ON DELETE CASCADE,
	book      TEXT NOT NULL DEFAULT '',
	line      TEXT NOT NULL DEFAULT '',
	reference TEXT NOT NULL,
	sequence  INTEGER NOT NULL,
	content   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_segments_text           ON text_segments(text_id);
CREATE INDEX IF NOT EXISTS idx_segments_text_reference ON text_segments(text_id, reference);
CREATE INDEX IF NOT EXISTS idx_segments_text_sequence  ON text_segments(text_id, sequence);
`

// Store is a SQLite-backed persistent store.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) a store at the given path and ensures
// the schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, &serrors.StoreError{Operation: "open", Err: err}
	}
	// SQLite allows one writer; a single connection avoids SQLITE_BUSY
	// churn during batch ingestion.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, &serrors.StoreError{Operation: "init schema", Err: err}
	}
	return &Store{db: db}, nil
}

// DriverType returns "purego" or "cgo" depending on the build.
func DriverType() string {
	return driverType
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// CountTexts returns the number of canonical texts in the store.
func (s *Store) CountTexts() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM texts").Scan(&n); err != nil {
		return 0, &serrors.StoreError{Operation: "count texts", Err: err}
	}
	return n, nil
}

// FindTextByURN returns the text with the given URN, or nil when absent.
func (s *Store) FindTextByURN(urn string) (*Text, error) {
	row := s.db.QueryRow(
		"SELECT id, urn, author, title, language, is_fragment, metadata, source_hash FROM texts WHERE urn = ?", urn)
	return scanText(row)
}

// Stats returns text and segment counts.
func (s *Store) Stats() (Stats, error) {
	var st Stats
	if err := s.db.QueryRow("SELECT COUNT(*) FROM texts").Scan(&st.Texts); err != nil {
		return st, &serrors.StoreError{Operation: "count texts", Err: err}
	}
	if err := s.db.QueryRow("SELECT COUNT(*) FROM text_segments").Scan(&st.Segments); err != nil {
		return st, &serrors.StoreError{Operation: "count segments", Err: err}
	}
	return st, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanText(row rowScanner) (*Text, error) {
	var t Text
	var isFragment int
	var metadata string
	err := row.Scan(&t.ID, &t.URN, &t.Author, &t.Title, &t.Language, &isFragment, &metadata, &t.SourceHash)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, &serrors.StoreError{Operation: "scan text", Err: err}
	}
	t.IsFragment = isFragment != 0
	if metadata != "" {
		if err := json.Unmarshal([]byte(metadata), &t.Metadata); err != nil {
			return nil, &serrors.StoreError{Operation: "decode metadata", Message: fmt.Sprintf("text %s: %v", t.URN, err)}
		}
	}
	return &t, nil
}

func scanSegment(row rowScanner) (*Segment, error) {
	var seg Segment
	err := row.Scan(&seg.ID, &seg.TextID, &seg.Book, &seg.Line, &seg.Reference, &seg.Sequence, &seg.Content)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, &serrors.StoreError{Operation: "scan segment", Err: err}
	}
	return &seg, nil
}
