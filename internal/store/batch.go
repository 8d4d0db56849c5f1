package store

import (
	"database/sql"
	"encoding/json"

	serrors "github.com/scriptorium-project/scriptorium/core/errors"
)

// Batch is one ingestion transaction. Writes are invisible to readers until
// Commit; HasText sees the batch's own uncommitted inserts, which is what
// the orchestrator's dedup check needs within a checkpoint window.
//
// Each document's text and segments should be bracketed by BeginDocument /
// CommitDocument so that a mid-document failure can be rolled back with
// AbandonDocument without poisoning the rest of the batch.
type Batch struct {
	tx *sql.Tx
}

// Begin starts a new ingestion batch.
func (s *Store) Begin() (*Batch, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, &serrors.StoreError{Operation: "begin", Err: err}
	}
	return &Batch{tx: tx}, nil
}

// HasText reports whether a text with the URN exists, including rows
// inserted earlier in this batch.
func (b *Batch) HasText(urn string) (bool, error) {
	var n int
	if err := b.tx.QueryRow("SELECT COUNT(*) FROM texts WHERE urn = ?", urn).Scan(&n); err != nil {
		return false, &serrors.StoreError{Operation: "dedup check", Err: err}
	}
	return n > 0, nil
}

// InsertText inserts a canonical text and returns its generated primary key.
func (b *Batch) InsertText(t *Text) (int64, error) {
	metadata := "{}"
	if t.Metadata != nil {
		encoded, err := json.Marshal(t.Metadata)
		if err != nil {
			return 0, &serrors.StoreError{Operation: "encode metadata", Err: err}
		}
		metadata = string(encoded)
	}
	isFragment := 0
	if t.IsFragment {
		isFragment = 1
	}
	res, err := b.tx.Exec(
		"INSERT INTO texts (urn, author, title, language, is_fragment, metadata, source_hash) VALUES (?, ?, ?, ?, ?, ?, ?)",
		t.URN, t.Author, t.Title, t.Language, isFragment, metadata, t.SourceHash)
	if err != nil {
		return 0, &serrors.StoreError{Operation: "insert text", Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, &serrors.StoreError{Operation: "insert text", Err: err}
	}
	t.ID = id
	return id, nil
}

// InsertSegment inserts one segment under the given parent text.
func (b *Batch) InsertSegment(textID int64, seg *Segment) error {
	_, err := b.tx.Exec(
		"INSERT INTO text_segments (text_id, book, line, reference, sequence, content) VALUES (?, ?, ?, ?, ?, ?)",
		textID, seg.Book, seg.Line, seg.Reference, seg.Sequence, seg.Content)
	if err != nil {
		return &serrors.StoreError{Operation: "insert segment", Err: err}
	}
	return nil
}

// DeleteAllSegments removes every segment. Children are deleted before
// parents when clearing the corpus.
func (b *Batch) DeleteAllSegments() error {
	if _, err := b.tx.Exec("DELETE FROM text_segments"); err != nil {
		return &serrors.StoreError{Operation: "delete segments", Err: err}
	}
	return nil
}

// DeleteAllTexts removes every canonical text.
func (b *Batch) DeleteAllTexts() error {
	if _, err := b.tx.Exec("DELETE FROM texts"); err != nil {
		return &serrors.StoreError{Operation: "delete texts", Err: err}
	}
	return nil
}

// BeginDocument opens a savepoint around one document's writes.
func (b *Batch) BeginDocument() error {
	if _, err := b.tx.Exec("SAVEPOINT document"); err != nil {
		return &serrors.StoreError{Operation: "savepoint", Err: err}
	}
	return nil
}

// CommitDocument releases the document savepoint, making the document's
// writes part of the batch.
func (b *Batch) CommitDocument() error {
	if _, err := b.tx.Exec("RELEASE SAVEPOINT document"); err != nil {
		return &serrors.StoreError{Operation: "release savepoint", Err: err}
	}
	return nil
}

// AbandonDocument rolls back the current document's writes only, leaving
// the rest of the batch intact.
func (b *Batch) AbandonDocument() error {
	if _, err := b.tx.Exec("ROLLBACK TO SAVEPOINT document"); err != nil {
		return &serrors.StoreError{Operation: "rollback savepoint", Err: err}
	}
	if _, err := b.tx.Exec("RELEASE SAVEPOINT document"); err != nil {
		return &serrors.StoreError{Operation: "release savepoint", Err: err}
	}
	return nil
}

// Commit commits the batch.
func (b *Batch) Commit() error {
	if err := b.tx.Commit(); err != nil {
		return &serrors.StoreError{Operation: "commit", Err: err}
	}
	return nil
}

// Rollback discards all uncommitted writes in the batch.
func (b *Batch) Rollback() error {
	if err := b.tx.Rollback(); err != nil {
		return &serrors.StoreError{Operation: "rollback", Err: err}
	}
	return nil
}
