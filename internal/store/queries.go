package store

import (
	"strings"

	serrors "github.com/scriptorium-project/scriptorium/core/errors"
)

// TextFilter selects texts for listing. Zero values mean "no filter".
type TextFilter struct {
	Search   string // substring match against author or title
	Author   string // substring match against author
	Language string // exact language code
	Limit    int    // default 50
	Offset   int
}

const textColumns = "id, urn, author, title, language, is_fragment, metadata, source_hash"

// ListTexts lists and searches texts, ordered by author then title.
func (s *Store) ListTexts(f TextFilter) ([]*Text, error) {
	var where []string
	var args []any
	if f.Search != "" {
		where = append(where, "(author LIKE ? OR title LIKE ?)")
		pattern := "%" + f.Search + "%"
		args = append(args, pattern, pattern)
	}
	if f.Author != "" {
		where = append(where, "author LIKE ?")
		args = append(args, "%"+f.Author+"%")
	}
	if f.Language != "" {
		where = append(where, "language = ?")
		args = append(args, f.Language)
	}

	query := "SELECT " + textColumns + " FROM texts"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY author, title LIMIT ? OFFSET ?"
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, f.Offset)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, &serrors.StoreError{Operation: "list texts", Err: err}
	}
	defer rows.Close()

	var texts []*Text
	for rows.Next() {
		t, err := scanText(rows)
		if err != nil {
			return nil, err
		}
		texts = append(texts, t)
	}
	if err := rows.Err(); err != nil {
		return nil, &serrors.StoreError{Operation: "list texts", Err: err}
	}
	return texts, nil
}

// GetText returns the text with the given URN or a NotFoundError.
func (s *Store) GetText(urn string) (*Text, error) {
	t, err := s.FindTextByURN(urn)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, &serrors.NotFoundError{Resource: "text", ID: urn}
	}
	return t, nil
}

// SegmentPage is one page of a text's segments in document order.
type SegmentPage struct {
	Segments []*Segment
	Total    int
}

const segmentColumns = "id, text_id, book, line, reference, sequence, content"

// Segments returns a page of a text's segments ordered by sequence.
func (s *Store) Segments(urn string, offset, limit int) (*SegmentPage, error) {
	t, err := s.GetText(urn)
	if err != nil {
		return nil, err
	}

	page := &SegmentPage{}
	if err := s.db.QueryRow("SELECT COUNT(*) FROM text_segments WHERE text_id = ?", t.ID).Scan(&page.Total); err != nil {
		return nil, &serrors.StoreError{Operation: "count segments", Err: err}
	}

	if limit <= 0 {
		limit = 1000
	}
	rows, err := s.db.Query(
		"SELECT "+segmentColumns+" FROM text_segments WHERE text_id = ? ORDER BY sequence LIMIT ? OFFSET ?",
		t.ID, limit, offset)
	if err != nil {
		return nil, &serrors.StoreError{Operation: "list segments", Err: err}
	}
	defer rows.Close()

	for rows.Next() {
		seg, err := scanSegment(rows)
		if err != nil {
			return nil, err
		}
		page.Segments = append(page.Segments, seg)
	}
	if err := rows.Err(); err != nil {
		return nil, &serrors.StoreError{Operation: "list segments", Err: err}
	}
	return page, nil
}

// SegmentByReference returns one segment of a text by its display reference.
func (s *Store) SegmentByReference(urn, reference string) (*Segment, error) {
	t, err := s.GetText(urn)
	if err != nil {
		return nil, err
	}
	seg, err := scanSegment(s.db.QueryRow(
		"SELECT "+segmentColumns+" FROM text_segments WHERE text_id = ? AND reference = ?", t.ID, reference))
	if err != nil {
		return nil, err
	}
	if seg == nil {
		return nil, &serrors.NotFoundError{Resource: "segment", ID: urn + ":" + reference}
	}
	return seg, nil
}

// SegmentRange returns the contiguous run of segments between two reference
// endpoints, inclusive. Endpoints are resolved to sequence numbers first;
// reference strings are never compared lexically.
func (s *Store) SegmentRange(urn, start, end string) ([]*Segment, error) {
	startSeg, err := s.SegmentByReference(urn, start)
	if err != nil {
		return nil, err
	}
	endSeg, err := s.SegmentByReference(urn, end)
	if err != nil {
		return nil, err
	}

	lo, hi := startSeg.Sequence, endSeg.Sequence
	if lo > hi {
		lo, hi = hi, lo
	}

	rows, err := s.db.Query(
		"SELECT "+segmentColumns+" FROM text_segments WHERE text_id = ? AND sequence BETWEEN ? AND ? ORDER BY sequence",
		startSeg.TextID, lo, hi)
	if err != nil {
		return nil, &serrors.StoreError{Operation: "segment range", Err: err}
	}
	defer rows.Close()

	var segments []*Segment
	for rows.Next() {
		seg, err := scanSegment(rows)
		if err != nil {
			return nil, err
		}
		segments = append(segments, seg)
	}
	if err := rows.Err(); err != nil {
		return nil, &serrors.StoreError{Operation: "segment range", Err: err}
	}
	return segments, nil
}
