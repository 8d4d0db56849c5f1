package cts

import (
	"fmt"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Ref is one passage endpoint within a text: an optional book label plus a
// line label, e.g. "1.25" (book 1, line 25) or "7" (bare line).
type Ref struct {
	Book string `parser:"@Part"`
	Line string `parser:"( '.' @Part )?"`
}

// Passage is a parsed passage reference, either a single endpoint or a
// contiguous range between two endpoints, e.g. "1.25" or "1.25-2.3".
type Passage struct {
	Start Ref  `parser:"@@"`
	End   *Ref `parser:"( '-' @@ )?"`
}

// referenceLexer tokenizes passage references. Labels may be alphanumeric
// ("1", "25a", "pr" for a praefatio).
var referenceLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Part", Pattern: `[0-9A-Za-z]+`},
	{Name: "Dot", Pattern: `\.`},
	{Name: "Dash", Pattern: `-`},
})

var referenceParser = participle.MustBuild[Passage](
	participle.Lexer(referenceLexer),
)

// ParsePassage parses a passage reference string.
// Supported forms:
//   - "1.25" (book.line)
//   - "7" (bare line, unstructured text)
//   - "1.25-1.30" (range within a book)
//   - "1.25-2.3" (range across books)
func ParsePassage(input string) (*Passage, error) {
	p, err := referenceParser.ParseString("", input)
	if err != nil {
		return nil, fmt.Errorf("failed to parse reference %q: %w", input, err)
	}
	p.Start.normalize()
	if p.End != nil {
		p.End.normalize()
	}
	return p, nil
}

// ParseRef parses a single passage endpoint, rejecting ranges.
func ParseRef(input string) (*Ref, error) {
	p, err := ParsePassage(input)
	if err != nil {
		return nil, err
	}
	if p.End != nil {
		return nil, fmt.Errorf("expected a single reference, got range %q", input)
	}
	return &p.Start, nil
}

// normalize fixes up the grammar's greedy capture: a bare "7" parses with
// Book set and Line empty, but semantically it is a bare line.
func (r *Ref) normalize() {
	if r.Line == "" {
		r.Book, r.Line = "", r.Book
	}
}

// Reference returns the display key: "book.line" when the book label is
// present, otherwise the bare line label.
func (r *Ref) Reference() string {
	if r.Book != "" {
		return r.Book + "." + r.Line
	}
	return r.Line
}

// String returns the canonical form of the passage.
func (p *Passage) String() string {
	if p.End == nil {
		return p.Start.Reference()
	}
	return p.Start.Reference() + "-" + p.End.Reference()
}
