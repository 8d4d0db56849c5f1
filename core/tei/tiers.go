package tei

import (
	"strconv"

	"github.com/scriptorium-project/scriptorium/core/cts"
	"github.com/scriptorium-project/scriptorium/core/xml"
)

// A tier is one heuristic for locating content within a document body.
// Tiers are applied in order and the first one that yields at least one
// segment wins, which keeps each heuristic independently testable.
type tier struct {
	name    string
	extract func(body *xml.Node) ([]Segment, error)
}

var tiers = []tier{
	{name: "textpart", extract: extractTextparts},
	{name: "line", extract: extractLines},
	{name: "paragraph", extract: extractParagraphs},
}

func extractSegments(doc *xml.Document) ([]Segment, error) {
	body, err := doc.XPathFirst("//body")
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, nil
	}
	for _, t := range tiers {
		segments, err := t.extract(body)
		if err != nil {
			return nil, err
		}
		if len(segments) > 0 {
			return segments, nil
		}
	}
	return nil, nil
}

// extractTextparts handles texts divided into books/chapters: each
// div[@type='textpart'] in document order, its line elements within. The
// sequence counter is shared across the whole document, not reset per part.
func extractTextparts(body *xml.Node) ([]Segment, error) {
	parts, err := body.XPath(".//div[@type='textpart']")
	if err != nil {
		return nil, err
	}

	var segments []Segment
	sequence := 0
	for _, part := range parts {
		book := part.Attr("n")
		lines, err := part.XPath(".//l")
		if err != nil {
			return nil, err
		}
		for _, line := range lines {
			content := normalizeText(line)
			if content == "" {
				continue
			}
			ref := cts.Ref{Book: book, Line: line.Attr("n")}
			segments = append(segments, Segment{
				Book:      book,
				Line:      ref.Line,
				Reference: ref.Reference(),
				Content:   content,
				Sequence:  sequence,
			})
			sequence++
		}
	}
	return segments, nil
}

// extractLines handles texts without textpart divisions: line elements
// anywhere under the body, with an empty book label.
func extractLines(body *xml.Node) ([]Segment, error) {
	lines, err := body.XPath(".//l")
	if err != nil {
		return nil, err
	}

	var segments []Segment
	sequence := 0
	for _, line := range lines {
		content := normalizeText(line)
		if content == "" {
			continue
		}
		ref := cts.Ref{Line: line.Attr("n")}
		segments = append(segments, Segment{
			Line:      ref.Line,
			Reference: ref.Reference(),
			Content:   content,
			Sequence:  sequence,
		})
		sequence++
	}
	return segments, nil
}

// extractParagraphs is the last resort for prose without line markup:
// paragraph elements, with the 1-based ordinal position standing in for the
// line label.
func extractParagraphs(body *xml.Node) ([]Segment, error) {
	paras, err := body.XPath(".//p")
	if err != nil {
		return nil, err
	}

	var segments []Segment
	sequence := 0
	for idx, para := range paras {
		content := normalizeText(para)
		if content == "" {
			continue
		}
		ordinal := strconv.Itoa(idx + 1)
		segments = append(segments, Segment{
			Line:      ordinal,
			Reference: ordinal,
			Content:   content,
			Sequence:  sequence,
		})
		sequence++
	}
	return segments, nil
}
