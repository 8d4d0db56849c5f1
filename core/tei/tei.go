// Package tei parses Perseus-style TEI XML documents into canonical text
// records with ordered content segments.
//
// Corpus documents are inconsistently structured, so segment extraction
// applies a tiered fallback: explicit textpart divisions first, then bare
// line elements, then paragraphs. A document that yields no identifier or
// no segments is rejected with a typed error; rejection is an expected
// outcome on a real corpus, not an exceptional one.
package tei

import (
	"encoding/hex"
	"os"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/scriptorium-project/scriptorium/core/cts"
	serrors "github.com/scriptorium-project/scriptorium/core/errors"
	"github.com/scriptorium-project/scriptorium/core/xml"
)

// Document is one parsed literary work/edition.
type Document struct {
	URN        string
	Author     string
	Title      string
	Language   string
	IsFragment bool
	Metadata   map[string]any
	Segments   []Segment
	SourceHash string // BLAKE3 of the raw document bytes
}

// Segment is one addressable unit of content (line or paragraph).
type Segment struct {
	Book      string
	Line      string
	Reference string
	Content   string
	Sequence  int
}

const unknown = "Unknown"

// ParseFile reads and parses a single TEI document from disk.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &serrors.IOError{Operation: "read", Path: path, Err: err}
	}
	return Parse(data, path)
}

// Parse parses raw TEI document bytes. The name is used in error context
// only. Returns a typed ParseError when the document is unusable: malformed
// markup, no edition identifier, or no extractable content.
func Parse(data []byte, name string) (*Document, error) {
	doc, err := xml.Parse(data)
	if err != nil {
		return nil, &serrors.ParseError{Format: "TEI", Path: name, Message: "malformed markup", Err: err}
	}

	edition, err := doc.XPathFirst("//div[@type='edition']")
	if err != nil {
		return nil, &serrors.ParseError{Format: "TEI", Path: name, Message: "edition query failed", Err: err}
	}
	if edition == nil || edition.Attr("n") == "" {
		return nil, &serrors.ParseError{Format: "TEI", Path: name, Message: "no edition identifier", Err: serrors.ErrNoIdentifier}
	}
	urn := edition.Attr("n")

	language := edition.Attr("xml:lang")
	if language == "" {
		language = cts.InferLanguage(urn)
	}

	metadata := extractMetadata(doc)

	segments, err := extractSegments(doc)
	if err != nil {
		return nil, &serrors.ParseError{Format: "TEI", Path: name, Message: "segment extraction failed", Err: err}
	}
	if len(segments) == 0 {
		return nil, &serrors.ParseError{Format: "TEI", Path: name, Message: "no extractable segments", Err: serrors.ErrNoContent}
	}

	hash := blake3.Sum256(data)

	result := &Document{
		URN:      urn,
		Author:   unknown,
		Title:    unknown,
		Language: language,
		// TODO: no header signal distinguishes fragmentary inscriptions
		// from complete editions yet; always false until one exists.
		IsFragment: false,
		Metadata:   metadata,
		Segments:   segments,
		SourceHash: hex.EncodeToString(hash[:]),
	}
	if author, ok := metadata["author"].(string); ok {
		result.Author = author
	}
	if title, ok := metadata["title"].(string); ok {
		result.Title = title
	}
	return result, nil
}

// extractMetadata pulls descriptive fields from the teiHeader. Every field
// is optional; absence is not an error.
func extractMetadata(doc *xml.Document) map[string]any {
	metadata := make(map[string]any)

	header, err := doc.XPathFirst("//teiHeader")
	if err != nil || header == nil {
		return metadata
	}

	if title, err := header.XPathFirst(".//title"); err == nil && title != nil {
		if text := strings.TrimSpace(title.InnerText()); text != "" {
			metadata["title"] = text
		}
	}
	if author, err := header.XPathFirst(".//author"); err == nil && author != nil {
		if text := strings.TrimSpace(author.InnerText()); text != "" {
			metadata["author"] = text
		}
	}

	if nodes, err := header.XPath(".//editor"); err == nil {
		var editors []string
		for _, node := range nodes {
			if text := strings.TrimSpace(node.InnerText()); text != "" {
				editors = append(editors, text)
			}
		}
		if len(editors) > 0 {
			metadata["editors"] = editors
		}
	}

	if pub, err := header.XPathFirst(".//publicationStmt"); err == nil && pub != nil {
		info := make(map[string]any)
		if publisher, err := pub.XPathFirst(".//publisher"); err == nil && publisher != nil {
			if text := strings.TrimSpace(publisher.InnerText()); text != "" {
				info["publisher"] = text
			}
		}
		if place, err := pub.XPathFirst(".//pubPlace"); err == nil && place != nil {
			if text := strings.TrimSpace(place.InnerText()); text != "" {
				info["pubPlace"] = text
			}
		}
		if len(info) > 0 {
			metadata["publication"] = info
		}
	}

	return metadata
}

// normalizeText collects the descendant text of an element, trims each text
// node, drops empty ones, and joins the remainder with single spaces. Inline
// editorial markers that carry no text of their own vanish; prose inside
// nested emphasis or name markup survives.
func normalizeText(n *xml.Node) string {
	var parts []string
	for _, text := range n.Texts() {
		text = strings.TrimSpace(text)
		if text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}
