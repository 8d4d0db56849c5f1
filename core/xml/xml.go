// Package xml provides pure Go XML parsing and XPath queries over TEI documents.
//
// Security Notes:
//   - XXE (External Entity) attacks are mitigated because the xmlquery
//     library parses with Go's encoding/xml, which does not fetch external
//     entities, and no entity tables are installed.
package xml

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

// Document represents a parsed XML document.
type Document struct {
	root *xmlquery.Node
}

// Node represents an XML element node.
type Node struct {
	node *xmlquery.Node
}

// Parse parses XML data and returns a Document.
func Parse(data []byte) (*Document, error) {
	return ParseReader(bytes.NewReader(data))
}

// ParseReader parses XML from a reader and returns a Document.
func ParseReader(r io.Reader) (*Document, error) {
	root, err := xmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing XML: %w", err)
	}
	return &Document{root: root}, nil
}

// Root returns the root element of the document, or nil for an empty document.
func (d *Document) Root() *Node {
	if d.root == nil {
		return nil
	}
	for child := d.root.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode {
			return &Node{node: child}
		}
	}
	return nil
}

// XPath executes an XPath query against the whole document and returns
// matching nodes in document order.
func (d *Document) XPath(expr string) ([]*Node, error) {
	return query(d.root, expr)
}

// XPathFirst executes an XPath query and returns the first matching node,
// or nil if nothing matches.
func (d *Document) XPathFirst(expr string) (*Node, error) {
	return queryFirst(d.root, expr)
}

// XPath executes an XPath query relative to this node.
func (n *Node) XPath(expr string) ([]*Node, error) {
	if n == nil || n.node == nil {
		return nil, nil
	}
	return query(n.node, expr)
}

// XPathFirst executes an XPath query relative to this node and returns the
// first match, or nil if nothing matches.
func (n *Node) XPathFirst(expr string) (*Node, error) {
	if n == nil || n.node == nil {
		return nil, nil
	}
	return queryFirst(n.node, expr)
}

func query(root *xmlquery.Node, expr string) ([]*Node, error) {
	if _, err := xpath.Compile(expr); err != nil {
		return nil, fmt.Errorf("invalid xpath: %w", err)
	}
	nodes, err := xmlquery.QueryAll(root, expr)
	if err != nil {
		return nil, fmt.Errorf("xpath query failed: %w", err)
	}
	result := make([]*Node, len(nodes))
	for i, node := range nodes {
		result[i] = &Node{node: node}
	}
	return result, nil
}

func queryFirst(root *xmlquery.Node, expr string) (*Node, error) {
	if _, err := xpath.Compile(expr); err != nil {
		return nil, fmt.Errorf("invalid xpath: %w", err)
	}
	node, err := xmlquery.Query(root, expr)
	if err != nil {
		return nil, fmt.Errorf("xpath query failed: %w", err)
	}
	if node == nil {
		return nil, nil
	}
	return &Node{node: node}, nil
}

// Name returns the element's local name.
func (n *Node) Name() string {
	if n == nil || n.node == nil {
		return ""
	}
	return n.node.Data
}

// Attr returns the value of an attribute. Prefixed names such as "xml:lang"
// match the prefixed attribute first, then fall back to a local-name match,
// since parsers differ in how they record the reserved xml prefix.
func (n *Node) Attr(name string) string {
	if n == nil || n.node == nil {
		return ""
	}
	if v := n.node.SelectAttr(name); v != "" {
		return v
	}
	if i := strings.Index(name, ":"); i >= 0 {
		local := name[i+1:]
		for _, attr := range n.node.Attr {
			if attr.Name.Local == local {
				return attr.Value
			}
		}
	}
	return ""
}

// Attributes returns all attributes of the node keyed by local name.
func (n *Node) Attributes() map[string]string {
	if n == nil || n.node == nil {
		return nil
	}
	attrs := make(map[string]string)
	for _, attr := range n.node.Attr {
		attrs[attr.Name.Local] = attr.Value
	}
	return attrs
}

// InnerText returns all text content of the node and its descendants.
func (n *Node) InnerText() string {
	if n == nil || n.node == nil {
		return ""
	}
	return n.node.InnerText()
}

// Texts returns the raw data of every descendant text node in document
// order. Unlike InnerText it preserves node boundaries, which callers need
// to normalize whitespace per text node.
func (n *Node) Texts() []string {
	if n == nil || n.node == nil {
		return nil
	}
	var texts []string
	collectTexts(n.node, &texts)
	return texts
}

func collectTexts(n *xmlquery.Node, out *[]string) {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		switch child.Type {
		case xmlquery.TextNode, xmlquery.CharDataNode:
			*out = append(*out, child.Data)
		case xmlquery.ElementNode:
			collectTexts(child, out)
		}
	}
}

// Children returns the child element nodes.
func (n *Node) Children() []*Node {
	if n == nil || n.node == nil {
		return nil
	}
	var children []*Node
	for child := n.node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode {
			children = append(children, &Node{node: child})
		}
	}
	return children
}
