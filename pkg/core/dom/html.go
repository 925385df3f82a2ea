package dom

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Parse reads an HTML (or loosely XML-flavoured SGML) document and returns
// its root node.
func Parse(r io.Reader) (Node, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	if len(doc.Nodes) == 0 {
		return nil, fmt.Errorf("failed to parse HTML: empty document")
	}
	return FromHTML(doc.Nodes[0]), nil
}

// ParseString is Parse for in-memory markup.
func ParseString(s string) (Node, error) {
	return Parse(strings.NewReader(s))
}

// FromHTML wraps an x/net/html node.
func FromHTML(n *html.Node) Node {
	if n == nil {
		return nil
	}
	return htmlNode{n: n}
}

type htmlNode struct {
	n *html.Node
}

func (h htmlNode) Kind() Kind {
	switch h.n.Type {
	case html.ElementNode:
		return ElementNode
	case html.TextNode:
		return TextNode
	default:
		return OtherNode
	}
}

func (h htmlNode) Tag() string {
	if h.n.Type != html.ElementNode {
		return ""
	}
	return strings.ToLower(h.n.Data)
}

func (h htmlNode) Data() string {
	if h.n.Type != html.TextNode {
		return ""
	}
	return h.n.Data
}

func (h htmlNode) Attr(name string) (string, bool) {
	for _, a := range h.n.Attr {
		if strings.EqualFold(a.Key, name) {
			return a.Val, true
		}
	}
	return "", false
}

func (h htmlNode) Parent() Node      { return FromHTML(h.n.Parent) }
func (h htmlNode) FirstChild() Node  { return FromHTML(h.n.FirstChild) }
func (h htmlNode) NextSibling() Node { return FromHTML(h.n.NextSibling) }
