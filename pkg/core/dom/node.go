// Package dom provides a parser-independent view of a parsed markup document.
//
// The exhibit engine only needs a handful of capabilities from a document
// (tag names, attributes, text, and tree navigation), so everything above this
// package is written against the Node interface. The html.go adapter backs it
// with github.com/PuerkitoBio/goquery and golang.org/x/net/html.
package dom

// Kind classifies a node.
type Kind int

const (
	ElementNode Kind = iota
	TextNode
	OtherNode // comments, doctype, document root
)

// Node is a single node in a document tree.
//
// Navigation methods return nil (an untyped nil interface) when there is no
// such node.
type Node interface {
	Kind() Kind
	// Tag is the lower-case element name, empty for non-element nodes.
	Tag() string
	// Data is the raw character data of a text node, empty otherwise.
	Data() string
	Attr(name string) (string, bool)
	Parent() Node
	FirstChild() Node
	NextSibling() Node
}

// IsElement reports whether n is an element with the given tag.
func IsElement(n Node, tag string) bool {
	return n != nil && n.Kind() == ElementNode && n.Tag() == tag
}
