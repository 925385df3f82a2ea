package dom

import (
	"iter"
	"strings"
)

// next returns the pre-order successor of n. When bound is non-nil the walk
// never climbs above it, which keeps the traversal inside bound's subtree.
func next(n, bound Node) Node {
	if c := n.FirstChild(); c != nil {
		return c
	}
	for x := n; x != nil && x != bound; x = x.Parent() {
		if s := x.NextSibling(); s != nil {
			return s
		}
	}
	return nil
}

// Descendants yields every node below n in document order, excluding n.
// Each call to the returned sequence starts a fresh walk.
func Descendants(n Node) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		if n == nil {
			return
		}
		for x := n.FirstChild(); x != nil; x = next(x, n) {
			if !yield(x) {
				return
			}
		}
	}
}

// Following yields every node after anchor in document order: its own
// descendants first, then everything that comes later in the document.
func Following(anchor Node) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		if anchor == nil {
			return
		}
		for x := next(anchor, nil); x != nil; x = next(x, nil) {
			if !yield(x) {
				return
			}
		}
	}
}

// TextNodes yields the text nodes under root (root included) in document order.
func TextNodes(root Node) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		if root == nil {
			return
		}
		if root.Kind() == TextNode {
			if !yield(root) {
				return
			}
		}
		for n := range Descendants(root) {
			if n.Kind() == TextNode && !yield(n) {
				return
			}
		}
	}
}

// FindFirst returns the first descendant of root satisfying pred.
func FindFirst(root Node, pred func(Node) bool) Node {
	for n := range Descendants(root) {
		if pred(n) {
			return n
		}
	}
	return nil
}

// FindAll returns every descendant of root satisfying pred.
func FindAll(root Node, pred func(Node) bool) []Node {
	var out []Node
	for n := range Descendants(root) {
		if pred(n) {
			out = append(out, n)
		}
	}
	return out
}

// Closest returns the nearest proper ancestor of n with the given tag.
func Closest(n Node, tag string) Node {
	if n == nil {
		return nil
	}
	for p := n.Parent(); p != nil; p = p.Parent() {
		if IsElement(p, tag) {
			return p
		}
	}
	return nil
}

// Text concatenates the character data of every text node under n.
func Text(n Node) string {
	var sb strings.Builder
	for t := range TextNodes(n) {
		sb.WriteString(t.Data())
	}
	return sb.String()
}

// FirstLink returns the href of the first <a> element under n that carries one.
func FirstLink(n Node) (string, bool) {
	a := FindFirst(n, func(x Node) bool {
		if !IsElement(x, "a") {
			return false
		}
		_, ok := x.Attr("href")
		return ok
	})
	if a == nil {
		return "", false
	}
	href, _ := a.Attr("href")
	return strings.TrimSpace(href), true
}
