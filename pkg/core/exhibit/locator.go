package exhibit

import (
	"regexp"
	"strings"

	"exhibit_scout/pkg/core/dom"
	"exhibit_scout/pkg/core/textnorm"
)

// Marker recognizes a section heading inside a single text node.
type Marker struct {
	Name string
	// Pattern is searched in the normalized text; when nil, Substring is used.
	Pattern   *regexp.Regexp
	Substring string
	// PreserveCase matches against whitespace-normalized text without case
	// folding, for all-caps headings.
	PreserveCase bool
}

// RegexpMarker builds a marker that searches for expr.
func RegexpMarker(name, expr string, preserveCase bool) Marker {
	return Marker{Name: name, Pattern: regexp.MustCompile(expr), PreserveCase: preserveCase}
}

// SubstringMarker builds a marker that checks for plain containment of s.
func SubstringMarker(name, s string, preserveCase bool) Marker {
	if !preserveCase {
		s = textnorm.Normalize(s)
	}
	return Marker{Name: name, Substring: s, PreserveCase: preserveCase}
}

// Match reports whether text contains the marker.
func (m Marker) Match(text string) bool {
	var t string
	if m.PreserveCase {
		t = textnorm.NormalizePreserveCase(text)
	} else {
		t = textnorm.Normalize(text)
	}
	if t == "" {
		return false
	}
	if m.Pattern != nil {
		return m.Pattern.MatchString(t)
	}
	return m.Substring != "" && strings.Contains(t, m.Substring)
}

// Strategy is an ordered list of markers; earlier markers win.
type Strategy []Marker

// Locate returns the last text node matched by the first marker in strategy
// that matches anything. Later markers are only tried when every earlier one
// found nothing. Tables of contents repeat section titles, so the last
// occurrence is taken as the section body.
func Locate(root dom.Node, strategy Strategy) (dom.Node, Marker, bool) {
	for _, m := range strategy {
		var last dom.Node
		for n := range dom.TextNodes(root) {
			if m.Match(n.Data()) {
				last = n
			}
		}
		if last != nil {
			return last, m, true
		}
	}
	return nil, Marker{}, false
}
