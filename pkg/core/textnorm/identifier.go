package textnorm

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	// A parenthesised group is an annotation when it is set off by a space or
	// holds a word, e.g. "10.1 (Exhibit)". Attached short groups such as the
	// "(a)" in "10.5(a)" are sub-exhibit labels and keep their letters.
	annotation       = regexp.MustCompile(`\s+\([^)]*\)|\([A-Za-z]{2,}[^)]*\)`)
	notIdentifier    = regexp.MustCompile(`[^a-zA-Z0-9.\-]`)
	notIdentifierPar = regexp.MustCompile(`[^a-zA-Z0-9.\-()]`)
)

// Superscript footnote marks would otherwise decompose into plain digits and
// silently change the exhibit number.
var footnoteMarks = strings.NewReplacer(
	"¹", "", "²", "", "³", "", "⁰", "", "⁴", "", "⁵", "", "⁶", "", "⁷", "", "⁸", "", "⁹", "",
	"⁺", "", "⁽", "", "⁾", "", "ᵃ", "", "ᵇ", "", "ᶜ", "",
)

// Cleaner turns a raw exhibit label into a filesystem-safe identifier.
type Cleaner struct {
	// KeepParentheses keeps "(" and ")" and any parenthesised text, e.g.
	// "10.1(a)". By default annotations such as " (Exhibit)" are dropped and
	// attached sub-labels lose only their parentheses, so "10.5(a)" is "10.5a".
	KeepParentheses bool
}

// Clean applies compatibility decomposition, drops footnote marks and
// decorations, and keeps only ASCII letters, digits, '.' and '-'.
// The result may be empty; callers must not use an empty identifier as a key.
func (c Cleaner) Clean(raw string) string {
	s := footnoteMarks.Replace(raw)
	s = norm.NFKD.String(s)
	s = NormalizePreserveCase(s)
	if c.KeepParentheses {
		return notIdentifierPar.ReplaceAllString(s, "")
	}
	s = annotation.ReplaceAllString(s, "")
	return notIdentifier.ReplaceAllString(s, "")
}

// CleanIdentifier cleans raw with the default policy.
func CleanIdentifier(raw string) string {
	return Cleaner{}.Clean(raw)
}

// HasDigit reports whether s contains at least one decimal digit.
func HasDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}
