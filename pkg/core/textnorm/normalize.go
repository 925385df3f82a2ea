// Package textnorm canonicalizes text pulled out of filing documents so that
// keyword, marker, and identifier comparisons are stable across the many ways
// EDGAR filers format the same words.
package textnorm

import "strings"

// Normalize collapses every run of whitespace (non-breaking spaces included)
// into one ordinary space, trims the ends, and lower-cases the result.
func Normalize(s string) string {
	return strings.ToLower(NormalizePreserveCase(s))
}

// NormalizePreserveCase is Normalize without case folding, for matchers that
// depend on capitalisation such as all-caps headings.
func NormalizePreserveCase(s string) string {
	if s == "" {
		return ""
	}
	// strings.Fields splits on unicode.IsSpace, which covers U+00A0.
	return strings.Join(strings.Fields(s), " ")
}
