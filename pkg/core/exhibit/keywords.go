// Package exhibit is the filing-section locator and exhibit-matching engine.
//
// Given a parsed primary document it finds the last occurrence of the
// exhibit-section heading, walks the tables that follow it, keeps rows whose
// description mentions a configured keyword, and either downloads the exhibit
// through its embedded link or reconciles it against the filing's index page.
// Anything that cannot be resolved goes to the per-filing overflow record.
package exhibit

import (
	"regexp"

	"exhibit_scout/pkg/core/textnorm"
)

// DefaultKeywords are the licensing and transfer terms the scout looks for.
var DefaultKeywords = []string{
	"license",
	"licensing",
	"license agreement",
	"lease",
	"royalty",
	"royalties",
	"milestone payment",
	"supply agreement",
	"patent transfer",
	"trademark transfer",
	"technology transfer",
}

// KeywordSet matches whole words or phrases in normalized text. It is
// immutable after construction and safe for concurrent use.
type KeywordSet struct {
	phrases  []string
	patterns []*regexp.Regexp
}

// NewKeywordSet normalizes and compiles phrases. Empty and duplicate phrases
// are dropped; order is preserved.
func NewKeywordSet(phrases []string) *KeywordSet {
	k := &KeywordSet{}
	seen := make(map[string]bool, len(phrases))
	for _, p := range phrases {
		p = textnorm.Normalize(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		k.phrases = append(k.phrases, p)
		k.patterns = append(k.patterns, regexp.MustCompile(`\b`+regexp.QuoteMeta(p)+`\b`))
	}
	return k
}

// Phrases returns the normalized phrases in match order.
func (k *KeywordSet) Phrases() []string {
	return append([]string(nil), k.phrases...)
}

// Match returns the first phrase (in configured order) found in text.
func (k *KeywordSet) Match(text string) (string, bool) {
	text = textnorm.Normalize(text)
	if text == "" {
		return "", false
	}
	for i, re := range k.patterns {
		if re.MatchString(text) {
			return k.phrases[i], true
		}
	}
	return "", false
}

// Matches reports whether text contains any phrase as a whole word.
func (k *KeywordSet) Matches(text string) bool {
	_, ok := k.Match(text)
	return ok
}

// Matches is a one-off convenience around KeywordSet.
func Matches(text string, keywords []string) bool {
	return NewKeywordSet(keywords).Matches(text)
}
