// Package forms dispatches a filing to the marker strategy of its form type
// and drives the per-filing state machine from index page to overflow record.
package forms

import (
	"sort"

	"exhibit_scout/pkg/core/exhibit"
)

// Form is the per-form-type configuration: which label identifies the
// primary document in the index table and how to find the exhibit section.
type Form struct {
	Type     string
	Label    string
	Strategy exhibit.Strategy
}

var (
	item15   = exhibit.RegexpMarker("ITEM 15", `I\s*T\s*E\s*M\s*1\s*5`, true)
	partIV   = exhibit.SubstringMarker("part iv", "part iv", false)
	item6    = exhibit.RegexpMarker("item 6", `(?i)\bi\s*t\s*e\s*m\s*6\b`, false)
	partII   = exhibit.SubstringMarker("part ii", "part ii", false)
	item901  = exhibit.RegexpMarker("item 9.01", `(?i)\bi\s*t\s*e\s*m\s*9\s*.\s*0\s*1\b`, false)
	item16   = exhibit.RegexpMarker("item 16", `(?i)\bi\s*t\s*e\s*m\s*1\s*6\b`, false)
	registry = map[string]Form{
		"10-K":  {Type: "10-K", Label: "10-K", Strategy: exhibit.Strategy{item15, partIV}},
		"10-Q":  {Type: "10-Q", Label: "10-Q", Strategy: exhibit.Strategy{item6, partII}},
		"8-K":   {Type: "8-K", Label: "8-K", Strategy: exhibit.Strategy{item901}},
		"S-1":   {Type: "S-1", Label: "S-1", Strategy: exhibit.Strategy{item16, partII}},
		"S-1/A": {Type: "S-1/A", Label: "S-1/A", Strategy: exhibit.Strategy{item16, partII}},
	}
)

// Lookup returns the configuration for a form type.
func Lookup(formType string) (Form, bool) {
	f, ok := registry[formType]
	return f, ok
}

// Types lists the supported form types in sorted order.
func Types() []string {
	out := make([]string, 0, len(registry))
	for t := range registry {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
