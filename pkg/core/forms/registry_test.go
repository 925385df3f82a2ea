package forms

import (
	"reflect"
	"testing"

	"exhibit_scout/pkg/core/dom"
	"exhibit_scout/pkg/core/exhibit"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		formType    string
		wantOK      bool
		wantMarkers []string
	}{
		{"10-K", true, []string{"ITEM 15", "part iv"}},
		{"10-Q", true, []string{"item 6", "part ii"}},
		{"8-K", true, []string{"item 9.01"}},
		{"S-1", true, []string{"item 16", "part ii"}},
		{"S-1/A", true, []string{"item 16", "part ii"}},
		{"DEF 14A", false, nil},
		{"10-k", false, nil},
	}
	for _, tt := range tests {
		t.Run(tt.formType, func(t *testing.T) {
			f, ok := Lookup(tt.formType)
			if ok != tt.wantOK {
				t.Fatalf("Lookup(%q) ok = %v, want %v", tt.formType, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if f.Label != tt.formType {
				t.Errorf("Label = %q, want %q", f.Label, tt.formType)
			}
			var names []string
			for _, m := range f.Strategy {
				names = append(names, m.Name)
			}
			if !reflect.DeepEqual(names, tt.wantMarkers) {
				t.Errorf("markers = %v, want %v", names, tt.wantMarkers)
			}
		})
	}
}

func TestTypes(t *testing.T) {
	want := []string{"10-K", "10-Q", "8-K", "S-1", "S-1/A"}
	if got := Types(); !reflect.DeepEqual(got, want) {
		t.Errorf("Types() = %v, want %v", got, want)
	}
}

func TestStrategyMarkers(t *testing.T) {
	tests := []struct {
		name    string
		form    string
		html    string
		wantHit string
	}{
		{"item 15 upper", "10-K", `<p>Item 1</p><p>ITEM 15. EXHIBITS</p>`, "ITEM 15"},
		{"item 15 spaced", "10-K", `<p>I T E M 1 5</p>`, "ITEM 15"},
		{"item 15 lower ignored", "10-K", `<p>item 15</p><p>PART IV</p>`, "part iv"},
		{"10-Q item 6", "10-Q", `<p>Item 6. Exhibits</p>`, "item 6"},
		{"10-Q item 60 is not item 6", "10-Q", `<p>Item 60</p><p>Part II</p>`, "part ii"},
		{"8-K", "8-K", `<p>Item 9.01 Financial Statements and Exhibits</p>`, "item 9.01"},
		{"S-1 item 16", "S-1/A", `<p>ITEM 16. EXHIBITS</p>`, "item 16"},
		{"S-1 part ii any case", "S-1", `<p>PART II</p>`, "part ii"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, _ := Lookup(tt.form)
			root, err := dom.ParseString(tt.html)
			if err != nil {
				t.Fatalf("ParseString() error = %v", err)
			}
			_, m, ok := exhibit.Locate(root, f.Strategy)
			if !ok {
				t.Fatalf("Locate() found nothing")
			}
			if m.Name != tt.wantHit {
				t.Errorf("Locate() marker = %q, want %q", m.Name, tt.wantHit)
			}
		})
	}
}

func TestStateString(t *testing.T) {
	if got := StateSectionLocated.String(); got != "section-located" {
		t.Errorf("String() = %q, want section-located", got)
	}
	if got := State(42).String(); got != "State(42)" {
		t.Errorf("String() = %q, want State(42)", got)
	}
}
