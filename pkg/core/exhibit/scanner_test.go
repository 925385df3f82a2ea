package exhibit

import "testing"

func scanDoc(t *testing.T, s *Scanner, body string) []Candidate {
	t.Helper()
	root := parse(t, "<body><p>PART IV</p>"+body+"</body>")
	return s.Scan(textNode(t, root, "PART IV"))
}

func TestScanner_ExtractsMatchingRows(t *testing.T) {
	s := NewScanner(NewKeywordSet(DefaultKeywords))
	got := scanDoc(t, s, `<table>
		<tr><td>3.1</td><td>Articles of Incorporation</td></tr>
		<tr><td>10.1 (Exhibit)</td><td>License Agreement dated 2020</td></tr>
		<tr><td>10.2*</td><td>Office</td><td>Lease with Landlord LLC</td></tr>
		<tr><td>single cell license</td></tr>
	</table>`)

	if len(got) != 2 {
		t.Fatalf("Scan() returned %d candidates, want 2: %+v", len(got), got)
	}
	if got[0].ID != "10.1" || got[0].Description != "license agreement dated 2020" {
		t.Errorf("first candidate = %+v", got[0])
	}
	if got[0].Display != "License Agreement dated 2020" {
		t.Errorf("Display = %q", got[0].Display)
	}
	if got[1].ID != "10.2" || got[1].Description != "lease with landlord llc" || got[1].Keyword != "lease" {
		t.Errorf("second candidate = %+v", got[1])
	}
}

func TestScanner_IgnoresTablesBeforeAnchor(t *testing.T) {
	root := parse(t, `<body>
		<table><tr><td>10.9</td><td>Royalty Agreement</td></tr></table>
		<p>PART IV</p>
		<table><tr><td>10.1</td><td>Royalty Agreement II</td></tr></table>
	</body>`)
	got := NewScanner(NewKeywordSet(DefaultKeywords)).Scan(textNode(t, root, "PART IV"))
	if len(got) != 1 || got[0].ID != "10.1" {
		t.Errorf("Scan() = %+v, want only 10.1", got)
	}
}

func TestScanner_EmptyIdentifierBorrowsNextCells(t *testing.T) {
	s := NewScanner(NewKeywordSet(DefaultKeywords))
	got := scanDoc(t, s, `<table>
		<tr><td>*</td><td>10.5</td><td>Supply Agreement</td></tr>
	</table>`)
	if len(got) != 1 {
		t.Fatalf("Scan() returned %d candidates", len(got))
	}
	if got[0].ID == "" {
		t.Fatal("candidate has empty identifier")
	}
	if got[0].ID != "10.5" {
		t.Errorf("ID = %q", got[0].ID)
	}
}

func TestScanner_DropsIdentifiersWithoutDigits(t *testing.T) {
	s := NewScanner(NewKeywordSet(DefaultKeywords))
	got := scanDoc(t, s, `<table>
		<tr><td>Exhibit</td><td>License Agreement</td></tr>
		<tr><td>&nbsp;</td><td>Royalty terms</td></tr>
	</table>`)
	if len(got) != 0 {
		t.Errorf("Scan() = %+v, want none", got)
	}
}

func TestScanner_DedupeByDescription(t *testing.T) {
	body := `<table>
		<tr><td>10.1</td><td>License Agreement</td></tr>
		<tr><td>10.1A</td><td>License   Agreement</td></tr>
	</table>`

	on := NewScanner(NewKeywordSet(DefaultKeywords))
	if got := scanDoc(t, on, body); len(got) != 1 {
		t.Errorf("dedupe on: got %d candidates, want 1", len(got))
	}

	off := NewScanner(NewKeywordSet(DefaultKeywords))
	off.DedupeDescriptions = false
	if got := scanDoc(t, off, body); len(got) != 2 {
		t.Errorf("dedupe off: got %d candidates, want 2", len(got))
	}
}

func TestScanner_NestedTablesScannedOnce(t *testing.T) {
	s := NewScanner(NewKeywordSet(DefaultKeywords))
	s.DedupeDescriptions = false
	got := scanDoc(t, s, `<table><tr><td>
		<table><tr><td>10.7</td><td>Technology Transfer Agreement</td></tr></table>
	</td></tr></table>`)
	if len(got) != 1 {
		t.Errorf("Scan() returned %d candidates, want 1", len(got))
	}
}
