package exhibit

import (
	"exhibit_scout/pkg/core/dom"
	"exhibit_scout/pkg/core/textnorm"
)

// Scanner walks the tables after a section anchor and extracts the rows that
// describe a reportable exhibit.
type Scanner struct {
	Keywords *KeywordSet
	Cleaner  textnorm.Cleaner
	// DedupeDescriptions skips a row whose matched description text already
	// produced a candidate in the same scan.
	DedupeDescriptions bool
}

// NewScanner returns a scanner with description de-duplication enabled.
func NewScanner(keywords *KeywordSet) *Scanner {
	return &Scanner{Keywords: keywords, DedupeDescriptions: true}
}

// Scan returns the candidates found in every table following anchor, in
// document order.
func (s *Scanner) Scan(anchor dom.Node) []Candidate {
	var out []Candidate
	seen := make(map[string]bool)

	for n := range dom.Following(anchor) {
		if !dom.IsElement(n, "table") {
			continue
		}
		for _, tr := range tableRows(n) {
			c, ok := s.scanRow(rowCells(tr))
			if !ok {
				continue
			}
			if s.DedupeDescriptions {
				if seen[c.Description] {
					continue
				}
				seen[c.Description] = true
			}
			out = append(out, c)
		}
	}
	return out
}

func (s *Scanner) scanRow(cells []dom.Node) (Candidate, bool) {
	if len(cells) < 2 {
		return Candidate{}, false
	}

	match, keyword := -1, ""
	for i, cell := range cells[1:] {
		if kw, ok := s.Keywords.Match(dom.Text(cell)); ok {
			match, keyword = i+1, kw
			break
		}
	}
	if match < 0 {
		return Candidate{}, false
	}

	// Stray formatting sometimes leaves the first cell empty and pushes the
	// exhibit number into the next one.
	raw := dom.Text(cells[0])
	id := s.Cleaner.Clean(raw)
	for i := 1; id == "" && i < len(cells); i++ {
		raw += dom.Text(cells[i])
		id = s.Cleaner.Clean(raw)
	}
	if !textnorm.HasDigit(id) {
		return Candidate{}, false
	}

	text := dom.Text(cells[match])
	return Candidate{
		RawID:       textnorm.NormalizePreserveCase(raw),
		ID:          id,
		Description: textnorm.Normalize(text),
		Display:     textnorm.NormalizePreserveCase(text),
		Keyword:     keyword,
		IDCell:      cells[0],
		Cell:        cells[match],
		State:       StatePending,
	}, true
}
