package exhibit

import (
	"strings"

	"exhibit_scout/pkg/core/dom"
)

// IndexTableSummary is the summary attribute of the index page's document table.
const IndexTableSummary = "Document Format Files"

// IndexRow is one row of the index page's document table.
type IndexRow struct {
	Sequence    string
	Description string
	Document    string
	Href        string
	HasLink     bool
	Type        string // form name or exhibit code such as "EX-10.1"
}

// ParseIndexTable reads the document table of a filing index page. Rows with
// fewer than four cells (headers, spacer rows) are skipped.
func ParseIndexTable(root dom.Node) ([]IndexRow, error) {
	table := dom.FindFirst(root, func(n dom.Node) bool {
		if !dom.IsElement(n, "table") {
			return false
		}
		summary, _ := n.Attr("summary")
		return summary == IndexTableSummary
	})
	if table == nil {
		return nil, ErrNoDocumentTable
	}

	var rows []IndexRow
	for _, tr := range tableRows(table) {
		cells := rowCells(tr)
		if len(cells) < 4 {
			continue
		}
		href, ok := dom.FirstLink(cells[2])
		rows = append(rows, IndexRow{
			Sequence:    strings.TrimSpace(dom.Text(cells[0])),
			Description: strings.TrimSpace(dom.Text(cells[1])),
			Document:    strings.TrimSpace(dom.Text(cells[2])),
			Href:        href,
			HasLink:     ok && href != "",
			Type:        dom.Text(cells[3]),
		})
	}
	return rows, nil
}

// PrimaryDocumentHref returns the link of the first row whose type column
// contains label and that carries a hyperlink.
func PrimaryDocumentHref(rows []IndexRow, label string) (string, bool) {
	for _, r := range rows {
		if strings.Contains(r.Type, label) && r.HasLink {
			return r.Href, true
		}
	}
	return "", false
}

// tableRows returns the rows that belong to table itself, not to tables
// nested inside its cells.
func tableRows(table dom.Node) []dom.Node {
	return dom.FindAll(table, func(n dom.Node) bool {
		return dom.IsElement(n, "tr") && dom.Closest(n, "table") == table
	})
}

// rowCells returns the data cells that belong to tr itself.
func rowCells(tr dom.Node) []dom.Node {
	return dom.FindAll(tr, func(n dom.Node) bool {
		return dom.IsElement(n, "td") && dom.Closest(n, "tr") == tr
	})
}
