// Package filing holds the records shared by the exhibit engine and its
// collaborators: the filing being processed and the manifest line written for
// every exhibit that lands on disk.
package filing

import (
	"strings"
	"time"
)

// DateLayout is the format EDGAR uses for filingDate.
const DateLayout = "2006-01-02"

// Filing is one submission taken from roster metadata. It is never modified
// after it is read.
type Filing struct {
	EntityID   string    `json:"cik"` // CIK without leading zeros
	EntityName string    `json:"name"`
	Accession  string    `json:"accession_number"`
	FormType   string    `json:"form_type"`
	FilingDate time.Time `json:"filing_date"`
}

// Year is the calendar year the filing was submitted.
func (f Filing) Year() int {
	return f.FilingDate.Year()
}

// FolderForm is the form type made safe for a directory name ("S-1/A" -> "S-1_A").
func (f Filing) FolderForm() string {
	return strings.ReplaceAll(f.FormType, "/", "_")
}

// ParseDate parses an EDGAR filingDate.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}

// ManifestRow is one line of the exhibit manifest.
type ManifestRow struct {
	Entity      string `json:"entity"`
	Year        string `json:"year"`
	FormType    string `json:"form_type"`
	Accession   string `json:"accession_number"`
	Identifier  string `json:"exhibit"`
	Description string `json:"description"`
}

// Record returns the manifest columns in file order.
func (r ManifestRow) Record() []string {
	return []string{r.Entity, r.Year, r.FormType, r.Accession, r.Identifier, r.Description}
}
