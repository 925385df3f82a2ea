package pipeline

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"exhibit_scout/pkg/core/utils"

	"github.com/mattn/go-runewidth"
)

// Report file names written by WriteReport.
const (
	ReportMarkdownFile = "report.md"
	ReportHTMLFile     = "report.html"
)

// RenderMarkdown formats a run summary as a Markdown document.
func RenderMarkdown(s Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Exhibit run %s\n\n", s.RunID)
	fmt.Fprintf(&b, "- Started: %s\n", s.Started.Format(time.RFC3339))
	fmt.Fprintf(&b, "- Duration: %v\n", s.Duration().Round(time.Second))
	fmt.Fprintf(&b, "- Filings: %d (%d completed, %d aborted)\n", s.Filings, s.Completed, s.Aborted)
	fmt.Fprintf(&b, "- Exhibits: %d direct, %d reconciled, %d overflow, %d failed\n\n",
		s.Tally.Direct, s.Tally.Reconciled, s.Tally.Overflowed, s.Tally.Failed)

	b.WriteString("## Entities\n\n")
	b.WriteString("| CIK | Entity | Filings | Aborted | Downloaded | Overflow |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	for _, e := range s.Entities {
		fmt.Fprintf(&b, "| %s | %s | %d | %d | %d | %d |\n",
			e.ID, utils.EscapeTableCell(e.Name), e.Filings, e.Aborted,
			e.Tally.Direct+e.Tally.Reconciled, e.Tally.Overflowed)
	}

	var aborted []string
	for _, e := range s.Entities {
		for _, r := range e.Results {
			if r.Completed() {
				continue
			}
			aborted = append(aborted, fmt.Sprintf("| %s | %s | %s | %s |",
				r.Filing.Accession, r.Filing.FormType, r.Reached, utils.EscapeTableCell(r.Reason)))
		}
	}
	if len(aborted) > 0 {
		b.WriteString("\n## Aborted filings\n\n")
		b.WriteString("| Accession | Form | Last state | Reason |\n")
		b.WriteString("|---|---|---|---|\n")
		b.WriteString(strings.Join(aborted, "\n"))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderReport returns the run report as Markdown and as HTML.
func RenderReport(s Summary) (string, string, error) {
	md := RenderMarkdown(s)
	html, err := utils.RenderMarkdown(md)
	if err != nil {
		return "", "", err
	}
	return md, html, nil
}

// WriteReport writes report.md and report.html into dir.
func WriteReport(dir string, s Summary) error {
	md, html, err := RenderReport(s)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create report dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ReportMarkdownFile), []byte(md), 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ReportHTMLFile), []byte(html), 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// PrintSummary writes a column-aligned per-entity table followed by totals.
// Widths use display cells so CJK and other wide names line up.
func PrintSummary(w io.Writer, s Summary) {
	table := [][]string{{"CIK", "ENTITY", "FILINGS", "ABORTED", "DOWNLOADED", "OVERFLOW"}}
	for _, e := range s.Entities {
		table = append(table, []string{
			e.ID, e.Name,
			strconv.Itoa(e.Filings), strconv.Itoa(e.Aborted),
			strconv.Itoa(e.Tally.Direct + e.Tally.Reconciled), strconv.Itoa(e.Tally.Overflowed),
		})
	}
	table = append(table, []string{
		"", "TOTAL",
		strconv.Itoa(s.Filings), strconv.Itoa(s.Aborted),
		strconv.Itoa(s.Tally.Direct + s.Tally.Reconciled), strconv.Itoa(s.Tally.Overflowed),
	})

	widths := make([]int, len(table[0]))
	for _, row := range table {
		for i, cell := range row {
			if n := runewidth.StringWidth(cell); n > widths[i] {
				widths[i] = n
			}
		}
	}

	for _, row := range table {
		var sb strings.Builder
		for i, cell := range row {
			if i > 0 {
				sb.WriteString("  ")
			}
			if i == len(row)-1 {
				sb.WriteString(cell)
				continue
			}
			sb.WriteString(runewidth.FillRight(cell, widths[i]))
		}
		fmt.Fprintln(w, strings.TrimRight(sb.String(), " "))
	}
}
