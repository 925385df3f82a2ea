package exhibit

import (
	"context"
	"log"
	"strings"

	"exhibit_scout/pkg/core/edgar"
	"exhibit_scout/pkg/core/filing"
)

// exhibitPrefix starts the type label of every exhibit row on an index page.
const exhibitPrefix = "EX-"

// Reconciler resolves deferred exhibits through the index page's document
// table and sends whatever is left to the overflow record.
type Reconciler struct {
	Downloader Downloader
	Manifest   ManifestSink
	Overflow   OverflowSink
	Paths      Paths
	Logger     *log.Logger
}

// Reconcile returns the exhibits that could not be matched to an index row.
// Those have already been appended to the overflow record. Row links are
// resolved against indexURL, the page the rows were read from.
func (r *Reconciler) Reconcile(ctx context.Context, f filing.Filing, indexURL string, deferred []Candidate, rows []IndexRow) ([]Candidate, Tally) {
	logger := loggerOr(r.Logger)
	var remaining []Candidate
	var tally Tally

	for _, c := range deferred {
		row, ok := r.match(c, rows, logger)
		if !ok {
			remaining = append(remaining, c)
			continue
		}
		c.Link = edgar.AbsoluteURL(indexURL, row.Href)
		c.State = StateReconciled
		if err := fetchExhibit(ctx, r.Downloader, r.Manifest, r.Paths, f, c, logger); err != nil {
			tally.Failed++
			continue
		}
		tally.Reconciled++
	}

	for i := range remaining {
		remaining[i].State = StateUnresolved
		logger.Printf("[INFO] Exhibit %s of %s has no downloadable link", remaining[i].ID, f.Accession)
		if r.Overflow == nil {
			continue
		}
		if err := r.Overflow.AppendOverflow(r.Paths.OverflowPath(f), remaining[i].ID, remaining[i].Description); err != nil {
			logger.Printf("[ERROR] Failed to record overflow exhibit %s: %v", remaining[i].ID, err)
			continue
		}
		tally.Overflowed++
	}
	return remaining, tally
}

// match finds the first exhibit row whose code, minus the "EX-" prefix,
// equals the candidate's identifier exactly.
func (r *Reconciler) match(c Candidate, rows []IndexRow, logger *log.Logger) (IndexRow, bool) {
	want := strings.TrimSpace(c.ID)
	for _, row := range rows {
		label := strings.TrimSpace(row.Type)
		suffix, ok := strings.CutPrefix(label, exhibitPrefix)
		if !ok || suffix != want {
			continue
		}
		if !row.HasLink {
			logger.Printf("[WARN] %v for %s", ErrLinkMissing, label)
			continue
		}
		return row, true
	}
	return IndexRow{}, false
}
