package exhibit

import (
	"context"
	"log"

	"exhibit_scout/pkg/core/dom"
	"exhibit_scout/pkg/core/edgar"
	"exhibit_scout/pkg/core/filing"
)

// Resolver downloads candidates whose row already links to the archive and
// defers the rest to the index reconciliation.
type Resolver struct {
	BaseURL    string // archive base used to absolutize links
	Domain     string // links on this domain (or a subdomain) are direct
	Downloader Downloader
	Manifest   ManifestSink
	Paths      Paths
	Logger     *log.Logger
}

// Resolve handles every candidate and returns those still waiting for a link.
func (r *Resolver) Resolve(ctx context.Context, f filing.Filing, cands []Candidate) ([]Candidate, Tally) {
	logger := loggerOr(r.Logger)
	var deferred []Candidate
	var tally Tally

	for _, c := range cands {
		href, ok := dom.FirstLink(c.IDCell)
		if !ok {
			href, ok = dom.FirstLink(c.Cell)
		}
		if !ok || !edgar.IsArchiveHost(href, r.Domain) {
			c.State = StateDeferred
			deferred = append(deferred, c)
			tally.Deferred++
			continue
		}

		c.Link = edgar.AbsoluteURL(r.BaseURL, href)
		c.State = StateDirect
		if err := fetchExhibit(ctx, r.Downloader, r.Manifest, r.Paths, f, c, logger); err != nil {
			tally.Failed++
			continue
		}
		tally.Direct++
	}
	return deferred, tally
}

// fetchExhibit downloads one exhibit and records it in the manifest. Failures
// are logged; the caller moves on to the next exhibit.
func fetchExhibit(ctx context.Context, d Downloader, m ManifestSink, p Paths, f filing.Filing, c Candidate, logger *log.Logger) error {
	dest := p.ExhibitPath(f, c.ID)
	if err := d.Download(ctx, c.Link, dest); err != nil {
		logger.Printf("[WARN] Failed to download exhibit %s from %s: %v", c.ID, c.Link, err)
		return err
	}
	logger.Printf("[INFO] Downloaded exhibit %s to %s", c.ID, dest)

	if m == nil {
		return nil
	}
	if err := m.AppendManifestRow(ctx, manifestRow(f, c.ID, c.Display)); err != nil {
		logger.Printf("[ERROR] Failed to record exhibit %s in manifest: %v", c.ID, err)
	}
	return nil
}
