package forms

import (
	"context"
	"errors"
	"fmt"
	"log"

	"exhibit_scout/pkg/core/dom"
	"exhibit_scout/pkg/core/edgar"
	"exhibit_scout/pkg/core/exhibit"
	"exhibit_scout/pkg/core/filing"
)

var (
	ErrUnknownForm       = errors.New("no handler for form type")
	ErrInvalidDate       = errors.New("filing date missing")
	ErrNoPrimaryDocument = errors.New("no primary document in index table")
	ErrSectionNotFound   = errors.New("no exhibit section found in document")
)

// State is a step of the per-filing flow.
type State int

const (
	StateStart State = iota
	StateIndexFetched
	StatePrimaryResolved
	StatePrimaryFetched
	StateSectionLocated
	StateExhibitsScanned
	StateReconciled
	StateDone
)

var stateNames = [...]string{
	"start",
	"index-fetched",
	"primary-doc-resolved",
	"primary-doc-fetched",
	"section-located",
	"exhibits-scanned",
	"reconciled",
	"done",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// MarshalText lets results render states by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// DocumentFetcher retrieves and parses a page.
type DocumentFetcher interface {
	FetchDocument(ctx context.Context, url string) (dom.Node, error)
}

// Result describes how far one filing got and what it produced.
type Result struct {
	Filing filing.Filing `json:"filing"`
	// Reached is the last state entered before done.
	Reached    State         `json:"reached"`
	Err        error         `json:"-"`
	Reason     string        `json:"reason,omitempty"`
	Marker     string        `json:"marker,omitempty"`
	Candidates int           `json:"candidates"`
	Tally      exhibit.Tally `json:"tally"`
}

// Completed reports whether the filing ran through reconciliation.
func (r Result) Completed() bool {
	return r.Err == nil
}

// Processor runs one filing at a time through the exhibit pipeline.
type Processor struct {
	BaseURL    string
	Fetcher    DocumentFetcher
	Scanner    *exhibit.Scanner
	Resolver   *exhibit.Resolver
	Reconciler *exhibit.Reconciler
	Logger     *log.Logger
}

// Process never returns an error: a missing precondition ends the filing in
// StateDone with the reason recorded on the result.
func (p *Processor) Process(ctx context.Context, f filing.Filing) Result {
	logger := p.Logger
	if logger == nil {
		logger = log.Default()
	}
	res := Result{Filing: f, Reached: StateStart}
	abort := func(err error) Result {
		res.Err = err
		res.Reason = err.Error()
		logger.Printf("[WARN] %s %s (%s): %v", f.FormType, f.Accession, entity(f), err)
		return res
	}

	form, ok := Lookup(f.FormType)
	if !ok {
		return abort(fmt.Errorf("%w %s", ErrUnknownForm, f.FormType))
	}
	if f.FilingDate.IsZero() {
		return abort(ErrInvalidDate)
	}
	logger.Printf("[INFO] Processing %s filing %s for %s", f.FormType, f.Accession, entity(f))

	indexURL := edgar.IndexURL(p.BaseURL, f.EntityID, f.Accession)
	index, err := p.Fetcher.FetchDocument(ctx, indexURL)
	if err != nil {
		return abort(fmt.Errorf("index page: %w", err))
	}
	res.Reached = StateIndexFetched

	rows, err := exhibit.ParseIndexTable(index)
	if err != nil {
		return abort(err)
	}
	href, ok := exhibit.PrimaryDocumentHref(rows, form.Label)
	if !ok {
		return abort(fmt.Errorf("%w: %s", ErrNoPrimaryDocument, form.Label))
	}
	docURL := edgar.AbsoluteURL(indexURL, edgar.UnwrapInlineViewer(href))
	res.Reached = StatePrimaryResolved

	doc, err := p.Fetcher.FetchDocument(ctx, docURL)
	if err != nil {
		return abort(fmt.Errorf("primary document: %w", err))
	}
	res.Reached = StatePrimaryFetched

	anchor, marker, ok := exhibit.Locate(doc, form.Strategy)
	if !ok {
		return abort(ErrSectionNotFound)
	}
	res.Marker = marker.Name
	res.Reached = StateSectionLocated

	cands := p.Scanner.Scan(anchor)
	res.Candidates = len(cands)
	res.Reached = StateExhibitsScanned

	deferred, tally := p.Resolver.Resolve(ctx, f, cands)
	res.Tally.Add(tally)
	if len(deferred) > 0 {
		_, tally = p.Reconciler.Reconcile(ctx, f, indexURL, deferred, rows)
		res.Tally.Add(tally)
	}
	res.Reached = StateReconciled

	logger.Printf("[INFO] Finished %s %s: %d candidates, %d direct, %d reconciled, %d overflow, %d failed",
		f.FormType, f.Accession, res.Candidates, res.Tally.Direct, res.Tally.Reconciled, res.Tally.Overflowed, res.Tally.Failed)
	return res
}

func entity(f filing.Filing) string {
	if f.EntityName != "" {
		return f.EntityName
	}
	return f.EntityID
}
