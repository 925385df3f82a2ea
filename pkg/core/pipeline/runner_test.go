package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"exhibit_scout/pkg/core/edgar"
	"exhibit_scout/pkg/core/exhibit"
	"exhibit_scout/pkg/core/filing"
	"exhibit_scout/pkg/core/forms"
	"exhibit_scout/pkg/core/roster"
)

var quiet = log.New(io.Discard, "", 0)

type fakeProcessor struct {
	mu    sync.Mutex
	seen  []string
	fail  map[string]bool
	block chan struct{}
}

func (p *fakeProcessor) Process(ctx context.Context, f filing.Filing) forms.Result {
	if p.block != nil {
		<-p.block
	}
	p.mu.Lock()
	p.seen = append(p.seen, f.Accession)
	p.mu.Unlock()

	res := forms.Result{Filing: f, Reached: forms.StateReconciled, Candidates: 1}
	if p.fail[f.Accession] {
		res.Reached = forms.StateIndexFetched
		res.Err = fmt.Errorf("primary document: %w", edgar.ErrFetch)
		res.Reason = res.Err.Error()
		return res
	}
	res.Tally = exhibit.Tally{Deferred: 1, Reconciled: 1}
	return res
}

func entity(id, name string, accs ...string) roster.Entity {
	ent := roster.Entity{ID: id, Name: name}
	for _, a := range accs {
		ent.Filings = append(ent.Filings, filing.Filing{
			EntityID: id, EntityName: name, Accession: a, FormType: "10-K",
			FilingDate: time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC),
		})
	}
	return ent
}

func TestRunContinuesAfterFailedFiling(t *testing.T) {
	p := &fakeProcessor{fail: map[string]bool{"a-1": true}}
	r := &Runner{Processor: p, Logger: quiet, RunID: "run-1"}

	sum, err := r.RunEntities(context.Background(), []roster.Entity{entity("1", "Acme", "a-1", "a-2", "a-3")})
	if err != nil {
		t.Fatalf("RunEntities() error = %v", err)
	}
	if got := len(p.seen); got != 3 {
		t.Fatalf("processed %d filings, want 3 (%v)", got, p.seen)
	}
	if sum.Filings != 3 || sum.Completed != 2 || sum.Aborted != 1 {
		t.Errorf("summary = %d/%d/%d, want 3/2/1", sum.Filings, sum.Completed, sum.Aborted)
	}
	if sum.Tally.Reconciled != 2 {
		t.Errorf("Reconciled = %d, want 2", sum.Tally.Reconciled)
	}
	if sum.RunID != "run-1" {
		t.Errorf("RunID = %q", sum.RunID)
	}
}

func TestRunKeepsEntityOrderWithWorkers(t *testing.T) {
	p := &fakeProcessor{}
	r := &Runner{Processor: p, Workers: 3, Logger: quiet}
	ents := []roster.Entity{
		entity("1", "One", "1-a", "1-b"),
		entity("2", "Two", "2-a"),
		entity("3", "Three"),
		entity("4", "Four", "4-a", "4-b", "4-c"),
	}

	sum, err := r.RunEntities(context.Background(), ents)
	if err != nil {
		t.Fatalf("RunEntities() error = %v", err)
	}
	if sum.RunID == "" {
		t.Error("RunID should be generated")
	}
	if len(sum.Entities) != 4 {
		t.Fatalf("entities = %d, want 4", len(sum.Entities))
	}
	for i, want := range []string{"1", "2", "3", "4"} {
		if sum.Entities[i].ID != want {
			t.Errorf("Entities[%d].ID = %q, want %q", i, sum.Entities[i].ID, want)
		}
	}
	four := sum.Entities[3]
	if len(four.Results) != 3 || four.Results[0].Filing.Accession != "4-a" || four.Results[2].Filing.Accession != "4-c" {
		t.Errorf("entity 4 results out of order: %+v", four.Results)
	}
	if sum.Filings != 6 {
		t.Errorf("Filings = %d, want 6", sum.Filings)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := &fakeProcessor{}
	r := &Runner{Processor: p, Logger: quiet}
	_, err := r.RunEntities(ctx, []roster.Entity{entity("1", "Acme", "a-1")})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("RunEntities() error = %v, want context.Canceled", err)
	}
	if len(p.seen) != 0 {
		t.Errorf("processed %v after cancel", p.seen)
	}
}

func TestRunLoadsRoster(t *testing.T) {
	dir := t.TempDir()
	body := `{"cik": "0000000007", "name": "Seven Inc", "filings": {"recent": {
		"accessionNumber": ["7-a", "7-b"], "form": ["10-K", "SC 13G"], "filingDate": ["2015-03-01", "2015-04-01"]}}}`
	if err := os.WriteFile(filepath.Join(dir, "CIK0000000007.json"), []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	p := &fakeProcessor{}
	r := &Runner{Processor: p, RosterDir: dir, Forms: map[string]bool{"10-K": true}, Logger: quiet}
	sum, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(p.seen) != 1 || p.seen[0] != "7-a" {
		t.Errorf("processed %v, want [7-a]", p.seen)
	}
	if len(sum.Entities) != 1 || sum.Entities[0].Name != "Seven Inc" {
		t.Errorf("entities = %+v", sum.Entities)
	}
}

func TestRunMissingRosterDir(t *testing.T) {
	r := &Runner{Processor: &fakeProcessor{}, RosterDir: filepath.Join(t.TempDir(), "nope"), Logger: quiet}
	if _, err := r.Run(context.Background()); err == nil {
		t.Error("Run() expected error for missing roster dir")
	}
}
