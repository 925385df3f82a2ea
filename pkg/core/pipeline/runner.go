// Package pipeline drives whole runs: every filing of every roster entity
// through the per-filing processor, with a run summary at the end.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"exhibit_scout/pkg/core/exhibit"
	"exhibit_scout/pkg/core/filing"
	"exhibit_scout/pkg/core/forms"
	"exhibit_scout/pkg/core/roster"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// FilingProcessor handles one filing and reports what happened.
type FilingProcessor interface {
	Process(ctx context.Context, f filing.Filing) forms.Result
}

// Summary is the outcome of a run.
type Summary struct {
	RunID     string          `json:"run_id"`
	Started   time.Time       `json:"started"`
	Finished  time.Time       `json:"finished"`
	Entities  []EntitySummary `json:"entities"`
	Filings   int             `json:"filings"`
	Completed int             `json:"completed"`
	Aborted   int             `json:"aborted"`
	Tally     exhibit.Tally   `json:"tally"`
}

// Duration is how long the run took.
func (s Summary) Duration() time.Duration {
	return s.Finished.Sub(s.Started)
}

// EntitySummary is the outcome for one entity.
type EntitySummary struct {
	ID        string         `json:"cik"`
	Name      string         `json:"name"`
	Filings   int            `json:"filings"`
	Completed int            `json:"completed"`
	Aborted   int            `json:"aborted"`
	Tally     exhibit.Tally  `json:"tally"`
	Results   []forms.Result `json:"results"`
}

func (e *EntitySummary) add(res forms.Result) {
	e.Filings++
	if res.Completed() {
		e.Completed++
	} else {
		e.Aborted++
	}
	e.Tally.Add(res.Tally)
	e.Results = append(e.Results, res)
}

// Runner processes a roster. Filings of one entity always run one at a time
// in roster order; Workers > 1 lets that many entities run side by side.
type Runner struct {
	Processor FilingProcessor
	RosterDir string
	Forms     map[string]bool
	Workers   int
	RunID     string
	Logger    *log.Logger
}

// Run loads the roster and processes every entity in it.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	entities, err := roster.LoadAll(r.RosterDir, r.Forms, r.logger())
	if err != nil {
		return Summary{}, fmt.Errorf("failed to load roster: %w", err)
	}
	return r.RunEntities(ctx, entities)
}

// RunEntities processes the given entities. A failed filing never stops the
// run; only context cancellation does.
func (r *Runner) RunEntities(ctx context.Context, entities []roster.Entity) (Summary, error) {
	logger := r.logger()
	runID := r.RunID
	if runID == "" {
		runID = uuid.New().String()
	}
	sum := Summary{RunID: runID, Started: time.Now()}
	logger.Printf("[INFO] Run %s started: %d entities", runID, len(entities))

	results := make([]EntitySummary, len(entities))
	workers := r.Workers
	if workers < 1 {
		workers = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, ent := range entities {
		g.Go(func() error {
			es, err := r.runEntity(gctx, ent)
			results[i] = es
			return err
		})
	}
	err := g.Wait()

	for _, es := range results {
		if es.ID == "" && es.Filings == 0 {
			continue
		}
		sum.Entities = append(sum.Entities, es)
		sum.Filings += es.Filings
		sum.Completed += es.Completed
		sum.Aborted += es.Aborted
		sum.Tally.Add(es.Tally)
	}
	sum.Finished = time.Now()
	logger.Printf("[INFO] Run %s finished in %v: %d filings, %d completed, %d aborted, %d exhibits downloaded, %d overflowed",
		runID, sum.Duration().Round(time.Millisecond), sum.Filings, sum.Completed, sum.Aborted,
		sum.Tally.Direct+sum.Tally.Reconciled, sum.Tally.Overflowed)
	if err != nil {
		return sum, fmt.Errorf("run interrupted: %w", err)
	}
	return sum, nil
}

func (r *Runner) runEntity(ctx context.Context, ent roster.Entity) (EntitySummary, error) {
	logger := r.logger()
	es := EntitySummary{ID: ent.ID, Name: ent.Name}
	if len(ent.Filings) == 0 {
		return es, nil
	}
	logger.Printf("[INFO] Queueing %d filings for %s (CIK: %s)", len(ent.Filings), ent.Name, ent.ID)

	for _, f := range ent.Filings {
		if err := ctx.Err(); err != nil {
			return es, err
		}
		es.add(r.Processor.Process(ctx, f))
	}
	return es, nil
}

func (r *Runner) logger() *log.Logger {
	if r.Logger == nil {
		return log.Default()
	}
	return r.Logger
}
