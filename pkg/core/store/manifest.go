package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"exhibit_scout/pkg/core/filing"
)

// CSVManifest appends one CSV row per downloaded exhibit. The file is opened,
// written and closed on every call; the mutex serializes concurrent workers.
type CSVManifest struct {
	path string
	mu   sync.Mutex
}

// NewCSVManifest creates a manifest writer for path.
func NewCSVManifest(path string) *CSVManifest {
	return &CSVManifest{path: path}
}

// Path returns the manifest file location.
func (m *CSVManifest) Path() string {
	return m.path
}

// AppendManifestRow appends row to the manifest file.
func (m *CSVManifest) AppendManifestRow(_ context.Context, row filing.ManifestRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if dir := filepath.Dir(m.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create manifest dir: %w", err)
		}
	}
	f, err := os.OpenFile(m.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open manifest: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(row.Record()); err != nil {
		return fmt.Errorf("failed to write manifest row: %w", err)
	}
	w.Flush()
	return w.Error()
}

// ReadManifest loads every row of a manifest file.
func ReadManifest(path string) ([]filing.ManifestRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 6
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	rows := make([]filing.ManifestRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, filing.ManifestRow{
			Entity: rec[0], Year: rec[1], FormType: rec[2],
			Accession: rec[3], Identifier: rec[4], Description: rec[5],
		})
	}
	return rows, nil
}

// ManifestSink is anything that accepts manifest rows.
type ManifestSink interface {
	AppendManifestRow(ctx context.Context, row filing.ManifestRow) error
}

// MultiManifest fans a row out to several sinks. Every sink is tried; the
// errors are joined.
type MultiManifest []ManifestSink

func (mm MultiManifest) AppendManifestRow(ctx context.Context, row filing.ManifestRow) error {
	var errs []error
	for _, s := range mm {
		if err := s.AppendManifestRow(ctx, row); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
