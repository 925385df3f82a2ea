package store

import (
	"context"
	"fmt"

	"exhibit_scout/pkg/core/filing"

	"github.com/jackc/pgx/v5/pgxpool"
)

const createExhibitsTable = `
	CREATE TABLE IF NOT EXISTS filing_exhibits (
		id               BIGSERIAL PRIMARY KEY,
		run_id           UUID NOT NULL,
		entity           TEXT NOT NULL,
		filing_year      TEXT NOT NULL,
		form_type        TEXT NOT NULL,
		accession_number TEXT NOT NULL,
		exhibit          TEXT NOT NULL,
		description      TEXT NOT NULL,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (accession_number, exhibit)
	)
`

// ManifestRepo mirrors manifest rows into Postgres.
type ManifestRepo struct {
	pool  *pgxpool.Pool
	runID string
}

// NewManifestRepo creates a repository that stamps rows with runID.
func NewManifestRepo(pool *pgxpool.Pool, runID string) *ManifestRepo {
	return &ManifestRepo{pool: pool, runID: runID}
}

// EnsureSchema creates the exhibits table if it does not exist.
func (r *ManifestRepo) EnsureSchema(ctx context.Context) error {
	if r.pool == nil {
		return fmt.Errorf("database pool not configured")
	}
	if _, err := r.pool.Exec(ctx, createExhibitsTable); err != nil {
		return fmt.Errorf("failed to create filing_exhibits: %w", err)
	}
	return nil
}

// AppendManifestRow upserts one exhibit; re-processing a filing overwrites
// the earlier row just like the file on disk.
func (r *ManifestRepo) AppendManifestRow(ctx context.Context, row filing.ManifestRow) error {
	if r.pool == nil {
		return fmt.Errorf("database pool not configured")
	}

	query := `
		INSERT INTO filing_exhibits (
			run_id, entity, filing_year, form_type, accession_number, exhibit, description
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (accession_number, exhibit)
		DO UPDATE SET
			run_id = EXCLUDED.run_id,
			description = EXCLUDED.description,
			updated_at = NOW()
	`
	_, err := r.pool.Exec(ctx, query,
		r.runID, row.Entity, row.Year, row.FormType, row.Accession, row.Identifier, row.Description,
	)
	if err != nil {
		return fmt.Errorf("failed to save exhibit %s/%s: %w", row.Accession, row.Identifier, err)
	}
	return nil
}
