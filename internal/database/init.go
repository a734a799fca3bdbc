package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/overtake-analyser/internal/config"
)

const analysisRunsSchema = `
CREATE TABLE IF NOT EXISTS analysis_runs (
	id                    UUID PRIMARY KEY,
	label                 TEXT NOT NULL DEFAULT '',
	mode                  TEXT NOT NULL,
	seed                  BIGINT NOT NULL,
	config                JSONB NOT NULL,
	average_probabilities DOUBLE PRECISION[] NOT NULL,
	success_rates         DOUBLE PRECISION[] NOT NULL,
	mean_probability      DOUBLE PRECISION NOT NULL,
	mean_success_rate     DOUBLE PRECISION NOT NULL,
	best_section          INTEGER NOT NULL,
	duration_ms           DOUBLE PRECISION NOT NULL,
	created_at            TIMESTAMPTZ NOT NULL DEFAULT now()
)`

var analysisRunsIndexes = []string{
	`CREATE INDEX IF NOT EXISTS analysis_runs_created_at_idx ON analysis_runs (created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS analysis_runs_label_idx ON analysis_runs (label)`,
}

// Initialize creates a database connection pool and ensures the schema exists
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// EnsureSchema creates the analysis_runs table and its indexes if missing
func EnsureSchema(ctx context.Context, db *DB) error {
	return db.WithTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, analysisRunsSchema); err != nil {
			return fmt.Errorf("failed to create analysis_runs table: %w", err)
		}
		for _, stmt := range analysisRunsIndexes {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("failed to create analysis_runs index: %w", err)
			}
		}
		return nil
	})
}
