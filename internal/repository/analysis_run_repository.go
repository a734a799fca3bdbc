package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/yourusername/overtake-analyser/internal/database"
	"github.com/yourusername/overtake-analyser/internal/models"
)

const (
	errScanAnalysisRun  = "failed to scan analysis run: %w"
	uniqueViolationCode = "23505"
	analysisRunColumns  = `id, label, mode, seed, config, average_probabilities, success_rates,
		mean_probability, mean_success_rate, best_section, duration_ms, created_at`
)

// PostgresAnalysisRunRepository implements AnalysisRunRepository for PostgreSQL
type PostgresAnalysisRunRepository struct {
	db *database.DB
}

// NewPostgresAnalysisRunRepository creates a new analysis run repository
func NewPostgresAnalysisRunRepository(db *database.DB) AnalysisRunRepository {
	return &PostgresAnalysisRunRepository{db: db}
}

// Save inserts an analysis run
func (r *PostgresAnalysisRunRepository) Save(ctx context.Context, run *models.AnalysisRun) error {
	if err := run.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO analysis_runs (` + analysisRunColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`
	_, err := r.db.GetPool().Exec(ctx, query,
		run.ID, run.Label, run.Mode, run.Seed, run.Config, run.AverageProbabilities, run.SuccessRates,
		run.MeanProbability, run.MeanSuccessRate, run.BestSection, run.DurationMs, run.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return fmt.Errorf("analysis run %s: %w", run.ID, models.ErrDuplicateKey)
		}
		return fmt.Errorf("failed to save analysis run: %w", err)
	}
	return nil
}

// GetByID retrieves an analysis run by ID
func (r *PostgresAnalysisRunRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.AnalysisRun, error) {
	query := `SELECT ` + analysisRunColumns + ` FROM analysis_runs WHERE id = $1`

	run, err := scanAnalysisRun(r.db.GetPool().QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("analysis run %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf(errScanAnalysisRun, err)
	}
	return run, nil
}

// GetLatest retrieves the most recent analysis runs
func (r *PostgresAnalysisRunRepository) GetLatest(ctx context.Context, limit int) ([]*models.AnalysisRun, error) {
	query := `SELECT ` + analysisRunColumns + ` FROM analysis_runs ORDER BY created_at DESC LIMIT $1`

	rows, err := r.db.GetPool().Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest analysis runs: %w", err)
	}
	return collectAnalysisRuns(rows)
}

// GetByLabel retrieves the most recent analysis runs with a label
func (r *PostgresAnalysisRunRepository) GetByLabel(ctx context.Context, label string, limit int) ([]*models.AnalysisRun, error) {
	query := `SELECT ` + analysisRunColumns + ` FROM analysis_runs WHERE label = $1 ORDER BY created_at DESC LIMIT $2`

	rows, err := r.db.GetPool().Query(ctx, query, label, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis runs by label: %w", err)
	}
	return collectAnalysisRuns(rows)
}

// Delete removes an analysis run
func (r *PostgresAnalysisRunRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.GetPool().Exec(ctx, `DELETE FROM analysis_runs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete analysis run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("analysis run %s: %w", id, models.ErrNotFound)
	}
	return nil
}

func scanAnalysisRun(row pgx.Row) (*models.AnalysisRun, error) {
	run := &models.AnalysisRun{}
	err := row.Scan(
		&run.ID, &run.Label, &run.Mode, &run.Seed, &run.Config, &run.AverageProbabilities, &run.SuccessRates,
		&run.MeanProbability, &run.MeanSuccessRate, &run.BestSection, &run.DurationMs, &run.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return run, nil
}

func collectAnalysisRuns(rows pgx.Rows) ([]*models.AnalysisRun, error) {
	defer rows.Close()

	var runs []*models.AnalysisRun
	for rows.Next() {
		run, err := scanAnalysisRun(rows)
		if err != nil {
			return nil, fmt.Errorf(errScanAnalysisRun, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
