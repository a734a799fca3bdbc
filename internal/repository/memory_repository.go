package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/yourusername/overtake-analyser/internal/models"
)

// MemoryAnalysisRunRepository keeps analysis runs in process memory.
// It backs the analyser when no database is configured.
type MemoryAnalysisRunRepository struct {
	mu   sync.RWMutex
	runs map[uuid.UUID]*models.AnalysisRun
}

// NewMemoryAnalysisRunRepository creates an empty in-memory repository
func NewMemoryAnalysisRunRepository() *MemoryAnalysisRunRepository {
	return &MemoryAnalysisRunRepository{runs: make(map[uuid.UUID]*models.AnalysisRun)}
}

// Save stores a copy of run
func (r *MemoryAnalysisRunRepository) Save(ctx context.Context, run *models.AnalysisRun) error {
	if err := run.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.runs[run.ID]; exists {
		return fmt.Errorf("analysis run %s: %w", run.ID, models.ErrDuplicateKey)
	}
	r.runs[run.ID] = run.Clone()
	return nil
}

// GetByID returns a copy of the run with id
func (r *MemoryAnalysisRunRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.AnalysisRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	run, ok := r.runs[id]
	if !ok {
		return nil, fmt.Errorf("analysis run %s: %w", id, models.ErrNotFound)
	}
	return run.Clone(), nil
}

// GetLatest returns up to limit runs, newest first
func (r *MemoryAnalysisRunRepository) GetLatest(ctx context.Context, limit int) ([]*models.AnalysisRun, error) {
	return r.filter(limit, func(*models.AnalysisRun) bool { return true }), nil
}

// GetByLabel returns up to limit runs with label, newest first
func (r *MemoryAnalysisRunRepository) GetByLabel(ctx context.Context, label string, limit int) ([]*models.AnalysisRun, error) {
	return r.filter(limit, func(run *models.AnalysisRun) bool { return run.Label == label }), nil
}

// Delete removes the run with id
func (r *MemoryAnalysisRunRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.runs[id]; !ok {
		return fmt.Errorf("analysis run %s: %w", id, models.ErrNotFound)
	}
	delete(r.runs, id)
	return nil
}

func (r *MemoryAnalysisRunRepository) filter(limit int, keep func(*models.AnalysisRun) bool) []*models.AnalysisRun {
	r.mu.RLock()
	defer r.mu.RUnlock()

	runs := make([]*models.AnalysisRun, 0, len(r.runs))
	for _, run := range r.runs {
		if keep(run) {
			runs = append(runs, run.Clone())
		}
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs
}
