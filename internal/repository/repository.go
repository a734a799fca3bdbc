package repository

import (
	"fmt"

	"github.com/yourusername/overtake-analyser/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	AnalysisRun AnalysisRunRepository
}

// NewRepositories creates the PostgreSQL-backed repositories
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		AnalysisRun: NewPostgresAnalysisRunRepository(db),
	}, nil
}

// NewMemoryRepositories creates in-memory repositories
func NewMemoryRepositories() *Repositories {
	return &Repositories{
		AnalysisRun: NewMemoryAnalysisRunRepository(),
	}
}
