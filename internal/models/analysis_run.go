package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Analysis modes
const (
	ModeAnalyse   = "analyse"
	ModeScheduled = "scheduled"
	ModeSweep     = "sweep"
	ModeCompare   = "compare"
)

var runValidator = validator.New()

// AnalysisRun represents a persisted overtaking analysis
type AnalysisRun struct {
	ID                   uuid.UUID       `db:"id" json:"id" validate:"required"`
	Label                string          `db:"label" json:"label"`
	Mode                 string          `db:"mode" json:"mode" validate:"required,oneof=analyse scheduled sweep compare"`
	Seed                 int64           `db:"seed" json:"seed"`
	Config               json.RawMessage `db:"config" json:"config" validate:"required"`
	AverageProbabilities []float64       `db:"average_probabilities" json:"average_probabilities" validate:"required,min=1,dive,gte=0,lte=1"`
	SuccessRates         []float64       `db:"success_rates" json:"success_rates" validate:"required,min=1,dive,gte=0,lte=1"`
	MeanProbability      float64         `db:"mean_probability" json:"mean_probability"`
	MeanSuccessRate      float64         `db:"mean_success_rate" json:"mean_success_rate"`
	BestSection          int             `db:"best_section" json:"best_section"`
	DurationMs           float64         `db:"duration_ms" json:"duration_ms"`
	CreatedAt            time.Time       `db:"created_at" json:"created_at"`
}

// Sections returns the number of track sections in the run
func (r *AnalysisRun) Sections() int {
	return len(r.AverageProbabilities)
}

// Validate checks the run before it is stored
func (r *AnalysisRun) Validate() error {
	if err := runValidator.Struct(r); err != nil {
		return fmt.Errorf("invalid analysis run: %w", err)
	}
	if len(r.AverageProbabilities) != len(r.SuccessRates) {
		return fmt.Errorf("invalid analysis run: %d probabilities but %d success rates",
			len(r.AverageProbabilities), len(r.SuccessRates))
	}
	return nil
}

// Clone returns a deep copy of the run
func (r *AnalysisRun) Clone() *AnalysisRun {
	out := *r
	out.Config = append(json.RawMessage(nil), r.Config...)
	out.AverageProbabilities = append([]float64(nil), r.AverageProbabilities...)
	out.SuccessRates = append([]float64(nil), r.SuccessRates...)
	return &out
}
