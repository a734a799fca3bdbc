package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRun() *AnalysisRun {
	return &AnalysisRun{
		ID:                   uuid.New(),
		Label:                "monza",
		Mode:                 ModeAnalyse,
		Seed:                 42,
		Config:               json.RawMessage(`{"sections":2}`),
		AverageProbabilities: []float64{0.1, 0.2},
		SuccessRates:         []float64{0.08, 0.2},
		CreatedAt:            time.Now(),
	}
}

func TestAnalysisRunValidate(t *testing.T) {
	require.NoError(t, validRun().Validate())

	run := validRun()
	run.Mode = "race"
	assert.Error(t, run.Validate())

	run = validRun()
	run.AverageProbabilities = []float64{0.1, 1.2}
	assert.Error(t, run.Validate())

	run = validRun()
	run.SuccessRates = []float64{0.1}
	assert.Error(t, run.Validate())

	run = validRun()
	run.ID = uuid.Nil
	assert.Error(t, run.Validate())
}

func TestAnalysisRunClone(t *testing.T) {
	run := validRun()
	clone := run.Clone()
	clone.AverageProbabilities[0] = 0.9

	assert.Equal(t, 0.1, run.AverageProbabilities[0])
	assert.Equal(t, 2, clone.Sections())
}
