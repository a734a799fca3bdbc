package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/overtake-analyser/internal/logger"
	"github.com/yourusername/overtake-analyser/internal/overtaking"
)

func TestSweepProducesOnePointPerStep(t *testing.T) {
	svc := newTestService(Dependencies{})

	points, err := svc.Sweep(context.Background(), SweepRequest{
		Parameter: ParamWeatherCondition,
		From:      0.5,
		To:        1.0,
		Steps:     6,
		Seed:      42,
	})
	require.NoError(t, err)
	require.Len(t, points, 6)

	assert.InDelta(t, 0.5, points[0].Value, 1e-12)
	assert.InDelta(t, 0.6, points[1].Value, 1e-12)
	assert.InDelta(t, 1.0, points[5].Value, 1e-12)
	for _, p := range points {
		assert.GreaterOrEqual(t, p.MeanProbability, 0.0)
		assert.LessOrEqual(t, p.MeanProbability, 1.0)
		assert.GreaterOrEqual(t, p.BestSection, 0)
	}
}

func TestSweepAggressivenessDoesNotLowerProbability(t *testing.T) {
	svc := NewAnalysisService(overtaking.Params{
		Simulations: overtaking.Int(3000),
		Sections:    overtaking.Int(5),
	}, 0, Dependencies{}, logger.Discard())

	points, err := svc.Sweep(context.Background(), SweepRequest{
		Parameter: ParamDriverAggressiveness,
		From:      0.6,
		To:        1.0,
		Steps:     3,
		Seed:      8,
	})
	require.NoError(t, err)

	for i := 1; i < len(points); i++ {
		assert.GreaterOrEqual(t, points[i].MeanProbability, points[i-1].MeanProbability)
	}
}

func TestSweepRejectsInvalidRequests(t *testing.T) {
	svc := newTestService(Dependencies{})

	tests := []struct {
		name string
		req  SweepRequest
	}{
		{"unknown parameter", SweepRequest{Parameter: "tyre_wear", Steps: 3}},
		{"too few steps", SweepRequest{Parameter: ParamCarPerformance, Steps: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Sweep(context.Background(), tt.req)
			assert.ErrorIs(t, err, ErrInvalidSweep)
		})
	}
}

func TestSweepParameters(t *testing.T) {
	assert.Equal(t, []string{
		ParamCarPerformance,
		ParamDriverAggressiveness,
		ParamDriverDefensiveness,
		ParamTrackDifficulty,
		ParamWeatherCondition,
	}, SweepParameters())
}

func TestCompareZones(t *testing.T) {
	svc := newTestService(Dependencies{})

	comparison, err := svc.CompareZones(context.Background(), overtaking.Params{}, 21)
	require.NoError(t, err)

	require.Len(t, comparison.Deltas, 10)
	for i, delta := range comparison.Deltas {
		if comparison.Zones[i] {
			assert.Greater(t, delta, 0.0, "section %d", i)
		} else {
			assert.Equal(t, 0.0, delta, "section %d", i)
		}
	}
	assert.True(t, comparison.Zones[2])
	assert.True(t, comparison.Zones[8])
}
