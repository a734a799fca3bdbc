package service

import (
	"context"
	"time"

	"github.com/yourusername/overtake-analyser/internal/metrics"
	"github.com/yourusername/overtake-analyser/internal/models"
	"github.com/yourusername/overtake-analyser/internal/overtaking"
)

// ZoneComparison contrasts a configuration with the same configuration stripped of its zones
type ZoneComparison struct {
	Config       overtaking.Config `json:"config"`
	Seed         int64             `json:"seed"`
	Zones        []bool            `json:"zones"`
	WithZones    []float64         `json:"with_zones"`
	WithoutZones []float64         `json:"without_zones"`
	Deltas       []float64         `json:"deltas"`
}

// CompareZones simulates params twice under one seed, with and without overtake zones
func (s *AnalysisService) CompareZones(ctx context.Context, params overtaking.Params, seed int64) (*ZoneComparison, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg := s.resolve(params)
	seed, _ = s.resolveSeed(seed)
	start := time.Now()

	withZones, err := simulate(cfg, seed)
	if err != nil {
		metrics.RecordAnalysis(models.ModeCompare, metrics.StatusFailure, 0)
		return nil, err
	}

	stripped := cfg
	stripped.OvertakeZones = []float64{}
	withoutZones, err := simulate(stripped, seed)
	if err != nil {
		metrics.RecordAnalysis(models.ModeCompare, metrics.StatusFailure, 0)
		return nil, err
	}

	comparison := &ZoneComparison{
		Config:       cfg,
		Seed:         seed,
		Zones:        make([]bool, cfg.Sections),
		WithZones:    withZones,
		WithoutZones: withoutZones,
		Deltas:       make([]float64, cfg.Sections),
	}
	for i := range withZones {
		comparison.Zones[i] = cfg.IsZone(i)
		comparison.Deltas[i] = withZones[i] - withoutZones[i]
	}

	metrics.RecordAnalysis(models.ModeCompare, metrics.StatusSuccess, time.Since(start).Seconds())
	return comparison, nil
}

func simulate(cfg overtaking.Config, seed int64) ([]float64, error) {
	engine, err := overtaking.NewEngine(cfg, overtaking.NewRandSource(seed))
	if err != nil {
		return nil, err
	}
	return engine.Simulate(), nil
}
