package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/yourusername/overtake-analyser/internal/metrics"
	"github.com/yourusername/overtake-analyser/internal/models"
	"github.com/yourusername/overtake-analyser/internal/overtaking"
)

// Sweepable parameter names
const (
	ParamCarPerformance       = "car_performance"
	ParamTrackDifficulty      = "track_difficulty"
	ParamDriverAggressiveness = "driver_aggressiveness"
	ParamDriverDefensiveness  = "driver_defensiveness"
	ParamWeatherCondition     = "weather_condition"
)

var sweepSetters = map[string]func(*overtaking.Params, float64){
	ParamCarPerformance:       func(p *overtaking.Params, v float64) { p.CarPerformance = overtaking.Float(v) },
	ParamTrackDifficulty:      func(p *overtaking.Params, v float64) { p.TrackDifficulty = overtaking.Float(v) },
	ParamDriverAggressiveness: func(p *overtaking.Params, v float64) { p.DriverAggressiveness = overtaking.Float(v) },
	ParamDriverDefensiveness:  func(p *overtaking.Params, v float64) { p.DriverDefensiveness = overtaking.Float(v) },
	ParamWeatherCondition:     func(p *overtaking.Params, v float64) { p.WeatherCondition = overtaking.Float(v) },
}

// SweepParameters returns the names accepted by Sweep
func SweepParameters() []string {
	names := make([]string, 0, len(sweepSetters))
	for name := range sweepSetters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SweepRequest varies one parameter across an evenly spaced range
type SweepRequest struct {
	Parameter string            `json:"parameter"`
	From      float64           `json:"from"`
	To        float64           `json:"to"`
	Steps     int               `json:"steps"`
	Params    overtaking.Params `json:"params"`
	Seed      int64             `json:"seed"`
}

// SweepPoint is the headline outcome for one value of the swept parameter
type SweepPoint struct {
	Value           float64 `json:"value"`
	MeanProbability float64 `json:"mean_probability"`
	MeanSuccessRate float64 `json:"mean_success_rate"`
	BestSection     int     `json:"best_section"`
}

// Sweep runs one analysis per step. Every step uses the same seed.
func (s *AnalysisService) Sweep(ctx context.Context, req SweepRequest) ([]SweepPoint, error) {
	set, ok := sweepSetters[req.Parameter]
	if !ok {
		return nil, fmt.Errorf("%w: unknown parameter %q", ErrInvalidSweep, req.Parameter)
	}
	if req.Steps < 2 {
		return nil, fmt.Errorf("%w: steps must be at least 2, got %d", ErrInvalidSweep, req.Steps)
	}

	seed, _ := s.resolveSeed(req.Seed)
	base := s.base.Merge(req.Params)
	start := s.now()
	points := make([]SweepPoint, 0, req.Steps)

	for i := 0; i < req.Steps; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		value := req.From + (req.To-req.From)*float64(i)/float64(req.Steps-1)
		params := base
		set(&params, value)

		stepStart := time.Now()
		engine, err := overtaking.NewEngine(params.Config(), overtaking.NewRandSource(seed))
		if err != nil {
			metrics.RecordAnalysis(models.ModeSweep, metrics.StatusFailure, 0)
			return nil, err
		}
		summary := overtaking.Summarize(engine.Analyse())
		metrics.RecordAnalysis(models.ModeSweep, metrics.StatusSuccess, time.Since(stepStart).Seconds())

		points = append(points, SweepPoint{
			Value:           value,
			MeanProbability: summary.MeanProbability,
			MeanSuccessRate: summary.MeanSuccessRate,
			BestSection:     summary.BestSection,
		})
	}

	s.analysisLog.LogSweepCompleted(req.Parameter, req.From, req.To, req.Steps,
		float64(s.now().Sub(start).Microseconds())/1000)
	return points, nil
}
