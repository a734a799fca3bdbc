package overtaking

import (
	"fmt"
	"math"
)

const (
	performanceStdDev = 0.1
	trackFactorFloor  = 0.5
	zoneBonus         = 1.0
	nonZoneBonus      = 0.8
	successDamping    = 0.85
	successNoise      = 0.05
)

// Result holds the per-section output of Analyse, index-aligned by section.
type Result struct {
	AverageProbabilities []float64 `json:"average_probabilities"`
	SuccessRates         []float64 `json:"success_rates"`
}

// Engine runs overtaking trials against a fixed Config.
// An Engine is not safe for concurrent use; give each goroutine its own.
type Engine struct {
	cfg Config
	src RandSource
}

// NewEngine validates cfg and binds it to the randomness source.
func NewEngine(cfg Config, src RandSource) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if src == nil {
		return nil, fmt.Errorf("%w: random source is required", ErrInvalidConfiguration)
	}
	return &Engine{cfg: cfg.clone(), src: src}, nil
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() Config {
	return e.cfg.clone()
}

// Simulate returns the mean overtake chance for every section.
func (e *Engine) Simulate() []float64 {
	probabilities := make([]float64, e.cfg.Sections)
	driverFactor := e.cfg.DriverAggressiveness - e.cfg.DriverDefensiveness
	weatherFactor := e.cfg.WeatherCondition
	trackCeiling := 1 - e.cfg.TrackDifficulty

	for section := 0; section < e.cfg.Sections; section++ {
		bonus := nonZoneBonus
		if e.cfg.IsZone(section) {
			bonus = zoneBonus
		}

		total := 0.0
		for i := 0; i < e.cfg.Simulations; i++ {
			performanceFactor := normal(e.src, e.cfg.CarPerformance, performanceStdDev)
			trackFactor := uniform(e.src, trackFactorFloor, trackCeiling)
			chance := performanceFactor * trackFactor * driverFactor * weatherFactor * bonus
			total += clamp(chance, 0, 1)
		}
		probabilities[section] = total / float64(e.cfg.Simulations)
	}

	return probabilities
}

// Analyse runs Simulate and derives a noisy, damped success rate for each section.
func (e *Engine) Analyse() Result {
	probabilities := e.Simulate()
	result := Result{
		AverageProbabilities: probabilities,
		SuccessRates:         make([]float64, len(probabilities)),
	}
	for i, p := range probabilities {
		noise := uniform(e.src, -successNoise, successNoise)
		result.SuccessRates[i] = clamp(p*successDamping+noise, 0, 1)
	}
	return result
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
