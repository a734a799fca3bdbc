package overtaking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/overtake-analyser/internal/config"
)

func TestParamsConfigAppliesDefaults(t *testing.T) {
	cfg := Params{}.Config()

	assert.Equal(t, DefaultCarPerformance, cfg.CarPerformance)
	assert.Equal(t, DefaultTrackDifficulty, cfg.TrackDifficulty)
	assert.Equal(t, DefaultDriverAggressiveness, cfg.DriverAggressiveness)
	assert.Equal(t, DefaultDriverDefensiveness, cfg.DriverDefensiveness)
	assert.Equal(t, DefaultWeatherCondition, cfg.WeatherCondition)
	assert.Equal(t, DefaultSimulations, cfg.Simulations)
	assert.Equal(t, DefaultSections, cfg.Sections)
	assert.Equal(t, []float64{0.2, 0.8}, cfg.OvertakeZones)
}

func TestParamsConfigKeepsExplicitZeroes(t *testing.T) {
	cfg := Params{
		TrackDifficulty: Float(0),
		OvertakeZones:   []float64{},
	}.Config()

	assert.Equal(t, 0.0, cfg.TrackDifficulty)
	assert.Empty(t, cfg.OvertakeZones)
}

func TestParamsMerge(t *testing.T) {
	base := Params{CarPerformance: Float(1.1), Sections: Int(12)}
	merged := base.Merge(Params{Sections: Int(20), WeatherCondition: Float(0.7)})

	cfg := merged.Config()
	assert.Equal(t, 1.1, cfg.CarPerformance)
	assert.Equal(t, 20, cfg.Sections)
	assert.Equal(t, 0.7, cfg.WeatherCondition)
}

func TestParamsFromConfigRoundTrip(t *testing.T) {
	cfg := exampleConfig()
	assert.Equal(t, cfg, ParamsFromConfig(cfg).Config())
}

func TestFromConfig(t *testing.T) {
	cfg, err := FromConfig(&config.SimulationConfig{
		CarPerformance:       1.2,
		TrackDifficulty:      0.6,
		DriverAggressiveness: 0.8,
		DriverDefensiveness:  0.5,
		WeatherCondition:     0.8,
		Simulations:          1000,
		Sections:             10,
		OvertakeZones:        []float64{0.2, 0.5, 0.8},
	})
	require.NoError(t, err)
	assert.Equal(t, exampleConfig(), cfg)

	_, err = FromConfig(&config.SimulationConfig{Sections: 0, Simulations: 10})
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	_, err = FromConfig(nil)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestSummarize(t *testing.T) {
	summary := Summarize(Result{
		AverageProbabilities: []float64{0.1, 0.4, 0.2, 0.3},
		SuccessRates:         []float64{0.1, 0.3, 0.2, 0.2},
	})

	assert.Equal(t, 4, summary.Sections)
	assert.InDelta(t, 0.25, summary.MeanProbability, 1e-12)
	assert.InDelta(t, 0.2, summary.MeanSuccessRate, 1e-12)
	assert.Equal(t, 1, summary.BestSection)
	assert.Equal(t, 0, summary.WorstSection)
	assert.Equal(t, 0.1, summary.ProbabilityP05)
	assert.Equal(t, 0.3, summary.ProbabilityP95)
}

func TestSummarizeEmpty(t *testing.T) {
	summary := Summarize(Result{})
	assert.Equal(t, -1, summary.BestSection)
	assert.Equal(t, 0.0, summary.MeanProbability)
}

func TestDecodeParams(t *testing.T) {
	params, err := DecodeParams(map[string]interface{}{
		"weather_condition": 0.7,
		"sections":          20,
		"overtake_zones":    []interface{}{0.25, 0.5},
	})
	require.NoError(t, err)

	cfg := params.Config()
	assert.Equal(t, 0.7, cfg.WeatherCondition)
	assert.Equal(t, 20, cfg.Sections)
	assert.Equal(t, []float64{0.25, 0.5}, cfg.OvertakeZones)
	assert.Equal(t, DefaultCarPerformance, cfg.CarPerformance)
}

func TestDecodeParamsRejectsUnknownKeys(t *testing.T) {
	_, err := DecodeParams(map[string]interface{}{"tyre_wear": 0.3})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestDecodeParamsEmpty(t *testing.T) {
	params, err := DecodeParams(nil)
	require.NoError(t, err)
	assert.Equal(t, Params{}, params)
}
