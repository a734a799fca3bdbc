// Package overtaking estimates per-section overtaking probabilities with Monte Carlo sampling.
package overtaking

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/yourusername/overtake-analyser/internal/config"
)

// Default model parameters applied when a field is omitted.
const (
	DefaultCarPerformance       = 1.0
	DefaultTrackDifficulty      = 0.5
	DefaultDriverAggressiveness = 0.7
	DefaultDriverDefensiveness  = 0.6
	DefaultWeatherCondition     = 1.0
	DefaultSimulations          = 1000
	DefaultSections             = 10
)

// DefaultOvertakeZones returns the default overtake-friendly positions.
func DefaultOvertakeZones() []float64 {
	return []float64{0.2, 0.8}
}

// Config is the immutable parameter snapshot an Engine runs against.
type Config struct {
	CarPerformance       float64   `json:"car_performance"`
	TrackDifficulty      float64   `json:"track_difficulty"`
	DriverAggressiveness float64   `json:"driver_aggressiveness"`
	DriverDefensiveness  float64   `json:"driver_defensiveness"`
	WeatherCondition     float64   `json:"weather_condition"`
	Simulations          int       `json:"simulations"`
	Sections             int       `json:"sections"`
	OvertakeZones        []float64 `json:"overtake_zones"`
}

// DefaultConfig returns a Config with every field at its default.
func DefaultConfig() Config {
	return Params{}.Config()
}

// Validate checks the structural counts. Semantic ranges are not enforced.
func (c Config) Validate() error {
	if c.Sections <= 0 {
		return fmt.Errorf("%w: sections must be positive, got %d", ErrInvalidConfiguration, c.Sections)
	}
	if c.Simulations <= 0 {
		return fmt.Errorf("%w: simulations must be positive, got %d", ErrInvalidConfiguration, c.Simulations)
	}
	return nil
}

// IsZone reports whether the section's normalized position exactly equals a configured zone.
func (c Config) IsZone(section int) bool {
	position := float64(section) / float64(c.Sections)
	for _, zone := range c.OvertakeZones {
		if position == zone {
			return true
		}
	}
	return false
}

func (c Config) clone() Config {
	out := c
	out.OvertakeZones = append([]float64(nil), c.OvertakeZones...)
	return out
}

// Params is the optional-field form of Config. A nil field means "use the default".
type Params struct {
	CarPerformance       *float64  `json:"car_performance,omitempty" mapstructure:"car_performance"`
	TrackDifficulty      *float64  `json:"track_difficulty,omitempty" mapstructure:"track_difficulty"`
	DriverAggressiveness *float64  `json:"driver_aggressiveness,omitempty" mapstructure:"driver_aggressiveness"`
	DriverDefensiveness  *float64  `json:"driver_defensiveness,omitempty" mapstructure:"driver_defensiveness"`
	WeatherCondition     *float64  `json:"weather_condition,omitempty" mapstructure:"weather_condition"`
	Simulations          *int      `json:"simulations,omitempty" mapstructure:"simulations"`
	Sections             *int      `json:"sections,omitempty" mapstructure:"sections"`
	OvertakeZones        []float64 `json:"overtake_zones,omitempty" mapstructure:"overtake_zones"`
}

// Config resolves the params into a full Config, substituting defaults once.
func (p Params) Config() Config {
	cfg := Config{
		CarPerformance:       floatOr(p.CarPerformance, DefaultCarPerformance),
		TrackDifficulty:      floatOr(p.TrackDifficulty, DefaultTrackDifficulty),
		DriverAggressiveness: floatOr(p.DriverAggressiveness, DefaultDriverAggressiveness),
		DriverDefensiveness:  floatOr(p.DriverDefensiveness, DefaultDriverDefensiveness),
		WeatherCondition:     floatOr(p.WeatherCondition, DefaultWeatherCondition),
		Simulations:          intOr(p.Simulations, DefaultSimulations),
		Sections:             intOr(p.Sections, DefaultSections),
		OvertakeZones:        DefaultOvertakeZones(),
	}
	if p.OvertakeZones != nil {
		cfg.OvertakeZones = append([]float64(nil), p.OvertakeZones...)
	}
	return cfg
}

// Merge returns p with every non-nil field of override applied on top.
func (p Params) Merge(override Params) Params {
	out := p
	if override.CarPerformance != nil {
		out.CarPerformance = override.CarPerformance
	}
	if override.TrackDifficulty != nil {
		out.TrackDifficulty = override.TrackDifficulty
	}
	if override.DriverAggressiveness != nil {
		out.DriverAggressiveness = override.DriverAggressiveness
	}
	if override.DriverDefensiveness != nil {
		out.DriverDefensiveness = override.DriverDefensiveness
	}
	if override.WeatherCondition != nil {
		out.WeatherCondition = override.WeatherCondition
	}
	if override.Simulations != nil {
		out.Simulations = override.Simulations
	}
	if override.Sections != nil {
		out.Sections = override.Sections
	}
	if override.OvertakeZones != nil {
		out.OvertakeZones = override.OvertakeZones
	}
	return out
}

// ParamsFromConfig returns params with every field set from cfg.
func ParamsFromConfig(cfg Config) Params {
	return Params{
		CarPerformance:       Float(cfg.CarPerformance),
		TrackDifficulty:      Float(cfg.TrackDifficulty),
		DriverAggressiveness: Float(cfg.DriverAggressiveness),
		DriverDefensiveness:  Float(cfg.DriverDefensiveness),
		WeatherCondition:     Float(cfg.WeatherCondition),
		Simulations:          Int(cfg.Simulations),
		Sections:             Int(cfg.Sections),
		OvertakeZones:        append([]float64{}, cfg.OvertakeZones...),
	}
}

// FromConfig converts the application simulation section into an engine Config.
func FromConfig(cfg *config.SimulationConfig) (Config, error) {
	if cfg == nil {
		return Config{}, fmt.Errorf("%w: simulation config is required", ErrInvalidConfiguration)
	}
	out := Config{
		CarPerformance:       cfg.CarPerformance,
		TrackDifficulty:      cfg.TrackDifficulty,
		DriverAggressiveness: cfg.DriverAggressiveness,
		DriverDefensiveness:  cfg.DriverDefensiveness,
		WeatherCondition:     cfg.WeatherCondition,
		Simulations:          cfg.Simulations,
		Sections:             cfg.Sections,
		OvertakeZones:        append([]float64{}, cfg.OvertakeZones...),
	}
	return out, out.Validate()
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

func floatOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

// DecodeParams decodes a loosely typed override map, such as a YAML scenario block, into Params.
// Unknown keys are rejected.
func DecodeParams(input map[string]interface{}) (Params, error) {
	var params Params
	if len(input) == 0 {
		return params, nil
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &params,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return Params{}, err
	}
	if err := decoder.Decode(input); err != nil {
		return Params{}, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	return params, nil
}
