package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/yourusername/overtake-analyser/internal/overtaking"
)

// MaxTrials caps sections x simulations for a single request
const MaxTrials = 50_000_000

// requestSize is the resolved problem size of a network request
type requestSize struct {
	Sections    int `validate:"lte=10000"`
	Simulations int `validate:"lte=1000000"`
	Steps       int `validate:"lte=200"`
}

var sizeValidator = validator.New()

// CheckRequestSize rejects params (and sweep steps) whose resolved size is too large to serve.
// Omitted params resolve against the service's base configuration.
func (s *AnalysisService) CheckRequestSize(params overtaking.Params, steps int) error {
	cfg := s.resolve(params)
	size := requestSize{Sections: cfg.Sections, Simulations: cfg.Simulations, Steps: steps}

	if err := sizeValidator.Struct(size); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
			fieldError := validationErrors[0]
			return fmt.Errorf("%w: %s must be at most %s, got %v", ErrRequestTooLarge,
				strings.ToLower(fieldError.Field()), fieldError.Param(), fieldError.Value())
		}
		return fmt.Errorf("%w: %v", ErrRequestTooLarge, err)
	}

	if trials := float64(cfg.Sections) * float64(cfg.Simulations); trials > MaxTrials {
		return fmt.Errorf("%w: %d sections x %d simulations exceeds %d trials",
			ErrRequestTooLarge, cfg.Sections, cfg.Simulations, MaxTrials)
	}
	return nil
}
