package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yourusername/overtake-analyser/internal/logger"
	"github.com/yourusername/overtake-analyser/internal/overtaking"
)

func TestCheckRequestSize(t *testing.T) {
	svc := newTestService(Dependencies{})

	tests := []struct {
		name    string
		params  overtaking.Params
		steps   int
		wantErr bool
	}{
		{"base configuration", overtaking.Params{}, 0, false},
		{"at the limits", overtaking.Params{Sections: overtaking.Int(50), Simulations: overtaking.Int(1000000)}, 200, false},
		{"too many sections", overtaking.Params{Sections: overtaking.Int(10001)}, 0, true},
		{"too many simulations", overtaking.Params{Simulations: overtaking.Int(1000001)}, 0, true},
		{"too many steps", overtaking.Params{}, 201, true},
		{"too many trials", overtaking.Params{Sections: overtaking.Int(10000), Simulations: overtaking.Int(10000)}, 0, true},
		{"invalid counts are left to the engine", overtaking.Params{Sections: overtaking.Int(0)}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.CheckRequestSize(tt.params, tt.steps)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrRequestTooLarge)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCheckRequestSizeUsesBaseConfiguration(t *testing.T) {
	svc := NewAnalysisService(overtaking.Params{
		Sections:    overtaking.Int(10000),
		Simulations: overtaking.Int(10000),
	}, 0, Dependencies{}, logger.Discard())

	assert.ErrorIs(t, svc.CheckRequestSize(overtaking.Params{}, 0), ErrRequestTooLarge)
	assert.NoError(t, svc.CheckRequestSize(overtaking.Params{Simulations: overtaking.Int(100)}, 0))
}
