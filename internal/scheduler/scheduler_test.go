package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/overtake-analyser/internal/config"
	"github.com/yourusername/overtake-analyser/internal/logger"
	"github.com/yourusername/overtake-analyser/internal/models"
	"github.com/yourusername/overtake-analyser/internal/service"
)

type recordingAnalyser struct {
	mu       sync.Mutex
	requests []service.AnalysisRequest
	err      error
}

func (r *recordingAnalyser) Analyse(ctx context.Context, req service.AnalysisRequest) (*service.AnalysisOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, req)
	if r.err != nil {
		return nil, r.err
	}
	return &service.AnalysisOutcome{}, nil
}

func (r *recordingAnalyser) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.requests)
}

func wetRace() config.ScenarioConfig {
	return config.ScenarioConfig{
		Name: "wet-race",
		Cron: "*/30 * * * *",
		Overrides: map[string]interface{}{
			"weather_condition": 0.7,
			"sections":          20,
		},
	}
}

func TestRunNowAppliesOverrides(t *testing.T) {
	analyser := &recordingAnalyser{}
	s := NewScheduler(analyser, logger.Discard())
	require.NoError(t, s.AddScenario(wetRace()))

	require.NoError(t, s.RunNow(context.Background(), "wet-race"))
	require.Equal(t, 1, analyser.count())

	req := analyser.requests[0]
	assert.Equal(t, models.ModeScheduled, req.Mode)
	assert.Equal(t, "wet-race", req.Label)
	require.NotNil(t, req.Params.WeatherCondition)
	assert.Equal(t, 0.7, *req.Params.WeatherCondition)
	require.NotNil(t, req.Params.Sections)
	assert.Equal(t, 20, *req.Params.Sections)
	assert.Nil(t, req.Params.CarPerformance)
}

func TestRunNowPropagatesFailures(t *testing.T) {
	analyser := &recordingAnalyser{err: errors.New("boom")}
	s := NewScheduler(analyser, logger.Discard())
	require.NoError(t, s.AddScenario(wetRace()))

	assert.Error(t, s.RunNow(context.Background(), "wet-race"))
	assert.ErrorIs(t, s.RunNow(context.Background(), "dry-race"), ErrUnknownScenario)
}

func TestAddScenarioValidation(t *testing.T) {
	s := NewScheduler(&recordingAnalyser{}, logger.Discard())

	bad := wetRace()
	bad.Overrides = map[string]interface{}{"tyre_wear": 0.2}
	assert.Error(t, s.AddScenario(bad))

	badCron := wetRace()
	badCron.Cron = "not a cron"
	assert.Error(t, s.AddScenario(badCron))

	require.NoError(t, s.AddScenario(wetRace()))
	assert.Error(t, s.AddScenario(wetRace()))
	assert.Equal(t, []string{"wet-race"}, s.Scenarios())
}

func TestStartRequiresScenarios(t *testing.T) {
	s := NewScheduler(&recordingAnalyser{}, logger.Discard())
	assert.ErrorIs(t, s.Start(), ErrNoScenarios)
}

func TestStartAndStop(t *testing.T) {
	s := NewScheduler(&recordingAnalyser{}, logger.Discard())
	require.NoError(t, s.AddScenario(wetRace()))

	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())
	assert.ErrorIs(t, s.Start(), ErrSchedulerRunning)
	assert.False(t, s.GetNextRun().IsZero())

	other := wetRace()
	other.Name = "late"
	assert.ErrorIs(t, s.AddScenario(other), ErrSchedulerRunning)

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
	assert.True(t, s.GetNextRun().IsZero())
}

func TestScheduledScenarioFires(t *testing.T) {
	analyser := &recordingAnalyser{}
	s := NewScheduler(analyser, logger.Discard())

	sc := wetRace()
	sc.Cron = "@every 1s"
	require.NoError(t, s.AddScenario(sc))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	assert.Eventually(t, func() bool { return analyser.count() > 0 }, 3*time.Second, 50*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}
