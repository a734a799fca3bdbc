// Package scheduler re-runs configured overtaking scenarios on cron schedules.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/overtake-analyser/internal/config"
	"github.com/yourusername/overtake-analyser/internal/logger"
	"github.com/yourusername/overtake-analyser/internal/metrics"
	"github.com/yourusername/overtake-analyser/internal/models"
	"github.com/yourusername/overtake-analyser/internal/overtaking"
	"github.com/yourusername/overtake-analyser/internal/service"
)

// Scheduler errors
var (
	ErrSchedulerRunning = errors.New("scheduler is running")
	ErrNoScenarios      = errors.New("no scenarios scheduled")
	ErrUnknownScenario  = errors.New("unknown scenario")
)

// Analyser runs a single analysis
type Analyser interface {
	Analyse(ctx context.Context, req service.AnalysisRequest) (*service.AnalysisOutcome, error)
}

type scenario struct {
	name   string
	label  string
	params overtaking.Params
	entry  cron.EntryID
}

// Scheduler manages scheduled scenario analyses
type Scheduler struct {
	cron            *cron.Cron
	analyser        Analyser
	logger          *logrus.Logger
	analysisLog     *logger.AnalysisLogger
	mu              sync.RWMutex
	isRunning       bool
	scenarios       map[string]*scenario
	jobTimeout      time.Duration
	gracefulTimeout time.Duration
}

// NewScheduler creates a new scheduler
func NewScheduler(analyser Analyser, log *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:            cron.New(cron.WithLocation(time.UTC)),
		analyser:        analyser,
		logger:          log,
		analysisLog:     logger.NewAnalysisLogger(log),
		scenarios:       make(map[string]*scenario),
		jobTimeout:      10 * time.Minute,
		gracefulTimeout: 30 * time.Second,
	}
}

// AddScenario schedules sc. Scenarios must be added before Start.
func (s *Scheduler) AddScenario(sc config.ScenarioConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule %q: %w", sc.Name, ErrSchedulerRunning)
	}
	if _, exists := s.scenarios[sc.Name]; exists {
		return fmt.Errorf("scenario %q already scheduled", sc.Name)
	}

	params, err := overtaking.DecodeParams(sc.Overrides)
	if err != nil {
		return fmt.Errorf("scenario %q: %w", sc.Name, err)
	}

	label := sc.Label
	if label == "" {
		label = sc.Name
	}
	job := &scenario{name: sc.Name, label: label, params: params}

	entryID, err := s.cron.AddFunc(sc.Cron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
		defer cancel()
		_ = s.run(ctx, job)
	})
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	job.entry = entryID
	s.scenarios[sc.Name] = job
	s.logger.WithFields(logrus.Fields{
		"scenario": sc.Name,
		"cron":     sc.Cron,
	}).Info("Scheduled scenario")

	return nil
}

// RunNow runs the named scenario immediately, outside its schedule
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.RLock()
	job, ok := s.scenarios[name]
	s.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownScenario, name)
	}
	return s.run(ctx, job)
}

func (s *Scheduler) run(ctx context.Context, job *scenario) error {
	_, err := s.analyser.Analyse(ctx, service.AnalysisRequest{
		Label:  job.label,
		Params: job.params,
		Mode:   models.ModeScheduled,
	})

	status := metrics.StatusSuccess
	if err != nil {
		status = metrics.StatusFailure
	}
	metrics.RecordScheduledRun(job.name, status)
	s.analysisLog.LogScheduledRun(job.name, status, err)
	return err
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return ErrSchedulerRunning
	}
	if len(s.scenarios) == 0 {
		return ErrNoScenarios
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("scenarios", len(s.scenarios)).Info("Scheduler started")

	return nil
}

// Stop stops the scheduler, waiting up to the graceful timeout for running jobs
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.gracefulTimeout)
	defer cancel()

	s.isRunning = false
	select {
	case <-s.cron.Stop().Done():
		s.logger.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler stop timed out after %s", s.gracefulTimeout)
	}
}

// Run starts the scheduler and blocks until ctx is cancelled
func (s *Scheduler) Run(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	return s.Stop()
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRun returns the time of the next scheduled run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, job := range s.scenarios {
		entry := s.cron.Entry(job.entry)
		if entry.Valid() && (nextRun.IsZero() || entry.Next.Before(nextRun)) {
			nextRun = entry.Next
		}
	}
	return nextRun
}

// Scenarios returns the names of the scheduled scenarios
func (s *Scheduler) Scenarios() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.scenarios))
	for name := range s.scenarios {
		names = append(names, name)
	}
	return names
}
