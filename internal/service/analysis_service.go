// Package service orchestrates overtaking analyses: engine runs, caching, persistence and publication.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/overtake-analyser/internal/cache"
	"github.com/yourusername/overtake-analyser/internal/logger"
	"github.com/yourusername/overtake-analyser/internal/metrics"
	"github.com/yourusername/overtake-analyser/internal/models"
	"github.com/yourusername/overtake-analyser/internal/overtaking"
	"github.com/yourusername/overtake-analyser/internal/repository"
)

const (
	defaultListLimit      = 20
	defaultPublishTimeout = 30 * time.Second
)

// Publisher delivers completed runs to an external consumer
type Publisher interface {
	Publish(ctx context.Context, run *models.AnalysisRun) error
}

// Broadcaster pushes completed runs to connected stream clients
type Broadcaster interface {
	Broadcast(run *models.AnalysisRun)
}

// Dependencies holds the optional collaborators of AnalysisService. Any field may be nil.
type Dependencies struct {
	Repository  repository.AnalysisRunRepository
	Cache       *cache.ResultCache
	Publisher   Publisher
	Broadcaster Broadcaster

	// PublishTimeout bounds one background delivery; zero means 30s
	PublishTimeout time.Duration
}

// AnalysisRequest describes one analysis
type AnalysisRequest struct {
	Label  string            `json:"label"`
	Params overtaking.Params `json:"params"`
	Seed   int64             `json:"seed"`
	Mode   string            `json:"mode"`
}

// AnalysisOutcome is the result of AnalysisService.Analyse
type AnalysisOutcome struct {
	Run     *models.AnalysisRun `json:"run"`
	Result  overtaking.Result   `json:"result"`
	Summary overtaking.Summary  `json:"summary"`
	Cached  bool                `json:"cached"`
}

// SimulationOutcome is the raw per-section probability sequence of one run
type SimulationOutcome struct {
	Config        overtaking.Config `json:"config"`
	Seed          int64             `json:"seed"`
	Probabilities []float64         `json:"probabilities"`
}

// AnalysisService runs overtaking analyses on behalf of the CLI, API and scheduler
type AnalysisService struct {
	base        overtaking.Params
	defaultSeed int64
	repo        repository.AnalysisRunRepository
	cache       *cache.ResultCache
	publisher   Publisher
	broadcaster Broadcaster
	publishWait time.Duration
	publishing  sync.WaitGroup
	logger      *logrus.Logger
	analysisLog *logger.AnalysisLogger
	auditLog    *logger.AuditLogger
	now         func() time.Time
}

// NewAnalysisService creates a new analysis service. base supplies the parameters a request omits.
func NewAnalysisService(base overtaking.Params, defaultSeed int64, deps Dependencies, log *logrus.Logger) *AnalysisService {
	publishWait := deps.PublishTimeout
	if publishWait <= 0 {
		publishWait = defaultPublishTimeout
	}
	return &AnalysisService{
		base:        base,
		defaultSeed: defaultSeed,
		repo:        deps.Repository,
		cache:       deps.Cache,
		publisher:   deps.Publisher,
		broadcaster: deps.Broadcaster,
		publishWait: publishWait,
		logger:      log,
		analysisLog: logger.NewAnalysisLogger(log),
		auditLog:    logger.NewAuditLogger(log),
		now:         time.Now,
	}
}

// Analyse runs one analysis and stores, publishes and broadcasts the resulting run
func (s *AnalysisService) Analyse(ctx context.Context, req AnalysisRequest) (*AnalysisOutcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mode := req.Mode
	if mode == "" {
		mode = models.ModeAnalyse
	}
	cfg := s.resolve(req.Params)
	seed, explicit := s.resolveSeed(req.Seed)
	start := s.now()

	var (
		result overtaking.Result
		cached bool
		key    cache.CacheKey
	)
	cacheable := explicit && s.cache != nil
	if cacheable {
		var err error
		if key, err = cache.NewCacheKey(cfg, seed); err != nil {
			s.logger.WithError(err).Debug("Analysis not cacheable")
			cacheable = false
		}
	}
	if cacheable {
		result, cached = s.cache.Get(key)
		if cached {
			s.analysisLog.LogCacheHit(key.Fingerprint, seed)
		}
	}

	if !cached {
		engine, err := overtaking.NewEngine(cfg, overtaking.NewRandSource(seed))
		if err != nil {
			metrics.RecordAnalysis(mode, metrics.StatusFailure, 0)
			s.analysisLog.LogAnalysisFailed(req.Label, mode, err)
			return nil, err
		}
		result = engine.Analyse()
		if cacheable {
			s.cache.Set(key, result)
		}
	}

	duration := s.now().Sub(start)
	summary := overtaking.Summarize(result)

	run, err := s.newRun(req.Label, mode, seed, cfg, result, summary, duration)
	if err != nil {
		return nil, err
	}

	status := metrics.StatusSuccess
	if cached {
		status = metrics.StatusCached
	}
	metrics.RecordAnalysis(mode, status, duration.Seconds())
	metrics.RecordSectionProbabilities(result.AverageProbabilities, summary.MeanProbability)

	s.analysisLog.LogAnalysisCompleted(run.ID.String(), run.Label, mode, seed, cfg.Sections, cfg.Simulations,
		summary.MeanProbability, summary.MeanSuccessRate, summary.BestSection, run.DurationMs)

	s.persist(ctx, run)
	s.publish(ctx, run)
	if s.broadcaster != nil {
		s.broadcaster.Broadcast(run)
	}

	return &AnalysisOutcome{
		Run:     run,
		Result:  result,
		Summary: summary,
		Cached:  cached,
	}, nil
}

// Simulate returns the raw per-section probabilities without deriving success rates
func (s *AnalysisService) Simulate(ctx context.Context, params overtaking.Params, seed int64) (*SimulationOutcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg := s.resolve(params)
	seed, _ = s.resolveSeed(seed)
	engine, err := overtaking.NewEngine(cfg, overtaking.NewRandSource(seed))
	if err != nil {
		return nil, err
	}

	return &SimulationOutcome{
		Config:        cfg,
		Seed:          seed,
		Probabilities: engine.Simulate(),
	}, nil
}

// Get returns a stored run
func (s *AnalysisService) Get(ctx context.Context, id uuid.UUID) (*models.AnalysisRun, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("analysis run %s: %w", id, models.ErrNotFound)
	}
	return s.repo.GetByID(ctx, id)
}

// Delete removes a stored run, recording who asked for it
func (s *AnalysisService) Delete(ctx context.Context, id uuid.UUID, requestedBy string) error {
	if s.repo == nil {
		return fmt.Errorf("analysis run %s: %w", id, models.ErrNotFound)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.auditLog.LogRunDeleted(id.String(), requestedBy)
	return nil
}

// List returns the most recent stored runs, newest first
func (s *AnalysisService) List(ctx context.Context, limit int) ([]*models.AnalysisRun, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if s.repo == nil {
		return []*models.AnalysisRun{}, nil
	}
	return s.repo.GetLatest(ctx, limit)
}

// BaseConfig returns the configuration a request with no params resolves to
func (s *AnalysisService) BaseConfig() overtaking.Config {
	return s.base.Config()
}

func (s *AnalysisService) resolve(params overtaking.Params) overtaking.Config {
	return s.base.Merge(params).Config()
}

// resolveSeed picks the request seed, then the configured default, then the clock.
// The second return reports whether the run is reproducible.
func (s *AnalysisService) resolveSeed(seed int64) (int64, bool) {
	if seed != 0 {
		return seed, true
	}
	if s.defaultSeed != 0 {
		return s.defaultSeed, true
	}
	return s.now().UnixNano(), false
}

func (s *AnalysisService) newRun(label, mode string, seed int64, cfg overtaking.Config, result overtaking.Result, summary overtaking.Summary, duration time.Duration) (*models.AnalysisRun, error) {
	rawConfig, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode configuration: %w", err)
	}

	return &models.AnalysisRun{
		ID:                   uuid.New(),
		Label:                label,
		Mode:                 mode,
		Seed:                 seed,
		Config:               rawConfig,
		AverageProbabilities: append([]float64(nil), result.AverageProbabilities...),
		SuccessRates:         append([]float64(nil), result.SuccessRates...),
		MeanProbability:      summary.MeanProbability,
		MeanSuccessRate:      summary.MeanSuccessRate,
		BestSection:          summary.BestSection,
		DurationMs:           float64(duration.Microseconds()) / 1000,
		CreatedAt:            s.now().UTC(),
	}, nil
}

func (s *AnalysisService) persist(ctx context.Context, run *models.AnalysisRun) {
	if s.repo == nil {
		return
	}
	if err := s.repo.Save(ctx, run); err != nil {
		s.analysisLog.LogPersistFailed(run.ID.String(), err)
		return
	}
	s.auditLog.LogRunStored(run.ID.String(), run.Label, run.Mode)
}

// publish delivers run in the background. The delivery outlives the request
// context but is bounded by the publish timeout.
func (s *AnalysisService) publish(ctx context.Context, run *models.AnalysisRun) {
	if s.publisher == nil {
		return
	}

	s.publishing.Add(1)
	go func() {
		defer s.publishing.Done()

		publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.publishWait)
		defer cancel()

		if err := s.publisher.Publish(publishCtx, run); err != nil {
			s.analysisLog.LogPublishFailed(run.ID.String(), err)
		}
	}()
}

// Wait blocks until every background publication has finished
func (s *AnalysisService) Wait() {
	s.publishing.Wait()
}
