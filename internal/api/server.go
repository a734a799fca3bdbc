// Package api exposes the analysis service over HTTP and a websocket stream.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/yourusername/overtake-analyser/internal/metrics"
	"github.com/yourusername/overtake-analyser/internal/models"
	"github.com/yourusername/overtake-analyser/internal/overtaking"
	"github.com/yourusername/overtake-analyser/internal/service"
)

// AnalysisService is the subset of service.AnalysisService served over HTTP
type AnalysisService interface {
	Analyse(ctx context.Context, req service.AnalysisRequest) (*service.AnalysisOutcome, error)
	Simulate(ctx context.Context, params overtaking.Params, seed int64) (*service.SimulationOutcome, error)
	Sweep(ctx context.Context, req service.SweepRequest) ([]service.SweepPoint, error)
	CompareZones(ctx context.Context, params overtaking.Params, seed int64) (*service.ZoneComparison, error)
	Get(ctx context.Context, id uuid.UUID) (*models.AnalysisRun, error)
	List(ctx context.Context, limit int) ([]*models.AnalysisRun, error)
	Delete(ctx context.Context, id uuid.UUID, requestedBy string) error
	CheckRequestSize(params overtaking.Params, steps int) error
}

// Config holds the configuration for the API server
type Config struct {
	Port           int
	ReadTimeout    time.Duration
	RateLimitRPS   float64
	MetricsEnabled bool
	MetricsPath    string
}

// Server serves the JSON API, the run stream and optionally Prometheus metrics
type Server struct {
	cfg     Config
	svc     AnalysisService
	hub     *Hub
	limiter *rate.Limiter
	logger  *logrus.Logger
	server  *http.Server
}

// NewServer creates a new API server
func NewServer(cfg Config, svc AnalysisService, hub *Hub, log *logrus.Logger) *Server {
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 15 * time.Second
	}

	var limiter *rate.Limiter
	if cfg.RateLimitRPS > 0 {
		burst := int(cfg.RateLimitRPS)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), burst)
	}

	return &Server{
		cfg:     cfg,
		svc:     svc,
		hub:     hub,
		limiter: limiter,
		logger:  log,
	}
}

// Handler returns the routed HTTP handler
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/analyses", s.handleCreateAnalysis)
	mux.HandleFunc("GET /api/v1/analyses", s.handleListAnalyses)
	mux.HandleFunc("GET /api/v1/analyses/{id}", s.handleGetAnalysis)
	mux.HandleFunc("DELETE /api/v1/analyses/{id}", s.handleDeleteAnalysis)
	mux.HandleFunc("POST /api/v1/simulations", s.handleSimulate)
	mux.HandleFunc("POST /api/v1/sweeps", s.handleSweep)
	mux.HandleFunc("POST /api/v1/comparisons", s.handleCompare)
	if s.hub != nil {
		mux.Handle("GET /api/v1/stream", s.hub)
	}

	var handler http.Handler = s.rateLimit(mux)
	if s.cfg.MetricsEnabled && s.cfg.MetricsPath != "" {
		root := http.NewServeMux()
		root.Handle(s.cfg.MetricsPath, metrics.Handler())
		root.Handle("/", handler)
		handler = root
	}
	return handler
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.server = &http.Server{
		Addr:        fmt.Sprintf(":%d", s.cfg.Port),
		Handler:     s.Handler(),
		ReadTimeout: s.cfg.ReadTimeout,
		IdleTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("port", s.cfg.Port).Info("API server starting")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("API server shutting down")
	if s.hub != nil {
		s.hub.Close()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	if s.limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			writeError(w, http.StatusTooManyRequests, errors.New("rate limit exceeded"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
