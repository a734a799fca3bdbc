// Package publisher delivers completed analysis runs to an external webhook.
package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/yourusername/overtake-analyser/internal/config"
	"github.com/yourusername/overtake-analyser/internal/metrics"
	"github.com/yourusername/overtake-analyser/internal/models"
)

// ErrCircuitOpen is returned while the circuit breaker rejects deliveries
var ErrCircuitOpen = errors.New("circuit breaker open")

// Config holds configuration for the webhook client
type Config struct {
	URL                 string
	Token               string
	Timeout             time.Duration
	MaxRetries          int
	RetryWaitMin        time.Duration
	RetryWaitMax        time.Duration
	RateLimit           float64 // requests per second, 0 disables limiting
	CircuitBreakerMax   int     // consecutive failures before the circuit opens
	CircuitResetTimeout time.Duration
}

// DefaultConfig returns recommended defaults
func DefaultConfig() Config {
	return Config{
		Timeout:             10 * time.Second,
		MaxRetries:          3,
		RetryWaitMin:        100 * time.Millisecond,
		RetryWaitMax:        5 * time.Second,
		RateLimit:           5.0,
		CircuitBreakerMax:   5,
		CircuitResetTimeout: time.Minute,
	}
}

// FromConfig builds a client Config from the application publisher section
func FromConfig(cfg *config.PublisherConfig) Config {
	out := DefaultConfig()
	out.URL = cfg.URL
	out.Token = cfg.Token
	if cfg.TimeoutSeconds > 0 {
		out.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	out.MaxRetries = cfg.MaxRetries
	out.RateLimit = cfg.RateLimit
	return out
}

// WebhookPublisher POSTs runs as JSON with retries, rate limiting and a circuit breaker
type WebhookPublisher struct {
	client  *retryablehttp.Client
	limiter *rate.Limiter
	url     string
	token   string
	logger  *logrus.Entry

	mu                  sync.Mutex
	circuitBreakerMax   int
	circuitResetTimeout time.Duration
	consecutiveErrors   int
	openedAt            time.Time
	isOpen              bool
	lastError           error
}

// NewWebhookPublisher creates a new webhook publisher
func NewWebhookPublisher(cfg Config, log *logrus.Logger) (*WebhookPublisher, error) {
	if cfg.URL == "" {
		return nil, errors.New("publisher url is required")
	}
	entry := log.WithField("component", "publisher")

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient.Timeout = cfg.Timeout
	retryClient.RetryMax = cfg.MaxRetries
	retryClient.RetryWaitMin = cfg.RetryWaitMin
	retryClient.RetryWaitMax = cfg.RetryWaitMax
	retryClient.CheckRetry = customRetryPolicy()
	retryClient.Logger = leveledLogger{entry}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}

	breakerMax := cfg.CircuitBreakerMax
	if breakerMax <= 0 {
		breakerMax = DefaultConfig().CircuitBreakerMax
	}

	return &WebhookPublisher{
		client:              retryClient,
		limiter:             rate.NewLimiter(limit, 1),
		url:                 cfg.URL,
		token:               cfg.Token,
		logger:              entry,
		circuitBreakerMax:   breakerMax,
		circuitResetTimeout: cfg.CircuitResetTimeout,
	}, nil
}

// Publish delivers run to the webhook. Any non-2xx response is an error.
func (p *WebhookPublisher) Publish(ctx context.Context, run *models.AnalysisRun) error {
	if err := p.allow(); err != nil {
		metrics.RecordWebhookDelivery(metrics.StatusFailure)
		return err
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter error: %w", err)
	}

	err := p.deliver(ctx, run)
	p.record(err)
	if err != nil {
		metrics.RecordWebhookDelivery(metrics.StatusFailure)
		return err
	}

	metrics.RecordWebhookDelivery(metrics.StatusSuccess)
	p.logger.WithField("run_id", run.ID).Debug("Analysis published")
	return nil
}

// IsOpen reports whether the circuit breaker is currently open
func (p *WebhookPublisher) IsOpen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.isOpen
}

// Close closes any resources held by the client
func (p *WebhookPublisher) Close() error {
	p.client.HTTPClient.CloseIdleConnections()
	return nil
}

func (p *WebhookPublisher) deliver(ctx context.Context, run *models.AnalysisRun) error {
	body, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to encode run: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook delivery failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// allow rejects deliveries while the circuit is open. After the reset timeout one trial is let through.
func (p *WebhookPublisher) allow() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.isOpen {
		return nil
	}
	if p.circuitResetTimeout > 0 && time.Since(p.openedAt) >= p.circuitResetTimeout {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrCircuitOpen, p.lastError)
}

func (p *WebhookPublisher) record(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err == nil {
		p.consecutiveErrors = 0
		p.isOpen = false
		return
	}

	p.consecutiveErrors++
	p.lastError = err
	if p.consecutiveErrors >= p.circuitBreakerMax {
		if !p.isOpen {
			p.logger.WithError(err).Warnf("Circuit breaker opened after %d consecutive errors", p.consecutiveErrors)
		}
		p.isOpen = true
		p.openedAt = time.Now()
	}
}

// customRetryPolicy retries network errors, 429 and 5xx responses
func customRetryPolicy() retryablehttp.CheckRetry {
	return func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		if err != nil {
			return true, err
		}

		switch resp.StatusCode {
		case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true, nil
		}
		return false, nil
	}
}

// leveledLogger routes retryablehttp logging through logrus
type leveledLogger struct {
	entry *logrus.Entry
}

func (l leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.entry.WithFields(fields(keysAndValues)).Error(msg)
}

func (l leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.entry.WithFields(fields(keysAndValues)).Debug(msg)
}

func (l leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.entry.WithFields(fields(keysAndValues)).Debug(msg)
}

func (l leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.entry.WithFields(fields(keysAndValues)).Warn(msg)
}

func fields(keysAndValues []interface{}) logrus.Fields {
	out := logrus.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		out[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return out
}
