package publisher

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/overtake-analyser/internal/config"
	"github.com/yourusername/overtake-analyser/internal/logger"
	"github.com/yourusername/overtake-analyser/internal/models"
)

func testRun() *models.AnalysisRun {
	return &models.AnalysisRun{
		ID:                   uuid.New(),
		Label:                "silverstone",
		Mode:                 models.ModeAnalyse,
		Seed:                 42,
		Config:               json.RawMessage(`{"sections":2}`),
		AverageProbabilities: []float64{0.1, 0.2},
		SuccessRates:         []float64{0.08, 0.17},
	}
}

func testConfig(url string) Config {
	cfg := DefaultConfig()
	cfg.URL = url
	cfg.MaxRetries = 0
	cfg.RetryWaitMin = time.Millisecond
	cfg.RetryWaitMax = time.Millisecond
	cfg.RateLimit = 0
	cfg.CircuitBreakerMax = 2
	cfg.CircuitResetTimeout = time.Hour
	return cfg
}

func TestPublishSendsRunWithToken(t *testing.T) {
	run := testRun()
	var received models.AnalysisRun

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.Token = "secret"
	pub, err := NewWebhookPublisher(cfg, logger.Discard())
	require.NoError(t, err)
	defer pub.Close()

	require.NoError(t, pub.Publish(context.Background(), run))
	assert.Equal(t, run.ID, received.ID)
	assert.Equal(t, run.AverageProbabilities, received.AverageProbabilities)
}

func TestPublishRetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.MaxRetries = 3
	pub, err := NewWebhookPublisher(cfg, logger.Discard())
	require.NoError(t, err)

	require.NoError(t, pub.Publish(context.Background(), testRun()))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestPublishRejectsClientErrorsWithoutRetry(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.MaxRetries = 3
	pub, err := NewWebhookPublisher(cfg, logger.Discard())
	require.NoError(t, err)

	err = pub.Publish(context.Background(), testRun())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestCircuitBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	pub, err := NewWebhookPublisher(testConfig(server.URL), logger.Discard())
	require.NoError(t, err)

	assert.Error(t, pub.Publish(context.Background(), testRun()))
	assert.False(t, pub.IsOpen())
	assert.Error(t, pub.Publish(context.Background(), testRun()))
	assert.True(t, pub.IsOpen())

	err = pub.Publish(context.Background(), testRun())
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestCircuitBreakerAllowsTrialAfterReset(t *testing.T) {
	var healthy atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if healthy.Load() {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.CircuitResetTimeout = 20 * time.Millisecond
	pub, err := NewWebhookPublisher(cfg, logger.Discard())
	require.NoError(t, err)

	_ = pub.Publish(context.Background(), testRun())
	_ = pub.Publish(context.Background(), testRun())
	require.True(t, pub.IsOpen())

	healthy.Store(true)
	time.Sleep(30 * time.Millisecond)

	require.NoError(t, pub.Publish(context.Background(), testRun()))
	assert.False(t, pub.IsOpen())
}

func TestNewWebhookPublisherRequiresURL(t *testing.T) {
	_, err := NewWebhookPublisher(DefaultConfig(), logger.Discard())
	assert.Error(t, err)
}

func TestFromConfig(t *testing.T) {
	cfg := FromConfig(&config.PublisherConfig{
		Enabled:        true,
		URL:            "https://example.com/hook",
		Token:          "abc",
		TimeoutSeconds: 4,
		MaxRetries:     2,
		RateLimit:      1.5,
	})

	assert.Equal(t, "https://example.com/hook", cfg.URL)
	assert.Equal(t, "abc", cfg.Token)
	assert.Equal(t, 4*time.Second, cfg.Timeout)
	assert.Equal(t, 2, cfg.MaxRetries)
	assert.Equal(t, 1.5, cfg.RateLimit)
	assert.Equal(t, DefaultConfig().CircuitBreakerMax, cfg.CircuitBreakerMax)
}
