package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/overtake-analyser/internal/logger"
)

type fakePinger struct {
	err error
}

func (f fakePinger) Ping(ctx context.Context) error {
	return f.err
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthAndLive(t *testing.T) {
	s := NewServer(Config{ServiceName: "overtake", Version: "1.0.0", Commit: "abc", Logger: logger.Discard()})

	rec := get(t, s, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "1.0.0", resp.Version)
	assert.NotEmpty(t, resp.Timestamp)

	rec = get(t, s, "/live")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyRequiresSetReady(t *testing.T) {
	s := NewServer(Config{ServiceName: "overtake", Logger: logger.Discard()})

	rec := get(t, s, "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	s.SetReady(true)
	rec = get(t, s, "/ready")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyReportsFailingDatabase(t *testing.T) {
	s := NewServer(Config{ServiceName: "overtake", DB: fakePinger{err: errors.New("connection refused")}})
	s.SetReady(true)

	rec := get(t, s, "/ready")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp ReadyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "not_ready", resp.Status)
	assert.Equal(t, "error: connection refused", resp.Checks["database"])
	assert.Equal(t, "ok", resp.Checks["service"])
}

func TestReadyRunsCustomChecks(t *testing.T) {
	s := NewServer(Config{ServiceName: "overtake", DB: fakePinger{}})
	s.SetReady(true)
	s.AddCheck("publisher", func(ctx context.Context) error { return nil })

	rec := get(t, s, "/ready")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ReadyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Checks["database"])
	assert.Equal(t, "ok", resp.Checks["publisher"])
}
