package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() (*logrus.Logger, *bytes.Buffer) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)
	return log, buf
}

func parseLogOutput(buf *bytes.Buffer) map[string]interface{} {
	var logEntry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		return nil
	}
	return logEntry
}

func TestNewLoggerInvalidLevelFallsBackToInfo(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewLoggerWithOutput("chatty", buf)

	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	assert.Contains(t, buf.String(), "Invalid log level")
}

func TestNewLoggerProductionUsesJSON(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	buf := &bytes.Buffer{}
	log := NewLoggerWithOutput("debug", buf)

	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	_, ok := log.Formatter.(*logrus.JSONFormatter)
	assert.True(t, ok)
}

func TestAnalysisLoggerCompleted(t *testing.T) {
	log, buf := setupTestLogger()
	analysisLogger := NewAnalysisLogger(log)

	analysisLogger.LogAnalysisCompleted("run_1", "monza", "analyse", 42, 10, 1000, 0.12, 0.1, 2, 14.5)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "analysis", logEntry["component"])
	assert.Equal(t, "run_1", logEntry["run_id"])
	assert.Equal(t, float64(2), logEntry["best_section"])
}

func TestAnalysisLoggerFailed(t *testing.T) {
	log, buf := setupTestLogger()
	NewAnalysisLogger(log).LogAnalysisFailed("monza", "analyse", errors.New("boom"))

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "error", logEntry["level"])
	assert.Equal(t, "boom", logEntry["error"])
}

func TestAnalysisLoggerScheduledRun(t *testing.T) {
	log, buf := setupTestLogger()
	NewAnalysisLogger(log).LogScheduledRun("wet-race", "success", nil)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "wet-race", logEntry["scenario"])
	assert.Equal(t, "info", logEntry["level"])
}

func TestAuditLoggerRunStored(t *testing.T) {
	log, buf := setupTestLogger()
	NewAuditLogger(log).LogRunStored("run_1", "monza", "scheduled")

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "audit", logEntry["component"])
	assert.Equal(t, "run_stored", logEntry["event_type"])
}

func BenchmarkAnalysisLoggerCompleted(b *testing.B) {
	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})
	analysisLogger := NewAnalysisLogger(log)

	for i := 0; i < b.N; i++ {
		analysisLogger.LogAnalysisCompleted("run_1", "monza", "analyse", 42, 10, 1000, 0.12, 0.1, 2, 14.5)
	}
}
