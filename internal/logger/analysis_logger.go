// Package logger provides analysis-specific logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// AnalysisLogger provides dedicated logging for overtaking analyses.
type AnalysisLogger struct {
	*logrus.Entry
}

// NewAnalysisLogger creates a new analysis logger.
func NewAnalysisLogger(baseLogger *logrus.Logger) *AnalysisLogger {
	return &AnalysisLogger{
		Entry: baseLogger.WithField("component", "analysis"),
	}
}

// LogAnalysisCompleted logs a finished analysis.
func (al *AnalysisLogger) LogAnalysisCompleted(runID, label, mode string, seed int64, sections, simulations int, meanProbability, meanSuccessRate float64, bestSection int, durationMs float64) {
	al.WithFields(logrus.Fields{
		"run_id":            runID,
		"label":             label,
		"mode":              mode,
		"seed":              seed,
		"sections":          sections,
		"simulations":       simulations,
		"mean_probability":  meanProbability,
		"mean_success_rate": meanSuccessRate,
		"best_section":      bestSection,
		"duration_ms":       durationMs,
	}).Info("Overtaking analysis completed")
}

// LogAnalysisFailed logs an analysis that could not run.
func (al *AnalysisLogger) LogAnalysisFailed(label, mode string, err error) {
	al.WithFields(logrus.Fields{
		"label": label,
		"mode":  mode,
	}).WithError(err).Error("Overtaking analysis failed")
}

// LogCacheHit logs an analysis served from the result cache.
func (al *AnalysisLogger) LogCacheHit(fingerprint string, seed int64) {
	al.WithFields(logrus.Fields{
		"fingerprint": fingerprint,
		"seed":        seed,
	}).Debug("Analysis served from cache")
}

// LogSweepCompleted logs a finished parameter sweep.
func (al *AnalysisLogger) LogSweepCompleted(parameter string, from, to float64, steps int, durationMs float64) {
	al.WithFields(logrus.Fields{
		"parameter":   parameter,
		"from":        from,
		"to":          to,
		"steps":       steps,
		"duration_ms": durationMs,
	}).Info("Parameter sweep completed")
}

// LogScheduledRun logs the outcome of a scheduled scenario.
func (al *AnalysisLogger) LogScheduledRun(scenario, status string, err error) {
	entry := al.WithFields(logrus.Fields{
		"scenario": scenario,
		"status":   status,
	})
	if err != nil {
		entry.WithError(err).Error("Scheduled analysis failed")
		return
	}
	entry.Info("Scheduled analysis finished")
}

// LogPublishFailed logs a webhook delivery failure.
func (al *AnalysisLogger) LogPublishFailed(runID string, err error) {
	al.WithField("run_id", runID).WithError(err).Warn("Failed to publish analysis")
}

// LogPersistFailed logs a failure to store a run.
func (al *AnalysisLogger) LogPersistFailed(runID string, err error) {
	al.WithField("run_id", runID).WithError(err).Warn("Failed to persist analysis")
}
