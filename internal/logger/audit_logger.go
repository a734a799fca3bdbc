// Package logger provides audit logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// AuditLogger provides dedicated audit trail logging.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogConfigurationLoaded records the effective configuration source.
func (al *AuditLogger) LogConfigurationLoaded(path, environment string, secretsOverlay bool) {
	al.WithFields(logrus.Fields{
		"event_type":      "config_loaded",
		"config_path":     path,
		"environment":     environment,
		"secrets_overlay": secretsOverlay,
	}).Info("Configuration loaded")
}

// LogRunStored records a persisted analysis run.
func (al *AuditLogger) LogRunStored(runID, label, mode string) {
	al.WithFields(logrus.Fields{
		"event_type": "run_stored",
		"run_id":     runID,
		"label":      label,
		"mode":       mode,
	}).Info("Analysis run stored")
}

// LogRunDeleted records a deleted analysis run.
func (al *AuditLogger) LogRunDeleted(runID, requestedBy string) {
	al.WithFields(logrus.Fields{
		"event_type":   "run_deleted",
		"run_id":       runID,
		"requested_by": requestedBy,
	}).Info("Analysis run deleted")
}
