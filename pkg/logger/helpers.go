package logger

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// LogRequest logs the outcome of a remote API request
func LogRequest(method, url string, statusCode int, duration time.Duration) {
	fields := map[string]interface{}{
		"method":      method,
		"url":         url,
		"status_code": statusCode,
		"duration_ms": duration.Milliseconds(),
	}

	switch {
	case statusCode >= 200 && statusCode < 300:
		GetLogger().InfoWithFields("HTTP request completed", fields)
	case statusCode >= 400 && statusCode < 500:
		GetLogger().WarnWithFields("HTTP request client error", fields)
	case statusCode >= 500:
		GetLogger().ErrorWithFields("HTTP request server error", fields)
	}
}

// LogGovernorWait logs a wait imposed by the request governor
func LogGovernorWait(reason string, wait time.Duration) {
	GetLogger().WithFields(map[string]interface{}{
		"reason": reason,
		"wait":   wait,
		"action": "governor_wait",
	}).Warn("Pacing outbound requests")
}

// LogAnalysisProgress logs post-analysis progress for a target profile
func LogAnalysisProgress(username string, analyzed, total int) {
	percentage := 0.0
	if total > 0 {
		percentage = float64(analyzed) / float64(total) * 100
	}

	GetLogger().WithFields(map[string]interface{}{
		"username":   username,
		"analyzed":   analyzed,
		"total":      total,
		"percentage": percentage,
	}).Info("Analysis progress")
}

// NewNopLogger creates a no-operation logger for testing
func NewNopLogger() Logger {
	return &nopLogger{}
}

// nopLogger is a logger that does nothing (useful for testing)
type nopLogger struct{}

func (n *nopLogger) Debug(msg string)                                          {}
func (n *nopLogger) Info(msg string)                                           {}
func (n *nopLogger) Warn(msg string)                                           {}
func (n *nopLogger) Error(msg string)                                          {}
func (n *nopLogger) Fatal(msg string)                                          {}
func (n *nopLogger) WithField(key string, value interface{}) Logger            { return n }
func (n *nopLogger) WithFields(fields map[string]interface{}) Logger           { return n }
func (n *nopLogger) WithError(err error) Logger                                { return n }
func (n *nopLogger) WithContext(ctx context.Context) Logger                    { return n }
func (n *nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) InfoWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) WarnWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) FatalWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) GetZerolog() *zerolog.Logger                               { return nil }
