// Package logger provides structured logging for scanagram built on zerolog.
//
// A Logger interface wraps zerolog so packages do not depend on the logging
// backend directly. The package keeps a global logger set up by Initialize
// from the logging configuration; GetLogger falls back to a sane default when
// initialization never happened (useful in tests).
//
// Usage:
//
//	logger.Initialize(&cfg.Logging)
//	logger.WithField("username", username).Info("starting analysis")
//
//	log := logger.GetLogger()
//	log.WarnWithFields("rate limit reached", map[string]interface{}{
//	    "last_hour": stats.RequestsInLastHour,
//	    "limit":     stats.Limit,
//	})
package logger
