// Package logger builds the service's slog loggers.
//
// Records go to stdout as JSON (or text with LOG_FORMAT=text) at LOG_LEVEL.
// Context extractors add request-scoped attributes, such as the request ID,
// to every record logged with a context:
//
//	log, err := logger.NewFromConfig(cfg.Log, middlewares.RequestIDExtractor())
//
// When SENTRY_DSN is set, errors also create Sentry issues and warnings are
// stored as Sentry logs. Without a DSN, or if the SDK fails to start, logging
// stays stdout-only. Call Flush before exit to deliver buffered events.
//
// Component derives a child logger tagged with the subsystem that logs:
//
//	mailer.WithLogger(logger.Component(log, "mailer"))
//
// NewNope returns a logger that discards everything; packages use it as their
// default so a nil logger option is never dereferenced.
package logger
