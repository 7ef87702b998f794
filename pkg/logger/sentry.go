package logger

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

// SentryConfig holds Sentry integration configuration.
type SentryConfig struct {
	DSN         string `env:"SENTRY_DSN"`
	Environment string `env:"SENTRY_ENVIRONMENT" envDefault:"production"`
	// MinLevel is the lowest level stored as a Sentry log; errors always create issues.
	MinLevel slog.Level `env:"SENTRY_MIN_LEVEL" envDefault:"WARN"`
}

// NewWithSentry creates a JSON logger writing to stdout and, when DSN is set, to Sentry.
func NewWithSentry(cfg SentryConfig, extractors ...ContextExtractor) *slog.Logger {
	stdout := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	return slog.New(NewLogHandlerDecorator(withSentry(stdout, cfg), extractors...))
}

// Flush waits up to timeout for buffered Sentry events to be sent.
// It is a no-op when Sentry was never initialized.
func Flush(timeout time.Duration) bool {
	return sentry.Flush(timeout)
}

// withSentry fans records out to Sentry next to base. Without a DSN, or when
// the SDK fails to initialize, base is returned unchanged.
func withSentry(base slog.Handler, cfg SentryConfig) slog.Handler {
	if cfg.DSN == "" {
		return base
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		EnableLogs:  true,
	}); err != nil {
		slog.New(base).Error("failed to initialize Sentry", slog.String("error", err.Error()))
		return base
	}

	logLevel := []slog.Level{slog.LevelWarn, slog.LevelError}
	if cfg.MinLevel >= slog.LevelError {
		logLevel = []slog.Level{slog.LevelError}
	}

	sentryHandler := sentryslog.Option{
		EventLevel: []slog.Level{slog.LevelError},
		LogLevel:   logLevel,
	}.NewSentryHandler(context.Background())

	return newFanout(base, sentryHandler)
}
