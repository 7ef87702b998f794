package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// New creates a JSON-formatted logger with optional context extractors.
func New(extractors ...ContextExtractor) *slog.Logger {
	log := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	return slog.New(NewLogHandlerDecorator(log, extractors...))
}

// NewFromConfig creates a stdout logger at the configured level and format.
// When a Sentry DSN is set, warnings and errors are also sent to Sentry.
func NewFromConfig(cfg Config, extractors ...ContextExtractor) (*slog.Logger, error) {
	stdout, err := newStreamHandler(os.Stdout, cfg)
	if err != nil {
		return nil, err
	}
	return slog.New(NewLogHandlerDecorator(withSentry(stdout, cfg.Sentry), extractors...)), nil
}

func newStreamHandler(w io.Writer, cfg Config) (slog.Handler, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	switch cfg.Format {
	case "", FormatJSON:
		return slog.NewJSONHandler(w, opts), nil
	case FormatText:
		return slog.NewTextHandler(w, opts), nil
	default:
		return nil, fmt.Errorf("%w: format %q", ErrInvalidConfig, cfg.Format)
	}
}

// NewNope returns a logger that discards every record. Packages use it as the
// default when no logger is configured.
func NewNope() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// Component tags l with the name of the component logging through it.
// A nil l yields a discarding logger.
func Component(l *slog.Logger, name string) *slog.Logger {
	if l == nil {
		l = NewNope()
	}
	return l.With(slog.String("component", name))
}
