package middlewares

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/postbox/internal"
)

// LoggingConfig configures the access log middleware.
type LoggingConfig struct {
	Level     slog.Level
	SkipPaths map[string]bool
}

// LoggingOption configures LoggingConfig.
type LoggingOption func(*LoggingConfig)

// WithLoggingLevel sets the level for successful requests.
// 4xx responses are logged at warn and 5xx at error regardless.
func WithLoggingLevel(level slog.Level) LoggingOption {
	return func(cfg *LoggingConfig) {
		cfg.Level = level
	}
}

// WithLoggingSkipPaths excludes paths such as health checks from the access log.
func WithLoggingSkipPaths(paths ...string) LoggingOption {
	return func(cfg *LoggingConfig) {
		for _, p := range paths {
			cfg.SkipPaths[p] = true
		}
	}
}

// Logging returns middleware that writes one record per request with its
// method, path, status, response size and duration.
// The ErrorHandler runs outside the middleware chain, so for a failed
// request the status is derived from the returned error.
func Logging(opts ...LoggingOption) internal.Middleware {
	cfg := &LoggingConfig{
		Level:     slog.LevelInfo,
		SkipPaths: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			if cfg.SkipPaths[c.Request().URL.Path] {
				return next(c)
			}

			start := time.Now()
			err := next(c)

			status := http.StatusOK
			var size int64
			if rw, ok := c.Response().(*internal.ResponseWriter); ok {
				status = rw.Status()
				size = rw.Size()
			}
			if err != nil {
				status = errorStatus(err)
			}

			level := cfg.Level
			switch {
			case status >= http.StatusInternalServerError:
				level = slog.LevelError
			case status >= http.StatusBadRequest:
				level = slog.LevelWarn
			}

			attrs := []slog.Attr{
				slog.String("method", c.Request().Method),
				slog.String("path", c.Request().URL.Path),
				slog.Int("status", status),
				slog.Int64("size", size),
				slog.Duration("duration", time.Since(start)),
			}
			if err != nil {
				attrs = append(attrs, slog.String("error", err.Error()))
			}
			c.Logger().LogAttrs(c.Context(), level, "http request", attrs...)

			return err
		}
	}
}

// errorStatus mirrors the status mapping of the service ErrorHandler.
// HTTPError, TimeoutError and PanicError all carry their status.
func errorStatus(err error) int {
	var sc interface{ StatusCode() int }
	if errors.As(err, &sc) {
		return sc.StatusCode()
	}
	return http.StatusInternalServerError
}
