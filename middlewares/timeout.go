package middlewares

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrymomot/postbox/internal"
)

// DefaultTimeout is the default request timeout.
const DefaultTimeout = 60 * time.Second

// TimeoutConfig configures the timeout middleware.
type TimeoutConfig struct {
	Timeout time.Duration
}

// TimeoutOption configures TimeoutConfig.
type TimeoutOption func(*TimeoutConfig)

// Timeout returns middleware that puts a deadline on the request context.
// The handler runs on the request goroutine and owns the response: a bulk
// dispatch past the deadline stops starting sends, reports the rest as
// canceled and still writes its report. A *TimeoutError goes to the
// ErrorHandler only when the handler wrote nothing or gave up with the
// deadline error itself.
func Timeout(timeout time.Duration, opts ...TimeoutOption) internal.Middleware {
	cfg := &TimeoutConfig{
		Timeout: timeout,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			ctx, cancel := context.WithTimeout(c.Context(), cfg.Timeout)
			defer cancel()

			c.SetContext(ctx)
			err := next(c)

			if !errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return err
			}
			c.LogWarn("request timeout", "timeout", cfg.Timeout.String(), "path", c.Request().URL.Path)

			switch {
			case err == nil && c.Written():
				return nil
			case err == nil, errors.Is(err, context.DeadlineExceeded) && !internal.IsHTTPError(err):
				return &TimeoutError{Duration: cfg.Timeout, Path: c.Request().URL.Path}
			default:
				return err
			}
		}
	}
}
