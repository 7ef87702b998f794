package middlewares

import (
	"runtime"

	"github.com/dmitrymomot/postbox/internal"
)

// DefaultStackSize is the default maximum stack trace size in bytes.
const DefaultStackSize = 4096

// RecoverConfig configures the recover middleware.
type RecoverConfig struct {
	StackSize         int  // Max stack trace size (default: 4096)
	DisablePrintStack bool // Disable stack trace in logs
}

// RecoverOption configures RecoverConfig.
type RecoverOption func(*RecoverConfig)

// WithRecoverStackSize sets the maximum stack trace size.
func WithRecoverStackSize(size int) RecoverOption {
	return func(cfg *RecoverConfig) {
		if size > 0 {
			cfg.StackSize = size
		}
	}
}

// WithRecoverDisablePrintStack disables including stack trace in logs.
func WithRecoverDisablePrintStack() RecoverOption {
	return func(cfg *RecoverConfig) {
		cfg.DisablePrintStack = true
	}
}

// Recover returns middleware that turns a handler panic into a *PanicError
// for the app's ErrorHandler. Panics inside dispatch workers never reach it;
// the engine converts those into per-item results.
func Recover(opts ...RecoverOption) internal.Middleware {
	cfg := &RecoverConfig{
		StackSize: DefaultStackSize,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					attrs := []any{"panic", r, "method", c.Request().Method, "path", c.Request().URL.Path}

					var stack []byte
					if !cfg.DisablePrintStack {
						stack = make([]byte, cfg.StackSize)
						stack = stack[:runtime.Stack(stack, false)]
						attrs = append(attrs, "stack", string(stack))
					}
					c.LogError("panic recovered", attrs...)

					err = &PanicError{
						Value:  r,
						Stack:  stack,
						Method: c.Request().Method,
						Path:   c.Request().URL.Path,
					}
				}
			}()

			return next(c)
		}
	}
}
