package internal

import (
	"context"
	"log/slog"
	"net"
	"time"
)

// RunOption configures the server runtime.
type RunOption func(*runConfig)

type runConfig struct {
	logger          *slog.Logger
	listener        net.Listener
	shutdownTimeout time.Duration
	startupHooks    []func(context.Context) error
	shutdownHooks   []func(context.Context) error
	baseCtx         context.Context
}

func buildRunConfig(opts ...RunOption) *runConfig {
	cfg := &runConfig{
		shutdownTimeout: defaultShutdownTimeout,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Logger sets the runtime logger. Defaults to the app logger.
func Logger(l *slog.Logger) RunOption {
	return func(c *runConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// Listener serves on an existing listener instead of dialing the address.
func Listener(ln net.Listener) RunOption {
	return func(c *runConfig) {
		c.listener = ln
	}
}

// ShutdownTimeout sets the timeout for graceful shutdown.
// Defaults to 30 seconds.
func ShutdownTimeout(d time.Duration) RunOption {
	return func(c *runConfig) {
		if d > 0 {
			c.shutdownTimeout = d
		}
	}
}

// StartupHook registers a function run before the server accepts requests.
// A failing hook aborts startup.
func StartupHook(fn func(context.Context) error) RunOption {
	return func(c *runConfig) {
		if fn != nil {
			c.startupHooks = append(c.startupHooks, fn)
		}
	}
}

// ShutdownHook registers a cleanup function run after the server stops.
// Hooks run in registration order with the shutdown timeout.
func ShutdownHook(fn func(context.Context) error) RunOption {
	return func(c *runConfig) {
		if fn != nil {
			c.shutdownHooks = append(c.shutdownHooks, fn)
		}
	}
}

// WithContext sets the base context; canceling it stops the server.
// Defaults to context.Background().
func WithContext(ctx context.Context) RunOption {
	return func(c *runConfig) {
		if ctx != nil {
			c.baseCtx = ctx
		}
	}
}
