package health

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/postbox/pkg/logger"
)

const (
	defaultTimeout = 5 * time.Second

	// StatusHealthy indicates all checks passed.
	StatusHealthy = "healthy"
	// StatusUnhealthy indicates one or more checks failed.
	StatusUnhealthy = "unhealthy"
)

// CheckFunc reports whether a dependency is usable.
// transport.Pinger's Ping method has this signature.
type CheckFunc func(ctx context.Context) error

// Checks is a map of named health check functions.
type Checks map[string]CheckFunc

// Response represents a health check response.
type Response struct {
	Checks map[string]Check `json:"checks,omitempty"`
	Status string           `json:"status"`
}

// Check represents the status of a single health check.
type Check struct {
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
	Duration string `json:"duration"`
}

type config struct {
	logger  *slog.Logger
	timeout time.Duration
}

// Option configures health check behavior.
type Option func(*config)

// WithTimeout sets the timeout for all checks.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger for failed checks.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

func newConfig(opts ...Option) *config {
	cfg := &config{
		timeout: defaultTimeout,
		logger:  logger.NewNope(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Run executes all checks in parallel under the configured timeout.
func Run(ctx context.Context, checks Checks, opts ...Option) *Response {
	return runChecks(ctx, checks, newConfig(opts...))
}

func runChecks(ctx context.Context, checks Checks, cfg *config) *Response {
	if len(checks) == 0 {
		return &Response{Status: StatusHealthy}
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	var (
		mu      sync.Mutex
		g       errgroup.Group
		results = make(map[string]Check, len(checks))
		status  = StatusHealthy
	)

	for name, check := range checks {
		g.Go(func() error {
			start := time.Now()
			err := check(ctx)
			if err == nil && ctx.Err() != nil {
				err = ctx.Err()
			}

			result := Check{Status: StatusHealthy, Duration: time.Since(start).String()}
			if err != nil {
				if errors.Is(err, context.DeadlineExceeded) {
					err = errors.Join(ErrCheckTimeout, err)
				}
				result.Status = StatusUnhealthy
				result.Error = err.Error()
				cfg.logger.WarnContext(ctx, "health check failed",
					slog.String("check", name),
					slog.String("error", err.Error()),
				)
			}

			mu.Lock()
			results[name] = result
			if err != nil {
				status = StatusUnhealthy
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return &Response{
		Status: status,
		Checks: results,
	}
}
