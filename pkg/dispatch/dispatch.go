package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/postbox/pkg/logger"
	"github.com/dmitrymomot/postbox/pkg/mailer"
	"github.com/dmitrymomot/postbox/pkg/transport"
)

const (
	// DefaultConcurrency is the number of sends in flight per batch.
	DefaultConcurrency = 6
	// DefaultMaxBatch is the largest accepted batch.
	DefaultMaxBatch = 1000
)

// ErrBatchTooLarge is returned by Bulk, before anything is sent, when a
// batch exceeds the configured maximum.
var ErrBatchTooLarge = errors.New("dispatch: batch too large")

// Sender sends a single request. *mailer.Mailer satisfies it.
type Sender interface {
	Send(ctx context.Context, req mailer.Request) (*transport.Response, error)
}

// Engine runs independent send requests with bounded concurrency.
// Its settings are fixed at construction; an Engine is safe for concurrent use.
type Engine struct {
	sender      Sender
	logger      *slog.Logger
	concurrency int
	maxBatch    int
}

// Option configures an Engine.
type Option func(*Engine)

// WithConcurrency sets how many sends may be in flight at once in one batch.
// Values below 1 are ignored.
func WithConcurrency(k int) Option {
	return func(e *Engine) {
		if k > 0 {
			e.concurrency = k
		}
	}
}

// WithMaxBatch sets the largest batch Bulk accepts. Zero disables the limit.
func WithMaxBatch(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.maxBatch = n
		}
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an Engine sending through s.
func New(s Sender, opts ...Option) *Engine {
	e := &Engine{
		sender:      s,
		logger:      logger.NewNope(),
		concurrency: DefaultConcurrency,
		maxBatch:    DefaultMaxBatch,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Concurrency returns the per-batch concurrency limit.
func (e *Engine) Concurrency() int {
	return e.concurrency
}

// Single sends one request and reports its outcome.
func (e *Engine) Single(ctx context.Context, req mailer.Request) Result {
	return e.run(ctx, req)
}

// Bulk sends every request and returns one Result per request, at the same
// index. A failing request never affects the others. Requests that have not
// started when ctx ends are reported as canceled. Bulk returns only after
// every started send has finished.
func (e *Engine) Bulk(ctx context.Context, reqs []mailer.Request) ([]Result, error) {
	if e.maxBatch > 0 && len(reqs) > e.maxBatch {
		return nil, fmt.Errorf("%w: %d requests, limit is %d", ErrBatchTooLarge, len(reqs), e.maxBatch)
	}

	start := time.Now()
	results := make([]Result, len(reqs))
	if len(reqs) == 0 {
		return results, nil
	}

	// Workers always return nil; failures are recorded in results.
	var g errgroup.Group
	g.SetLimit(e.concurrency)

	for i := range reqs {
		if err := ctx.Err(); err != nil {
			results[i] = Failure(mailer.NewError(mailer.KindCanceled, err))
			continue
		}
		g.Go(func() error {
			results[i] = e.run(ctx, reqs[i])
			return nil
		})
	}
	_ = g.Wait()

	var failed int
	for _, r := range results {
		if !r.OK() {
			failed++
		}
	}
	e.logger.InfoContext(ctx, "batch dispatched",
		slog.Int("size", len(reqs)),
		slog.Int("succeeded", len(reqs)-failed),
		slog.Int("failed", failed),
		slog.Duration("duration", time.Since(start)),
	)

	return results, nil
}

// run sends one request, turning errors and panics into a Result.
func (e *Engine) run(ctx context.Context, req mailer.Request) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.ErrorContext(ctx, "send panicked",
				slog.String("template", req.TemplateID),
				slog.Any("panic", r),
			)
			res = Failure(mailer.NewError(mailer.KindInternal, fmt.Errorf("panic: %v", r)))
		}
	}()

	if err := ctx.Err(); err != nil {
		return Failure(mailer.NewError(mailer.KindCanceled, err))
	}

	resp, err := e.sender.Send(ctx, req)
	if err != nil {
		return Failure(err)
	}
	return Success(resp)
}
