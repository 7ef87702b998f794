package logger

import (
	"context"
	"errors"
	"log/slog"
	"slices"
)

// ContextExtractor returns a request-scoped attribute held by ctx, such as
// the request ID, and whether one was found.
type ContextExtractor func(ctx context.Context) (slog.Attr, bool)

// LogHandlerDecorator adds the attributes its extractors find in the record
// context before passing the record on.
type LogHandlerDecorator struct {
	next       slog.Handler
	extractors []ContextExtractor
}

// NewLogHandlerDecorator wraps next with extractors. Nil extractors are
// dropped; with none left next is returned as is.
func NewLogHandlerDecorator(next slog.Handler, extractors ...ContextExtractor) slog.Handler {
	extractors = slices.DeleteFunc(slices.Clone(extractors), func(ex ContextExtractor) bool {
		return ex == nil
	})
	if len(extractors) == 0 {
		return next
	}
	return &LogHandlerDecorator{next: next, extractors: extractors}
}

func (h *LogHandlerDecorator) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *LogHandlerDecorator) Handle(ctx context.Context, rec slog.Record) error {
	if ctx != nil {
		for _, ex := range h.extractors {
			if attr, ok := ex(ctx); ok && attr.Key != "" {
				rec.AddAttrs(attr)
			}
		}
	}
	return h.next.Handle(ctx, rec)
}

func (h *LogHandlerDecorator) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &LogHandlerDecorator{next: h.next.WithAttrs(attrs), extractors: h.extractors}
}

func (h *LogHandlerDecorator) WithGroup(name string) slog.Handler {
	return &LogHandlerDecorator{next: h.next.WithGroup(name), extractors: h.extractors}
}

// fanout sends every record to each handler enabled for its level. A handler
// that fails, such as an unreachable Sentry, does not keep the record from
// the others; all failures are joined.
type fanout []slog.Handler

func newFanout(handlers ...slog.Handler) slog.Handler {
	return fanout(handlers)
}

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	return slices.ContainsFunc(f, func(h slog.Handler) bool {
		return h.Enabled(ctx, level)
	})
}

func (f fanout) Handle(ctx context.Context, rec slog.Record) error {
	var errs []error
	for _, h := range f {
		if !h.Enabled(ctx, rec.Level) {
			continue
		}
		if err := h.Handle(ctx, rec.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	return f.each(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (f fanout) WithGroup(name string) slog.Handler {
	return f.each(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (f fanout) each(fn func(slog.Handler) slog.Handler) fanout {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = fn(h)
	}
	return out
}
