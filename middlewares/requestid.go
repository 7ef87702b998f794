package middlewares

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/postbox/internal"
	"github.com/dmitrymomot/postbox/pkg/logger"
)

type requestIDKey struct{}

// DefaultRequestIDHeaders are the headers checked, in order, for an upstream request ID.
var DefaultRequestIDHeaders = []string{"X-Request-ID", "X-Correlation-ID"}

// maxRequestIDLen caps accepted upstream IDs; longer ones are replaced.
const maxRequestIDLen = 128

// RequestIDConfig configures the request ID middleware.
type RequestIDConfig struct {
	Generator      func() string
	ResponseHeader string
	Headers        []string
}

// RequestIDOption configures RequestIDConfig.
type RequestIDOption func(*RequestIDConfig)

// WithRequestIDHeaders sets the headers to check for existing request IDs.
func WithRequestIDHeaders(headers ...string) RequestIDOption {
	return func(cfg *RequestIDConfig) {
		cfg.Headers = headers
	}
}

// WithRequestIDGenerator sets a custom ID generator function.
func WithRequestIDGenerator(gen func() string) RequestIDOption {
	return func(cfg *RequestIDConfig) {
		if gen != nil {
			cfg.Generator = gen
		}
	}
}

// WithRequestIDResponseHeader sets the response header name.
func WithRequestIDResponseHeader(header string) RequestIDOption {
	return func(cfg *RequestIDConfig) {
		cfg.ResponseHeader = header
	}
}

// RequestID returns middleware that tags every request with an ID, taken
// from the first non-empty configured header or generated as a UUID.
// The ID is echoed in the response header and stored in the request context
// where RequestIDExtractor finds it, so mailer and dispatch logs carry it.
func RequestID(opts ...RequestIDOption) internal.Middleware {
	cfg := &RequestIDConfig{
		Headers:        DefaultRequestIDHeaders,
		Generator:      uuid.NewString,
		ResponseHeader: "X-Request-ID",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			var reqID string
			for _, header := range cfg.Headers {
				if v := c.Header(header); v != "" && len(v) <= maxRequestIDLen {
					reqID = v
					break
				}
			}
			if reqID == "" {
				reqID = cfg.Generator()
			}

			c.Set(requestIDKey{}, reqID)
			if cfg.ResponseHeader != "" {
				c.SetHeader(cfg.ResponseHeader, reqID)
			}

			return next(c)
		}
	}
}

// GetRequestID returns the request ID, or "" when the middleware is not installed.
func GetRequestID(c internal.Context) string {
	if v, ok := c.Get(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

// RequestIDExtractor returns a logger.ContextExtractor adding "request_id"
// to every record logged with a request context.
func RequestIDExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if v, ok := ctx.Value(requestIDKey{}).(string); ok && v != "" {
			return slog.String("request_id", v), true
		}
		return slog.Attr{}, false
	}
}
