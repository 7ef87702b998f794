package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// DefaultMaxBodySize limits request bodies read through Body and BindJSON.
const DefaultMaxBodySize = 10 << 20

// ErrBodyTooLarge is returned when a request body exceeds the size limit.
var ErrBodyTooLarge = errors.New("request body too large")

// Context provides request/response access and helper methods.
// It also implements context.Context by delegating to the request context.
type Context interface {
	context.Context

	// Request returns the underlying *http.Request.
	Request() *http.Request

	// Response returns the underlying http.ResponseWriter.
	Response() http.ResponseWriter

	// Context returns the request's context.Context.
	Context() context.Context

	// Param returns the URL parameter value by name.
	Param(name string) string

	// Query returns the query parameter value by name.
	Query(name string) string

	// QueryDefault returns the query parameter value or a default.
	QueryDefault(name, defaultValue string) string

	// Header returns the request header value by name.
	Header(name string) string

	// SetHeader sets a response header.
	SetHeader(name, value string)

	// Body reads the whole request body, up to the size limit.
	Body() ([]byte, error)

	// BindJSON decodes the JSON request body into v.
	BindJSON(v any) error

	// JSON writes a JSON response with the given status code.
	JSON(code int, v any) error

	// String writes a plain text response with the given status code.
	String(code int, s string) error

	// HTML writes an HTML response with the given status code.
	HTML(code int, s string) error

	// NoContent writes a response with no body.
	NoContent(code int) error

	// Error creates an HTTPError without writing a response.
	Error(code int, message string, opts ...HTTPErrorOption) *HTTPError

	// Written returns true if a response has already been written.
	Written() bool

	// Logger returns the request logger.
	Logger() *slog.Logger

	LogDebug(msg string, attrs ...any)
	LogInfo(msg string, attrs ...any)
	LogWarn(msg string, attrs ...any)
	LogError(msg string, attrs ...any)

	// Set stores a value in the request context.
	Set(key any, value any)

	// Get retrieves a value from the request context.
	Get(key any) any

	// SetContext replaces the request context for the rest of the chain.
	SetContext(ctx context.Context)
}

// requestContext implements the Context interface.
type requestContext struct {
	response    *ResponseWriter
	request     *http.Request
	logger      *slog.Logger
	maxBodySize int64
}

func newContext(w http.ResponseWriter, r *http.Request, app *App) *requestContext {
	rw, ok := w.(*ResponseWriter)
	if !ok {
		rw = NewResponseWriter(w)
	}
	return &requestContext{
		request:     r,
		response:    rw,
		logger:      app.logger,
		maxBodySize: app.maxBodySize,
	}
}

func (c *requestContext) Request() *http.Request {
	return c.request
}

func (c *requestContext) Response() http.ResponseWriter {
	return c.response
}

func (c *requestContext) Context() context.Context {
	return c.request.Context()
}

func (c *requestContext) Deadline() (time.Time, bool) {
	return c.request.Context().Deadline()
}

func (c *requestContext) Done() <-chan struct{} {
	return c.request.Context().Done()
}

func (c *requestContext) Err() error {
	return c.request.Context().Err()
}

func (c *requestContext) Value(key any) any {
	return c.request.Context().Value(key)
}

func (c *requestContext) Param(name string) string {
	return chi.URLParam(c.request, name)
}

func (c *requestContext) Query(name string) string {
	return c.request.URL.Query().Get(name)
}

func (c *requestContext) QueryDefault(name, defaultValue string) string {
	v := c.request.URL.Query().Get(name)
	if v == "" {
		return defaultValue
	}
	return v
}

func (c *requestContext) Header(name string) string {
	return c.request.Header.Get(name)
}

func (c *requestContext) SetHeader(name, value string) {
	c.response.Header().Set(name, value)
}

func (c *requestContext) Body() ([]byte, error) {
	if c.request.Body == nil {
		return nil, nil
	}
	body, err := io.ReadAll(http.MaxBytesReader(c.response, c.request.Body, c.maxBodySize))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, fmt.Errorf("%w: limit is %d bytes", ErrBodyTooLarge, maxErr.Limit)
		}
		return nil, err
	}
	return body, nil
}

func (c *requestContext) BindJSON(v any) error {
	body, err := c.Body()
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decoding json body: %w", err)
	}
	return nil
}

func (c *requestContext) JSON(code int, v any) error {
	c.response.Header().Set("Content-Type", "application/json; charset=utf-8")
	c.response.WriteHeader(code)
	return json.NewEncoder(c.response).Encode(v)
}

func (c *requestContext) String(code int, s string) error {
	c.response.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c.response.WriteHeader(code)
	_, err := io.WriteString(c.response, s)
	return err
}

func (c *requestContext) HTML(code int, s string) error {
	c.response.Header().Set("Content-Type", "text/html; charset=utf-8")
	c.response.WriteHeader(code)
	_, err := io.WriteString(c.response, s)
	return err
}

func (c *requestContext) NoContent(code int) error {
	c.response.WriteHeader(code)
	return nil
}

func (c *requestContext) Error(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(code, message, opts...)
}

func (c *requestContext) Written() bool {
	return c.response.Written()
}

func (c *requestContext) Logger() *slog.Logger {
	return c.logger
}

func (c *requestContext) LogDebug(msg string, attrs ...any) {
	c.logger.DebugContext(c.Context(), msg, attrs...)
}

func (c *requestContext) LogInfo(msg string, attrs ...any) {
	c.logger.InfoContext(c.Context(), msg, attrs...)
}

func (c *requestContext) LogWarn(msg string, attrs ...any) {
	c.logger.WarnContext(c.Context(), msg, attrs...)
}

func (c *requestContext) LogError(msg string, attrs ...any) {
	c.logger.ErrorContext(c.Context(), msg, attrs...)
}

func (c *requestContext) Set(key, value any) {
	ctx := context.WithValue(c.request.Context(), key, value)
	c.request = c.request.WithContext(ctx)
}

func (c *requestContext) Get(key any) any {
	return c.request.Context().Value(key)
}

func (c *requestContext) SetContext(ctx context.Context) {
	c.request = c.request.WithContext(ctx)
}
