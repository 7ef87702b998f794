package middlewares_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrymomot/postbox/internal"
)

// syncBuffer is a bytes.Buffer safe for handlers logging from goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type testContext struct {
	response *internal.ResponseWriter
	request  *http.Request
	logger   *slog.Logger
	logs     *syncBuffer
}

func newTestContext(w http.ResponseWriter, r *http.Request) *testContext {
	logs := &syncBuffer{}
	return &testContext{
		response: internal.NewResponseWriter(w),
		request:  r,
		logs:     logs,
		logger:   slog.New(slog.NewJSONHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug})),
	}
}

func (c *testContext) Request() *http.Request        { return c.request }
func (c *testContext) Response() http.ResponseWriter { return c.response }
func (c *testContext) Context() context.Context      { return c.request.Context() }
func (c *testContext) Param(string) string           { return "" }
func (c *testContext) Query(name string) string      { return c.request.URL.Query().Get(name) }

func (c *testContext) QueryDefault(name, defaultValue string) string {
	if v := c.Query(name); v != "" {
		return v
	}
	return defaultValue
}

func (c *testContext) Header(name string) string    { return c.request.Header.Get(name) }
func (c *testContext) SetHeader(name, value string) { c.response.Header().Set(name, value) }
func (c *testContext) Body() ([]byte, error)        { return io.ReadAll(c.request.Body) }

func (c *testContext) BindJSON(v any) error {
	body, err := c.Body()
	if err != nil {
		return err
	}
	return json.Unmarshal(body, v)
}

func (c *testContext) JSON(code int, v any) error {
	c.response.WriteHeader(code)
	return json.NewEncoder(c.response).Encode(v)
}

func (c *testContext) String(code int, s string) error {
	c.response.WriteHeader(code)
	_, err := io.WriteString(c.response, s)
	return err
}

func (c *testContext) HTML(code int, s string) error { return c.String(code, s) }
func (c *testContext) NoContent(code int) error      { c.response.WriteHeader(code); return nil }

func (c *testContext) Error(code int, message string, opts ...internal.HTTPErrorOption) *internal.HTTPError {
	return internal.NewHTTPError(code, message, opts...)
}

func (c *testContext) Written() bool                     { return c.response.Written() }
func (c *testContext) Logger() *slog.Logger              { return c.logger }
func (c *testContext) LogDebug(msg string, attrs ...any) { c.logger.DebugContext(c, msg, attrs...) }
func (c *testContext) LogInfo(msg string, attrs ...any)  { c.logger.InfoContext(c, msg, attrs...) }
func (c *testContext) LogWarn(msg string, attrs ...any)  { c.logger.WarnContext(c, msg, attrs...) }
func (c *testContext) LogError(msg string, attrs ...any) { c.logger.ErrorContext(c, msg, attrs...) }

func (c *testContext) Set(key, value any) {
	c.request = c.request.WithContext(context.WithValue(c.request.Context(), key, value))
}

func (c *testContext) Get(key any) any { return c.request.Context().Value(key) }

func (c *testContext) SetContext(ctx context.Context) { c.request = c.request.WithContext(ctx) }

func (c *testContext) Deadline() (time.Time, bool) { return c.request.Context().Deadline() }
func (c *testContext) Done() <-chan struct{}       { return c.request.Context().Done() }
func (c *testContext) Err() error                  { return c.request.Context().Err() }
func (c *testContext) Value(key any) any           { return c.request.Context().Value(key) }

var _ internal.Context = (*testContext)(nil)
