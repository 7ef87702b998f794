package middlewares_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/postbox/internal"
	"github.com/dmitrymomot/postbox/middlewares"
	"github.com/dmitrymomot/postbox/pkg/logger"
)

func TestRequestID(t *testing.T) {
	t.Parallel()

	t.Run("generates a uuid", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		c := newTestContext(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		var got string
		err := middlewares.RequestID()(func(c internal.Context) error {
			got = middlewares.GetRequestID(c)
			return nil
		})(c)
		require.NoError(t, err)

		_, err = uuid.Parse(got)
		require.NoError(t, err)
		require.Equal(t, got, rec.Header().Get("X-Request-ID"))
	})

	t.Run("keeps upstream id", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Correlation-ID", "corr-1")
		rec := httptest.NewRecorder()

		err := middlewares.RequestID()(func(c internal.Context) error {
			require.Equal(t, "corr-1", middlewares.GetRequestID(c))
			return nil
		})(newTestContext(rec, req))
		require.NoError(t, err)
		require.Equal(t, "corr-1", rec.Header().Get("X-Request-ID"))
	})

	t.Run("oversized upstream id is replaced", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", strings.Repeat("a", 200))
		rec := httptest.NewRecorder()

		err := middlewares.RequestID(middlewares.WithRequestIDGenerator(func() string { return "fixed" }))(
			func(internal.Context) error { return nil },
		)(newTestContext(rec, req))
		require.NoError(t, err)
		require.Equal(t, "fixed", rec.Header().Get("X-Request-ID"))
	})

	t.Run("custom headers", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Trace", "trace-7")
		rec := httptest.NewRecorder()

		err := middlewares.RequestID(
			middlewares.WithRequestIDHeaders("X-Trace"),
			middlewares.WithRequestIDResponseHeader("X-Trace-Echo"),
		)(func(internal.Context) error { return nil })(newTestContext(rec, req))
		require.NoError(t, err)
		require.Equal(t, "trace-7", rec.Header().Get("X-Trace-Echo"))
		require.Empty(t, rec.Header().Get("X-Request-ID"))
	})

	t.Run("without middleware", func(t *testing.T) {
		t.Parallel()

		c := newTestContext(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		require.Empty(t, middlewares.GetRequestID(c))
	})
}

func TestRequestIDExtractor(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(logger.NewLogHandlerDecorator(slog.NewJSONHandler(&buf, nil), middlewares.RequestIDExtractor()))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-42")
	err := middlewares.RequestID()(func(c internal.Context) error {
		log.InfoContext(c.Context(), "dispatching")
		return nil
	})(newTestContext(httptest.NewRecorder(), req))
	require.NoError(t, err)
	require.Contains(t, buf.String(), `"request_id":"req-42"`)

	buf.Reset()
	log.InfoContext(context.Background(), "no request")
	require.NotContains(t, buf.String(), "request_id")
}
