package internal_test

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/postbox/internal"
)

type echoHandler struct{}

func (echoHandler) Routes(r internal.Router) {
	r.GET("/hello/{name}", func(c internal.Context) error {
		return c.String(http.StatusOK, "hello "+c.Param("name"))
	})
	r.POST("/echo", func(c internal.Context) error {
		var v map[string]any
		if err := c.BindJSON(&v); err != nil {
			return internal.ErrBadRequest("invalid json", internal.WithError(err))
		}
		return c.JSON(http.StatusOK, v)
	})
	r.Route("/api", func(r internal.Router) {
		r.GET("/fail", func(c internal.Context) error {
			return errors.New("boom")
		})
		r.GET("/html", func(c internal.Context) error {
			return c.HTML(http.StatusOK, "<p>"+c.QueryDefault("q", "none")+"</p>")
		})
	})
}

func jsonErrors(c internal.Context, err error) error {
	if httpErr := internal.AsHTTPError(err); httpErr != nil {
		return c.JSON(httpErr.Code, map[string]string{"error": httpErr.Message})
	}
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

func newApp(opts ...internal.Option) *internal.App {
	opts = append([]internal.Option{
		internal.WithHandlers(echoHandler{}),
		internal.WithErrorHandler(jsonErrors),
	}, opts...)
	return internal.New(opts...)
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, r))
	return rec
}

func TestAppRoutes(t *testing.T) {
	t.Parallel()

	app := newApp()

	t.Run("url params", func(t *testing.T) {
		t.Parallel()
		rec := do(t, app, http.MethodGet, "/hello/bob", "")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "hello bob", rec.Body.String())
		require.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	})

	t.Run("json body", func(t *testing.T) {
		t.Parallel()
		rec := do(t, app, http.MethodPost, "/echo", `{"a":1}`)
		require.Equal(t, http.StatusOK, rec.Code)
		require.JSONEq(t, `{"a":1}`, rec.Body.String())
	})

	t.Run("http error", func(t *testing.T) {
		t.Parallel()
		rec := do(t, app, http.MethodPost, "/echo", `{`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.JSONEq(t, `{"error":"invalid json"}`, rec.Body.String())
	})

	t.Run("plain error", func(t *testing.T) {
		t.Parallel()
		rec := do(t, app, http.MethodGet, "/api/fail", "")
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		require.JSONEq(t, `{"error":"boom"}`, rec.Body.String())
	})

	t.Run("route group", func(t *testing.T) {
		t.Parallel()
		rec := do(t, app, http.MethodGet, "/api/html?q=x", "")
		require.Equal(t, "<p>x</p>", rec.Body.String())
		require.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	})
}

func TestAppBodyLimit(t *testing.T) {
	t.Parallel()

	app := newApp(internal.WithMaxBodySize(8))
	rec := do(t, app, http.MethodPost, "/echo", `{"long":"value"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAppMiddlewareOrder(t *testing.T) {
	t.Parallel()

	var order []string
	mw := func(name string) internal.Middleware {
		return func(next internal.HandlerFunc) internal.HandlerFunc {
			return func(c internal.Context) error {
				order = append(order, name)
				return next(c)
			}
		}
	}

	app := newApp(internal.WithMiddleware(mw("first"), mw("second")))
	rec := do(t, app, http.MethodGet, "/hello/x", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []string{"first", "second"}, order)
}

func TestAppMiddlewareShortCircuit(t *testing.T) {
	t.Parallel()

	deny := func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			return internal.NewHTTPError(http.StatusServiceUnavailable, "closed")
		}
	}

	rec := do(t, newApp(internal.WithMiddleware(deny)), http.MethodGet, "/hello/x", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.JSONEq(t, `{"error":"closed"}`, rec.Body.String())
}

func TestAppNotFound(t *testing.T) {
	t.Parallel()

	app := newApp(
		internal.WithNotFoundHandler(func(c internal.Context) error {
			return internal.ErrNotFound("no route")
		}),
		internal.WithMethodNotAllowedHandler(func(c internal.Context) error {
			return internal.ErrMethodNotAllowed("wrong method")
		}),
	)

	rec := do(t, app, http.MethodGet, "/missing", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.JSONEq(t, `{"error":"no route"}`, rec.Body.String())

	rec = do(t, app, http.MethodDelete, "/echo", "")
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestAppHealthChecks(t *testing.T) {
	t.Parallel()

	healthy := newApp(internal.WithHealthChecks(
		internal.WithReadinessCheck("ok", func(context.Context) error { return nil }),
	))
	require.Equal(t, http.StatusOK, do(t, healthy, http.MethodGet, "/health/live", "").Code)
	require.Equal(t, http.StatusOK, do(t, healthy, http.MethodGet, "/health/ready", "").Code)

	failing := newApp(internal.WithHealthChecks(
		internal.WithReadinessPath("/ready"),
		internal.WithReadinessCheck("relay", func(context.Context) error { return errors.New("down") }),
	))
	require.Equal(t, http.StatusServiceUnavailable, do(t, failing, http.MethodGet, "/ready", "").Code)
}

func TestAppRun(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	var started, stopped bool

	done := make(chan error, 1)
	go func() {
		done <- newApp().Run("",
			internal.Listener(ln),
			internal.WithContext(ctx),
			internal.StartupHook(func(context.Context) error { started = true; return nil }),
			internal.ShutdownHook(func(context.Context) error { stopped = true; return nil }),
			internal.ShutdownTimeout(time.Second),
		)
	}()

	var resp *http.Response
	require.Eventually(t, func() bool {
		resp, err = http.Get("http://" + ln.Addr().String() + "/hello/run")
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.Equal(t, "hello run", string(body))

	cancel()
	require.NoError(t, <-done)
	require.True(t, started)
	require.True(t, stopped)
}

func TestAppRunStartupHookFails(t *testing.T) {
	t.Parallel()

	err := newApp().Run("127.0.0.1:0",
		internal.StartupHook(func(context.Context) error { return errors.New("templates broken") }),
	)
	require.ErrorContains(t, err, "templates broken")
}
