package internal

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/postbox/pkg/health"
	"github.com/dmitrymomot/postbox/pkg/logger"
)

// Default server timeouts.
const (
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 90 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20 // 1MB
	defaultShutdownTimeout   = 30 * time.Second
)

// App wires routes, middleware and error handling into an http.Handler.
// App is immutable after creation.
type App struct {
	router                  chi.Router
	errorHandler            ErrorHandler
	notFoundHandler         HandlerFunc
	methodNotAllowedHandler HandlerFunc
	healthConfig            *healthConfig
	logger                  *slog.Logger
	maxBodySize             int64
	middlewares             []Middleware
	handlers                []Handler
}

// New creates a new application with the given options.
func New(opts ...Option) *App {
	a := &App{
		router:      chi.NewRouter(),
		logger:      logger.NewNope(),
		maxBodySize: DefaultMaxBodySize,
	}

	for _, opt := range opts {
		opt(a)
	}

	a.setupRoutes()
	return a
}

// Router returns the underlying chi.Router.
func (a *App) Router() chi.Router {
	return a.router
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Run serves the app on addr and blocks until shutdown.
func (a *App) Run(addr string, opts ...RunOption) error {
	cfg := buildRunConfig(opts...)
	if cfg.logger == nil {
		cfg.logger = a.logger
	}

	return runServer(runtimeConfig{
		handler:         a,
		address:         addr,
		listener:        cfg.listener,
		logger:          cfg.logger,
		shutdownTimeout: cfg.shutdownTimeout,
		startupHooks:    cfg.startupHooks,
		shutdownHooks:   cfg.shutdownHooks,
		baseCtx:         cfg.baseCtx,
	})
}

func (a *App) setupRoutes() {
	if a.notFoundHandler != nil {
		a.router.NotFound(a.wrapHandler(a.notFoundHandler))
	}
	if a.methodNotAllowedHandler != nil {
		a.router.MethodNotAllowed(a.wrapHandler(a.methodNotAllowedHandler))
	}

	// The response writer wrapper goes first so every layer sees the same one.
	a.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(NewResponseWriter(w), r)
		})
	})
	for _, mw := range a.middlewares {
		a.router.Use(a.adaptMiddleware(mw))
	}

	if a.healthConfig != nil {
		a.router.Get(a.healthConfig.livenessPath, health.LivenessHandler())
		a.router.Get(a.healthConfig.readinessPath, health.ReadinessHandler(a.healthConfig.checks, health.WithLogger(logger.Component(a.logger, "health"))))
	}

	r := &routerAdapter{router: a.router, app: a}
	for _, h := range a.handlers {
		h.Routes(r)
	}
}

// wrapHandler converts a HandlerFunc to http.HandlerFunc using the app's error handler.
func (a *App) wrapHandler(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := newContext(w, r, a)
		if err := h(c); err != nil {
			a.handleError(c, err)
		}
	}
}

func (a *App) handleError(c Context, err error) {
	if c.Written() {
		return
	}
	if a.errorHandler != nil {
		if herr := a.errorHandler(c, err); herr != nil {
			a.logger.ErrorContext(c.Context(), "error handler failed", slog.String("error", herr.Error()))
		}
		return
	}
	http.Error(c.Response(), "Internal Server Error", http.StatusInternalServerError)
}

// healthConfig holds health check endpoint configuration.
type healthConfig struct {
	checks        health.Checks
	livenessPath  string
	readinessPath string
}

const (
	defaultLivenessPath  = "/health/live"
	defaultReadinessPath = "/health/ready"
)

// HealthOption configures health check endpoints.
type HealthOption func(*healthConfig)

// WithLivenessPath sets a custom liveness endpoint path.
func WithLivenessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.livenessPath = path
		}
	}
}

// WithReadinessPath sets a custom readiness endpoint path.
func WithReadinessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.readinessPath = path
		}
	}
}

// WithReadinessCheck adds a named readiness check.
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return func(c *healthConfig) {
		if c.checks == nil {
			c.checks = make(health.Checks)
		}
		c.checks[name] = fn
	}
}
