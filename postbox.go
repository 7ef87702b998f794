package postbox

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/dmitrymomot/postbox/emails"
	"github.com/dmitrymomot/postbox/handlers"
	"github.com/dmitrymomot/postbox/internal"
	"github.com/dmitrymomot/postbox/middlewares"
	"github.com/dmitrymomot/postbox/pkg/dispatch"
	"github.com/dmitrymomot/postbox/pkg/htmltext"
	"github.com/dmitrymomot/postbox/pkg/i18n"
	"github.com/dmitrymomot/postbox/pkg/logger"
	"github.com/dmitrymomot/postbox/pkg/mailer"
	"github.com/dmitrymomot/postbox/pkg/templates"
	"github.com/dmitrymomot/postbox/pkg/transport"
	"github.com/dmitrymomot/postbox/pkg/transport/resend"
	"github.com/dmitrymomot/postbox/pkg/transport/smtp"
	"github.com/dmitrymomot/postbox/pkg/transport/transporttest"
)

// HealthcheckPath answers "ok" while the process is serving.
const HealthcheckPath = "/healthcheck"

// sentryFlushTimeout bounds the final Sentry flush when the shutdown
// context carries no deadline.
const sentryFlushTimeout = 2 * time.Second

// RunOption configures the server runtime.
type RunOption = internal.RunOption

// Service is the assembled email service: template registry, renderer,
// dispatch engine and the HTTP application serving them.
type Service struct {
	cfg       Config
	logger    *slog.Logger
	transport transport.Transport
	registry  *templates.Registry
	renderer  *mailer.Renderer
	engine    *dispatch.Engine
	app       *internal.App
}

type options struct {
	logger    *slog.Logger
	transport transport.Transport
	templates fs.FS
	locales   fs.FS
}

// Option configures a Service.
type Option func(*options)

// WithLogger sets the service logger. Defaults to a no-op logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithTransport overrides the transport selected by Config.Transport.
func WithTransport(t transport.Transport) Option {
	return func(o *options) {
		if t != nil {
			o.transport = t
		}
	}
}

// WithTemplates replaces the embedded templates and layouts.
// fsys must hold templates/<id>.md and layouts/*.html.
func WithTemplates(fsys fs.FS) Option {
	return func(o *options) {
		if fsys != nil {
			o.templates = fsys
		}
	}
}

// WithLocales replaces the embedded string tables.
// fsys must hold <lang>/<namespace>.yaml files.
func WithLocales(fsys fs.FS) Option {
	return func(o *options) {
		if fsys != nil {
			o.locales = fsys
		}
	}
}

// New validates cfg and wires the service.
func New(cfg Config, opts ...Option) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := &options{logger: logger.NewNope()}
	for _, opt := range opts {
		opt(o)
	}
	if o.templates == nil {
		o.templates = emails.Templates()
	}
	if o.locales == nil {
		o.locales = emails.Locales()
	}

	log := o.logger
	t := o.transport
	if t == nil {
		var err error
		if t, err = newTransport(cfg); err != nil {
			return nil, err
		}
	}

	tr, err := i18n.New(
		i18n.WithDefaultLanguage(cfg.Mailer.DefaultLang),
		i18n.WithYAMLDir(o.locales),
		i18n.WithMissingKeyHandler(func(lang, namespace, key string) {
			log.Warn("missing translation",
				slog.String("lang", lang),
				slog.String("namespace", namespace),
				slog.String("key", key),
			)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("postbox: loading locales: %w", err)
	}

	registry := templates.New(o.templates, tr)
	renderer := mailer.NewRenderer(tr, registry, htmltext.New(
		htmltext.WithLogoAlt(cfg.Mailer.LogoAlt),
		htmltext.WithWidth(cfg.Mailer.TextWidth),
	))
	m := mailer.New(t, renderer,
		mailer.WithLogger(logger.Component(log, "mailer")),
		mailer.WithMessageIDDomain(cfg.Mailer.MessageIDDomain),
	)
	engine := dispatch.New(m,
		dispatch.WithConcurrency(cfg.Concurrency),
		dispatch.WithMaxBatch(cfg.MaxBatch),
		dispatch.WithLogger(logger.Component(log, "dispatch")),
	)

	docs, err := handlers.NewDocs()
	if err != nil {
		return nil, fmt.Errorf("postbox: %w", err)
	}

	var healthOpts []internal.HealthOption
	if p, ok := t.(transport.Pinger); ok {
		healthOpts = append(healthOpts, internal.WithReadinessCheck("transport", p.Ping))
	}

	app := internal.New(
		internal.WithCustomLogger(log),
		internal.WithMaxBodySize(cfg.MaxBodySize),
		internal.WithErrorHandler(handlers.ErrorHandler),
		internal.WithNotFoundHandler(handlers.NotFound),
		internal.WithMiddleware(
			middlewares.RequestID(),
			middlewares.Logging(middlewares.WithLoggingSkipPaths(HealthcheckPath)),
			middlewares.Timeout(cfg.RequestTimeout),
			middlewares.Recover(),
		),
		internal.WithHealthChecks(healthOpts...),
		internal.WithHandlers(
			handlers.NewMail(renderer, engine),
			handlers.Health{},
			docs,
		),
	)

	return &Service{
		cfg:       cfg,
		logger:    log,
		transport: t,
		registry:  registry,
		renderer:  renderer,
		engine:    engine,
		app:       app,
	}, nil
}

func newTransport(cfg Config) (transport.Transport, error) {
	switch cfg.Transport {
	case TransportSMTP:
		t, err := smtp.New(cfg.SMTP)
		if err != nil {
			return nil, fmt.Errorf("postbox: smtp transport: %w", err)
		}
		return t, nil
	case TransportResend:
		t, err := resend.New(cfg.Resend, nil)
		if err != nil {
			return nil, fmt.Errorf("postbox: resend transport: %w", err)
		}
		return t, nil
	case TransportMemory:
		return transporttest.New(), nil
	default:
		return nil, fmt.Errorf("%w: unknown transport %q", ErrInvalidConfig, cfg.Transport)
	}
}

// Renderer returns the template renderer.
func (s *Service) Renderer() *mailer.Renderer {
	return s.renderer
}

// Engine returns the dispatch engine.
func (s *Service) Engine() *dispatch.Engine {
	return s.engine
}

// Transport returns the transport messages are submitted through.
func (s *Service) Transport() transport.Transport {
	return s.transport
}

// ServeHTTP implements http.Handler.
func (s *Service) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.app.ServeHTTP(w, r)
}

// Run preloads every template, then serves on the configured address until
// SIGINT, SIGTERM or the end of a context passed with WithContext.
func (s *Service) Run(opts ...RunOption) error {
	base := []RunOption{
		internal.Logger(s.logger),
		internal.ShutdownTimeout(s.cfg.ShutdownTimeout),
		internal.StartupHook(s.preload),
		internal.ShutdownHook(flushSentry),
	}
	return s.app.Run(s.cfg.Addr, append(base, opts...)...)
}

func (s *Service) preload(context.Context) error {
	if err := s.registry.Preload(); err != nil {
		return fmt.Errorf("preloading templates: %w", err)
	}
	ids, _ := s.registry.IDs()
	s.logger.Info("templates loaded",
		slog.Int("templates", len(ids)),
		slog.Any("locales", s.renderer.Locales()),
		slog.String("transport", s.cfg.Transport),
		slog.Int("concurrency", s.engine.Concurrency()),
	)
	return nil
}

func flushSentry(ctx context.Context) error {
	timeout := sentryFlushTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	logger.Flush(timeout)
	return nil
}

// Listener serves on an existing listener instead of dialing the address.
func Listener(ln net.Listener) RunOption {
	return internal.Listener(ln)
}

// WithContext sets the base context; canceling it stops the server.
func WithContext(ctx context.Context) RunOption {
	return internal.WithContext(ctx)
}

// StartupHook registers a function run before the server accepts requests.
func StartupHook(fn func(context.Context) error) RunOption {
	return internal.StartupHook(fn)
}

// ShutdownHook registers a cleanup function run after the server stops.
func ShutdownHook(fn func(context.Context) error) RunOption {
	return internal.ShutdownHook(fn)
}
