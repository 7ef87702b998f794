package postbox

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/dmitrymomot/postbox/pkg/logger"
	"github.com/dmitrymomot/postbox/pkg/mailer"
	"github.com/dmitrymomot/postbox/pkg/transport/resend"
	"github.com/dmitrymomot/postbox/pkg/transport/smtp"
)

// Transport names accepted by Config.Transport.
const (
	TransportSMTP   = "smtp"
	TransportResend = "resend"
	TransportMemory = "memory"
)

// ErrInvalidConfig is returned when the configuration cannot be used.
var ErrInvalidConfig = errors.New("postbox: invalid config")

// Config is the service configuration, read from the environment.
type Config struct {
	Addr            string        `env:"HTTP_ADDR" envDefault:":3000"`
	RequestTimeout  time.Duration `env:"HTTP_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
	MaxBodySize     int64         `env:"HTTP_MAX_BODY_SIZE" envDefault:"10485760"`

	Transport   string `env:"TRANSPORT" envDefault:"smtp"`
	Concurrency int    `env:"DISPATCH_CONCURRENCY" envDefault:"6"`
	MaxBatch    int    `env:"DISPATCH_MAX_BATCH" envDefault:"1000"`

	Log    logger.Config
	SMTP   smtp.Config
	Resend resend.Config
	Mailer mailer.Config
}

// LoadConfig reads an optional .env file and parses the environment.
func LoadConfig(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		// A missing file is fine; the environment may be set directly.
		_ = godotenv.Load(f)
	}
	return ParseConfig(env.Options{})
}

// ParseConfig parses the configuration with the given env options and
// validates it. Tests pass Environment to avoid touching the process env.
func ParseConfig(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values the env parser cannot.
func (c Config) Validate() error {
	switch c.Transport {
	case TransportSMTP, TransportResend, TransportMemory:
	default:
		return fmt.Errorf("%w: unknown transport %q", ErrInvalidConfig, c.Transport)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("%w: dispatch concurrency must be positive, got %d", ErrInvalidConfig, c.Concurrency)
	}
	if c.MaxBatch < 1 {
		return fmt.Errorf("%w: max batch must be positive, got %d", ErrInvalidConfig, c.MaxBatch)
	}
	if c.Transport == TransportResend && c.Resend.APIKey == "" {
		return fmt.Errorf("%w: RESEND_API_KEY is required for the resend transport", ErrInvalidConfig)
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	switch c.Log.Format {
	case "", logger.FormatJSON, logger.FormatText:
	default:
		return fmt.Errorf("%w: unknown log format %q", ErrInvalidConfig, c.Log.Format)
	}
	return nil
}
