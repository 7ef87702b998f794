package smtp

import "time"

// Mode selects how the connection to the relay is secured.
type Mode string

const (
	ModePlaintext Mode = "plaintext"
	ModeStartTLS  Mode = "starttls"
	ModeTLS       Mode = "tls"
)

// Config holds SMTP relay configuration.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	Mode     Mode          `env:"SMTP_MODE" envDefault:"plaintext"`
	Host     string        `env:"SMTP_HOST" envDefault:"localhost"`
	Port     int           `env:"SMTP_PORT" envDefault:"25"`
	Timeout  time.Duration `env:"SMTP_TIMEOUT" envDefault:"5s"`
	Username string        `env:"SMTP_USERNAME"`
	Password string        `env:"SMTP_PASSWORD"`
	HELO     string        `env:"SMTP_HELO"`
}
