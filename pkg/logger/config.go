package logger

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// ErrInvalidConfig is returned for an unknown level or format.
var ErrInvalidConfig = errors.New("logger: invalid config")

const (
	FormatJSON = "json"
	FormatText = "text"
)

// Config holds logger configuration loaded from the environment.
type Config struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
	Sentry SentryConfig
}

// ParseLevel parses debug, info, warn or error, case-insensitively.
// An empty string means info.
func ParseLevel(s string) (slog.Level, error) {
	if strings.TrimSpace(s) == "" {
		return slog.LevelInfo, nil
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("%w: level %q", ErrInvalidConfig, s)
	}
	return l, nil
}
