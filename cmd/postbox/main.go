// Command postbox serves the transactional email API.
//
// Usage:
//
//	postbox                    serve on HTTP_ADDR
//	postbox healthcheck [url]  check a running instance, exit 1 when unreachable
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/dmitrymomot/postbox"
	"github.com/dmitrymomot/postbox/middlewares"
	"github.com/dmitrymomot/postbox/pkg/logger"
)

const healthcheckTimeout = 5 * time.Second

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := postbox.LoadConfig()
	if err != nil {
		return err
	}

	if len(args) > 0 && args[0] == "healthcheck" {
		endpoint := healthcheckURL(cfg.Addr)
		if len(args) > 1 {
			endpoint = args[1]
		}
		return healthcheck(endpoint)
	}

	log, err := logger.NewFromConfig(cfg.Log, middlewares.RequestIDExtractor())
	if err != nil {
		return err
	}
	log = log.With("app", "postbox")

	svc, err := postbox.New(cfg, postbox.WithLogger(log))
	if err != nil {
		log.Error("failed to initialize", slog.String("error", err.Error()))
		return err
	}

	if err := svc.Run(); err != nil {
		log.Error("server error", slog.String("error", err.Error()))
		return err
	}
	return nil
}

func healthcheckURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://localhost:3000" + postbox.HealthcheckPath
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port) + postbox.HealthcheckPath
}

func healthcheck(endpoint string) error {
	ctx, cancel := context.WithTimeout(context.Background(), healthcheckTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("healthcheck: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("healthcheck: can't reach %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("healthcheck: %s returned %s", endpoint, resp.Status)
	}
	return nil
}
