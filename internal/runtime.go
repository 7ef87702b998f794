package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrymomot/postbox/pkg/logger"
)

type runtimeConfig struct {
	handler         http.Handler
	address         string
	listener        net.Listener
	logger          *slog.Logger
	shutdownTimeout time.Duration
	startupHooks    []func(context.Context) error
	shutdownHooks   []func(context.Context) error
	baseCtx         context.Context
}

// runServer starts the HTTP server and blocks until a signal arrives or
// the base context ends.
func runServer(cfg runtimeConfig) error {
	if cfg.address == "" {
		cfg.address = ":3000"
	}
	if cfg.shutdownTimeout == 0 {
		cfg.shutdownTimeout = defaultShutdownTimeout
	}
	log := cfg.logger
	if log == nil {
		log = logger.NewNope()
	}

	server := &http.Server{
		Addr:              cfg.address,
		Handler:           cfg.handler,
		ReadTimeout:       defaultReadTimeout,
		WriteTimeout:      defaultWriteTimeout,
		IdleTimeout:       defaultIdleTimeout,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		MaxHeaderBytes:    defaultMaxHeaderBytes,
	}

	baseCtx := cfg.baseCtx
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	ctx, cancel := signal.NotifyContext(baseCtx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	for _, hook := range cfg.startupHooks {
		if err := hook(ctx); err != nil {
			return fmt.Errorf("startup hook: %w", err)
		}
	}

	ln := cfg.listener
	if ln == nil {
		var err error
		ln, err = net.Listen("tcp", server.Addr)
		if err != nil {
			return err
		}
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", slog.String("address", ln.Addr().String()))
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.shutdownTimeout)
	defer shutdownCancel()

	var errs []error

	// In-flight batches finish before the hooks release shared resources.
	if err := server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, err)
	}

	for _, hook := range cfg.shutdownHooks {
		if err := hook(shutdownCtx); err != nil {
			errs = append(errs, err)
			log.Error("shutdown hook failed", slog.Any("error", err))
		}
	}

	if len(errs) > 0 {
		log.Error("shutdown completed with errors")
		return errors.Join(errs...)
	}

	log.Info("shutdown completed")
	return nil
}
