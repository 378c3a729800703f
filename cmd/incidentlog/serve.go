package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bissquit/incidentlog/internal/app"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and metrics servers",
	Long: `Start the incident log servers.

On startup the store is connected, the embedded PostgreSQL schema is applied when
database.migrate is set, and two sample incidents are inserted when the
store is empty and seed.enabled is set. SIGINT or SIGTERM triggers a
graceful shutdown bounded by server.shutdown_timeout.`,
	RunE: runServe,
}

// server is the part of *app.App driven by serve.
type server interface {
	Run() error
	Shutdown(ctx context.Context) error
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("initialize app: %w", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	return serveUntilSignal(a, sigCh, cfg.Server.ShutdownTimeout)
}

// serveUntilSignal runs srv until it fails or a signal arrives, then shuts
// it down within shutdownTimeout.
func serveUntilSignal(srv server, sigCh <-chan os.Signal, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run()
	}()

	var runErr error
	select {
	case runErr = <-errCh:
		if runErr == nil {
			return nil
		}
		slog.Error("server failed", "error", runErr)
	case sig := <-sigCh:
		slog.Info("received signal", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Join(runErr, fmt.Errorf("shutdown: %w", err))
	}
	if runErr != nil {
		return runErr
	}

	slog.Info("server stopped")
	return nil
}
