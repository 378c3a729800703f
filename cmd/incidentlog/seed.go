package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bissquit/incidentlog/internal/app"
	"github.com/bissquit/incidentlog/internal/incidents"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert sample incidents into an empty store and exit",
	RunE:  runSeed,
}

func runSeed(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Database.ConnectTimeout)
	defer cancel()

	storage, err := app.OpenStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer storage.Close()

	seeded, err := incidents.NewService(storage.Repository).SeedIfEmpty(ctx)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	if !seeded {
		slog.Info("store already holds incidents, nothing seeded")
	}
	return nil
}
