package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bissquit/incidentlog/internal/config"
	"github.com/bissquit/incidentlog/internal/incidents"
	incidentsdynamo "github.com/bissquit/incidentlog/internal/incidents/dynamo"
	incidentspostgres "github.com/bissquit/incidentlog/internal/incidents/postgres"
	"github.com/bissquit/incidentlog/internal/pkg/ddb"
	"github.com/bissquit/incidentlog/internal/pkg/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Storage is the incident store selected by storage.driver.
type Storage struct {
	Repository incidents.Repository

	// Pool is set for the postgres driver only.
	Pool *pgxpool.Pool

	ping func(ctx context.Context) error
}

// OpenStorage connects to the configured backend. For postgres, pending
// migrations are applied when database.migrate is set; for dynamodb the
// table is created when dynamo.create_table is set.
func OpenStorage(ctx context.Context, cfg *config.Config) (*Storage, error) {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		return openPostgres(ctx, cfg)
	case config.DriverDynamoDB:
		return openDynamo(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func openPostgres(ctx context.Context, cfg *config.Config) (*Storage, error) {
	pool, err := postgres.Connect(ctx, postgres.Config{
		URL:             cfg.Database.URL,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnectAttempts: cfg.Database.ConnectAttempts,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if cfg.Database.Migrate {
		if err := postgres.Migrate(cfg.Database.URL); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate database: %w", err)
		}
	}

	return &Storage{
		Repository: incidentspostgres.NewRepository(pool),
		Pool:       pool,
		ping:       pool.Ping,
	}, nil
}

func openDynamo(ctx context.Context, cfg *config.Config) (*Storage, error) {
	db, err := ddb.Connect(ctx, ddb.Config{
		Region:          cfg.Dynamo.Region,
		Endpoint:        cfg.Dynamo.Endpoint,
		AccessKeyID:     cfg.Dynamo.AccessKeyID,
		SecretAccessKey: cfg.Dynamo.SecretAccessKey,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to dynamodb: %w", err)
	}

	repo := incidentsdynamo.NewRepository(db, cfg.Dynamo.Table)
	if cfg.Dynamo.CreateTable {
		if err := repo.EnsureTable(ctx); err != nil {
			return nil, err
		}
	}

	slog.Info("using dynamodb incident store", "table", cfg.Dynamo.Table)
	return &Storage{
		Repository: repo,
		ping:       repo.Ping,
	}, nil
}

// Ping checks that the backend is reachable.
func (s *Storage) Ping(ctx context.Context) error {
	return s.ping(ctx)
}

// Close releases backend connections.
func (s *Storage) Close() {
	if s.Pool != nil {
		s.Pool.Close()
	}
}
