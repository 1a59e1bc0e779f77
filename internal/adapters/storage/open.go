package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jsamuelsen/quotekeeper/internal/adapters/storage/file"
	"github.com/jsamuelsen/quotekeeper/internal/adapters/storage/memory"
	"github.com/jsamuelsen/quotekeeper/internal/adapters/storage/postgres"
	"github.com/jsamuelsen/quotekeeper/internal/adapters/storage/sqlite"
	"github.com/jsamuelsen/quotekeeper/internal/platform/config"
	"github.com/jsamuelsen/quotekeeper/internal/ports"
)

// Open builds the slot store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (ports.SlotStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	logger = logger.With(slog.String("driver", cfg.Driver))

	var (
		store ports.SlotStore
		err   error
	)

	switch cfg.Driver {
	case config.StorageMemory:
		store = memory.New()
	case config.StorageFile:
		store, err = file.Open(cfg.File.Dir, logger)
	case config.StorageSQLite:
		store, err = sqlite.Open(ctx, cfg.SQLite.Path)
	case config.StoragePostgres:
		store, err = postgres.Open(ctx, postgres.Config{
			DSN:          cfg.Postgres.DSN,
			MaxOpenConns: cfg.Postgres.MaxOpenConns,
			ConnTimeout:  cfg.Postgres.ConnTimeout,
		})
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}

	if err != nil {
		return nil, fmt.Errorf("opening %s storage: %w", cfg.Driver, err)
	}

	logger.InfoContext(ctx, "storage opened")

	return store, nil
}
