package app

import (
	"context"
	"fmt"

	"rentalhub-backend/internal/config"
	"rentalhub-backend/internal/logger"
	"rentalhub-backend/internal/repository"
	"rentalhub-backend/internal/repository/memory"
	"rentalhub-backend/internal/repository/postgres"
)

// OpenStore connects the store selected by database.driver.
func OpenStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	switch cfg.Database.Driver {
	case config.DriverMemory:
		logger.Warn("Using in-memory store; data is lost on exit")
		return memory.NewStore(), nil
	case config.DriverPostgres, "":
		logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database)
		db, err := postgres.Open(ctx, cfg.GetDatabaseConnectionString())
		if err != nil {
			return nil, err
		}
		logger.Info("Database connection established")
		return postgres.NewStore(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}
