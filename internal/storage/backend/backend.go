// Package backend opens the storage.Store selected by configuration.
package backend

import (
	"context"
	"fmt"

	"github.com/hongminglow/tasks-be/internal/config"
	"github.com/hongminglow/tasks-be/internal/storage"
	"github.com/hongminglow/tasks-be/internal/storage/mongo"
	"github.com/hongminglow/tasks-be/internal/storage/postgres"
	"github.com/hongminglow/tasks-be/internal/storage/sqlite"
)

// Open connects to the configured driver.
func Open(ctx context.Context, cfg config.Config) (storage.Store, error) {
	switch cfg.StorageDriver {
	case config.DriverMongo:
		return mongo.NewStore(ctx, cfg.DatabaseURL, cfg.DatabaseName)
	case config.DriverPostgres:
		return postgres.NewStore(ctx, cfg.DatabaseURL)
	case config.DriverSQLite:
		return sqlite.NewStore(ctx, cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}
