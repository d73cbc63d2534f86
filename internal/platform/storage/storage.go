// Package storage opens the configured database and builds the repository provider for it.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	portsrepo "github.com/SscSPs/school_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/school_ledger/internal/platform/config"
	"github.com/SscSPs/school_ledger/internal/repositories/database/pgsql"
	"github.com/SscSPs/school_ledger/internal/repositories/database/sqlite"
	"github.com/SscSPs/school_ledger/pkg/database"
)

// Open connects to the database selected by cfg.DBDriver. PostgreSQL is
// migrated to the latest schema first. The returned func closes the connection.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*portsrepo.RepositoryProvider, func(), error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		logger.Info("Running database migrations...")
		if err := database.MigratePostgres(cfg.DatabaseURL, logger); err != nil {
			return nil, nil, fmt.Errorf("failed to apply migrations: %w", err)
		}
		pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize database pool: %w", err)
		}
		logger.Info("Database connection pool established.")
		return pgsql.NewRepositoryProvider(pool), func() { database.ClosePgxPool(pool) }, nil

	case config.DriverSQLite:
		var (
			db  *sql.DB
			err error
		)
		if cfg.SQLitePath == "" {
			db, err = database.OpenInMemorySQLite()
		} else {
			db, err = database.OpenSQLite(cfg.SQLitePath)
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		logger.Info("SQLite database opened.", slog.String("path", cfg.SQLitePath))
		return sqlite.NewRepositoryProvider(db), func() {
			if cerr := db.Close(); cerr != nil {
				logger.Error("Error closing sqlite database", slog.String("error", cerr.Error()))
			}
		}, nil
	}
	return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
}
