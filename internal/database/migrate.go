package database

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"fintrack/internal/config"
	"fintrack/internal/logger"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// Migrate applies the embedded migrations under dir. Each service keeps its own
// version table so several services can share one database.
func Migrate(cfg config.DatabaseConfig, migrations fs.FS, dir, table string) error {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return fmt.Errorf("failed to open migration connection: %w", err)
	}
	defer db.Close()

	m, err := newMigrate(db, migrations, dir, table)
	if err != nil {
		return err
	}

	logger.Log.Info("running database migrations", zap.String("table", table))
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		logger.Log.Info("no migrations applied")
	case err != nil:
		return fmt.Errorf("failed to read migration version: %w", err)
	case dirty:
		logger.Log.Warn("migration version is dirty", zap.Uint("version", version))
	default:
		logger.Log.Info("database migrations completed", zap.Uint("version", version))
	}
	return nil
}

func newMigrate(db *sql.DB, migrations fs.FS, dir, table string) (*migrate.Migrate, error) {
	source, err := iofs.New(migrations, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{MigrationsTable: table})
	if err != nil {
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}
