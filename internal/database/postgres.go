package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fintrack/internal/config"
	"fintrack/internal/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned by stores when the requested row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned by stores when a unique constraint is violated.
	ErrDuplicate = errors.New("record already exists")
	// ErrInUse is returned when a row cannot be removed because others reference it.
	ErrInUse = errors.New("record is referenced by other records")
)

const (
	maxRetries    = 30
	retryInterval = 2 * time.Second
)

// Connect opens a pgx pool, retrying while the database comes up.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}

	for i := 0; i < maxRetries; i++ {
		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			logger.Log.Warn("error opening database", zap.Int("attempt", i+1), zap.Error(err))
		} else if err = pool.Ping(ctx); err != nil {
			logger.Log.Warn("error connecting to database", zap.Int("attempt", i+1), zap.Error(err))
			pool.Close()
		} else {
			logger.Log.Info("connected to the database", zap.String("database", cfg.Name))
			return pool, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryInterval):
		}
	}
	return nil, fmt.Errorf("failed to connect to database after %d attempts", maxRetries)
}

// Translate maps driver errors onto the package sentinels so handlers never
// depend on pgx directly.
func Translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
		case "23503":
			return fmt.Errorf("%w: %s", ErrInUse, pgErr.ConstraintName)
		}
	}
	return err
}

// Rows is the subset of pgx.Rows the scan helpers need.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}
