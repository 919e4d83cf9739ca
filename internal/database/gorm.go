package database

import (
	"context"
	"fmt"
	"time"

	"fintrack/internal/config"
	"fintrack/internal/logger"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ConnectGorm opens a gorm handle over the same DSN as Connect and retries
// while the database comes up.
func ConnectGorm(ctx context.Context, cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	for i := 0; i < maxRetries; i++ {
		db, err := gorm.Open(postgres.New(postgres.Config{DSN: cfg.DSN()}), gormConfig)
		if err == nil {
			sqlDB, dbErr := db.DB()
			if dbErr == nil {
				if cfg.MaxConns > 0 {
					sqlDB.SetMaxOpenConns(int(cfg.MaxConns))
				}
				if err = sqlDB.PingContext(ctx); err == nil {
					logger.Log.Info("connected to the database", zap.String("database", cfg.Name))
					return db, nil
				}
				_ = sqlDB.Close()
			} else {
				err = dbErr
			}
		}
		logger.Log.Warn("error connecting to database", zap.Int("attempt", i+1), zap.Error(err))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryInterval):
		}
	}
	return nil, fmt.Errorf("failed to connect to database after %d attempts", maxRetries)
}
