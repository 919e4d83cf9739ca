package main

import (
	"context"
	"log"

	"fintrack/internal/accounts"
	"fintrack/internal/config"
	"fintrack/internal/database"
	"fintrack/internal/docs"
	"fintrack/internal/logger"
	"fintrack/internal/web"

	"go.uber.org/zap"
)

// @title           Authentication Service API
// @version         1.0
// @description     User registration, login and profile lookups.
// @BasePath        /
func main() {
	cfg, err := config.Load(config.Accounts)
	if err != nil {
		log.Fatal("failed to load config: ", err)
	}
	logger.Init(cfg.Env)
	defer logger.Log.Sync()

	ctx := context.Background()

	var store accounts.Store
	if cfg.Database.InMemory() {
		logger.Log.Info("using in-memory store")
		store = accounts.NewMemoryStore()
	} else {
		db, err := database.ConnectGorm(ctx, cfg.Database)
		if err != nil {
			logger.Log.Fatal("failed to connect to database", zap.Error(err))
		}
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}

		gormStore, err := accounts.NewGormStore(db)
		if err != nil {
			logger.Log.Fatal("error running migrations", zap.Error(err))
		}
		store = gormStore
	}

	r := web.NewEngine(docs.Accounts, cfg.Gateway.AllowedOrigins)
	accounts.NewHandler(store).RegisterRoutes(r)

	if err := web.Serve(ctx, cfg.Server, r); err != nil {
		logger.Log.Error("server error", zap.Error(err))
	}
}
