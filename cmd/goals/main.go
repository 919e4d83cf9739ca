package main

import (
	"context"
	"log"

	"fintrack/internal/config"
	"fintrack/internal/database"
	"fintrack/internal/docs"
	"fintrack/internal/goals"
	"fintrack/internal/logger"
	"fintrack/internal/notify"
	"fintrack/internal/peer"
	"fintrack/internal/web"

	"go.uber.org/zap"
)

// @title           Goal Service API
// @version         1.0
// @description     Savings goals, goal categories and progress tracking.
// @BasePath        /
func main() {
	cfg, err := config.Load(config.Goals)
	if err != nil {
		log.Fatal("failed to load config: ", err)
	}
	logger.Init(cfg.Env)
	defer logger.Log.Sync()

	ctx := context.Background()

	var store goals.Store
	if cfg.Database.InMemory() {
		logger.Log.Info("using in-memory store")
		store = goals.NewMemoryStore()
	} else {
		pool, err := database.Connect(ctx, cfg.Database)
		if err != nil {
			logger.Log.Fatal("failed to connect to database", zap.Error(err))
		}
		defer pool.Close()

		if err := database.Migrate(cfg.Database, goals.Migrations, "migrations", goals.MigrationsTable); err != nil {
			logger.Log.Fatal("error running migrations", zap.Error(err))
		}
		store = goals.NewPostgresStore(pool)
	}

	dispatcher := notify.NewDispatcher(cfg.Dispatcher.Capacity, cfg.Dispatcher.Timeout)

	h := goals.NewHandler(goals.Deps{
		Store:      store,
		Insight:    peer.NewClient(cfg.Services.InsightURL, cfg.Services.ClientTimeout),
		Finance:    peer.NewClient(cfg.Services.FinanceURL, cfg.Services.ClientTimeout),
		Dispatcher: dispatcher,
	})

	r := web.NewEngine(docs.Goals, cfg.Gateway.AllowedOrigins)
	h.RegisterRoutes(r)

	if err := web.Serve(ctx, cfg.Server, r); err != nil {
		logger.Log.Error("server error", zap.Error(err))
	}
	dispatcher.Wait()
}
