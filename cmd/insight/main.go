package main

import (
	"context"
	"log"

	"fintrack/internal/config"
	"fintrack/internal/database"
	"fintrack/internal/docs"
	"fintrack/internal/insight"
	"fintrack/internal/logger"
	"fintrack/internal/peer"
	"fintrack/internal/web"

	"go.uber.org/zap"
)

// @title           Insight Service API
// @version         1.0
// @description     Notifications, recommendations, spending analytics and combined overviews.
// @BasePath        /
func main() {
	cfg, err := config.Load(config.Insight)
	if err != nil {
		log.Fatal("failed to load config: ", err)
	}
	logger.Init(cfg.Env)
	defer logger.Log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var store insight.Store
	if cfg.Database.InMemory() {
		logger.Log.Info("using in-memory store")
		store = insight.NewMemoryStore()
	} else {
		pool, err := database.Connect(ctx, cfg.Database)
		if err != nil {
			logger.Log.Fatal("failed to connect to database", zap.Error(err))
		}
		defer pool.Close()

		if err := database.Migrate(cfg.Database, insight.Migrations, "migrations", insight.MigrationsTable); err != nil {
			logger.Log.Fatal("error running migrations", zap.Error(err))
		}
		store = insight.NewPostgresStore(pool)
	}

	go insight.NewSweeper(store, cfg.Insight.SweepInterval).Run(ctx)

	h := insight.NewHandler(insight.Deps{
		Store:    store,
		Finance:  peer.NewClient(cfg.Services.FinanceURL, cfg.Services.ClientTimeout),
		Goals:    peer.NewClient(cfg.Services.GoalsURL, cfg.Services.ClientTimeout),
		Services: cfg.Services,
	})

	r := web.NewEngine(docs.Insight, cfg.Gateway.AllowedOrigins)
	h.RegisterRoutes(r)

	if err := web.Serve(ctx, cfg.Server, r); err != nil {
		logger.Log.Error("server error", zap.Error(err))
	}
}
