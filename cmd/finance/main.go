package main

import (
	"context"
	"log"

	"fintrack/internal/config"
	"fintrack/internal/database"
	"fintrack/internal/docs"
	"fintrack/internal/events"
	"fintrack/internal/finance"
	"fintrack/internal/logger"
	"fintrack/internal/notify"
	"fintrack/internal/objectstore"
	"fintrack/internal/peer"
	"fintrack/internal/web"

	"go.uber.org/zap"
)

// @title           User Finance Service API
// @version         1.0
// @description     Transactions, categories and receipt files.
// @BasePath        /
func main() {
	cfg, err := config.Load(config.Finance)
	if err != nil {
		log.Fatal("failed to load config: ", err)
	}
	logger.Init(cfg.Env)
	defer logger.Log.Sync()

	ctx := context.Background()

	var store finance.Store
	if cfg.Database.InMemory() {
		logger.Log.Info("using in-memory store")
		store = finance.NewMemoryStore()
	} else {
		pool, err := database.Connect(ctx, cfg.Database)
		if err != nil {
			logger.Log.Fatal("failed to connect to database", zap.Error(err))
		}
		defer pool.Close()

		if err := database.Migrate(cfg.Database, finance.Migrations, "migrations", finance.MigrationsTable); err != nil {
			logger.Log.Fatal("error running migrations", zap.Error(err))
		}
		store = finance.NewPostgresStore(pool)
	}

	files, err := objectstore.New(cfg.Storage)
	if err != nil {
		logger.Log.Fatal("failed to set up object storage", zap.Error(err))
	}

	publisher := events.New(cfg.Events.Brokers)
	defer publisher.Close()

	dispatcher := notify.NewDispatcher(cfg.Dispatcher.Capacity, cfg.Dispatcher.Timeout)

	h := finance.NewHandler(finance.Deps{
		Store:      store,
		Files:      files,
		Insight:    peer.NewClient(cfg.Services.InsightURL, cfg.Services.ClientTimeout),
		Publisher:  publisher,
		Dispatcher: dispatcher,
		Metrics:    finance.NewMetrics(),
	})

	r := web.NewEngine(docs.Finance, cfg.Gateway.AllowedOrigins)
	h.RegisterRoutes(r)

	if err := web.Serve(ctx, cfg.Server, r); err != nil {
		logger.Log.Error("server error", zap.Error(err))
	}
	dispatcher.Wait()
}
