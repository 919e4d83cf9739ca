package main

import (
	"context"
	"log"

	"fintrack/internal/config"
	"fintrack/internal/gateway"
	"fintrack/internal/logger"
	"fintrack/internal/web"

	"go.uber.org/zap"
)

// @title           API Gateway
// @version         1.0
// @description     Edge router for the fintrack services.
// @BasePath        /
func main() {
	cfg, err := config.Load(config.Gateway)
	if err != nil {
		log.Fatal("failed to load config: ", err)
	}
	logger.Init(cfg.Env)
	defer logger.Log.Sync()

	g, err := gateway.New(cfg)
	if err != nil {
		logger.Log.Fatal("invalid gateway configuration", zap.Error(err))
	}

	if err := web.Serve(context.Background(), cfg.Server, g.Handler()); err != nil {
		logger.Log.Error("server error", zap.Error(err))
	}
}
