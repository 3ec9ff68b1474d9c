package main

import (
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"user-deletion-service/internal/config"
	"user-deletion-service/internal/server"
)

func main() {
	_ = godotenv.Load()

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg := config.Load()

	if err := server.Run(cfg, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}
