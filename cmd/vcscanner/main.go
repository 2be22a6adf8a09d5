package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"VCScanner/internal/app"
	"VCScanner/internal/config"
	"VCScanner/internal/logging"
)

func main() {
	cfg := config.Load()

	logger := logging.New(cfg.Logging.Level)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("startup failed", zap.Error(err))
		os.Exit(1)
	}

	if err := application.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("application stopped with error", zap.Error(err))
		os.Exit(1)
	}
}
