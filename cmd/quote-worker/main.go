package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/trogers1052/carteira-dashboard/internal/app"
	"github.com/trogers1052/carteira-dashboard/internal/config"
	"github.com/trogers1052/carteira-dashboard/internal/dashboard"
	"github.com/trogers1052/carteira-dashboard/internal/logging"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.Must(zap.NewProduction()).Fatal("failed to load config", zap.Error(err))
	}
	logger := logging.Must(cfg.Log.Level, cfg.Log.Format)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open backends", zap.Error(err))
	}
	defer a.Close()

	logger.Info("quote worker started", zap.Duration("interval", cfg.Worker.RefreshInterval))
	scheduler := dashboard.NewScheduler(cfg.Worker.RefreshInterval, a.Service.Refresh, logger)
	if err := scheduler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped", zap.Error(err))
	}
	logger.Info("quote worker stopped")
}
