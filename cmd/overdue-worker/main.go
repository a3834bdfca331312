package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"contas/internal/amqp"
	"contas/internal/config"
	applog "contas/internal/log"
	"contas/internal/services"
	"contas/internal/storage"
)

func main() {
	_ = godotenv.Load()

	logger := applog.New(applog.Config{Level: slog.LevelInfo, Component: applog.ComponentOverdue})
	applog.SetDefault(logger)

	logger.Info("Starting overdue-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", applog.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, sweeping without event publication", applog.FieldError, err)
		} else {
			defer amqpClient.Close()
		}
	}

	processor := services.NewOverdueProcessor(repo, amqpClient)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Sweep once at startup, then on the configured interval.
	runSweep(ctx, processor, logger)

	ticker := time.NewTicker(cfg.OverdueSweepInterval)
	defer ticker.Stop()

	logger.Info("Overdue sweep scheduled", "interval", cfg.OverdueSweepInterval)
	for {
		select {
		case <-ticker.C:
			runSweep(ctx, processor, logger)
		case <-ctx.Done():
			logger.Info("Overdue worker stopped gracefully")
			return
		}
	}
}

func runSweep(ctx context.Context, processor *services.OverdueProcessor, logger *applog.Logger) {
	processed, err := processor.ProcessOverdue(ctx, time.Now())
	if err != nil {
		logger.Error("Overdue sweep failed", applog.FieldError, err)
		return
	}
	logger.Info("Overdue sweep finished", "processed", processed)
}
