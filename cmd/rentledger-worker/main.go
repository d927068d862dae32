package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"rentledger/internal/amqp"
	"rentledger/internal/backend"
	"rentledger/internal/config"
	"rentledger/internal/log"
	"rentledger/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	logger := log.New(log.Config{
		Level:     slog.LevelInfo,
		Format:    log.Format(cfg.LogFormat),
		Component: log.ComponentWorker,
	})
	log.SetDefault(logger)

	logger.Info("Starting rentledger-worker", "backend", cfg.DataBackend)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := backend.NewFactory(logger).Create(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer func() {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", "error", err)
			}
		}()
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	importWorker := worker.NewImportWorker(result.Stores, cfg.ImportBatchSize)

	// Make sure the default categories exist before any imports land.
	if err := importWorker.EnsureDefaultTypes(ctx); err != nil {
		logger.Error("Failed to seed default expense types", "error", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := amqpClient.ConsumeImports(gctx, func(msg *amqp.ImportMessage) error {
			handleCtx, cancel := context.WithTimeout(gctx, cfg.ImportInterval)
			defer cancel()
			return importWorker.HandleImportMessage(handleCtx, msg)
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	// Periodic safety net so default types recover even if someone
	// wipes the collection while the worker is running.
	g.Go(func() error {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if err := importWorker.EnsureDefaultTypes(gctx); err != nil {
					logger.Error("Periodic type seeding failed", "error", err)
				}
			}
		}
	})

	if err := g.Wait(); err != nil {
		logger.Error("Worker error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
