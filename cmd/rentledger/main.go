package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"rentledger/internal/amqp"
	"rentledger/internal/backend"
	"rentledger/internal/config"
	apphttp "rentledger/internal/http"
	"rentledger/internal/identity"
	"rentledger/internal/log"
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
		Level:     logLevel(cfg.LogLevel),
		Format:    log.Format(cfg.LogFormat),
		Component: log.ComponentApp,
	})
	log.SetDefault(logger)

	logger.Info("Starting rentledger", "backend", cfg.DataBackend, "port", cfg.Port)

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

	var session *identity.Session
	if cfg.IdentityAPIKey != "" {
		provider, err := identity.NewFirebaseProvider(cfg.IdentityAPIKey,
			identity.WithStoredRefreshToken(cfg.IdentityRefreshToken))
		if err != nil {
			logger.Error("Failed to initialize identity provider", "error", err)
			os.Exit(1)
		}
		session = identity.NewSession(provider, result.Stores)
	} else {
		logger.Warn("IDENTITY_API_KEY not set, authenticated routes are disabled")
	}

	// AMQP is optional; without it synchronous seeding still works.
	var publisher apphttp.Publisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without import queue", "error", err)
		} else {
			defer amqpClient.Close()
			publisher = amqpClient
			logger.Info("Initialized AMQP client",
				"exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	srv := apphttp.NewServer(apphttp.Options{
		Addr:          ":" + cfg.Port,
		Stores:        result.Stores,
		Session:       session,
		Publisher:     publisher,
		Logger:        logger,
		MonthlyIncome: cfg.MonthlyIncome,
	})
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		logger.Info("Shutting down server")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

func logLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
