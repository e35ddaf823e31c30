package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/saturnino-fabrica-de-software/facecap/internal/api"
	"github.com/saturnino-fabrica-de-software/facecap/internal/audit"
	"github.com/saturnino-fabrica-de-software/facecap/internal/cache"
	"github.com/saturnino-fabrica-de-software/facecap/internal/config"
	"github.com/saturnino-fabrica-de-software/facecap/internal/database"
	"github.com/saturnino-fabrica-de-software/facecap/internal/face"
	"github.com/saturnino-fabrica-de-software/facecap/internal/ratelimit"
	"github.com/saturnino-fabrica-de-software/facecap/internal/usage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env in development; ignored when absent
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := config.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	logger.Info("starting face detection API",
		slog.String("environment", cfg.Environment),
		slog.String("provider", cfg.ProviderType),
		slog.Int("port", cfg.Port),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	analyzer, err := face.NewFaceAnalyzer(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create face analyzer: %w", err)
	}

	deps := &api.Dependencies{
		Analyzer:     analyzer,
		ProviderName: cfg.ProviderType,
		UsageTracker: usage.NoopTracker{},
		AuditLogger:  audit.NewSlogLogger(logger),
	}

	// Usage tracking needs a database; without one the service still
	// analyzes, it just keeps no counters.
	if cfg.DatabaseURL != "" {
		pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		tracker := usage.NewTracker(usage.NewRepository(pool), logger)
		deps.DB = pool
		deps.UsageTracker = tracker
		deps.UsageReader = tracker

		if cfg.CacheTTL > 0 {
			deps.ResultCache = cache.NewResultCache(pool, cfg.CacheTTL)
		}
		if cfg.RateLimitPerMinute > 0 {
			deps.RateLimiter = ratelimit.NewLimiter(pool, time.Minute)
			deps.RateLimit = cfg.RateLimitPerMinute
		}
		logger.Info("usage tracking enabled")
	} else {
		logger.Warn("DATABASE_URL not set, usage tracking disabled")
	}

	router := api.NewRouter(logger, deps)
	router.Setup()

	errChan := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info("server listening", slog.String("addr", addr))
		if err := router.Listen(addr); err != nil {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down server...")
	if err := router.Shutdown(); err != nil {
		logger.Error("shutdown error", slog.Any("error", err))
	}

	<-shutdownCtx.Done()
	logger.Info("server stopped")

	return nil
}
