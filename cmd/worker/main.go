package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/vinsight/crm/internal/cache"
	"github.com/vinsight/crm/internal/config"
	"github.com/vinsight/crm/internal/store"
	"github.com/vinsight/crm/internal/syncq"
)

func main() {
	cfg := config.Load()

	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Logger()
	} else {
		logger = zerolog.New(os.Stdout).
			With().
			Timestamp().
			Logger()
	}

	if cfg.RedisURL == "" {
		logger.Fatal().Msg("REDIS_URL is required for the sync worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fileCache, err := cache.NewFileStore(cfg.CacheDir, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("dir", cfg.CacheDir).Msg("cache store init failed")
	}

	// The primary store is optional here; only the marketing rebuild
	// needs it.
	var primary store.Primary
	switch cfg.Backend {
	case config.BackendPostgres:
		pg, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres connection failed")
		}
		defer pg.Close()
		primary = pg
	case config.BackendSQLite:
		sq, err := store.NewSQLiteStore(ctx, cfg.SQLitePath)
		if err != nil {
			logger.Fatal().Err(err).Msg("sqlite open failed")
		}
		defer sq.Close()
		primary = sq
	case config.BackendCacheOnly:
		logger.Warn().Msg("no primary store, marketing rebuilds will be skipped")
	}

	queue, err := syncq.NewRedisQueue(ctx, cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connection failed")
	}
	defer queue.Close()

	handler := syncq.NewHandler(fileCache, primary, logger)
	worker := syncq.NewWorker(queue, handler, logger)

	logger.Info().
		Int("concurrency", syncq.Concurrency).
		Str("cache_dir", cfg.CacheDir).
		Msg("starting cache sync worker")

	worker.Run(ctx)

	logger.Info().Msg("worker stopped")
}
