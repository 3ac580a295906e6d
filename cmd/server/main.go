package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/vinsight/crm/internal/adapter"
	"github.com/vinsight/crm/internal/api"
	"github.com/vinsight/crm/internal/cache"
	"github.com/vinsight/crm/internal/config"
	"github.com/vinsight/crm/internal/handlers"
	"github.com/vinsight/crm/internal/source"
	"github.com/vinsight/crm/internal/store"
	"github.com/vinsight/crm/internal/syncq"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
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

	ctx := context.Background()

	// File cache store (always on; it is the fallback for everything)
	fileCache, err := cache.NewFileStore(cfg.CacheDir, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("dir", cfg.CacheDir).Msg("cache store init failed")
	}

	// Primary store, unless running cache-only
	var primary store.Primary
	mode := adapter.ModePrimary
	switch cfg.Backend {
	case config.BackendPostgres:
		pg, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres connection failed")
		}
		defer pg.Close()
		primary = pg
		logger.Info().Msg("connected to PostgreSQL")
	case config.BackendSQLite:
		sq, err := store.NewSQLiteStore(ctx, cfg.SQLitePath)
		if err != nil {
			logger.Fatal().Err(err).Msg("sqlite open failed")
		}
		defer sq.Close()
		primary = sq
		logger.Info().Str("path", cfg.SQLitePath).Msg("opened SQLite database")
	case config.BackendCacheOnly:
		mode = adapter.ModeCacheOnly
		logger.Warn().Msg("running in cache-only mode, primary store disabled")
	}

	// Sync queue broker. Without it the emitter degrades to direct
	// synchronous cache writes.
	var queue syncq.Pusher
	if cfg.RedisURL != "" {
		rq, err := syncq.NewRedisQueue(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis connection failed")
		}
		defer rq.Close()
		queue = rq
		logger.Info().Msg("connected to Redis")
	} else {
		logger.Warn().Msg("REDIS_URL not set, cache sync runs inline")
	}

	emitter := syncq.NewEmitter(queue, fileCache, logger)
	data := adapter.New(mode, primary, fileCache, emitter, logger)
	src := source.NewGraphClient(cfg.PageAccessToken)

	h := handlers.NewHandler(data, emitter, src, cfg.CacheMaxAge, logger)
	router := api.NewRouter(logger, h)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Str("backend", string(cfg.Backend)).
			Msg("starting CRM server")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server...")

	// Graceful shutdown with 30 second timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server stopped")
}
