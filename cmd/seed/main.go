// Command seed loads a small demo dataset into the configured primary
// store and rebuilds the derived cache artifacts, so a fresh checkout
// has something to show on the dashboard.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/vinsight/crm/internal/cache"
	"github.com/vinsight/crm/internal/config"
	"github.com/vinsight/crm/internal/store"
)

func main() {
	adminPassword := flag.String("admin-password", "changeme", "password for the seeded admin account")
	flag.Parse()

	cfg := config.Load()
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		With().
		Timestamp().
		Logger()

	ctx := context.Background()

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
	default:
		logger.Fatal().Msg("seeding requires a primary store backend (postgres or sqlite)")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*adminPassword), bcrypt.DefaultCost)
	if err != nil {
		logger.Fatal().Err(err).Msg("password hash failed")
	}

	if err := store.Seed(ctx, primary, string(hash)); err != nil {
		logger.Fatal().Err(err).Msg("seeding failed")
	}
	logger.Info().Msg("primary store seeded")

	fileCache, err := cache.NewFileStore(cfg.CacheDir, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("dir", cfg.CacheDir).Msg("cache store init failed")
	}

	customers, err := primary.ListCustomers(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("reading seeded customers failed")
	}
	for i := range customers {
		c := &customers[i]
		if err := cache.WriteCustomer(fileCache, c.CustomerID, c, cache.SourcePrimary); err != nil {
			logger.Fatal().Err(err).Str("customer_id", c.CustomerID).Msg("cache write failed")
		}
	}

	orders, err := primary.ListOrders(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("reading seeded orders failed")
	}

	if _, err := cache.RebuildIndex(fileCache, customers); err != nil {
		logger.Fatal().Err(err).Msg("index rebuild failed")
	}
	if _, err := cache.RebuildSummary(fileCache, customers, orders); err != nil {
		logger.Fatal().Err(err).Msg("summary rebuild failed")
	}

	logger.Info().
		Int("customers", len(customers)).
		Str("cache_dir", cfg.CacheDir).
		Msg("cache seeded and derived artifacts rebuilt")
}
