package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Backend selects which primary store the data adapter is allowed to use.
// It is a process-lifetime setting, not a per-call choice.
type Backend string

const (
	BackendPostgres  Backend = "postgres"
	BackendSQLite    Backend = "sqlite"
	BackendCacheOnly Backend = "cache" // skip the primary store entirely
)

// Config holds all configuration for the application.
type Config struct {
	Port    string
	Env     string
	Backend Backend

	DatabaseURL string
	SQLitePath  string
	RedisURL    string
	CacheDir    string

	// CacheMaxAge bounds how old a cache entry may be before the
	// dashboard marks it stale.
	CacheMaxAge time.Duration

	// PageAccessToken authorizes the inbound message source.
	PageAccessToken string
}

// Load reads configuration from environment variables.
// In development, it loads from .env file if present.
// In production, it panics on missing required variables.
func Load() *Config {
	// Load .env file if it exists (for development)
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		Env:             getEnv("ENV", "development"),
		Backend:         Backend(getEnv("DB_BACKEND", string(BackendSQLite))),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		SQLitePath:      getEnv("SQLITE_PATH", "./data/crm.db"),
		RedisURL:        os.Getenv("REDIS_URL"),
		CacheDir:        getEnv("CACHE_DIR", "./cache"),
		CacheMaxAge:     time.Duration(getEnvInt("CACHE_MAX_AGE_MINUTES", 60)) * time.Minute,
		PageAccessToken: os.Getenv("FB_PAGE_ACCESS_TOKEN"),
	}

	switch cfg.Backend {
	case BackendPostgres, BackendSQLite, BackendCacheOnly:
	default:
		panic("DB_BACKEND must be one of: postgres, sqlite, cache")
	}

	// In production, require the real primary store and the queue broker
	if cfg.Env == "production" {
		if cfg.Backend == BackendPostgres && cfg.DatabaseURL == "" {
			panic("DATABASE_URL is required in production")
		}
		if cfg.RedisURL == "" {
			panic("REDIS_URL is required in production")
		}
	}

	return cfg
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
