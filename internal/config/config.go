package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends accepted by STORE_BACKEND.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

type Config struct {
	Addr                  string
	StoreBackend          string
	DBPath                string
	DatabaseURL           string
	RedisAddr             string
	RedisDB               int
	RedisPrefix           string
	LogLevel              string
	DigestIntervalMinutes int
	DigestWorkerCount     int
	DigestQueueSize       int
	StoreTimeoutSeconds   int
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:                  envOr("ADDR", ":8080"),
		StoreBackend:          strings.ToLower(envOr("STORE_BACKEND", BackendSQLite)),
		DBPath:                envOr("DB_PATH", "file:flashrecall.db"),
		DatabaseURL:           envOr("DATABASE_URL", ""),
		RedisAddr:             envOr("REDIS_ADDR", "localhost:6379"),
		RedisDB:               envIntOr("REDIS_DB", 0),
		RedisPrefix:           envOr("REDIS_PREFIX", "flashrecall"),
		LogLevel:              envOr("LOG_LEVEL", "INFO"),
		DigestIntervalMinutes: envIntOr("DIGEST_INTERVAL_MINUTES", 60),
		DigestWorkerCount:     envIntOr("DIGEST_WORKER_COUNT", 2),
		DigestQueueSize:       envIntOr("DIGEST_QUEUE_SIZE", 64),
		StoreTimeoutSeconds:   envIntOr("STORE_TIMEOUT_SECONDS", 5),
	}
}

// Validate checks every field and reports all problems at once.
func (c Config) Validate() error {
	var errs []string
	if c.Addr == "" {
		errs = append(errs, "ADDR cannot be empty")
	}
	switch c.StoreBackend {
	case BackendMemory:
	case BackendSQLite:
		if c.DBPath == "" {
			errs = append(errs, "DB_PATH cannot be empty when STORE_BACKEND=sqlite")
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, "DATABASE_URL cannot be empty when STORE_BACKEND=postgres")
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			errs = append(errs, "REDIS_ADDR cannot be empty when STORE_BACKEND=redis")
		}
		if c.RedisDB < 0 {
			errs = append(errs, fmt.Sprintf("REDIS_DB must be >= 0, got %d", c.RedisDB))
		}
	default:
		errs = append(errs, fmt.Sprintf("STORE_BACKEND must be one of memory, sqlite, postgres, redis, got %q", c.StoreBackend))
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		errs = append(errs, fmt.Sprintf("LOG_LEVEL must be DEBUG, INFO, WARN or ERROR, got %q", c.LogLevel))
	}
	if c.DigestIntervalMinutes < 0 {
		errs = append(errs, fmt.Sprintf("DIGEST_INTERVAL_MINUTES must be >= 0, got %d", c.DigestIntervalMinutes))
	}
	if c.DigestWorkerCount < 1 {
		errs = append(errs, fmt.Sprintf("DIGEST_WORKER_COUNT must be >= 1, got %d", c.DigestWorkerCount))
	}
	if c.DigestQueueSize < 1 {
		errs = append(errs, fmt.Sprintf("DIGEST_QUEUE_SIZE must be >= 1, got %d", c.DigestQueueSize))
	}
	if c.StoreTimeoutSeconds < 1 {
		errs = append(errs, fmt.Sprintf("STORE_TIMEOUT_SECONDS must be >= 1, got %d", c.StoreTimeoutSeconds))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	return nil
}

// StoreTimeout is the per-operation deadline applied to progress store calls.
func (c Config) StoreTimeout() time.Duration {
	return time.Duration(c.StoreTimeoutSeconds) * time.Second
}

// DigestInterval is zero when the digest sweep is disabled.
func (c Config) DigestInterval() time.Duration {
	return time.Duration(c.DigestIntervalMinutes) * time.Minute
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}
