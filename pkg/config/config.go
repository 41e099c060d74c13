package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv   string
	LogLevel string

	// Database
	DatabaseURL    string
	DatabaseDriver string
	SQLitePath     string
	LocalMode      bool

	// Redis (settings store). Empty means the in-memory store is used.
	RedisURL string

	// RabbitMQ (booking lifecycle events). Required for worker mode.
	RabbitMQURL   string
	ConsumerQueue string

	// Diagnostics
	// DiagnosticsDefault is used when the logging-enabled flag cannot be
	// read from the settings store.
	DiagnosticsDefault bool

	// Settings store
	SettingsTimeout time.Duration
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		SQLitePath:  getEnv("SQLITE_PATH", defaultSQLitePath()),

		RedisURL:      getEnv("REDIS_URL", ""),
		RabbitMQURL:   getEnv("RABBITMQ_URL", ""),
		ConsumerQueue: getEnv("CONSUMER_QUEUE", "availsync.bookings"),

		DiagnosticsDefault: getBoolEnv("AVAILSYNC_DIAGNOSTICS", false),
		SettingsTimeout:    getDurationEnv("SETTINGS_TIMEOUT", 2*time.Second),
	}

	// Local mode: no PostgreSQL configured, fall back to the SQLite file.
	if cfg.DatabaseURL == "" {
		cfg.LocalMode = true
		cfg.DatabaseDriver = "sqlite"
	} else {
		cfg.DatabaseDriver = "postgres"
	}

	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func defaultSQLitePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".availsync", "data.db")
	}
	return filepath.Join(home, ".availsync", "data.db")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
