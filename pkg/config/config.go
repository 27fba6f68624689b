// Package config loads application configuration from the environment,
// with an optional .env file for local development.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv   string
	LogLevel string
	UserID   string

	// Persistence: "sqlite" (local, default) or "postgres" (server).
	DatabaseDriver string
	SQLitePath     string
	DatabaseURL    string

	// Redis preview store. Empty means in-memory sessions.
	RedisURL   string
	PreviewTTL time.Duration

	// RabbitMQ event publishing. Empty means in-process bus.
	RabbitMQURL string

	// Engine
	SlotDuration       time.Duration
	MinChunk           time.Duration
	AutoSplitThreshold time.Duration
	MissedGrace        time.Duration

	// HTTP API
	APIAddr string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:   getEnv("TEMPORA_ENV", "development"),
		LogLevel: getEnv("TEMPORA_LOG_LEVEL", "info"),
		UserID:   getEnv("TEMPORA_USER_ID", "00000000-0000-0000-0000-000000000001"),

		DatabaseDriver: getEnv("TEMPORA_DB_DRIVER", "sqlite"),
		SQLitePath:     getEnv("TEMPORA_SQLITE_PATH", defaultSQLitePath()),
		DatabaseURL:    getEnv("DATABASE_URL", ""),

		RedisURL:   getEnv("REDIS_URL", ""),
		PreviewTTL: getDurationEnv("TEMPORA_PREVIEW_TTL", 30*time.Minute),

		RabbitMQURL: getEnv("RABBITMQ_URL", ""),

		SlotDuration:       getDurationEnv("TEMPORA_SLOT_DURATION", 30*time.Minute),
		MinChunk:           getDurationEnv("TEMPORA_MIN_CHUNK", 30*time.Minute),
		AutoSplitThreshold: getDurationEnv("TEMPORA_SPLIT_THRESHOLD", 4*time.Hour),
		MissedGrace:        getDurationEnv("TEMPORA_MISSED_GRACE", 30*time.Minute),

		APIAddr: getEnv("TEMPORA_API_ADDR", "0.0.0.0:8080"),
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

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
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

func defaultSQLitePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "tempora.db"
	}
	return home + "/.tempora/tempora.db"
}
