package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	DBSource     string
	Port         string
	Env          string
	LogLevel     string
	LogFile      string
	RedisAddr    string
	CacheTTL     time.Duration
	TxMaxRetries int
}

// Production reports whether logs should be machine-readable.
func (c *Config) Production() bool {
	return c.Env == "production"
}

func Load() (*Config, error) {
	dbSource := os.Getenv("DB_SOURCE")
	if dbSource == "" {
		return nil, fmt.Errorf("DB_SOURCE environment variable is required")
	}

	port := getEnv("SERVER_PORT", "8080")
	env := getEnv("ENVIRONMENT", "development")

	level := strings.ToLower(getEnv("LOG_LEVEL", "info"))
	switch level {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error; got %q", level)
	}

	ttl, err := time.ParseDuration(getEnv("CACHE_TTL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL: %w", err)
	}
	if ttl < 0 {
		return nil, fmt.Errorf("CACHE_TTL must not be negative")
	}

	retries, err := strconv.Atoi(getEnv("TX_MAX_RETRIES", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid TX_MAX_RETRIES: %w", err)
	}
	if retries < 0 {
		return nil, fmt.Errorf("TX_MAX_RETRIES must not be negative")
	}

	return &Config{
		DBSource:     dbSource,
		Port:         port,
		Env:          env,
		LogLevel:     level,
		LogFile:      os.Getenv("LOG_FILE"),
		RedisAddr:    os.Getenv("REDIS_ADDR"),
		CacheTTL:     ttl,
		TxMaxRetries: retries,
	}, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
