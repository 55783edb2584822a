package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level
	LogFile     string // console only; empty discards logs

	RedisURL    string
	ContentPath string        // empty uses the embedded content
	SessionTTL  time.Duration // how long an idle game state is kept
	TxSpeed     float64       // multiplier on transaction stage durations; 0 is instant
	TxQueue     bool          // API enqueues transactions for cmd/worker instead of simulating them
}

// Load reads configuration from the environment. Values in a .env file in
// the working directory (or the given files) are loaded first and never
// override variables that are already set.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	ttl, err := time.ParseDuration(getEnv("SESSION_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("invalid SESSION_TTL: must be positive")
	}

	speed, err := strconv.ParseFloat(getEnv("TX_SPEED", "1"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid TX_SPEED: %w", err)
	}
	if speed < 0 {
		return nil, fmt.Errorf("invalid TX_SPEED: must not be negative")
	}

	txQueue, err := strconv.ParseBool(getEnv("TX_QUEUE", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid TX_QUEUE: %w", err)
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    parseLogLevel(getEnv("LOG_LEVEL", "info")),
		LogFile:     os.Getenv("LOG_FILE"),
		RedisURL:    getEnv("REDIS_URL", "localhost:6379"),
		ContentPath: os.Getenv("CONTENT_PATH"),
		SessionTTL:  ttl,
		TxSpeed:     speed,
		TxQueue:     txQueue,
	}, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
