package logger

import (
	"io"
	"log/slog"
	"os"

	"github.com/jwebster45206/dungeon-hunt/internal/config"
)

// Setup configures the global slog logger based on environment
func Setup(cfg *config.Config) *slog.Logger {
	logger := New(cfg, os.Stdout)

	// Set as default logger
	slog.SetDefault(logger)

	return logger
}

// New builds a logger writing to w: JSON in production, text otherwise.
// The console uses it to keep logs off the terminal it draws on.
func New(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.Environment == "production" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// WithRequestID adds request ID to logger context
func WithRequestID(logger *slog.Logger, requestID string) *slog.Logger {
	return logger.With("request_id", requestID)
}

// WithGameID adds a game state ID to logger context
func WithGameID(logger *slog.Logger, gameID string) *slog.Logger {
	return logger.With("gamestate_id", gameID)
}
