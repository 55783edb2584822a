package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"PORT", "ENVIRONMENT", "LOG_LEVEL", "LOG_FILE", "REDIS_URL", "CONTENT_PATH", "SESSION_TTL", "TX_SPEED", "TX_QUEUE"} {
		t.Setenv(key, "")
	}
	t.Chdir(t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "localhost:6379", cfg.RedisURL)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 1.0, cfg.TxSpeed)
	assert.Empty(t, cfg.ContentPath)
	assert.Empty(t, cfg.LogFile)
	assert.False(t, cfg.TxQueue)
}

func TestLoad_FromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("TX_SPEED", "0")
	t.Setenv("TX_QUEUE", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Zero(t, cfg.TxSpeed)
	assert.True(t, cfg.TxQueue)
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("ENVIRONMENT")
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("ENVIRONMENT=production\nREDIS_URL=redis:6379\n"), 0o644))
	t.Setenv("REDIS_URL", "already-set:6379")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "already-set:6379", cfg.RedisURL, "existing variables win over the file")
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad ttl", "SESSION_TTL", "forever"},
		{"zero ttl", "SESSION_TTL", "0s"},
		{"bad speed", "TX_SPEED", "fast"},
		{"negative speed", "TX_SPEED", "-1"},
		{"bad queue flag", "TX_QUEUE", "sometimes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":    slog.LevelDebug,
		"warning":  slog.LevelWarn,
		"error":    slog.LevelError,
		"nonsense": slog.LevelInfo,
	}
	for input, expected := range tests {
		assert.Equal(t, expected, parseLogLevel(input), input)
	}
}
