package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/jwebster45206/dungeon-hunt/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(&config.Config{Environment: "production", LogLevel: slog.LevelInfo}, &buf)

	WithGameID(WithRequestID(log, "req-1"), "game-1").Info("Command applied", "command", "fight")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "Command applied", line["msg"])
	assert.Equal(t, "req-1", line["request_id"])
	assert.Equal(t, "game-1", line["gamestate_id"])
	assert.Equal(t, "fight", line["command"])
}

func TestNew_DevelopmentWritesText(t *testing.T) {
	var buf bytes.Buffer
	log := New(&config.Config{Environment: "development", LogLevel: slog.LevelWarn}, &buf)

	log.Info("hidden")
	log.Warn("shown", "key", "value")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.True(t, strings.Contains(out, "msg=shown") && strings.Contains(out, "key=value"), out)
}
