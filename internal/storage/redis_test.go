package storage

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jwebster45206/dungeon-hunt/pkg/content"
	"github.com/jwebster45206/dungeon-hunt/pkg/engine"
	"github.com/jwebster45206/dungeon-hunt/pkg/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisStorage(t *testing.T, ttl time.Duration) (*RedisStorage, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	rs := NewRedisStorage(mr.Addr(), ttl, logger)
	t.Cleanup(func() { _ = rs.Close() })
	return rs, mr
}

func newGame(t *testing.T) *state.GameState {
	t.Helper()
	gs, err := state.NewGameState(content.MustDefault(), "Tess", "rogue")
	require.NoError(t, err)
	return gs
}

func TestRedisStorage_Ping(t *testing.T) {
	rs, mr := newTestRedisStorage(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, rs.Ping(ctx))

	mr.Close()
	assert.Error(t, rs.Ping(ctx))
}

func TestRedisStorage_WaitForConnection(t *testing.T) {
	rs, _ := newTestRedisStorage(t, time.Hour)
	require.NoError(t, rs.WaitForConnection(context.Background(), 3, time.Millisecond))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	down := NewRedisStorage("127.0.0.1:1", time.Hour, logger)
	defer down.Close()
	err := down.WaitForConnection(context.Background(), 2, time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 attempts")
}

func TestRedisStorage_GameStateRoundTrip(t *testing.T) {
	rs, mr := newTestRedisStorage(t, time.Hour)
	ctx := context.Background()
	gs := newGame(t)
	gs.Character.Gold = 42
	gs.ConnectWallet("0x1234567890abcdef1234567890abcdef12345678")

	require.NoError(t, rs.SaveGameState(ctx, gs.ID, gs))
	assert.True(t, mr.Exists("gamestate:"+gs.ID.String()))
	assert.Equal(t, time.Hour, mr.TTL("gamestate:"+gs.ID.String()))

	loaded, err := rs.LoadGameState(ctx, gs.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, gs.ID, loaded.ID)
	assert.Equal(t, gs.Character, loaded.Character)
	assert.Equal(t, gs.Wallet, loaded.Wallet)
	assert.Equal(t, "tavern", loaded.Location)
}

func TestRedisStorage_LoadMissingReturnsNil(t *testing.T) {
	rs, _ := newTestRedisStorage(t, time.Hour)

	loaded, err := rs.LoadGameState(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestRedisStorage_GameStateExpires(t *testing.T) {
	rs, mr := newTestRedisStorage(t, time.Minute)
	ctx := context.Background()
	gs := newGame(t)

	require.NoError(t, rs.SaveGameState(ctx, gs.ID, gs))
	require.NoError(t, rs.AppendHistory(ctx, gs.ID, engine.Entry{Command: "help"}))
	mr.FastForward(2 * time.Minute)

	loaded, err := rs.LoadGameState(ctx, gs.ID)
	require.NoError(t, err)
	assert.Nil(t, loaded)

	history, err := rs.ListHistory(ctx, gs.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestRedisStorage_Delete(t *testing.T) {
	rs, mr := newTestRedisStorage(t, time.Hour)
	ctx := context.Background()
	gs := newGame(t)

	require.NoError(t, rs.SaveGameState(ctx, gs.ID, gs))
	require.NoError(t, rs.AppendHistory(ctx, gs.ID, engine.Entry{Command: "help"}))
	require.NoError(t, rs.DeleteGameState(ctx, gs.ID))

	assert.False(t, mr.Exists("gamestate:"+gs.ID.String()))
	assert.False(t, mr.Exists("history:"+gs.ID.String()))
}

func TestRedisStorage_History(t *testing.T) {
	rs, _ := newTestRedisStorage(t, time.Hour)
	ctx := context.Background()
	id := uuid.New()

	for _, cmd := range []string{"help", "explore", "fight"} {
		entry := engine.Entry{
			Command:   cmd,
			Response:  &engine.Response{Command: cmd, Tone: engine.ToneInfo, Title: cmd},
			Timestamp: time.Now(),
		}
		require.NoError(t, rs.AppendHistory(ctx, id, entry))
	}

	all, err := rs.ListHistory(ctx, id, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "help", all[0].Command)
	assert.Equal(t, "fight", all[2].Response.Title)

	recent, err := rs.ListHistory(ctx, id, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "explore", recent[0].Command)

	require.NoError(t, rs.ClearHistory(ctx, id))
	all, err = rs.ListHistory(ctx, id, 0)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestRedisStorage_HistoryIsCapped(t *testing.T) {
	rs, mr := newTestRedisStorage(t, time.Hour)
	ctx := context.Background()
	id := uuid.New()

	for i := 0; i < MaxHistory+5; i++ {
		require.NoError(t, rs.AppendHistory(ctx, id, engine.Entry{Command: "help"}))
	}

	items, err := mr.List("history:" + id.String())
	require.NoError(t, err)
	assert.Len(t, items, MaxHistory)
}
