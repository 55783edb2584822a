package events

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jwebster45206/dungeon-hunt/pkg/content"
	"github.com/jwebster45206/dungeon-hunt/pkg/state"
	"github.com/jwebster45206/dungeon-hunt/pkg/txsim"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*Broadcaster, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewBroadcaster(client, logger), client
}

// subscribe returns a function that waits for the next event on a game's channel.
func subscribe(t *testing.T, client *redis.Client, gameID uuid.UUID) func() Event {
	t.Helper()
	ctx := context.Background()
	sub := client.Subscribe(ctx, Channel(gameID))
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)
	ch := sub.Channel()

	return func() Event {
		t.Helper()
		select {
		case msg := <-ch:
			var event Event
			require.NoError(t, json.Unmarshal([]byte(msg.Payload), &event))
			return event
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for event")
			return Event{}
		}
	}
}

func TestBroadcaster_ReportTransaction(t *testing.T) {
	b, client := setup(t)
	gameID := uuid.New()
	next := subscribe(t, client, gameID)
	ctx := context.Background()

	progress := txsim.Progress{
		TxID:    uuid.New(),
		Kind:    txsim.KindTrade,
		Hash:    "0xabc",
		Stage:   txsim.StageConfirming,
		Percent: 40,
	}
	require.NoError(t, b.ReportTransaction(ctx, gameID, progress))

	event := next()
	assert.Equal(t, EventTypeTxProgress, event.Type)
	assert.Equal(t, progress.TxID.String(), event.TxID)
	assert.Equal(t, gameID.String(), event.GameID)
	assert.Equal(t, "confirming", event.Data["stage"])
	assert.Equal(t, "Confirming on Blockchain", event.Data["label"])
	assert.EqualValues(t, 40, event.Data["percent"])

	progress.Done = true
	require.NoError(t, b.ReportTransaction(ctx, gameID, progress))

	event = next()
	assert.Equal(t, EventTypeTxCompleted, event.Type)
	assert.Equal(t, "0xabc", event.Data["hash"])
	assert.Equal(t, "completed", event.Data["status"])
}

func TestBroadcaster_PublishGameStateUpdated(t *testing.T) {
	b, client := setup(t)
	gs, err := state.NewGameState(content.MustDefault(), "", "mage")
	require.NoError(t, err)
	next := subscribe(t, client, gs.ID)

	require.NoError(t, b.PublishGameStateUpdated(context.Background(), gs, "explore"))

	event := next()
	assert.Equal(t, EventTypeGameStateUpdated, event.Type)
	assert.Equal(t, "explore", event.Data["command"])
	assert.Equal(t, "tavern", event.Data["location"])
	assert.EqualValues(t, 15, event.Data["max_hp"])
}

func TestBroadcaster_PublishFailsWhenRedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	b := NewBroadcaster(client, slog.New(slog.NewTextHandler(io.Discard, nil)))
	mr.Close()

	err := b.PublishTxProgress(context.Background(), uuid.New(), txsim.Progress{})
	assert.Error(t, err)
}
