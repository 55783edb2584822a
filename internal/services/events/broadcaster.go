package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jwebster45206/dungeon-hunt/pkg/state"
	"github.com/jwebster45206/dungeon-hunt/pkg/txsim"
	"github.com/redis/go-redis/v9"
)

// EventType represents the type of event being broadcast
type EventType string

const (
	EventTypeTxProgress       EventType = "tx.progress"
	EventTypeTxCompleted      EventType = "tx.completed"
	EventTypeGameStateUpdated EventType = "game.state_updated"
)

// Event represents a generic event structure
type Event struct {
	Type   EventType      `json:"type"`
	TxID   string         `json:"tx_id,omitempty"`
	GameID string         `json:"game_id,omitempty"`
	Data   map[string]any `json:"data,omitempty"`
}

// Channel is the pub/sub channel carrying a game's events.
func Channel(gameID uuid.UUID) string {
	return fmt.Sprintf("game-events:%s", gameID.String())
}

// Broadcaster publishes events to Redis Pub/Sub for SSE distribution
type Broadcaster struct {
	redisClient *redis.Client
	logger      *slog.Logger
}

// Broadcaster receives transaction progress from the dispatcher and workers.
var _ txsim.Reporter = (*Broadcaster)(nil)

// NewBroadcaster creates a new event broadcaster
func NewBroadcaster(redisClient *redis.Client, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		redisClient: redisClient,
		logger:      logger,
	}
}

// ReportTransaction publishes tx.progress for each stage update and
// tx.completed once the simulation finishes.
func (b *Broadcaster) ReportTransaction(ctx context.Context, gameID uuid.UUID, p txsim.Progress) error {
	if p.Done {
		return b.PublishTxCompleted(ctx, gameID, p)
	}
	return b.PublishTxProgress(ctx, gameID, p)
}

// PublishTxProgress publishes a tx.progress event
func (b *Broadcaster) PublishTxProgress(ctx context.Context, gameID uuid.UUID, p txsim.Progress) error {
	event := Event{
		Type:   EventTypeTxProgress,
		TxID:   p.TxID.String(),
		GameID: gameID.String(),
		Data: map[string]any{
			"kind":    p.Kind,
			"hash":    p.Hash,
			"stage":   p.Stage,
			"label":   p.Stage.Label(),
			"percent": p.Percent,
		},
	}
	return b.publishToGame(ctx, gameID, event)
}

// PublishTxCompleted publishes a tx.completed event
func (b *Broadcaster) PublishTxCompleted(ctx context.Context, gameID uuid.UUID, p txsim.Progress) error {
	event := Event{
		Type:   EventTypeTxCompleted,
		TxID:   p.TxID.String(),
		GameID: gameID.String(),
		Data: map[string]any{
			"kind":   p.Kind,
			"hash":   p.Hash,
			"status": "completed",
		},
	}
	return b.publishToGame(ctx, gameID, event)
}

// PublishGameStateUpdated publishes a game.state_updated event
func (b *Broadcaster) PublishGameStateUpdated(ctx context.Context, gs *state.GameState, command string) error {
	c := gs.Character
	event := Event{
		Type:   EventTypeGameStateUpdated,
		GameID: gs.ID.String(),
		Data: map[string]any{
			"command":  command,
			"location": gs.Location,
			"level":    c.Level,
			"hp":       c.HP,
			"max_hp":   c.MaxHP,
			"gold":     c.Gold,
		},
	}
	return b.publishToGame(ctx, gs.ID, event)
}

// publishToGame publishes an event to the game-specific channel
func (b *Broadcaster) publishToGame(ctx context.Context, gameID uuid.UUID, event Event) error {
	channel := Channel(gameID)

	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("Failed to marshal event", "error", err, "event", event)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.redisClient.Publish(ctx, channel, data).Err(); err != nil {
		b.logger.Error("Failed to publish event", "error", err, "channel", channel)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debug("Event published",
		"channel", channel,
		"event_type", event.Type,
		"tx_id", event.TxID,
	)

	return nil
}
