package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jwebster45206/dungeon-hunt/pkg/engine"
	"github.com/redis/go-redis/v9"
)

func historyKey(id uuid.UUID) string {
	return fmt.Sprintf("history:%s", id.String())
}

// AppendHistory adds an entry to the end of a game's history, dropping the
// oldest entries beyond MaxHistory.
func (r *RedisStorage) AppendHistory(ctx context.Context, id uuid.UUID, entry engine.Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal history entry: %w", err)
	}

	key := historyKey(id)
	pipe := r.client.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.LTrim(ctx, key, -MaxHistory, -1)
	pipe.Expire(ctx, key, r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error("Failed to append history", "uuid", id, "error", err)
		return fmt.Errorf("failed to append history: %w", err)
	}
	return nil
}

// ListHistory returns the most recent limit entries, oldest first.
func (r *RedisStorage) ListHistory(ctx context.Context, id uuid.UUID, limit int) ([]engine.Entry, error) {
	start := int64(0)
	if limit > 0 {
		start = int64(-limit)
	}

	raw, err := r.client.LRange(ctx, historyKey(id), start, -1).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}

	entries := make([]engine.Entry, 0, len(raw))
	for _, item := range raw {
		var entry engine.Entry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			r.logger.Warn("Skipping unreadable history entry", "uuid", id, "error", err)
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// ClearHistory removes all history entries for a game.
func (r *RedisStorage) ClearHistory(ctx context.Context, id uuid.UUID) error {
	if err := r.client.Del(ctx, historyKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}
