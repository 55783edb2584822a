package storage

import (
	"context"

	"github.com/google/uuid"
	"github.com/jwebster45206/dungeon-hunt/pkg/engine"
	"github.com/jwebster45206/dungeon-hunt/pkg/state"
)

// Storage defines the session storage used by the API.
// Game states and their history expire together after the session TTL.
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// GameState operations. LoadGameState returns (nil, nil) when the game
	// state does not exist or has expired.
	SaveGameState(ctx context.Context, id uuid.UUID, gs *state.GameState) error
	LoadGameState(ctx context.Context, id uuid.UUID) (*state.GameState, error)
	DeleteGameState(ctx context.Context, id uuid.UUID) error

	// History operations. Entries are returned oldest first; limit <= 0
	// returns everything kept.
	AppendHistory(ctx context.Context, id uuid.UUID, entry engine.Entry) error
	ListHistory(ctx context.Context, id uuid.UUID, limit int) ([]engine.Entry, error)
	ClearHistory(ctx context.Context, id uuid.UUID) error
}

// MaxHistory is the number of history entries kept per game.
const MaxHistory = 500
