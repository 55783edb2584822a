package storage

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/dungeon-hunt/pkg/engine"
	"github.com/jwebster45206/dungeon-hunt/pkg/state"
)

// MockStorage is a mock implementation of Storage for testing
type MockStorage struct {
	mu         sync.RWMutex
	gamestates map[uuid.UUID]*state.GameState
	history    map[uuid.UUID][]engine.Entry
	pingError  error
	saveError  error
}

// Ensure MockStorage implements Storage interface
var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates a new mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		gamestates: make(map[uuid.UUID]*state.GameState),
		history:    make(map[uuid.UUID][]engine.Entry),
	}
}

// SetPingSuccess configures the mock to succeed on ping
func (m *MockStorage) SetPingSuccess() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = nil
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

// SetSaveError configures the mock to fail every save with the given error
func (m *MockStorage) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveError = err
}

// Ping mocks storage ping
func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

// Close mocks storage close
func (m *MockStorage) Close() error {
	return nil
}

// SaveGameState stores a copy, as Redis would.
func (m *MockStorage) SaveGameState(ctx context.Context, id uuid.UUID, gamestate *state.GameState) error {
	if gamestate == nil {
		return errors.New("gamestate cannot be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveError != nil {
		return m.saveError
	}
	gamestate.UpdatedAt = time.Now()
	m.gamestates[id] = gamestate.Clone()
	return nil
}

// LoadGameState mocks loading a gamestate
func (m *MockStorage) LoadGameState(ctx context.Context, id uuid.UUID) (*state.GameState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	gamestate, exists := m.gamestates[id]
	if !exists {
		return nil, nil // Return nil for not found
	}
	return gamestate.Clone(), nil
}

// DeleteGameState mocks deleting a gamestate and its history
func (m *MockStorage) DeleteGameState(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.gamestates, id)
	delete(m.history, id)
	return nil
}

// AppendHistory mocks appending a history entry
func (m *MockStorage) AppendHistory(ctx context.Context, id uuid.UUID, entry engine.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	h := append(m.history[id], entry)
	if len(h) > MaxHistory {
		h = h[len(h)-MaxHistory:]
	}
	m.history[id] = h
	return nil
}

// ListHistory mocks listing history entries
func (m *MockStorage) ListHistory(ctx context.Context, id uuid.UUID, limit int) ([]engine.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h := m.history[id]
	if limit > 0 && len(h) > limit {
		h = h[len(h)-limit:]
	}
	out := slices.Clone(h)
	if out == nil {
		out = []engine.Entry{}
	}
	return out, nil
}

// ClearHistory mocks clearing history
func (m *MockStorage) ClearHistory(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.history, id)
	return nil
}
