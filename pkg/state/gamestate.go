package state

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/dungeon-hunt/pkg/content"
)

// Wallet holds the two facts the game consumes from the wallet collaborator.
type Wallet struct {
	Connected bool   `json:"connected"`
	Address   string `json:"address,omitempty"`
}

// GameState is the current state of one play session.
type GameState struct {
	ID        uuid.UUID `json:"id"`
	Character Character `json:"character"`
	Location  string    `json:"location"` // location key
	Wallet    Wallet    `json:"wallet"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewGameState creates a session at the content's start location with a new
// character of the given class. An empty class uses the default class.
func NewGameState(tables *content.Tables, name, classKey string) (*GameState, error) {
	if classKey == "" {
		classKey = tables.DefaultClass
	}
	class, ok := tables.Classes.Get(classKey)
	if !ok {
		return nil, fmt.Errorf("unknown character class: %s", classKey)
	}
	now := time.Now()
	return &GameState{
		ID:        uuid.New(),
		Character: NewCharacter(name, class, tables.StartingGold),
		Location:  tables.StartLocation,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Clone returns a deep copy of the game state.
func (gs *GameState) Clone() *GameState {
	if gs == nil {
		return nil
	}
	out := *gs
	out.Character = gs.Character.Clone()
	return &out
}

// ConnectWallet records a connected wallet address.
func (gs *GameState) ConnectWallet(address string) {
	gs.Wallet = Wallet{Connected: true, Address: address}
}

// DisconnectWallet clears the wallet facts.
func (gs *GameState) DisconnectWallet() {
	gs.Wallet = Wallet{}
}
