package engine

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/dungeon-hunt/pkg/state"
	"github.com/jwebster45206/dungeon-hunt/pkg/txsim"
)

// Entry is one rendered exchange in a session's history.
type Entry struct {
	Command   string    `json:"command"`
	Response  *Response `json:"response"`
	Timestamp time.Time `json:"timestamp"`
}

// Notifier receives transaction requests emitted by commands. Submit must
// not block; the session never waits on a transaction. *txsim.Dispatcher
// satisfies it.
type Notifier interface {
	Submit(gameID uuid.UUID, req txsim.Request)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(gameID uuid.UUID, req txsim.Request)

func (f NotifierFunc) Submit(gameID uuid.UUID, req txsim.Request) {
	f(gameID, req)
}

// Session is one player's game: current state, rendered history and the
// transaction notifier. It is not safe for concurrent use.
type Session struct {
	interp   *Interpreter
	state    *state.GameState
	history  []Entry
	notifier Notifier
	now      func() time.Time
}

// NewSession starts a session on gs with a welcome entry. notifier may be nil.
func NewSession(interp *Interpreter, gs *state.GameState, notifier Notifier) *Session {
	s := &Session{
		interp:   interp,
		state:    gs,
		notifier: notifier,
		now:      time.Now,
	}
	s.history = append(s.history, Entry{Command: "", Response: Welcome(), Timestamp: s.now()})
	return s
}

// State returns a copy of the current game state.
func (s *Session) State() *state.GameState {
	return s.state.Clone()
}

// History returns the rendered history, oldest first.
func (s *Session) History() []Entry {
	return slices.Clone(s.history)
}

// Submit runs one command, records it and forwards any transactions.
// clear empties the history and is not itself recorded.
func (s *Session) Submit(raw string) *Response {
	next, resp := s.interp.Apply(s.state, raw)
	s.state = next

	if resp.ClearHistory {
		s.history = nil
	} else {
		s.history = append(s.history, Entry{Command: raw, Response: resp, Timestamp: s.now()})
	}

	if s.notifier != nil {
		for _, tx := range resp.Transactions {
			s.notifier.Submit(s.state.ID, tx)
		}
	}
	return resp
}

// ConnectWallet records a wallet connection reported by the wallet collaborator.
func (s *Session) ConnectWallet(address string) {
	s.state.ConnectWallet(address)
}

// DisconnectWallet clears the wallet connection.
func (s *Session) DisconnectWallet() {
	s.state.DisconnectWallet()
}
