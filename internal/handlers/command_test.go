package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jwebster45206/dungeon-hunt/internal/storage"
	"github.com/jwebster45206/dungeon-hunt/pkg/content"
	"github.com/jwebster45206/dungeon-hunt/pkg/dice"
	"github.com/jwebster45206/dungeon-hunt/pkg/engine"
	"github.com/jwebster45206/dungeon-hunt/pkg/state"
	"github.com/jwebster45206/dungeon-hunt/pkg/txsim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu  sync.Mutex
	txs []txsim.Request
	ids []uuid.UUID
}

func (n *recordingNotifier) Submit(gameID uuid.UUID, req txsim.Request) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.ids = append(n.ids, gameID)
	n.txs = append(n.txs, req)
}

type recordingPublisher struct {
	commands []string
}

func (p *recordingPublisher) PublishGameStateUpdated(ctx context.Context, gs *state.GameState, command string) error {
	p.commands = append(p.commands, command)
	return nil
}

type commandFixture struct {
	handler   *CommandHandler
	storage   *storage.MockStorage
	notifier  *recordingNotifier
	publisher *recordingPublisher
	game      *state.GameState
}

func newCommandFixture(t *testing.T, draws ...int) *commandFixture {
	t.Helper()
	tables := content.MustDefault()
	mockStorage := storage.NewMockStorage()
	gs, err := state.NewGameState(tables, "", "")
	require.NoError(t, err)
	require.NoError(t, mockStorage.SaveGameState(context.Background(), gs.ID, gs))

	f := &commandFixture{
		storage:   mockStorage,
		notifier:  &recordingNotifier{},
		publisher: &recordingPublisher{},
		game:      gs,
	}
	interp := engine.NewInterpreter(tables, dice.NewSequence(draws...))
	f.handler = NewCommandHandler(interp, mockStorage, f.notifier, f.publisher, testLogger())
	return f
}

func (f *commandFixture) post(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/command", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	return rr
}

func (f *commandFixture) command(t *testing.T, cmd string) CommandResponse {
	t.Helper()
	rr := f.post(t, fmt.Sprintf(`{"gamestate_id":%q,"command":%q}`, f.game.ID, cmd))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var response CommandResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&response))
	return response
}

func TestCommandHandler_AppliesAndSaves(t *testing.T) {
	f := newCommandFixture(t, 0)

	response := f.command(t, "shop")

	assert.Equal(t, "shop", response.Command)
	assert.Equal(t, "You purchase Health Potion for 50 gold!", response.Response.Title)
	assert.Equal(t, 50, response.GameState.Character.Gold)

	stored, err := f.storage.LoadGameState(context.Background(), f.game.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, stored.Character.Gold)

	history, err := f.storage.ListHistory(context.Background(), f.game.ID, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "shop", history[0].Command)

	assert.Equal(t, []string{"shop"}, f.publisher.commands)
}

func TestCommandHandler_GameFailuresAreOK(t *testing.T) {
	f := newCommandFixture(t)

	response := f.command(t, "dance")

	assert.Equal(t, engine.ToneFailure, response.Response.Tone)
	assert.Equal(t, "Unknown command: dance", response.Response.Title)
	assert.Equal(t, 100, response.GameState.Character.Gold)
	assert.Empty(t, f.publisher.commands, "failed commands change nothing worth announcing")

	history, _ := f.storage.ListHistory(context.Background(), f.game.ID, 0)
	assert.Len(t, history, 1)
}

func TestCommandHandler_ClearEmptiesHistory(t *testing.T) {
	f := newCommandFixture(t)
	f.command(t, "help")
	f.command(t, "character")

	response := f.command(t, "clear")

	assert.True(t, response.Response.ClearHistory)
	history, _ := f.storage.ListHistory(context.Background(), f.game.ID, 0)
	assert.Empty(t, history)
}

func TestCommandHandler_ForwardsTransactions(t *testing.T) {
	f := newCommandFixture(t, 0, 0, 0)
	f.game.Location = "dark_forest"
	f.game.ConnectWallet("0x1234567890abcdef1234567890abcdef12345678")
	require.NoError(t, f.storage.SaveGameState(context.Background(), f.game.ID, f.game))

	response := f.command(t, "fight")

	require.Len(t, response.Response.Transactions, 1)
	require.Len(t, f.notifier.txs, 1)
	assert.Equal(t, f.game.ID, f.notifier.ids[0])
	assert.Equal(t, txsim.KindBattleReward, f.notifier.txs[0].Kind)
	assert.Equal(t, response.Response.Transactions[0].ID, f.notifier.txs[0].ID)
}

func TestCommandHandler_Errors(t *testing.T) {
	f := newCommandFixture(t)

	tests := []struct {
		name           string
		body           string
		expectedStatus int
		expectedError  string
	}{
		{name: "invalid json", body: `{`, expectedStatus: http.StatusBadRequest, expectedError: "Invalid JSON in request body"},
		{name: "missing id", body: `{"command":"help"}`, expectedStatus: http.StatusBadRequest, expectedError: "gamestate_id is required"},
		{name: "malformed id", body: `{"gamestate_id":"nope","command":"help"}`, expectedStatus: http.StatusBadRequest, expectedError: "Invalid JSON in request body"},
		{name: "unknown game", body: fmt.Sprintf(`{"gamestate_id":%q,"command":"help"}`, uuid.New()), expectedStatus: http.StatusNotFound, expectedError: "Game state not found"},
		{name: "command too long", body: fmt.Sprintf(`{"gamestate_id":%q,"command":%q}`, f.game.ID, strings.Repeat("a", MaxCommandLength+1)), expectedStatus: http.StatusBadRequest, expectedError: "Command is too long"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := f.post(t, tt.body)
			assert.Equal(t, tt.expectedStatus, rr.Code)

			var response ErrorResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&response))
			assert.Equal(t, tt.expectedError, response.Error)
		})
	}
}

func TestCommandHandler_MethodNotAllowed(t *testing.T) {
	f := newCommandFixture(t)
	req := httptest.NewRequest(http.MethodGet, "/v1/command", nil)
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestCommandHandler_SaveFailure(t *testing.T) {
	f := newCommandFixture(t, 0)
	f.storage.SetSaveError(errors.New("redis down"))

	rr := f.post(t, fmt.Sprintf(`{"gamestate_id":%q,"command":"shop"}`, f.game.ID))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Empty(t, f.notifier.txs)
}
