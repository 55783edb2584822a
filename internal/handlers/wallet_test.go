package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jwebster45206/dungeon-hunt/pkg/dice"
	"github.com/jwebster45206/dungeon-hunt/pkg/state"
	"github.com/jwebster45206/dungeon-hunt/pkg/wallet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalletHandler_ConnectAndDisconnect(t *testing.T) {
	f := newCommandFixture(t)
	handler := NewWalletHandler(f.storage, dice.NewSeeded(1), testLogger())
	path := "/v1/wallet/" + f.game.ID.String()

	// Connect with a generated address
	req := httptest.NewRequest(http.MethodPost, path, nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var gs state.GameState
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&gs))
	assert.True(t, gs.Wallet.Connected)
	assert.True(t, wallet.Valid(gs.Wallet.Address), gs.Wallet.Address)

	// Gated commands now work
	response := f.command(t, "balance")
	assert.False(t, response.Response.Failed())

	// Disconnect
	req = httptest.NewRequest(http.MethodDelete, path, nil)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	stored, err := f.storage.LoadGameState(context.Background(), f.game.ID)
	require.NoError(t, err)
	assert.False(t, stored.Wallet.Connected)
	assert.Empty(t, stored.Wallet.Address)
}

func TestWalletHandler_ConnectWithAddress(t *testing.T) {
	f := newCommandFixture(t)
	handler := NewWalletHandler(f.storage, dice.NewSeeded(1), testLogger())

	body := `{"address":"0xABCDEF0123456789abcdef0123456789ABCDEF01"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/wallet/"+f.game.ID.String(), strings.NewReader(body))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var gs state.GameState
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&gs))
	assert.Equal(t, "0xabcdef0123456789abcdef0123456789abcdef01", gs.Wallet.Address)
}

func TestWalletHandler_Errors(t *testing.T) {
	f := newCommandFixture(t)
	handler := NewWalletHandler(f.storage, dice.NewSeeded(1), testLogger())

	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		expectedStatus int
	}{
		{"invalid address", http.MethodPost, "/v1/wallet/" + f.game.ID.String(), `{"address":"0x123"}`, http.StatusBadRequest},
		{"invalid json", http.MethodPost, "/v1/wallet/" + f.game.ID.String(), `{`, http.StatusBadRequest},
		{"missing id", http.MethodPost, "/v1/wallet", "", http.StatusBadRequest},
		{"unknown game", http.MethodDelete, "/v1/wallet/" + uuid.New().String(), "", http.StatusNotFound},
		{"unsupported method", http.MethodGet, "/v1/wallet/" + f.game.ID.String(), "", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			assert.Equal(t, tt.expectedStatus, rr.Code, rr.Body.String())
		})
	}
}
