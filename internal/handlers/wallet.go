package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jwebster45206/dungeon-hunt/internal/storage"
	"github.com/jwebster45206/dungeon-hunt/pkg/dice"
	"github.com/jwebster45206/dungeon-hunt/pkg/wallet"
)

type ConnectWalletRequest struct {
	Address string `json:"address,omitempty"` // Optional: generated when empty
}

// WalletHandler plays the wallet collaborator for API clients: it records
// whether a simulated wallet is connected and under which address.
type WalletHandler struct {
	storage storage.Storage
	rng     dice.Source
	logger  *slog.Logger
}

func NewWalletHandler(storage storage.Storage, rng dice.Source, logger *slog.Logger) *WalletHandler {
	return &WalletHandler{
		storage: storage,
		rng:     rng,
		logger:  logger,
	}
}

// ServeHTTP handles wallet requests
// Routes:
// POST /v1/wallet/{id}   - Connect a wallet
// DELETE /v1/wallet/{id} - Disconnect the wallet
func (h *WalletHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	gameStateID, hasID, err := pathID(r, "/v1/wallet")
	if err != nil || !hasID {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid path. Expected /v1/wallet/{gameStateID}")
		return
	}

	var address string
	switch r.Method {
	case http.MethodPost:
		var req ConnectWalletRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
			return
		}
		address = strings.ToLower(strings.TrimSpace(req.Address))
		if address == "" {
			address = wallet.NewAddress(h.rng)
		}
		if !wallet.Valid(address) {
			writeError(w, h.logger, http.StatusBadRequest, "Invalid wallet address")
			return
		}
	case http.MethodDelete:
	default:
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST, DELETE")
		return
	}

	gs := loadGameState(w, r, h.storage, h.logger, gameStateID)
	if gs == nil {
		return
	}

	if r.Method == http.MethodPost {
		gs.ConnectWallet(address)
	} else {
		gs.DisconnectWallet()
	}

	if err := h.storage.SaveGameState(r.Context(), gs.ID, gs); err != nil {
		h.logger.Error("Failed to save game state", "error", err, "id", gs.ID.String())
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to save game state")
		return
	}

	h.logger.Info("Wallet updated",
		"id", gs.ID.String(),
		"connected", gs.Wallet.Connected,
		"address", wallet.Short(gs.Wallet.Address))
	writeJSON(w, h.logger, http.StatusOK, gs)
}
