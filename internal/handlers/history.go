package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/jwebster45206/dungeon-hunt/internal/storage"
	"github.com/jwebster45206/dungeon-hunt/pkg/engine"
)

type HistoryResponse struct {
	GameStateID uuid.UUID      `json:"gamestate_id"`
	Entries     []engine.Entry `json:"entries"`
}

// HistoryHandler serves the rendered terminal history of a game.
type HistoryHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewHistoryHandler(storage storage.Storage, logger *slog.Logger) *HistoryHandler {
	return &HistoryHandler{
		storage: storage,
		logger:  logger,
	}
}

// ServeHTTP handles GET /v1/history/{id}?limit=N
func (h *HistoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only GET is supported.")
		return
	}

	gameStateID, hasID, err := pathID(r, "/v1/history")
	if err != nil || !hasID {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid path. Expected /v1/history/{gameStateID}")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeError(w, h.logger, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
	}

	if gs := loadGameState(w, r, h.storage, h.logger, gameStateID); gs == nil {
		return
	}

	entries, err := h.storage.ListHistory(r.Context(), gameStateID, limit)
	if err != nil {
		h.logger.Error("Failed to list history", "error", err, "id", gameStateID.String())
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load history")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, HistoryResponse{GameStateID: gameStateID, Entries: entries})
}
