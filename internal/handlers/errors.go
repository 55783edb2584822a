package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jwebster45206/dungeon-hunt/internal/storage"
	"github.com/jwebster45206/dungeon-hunt/pkg/state"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// writeError writes a JSON error body with the given status.
func writeError(w http.ResponseWriter, logger *slog.Logger, status int, message string) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: message}); err != nil {
		logger.Error("Failed to encode error response", "error", err)
	}
}

// writeJSON writes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

// pathID parses the game state ID following prefix in the request path.
// ok is false when the path carries no ID; err is set when it carries an
// invalid one.
func pathID(r *http.Request, prefix string) (id uuid.UUID, ok bool, err error) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/")
	if rest == "" {
		return uuid.Nil, false, nil
	}
	id, err = uuid.Parse(rest)
	if err != nil {
		return uuid.Nil, true, err
	}
	return id, true, nil
}

// loadGameState loads a game state and writes 404 or 500 when it cannot be
// served. A nil result means the response has been written.
func loadGameState(w http.ResponseWriter, r *http.Request, store storage.Storage, logger *slog.Logger, id uuid.UUID) *state.GameState {
	gs, err := store.LoadGameState(r.Context(), id)
	if err != nil {
		logger.Error("Failed to load game state", "error", err, "id", id.String())
		writeError(w, logger, http.StatusInternalServerError, "Failed to load game state")
		return nil
	}
	if gs == nil {
		logger.Warn("Game state not found", "id", id.String())
		writeError(w, logger, http.StatusNotFound, "Game state not found")
		return nil
	}
	return gs
}
