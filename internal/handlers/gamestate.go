package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/dungeon-hunt/internal/storage"
	"github.com/jwebster45206/dungeon-hunt/pkg/content"
	"github.com/jwebster45206/dungeon-hunt/pkg/engine"
	"github.com/jwebster45206/dungeon-hunt/pkg/state"
)

type GameStateHandler struct {
	storage storage.Storage
	tables  *content.Tables
	logger  *slog.Logger
}

func NewGameStateHandler(tables *content.Tables, storage storage.Storage, logger *slog.Logger) *GameStateHandler {
	return &GameStateHandler{
		storage: storage,
		tables:  tables,
		logger:  logger,
	}
}

// CreateGameStateRequest defines the request body for creating a new game state
type CreateGameStateRequest struct {
	Name  string `json:"name,omitempty"`  // Optional: character name
	Class string `json:"class,omitempty"` // Optional: class key, defaults to the content's default class
}

// ServeHTTP handles HTTP requests for game state operations
// Routes:
// POST /v1/gamestate        - Create new game state
// GET /v1/gamestate/{id}    - Read game state by ID
// DELETE /v1/gamestate/{id} - Delete game state and its history
func (h *GameStateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	gameStateID, hasID, err := pathID(r, "/v1/gamestate")
	if err != nil {
		h.logger.Warn("Invalid game state ID", "path", r.URL.Path, "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid game state ID format")
		return
	}

	switch r.Method {
	case http.MethodPost:
		h.handleCreate(w, r)

	case http.MethodGet:
		if !hasID {
			h.logger.Warn("GET request without game state ID")
			writeError(w, h.logger, http.StatusBadRequest, "Game state ID is required for GET requests")
			return
		}
		h.handleRead(w, r, gameStateID)

	case http.MethodDelete:
		if !hasID {
			h.logger.Warn("DELETE request without game state ID")
			writeError(w, h.logger, http.StatusBadRequest, "Game state ID is required for DELETE requests")
			return
		}
		h.handleDelete(w, r, gameStateID)

	default:
		h.logger.Warn("Method not allowed for game state endpoint", "method", r.Method)
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST, GET, DELETE")
	}
}

func (h *GameStateHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	// An empty body creates a default character.
	var req CreateGameStateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Warn("Invalid create game state request", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	gs, err := state.NewGameState(h.tables, strings.TrimSpace(req.Name), strings.ToLower(strings.TrimSpace(req.Class)))
	if err != nil {
		h.logger.Warn("Failed to create game state", "class", req.Class, "error", err)
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.storage.SaveGameState(r.Context(), gs.ID, gs); err != nil {
		h.logger.Error("Failed to save game state", "error", err, "id", gs.ID.String())
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to save game state")
		return
	}

	welcome := engine.Entry{Command: "", Response: engine.Welcome(), Timestamp: time.Now()}
	if err := h.storage.AppendHistory(r.Context(), gs.ID, welcome); err != nil {
		h.logger.Warn("Failed to record welcome entry", "error", err, "id", gs.ID.String())
	}

	h.logger.Info("Game state created",
		"id", gs.ID.String(),
		"class", gs.Character.Class,
		"name", gs.Character.Name)
	writeJSON(w, h.logger, http.StatusCreated, gs)
}

func (h *GameStateHandler) handleRead(w http.ResponseWriter, r *http.Request, gameStateID uuid.UUID) {
	gs := loadGameState(w, r, h.storage, h.logger, gameStateID)
	if gs == nil {
		return
	}
	writeJSON(w, h.logger, http.StatusOK, gs)
}

func (h *GameStateHandler) handleDelete(w http.ResponseWriter, r *http.Request, gameStateID uuid.UUID) {
	if err := h.storage.DeleteGameState(r.Context(), gameStateID); err != nil {
		h.logger.Error("Failed to delete game state", "error", err, "id", gameStateID.String())
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to delete game state")
		return
	}
	h.logger.Debug("Game state deleted successfully", "id", gameStateID.String())
	w.WriteHeader(http.StatusNoContent)
}
