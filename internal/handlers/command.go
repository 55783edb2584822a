package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/dungeon-hunt/internal/logger"
	"github.com/jwebster45206/dungeon-hunt/internal/storage"
	"github.com/jwebster45206/dungeon-hunt/pkg/engine"
	"github.com/jwebster45206/dungeon-hunt/pkg/state"
)

// MaxCommandLength bounds the raw command accepted by the API.
const MaxCommandLength = 256

// StatePublisher announces game state changes to event stream subscribers.
type StatePublisher interface {
	PublishGameStateUpdated(ctx context.Context, gs *state.GameState, command string) error
}

type CommandRequest struct {
	GameStateID uuid.UUID `json:"gamestate_id"`
	Command     string    `json:"command"`
}

type CommandResponse struct {
	Command   string           `json:"command"`
	Response  *engine.Response `json:"response"`
	GameState *state.GameState `json:"gamestate"`
}

// CommandHandler applies terminal commands to stored game states.
type CommandHandler struct {
	interp    *engine.Interpreter
	storage   storage.Storage
	notifier  engine.Notifier
	publisher StatePublisher
	logger    *slog.Logger
}

// NewCommandHandler creates a command handler. notifier and publisher may be nil.
func NewCommandHandler(interp *engine.Interpreter, storage storage.Storage, notifier engine.Notifier, publisher StatePublisher, logger *slog.Logger) *CommandHandler {
	return &CommandHandler{
		interp:    interp,
		storage:   storage,
		notifier:  notifier,
		publisher: publisher,
		logger:    logger,
	}
}

// ServeHTTP handles POST /v1/command
func (h *CommandHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		h.logger.Warn("Method not allowed for command endpoint", "method", r.Method)
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported.")
		return
	}

	var req CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid command request", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	if req.GameStateID == uuid.Nil {
		writeError(w, h.logger, http.StatusBadRequest, "gamestate_id is required")
		return
	}
	if len(req.Command) > MaxCommandLength {
		writeError(w, h.logger, http.StatusBadRequest, "Command is too long")
		return
	}

	log := logger.WithGameID(h.logger, req.GameStateID.String())

	gs := loadGameState(w, r, h.storage, log, req.GameStateID)
	if gs == nil {
		return
	}

	next, resp := h.interp.Apply(gs, req.Command)

	if err := h.storage.SaveGameState(r.Context(), next.ID, next); err != nil {
		log.Error("Failed to save game state", "error", err)
		writeError(w, log, http.StatusInternalServerError, "Failed to save game state")
		return
	}

	if resp.ClearHistory {
		if err := h.storage.ClearHistory(r.Context(), next.ID); err != nil {
			log.Warn("Failed to clear history", "error", err)
		}
	} else {
		entry := engine.Entry{Command: req.Command, Response: resp, Timestamp: time.Now()}
		if err := h.storage.AppendHistory(r.Context(), next.ID, entry); err != nil {
			log.Warn("Failed to append history", "error", err)
		}
	}

	if h.notifier != nil {
		for _, tx := range resp.Transactions {
			h.notifier.Submit(next.ID, tx)
		}
	}

	if h.publisher != nil && !resp.Failed() {
		if err := h.publisher.PublishGameStateUpdated(r.Context(), next, req.Command); err != nil {
			log.Warn("Failed to publish state update", "error", err)
		}
	}

	log.Debug("Command applied",
		"command", req.Command,
		"tone", resp.Tone,
		"transactions", len(resp.Transactions))

	writeJSON(w, log, http.StatusOK, CommandResponse{
		Command:   req.Command,
		Response:  resp,
		GameState: next,
	})
}
