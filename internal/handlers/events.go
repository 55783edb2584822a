package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/dungeon-hunt/internal/services/events"
	"github.com/redis/go-redis/v9"
)

// KeepaliveInterval is how often an idle event stream sends a comment line.
var KeepaliveInterval = 30 * time.Second

// EventsHandler handles Server-Sent Events (SSE) for transaction progress
// and game state updates
type EventsHandler struct {
	redisClient *redis.Client
	logger      *slog.Logger
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(redisClient *redis.Client, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{
		redisClient: redisClient,
		logger:      logger,
	}
}

// ServeHTTP handles SSE requests for game events
// GET /v1/events/gamestate/{gameStateID}
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.logger.Warn("Method not allowed for events endpoint",
			"method", r.Method,
			"path", r.URL.Path)
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only GET is supported.")
		return
	}

	// Expected: /v1/events/gamestate/{gameStateID}
	pathParts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(pathParts) != 4 || pathParts[0] != "v1" || pathParts[1] != "events" || pathParts[2] != "gamestate" {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid path. Expected /v1/events/gamestate/{gameStateID}")
		return
	}

	gameStateID, err := uuid.Parse(pathParts[3])
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid game state ID format.")
		return
	}

	h.logger.Info("SSE connection established",
		"game_state_id", gameStateID.String(),
		"remote_addr", r.RemoteAddr)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	ctx := r.Context()
	channel := events.Channel(gameStateID)
	pubsub := h.redisClient.Subscribe(ctx, channel)
	defer func() {
		if err := pubsub.Close(); err != nil {
			h.logger.Error("Failed to close pubsub", "error", err)
		}
	}()

	// Wait for the subscription so nothing published after the connected
	// event is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		h.logger.Error("Failed to subscribe", "error", err, "channel", channel)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to subscribe to events")
		return
	}
	h.logger.Debug("Subscribed to channel", "channel", channel)

	msgChan := pubsub.Channel()

	keepaliveTicker := time.NewTicker(KeepaliveInterval)
	defer keepaliveTicker.Stop()

	h.sendSSE(w, "connected", map[string]any{
		"game_id": gameStateID.String(),
		"message": "Connected to event stream",
	})

	for {
		select {
		case <-ctx.Done():
			h.logger.Info("SSE client disconnected",
				"game_state_id", gameStateID.String())
			return

		case msg, ok := <-msgChan:
			if !ok {
				return
			}
			var event events.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				h.logger.Error("Failed to unmarshal event", "error", err, "payload", msg.Payload)
				continue
			}

			data := event.Data
			if data == nil {
				data = map[string]any{}
			}
			if event.TxID != "" {
				data["tx_id"] = event.TxID
			}
			h.sendSSE(w, string(event.Type), data)

		case <-keepaliveTicker.C:
			if _, err := fmt.Fprintf(w, ": keepalive\n\n"); err != nil {
				h.logger.Error("Failed to write keepalive", "error", err)
				return
			}
			if flusher, ok := w.(http.Flusher); ok {
				flusher.Flush()
			}
		}
	}
}

// sendSSE sends a Server-Sent Event to the client
func (h *EventsHandler) sendSSE(w http.ResponseWriter, eventType string, data any) {
	dataJSON, err := json.Marshal(data)
	if err != nil {
		h.logger.Error("Failed to marshal SSE data", "error", err)
		return
	}

	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventType, dataJSON); err != nil {
		h.logger.Error("Failed to write event", "error", err)
		return
	}

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
}
