package handlers

import (
	"log/slog"
	"net/http"

	"github.com/jwebster45206/dungeon-hunt/pkg/content"
)

// ContentHandler serves the static game tables.
type ContentHandler struct {
	tables *content.Tables
	logger *slog.Logger
}

func NewContentHandler(tables *content.Tables, logger *slog.Logger) *ContentHandler {
	return &ContentHandler{
		tables: tables,
		logger: logger,
	}
}

// ServeHTTP handles GET /v1/content
func (h *ContentHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only GET is supported.")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, h.tables)
}
