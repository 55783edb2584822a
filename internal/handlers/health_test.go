package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jwebster45206/dungeon-hunt/internal/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelError, // Reduce noise in tests
	}))
}

func TestHealthHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name            string
		pingErr         error
		expectedStatus  int
		expectedHealth  string
		expectedStorage string
	}{
		{
			name:            "all healthy",
			expectedStatus:  http.StatusOK,
			expectedHealth:  "healthy",
			expectedStorage: "healthy",
		},
		{
			name:            "unhealthy storage",
			pingErr:         errors.New("connection failed"),
			expectedStatus:  http.StatusServiceUnavailable,
			expectedHealth:  "degraded",
			expectedStorage: "unhealthy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockStorage := storage.NewMockStorage()
			mockStorage.SetPingError(tt.pingErr)
			handler := NewHealthHandler(mockStorage, testLogger())

			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, rr.Code)
			}

			var response HealthResponse
			if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if response.Status != tt.expectedHealth {
				t.Errorf("Expected status '%s', got '%s'", tt.expectedHealth, response.Status)
			}
			if response.Service != "dungeon-hunt" {
				t.Errorf("Expected service 'dungeon-hunt', got '%s'", response.Service)
			}
			if response.Components["storage"] != tt.expectedStorage {
				t.Errorf("Expected storage '%s', got '%v'", tt.expectedStorage, response.Components["storage"])
			}
		})
	}
}
