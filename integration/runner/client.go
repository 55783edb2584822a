package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/dungeon-hunt/internal/handlers"
	"github.com/jwebster45206/dungeon-hunt/pkg/state"
)

const (
	// PollInterval is how often to check the API while waiting for it
	PollInterval = 1 * time.Second
	// StartupTimeout is max time to wait for the API to report healthy
	StartupTimeout = 30 * time.Second
)

// WaitForAPI polls /health until the API reports healthy
func WaitForAPI(ctx context.Context, client *http.Client, baseURL string) error {
	timeout := time.After(StartupTimeout)
	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/health", nil)
		if err != nil {
			return fmt.Errorf("failed to create health request: %w", err)
		}
		if resp, err := client.Do(req); err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timeout:
			return fmt.Errorf("timeout waiting for API at %s (waited %v)", baseURL, StartupTimeout)
		case <-ticker.C:
		}
	}
}

// CreateGameState starts a new game with the given class
func CreateGameState(ctx context.Context, client *http.Client, baseURL string, class string) (*state.GameState, error) {
	var gs state.GameState
	err := doJSON(ctx, client, http.MethodPost, baseURL+"/v1/gamestate", handlers.CreateGameStateRequest{Class: class}, http.StatusCreated, &gs)
	if err != nil {
		return nil, fmt.Errorf("failed to create gamestate: %w", err)
	}
	return &gs, nil
}

// GetGameState retrieves the current gamestate
func GetGameState(ctx context.Context, client *http.Client, baseURL string, gameStateID uuid.UUID) (*state.GameState, error) {
	var gs state.GameState
	url := fmt.Sprintf("%s/v1/gamestate/%s", baseURL, gameStateID.String())
	if err := doJSON(ctx, client, http.MethodGet, url, nil, http.StatusOK, &gs); err != nil {
		return nil, fmt.Errorf("failed to get gamestate: %w", err)
	}
	return &gs, nil
}

// PostCommand runs one command and returns the rendered response with the
// updated gamestate
func PostCommand(ctx context.Context, client *http.Client, baseURL string, gameStateID uuid.UUID, command string) (*handlers.CommandResponse, error) {
	var out handlers.CommandResponse
	body := handlers.CommandRequest{GameStateID: gameStateID, Command: command}
	if err := doJSON(ctx, client, http.MethodPost, baseURL+"/v1/command", body, http.StatusOK, &out); err != nil {
		return nil, fmt.Errorf("failed to post command: %w", err)
	}
	return &out, nil
}

// SetWallet connects a generated wallet or disconnects it
func SetWallet(ctx context.Context, client *http.Client, baseURL string, gameStateID uuid.UUID, connected bool) (*state.GameState, error) {
	method := http.MethodDelete
	var body any
	if connected {
		method = http.MethodPost
		body = handlers.ConnectWalletRequest{}
	}

	var gs state.GameState
	url := fmt.Sprintf("%s/v1/wallet/%s", baseURL, gameStateID.String())
	if err := doJSON(ctx, client, method, url, body, http.StatusOK, &gs); err != nil {
		return nil, fmt.Errorf("failed to update wallet: %w", err)
	}
	return &gs, nil
}

// doJSON sends body (if any) as JSON and decodes the reply into out when the
// status matches.
func doJSON(ctx context.Context, client *http.Client, method, url string, body any, wantStatus int, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", method, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != wantStatus {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s %s returned %d (expected %d): %s", method, url, resp.StatusCode, wantStatus, string(data))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
