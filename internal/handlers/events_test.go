package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jwebster45206/dungeon-hunt/internal/services/events"
	"github.com/jwebster45206/dungeon-hunt/pkg/txsim"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sseEvent struct {
	name string
	data map[string]any
}

// readEvent reads one "event:/data:" block, skipping comment lines.
func readEvent(t *testing.T, r *bufio.Reader) sseEvent {
	t.Helper()
	var ev sseEvent
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case strings.HasPrefix(line, "event: "):
			ev.name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev.data))
		case line == "" && ev.name != "":
			return ev
		}
	}
}

func TestEventsHandler_StreamsTransactionProgress(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	server := httptest.NewServer(NewEventsHandler(client, testLogger()))
	defer server.Close()

	gameID := uuid.New()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/v1/events/gamestate/"+gameID.String(), nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	connected := readEvent(t, reader)
	assert.Equal(t, "connected", connected.name)
	assert.Equal(t, gameID.String(), connected.data["game_id"])

	broadcaster := events.NewBroadcaster(client, testLogger())
	txID := uuid.New()
	require.NoError(t, broadcaster.ReportTransaction(ctx, gameID, txsim.Progress{
		TxID:    txID,
		Kind:    txsim.KindQuestReward,
		Hash:    "0xfeed",
		Stage:   txsim.StagePending,
		Percent: 5,
	}))

	progress := readEvent(t, reader)
	assert.Equal(t, "tx.progress", progress.name)
	assert.Equal(t, txID.String(), progress.data["tx_id"])
	assert.Equal(t, "pending", progress.data["stage"])
	assert.EqualValues(t, 5, progress.data["percent"])
}

func TestEventsHandler_BadRequests(t *testing.T) {
	handler := NewEventsHandler(nil, testLogger())

	tests := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
	}{
		{"wrong method", http.MethodPost, "/v1/events/gamestate/" + uuid.New().String(), http.StatusMethodNotAllowed},
		{"wrong path", http.MethodGet, "/v1/events/games", http.StatusBadRequest},
		{"invalid id", http.MethodGet, "/v1/events/gamestate/abc", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			assert.Equal(t, tt.expectedStatus, rr.Code)
		})
	}
}
