package queue

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	queuePkg "github.com/jwebster45206/dungeon-hunt/pkg/queue"
	"github.com/jwebster45206/dungeon-hunt/pkg/txsim"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestQueue(t *testing.T) (*TxQueue, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewTxQueue(rdb, logger), mr
}

func TestTxQueue_EnqueueAndDequeue(t *testing.T) {
	q, _ := setupTestQueue(t)
	ctx := context.Background()
	gameID := uuid.New()

	first := queuePkg.NewJob(gameID, txsim.NewRequest(txsim.KindTrade, "Rare Gem", 150))
	second := queuePkg.NewJob(gameID, txsim.NewRequest(txsim.KindQuestReward, "", 0))
	require.NoError(t, q.Enqueue(ctx, first))
	require.NoError(t, q.Enqueue(ctx, second))

	depth, err := q.Depth(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, depth)

	job, err := q.Dequeue(ctx)
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, first.JobID, job.JobID)
	assert.Equal(t, first.Request, job.Request)

	job, err = q.BlockingDequeue(ctx, time.Second)
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, second.JobID, job.JobID)

	job, err = q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Nil(t, job, "empty queue")
}

func TestTxQueue_RequeueGoesToHead(t *testing.T) {
	q, _ := setupTestQueue(t)
	ctx := context.Background()
	gameID := uuid.New()

	waiting := queuePkg.NewJob(gameID, txsim.NewRequest(txsim.KindTrade, "Rare Gem", 150))
	returned := queuePkg.NewJob(gameID, txsim.NewRequest(txsim.KindMint, "", 0))
	require.NoError(t, q.Enqueue(ctx, waiting))
	require.NoError(t, q.Requeue(ctx, returned))

	job, err := q.Dequeue(ctx)
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, returned.JobID, job.JobID)

	depth, err := q.Depth(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, depth)
}

func TestTxQueue_BlockingDequeueTimesOut(t *testing.T) {
	q, _ := setupTestQueue(t)

	job, err := q.BlockingDequeue(context.Background(), time.Second)
	require.NoError(t, err)
	assert.Nil(t, job)
}

func TestTxQueue_RejectsBadJobs(t *testing.T) {
	q, mr := setupTestQueue(t)
	_, err := mr.Push(RequestsKey, `{"job_id":"broken"}`)
	require.NoError(t, err)

	_, err = q.Dequeue(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse job")
}

func TestTxQueue_Submit(t *testing.T) {
	q, mr := setupTestQueue(t)
	gameID := uuid.New()
	req := txsim.NewRequest(txsim.KindBattleReward, "", 30)

	q.Submit(gameID, req)

	job, err := q.Dequeue(context.Background())
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, gameID, job.GameStateID)
	assert.Equal(t, req.ID, job.Request.ID)

	// A failed enqueue is logged, not returned.
	mr.SetError("ERR server unavailable")
	assert.NotPanics(t, func() { q.Submit(gameID, req) })
	mr.SetError("")
	depth, err := q.Depth(context.Background())
	require.NoError(t, err)
	assert.Zero(t, depth)
}
