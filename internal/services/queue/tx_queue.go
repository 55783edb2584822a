package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/dungeon-hunt/pkg/engine"
	queuePkg "github.com/jwebster45206/dungeon-hunt/pkg/queue"
	"github.com/jwebster45206/dungeon-hunt/pkg/txsim"
	"github.com/redis/go-redis/v9"
)

// RequestsKey is the Redis list shared by the API and the workers
const RequestsKey = "tx-requests"

const submitTimeout = 5 * time.Second

// TxQueue hands transaction simulations to out-of-process workers
type TxQueue struct {
	rdb    *redis.Client
	logger *slog.Logger
}

// TxQueue stands in for the in-process dispatcher when workers run the simulations.
var _ engine.Notifier = (*TxQueue)(nil)

func NewTxQueue(rdb *redis.Client, logger *slog.Logger) *TxQueue {
	return &TxQueue{
		rdb:    rdb,
		logger: logger,
	}
}

// Enqueue adds a job to the end of the queue
func (q *TxQueue) Enqueue(ctx context.Context, job *queuePkg.Job) error {
	data, err := job.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize job: %w", err)
	}

	if err := q.rdb.RPush(ctx, RequestsKey, data).Err(); err != nil {
		return fmt.Errorf("failed to enqueue job: %w", err)
	}
	return nil
}

// Requeue puts a job back at the head of the queue so it is the next one
// dequeued.
func (q *TxQueue) Requeue(ctx context.Context, job *queuePkg.Job) error {
	data, err := job.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize job: %w", err)
	}

	if err := q.rdb.LPush(ctx, RequestsKey, data).Err(); err != nil {
		return fmt.Errorf("failed to requeue job: %w", err)
	}
	return nil
}

// Dequeue removes and returns the next job. Returns nil if the queue is empty.
func (q *TxQueue) Dequeue(ctx context.Context) (*queuePkg.Job, error) {
	result, err := q.rdb.LPop(ctx, RequestsKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to dequeue job: %w", err)
	}
	return parseJob(result)
}

// BlockingDequeue waits up to timeout for the next job. It returns nil when
// the wait times out or ctx ends first.
func (q *TxQueue) BlockingDequeue(ctx context.Context, timeout time.Duration) (*queuePkg.Job, error) {
	result, err := q.rdb.BLPop(ctx, timeout, RequestsKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) || ctx.Err() != nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to dequeue job: %w", err)
	}

	// BLPop returns [key, value]
	if len(result) != 2 {
		return nil, fmt.Errorf("unexpected BLPop result: %v", result)
	}
	return parseJob(result[1])
}

// Depth returns the number of queued jobs
func (q *TxQueue) Depth(ctx context.Context) (int, error) {
	count, err := q.rdb.LLen(ctx, RequestsKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get queue depth: %w", err)
	}
	return int(count), nil
}

// Submit enqueues a transaction emitted by a command. Failures are logged;
// the command has already been applied.
func (q *TxQueue) Submit(gameID uuid.UUID, req txsim.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
	defer cancel()

	job := queuePkg.NewJob(gameID, req)
	if err := q.Enqueue(ctx, job); err != nil {
		q.logger.Error("Failed to enqueue transaction", "error", err, "tx_id", req.ID, "game_id", gameID)
		return
	}
	q.logger.Debug("Transaction enqueued", "job_id", job.JobID, "tx_id", req.ID, "kind", req.Kind, "game_id", gameID)
}

func parseJob(data string) (*queuePkg.Job, error) {
	job, err := queuePkg.FromJSON([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse job: %w", err)
	}
	return job, nil
}
