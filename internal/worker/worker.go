package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/dungeon-hunt/internal/services/queue"
	queuePkg "github.com/jwebster45206/dungeon-hunt/pkg/queue"
	"github.com/jwebster45206/dungeon-hunt/pkg/txsim"
	"github.com/redis/go-redis/v9"
)

const (
	workerTimeout  = 5 * time.Second
	lockMargin     = 10 * time.Second
	requeueBackoff = 250 * time.Millisecond
)

var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// Worker runs queued transaction simulations. A game's transactions are
// simulated one at a time, even across workers.
type Worker struct {
	id          string
	queue       *queue.TxQueue
	sim         *txsim.Simulator
	reporter    txsim.Reporter
	redisClient *redis.Client
	log         *slog.Logger
	pollTimeout time.Duration
	ctx         context.Context
	cancel      context.CancelFunc
}

// New creates a new worker instance
func New(txQueue *queue.TxQueue, sim *txsim.Simulator, reporter txsim.Reporter, redisClient *redis.Client, log *slog.Logger, workerID string) *Worker {
	ctx, cancel := context.WithCancel(context.Background())

	if workerID == "" {
		workerID = fmt.Sprintf("worker-%s", uuid.New().String()[:8])
	}

	return &Worker{
		id:          workerID,
		queue:       txQueue,
		sim:         sim,
		reporter:    reporter,
		redisClient: redisClient,
		log:         log,
		pollTimeout: workerTimeout,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// ID identifies the worker in logs and game locks
func (w *Worker) ID() string {
	return w.id
}

// Start processes jobs until Stop is called
func (w *Worker) Start() error {
	w.log.Info("Worker starting", "worker_id", w.id)

	for {
		select {
		case <-w.ctx.Done():
			w.log.Info("Worker shutting down", "worker_id", w.id)
			return nil
		default:
			if err := w.processNextJob(); err != nil {
				w.log.Error("Error processing job", "error", err, "worker_id", w.id)
				// Continue processing even on error
				w.pause(time.Second)
			}
		}
	}
}

// Stop cancels the running simulation and ends Start
func (w *Worker) Stop() {
	w.log.Info("Worker stop requested", "worker_id", w.id)
	w.cancel()
}

// processNextJob pulls the next job from the queue and runs it
func (w *Worker) processNextJob() error {
	job, err := w.queue.BlockingDequeue(w.ctx, w.pollTimeout)
	if err != nil {
		return fmt.Errorf("failed to dequeue job: %w", err)
	}
	if job == nil {
		return nil
	}

	w.log.Info("Received job from queue",
		"worker_id", w.id,
		"job_id", job.JobID,
		"kind", job.Request.Kind,
		"game_state_id", job.GameStateID.String(),
	)

	locked, err := w.acquireGameLock(job.GameStateID)
	if err != nil {
		return fmt.Errorf("failed to acquire game lock: %w", err)
	}
	if !locked {
		// Another worker is running this game's previous transaction. The job
		// goes back to the head so the game's later jobs stay behind it.
		w.log.Info("Game already locked, re-queueing job",
			"worker_id", w.id,
			"job_id", job.JobID,
			"game_state_id", job.GameStateID.String(),
		)
		if err := w.queue.Requeue(w.ctx, job); err != nil {
			return fmt.Errorf("failed to re-queue job: %w", err)
		}
		w.pause(requeueBackoff)
		return nil
	}

	defer w.releaseGameLock(job.GameStateID)
	return w.processJob(job)
}

func lockKey(gameStateID uuid.UUID) string {
	return fmt.Sprintf("game-lock:%s", gameStateID.String())
}

// acquireGameLock returns false if another worker holds the game. The lock
// outlives a full simulation so it cannot expire mid-run.
func (w *Worker) acquireGameLock(gameStateID uuid.UUID) (bool, error) {
	ttl := w.sim.Schedule().Total() + lockMargin
	return w.redisClient.SetNX(w.ctx, lockKey(gameStateID), w.id, ttl).Result()
}

// releaseGameLock deletes the lock only if this worker still owns it
func (w *Worker) releaseGameLock(gameStateID uuid.UUID) {
	// w.ctx may already be cancelled by Stop
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := releaseScript.Run(ctx, w.redisClient, []string{lockKey(gameStateID)}, w.id).Err(); err != nil {
		w.log.Error("Failed to release game lock", "error", err, "game_state_id", gameStateID.String())
	}
}

// processJob simulates the transaction and reports every stage
func (w *Worker) processJob(job *queuePkg.Job) error {
	start := time.Now()

	err := w.sim.Run(w.ctx, job.Request, func(p txsim.Progress) {
		if err := w.reporter.ReportTransaction(w.ctx, job.GameStateID, p); err != nil {
			w.log.Warn("Failed to report transaction progress", "error", err, "tx_id", job.Request.ID)
		}
	})
	if errors.Is(err, context.Canceled) {
		w.log.Warn("Transaction simulation interrupted by shutdown",
			"worker_id", w.id,
			"job_id", job.JobID,
			"tx_id", job.Request.ID,
		)
		return nil
	}
	if err != nil {
		return fmt.Errorf("transaction simulation failed: %w", err)
	}

	w.log.Info("Transaction simulated",
		"worker_id", w.id,
		"job_id", job.JobID,
		"tx_id", job.Request.ID,
		"queued_ms", start.Sub(job.EnqueuedAt).Milliseconds(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func (w *Worker) pause(d time.Duration) {
	select {
	case <-w.ctx.Done():
	case <-time.After(d):
	}
}
