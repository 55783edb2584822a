package txsim

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Reporter receives progress for transactions started by a Dispatcher.
type Reporter interface {
	ReportTransaction(ctx context.Context, gameID uuid.UUID, p Progress) error
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(ctx context.Context, gameID uuid.UUID, p Progress) error

func (f ReporterFunc) ReportTransaction(ctx context.Context, gameID uuid.UUID, p Progress) error {
	return f(ctx, gameID, p)
}

// Dispatcher runs simulations in the background. Submit never blocks on a
// simulation and nothing flows back to the caller.
type Dispatcher struct {
	sim      *Simulator
	reporter Reporter
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	group  *errgroup.Group

	mu       sync.Mutex
	closed   bool
	inFlight map[uuid.UUID]context.CancelFunc
}

// NewDispatcher creates a dispatcher that reports through reporter.
func NewDispatcher(sim *Simulator, reporter Reporter, logger *slog.Logger) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		sim:      sim,
		reporter: reporter,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
		group:    &errgroup.Group{},
		inFlight: make(map[uuid.UUID]context.CancelFunc),
	}
}

// Submit starts simulating req for a game. It is a no-op after Shutdown.
func (d *Dispatcher) Submit(gameID uuid.UUID, req Request) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		d.logger.Warn("Dropping transaction after shutdown", "tx_id", req.ID, "game_id", gameID)
		return
	}

	ctx, cancel := context.WithCancel(d.ctx)
	d.inFlight[req.ID] = cancel

	d.group.Go(func() error {
		defer d.forget(req.ID)

		err := d.sim.Run(ctx, req, func(p Progress) {
			if err := d.reporter.ReportTransaction(ctx, gameID, p); err != nil {
				d.logger.Warn("Failed to report transaction progress", "tx_id", req.ID, "error", err)
			}
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			d.logger.Error("Transaction simulation failed", "tx_id", req.ID, "error", err)
		}
		// A cancelled simulation is the player closing the modal; not an error.
		return nil
	})
}

// Cancel stops one running simulation. It reports whether it was running.
func (d *Dispatcher) Cancel(txID uuid.UUID) bool {
	d.mu.Lock()
	cancel, ok := d.inFlight[txID]
	d.mu.Unlock()
	if ok {
		cancel()
	}
	return ok
}

// InFlight returns the number of running simulations.
func (d *Dispatcher) InFlight() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.inFlight)
}

func (d *Dispatcher) forget(txID uuid.UUID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if cancel, ok := d.inFlight[txID]; ok {
		cancel()
		delete(d.inFlight, txID)
	}
}

// Shutdown cancels every running simulation and waits for them to stop.
func (d *Dispatcher) Shutdown() error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	d.cancel()
	return d.group.Wait()
}

// Wait blocks until every submitted simulation has finished.
func (d *Dispatcher) Wait() error {
	return d.group.Wait()
}
