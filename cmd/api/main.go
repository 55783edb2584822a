package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/dungeon-hunt/internal/config"
	"github.com/jwebster45206/dungeon-hunt/internal/handlers"
	"github.com/jwebster45206/dungeon-hunt/internal/logger"
	"github.com/jwebster45206/dungeon-hunt/internal/middleware"
	"github.com/jwebster45206/dungeon-hunt/internal/services/events"
	"github.com/jwebster45206/dungeon-hunt/internal/services/queue"
	"github.com/jwebster45206/dungeon-hunt/internal/storage"
	"github.com/jwebster45206/dungeon-hunt/pkg/content"
	"github.com/jwebster45206/dungeon-hunt/pkg/dice"
	"github.com/jwebster45206/dungeon-hunt/pkg/engine"
	"github.com/jwebster45206/dungeon-hunt/pkg/txsim"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	if err := run(cfg, log); err != nil {
		log.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("Server exited")
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("Starting Dungeon Hunt API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"session_ttl", cfg.SessionTTL,
		"tx_speed", cfg.TxSpeed,
		"tx_queue", cfg.TxQueue)

	tables, err := content.Open(cfg.ContentPath)
	if err != nil {
		return fmt.Errorf("failed to load content: %w", err)
	}
	log.Info("Content loaded",
		"locations", tables.Locations.Len(),
		"enemies", tables.Enemies.Len(),
		"quests", tables.Quests.Len())

	store := storage.NewRedisStorage(cfg.RedisURL, cfg.SessionTTL, log)
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("Error closing storage connection", "error", err)
		}
	}()

	waitCtx, waitCancel := context.WithTimeout(ctx, 2*time.Minute)
	defer waitCancel()
	if err := store.WaitForConnection(waitCtx, 30, 2*time.Second); err != nil {
		return fmt.Errorf("failed to connect to storage: %w", err)
	}

	broadcaster := events.NewBroadcaster(store.Client(), log)

	// Transactions run here unless workers are configured to take them
	var (
		notifier   engine.Notifier
		dispatcher *txsim.Dispatcher
	)
	if cfg.TxQueue {
		notifier = queue.NewTxQueue(store.Client(), log)
		log.Info("Transactions will be simulated by workers", "queue", queue.RequestsKey)
	} else {
		sim := txsim.NewSimulator(txsim.DefaultSchedule.Scaled(cfg.TxSpeed), log)
		dispatcher = txsim.NewDispatcher(sim, broadcaster, log)
		notifier = dispatcher
	}
	rng := dice.NewSource()
	interp := engine.NewInterpreter(tables, rng)

	mux := http.NewServeMux()
	mux.Handle("/health", handlers.NewHealthHandler(store, log))

	gameStateHandler := handlers.NewGameStateHandler(tables, store, log)
	mux.Handle("/v1/gamestate", gameStateHandler)
	mux.Handle("/v1/gamestate/", gameStateHandler)

	mux.Handle("/v1/command", handlers.NewCommandHandler(interp, store, notifier, broadcaster, log))
	mux.Handle("/v1/history/", handlers.NewHistoryHandler(store, log))
	mux.Handle("/v1/wallet/", handlers.NewWalletHandler(store, rng, log))
	mux.Handle("/v1/content", handlers.NewContentHandler(tables, log))
	mux.Handle("/v1/events/gamestate/", handlers.NewEventsHandler(store.Client(), log))

	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     middleware.Logger(log)(mux),
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: the events endpoint streams
		IdleTimeout: 60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Server is shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		var errs []error
		if err := server.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("server forced to shutdown: %w", err))
		}
		if dispatcher != nil {
			if err := dispatcher.Shutdown(); err != nil {
				errs = append(errs, fmt.Errorf("transaction dispatcher: %w", err))
			}
		}
		return errors.Join(errs...)
	})

	return g.Wait()
}
