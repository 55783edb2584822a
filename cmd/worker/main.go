package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/dungeon-hunt/internal/config"
	"github.com/jwebster45206/dungeon-hunt/internal/logger"
	"github.com/jwebster45206/dungeon-hunt/internal/services/events"
	"github.com/jwebster45206/dungeon-hunt/internal/services/queue"
	"github.com/jwebster45206/dungeon-hunt/internal/storage"
	"github.com/jwebster45206/dungeon-hunt/internal/worker"
	"github.com/jwebster45206/dungeon-hunt/pkg/txsim"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Dungeon Hunt Worker",
		"environment", cfg.Environment,
		"redis_url", cfg.RedisURL,
		"tx_speed", cfg.TxSpeed)

	// The worker only needs the connection; game states stay with the API
	store := storage.NewRedisStorage(cfg.RedisURL, cfg.SessionTTL, log)
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("Error closing redis connection", "error", err)
		}
	}()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer waitCancel()
	if err := store.WaitForConnection(waitCtx, 30, 2*time.Second); err != nil {
		log.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	log.Info("Redis connection established successfully")

	redisClient := store.Client()
	txQueue := queue.NewTxQueue(redisClient, log)
	broadcaster := events.NewBroadcaster(redisClient, log)
	sim := txsim.NewSimulator(txsim.DefaultSchedule.Scaled(cfg.TxSpeed), log)

	w := worker.New(txQueue, sim, broadcaster, redisClient, log, os.Getenv("WORKER_ID"))

	// Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan error, 1)
	go func() {
		done <- w.Start()
	}()

	log.Info("Worker started, waiting for transactions...", "worker_id", w.ID(), "queue", queue.RequestsKey)

	select {
	case <-quit:
		log.Info("Worker shutdown signal received")
		w.Stop()
		if err := <-done; err != nil {
			log.Error("Worker error", "error", err)
		}
	case err := <-done:
		if err != nil {
			log.Error("Worker error", "error", err)
			os.Exit(1)
		}
	}

	log.Info("Worker exited")
}
