package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/dungeon-hunt/internal/services/queue"
	queuePkg "github.com/jwebster45206/dungeon-hunt/pkg/queue"
	"github.com/jwebster45206/dungeon-hunt/pkg/txsim"
	"github.com/redis/go-redis/v9"
)

func main() {
	redisAddr := flag.String("redis", "localhost:6379", "Redis address")
	gameID := flag.String("game", "00000000-0000-0000-0000-000000000001", "Game state ID the events are published for")
	kind := flag.String("kind", string(txsim.KindTrade), "Transaction kind: mint, trade, quest_reward or battle_reward")
	item := flag.String("item", "Rare Gem", "Item name")
	amount := flag.Int("amount", 150, "Amount in gold")
	count := flag.Int("count", 1, "Number of jobs to enqueue")
	flag.Parse()

	gameStateID, err := uuid.Parse(*gameID)
	if err != nil {
		log.Fatal("Invalid game ID:", err)
	}

	client := redis.NewClient(&redis.Options{Addr: *redisAddr})
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	fmt.Println("Connected to Redis successfully!")

	txQueue := queue.NewTxQueue(client, slog.New(slog.NewTextHandler(os.Stderr, nil)))
	for i := 0; i < *count; i++ {
		job := queuePkg.NewJob(gameStateID, txsim.NewRequest(txsim.Kind(*kind), *item, *amount))
		if err := job.Validate(); err != nil {
			log.Fatal("Invalid job:", err)
		}
		if err := txQueue.Enqueue(ctx, job); err != nil {
			log.Fatal("Failed to enqueue job:", err)
		}
		fmt.Printf("Enqueued %s transaction: %s (tx %s)\n", job.Request.Kind, job.JobID, job.Request.ID)
	}

	depth, err := txQueue.Depth(ctx)
	if err != nil {
		log.Fatal("Failed to get queue depth:", err)
	}

	fmt.Printf("\nQueue depth: %d jobs\n", depth)
	fmt.Printf("Watch the events with: curl -N http://localhost:8080/v1/events/gamestate/%s\n", gameStateID)
	fmt.Println("Start a worker to process them: go run ./cmd/worker")
}
