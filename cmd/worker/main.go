package main

import (
	"log"
	"os"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"pocketcasts-mirror/internal/db"
	"pocketcasts-mirror/internal/pocketcasts"
	"pocketcasts-mirror/internal/worker"
	"pocketcasts-mirror/pkg/tasks"
)

// CommitSHA is set at build time via ldflags
var CommitSHA = "unknown"

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file")
	}

	db.InitDB()

	token := os.Getenv("POCKETCASTS_TOKEN")
	if token == "" {
		log.Fatal("POCKETCASTS_TOKEN is not set")
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "127.0.0.1:6379"
	}

	client := asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr})
	defer client.Close()

	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: redisAddr},
		asynq.Config{
			// Per-podcast tasks only touch their own podcast's episodes, so
			// they can run side by side; the progress counter is the single
			// shared row and its increment is atomic in the store.
			Concurrency: 4,
			Queues: map[string]int{
				"high":    2,
				"default": 1,
			},
			// Custom retry delay function for exponential backoff
			RetryDelayFunc: func(n int, err error, task *asynq.Task) time.Duration {
				delay := 1 * time.Minute
				maxDelay := 6 * time.Hour

				// Exponential backoff: 1min, 2min, 4min, 8min, etc.
				for i := 0; i < n; i++ {
					delay *= 2
					if delay > maxDelay {
						delay = maxDelay
						break
					}
				}

				log.Printf("Task %s failed %d times, retrying in %v", task.Type(), n+1, delay)
				return delay
			},
		},
	)

	mux := asynq.NewServeMux()
	taskHandler := worker.NewTaskHandler(client, pocketcasts.NewClient(token))

	mux.HandleFunc(tasks.TypeSyncAll, taskHandler.HandleSyncAllTask)
	mux.HandleFunc(tasks.TypeSyncPodcast, taskHandler.HandleSyncPodcastTask)
	mux.HandleFunc(tasks.TypeSyncHistory, taskHandler.HandleSyncHistoryTask)

	log.Printf("Worker starting (commit: %s)", CommitSHA)
	if err := srv.Run(mux); err != nil {
		log.Fatalf("could not run server: %v", err)
	}
}
