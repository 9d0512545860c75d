package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"
	"pocketcasts-mirror/internal/db"
	"pocketcasts-mirror/internal/handlers"
	"pocketcasts-mirror/internal/middleware"
)

// CommitSHA is set at build time via ldflags
var CommitSHA = "unknown"

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file")
	}

	db.InitDB()

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "127.0.0.1:6379"
	}
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	client := asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr})
	defer client.Close()

	h := handlers.New(client)
	rateLimiter := middleware.NewRateLimiterMiddleware(rate.Limit(1), 5)

	r := mux.NewRouter()
	r.Use(middleware.AuthMiddleware)
	r.Use(rateLimiter.Middleware)
	r.HandleFunc("/sync", h.PostSync).Methods(http.MethodPost)
	r.HandleFunc("/progress/{runID}", h.GetProgress).Methods(http.MethodGet)
	r.HandleFunc("/export/history.csv", h.GetHistoryCSV).Methods(http.MethodGet)
	r.HandleFunc("/rss/history", h.GetHistoryRSS).Methods(http.MethodGet)

	log.Printf("Starting server on :%s (commit: %s)", port, CommitSHA)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatal(err)
	}
}
