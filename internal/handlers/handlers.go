package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"pocketcasts-mirror/internal/db"
	"pocketcasts-mirror/internal/export"
	"pocketcasts-mirror/internal/feed"
	"pocketcasts-mirror/pkg/tasks"
)

const historyFeedLimit = 50

type Handlers struct {
	asynqClient tasks.TaskEnqueuer
}

func New(asynqClient tasks.TaskEnqueuer) *Handlers {
	return &Handlers{asynqClient: asynqClient}
}

// PostSync enqueues a full sync run. This is the manual counterpart of the
// scheduled trigger; both enqueue the same task and are safe to overlap.
func (h *Handlers) PostSync(w http.ResponseWriter, r *http.Request) {
	task, err := tasks.NewSyncAllTask()
	if err != nil {
		log.Printf("Error creating sync task: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	info, err := h.asynqClient.Enqueue(task)
	if err != nil {
		log.Printf("Error enqueuing sync task: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"status": "enqueued", "task_id": info.ID})
}

// GetProgress reports a run's fan-out progress.
func (h *Handlers) GetProgress(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	runID := vars["runID"]

	progress, err := db.GetProgress(runID)
	if err != nil {
		http.Error(w, "Run not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"run_id":    progress.RunID,
		"completed": progress.Completed,
		"total":     progress.Total,
	})
}

// GetHistoryCSV streams the full play history as CSV.
func (h *Handlers) GetHistoryCSV(w http.ResponseWriter, r *http.Request) {
	episodes, err := db.GetPlayedEpisodes()
	if err != nil {
		log.Printf("Error getting played episodes: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="history.csv"`)
	if err := export.WriteHistoryCSV(w, episodes); err != nil {
		log.Printf("Error writing history CSV: %v", err)
	}
}

// GetHistoryRSS renders the most recent plays as an RSS feed.
func (h *Handlers) GetHistoryRSS(w http.ResponseWriter, r *http.Request) {
	episodes, err := db.GetRecentlyPlayedEpisodes(historyFeedLimit)
	if err != nil {
		log.Printf("Error getting played episodes: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	rss, err := feed.GenerateHistoryRSS(episodes, r)
	if err != nil {
		log.Printf("Error generating RSS: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml")
	w.Write([]byte(rss))
}
