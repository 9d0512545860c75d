package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	TypeSyncAll     = "sync:all"
	TypeSyncPodcast = "podcast:sync"
	TypeSyncHistory = "history:sync"
)

// SyncPodcastTaskPayload is one fan-out unit of work: mirror the episode
// state of a single podcast, then bump the run's progress counter.
type SyncPodcastTaskPayload struct {
	RunID         string
	PodcastUUID   string
	PodcastTitle  string
	PodcastAuthor string
}

func NewSyncAllTask() (*asynq.Task, error) {
	return asynq.NewTask(TypeSyncAll, nil), nil
}

func NewSyncPodcastTask(runID, podcastUUID, podcastTitle, podcastAuthor string) (*asynq.Task, error) {
	payload, err := json.Marshal(SyncPodcastTaskPayload{
		RunID:         runID,
		PodcastUUID:   podcastUUID,
		PodcastTitle:  podcastTitle,
		PodcastAuthor: podcastAuthor,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeSyncPodcast, payload), nil
}

func NewSyncHistoryTask() (*asynq.Task, error) {
	return asynq.NewTask(TypeSyncHistory, nil), nil
}
