package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"pocketcasts-mirror/internal/db"
	"pocketcasts-mirror/internal/models"
	"pocketcasts-mirror/internal/pocketcasts"
	"pocketcasts-mirror/internal/syncer"
	"pocketcasts-mirror/pkg/tasks"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Fan-out tasks are enqueued in groups of at most this many.
const enqueueBatchSize = 50

// RemoteClient is the full remote surface the pipeline needs. Implemented by
// *pocketcasts.Client; tests point one at an httptest server.
type RemoteClient interface {
	syncer.HistoryFetcher
	syncer.EpisodeFetcher
	FetchCurrentPodcasts(ctx context.Context) ([]pocketcasts.RemotePodcast, error)
	FetchCurrentBookmarks(ctx context.Context) ([]pocketcasts.RemoteBookmark, error)
}

type TaskHandler struct {
	asynqClient tasks.TaskEnqueuer
	remote      RemoteClient
}

func NewTaskHandler(client tasks.TaskEnqueuer, remote RemoteClient) *TaskHandler {
	return &TaskHandler{asynqClient: client, remote: remote}
}

// HandleSyncAllTask is stage 1 of the pipeline: reconcile the podcast and
// bookmark sets, reset the run's progress counter to the number of podcasts,
// then fan out one per-podcast sync task. The manual trigger and the
// scheduler both enqueue this same task.
func (h *TaskHandler) HandleSyncAllTask(ctx context.Context, t *asynq.Task) error {
	log.Println("Starting full sync...")

	remotePodcasts, err := h.remote.FetchCurrentPodcasts(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch podcast list: %w", err)
	}
	podcasts := make([]models.Podcast, len(remotePodcasts))
	for i, p := range remotePodcasts {
		podcasts[i] = syncer.PodcastFromRemote(p)
	}
	podcastCount, err := syncer.PodcastReconciler().Reconcile(podcasts)
	if err != nil {
		return fmt.Errorf("failed to reconcile podcasts: %w", err)
	}
	log.Printf("Reconciled %d remote podcasts, %d stored", len(podcasts), podcastCount)

	remoteBookmarks, err := h.remote.FetchCurrentBookmarks(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch bookmark list: %w", err)
	}
	bookmarks := make([]models.Bookmark, len(remoteBookmarks))
	for i, b := range remoteBookmarks {
		bookmarks[i] = syncer.BookmarkFromRemote(b)
	}
	bookmarkCount, err := syncer.BookmarkReconciler().Reconcile(bookmarks)
	if err != nil {
		return fmt.Errorf("failed to reconcile bookmarks: %w", err)
	}
	log.Printf("Reconciled %d remote bookmarks, %d stored", len(bookmarks), bookmarkCount)

	runID := uuid.NewString()
	if err := db.ResetProgress(runID, len(remotePodcasts)); err != nil {
		return fmt.Errorf("failed to reset progress for run %s: %w", runID, err)
	}

	// With nothing to fan out there is no stage-2 task left to trigger the
	// history sync, so enqueue it here.
	if len(remotePodcasts) == 0 {
		return h.enqueueHistorySync(runID)
	}

	for start := 0; start < len(remotePodcasts); start += enqueueBatchSize {
		end := start + enqueueBatchSize
		if end > len(remotePodcasts) {
			end = len(remotePodcasts)
		}
		for _, p := range remotePodcasts[start:end] {
			task, err := tasks.NewSyncPodcastTask(runID, p.UUID, p.Title, p.Author)
			if err != nil {
				return fmt.Errorf("failed to create sync task for podcast %s: %w", p.UUID, err)
			}
			if _, err := h.asynqClient.Enqueue(task); err != nil {
				return fmt.Errorf("failed to enqueue sync task for podcast %s: %w", p.UUID, err)
			}
		}
		log.Printf("Run %s: enqueued podcasts %d-%d of %d", runID, start+1, end, len(remotePodcasts))
	}
	return nil
}

// HandleSyncPodcastTask is one stage-2 unit of work: mirror a single
// podcast's episode state, then bump the run's progress counter. The
// increment is a single atomic store operation, so exactly one unit observes
// the final count and enqueues the history sync.
func (h *TaskHandler) HandleSyncPodcastTask(ctx context.Context, t *asynq.Task) error {
	var p tasks.SyncPodcastTaskPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal task payload: %w", err)
	}
	log.Printf("Syncing episodes for podcast %s (%s)", p.PodcastUUID, p.PodcastTitle)

	err := syncer.SyncPodcastEpisodes(ctx, h.remote, syncer.PodcastContext{
		UUID:   p.PodcastUUID,
		Title:  p.PodcastTitle,
		Author: p.PodcastAuthor,
	})
	if err != nil {
		return err
	}

	completed, total, err := db.IncrementProgress(p.RunID)
	if err != nil {
		return fmt.Errorf("failed to increment progress for run %s: %w", p.RunID, err)
	}
	log.Printf("Run %s: %d/%d podcasts synced", p.RunID, completed, total)

	if completed == total {
		return h.enqueueHistorySync(p.RunID)
	}
	return nil
}

// HandleSyncHistoryTask is stage 3: merge the full listen history and apply
// it under the forward-only played_at rule.
func (h *TaskHandler) HandleSyncHistoryTask(ctx context.Context, t *asynq.Task) error {
	log.Println("Syncing listen history...")

	entries, err := syncer.MergeHistory(ctx, h.remote)
	if err != nil {
		return err
	}
	result, err := syncer.UpdatePlayedTimestamps(entries)
	if err != nil {
		return err
	}

	log.Printf("History sync finished: %d entries, %d updated, %d skipped", len(entries), result.Updated, result.Skipped)
	return nil
}

func (h *TaskHandler) enqueueHistorySync(runID string) error {
	task, err := tasks.NewSyncHistoryTask()
	if err != nil {
		return fmt.Errorf("failed to create history sync task: %w", err)
	}
	if _, err := h.asynqClient.Enqueue(task); err != nil {
		return fmt.Errorf("failed to enqueue history sync task: %w", err)
	}
	log.Printf("Run %s: history sync enqueued", runID)
	return nil
}
