package syncer

import (
	"fmt"
	"time"

	"pocketcasts-mirror/internal/db"
	"pocketcasts-mirror/internal/models"
	"pocketcasts-mirror/internal/pocketcasts"
)

// SetReconciler reconciles a remote "current set" against the store for one
// entity kind. It is the single mechanism behind both the podcast and the
// bookmark lifecycle: upsert everything the remote reports (reviving
// soft-deleted rows), then soft-delete every live stored row the remote no
// longer reports. Rows that are already soft-deleted keep their original
// deleted_at, so re-applying the same set is a no-op.
type SetReconciler[T any] struct {
	ID               func(T) string
	Upsert           func(items []T) error
	SoftDeleteExcept func(keep []string, now time.Time) error
	Count            func() (int, error)
}

// Reconcile applies one remote set and returns the total stored row count
// after the pass, soft-deleted rows included. An empty remote set
// soft-deletes every live row.
func (r SetReconciler[T]) Reconcile(remote []T) (int, error) {
	if err := r.Upsert(remote); err != nil {
		return 0, fmt.Errorf("upsert failed: %w", err)
	}
	keep := make([]string, len(remote))
	for i, item := range remote {
		keep[i] = r.ID(item)
	}
	if err := r.SoftDeleteExcept(keep, time.Now().UTC()); err != nil {
		return 0, fmt.Errorf("soft delete failed: %w", err)
	}
	count, err := r.Count()
	if err != nil {
		return 0, fmt.Errorf("count failed: %w", err)
	}
	return count, nil
}

// PodcastReconciler wires the reconciler to the podcasts table.
func PodcastReconciler() SetReconciler[models.Podcast] {
	return SetReconciler[models.Podcast]{
		ID:               func(p models.Podcast) string { return p.UUID },
		Upsert:           db.UpsertPodcasts,
		SoftDeleteExcept: db.SoftDeletePodcastsExcept,
		Count:            db.CountPodcasts,
	}
}

// BookmarkReconciler wires the reconciler to the bookmarks table.
func BookmarkReconciler() SetReconciler[models.Bookmark] {
	return SetReconciler[models.Bookmark]{
		ID:               func(b models.Bookmark) string { return b.BookmarkUUID },
		Upsert:           db.UpsertBookmarks,
		SoftDeleteExcept: db.SoftDeleteBookmarksExcept,
		Count:            db.CountBookmarks,
	}
}

// PodcastFromRemote converts a subscription-list entry into its stored form.
func PodcastFromRemote(p pocketcasts.RemotePodcast) models.Podcast {
	return models.Podcast{
		UUID:         p.UUID,
		Title:        p.Title,
		Author:       p.Author,
		Description:  p.Description,
		URL:          p.URL,
		SortPosition: p.SortPosition,
	}
}

// BookmarkFromRemote converts a bookmark-list entry into its stored form.
func BookmarkFromRemote(b pocketcasts.RemoteBookmark) models.Bookmark {
	bookmark := models.Bookmark{
		BookmarkUUID: b.BookmarkUUID,
		PodcastUUID:  b.PodcastUUID,
		EpisodeUUID:  b.EpisodeUUID,
		Title:        b.Title,
		Time:         b.Time,
	}
	if b.CreatedAt != "" {
		if ts, err := time.Parse(time.RFC3339, b.CreatedAt); err == nil {
			ts = ts.UTC()
			bookmark.CreatedAtRemote = &ts
		}
	}
	return bookmark
}
