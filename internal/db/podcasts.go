package db

import (
	"time"

	"github.com/lib/pq"
	"pocketcasts-mirror/internal/models"
)

// UpsertPodcasts inserts or refreshes the given podcasts, clearing
// deleted_at so a resubscribed podcast comes back to life.
func UpsertPodcasts(podcasts []models.Podcast) error {
	if len(podcasts) == 0 {
		return nil
	}
	_, err := DB.NamedExec(`
		INSERT INTO podcasts (uuid, title, author, description, url, sort_position, deleted_at)
		VALUES (:uuid, :title, :author, :description, :url, :sort_position, NULL)
		ON CONFLICT (uuid) DO UPDATE SET
			title = EXCLUDED.title,
			author = EXCLUDED.author,
			description = EXCLUDED.description,
			url = EXCLUDED.url,
			sort_position = EXCLUDED.sort_position,
			deleted_at = NULL`,
		podcasts)
	return err
}

// SoftDeletePodcastsExcept marks every live podcast not in keep as deleted.
// Already-deleted rows keep their original deleted_at.
func SoftDeletePodcastsExcept(keep []string, now time.Time) error {
	_, err := DB.Exec(`
		UPDATE podcasts
		SET deleted_at = $1
		WHERE deleted_at IS NULL AND uuid <> ALL($2)`,
		now, pq.Array(keep))
	return err
}

// CountPodcasts returns the total stored podcast count, soft-deleted rows
// included.
func CountPodcasts() (int, error) {
	var count int
	err := DB.Get(&count, "SELECT COUNT(*) FROM podcasts")
	return count, err
}
