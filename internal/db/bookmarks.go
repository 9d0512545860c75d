package db

import (
	"time"

	"github.com/lib/pq"
	"pocketcasts-mirror/internal/models"
)

// UpsertBookmarks inserts or refreshes the given bookmarks, clearing
// deleted_at for any that reappeared remotely.
func UpsertBookmarks(bookmarks []models.Bookmark) error {
	if len(bookmarks) == 0 {
		return nil
	}
	_, err := DB.NamedExec(`
		INSERT INTO bookmarks (bookmark_uuid, podcast_uuid, episode_uuid, title, time, created_at_remote, deleted_at)
		VALUES (:bookmark_uuid, :podcast_uuid, :episode_uuid, :title, :time, :created_at_remote, NULL)
		ON CONFLICT (bookmark_uuid) DO UPDATE SET
			podcast_uuid = EXCLUDED.podcast_uuid,
			episode_uuid = EXCLUDED.episode_uuid,
			title = EXCLUDED.title,
			time = EXCLUDED.time,
			created_at_remote = EXCLUDED.created_at_remote,
			deleted_at = NULL`,
		bookmarks)
	return err
}

// SoftDeleteBookmarksExcept marks every live bookmark not in keep as
// deleted. Already-deleted rows keep their original deleted_at.
func SoftDeleteBookmarksExcept(keep []string, now time.Time) error {
	_, err := DB.Exec(`
		UPDATE bookmarks
		SET deleted_at = $1
		WHERE deleted_at IS NULL AND bookmark_uuid <> ALL($2)`,
		now, pq.Array(keep))
	return err
}

// CountBookmarks returns the total stored bookmark count, soft-deleted rows
// included.
func CountBookmarks() (int, error) {
	var count int
	err := DB.Get(&count, "SELECT COUNT(*) FROM bookmarks")
	return count, err
}
