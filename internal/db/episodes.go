package db

import (
	"time"

	"github.com/lib/pq"
	"pocketcasts-mirror/internal/models"
)

// ExistingEpisodeUUIDs returns which of the given episode ids are already
// stored. An empty input short-circuits without touching the database.
func ExistingEpisodeUUIDs(uuids []string) ([]string, error) {
	if len(uuids) == 0 {
		return nil, nil
	}
	var existing []string
	err := DB.Select(&existing, "SELECT uuid FROM episodes WHERE uuid = ANY($1)", pq.Array(uuids))
	return existing, err
}

// InsertEpisodes inserts a batch of fully-materialized episode rows. The
// insert is idempotent so a redelivered task can safely replay it.
func InsertEpisodes(episodes []models.Episode) error {
	if len(episodes) == 0 {
		return nil
	}
	_, err := DB.NamedExec(`
		INSERT INTO episodes (
			uuid, podcast_uuid, podcast_title, title, url, published_at,
			duration, file_type, file_size, episode_type, season, number,
			playing_status, played_up_to, starred, is_deleted, raw_json
		) VALUES (
			:uuid, :podcast_uuid, :podcast_title, :title, :url, :published_at,
			:duration, :file_type, :file_size, :episode_type, :season, :number,
			:playing_status, :played_up_to, :starred, :is_deleted, :raw_json
		)
		ON CONFLICT (uuid) DO NOTHING`,
		episodes)
	return err
}

// UpdateEpisodeSyncFields applies the mutable sync fields to existing rows.
// Title, url and duration are left untouched.
func UpdateEpisodeSyncFields(updates []models.EpisodeSyncUpdate) error {
	for _, u := range updates {
		_, err := DB.NamedExec(`
			UPDATE episodes
			SET playing_status = :playing_status, played_up_to = :played_up_to, starred = :starred, is_deleted = :is_deleted
			WHERE uuid = :uuid`,
			u)
		if err != nil {
			return err
		}
	}
	return nil
}

// UpdateEpisodePlayedAt moves an episode's played_at forward. The timestamp
// only ever advances: the row is untouched when the stored value is equal or
// newer, or when the episode does not exist. Reports whether a row changed.
func UpdateEpisodePlayedAt(uuid string, playedAt time.Time) (bool, error) {
	res, err := DB.Exec(`
		UPDATE episodes
		SET played_at = $1
		WHERE uuid = $2 AND (played_at IS NULL OR played_at < $1)`,
		playedAt, uuid)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// GetPlayedEpisodes returns every episode with a recorded play, most recent
// first.
func GetPlayedEpisodes() ([]models.Episode, error) {
	var episodes []models.Episode
	err := DB.Select(&episodes, "SELECT * FROM episodes WHERE played_at IS NOT NULL ORDER BY played_at DESC")
	return episodes, err
}

// GetRecentlyPlayedEpisodes returns the most recent plays up to limit.
func GetRecentlyPlayedEpisodes(limit int) ([]models.Episode, error) {
	var episodes []models.Episode
	err := DB.Select(&episodes, "SELECT * FROM episodes WHERE played_at IS NOT NULL ORDER BY played_at DESC LIMIT $1", limit)
	return episodes, err
}
