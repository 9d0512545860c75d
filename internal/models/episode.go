package models

import "time"

// Playing status values as reported by the Pocket Casts sync API.
const (
	PlayingStatusNotStarted = 1
	PlayingStatusInProgress = 2
	PlayingStatusPlayed     = 3
)

// Episode is a mirrored episode row. Rows are never hard-deleted; a remote
// removal only flips IsDeleted.
type Episode struct {
	UUID          string     `db:"uuid"`
	PodcastUUID   string     `db:"podcast_uuid"`
	PodcastTitle  string     `db:"podcast_title"`
	Title         string     `db:"title"`
	URL           string     `db:"url"`
	PublishedAt   *time.Time `db:"published_at"`
	Duration      int        `db:"duration"`
	FileType      string     `db:"file_type"`
	FileSize      int64      `db:"file_size"`
	EpisodeType   string     `db:"episode_type"`
	Season        int        `db:"season"`
	Number        int        `db:"number"`
	PlayingStatus int        `db:"playing_status"`
	PlayedUpTo    int        `db:"played_up_to"`
	Starred       bool       `db:"starred"`
	IsDeleted     bool       `db:"is_deleted"`
	PlayedAt      *time.Time `db:"played_at"`
	RawJSON       string     `db:"raw_json"`
	CreatedAt     time.Time  `db:"created_at"`
}

// EpisodeSyncUpdate carries only the mutable sync fields applied to an
// already-stored episode. Title, url and duration are never overwritten on
// update.
type EpisodeSyncUpdate struct {
	UUID          string `db:"uuid"`
	PlayingStatus int    `db:"playing_status"`
	PlayedUpTo    int    `db:"played_up_to"`
	Starred       bool   `db:"starred"`
	IsDeleted     bool   `db:"is_deleted"`
}
