package models

import "time"

// Bookmark is a remote bookmark. PodcastUUID and EpisodeUUID are soft
// references; the rows they point at may not exist locally. Same
// soft-delete/restore lifecycle as Podcast.
type Bookmark struct {
	BookmarkUUID    string     `db:"bookmark_uuid"`
	PodcastUUID     string     `db:"podcast_uuid"`
	EpisodeUUID     string     `db:"episode_uuid"`
	Title           string     `db:"title"`
	Time            int        `db:"time"`
	CreatedAtRemote *time.Time `db:"created_at_remote"`
	DeletedAt       *time.Time `db:"deleted_at"`
	CreatedAt       time.Time  `db:"created_at"`
}
