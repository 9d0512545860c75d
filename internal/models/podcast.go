package models

import "time"

// Podcast represents a subscription mirrored from the remote account.
// DeletedAt is null while the subscription is current; it is set when the
// podcast disappears from the remote list and cleared if it comes back.
type Podcast struct {
	UUID         string     `db:"uuid"`
	Title        string     `db:"title"`
	Author       string     `db:"author"`
	Description  string     `db:"description"`
	URL          string     `db:"url"`
	SortPosition int        `db:"sort_position"`
	DeletedAt    *time.Time `db:"deleted_at"`
	CreatedAt    time.Time  `db:"created_at"`
}
