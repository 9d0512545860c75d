package models

import "time"

// SyncProgress tracks one fan-out run: total podcasts enqueued and how many
// per-podcast tasks have finished. The last finisher triggers the history
// sync.
type SyncProgress struct {
	RunID     string    `db:"run_id"`
	Total     int       `db:"total"`
	Completed int       `db:"completed"`
	StartedAt time.Time `db:"started_at"`
}
