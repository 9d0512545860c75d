package models

import "time"

// HistoryEntry is the in-memory result of merging the year-bucketed listen
// history: one entry per episode at its most recent play. It is never stored
// directly, only fed to the played-at updater.
type HistoryEntry struct {
	EpisodeUUID string
	PlayedAt    time.Time
}
