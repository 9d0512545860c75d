package syncer

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"pocketcasts-mirror/internal/db"
	"pocketcasts-mirror/internal/models"
	"pocketcasts-mirror/internal/pocketcasts"
)

// The history API buckets changes by calendar year. Pocket Casts launched in
// 2010, so no account can hold older data.
const historyFloorYear = 2010

// Change-list action code for a play event. Other codes (skips and the like)
// never enter the merged history.
const actionPlay = 1

// HistoryFetcher is the slice of the remote client the history merger needs.
type HistoryFetcher interface {
	FetchHistoryYear(ctx context.Context, year int, countOnly bool) (*pocketcasts.HistoryYearResponse, error)
}

// MergeHistory walks the year buckets newest-first and builds one entry per
// episode: the play timestamp from the first year (and first list position)
// the episode was encountered in. History is append-only, so the first year
// reporting a zero count ends the walk; everything older must be empty too.
//
// The first occurrence within a year's change list wins even if a later
// entry carries a greater modifiedAt. That mirrors the remote contract as
// observed; do not replace it with a max.
func MergeHistory(ctx context.Context, client HistoryFetcher) ([]models.HistoryEntry, error) {
	playedAt := make(map[string]time.Time)

	for year := time.Now().Year(); year >= historyFloorYear; year-- {
		probe, err := client.FetchHistoryYear(ctx, year, true)
		if err != nil {
			return nil, fmt.Errorf("history count probe for %d failed: %w", year, err)
		}
		if probe.Count == 0 {
			break
		}

		full, err := client.FetchHistoryYear(ctx, year, false)
		if err != nil {
			return nil, fmt.Errorf("history fetch for %d failed: %w", year, err)
		}
		// A response without history.changes means zero changes.
		for _, change := range full.History.Changes {
			if change.Action != actionPlay {
				continue
			}
			if _, seen := playedAt[change.Episode]; seen {
				continue
			}
			ms, err := strconv.ParseInt(change.ModifiedAt, 10, 64)
			if err != nil {
				log.Printf("Skipping history entry for episode %s: bad modifiedAt %q", change.Episode, change.ModifiedAt)
				continue
			}
			playedAt[change.Episode] = time.UnixMilli(ms).UTC()
		}
	}

	entries := make([]models.HistoryEntry, 0, len(playedAt))
	for uuid, ts := range playedAt {
		entries = append(entries, models.HistoryEntry{EpisodeUUID: uuid, PlayedAt: ts})
	}
	return entries, nil
}

// UpdateResult counts the outcome of one timestamp-update pass. Every
// candidate lands in exactly one bucket.
type UpdateResult struct {
	Updated int
	Skipped int
}

// UpdatePlayedTimestamps applies merged history entries to the store. An
// episode's played_at only ever moves forward: candidates older than (or
// equal to) the stored value are skipped, as are episodes the store has
// never seen. Empty input returns {0, 0} without touching the store.
func UpdatePlayedTimestamps(entries []models.HistoryEntry) (UpdateResult, error) {
	var result UpdateResult
	for _, entry := range entries {
		updated, err := db.UpdateEpisodePlayedAt(entry.EpisodeUUID, entry.PlayedAt)
		if err != nil {
			return result, fmt.Errorf("failed to update played_at for episode %s: %w", entry.EpisodeUUID, err)
		}
		if updated {
			result.Updated++
		} else {
			result.Skipped++
		}
	}
	return result, nil
}
