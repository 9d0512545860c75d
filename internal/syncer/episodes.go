package syncer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"pocketcasts-mirror/internal/db"
	"pocketcasts-mirror/internal/models"
	"pocketcasts-mirror/internal/pocketcasts"
)

// EpisodeFetcher is the slice of the remote client the episode classifier
// needs: the user's per-podcast playback state plus the public cache
// metadata used to materialize new rows.
type EpisodeFetcher interface {
	FetchEpisodeSyncData(ctx context.Context, podcastUUID string) ([]pocketcasts.EpisodeSyncRecord, error)
	FetchEpisodeCacheMetadata(ctx context.Context, podcastUUID string) (*pocketcasts.PodcastCache, error)
}

// PodcastContext is the podcast-level information passed down into episode
// rows created during a sync.
type PodcastContext struct {
	UUID   string
	Title  string
	Author string
}

// SyncPodcastEpisodes mirrors one podcast's episode state. Remote records
// with no evidence of interaction are ignored entirely. Interacted records
// already in the store get a sync-field update; unknown ones are resolved
// against the cache metadata and inserted, or silently dropped when the
// cache has no entry for them (an episode cannot be materialized without
// metadata). Updates are written before inserts; empty batches are no-ops.
func SyncPodcastEpisodes(ctx context.Context, client EpisodeFetcher, podcast PodcastContext) error {
	// The two remote reads are independent, fetch them together.
	type cacheResult struct {
		cache *pocketcasts.PodcastCache
		err   error
	}
	cacheCh := make(chan cacheResult, 1)
	go func() {
		cache, err := client.FetchEpisodeCacheMetadata(ctx, podcast.UUID)
		cacheCh <- cacheResult{cache, err}
	}()

	records, err := client.FetchEpisodeSyncData(ctx, podcast.UUID)
	cacheRes := <-cacheCh
	if err != nil {
		return fmt.Errorf("failed to fetch episode sync data for podcast %s: %w", podcast.UUID, err)
	}
	if cacheRes.err != nil {
		return fmt.Errorf("failed to fetch cache metadata for podcast %s: %w", podcast.UUID, cacheRes.err)
	}

	var interacted []pocketcasts.EpisodeSyncRecord
	for _, r := range records {
		if r.PlayingStatus > 0 || r.PlayedUpTo > 0 {
			interacted = append(interacted, r)
		}
	}
	if len(interacted) == 0 {
		return nil
	}

	uuids := make([]string, len(interacted))
	for i, r := range interacted {
		uuids[i] = r.UUID
	}
	existing, err := db.ExistingEpisodeUUIDs(uuids)
	if err != nil {
		return fmt.Errorf("failed to check existing episodes for podcast %s: %w", podcast.UUID, err)
	}
	existingSet := make(map[string]bool, len(existing))
	for _, uuid := range existing {
		existingSet[uuid] = true
	}

	cacheByUUID := make(map[string]pocketcasts.CacheEpisode, len(cacheRes.cache.Podcast.Episodes))
	for _, ep := range cacheRes.cache.Podcast.Episodes {
		cacheByUUID[ep.UUID] = ep
	}

	var updates []models.EpisodeSyncUpdate
	var inserts []models.Episode
	for _, r := range interacted {
		if existingSet[r.UUID] {
			updates = append(updates, models.EpisodeSyncUpdate{
				UUID:          r.UUID,
				PlayingStatus: r.PlayingStatus,
				PlayedUpTo:    r.PlayedUpTo,
				Starred:       r.Starred,
				IsDeleted:     r.IsDeleted,
			})
			continue
		}
		meta, ok := cacheByUUID[r.UUID]
		if !ok {
			log.Printf("Skipping episode %s of podcast %s: no cache metadata", r.UUID, podcast.UUID)
			continue
		}
		inserts = append(inserts, buildEpisodeInsert(r, meta, podcast))
	}

	if err := db.UpdateEpisodeSyncFields(updates); err != nil {
		return fmt.Errorf("failed to update episodes for podcast %s: %w", podcast.UUID, err)
	}
	if err := db.InsertEpisodes(inserts); err != nil {
		return fmt.Errorf("failed to insert episodes for podcast %s: %w", podcast.UUID, err)
	}
	return nil
}

func buildEpisodeInsert(r pocketcasts.EpisodeSyncRecord, meta pocketcasts.CacheEpisode, podcast PodcastContext) models.Episode {
	duration := meta.Duration
	if duration == 0 {
		duration = r.Duration
	}
	episodeType := meta.Type
	if episodeType == "" {
		episodeType = "full"
	}
	var publishedAt *time.Time
	if meta.Published != "" {
		if ts, err := time.Parse(time.RFC3339, meta.Published); err == nil {
			ts = ts.UTC()
			publishedAt = &ts
		}
	}
	raw, _ := json.Marshal(r)

	return models.Episode{
		UUID:          r.UUID,
		PodcastUUID:   podcast.UUID,
		PodcastTitle:  podcast.Title,
		Title:         meta.Title,
		URL:           meta.URL,
		PublishedAt:   publishedAt,
		Duration:      duration,
		FileType:      meta.FileType,
		FileSize:      meta.FileSize,
		EpisodeType:   episodeType,
		Season:        meta.Season,
		Number:        meta.Number,
		PlayingStatus: r.PlayingStatus,
		PlayedUpTo:    r.PlayedUpTo,
		Starred:       r.Starred,
		IsDeleted:     r.IsDeleted,
		RawJSON:       string(raw),
	}
}
