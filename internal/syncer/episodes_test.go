package syncer

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pocketcasts-mirror/internal/pocketcasts"
	"pocketcasts-mirror/internal/test"
)

// fakeEpisodeFetcher serves scripted sync records and cache metadata for a
// single podcast.
type fakeEpisodeFetcher struct {
	records []pocketcasts.EpisodeSyncRecord
	cache   *pocketcasts.PodcastCache
	syncErr error
}

func (f *fakeEpisodeFetcher) FetchEpisodeSyncData(ctx context.Context, podcastUUID string) ([]pocketcasts.EpisodeSyncRecord, error) {
	return f.records, f.syncErr
}

func (f *fakeEpisodeFetcher) FetchEpisodeCacheMetadata(ctx context.Context, podcastUUID string) (*pocketcasts.PodcastCache, error) {
	if f.cache != nil {
		return f.cache, nil
	}
	return &pocketcasts.PodcastCache{}, nil
}

func cacheWith(episodes ...pocketcasts.CacheEpisode) *pocketcasts.PodcastCache {
	cache := &pocketcasts.PodcastCache{EpisodeCount: len(episodes)}
	cache.Podcast.Episodes = episodes
	return cache
}

var testPodcast = PodcastContext{UUID: "pod-1", Title: "Test Podcast", Author: "Author"}

func TestSyncPodcastEpisodesPartitionsUpdatesAndInserts(t *testing.T) {
	_, mock := test.NewMockDB(t)

	fetcher := &fakeEpisodeFetcher{
		records: []pocketcasts.EpisodeSyncRecord{
			{UUID: "ep-existing", PlayingStatus: 2, PlayedUpTo: 120},
			{UUID: "ep-new", PlayingStatus: 3, PlayedUpTo: 1800, Starred: true},
			{UUID: "ep-untouched", PlayingStatus: 0, PlayedUpTo: 0},
			{UUID: "ep-no-cache", PlayedUpTo: 30},
		},
		cache: cacheWith(pocketcasts.CacheEpisode{
			UUID:      "ep-new",
			Title:     "A New Episode",
			URL:       "https://example.com/ep-new.mp3",
			Published: "2024-01-15T06:00:00Z",
			Duration:  1900,
		}),
	}

	// Only the three interacted records reach the existence check;
	// ep-untouched never touches the store.
	existingRows := sqlmock.NewRows([]string{"uuid"}).AddRow("ep-existing")
	mock.ExpectQuery(`SELECT uuid FROM episodes WHERE uuid = ANY\(\$1\)`).WillReturnRows(existingRows)

	// One sync-field update for the known row, then one insert batch for the
	// new row. ep-no-cache has no metadata and is dropped.
	mock.ExpectExec(`UPDATE episodes`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO episodes`).WillReturnResult(sqlmock.NewResult(0, 1))

	err := SyncPodcastEpisodes(context.Background(), fetcher, testPodcast)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSyncPodcastEpisodesNoInteractionSkipsStore(t *testing.T) {
	_, mock := test.NewMockDB(t)

	fetcher := &fakeEpisodeFetcher{
		records: []pocketcasts.EpisodeSyncRecord{
			{UUID: "ep-1"},
			{UUID: "ep-2"},
		},
	}

	err := SyncPodcastEpisodes(context.Background(), fetcher, testPodcast)
	require.NoError(t, err)
	// No queries at all: the interaction filter removed everything.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSyncPodcastEpisodesOnlyInsertsWhenNothingExists(t *testing.T) {
	_, mock := test.NewMockDB(t)

	fetcher := &fakeEpisodeFetcher{
		records: []pocketcasts.EpisodeSyncRecord{
			{UUID: "ep-new", PlayingStatus: 3, Duration: 777},
		},
		cache: cacheWith(pocketcasts.CacheEpisode{UUID: "ep-new", Title: "Only Episode"}),
	}

	mock.ExpectQuery(`SELECT uuid FROM episodes`).WillReturnRows(sqlmock.NewRows([]string{"uuid"}))
	// No update batch is issued when there is nothing to update.
	mock.ExpectExec(`INSERT INTO episodes`).WillReturnResult(sqlmock.NewResult(0, 1))

	err := SyncPodcastEpisodes(context.Background(), fetcher, testPodcast)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSyncPodcastEpisodesFetchErrorIsFatal(t *testing.T) {
	test.NewMockDB(t)

	fetcher := &fakeEpisodeFetcher{
		syncErr: &pocketcasts.APIError{StatusCode: 502, Resource: "user/podcast/episodes pod-1"},
	}

	err := SyncPodcastEpisodes(context.Background(), fetcher, testPodcast)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pod-1")
}

func TestBuildEpisodeInsertDefaults(t *testing.T) {
	record := pocketcasts.EpisodeSyncRecord{UUID: "ep-1", PlayingStatus: 2, PlayedUpTo: 45, Duration: 600}
	meta := pocketcasts.CacheEpisode{UUID: "ep-1", Title: "Episode One", URL: "https://example.com/1.mp3"}

	episode := buildEpisodeInsert(record, meta, testPodcast)

	// Cache has no duration, fall back to the sync record's.
	assert.Equal(t, 600, episode.Duration)
	assert.Equal(t, "full", episode.EpisodeType)
	assert.Equal(t, "", episode.FileType)
	assert.Equal(t, int64(0), episode.FileSize)
	assert.Equal(t, 0, episode.Season)
	assert.Equal(t, 0, episode.Number)
	assert.Nil(t, episode.PublishedAt)
	assert.Equal(t, "Test Podcast", episode.PodcastTitle)
	assert.Contains(t, episode.RawJSON, `"uuid":"ep-1"`)
}
