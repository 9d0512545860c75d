package syncer

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pocketcasts-mirror/internal/models"
	"pocketcasts-mirror/internal/pocketcasts"
	"pocketcasts-mirror/internal/test"
)

type historyCall struct {
	year      int
	countOnly bool
}

// fakeHistoryFetcher scripts per-year responses and records every call.
// Years not present in responses report a zero count.
type fakeHistoryFetcher struct {
	responses map[int]*pocketcasts.HistoryYearResponse
	errs      map[int]error
	calls     []historyCall
}

func (f *fakeHistoryFetcher) FetchHistoryYear(ctx context.Context, year int, countOnly bool) (*pocketcasts.HistoryYearResponse, error) {
	f.calls = append(f.calls, historyCall{year: year, countOnly: countOnly})
	if err, ok := f.errs[year]; ok {
		return nil, err
	}
	if resp, ok := f.responses[year]; ok {
		return resp, nil
	}
	return &pocketcasts.HistoryYearResponse{Count: 0}, nil
}

func yearResponse(changes ...pocketcasts.HistoryChange) *pocketcasts.HistoryYearResponse {
	resp := &pocketcasts.HistoryYearResponse{Count: len(changes)}
	resp.History.Changes = changes
	return resp
}

func playChange(episode, modifiedAt string) pocketcasts.HistoryChange {
	return pocketcasts.HistoryChange{Action: 1, Episode: episode, ModifiedAt: modifiedAt}
}

func TestMergeHistoryStopsAtFirstEmptyYear(t *testing.T) {
	thisYear := time.Now().Year()
	fetcher := &fakeHistoryFetcher{
		responses: map[int]*pocketcasts.HistoryYearResponse{
			thisYear: yearResponse(playChange("ep-1", "1700000000000")),
		},
	}

	entries, err := MergeHistory(context.Background(), fetcher)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	// One probe plus one full fetch for the populated year, then a single
	// probe for the first empty year and nothing older.
	expected := []historyCall{
		{year: thisYear, countOnly: true},
		{year: thisYear, countOnly: false},
		{year: thisYear - 1, countOnly: true},
	}
	assert.Equal(t, expected, fetcher.calls)
}

func TestMergeHistoryFirstOccurrenceWinsAcrossYears(t *testing.T) {
	thisYear := time.Now().Year()
	fetcher := &fakeHistoryFetcher{
		responses: map[int]*pocketcasts.HistoryYearResponse{
			thisYear:     yearResponse(playChange("ep-1", "1700000000000")),
			thisYear - 1: yearResponse(playChange("ep-1", "1600000000000"), playChange("ep-2", "1610000000000")),
		},
	}

	entries, err := MergeHistory(context.Background(), fetcher)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	byUUID := make(map[string]time.Time)
	for _, e := range entries {
		byUUID[e.EpisodeUUID] = e.PlayedAt
	}
	// ep-1 keeps the newer year's timestamp.
	assert.Equal(t, time.UnixMilli(1700000000000).UTC(), byUUID["ep-1"])
	assert.Equal(t, time.UnixMilli(1610000000000).UTC(), byUUID["ep-2"])
}

func TestMergeHistoryFirstOccurrenceWinsWithinYear(t *testing.T) {
	// Two plays of the same episode in one change list: the first entry in
	// returned order wins even though the second has a greater modifiedAt.
	thisYear := time.Now().Year()
	fetcher := &fakeHistoryFetcher{
		responses: map[int]*pocketcasts.HistoryYearResponse{
			thisYear: yearResponse(
				playChange("ep-1", "1650000000000"),
				playChange("ep-1", "1700000000000"),
			),
		},
	}

	entries, err := MergeHistory(context.Background(), fetcher)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, time.UnixMilli(1650000000000).UTC(), entries[0].PlayedAt)
}

func TestMergeHistoryDiscardsNonPlayActions(t *testing.T) {
	thisYear := time.Now().Year()
	fetcher := &fakeHistoryFetcher{
		responses: map[int]*pocketcasts.HistoryYearResponse{
			thisYear: yearResponse(
				pocketcasts.HistoryChange{Action: 2, Episode: "ep-skip", ModifiedAt: "1700000000000"},
				playChange("ep-1", "1700000000001"),
				pocketcasts.HistoryChange{Action: 3, Episode: "ep-other", ModifiedAt: "1700000000002"},
			),
		},
	}

	entries, err := MergeHistory(context.Background(), fetcher)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "ep-1", entries[0].EpisodeUUID)
}

func TestMergeHistoryMissingChangesMeansZero(t *testing.T) {
	// A year can report a positive count and still return no changes array.
	thisYear := time.Now().Year()
	noChanges := &pocketcasts.HistoryYearResponse{Count: 3}
	fetcher := &fakeHistoryFetcher{
		responses: map[int]*pocketcasts.HistoryYearResponse{
			thisYear:     noChanges,
			thisYear - 1: yearResponse(playChange("ep-1", "1600000000000")),
		},
	}

	entries, err := MergeHistory(context.Background(), fetcher)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "ep-1", entries[0].EpisodeUUID)
}

func TestMergeHistoryFetchErrorAborts(t *testing.T) {
	thisYear := time.Now().Year()
	fetcher := &fakeHistoryFetcher{
		errs: map[int]error{
			thisYear: &pocketcasts.APIError{StatusCode: 500, Resource: "history/year", Year: thisYear},
		},
	}

	entries, err := MergeHistory(context.Background(), fetcher)
	assert.Nil(t, entries)
	require.Error(t, err)
	assert.Contains(t, err.Error(), fmt.Sprintf("%d", thisYear))
}

func TestMergeHistoryScenario(t *testing.T) {
	// {y: ep-1 @ 1700000000000}, {y-1: ep-1 @ 1600000000000}, {y-2: empty}
	// merges to a single entry at the newer timestamp.
	thisYear := time.Now().Year()
	fetcher := &fakeHistoryFetcher{
		responses: map[int]*pocketcasts.HistoryYearResponse{
			thisYear:     yearResponse(playChange("ep-1", "1700000000000")),
			thisYear - 1: yearResponse(playChange("ep-1", "1600000000000")),
		},
	}

	entries, err := MergeHistory(context.Background(), fetcher)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.HistoryEntry{
		EpisodeUUID: "ep-1",
		PlayedAt:    time.UnixMilli(1700000000000).UTC(),
	}, entries[0])
}

func TestUpdatePlayedTimestampsEmptyInput(t *testing.T) {
	_, mock := test.NewMockDB(t)

	result, err := UpdatePlayedTimestamps(nil)
	require.NoError(t, err)
	assert.Equal(t, UpdateResult{Updated: 0, Skipped: 0}, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePlayedTimestampsMonotonic(t *testing.T) {
	_, mock := test.NewMockDB(t)

	march := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	september := time.Date(2024, 9, 15, 0, 0, 0, 0, time.UTC)

	// March applies, September advances, replaying March is a no-op.
	mock.ExpectExec(`SET played_at = \$1`).WithArgs(march, "ep-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`SET played_at = \$1`).WithArgs(september, "ep-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`SET played_at = \$1`).WithArgs(march, "ep-1").WillReturnResult(sqlmock.NewResult(0, 0))

	result, err := UpdatePlayedTimestamps([]models.HistoryEntry{{EpisodeUUID: "ep-1", PlayedAt: march}})
	require.NoError(t, err)
	assert.Equal(t, UpdateResult{Updated: 1}, result)

	result, err = UpdatePlayedTimestamps([]models.HistoryEntry{{EpisodeUUID: "ep-1", PlayedAt: september}})
	require.NoError(t, err)
	assert.Equal(t, UpdateResult{Updated: 1}, result)

	result, err = UpdatePlayedTimestamps([]models.HistoryEntry{{EpisodeUUID: "ep-1", PlayedAt: march}})
	require.NoError(t, err)
	assert.Equal(t, UpdateResult{Skipped: 1}, result)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePlayedTimestampsUnknownEpisodeSkipped(t *testing.T) {
	_, mock := test.NewMockDB(t)

	playedAt := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(`SET played_at = \$1`).WithArgs(playedAt, "ep-missing").WillReturnResult(sqlmock.NewResult(0, 0))

	result, err := UpdatePlayedTimestamps([]models.HistoryEntry{{EpisodeUUID: "ep-missing", PlayedAt: playedAt}})
	require.NoError(t, err)
	assert.Equal(t, UpdateResult{Updated: 0, Skipped: 1}, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}
