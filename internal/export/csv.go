package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"pocketcasts-mirror/internal/models"
)

// WriteHistoryCSV streams the play history as CSV: one row per played
// episode in the given order.
func WriteHistoryCSV(w io.Writer, episodes []models.Episode) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"episode_uuid", "podcast_title", "title", "played_at", "played_up_to", "duration", "starred"}); err != nil {
		return err
	}
	for _, e := range episodes {
		playedAt := ""
		if e.PlayedAt != nil {
			playedAt = e.PlayedAt.UTC().Format(time.RFC3339)
		}
		row := []string{
			e.UUID,
			e.PodcastTitle,
			e.Title,
			playedAt,
			strconv.Itoa(e.PlayedUpTo),
			strconv.Itoa(e.Duration),
			strconv.FormatBool(e.Starred),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
