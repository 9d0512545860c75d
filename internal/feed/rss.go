package feed

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/eduncan911/podcast"
	"pocketcasts-mirror/internal/models"
)

func getBaseURL(r *http.Request) string {
	if baseURL := os.Getenv("BASE_URL"); baseURL != "" {
		return baseURL
	}

	scheme := r.URL.Scheme
	if scheme == "" {
		scheme = "https"
		if r.Header.Get("X-Forwarded-Proto") != "" {
			scheme = r.Header.Get("X-Forwarded-Proto")
		}
	}

	return fmt.Sprintf("%s://%s", scheme, r.Host)
}

// GenerateHistoryRSS renders recently played episodes as an RSS feed, most
// recent play first.
func GenerateHistoryRSS(episodes []models.Episode, r *http.Request) (string, error) {
	baseURL := getBaseURL(r)

	now := time.Now()
	p := podcast.New(
		"Listen History",
		fmt.Sprintf("%s/rss/history", baseURL),
		"Episodes played on the mirrored Pocket Casts account.",
		&now, &now,
	)

	for _, episode := range episodes {
		item := podcast.Item{
			Title:       fmt.Sprintf("%s: %s", episode.PodcastTitle, episode.Title),
			Description: fmt.Sprintf("Played at %s", episode.PlayedAt.Format(time.RFC1123)),
			Link:        episode.URL,
			PubDate:     episode.PlayedAt,
		}
		if episode.URL != "" {
			item.AddEnclosure(episode.URL, podcast.MP3, episode.FileSize)
		}
		if _, err := p.AddItem(item); err != nil {
			return "", err
		}
	}

	return p.String(), nil
}
