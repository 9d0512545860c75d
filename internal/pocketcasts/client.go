package pocketcasts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

const (
	defaultAPIBase   = "https://api.pocketcasts.com"
	defaultCacheBase = "https://podcast-api.pocketcasts.com"
)

// APIError is returned for any non-2xx response. The sync pipeline treats it
// as fatal for the current stage and relies on task redelivery for retries.
type APIError struct {
	StatusCode int
	Resource   string
	Year       int
}

func (e *APIError) Error() string {
	if e.Year != 0 {
		return fmt.Sprintf("pocketcasts: %s (year %d) returned status %d", e.Resource, e.Year, e.StatusCode)
	}
	return fmt.Sprintf("pocketcasts: %s returned status %d", e.Resource, e.StatusCode)
}

// Client is a thin typed wrapper over the Pocket Casts API and its public
// podcast cache server.
type Client struct {
	APIBase    string
	CacheBase  string
	Token      string
	HTTPClient *http.Client
}

// NewClient builds a client for the given account token. The base URLs can
// be overridden via POCKETCASTS_API_URL and POCKETCASTS_CACHE_URL.
func NewClient(token string) *Client {
	apiBase := os.Getenv("POCKETCASTS_API_URL")
	if apiBase == "" {
		apiBase = defaultAPIBase
	}
	cacheBase := os.Getenv("POCKETCASTS_CACHE_URL")
	if cacheBase == "" {
		cacheBase = defaultCacheBase
	}
	return &Client{
		APIBase:    apiBase,
		CacheBase:  cacheBase,
		Token:      token,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Login exchanges account credentials for an API token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	body := map[string]string{"email": email, "password": password, "scope": "webplayer"}
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.post(ctx, c.APIBase+"/user/login", body, &resp, "user/login", 0); err != nil {
		return "", err
	}
	return resp.Token, nil
}

// FetchHistoryYear fetches one year's listen-history bucket. With countOnly
// set the server only reports how many changes the year holds, which is much
// cheaper than the full list.
func (c *Client) FetchHistoryYear(ctx context.Context, year int, countOnly bool) (*HistoryYearResponse, error) {
	body := map[string]interface{}{"year": year, "count": countOnly}
	resp := &HistoryYearResponse{}
	if err := c.post(ctx, c.APIBase+"/history/year", body, resp, "history/year", year); err != nil {
		return nil, err
	}
	return resp, nil
}

// FetchEpisodeSyncData fetches the user's playback state for every episode
// of one podcast.
func (c *Client) FetchEpisodeSyncData(ctx context.Context, podcastUUID string) ([]EpisodeSyncRecord, error) {
	body := map[string]string{"uuid": podcastUUID}
	var resp episodeSyncResponse
	if err := c.post(ctx, c.APIBase+"/user/podcast/episodes", body, &resp, "user/podcast/episodes "+podcastUUID, 0); err != nil {
		return nil, err
	}
	return resp.Episodes, nil
}

// FetchEpisodeCacheMetadata fetches episode metadata for one podcast from
// the public cache server. No authentication is required.
func (c *Client) FetchEpisodeCacheMetadata(ctx context.Context, podcastUUID string) (*PodcastCache, error) {
	url := c.CacheBase + "/podcast/full/" + podcastUUID
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build cache request: %w", err)
	}
	cache := &PodcastCache{}
	if err := c.do(req, cache, "podcast/full "+podcastUUID, 0); err != nil {
		return nil, err
	}
	return cache, nil
}

// FetchCurrentPodcasts fetches the account's current subscription list.
func (c *Client) FetchCurrentPodcasts(ctx context.Context) ([]RemotePodcast, error) {
	body := map[string]int{"v": 1}
	var resp podcastListResponse
	if err := c.post(ctx, c.APIBase+"/user/podcast/list", body, &resp, "user/podcast/list", 0); err != nil {
		return nil, err
	}
	return resp.Podcasts, nil
}

// FetchCurrentBookmarks fetches the account's current bookmark list.
func (c *Client) FetchCurrentBookmarks(ctx context.Context) ([]RemoteBookmark, error) {
	var resp bookmarkListResponse
	if err := c.post(ctx, c.APIBase+"/user/bookmark/list", struct{}{}, &resp, "user/bookmark/list", 0); err != nil {
		return nil, err
	}
	return resp.Bookmarks, nil
}

func (c *Client) post(ctx context.Context, url string, body interface{}, out interface{}, resource string, year int) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	return c.do(req, out, resource, year)
}

func (c *Client) do(req *http.Request, out interface{}, resource string, year int) error {
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", resource, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Resource: resource, Year: year}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", resource, err)
	}
	return nil
}
