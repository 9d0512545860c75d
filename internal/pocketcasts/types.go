package pocketcasts

// Response shapes for the Pocket Casts endpoints we call. The API is loosely
// typed on the wire; absent fields decode to zero values and are defaulted
// explicitly by callers rather than treated as errors.

// HistoryChange is one entry of a year's listen-history change list.
// Action 1 is a play event; other codes (skips etc.) are ignored by the
// history merger. ModifiedAt is an epoch-milliseconds string.
type HistoryChange struct {
	Action     int    `json:"action"`
	Episode    string `json:"episode"`
	Podcast    string `json:"podcast"`
	Title      string `json:"title"`
	ModifiedAt string `json:"modifiedAt"`
	Published  string `json:"published"`
}

// HistoryYearResponse is the /history/year response. With count=true only
// Count is populated. A missing history.changes array decodes to nil and
// means zero changes.
type HistoryYearResponse struct {
	Count   int `json:"count"`
	History struct {
		Changes []HistoryChange `json:"changes"`
	} `json:"history"`
}

// EpisodeSyncRecord is one per-podcast episode sync entry carrying the
// user's playback state for that episode.
type EpisodeSyncRecord struct {
	UUID          string `json:"uuid"`
	PlayingStatus int    `json:"playingStatus"`
	PlayedUpTo    int    `json:"playedUpTo"`
	IsDeleted     bool   `json:"isDeleted"`
	Starred       bool   `json:"starred"`
	Duration      int    `json:"duration"`
}

type episodeSyncResponse struct {
	Episodes []EpisodeSyncRecord `json:"episodes"`
}

// CacheEpisode is the public cache server's metadata for one episode.
type CacheEpisode struct {
	UUID      string `json:"uuid"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	Published string `json:"published"`
	Duration  int    `json:"duration"`
	FileType  string `json:"fileType"`
	FileSize  int64  `json:"fileSize"`
	Type      string `json:"type"`
	Season    int    `json:"season"`
	Number    int    `json:"number"`
}

// PodcastCache is the cache server's full-podcast document.
type PodcastCache struct {
	EpisodeCount int `json:"episodeCount"`
	Podcast      struct {
		UUID     string         `json:"uuid"`
		Title    string         `json:"title"`
		Author   string         `json:"author"`
		Episodes []CacheEpisode `json:"episodes"`
	} `json:"podcast"`
}

// RemotePodcast is one entry of the account's current subscription list.
type RemotePodcast struct {
	UUID         string `json:"uuid"`
	Title        string `json:"title"`
	Author       string `json:"author"`
	Description  string `json:"description"`
	URL          string `json:"url"`
	SortPosition int    `json:"sortPosition"`
}

type podcastListResponse struct {
	Podcasts []RemotePodcast `json:"podcasts"`
}

// RemoteBookmark is one entry of the account's current bookmark list.
type RemoteBookmark struct {
	BookmarkUUID string `json:"bookmarkUuid"`
	PodcastUUID  string `json:"podcastUuid"`
	EpisodeUUID  string `json:"episodeUuid"`
	Title        string `json:"title"`
	Time         int    `json:"time"`
	CreatedAt    string `json:"createdAt"`
}

type bookmarkListResponse struct {
	Bookmarks []RemoteBookmark `json:"bookmarks"`
}
