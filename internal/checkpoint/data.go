package checkpoint

import "time"

// PageCheckpoint is the persisted record for a single crawled page, enough
// to decide should_redownload without re-fetching.
type PageCheckpoint struct {
	URL         string    `json:"url"`
	ContentHash string    `json:"content_hash"`
	LastScraped time.Time `json:"last_scraped"`
	StatusCode  int       `json:"status_code"`
	FilePath    string    `json:"file_path"`
}

// Metadata is the run-level envelope stored alongside pages: version for
// forward compatibility, the config fingerprint used by should_redownload's
// invalidation rule, and the last known stats snapshot.
type Metadata struct {
	Version     int            `json:"version"`
	ConfigName  string         `json:"config_name"`
	ConfigHash  string         `json:"config_hash"`
	CreatedAt   time.Time      `json:"created_at"`
	LastUpdated time.Time      `json:"last_updated"`
	Stats       map[string]any `json:"stats"`
}

// QueueItem is a single pending frontier entry persisted so a resumed run
// does not have to rediscover it by re-crawling ancestor pages.
type QueueItem struct {
	URL      string `json:"url"`
	Referrer string `json:"referrer"`
	Depth    int    `json:"depth"`
	Position int    `json:"position"`
}
