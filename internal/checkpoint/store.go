// Package checkpoint persists crawl progress so an interrupted run can
// resume without rediscovering already-fetched pages. Two backends share one
// contract: a JSON single-file snapshot (json_store.go) and a DuckDB-backed
// relational store (relational_store.go), both in this package, the latter
// for runs too large to rewrite wholesale on every commit.
package checkpoint

import (
	"context"
	"path/filepath"
	"strings"
	"time"
)

// Store is the polymorphic checkpoint contract. Both backends implement it
// identically from the scheduler's point of view.
type Store interface {
	Initialize(ctx context.Context) error
	SaveMetadata(ctx context.Context, m Metadata) error
	LoadMetadata(ctx context.Context) (Metadata, bool, error)
	AddPage(ctx context.Context, p PageCheckpoint) error
	GetPage(ctx context.Context, url string) (PageCheckpoint, bool, error)
	HasPage(ctx context.Context, url string) (bool, error)
	GetPageCount(ctx context.Context) (int, error)
	IterPages(ctx context.Context) (<-chan PageCheckpoint, error)
	SaveQueue(ctx context.Context, items []QueueItem) error
	GetQueue(ctx context.Context) ([]QueueItem, error)
	Commit(ctx context.Context) error
	Close() error
}

// ShouldRedownload centralizes §4.8's invalidation rule so both backends
// (and their tests) apply identical semantics instead of duplicating it.
// It returns true iff the URL is unknown, its TTL has lapsed, or the
// current run's config_hash no longer matches what was stored.
func ShouldRedownload(page PageCheckpoint, found bool, ttlDays *int, currentConfigHash, storedConfigHash string) bool {
	if !found {
		return true
	}
	if ttlDays != nil {
		age := time.Since(page.LastScraped)
		if age > time.Duration(*ttlDays)*24*time.Hour {
			return true
		}
	}
	if currentConfigHash != storedConfigHash {
		return true
	}
	return false
}

// NewStore picks a backend by file extension (.db/.sqlite/.sqlite3 →
// relational, else JSON) unless backendOverride forces one explicitly.
// backendOverride accepts "json", "relational", or "" for auto-detection.
func NewStore(path string, backendOverride string) (Store, error) {
	backend := backendOverride
	if backend == "" {
		backend = detectBackend(path)
	}

	switch backend {
	case "relational":
		return newRelationalStore(path)
	default:
		return NewJSONStore(path), nil
	}
}

func detectBackend(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".db", ".sqlite", ".sqlite3":
		return "relational"
	default:
		return "json"
	}
}
