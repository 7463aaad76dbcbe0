// Package stats accumulates the crawl-wide counters and error-kind
// histogram described by the checkpoint metadata model. It is independent
// of internal/metadata: metadata.ErrorCause is a small, package-agnostic
// classification meant for logging, while the histogram here is keyed by
// the finer-grained symbolic kind callers already carry (TooManyRedirects,
// FileTooLarge, Timeout, ...) so a checkpoint can report exactly what went
// wrong without forcing every pipeline error through a shared taxonomy.
package stats

import (
	"sync"
	"sync/atomic"
)

// Kind is the symbolic name under which an error contributes to the
// histogram. Callers define their own constants; Collector treats Kind as
// an opaque map key.
type Kind string

// Collector is the single source of truth for crawl progress counters. All
// fields are safe for concurrent use by the worker pool.
type Collector struct {
	pagesCrawled     atomic.Int64
	pagesFailed      atomic.Int64
	assetsDownloaded atomic.Int64
	assetsFailed     atomic.Int64
	bytesDownloaded  atomic.Int64
	skippedExisting  atomic.Int64
	pluginErrors     atomic.Int64

	mu        sync.Mutex
	histogram map[Kind]int64
}

func NewCollector() *Collector {
	return &Collector{histogram: make(map[Kind]int64)}
}

func (c *Collector) IncPagesCrawled()       { c.pagesCrawled.Add(1) }
func (c *Collector) IncPagesFailed()        { c.pagesFailed.Add(1) }
func (c *Collector) IncAssetsDownloaded()   { c.assetsDownloaded.Add(1) }
func (c *Collector) IncAssetsFailed()       { c.assetsFailed.Add(1) }
func (c *Collector) IncSkippedExisting()    { c.skippedExisting.Add(1) }
func (c *Collector) IncPluginErrors()       { c.pluginErrors.Add(1) }
func (c *Collector) AddBytesDownloaded(n int64) {
	c.bytesDownloaded.Add(n)
}

// RecordError tallies a failure under its symbolic kind. It is the only
// write path into the histogram, so Snapshot never observes a torn map.
func (c *Collector) RecordError(kind Kind) {
	c.mu.Lock()
	c.histogram[kind]++
	c.mu.Unlock()
}

// Snapshot is an immutable view of the collector at the moment it was
// taken, suitable for embedding in checkpoint metadata or a final report.
type Snapshot struct {
	PagesCrawled     int64
	PagesFailed      int64
	AssetsDownloaded int64
	AssetsFailed     int64
	BytesDownloaded  int64
	SkippedExisting  int64
	PluginErrors     int64
	Histogram        map[Kind]int64
}

func (c *Collector) Snapshot() Snapshot {
	c.mu.Lock()
	histCopy := make(map[Kind]int64, len(c.histogram))
	for k, v := range c.histogram {
		histCopy[k] = v
	}
	c.mu.Unlock()

	return Snapshot{
		PagesCrawled:     c.pagesCrawled.Load(),
		PagesFailed:      c.pagesFailed.Load(),
		AssetsDownloaded: c.assetsDownloaded.Load(),
		AssetsFailed:     c.assetsFailed.Load(),
		BytesDownloaded:  c.bytesDownloaded.Load(),
		SkippedExisting:  c.skippedExisting.Load(),
		PluginErrors:     c.pluginErrors.Load(),
		Histogram:        histCopy,
	}
}

// Common symbolic kinds shared across packages. Packages may define
// additional kinds local to their own failures.
const (
	KindTooManyRedirects Kind = "TooManyRedirects"
	KindFileTooLarge     Kind = "FileTooLarge"
	KindTimeout          Kind = "Timeout"
	KindHTTPError        Kind = "HttpError"
	KindRobotsBlocked    Kind = "RobotsBlocked"
	KindNetworkFailure   Kind = "NetworkFailure"
	KindContentInvalid   Kind = "ContentInvalid"
	KindStorageFailure   Kind = "StorageFailure"
	KindPluginError      Kind = "PluginError"
)
