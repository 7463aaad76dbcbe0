package metadata

import (
	"log"
	"sync"
	"time"
)

/*
Metadata Collected
- Fetch timestamps
- HTTP status codes
- Content hashes
- Crawl depth

Logging Goals
- Debuggable crawl behavior
- Post-run auditability
- Failure diagnostics

Structured logging is preferred.

Allowed:
- Primitive values
- Timestamps
- URLs (as values, not objects with behavior)
- Hashes
- Status codes
- Durations
- Identifiers (page ID, crawl ID)
*/

// MetadataSink is the write side of the crawl's observability surface. Every
// pipeline package records through this interface rather than owning its own
// logger, so a single place decides where records end up (stdout, a file, a
// test double).
type MetadataSink interface {
	RecordError(observedAt time.Time, packageName, action string, cause ErrorCause, errorString string, attrs []Attribute)
	RecordFetch(fetchUrl string, httpStatus int, duration time.Duration, contentType string, retryCount, crawlDepth int)
	RecordAssetFetch(fetchUrl string, httpStatus int, duration time.Duration, retryCount int)
	RecordArtifact(kind ArtifactKind, path string, attrs []Attribute)
}

// CrawlFinalizer records the single terminal summary of a completed crawl.
// It is intentionally distinct from MetadataSink: a final stats record is
// written exactly once, after the frontier drains, never mid-crawl.
type CrawlFinalizer interface {
	RecordFinalCrawlStats(totalPages, totalErrors, totalAssets int, duration time.Duration)
}

// NoopSink is a MetadataSink and CrawlFinalizer that discards every record.
type NoopSink struct{}

func (NoopSink) RecordError(time.Time, string, string, ErrorCause, string, []Attribute) {}
func (NoopSink) RecordFetch(string, int, time.Duration, string, int, int)               {}
func (NoopSink) RecordAssetFetch(string, int, time.Duration, int)                       {}
func (NoopSink) RecordArtifact(ArtifactKind, string, []Attribute)                       {}
func (NoopSink) RecordFinalCrawlStats(int, int, int, time.Duration)                     {}

// Recorder is the default MetadataSink and CrawlFinalizer: it keeps every
// record in memory for the lifetime of the run (cheap at crawl scale) and
// mirrors errors to the standard logger so a human watching the run sees
// them as they happen.
type Recorder struct {
	workerID string

	mu        sync.Mutex
	errors    []ErrorRecord
	fetches   []FetchEvent
	artifacts []ArtifactRecord
	final     *crawlStats
}

// NewRecorder builds a Recorder tagged with workerID, which is attached to
// every log line this recorder emits. A single-worker crawl can pass any
// constant identifier; a concurrent crawl pool should give each worker a
// distinct one so interleaved log output stays attributable.
func NewRecorder(workerID string) *Recorder {
	return &Recorder{workerID: workerID}
}

func (r *Recorder) RecordError(observedAt time.Time, packageName, action string, cause ErrorCause, errorString string, attrs []Attribute) {
	rec := ErrorRecord{
		packageName: packageName,
		action:      action,
		cause:       cause,
		errorString: errorString,
		observedAt:  observedAt,
		attrs:       attrs,
	}

	r.mu.Lock()
	r.errors = append(r.errors, rec)
	r.mu.Unlock()

	log.Printf("[%s][%s] %s: %s (cause=%s)", r.workerID, packageName, action, errorString, cause)
}

func (r *Recorder) RecordFetch(fetchUrl string, httpStatus int, duration time.Duration, contentType string, retryCount, crawlDepth int) {
	event := NewFetchEvent(fetchUrl, httpStatus, duration, contentType, retryCount, crawlDepth)

	r.mu.Lock()
	r.fetches = append(r.fetches, event)
	r.mu.Unlock()
}

func (r *Recorder) RecordAssetFetch(fetchUrl string, httpStatus int, duration time.Duration, retryCount int) {
	event := NewFetchEvent(fetchUrl, httpStatus, duration, "", retryCount, -1)

	r.mu.Lock()
	r.fetches = append(r.fetches, event)
	r.mu.Unlock()
}

func (r *Recorder) RecordArtifact(kind ArtifactKind, path string, attrs []Attribute) {
	rec := ArtifactRecord{kind: kind, path: path, attrs: attrs}

	r.mu.Lock()
	r.artifacts = append(r.artifacts, rec)
	r.mu.Unlock()
}

func (r *Recorder) RecordFinalCrawlStats(totalPages, totalErrors, totalAssets int, duration time.Duration) {
	r.mu.Lock()
	r.final = &crawlStats{
		totalPages:  totalPages,
		totalErrors: totalErrors,
		totalAssets: totalAssets,
		durationMs:  duration.Milliseconds(),
	}
	r.mu.Unlock()

	log.Printf("[%s] crawl finished: pages=%d errors=%d assets=%d duration=%s",
		r.workerID, totalPages, totalErrors, totalAssets, duration)
}

// Errors returns a snapshot of every error recorded so far.
func (r *Recorder) Errors() []ErrorRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ErrorRecord, len(r.errors))
	copy(out, r.errors)
	return out
}

// Artifacts returns a snapshot of every artifact recorded so far.
func (r *Recorder) Artifacts() []ArtifactRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ArtifactRecord, len(r.artifacts))
	copy(out, r.artifacts)
	return out
}
