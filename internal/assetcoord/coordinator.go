// Package assetcoord runs asset downloads in the background, decoupled from
// page throughput: Submit returns immediately and the actual GET happens on
// a detached goroutine bounded by a fixed-size semaphore, so a page never
// waits on a slow or large asset. This is a distinct concern from
// internal/assets' LocalResolver, which fetches and rewrites asset references
// in Markdown synchronously while a page is being persisted; the two do not
// share state, and LocalResolver does not consult the Coordinator.
package assetcoord

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/suscrawl/suscrawl/internal/fetcher"
	"github.com/suscrawl/suscrawl/internal/stats"
	"github.com/suscrawl/suscrawl/pkg/fileutil"
	"github.com/suscrawl/suscrawl/pkg/hashutil"
	"github.com/suscrawl/suscrawl/pkg/retry"
)

// Coordinator fans asset downloads out across a bounded pool of goroutines.
// All exported methods are safe for concurrent use.
type Coordinator struct {
	fetcher      fetcher.Fetcher
	userAgent    string
	outputDir    string
	maxAssetSize int64
	allowedKinds map[string]bool
	collector    *stats.Collector
	retryParam   retry.RetryParam

	sem chan struct{}
	wg  sync.WaitGroup

	mu         sync.Mutex
	downloaded map[string]string
	inflight   map[string]struct{}
}

// New builds a Coordinator. allowedKinds restricts which asset kinds are
// ever submitted for download; kinds outside this set are left as absolute
// URLs in the Markdown output. An empty allowedKinds set allows everything.
func New(
	f fetcher.Fetcher,
	userAgent, outputDir string,
	maxConcurrent int,
	maxAssetSize int64,
	allowedKinds []string,
	collector *stats.Collector,
	retryParam retry.RetryParam,
) *Coordinator {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}

	kinds := make(map[string]bool, len(allowedKinds))
	for _, k := range allowedKinds {
		kinds[k] = true
	}

	return &Coordinator{
		fetcher:      f,
		userAgent:    userAgent,
		outputDir:    outputDir,
		maxAssetSize: maxAssetSize,
		allowedKinds: kinds,
		collector:    collector,
		retryParam:   retryParam,
		sem:          make(chan struct{}, maxConcurrent),
		downloaded:   make(map[string]string),
		inflight:     make(map[string]struct{}),
	}
}

// Submit enqueues assetURL for background download and returns immediately.
// Duplicate submissions of the same URL (in-flight or already downloaded)
// are no-ops. kind restricts download via the allowedKinds set passed to
// New; an empty allowedKinds set (the default) never restricts.
func (c *Coordinator) Submit(ctx context.Context, assetURL url.URL, kind string) {
	if len(c.allowedKinds) > 0 && !c.allowedKinds[kind] {
		return
	}

	key := assetURL.String()

	c.mu.Lock()
	_, already := c.downloaded[key]
	_, running := c.inflight[key]
	if already || running {
		c.mu.Unlock()
		return
	}
	c.inflight[key] = struct{}{}
	c.mu.Unlock()

	c.wg.Add(1)
	go c.download(ctx, assetURL, key)
}

// Lookup reports the local path the Coordinator resolved for assetURL, if
// any. Only downloads that have completed successfully are reported.
func (c *Coordinator) Lookup(assetURL string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	path, ok := c.downloaded[assetURL]
	return path, ok
}

// Wait blocks until every submitted download has finished (successfully or
// not) or ctx is done, whichever comes first.
func (c *Coordinator) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Coordinator) download(ctx context.Context, assetURL url.URL, key string) {
	defer c.wg.Done()
	defer func() {
		c.mu.Lock()
		delete(c.inflight, key)
		c.mu.Unlock()
	}()

	select {
	case c.sem <- struct{}{}:
	case <-ctx.Done():
		return
	}
	defer func() { <-c.sem }()

	localPath := c.deterministicPath(assetURL)

	if _, err := os.Stat(localPath); err == nil {
		c.collector.IncSkippedExisting()
		c.mu.Lock()
		c.downloaded[key] = localPath
		c.mu.Unlock()
		return
	}

	fetchParam := fetcher.NewFetchParam(assetURL, c.userAgent)
	result, ferr := c.fetcher.Fetch(ctx, 0, fetchParam, c.retryParam)
	if ferr != nil {
		c.collector.IncAssetsFailed()
		c.collector.RecordError(stats.KindNetworkFailure)
		return
	}

	body := result.Body()
	if c.maxAssetSize > 0 && int64(len(body)) > c.maxAssetSize {
		c.collector.IncAssetsFailed()
		c.collector.RecordError(stats.KindFileTooLarge)
		return
	}

	if err := writeAtomic(localPath, body); err != nil {
		c.collector.IncAssetsFailed()
		c.collector.RecordError(stats.KindStorageFailure)
		return
	}

	c.collector.IncAssetsDownloaded()
	c.collector.AddBytesDownloaded(int64(len(body)))

	c.mu.Lock()
	c.downloaded[key] = localPath
	c.mu.Unlock()
}

// deterministicPath derives a stable local filename from the asset URL
// alone, so Submit can skip already-downloaded assets without fetching them
// first just to learn their content hash.
func (c *Coordinator) deterministicPath(assetURL url.URL) string {
	sum, _ := hashutil.HashBytes([]byte(assetURL.String()), hashutil.HashAlgoSHA256)
	stem := sum
	if len(stem) > 16 {
		stem = stem[:16]
	}

	ext := fileutil.GetFileExtension(assetURL.Path)
	name := stem
	if ext != "" {
		name = stem + "." + ext
	}

	return filepath.Join(c.outputDir, "assets", name)
}

func writeAtomic(path string, data []byte) error {
	if err := fileutil.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".asset-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, path)
}

var _ = time.Now
