package frontier

import (
	"context"
	"sync"

	"github.com/suscrawl/suscrawl/internal/config"
	"github.com/suscrawl/suscrawl/pkg/urlutil"
)

/*
Frontier Responsibilities
- Maintain BFS ordering
- Deduplicate URLs
- Track crawl depth
- Prevent infinite traversal
- Knows nothing about:
	- fetching
	- extraction
	- markdown
	- storage

It is a data structure + policy module, not a pipeline executor.
*/

// CrawlFrontier holds crawl candidates grouped by depth so that Dequeue
// always drains a depth level before any deeper one becomes eligible.
type CrawlFrontier struct {
	mu sync.Mutex

	maxDepth int
	maxPages int

	queuesByDepth map[int]*FIFOQueue[CrawlToken]
	visited       Set[string]
	maxSeenDepth  int

	// outstanding counts tokens that have been dequeued but not yet marked
	// done by TaskDone - i.e. whose worker may still enqueue children.
	outstanding int

	closed   bool
	notEmpty *sync.Cond
}

// NewCrawlFrontier constructs an uninitialized frontier. Call Init before use.
func NewCrawlFrontier() *CrawlFrontier {
	f := &CrawlFrontier{}
	f.notEmpty = sync.NewCond(&f.mu)
	return f
}

// Init resets the frontier against the given crawl limits. MaxDepth and
// MaxPages of 0 mean unlimited.
func (f *CrawlFrontier) Init(cfg config.Config) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.maxDepth = cfg.MaxDepth()
	f.maxPages = cfg.MaxPages()
	f.queuesByDepth = make(map[int]*FIFOQueue[CrawlToken])
	f.visited = NewSet[string]()
	f.maxSeenDepth = -1
	f.closed = false
}

// Submit admits a candidate into the frontier. Candidates exceeding
// MaxDepth, already visited (by canonicalized URL), or arriving after
// MaxPages unique URLs have been admitted are silently dropped.
func (f *CrawlFrontier) Submit(candidate CrawlAdmissionCandidate) {
	f.mu.Lock()
	defer f.mu.Unlock()

	depth := candidate.DiscoveryMetadata().Depth()
	if f.maxDepth > 0 && depth > f.maxDepth {
		return
	}

	canonical := urlutil.Canonicalize(candidate.TargetURL())
	key := canonical.String()

	if f.visited.Contains(key) {
		return
	}
	if f.maxPages > 0 && f.visited.Size() >= f.maxPages {
		return
	}

	f.visited.Add(key)

	q, ok := f.queuesByDepth[depth]
	if !ok {
		q = NewFIFOQueue[CrawlToken]()
		f.queuesByDepth[depth] = q
	}
	q.Enqueue(NewCrawlToken(candidate.TargetURL(), depth))

	if depth > f.maxSeenDepth {
		f.maxSeenDepth = depth
	}

	f.notEmpty.Broadcast()
}

// Dequeue returns the next token in strict BFS-by-depth order: every token
// at depth N is returned before any token at depth N+1. It never blocks -
// an empty frontier returns (CrawlToken{}, false) immediately.
func (f *CrawlFrontier) Dequeue() (CrawlToken, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dequeueLocked()
}

func (f *CrawlFrontier) dequeueLocked() (CrawlToken, bool) {
	for depth := 0; depth <= f.maxSeenDepth; depth++ {
		q, ok := f.queuesByDepth[depth]
		if !ok || q.Size() == 0 {
			continue
		}
		token, ok := q.Dequeue()
		if ok {
			f.outstanding++
		}
		return token, ok
	}
	return CrawlToken{}, false
}

// TaskDone marks a previously dequeued token as fully processed - including
// any children it discovered having been submitted. It is the other half of
// the three-way close guard described in §4.6: the frontier only closes once
// no token is outstanding (so nothing can submit further children) and no
// queue holds a pending token.
func (f *CrawlFrontier) TaskDone() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outstanding--
	f.maybeCloseLocked()
}

// CheckIdle evaluates the close guard without an accompanying dequeue. It
// covers the startup edge case where zero seed URLs end up admitted (e.g.
// every seed is robots-blocked), which otherwise would never trigger a
// TaskDone call to notice the frontier is done.
func (f *CrawlFrontier) CheckIdle() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.maybeCloseLocked()
}

func (f *CrawlFrontier) maybeCloseLocked() {
	if f.closed {
		return
	}
	if f.outstanding <= 0 && f.isEmptyLocked() {
		f.closed = true
		f.notEmpty.Broadcast()
	}
}

func (f *CrawlFrontier) isEmptyLocked() bool {
	for _, q := range f.queuesByDepth {
		if q.Size() > 0 {
			return false
		}
	}
	return true
}

// PopBlocking waits until a token is available, the frontier is closed, or
// ctx is cancelled. It is additive to Dequeue and used by callers (such as
// the scheduler's worker pool) that want to park instead of busy-polling.
func (f *CrawlFrontier) PopBlocking(ctx context.Context) (CrawlToken, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for {
		if token, ok := f.dequeueLocked(); ok {
			return token, true
		}
		if f.closed {
			return CrawlToken{}, false
		}
		if ctx.Err() != nil {
			return CrawlToken{}, false
		}

		woken := make(chan struct{})
		go func() {
			select {
			case <-ctx.Done():
				f.mu.Lock()
				f.notEmpty.Broadcast()
				f.mu.Unlock()
			case <-woken:
			}
		}()
		f.notEmpty.Wait()
		close(woken)

		if ctx.Err() != nil {
			return CrawlToken{}, false
		}
	}
}

// Close unblocks any goroutine parked in PopBlocking, causing it to return false.
func (f *CrawlFrontier) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.notEmpty.Broadcast()
}

// IsDepthExhausted reports whether there are no pending tokens at depth.
// Negative depths and depths never seen are always exhausted.
func (f *CrawlFrontier) IsDepthExhausted(depth int) bool {
	if depth < 0 {
		return true
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	q, ok := f.queuesByDepth[depth]
	return !ok || q.Size() == 0
}

// CurrentMinDepth returns the smallest depth with a pending token, or -1 if
// the frontier holds nothing. It is not monotonic: a later Submit can fill a
// gap below the previously reported minimum.
func (f *CrawlFrontier) CurrentMinDepth() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	for depth := 0; depth <= f.maxSeenDepth; depth++ {
		q, ok := f.queuesByDepth[depth]
		if ok && q.Size() > 0 {
			return depth
		}
	}
	return -1
}

// VisitedCount returns the number of unique canonicalized URLs ever admitted.
// It never decreases as tokens are dequeued, and is capped at MaxPages.
func (f *CrawlFrontier) VisitedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.visited.Size()
}
