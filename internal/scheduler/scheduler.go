package scheduler

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/suscrawl/suscrawl/internal/assetcoord"
	"github.com/suscrawl/suscrawl/internal/assets"
	"github.com/suscrawl/suscrawl/internal/checkpoint"
	"github.com/suscrawl/suscrawl/internal/config"
	"github.com/suscrawl/suscrawl/internal/extractor"
	"github.com/suscrawl/suscrawl/internal/fetcher"
	"github.com/suscrawl/suscrawl/internal/frontier"
	"github.com/suscrawl/suscrawl/internal/linkextract"
	"github.com/suscrawl/suscrawl/internal/mdconvert"
	"github.com/suscrawl/suscrawl/internal/metadata"
	"github.com/suscrawl/suscrawl/internal/normalize"
	"github.com/suscrawl/suscrawl/internal/plugin"
	"github.com/suscrawl/suscrawl/internal/robots"
	"github.com/suscrawl/suscrawl/internal/sanitizer"
	"github.com/suscrawl/suscrawl/internal/stats"
	"github.com/suscrawl/suscrawl/internal/storage"
	"github.com/suscrawl/suscrawl/pkg/failure"
	"github.com/suscrawl/suscrawl/pkg/hashutil"
	"github.com/suscrawl/suscrawl/pkg/limiter"
	"github.com/suscrawl/suscrawl/pkg/retry"
	"github.com/suscrawl/suscrawl/pkg/timeutil"
)

// appVersion stamps NormalizeParam's frontmatter; it has no config knob of
// its own, matching the teacher's single-binary versioning.
const appVersion = "suscrawl/1.0"

/*
 Scheduler is the sole control-plane authority of the crawl.

 Determinism and admission guarantees:
 - Scheduler is the ONLY component allowed to decide whether a URL
   may enter the crawl frontier.
 - All semantic admission checks (robots.txt, scope, depth, limits)
   MUST be completed before submitting a URL to the frontier.
 - No other component may enqueue, reject, or reorder URLs.
 - The frontier should only accept already-admitted URLs.
 - Pipeline stages may detect and classify failure, but must never decide retry, continuation, or abortion.

 The scheduler coordinates pipeline execution but does not delegate
 control-flow decisions to downstream stages.

 Metadata emission is observational only and MUST NOT influence
 scheduling, retries, or crawl termination.

 Scheduler Responsibilities:
 - Coordinate crawl lifecycle across a bounded-concurrency worker pool
 - Enforce global and per-domain concurrency gates, and per-domain pacing
 - Enforce global limits (pages, depth)
 - Manage graceful shutdown
 - Aggregate crawl statistics via the shared stats.Collector
 - Decide whether a robots outcome proceeds to the frontier.
 - Dispatch plugin lifecycle hooks around each pipeline stage.
 - Persist progress to the checkpoint store.
 - The sole authority on:
	- retry
	- continue
	- abort

 Concurrency model (worker pool): ExecuteCrawling spawns
 global_concurrent_requests workers, each pulling tokens from the frontier's
 blocking pop. Per token, gates are acquired in a fixed order - global
 semaphore, then per-domain semaphore, then the domain's token-bucket rate
 limiter - and released on every exit path via defer. This is the only
 acquisition order that avoids a worker holding a domain slot while
 starved on the global one, or vice versa.
*/

type Scheduler struct {
	ctx                    context.Context
	cfg                    config.Config
	metadataSink           metadata.MetadataSink
	crawlFinalizer         metadata.CrawlFinalizer
	robot                  robots.Robot
	frontier               *frontier.CrawlFrontier
	htmlFetcher            fetcher.Fetcher
	domExtractor           extractor.Extractor
	htmlSanitizer          sanitizer.Sanitizer
	markdownConversionRule mdconvert.ConvertRule
	assetResolver          assets.Resolver
	markdownConstraint     normalize.MarkdownConstraint
	storageSink            storage.Sink
	writeResults           []storage.WriteResult
	writeResultsMu         sync.Mutex
	currentHost            string
	rateLimiter            limiter.RateLimiter
	tokenLimiter           *limiter.TokenBucketLimiter
	sleeper                timeutil.Sleeper

	stats             *stats.Collector
	checkpointStore   checkpoint.Store
	storedConfigHash  string
	currentConfigHash string
	assetCoordinator  *assetcoord.Coordinator
	plugins           *plugin.Dispatcher

	globalSem    chan struct{}
	perDomainCap int
	domainSemsMu sync.Mutex
	domainSems   map[string]chan struct{}

	pagesSinceCommitMu sync.Mutex
	pagesSinceCommit   int
}

func NewScheduler() Scheduler {
	recorder := metadata.NewRecorder("suscrawl")
	cachedRobot := robots.NewCachedRobot(recorder)
	fr := frontier.NewCrawlFrontier()
	htmlFetcher := fetcher.NewHtmlFetcher(recorder)
	ext := extractor.NewDomExtractor(recorder, extractor.DefaultExtractParam())
	htmlSanitizer := sanitizer.NewHTMLSanitizer(recorder)
	conversionRule := mdconvert.NewRule(recorder)
	resolver := assets.NewLocalResolver(recorder, &http.Client{}, appVersion)
	markdownConstraint := normalize.NewMarkdownConstraint(recorder)
	localSink := storage.NewLocalSink(recorder)
	rateLimiter := limiter.NewConcurrentRateLimiter()
	sleeper := timeutil.NewRealSleeper()
	return Scheduler{
		metadataSink:           recorder,
		crawlFinalizer:         recorder,
		robot:                  &cachedRobot,
		frontier:               fr,
		htmlFetcher:            &htmlFetcher,
		domExtractor:           &ext,
		htmlSanitizer:          &htmlSanitizer,
		markdownConversionRule: conversionRule,
		assetResolver:          &resolver,
		markdownConstraint:     markdownConstraint,
		storageSink:            &localSink,
		rateLimiter:            rateLimiter,
		sleeper:                sleeper,
		stats:                  stats.NewCollector(),
	}
}

// NewSchedulerWithDeps creates a Scheduler with injected dependencies for testing.
// This constructor allows tests to provide mock implementations of metadata interfaces
// to verify behavior without relying on real infrastructure.
func NewSchedulerWithDeps(
	ctx context.Context,
	crawlFinalizer metadata.CrawlFinalizer,
	metadataSink metadata.MetadataSink,
	rateLimiter limiter.RateLimiter,
	fetcher fetcher.Fetcher,
	robot robots.Robot,
	domExtractor extractor.Extractor,
	sanitizer sanitizer.Sanitizer,
	rule mdconvert.ConvertRule,
	resolver assets.Resolver,
	sleeper timeutil.Sleeper,
) Scheduler {
	markdownConstraint := normalize.NewMarkdownConstraint(metadataSink)
	localSink := storage.NewLocalSink(metadataSink)
	fr := frontier.NewCrawlFrontier()
	return Scheduler{
		ctx:                    ctx,
		metadataSink:           metadataSink,
		crawlFinalizer:         crawlFinalizer,
		robot:                  robot,
		frontier:               fr,
		htmlFetcher:            fetcher,
		domExtractor:           domExtractor,
		htmlSanitizer:          sanitizer,
		markdownConversionRule: rule,
		assetResolver:          resolver,
		markdownConstraint:     markdownConstraint,
		storageSink:            &localSink,
		rateLimiter:            rateLimiter,
		sleeper:                sleeper,
		stats:                  stats.NewCollector(),
	}
}

// SubmitUrlForAdmission performs all semantic checks required for a URL
// to enter the crawl frontier.
//
// This function is the single admission choke point for the system.
// If this function returns nil, the URL is guaranteed to be admissible
// and safe to submit to the frontier.
//
// No other code path may call Frontier.Submit.
// - Only the scheduler imports frontier
// - Only the scheduler constructs CrawlAdmissionCandidate
// - Pipeline stages never see frontier types
func (s *Scheduler) SubmitUrlForAdmission(
	target url.URL,
	sourceContext frontier.SourceContext,
	depth int,
) failure.ClassifiedError {
	// Scope filter: domain allowlist + include/exclude patterns, checked
	// before robots so an out-of-scope URL never triggers a robots.txt fetch.
	if !inScope(target, s.cfg.AllowedHosts(), s.cfg.IncludePatterns(), s.cfg.ExcludePatterns()) {
		return nil
	}

	// Fetch robots.txt
	robotsDecision, robotsError := s.robot.Decide(target)
	// Robots infrastructure failure → scheduler-level error
	if robotsError != nil {
		return robotsError
	}

	// Reset backoff after successful robots request
	if s.rateLimiter != nil {
		s.rateLimiter.ResetBackoff(target.Host)
	}

	if robotsDecision.CrawlDelay > 0 {
		if s.rateLimiter != nil {
			s.rateLimiter.SetCrawlDelay(target.Host, robotsDecision.CrawlDelay)
		}
		if s.tokenLimiter != nil {
			s.tokenLimiter.SetDomainRate(target.Host, ratePerSecond(robotsDecision.CrawlDelay), s.cfg.RateLimiterBurstSize())
		}
	}

	// Robots explicitly disallowed → normal, terminal outcome
	if !robotsDecision.Allowed {
		// Important:
		// - metadata already emitted by robots
		// - NO retry
		// - NO abort
		// - NO frontier submission
		if s.stats != nil {
			s.stats.RecordError(stats.KindRobotsBlocked)
		}
		return nil
	}

	// Only submit to frontier if robots allowed
	candidate := frontier.NewCrawlAdmissionCandidate(
		robotsDecision.Url,
		sourceContext,
		frontier.NewDiscoveryMetadata(depth, nil),
	)

	// Submit Allowed URL for Admission by Frontier
	s.frontier.Submit(candidate)
	return nil
}

// ExecuteCrawling runs one crawl to completion against the config loaded
// from configPath. Step 1-2 (config load, seed admission) happen on the
// calling goroutine; steps 3-10 (gate acquisition through checkpoint
// commit) run pipelined across a pool of workers bounded by
// global_concurrent_requests, per §4.7.
func (s *Scheduler) ExecuteCrawling(configPath string) (CrawlingExecution, error) {
	crawlStartTime := time.Now()

	defer func() {
		crawlDuration := time.Since(crawlStartTime)
		snapshot := s.stats.Snapshot()
		totalPages := s.frontier.VisitedCount()
		totalErrors := int(snapshot.PagesFailed)
		totalAssets := int(snapshot.AssetsDownloaded)
		s.crawlFinalizer.RecordFinalCrawlStats(
			totalPages,
			totalErrors,
			totalAssets,
			crawlDuration,
		)
	}()

	// 1. Prepare config File
	cfg, err := config.WithConfigFile(configPath)
	if err != nil {
		s.metadataSink.RecordError(
			time.Now(),
			"config",
			"config.WithConfigFile",
			metadata.CauseContentInvalid,
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrField, fmt.Sprintf("field: %v", "theFieldError")),
			},
		)
		return CrawlingExecution{}, err
	}
	s.cfg = cfg

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout())
	defer cancel()
	if s.ctx == nil {
		s.ctx = ctx
	}

	// Validate that at least one seed URL exists
	if len(cfg.SeedURLs()) == 0 {
		err := fmt.Errorf("no seed URLs configured")
		s.metadataSink.RecordError(
			time.Now(),
			"config",
			"config validation",
			metadata.CauseContentInvalid,
			err.Error(),
			[]metadata.Attribute{},
		)
		return CrawlingExecution{}, err
	}

	// 1.1 Initialize rate limiters: the legacy delay-based limiter keeps
	// tracking backoff state and robots Crawl-delay overrides, while the
	// token-bucket limiter performs the actual per-domain pacing gate that
	// workers wait on below.
	s.rateLimiter.SetBaseDelay(cfg.BaseDelay())
	s.rateLimiter.SetJitter(cfg.Jitter())
	s.rateLimiter.SetRandomSeed(cfg.RandomSeed())
	s.tokenLimiter = limiter.NewTokenBucketLimiter(cfg.RequestsPerSecond(), cfg.RateLimiterBurstSize())

	// 1.2 Initialize Robots and Frontier
	s.robot.Init(cfg.UserAgent())
	s.frontier.Init(cfg)

	// 1.3 Configure DOM Extractor with extraction parameters from config
	extractParam := extractor.ExtractParam{
		BodySpecificityBias:  cfg.BodySpecificityBias(),
		LinkDensityThreshold: cfg.LinkDensityThreshold(),
		ScoreMultiplier: extractor.ContentScoreMultiplier{
			NonWhitespaceDivisor: cfg.ScoreMultiplierNonWhitespaceDivisor(),
			Paragraphs:           cfg.ScoreMultiplierParagraphs(),
			Headings:             cfg.ScoreMultiplierHeadings(),
			CodeBlocks:           cfg.ScoreMultiplierCodeBlocks(),
			ListItems:            cfg.ScoreMultiplierListItems(),
		},
		Threshold: extractor.MeaningfulThreshold{
			MinNonWhitespace:    cfg.ThresholdMinNonWhitespace(),
			MinHeadings:         cfg.ThresholdMinHeadings(),
			MinParagraphsOrCode: cfg.ThresholdMinParagraphsOrCode(),
			MaxLinkDensity:      cfg.ThresholdMaxLinkDensity(),
		},
	}
	s.domExtractor.SetExtractParam(extractParam)

	// 1.4 Checkpoint store: resume state if one exists for this output,
	// invalidated wholesale if the crawl-relevant config changed.
	s.currentConfigHash = checkpoint.ConfigHash(cfg)
	if store, storeErr := checkpoint.NewStore(cfg.CheckpointPath(), cfg.CheckpointBackend()); storeErr == nil {
		if initErr := store.Initialize(ctx); initErr == nil {
			s.checkpointStore = store
			if meta, found, loadErr := store.LoadMetadata(ctx); loadErr == nil && found {
				s.storedConfigHash = meta.ConfigHash
				if items, qerr := store.GetQueue(ctx); qerr == nil {
					for _, item := range items {
						if u, perr := url.Parse(item.URL); perr == nil {
							_ = s.SubmitUrlForAdmission(*u, frontier.SourceCrawl, item.Depth)
						}
					}
				}
			} else {
				s.storedConfigHash = s.currentConfigHash
				_ = store.SaveMetadata(ctx, checkpoint.Metadata{
					Version:     1,
					ConfigName:  cfg.ConfigName(),
					ConfigHash:  s.currentConfigHash,
					CreatedAt:   crawlStartTime,
					LastUpdated: crawlStartTime,
				})
			}
		}
	}
	if s.checkpointStore != nil {
		defer func() {
			_ = s.checkpointStore.Commit(context.Background())
			_ = s.checkpointStore.Close()
		}()
	}

	// 1.5 Asset coordinator: background downloads decoupled from page
	// throughput, fed by the raw-document asset URLs the Link Extractor
	// finds in step 6 below.
	s.assetCoordinator = assetcoord.New(
		s.htmlFetcher,
		cfg.UserAgent(),
		cfg.OutputDir(),
		cfg.MaxConcurrentAssetDownloads(),
		cfg.MaxAssetSizeBytes(),
		cfg.AssetTypes(),
		s.stats,
		RetryParam(cfg),
	)
	defer s.assetCoordinator.Wait(context.Background())

	// 1.6 Plugin dispatcher: no built-in plugins ship yet, but the five
	// hook points are exercised unconditionally so a future plugin registry
	// only needs to append to this list.
	s.plugins = plugin.NewDispatcher(s.metadataSink, s.stats)
	s.plugins.PreCrawl(cfg)
	defer func() { s.plugins.PostCrawl(s.stats.Snapshot()) }()

	// 2. Admit the seed URL; its robots decision also seeds backoff state
	// for its host.
	s.currentHost = cfg.SeedURLs()[0].Host
	err = s.SubmitUrlForAdmission(cfg.SeedURLs()[0], frontier.SourceSeed, 0)
	if err != nil {
		if robotsErr, ok := err.(*robots.RobotsError); ok {
			s.recordRobotsErrorAndBackoff(robotsErr, cfg.SeedURLs()[0])
		}
		return CrawlingExecution{}, err
	}
	s.frontier.CheckIdle()

	// 3-10. Pipelined worker pool: each worker pulls tokens from the
	// frontier's blocking pop and runs the fetch-through-checkpoint pipeline
	// concurrently with every other worker, up to the global concurrency cap.
	globalCap := cfg.GlobalConcurrentRequests()
	if globalCap <= 0 {
		globalCap = 1
	}
	s.perDomainCap = cfg.PerDomainConcurrentRequests()
	if s.perDomainCap <= 0 {
		s.perDomainCap = 1
	}
	s.globalSem = make(chan struct{}, globalCap)
	s.domainSems = make(map[string]chan struct{})

	group, groupCtx := errgroup.WithContext(s.ctx)
	for i := 0; i < globalCap; i++ {
		group.Go(func() error {
			for {
				token, ok := s.frontier.PopBlocking(groupCtx)
				if !ok {
					return nil
				}
				fatal := s.processToken(groupCtx, cfg, token)
				s.frontier.TaskDone()
				if fatal != nil {
					return fatal
				}
			}
		})
	}

	if waitErr := group.Wait(); waitErr != nil {
		return CrawlingExecution{}, waitErr
	}

	return CrawlingExecution{
		WriteResults: s.writeResults,
	}, nil
}

// processToken runs steps 3-10 of §4.7 for a single frontier token: gate
// acquisition, fetch, link/asset discovery, conversion, normalization,
// persistence, and checkpoint commit. Gates are released on every exit
// path via defer, in the reverse of their acquisition order.
func (s *Scheduler) processToken(ctx context.Context, cfg config.Config, token frontier.CrawlToken) failure.ClassifiedError {
	host := token.URL().Host

	// 3. Acquire global semaphore, then per-domain semaphore, then the
	// domain's rate limiter, in that fixed order.
	select {
	case s.globalSem <- struct{}{}:
	case <-ctx.Done():
		return nil
	}
	defer func() { <-s.globalSem }()

	domainSem := s.acquireDomainSem(host)
	select {
	case domainSem <- struct{}{}:
	case <-ctx.Done():
		return nil
	}
	defer func() { <-domainSem }()

	if err := s.tokenLimiter.Acquire(ctx, host); err != nil {
		return nil
	}

	// Skip a fetch the checkpoint store says is still fresh.
	if s.checkpointStore != nil {
		page, found, _ := s.checkpointStore.GetPage(ctx, token.URL().String())
		if !checkpoint.ShouldRedownload(page, found, cfg.CheckpointTTLDays(), s.currentConfigHash, s.storedConfigHash) {
			s.stats.IncSkippedExisting()
			return nil
		}
	}

	// 4. Fetch Page URL
	fetchParam := fetcher.NewFetchParam(token.URL(), cfg.UserAgent())
	fetchResult, err := s.htmlFetcher.Fetch(ctx, token.Depth(), fetchParam, RetryParam(cfg))
	if err != nil {
		if err.Severity() == failure.SeverityFatal {
			return err
		}
		s.stats.IncPagesFailed()
		return nil
	}

	// 5. Notify post_fetch plugins (observational only).
	s.plugins.PostFetch(fetchResult.URL(), fetchResult.Body(), fetchResult.Code())

	// 6. Extract HTML DOM
	extractionResult, err := s.domExtractor.Extract(fetchResult.URL(), fetchResult.Body())
	if err != nil {
		if err.Severity() == failure.SeverityFatal {
			return err
		}
		s.stats.IncPagesFailed()
		return nil
	}

	// Sanitize extracted HTML
	sanitizedHtml, err := s.htmlSanitizer.Sanitize(extractionResult.ContentNode)
	if err != nil {
		if err.Severity() == failure.SeverityFatal {
			return err
		}
		s.stats.IncPagesFailed()
		return nil
	}

	// Discover links and assets from the original fetched document (not the
	// readability-trimmed content node), honoring any in-document <base
	// href> - this is what makes the Base tag scenario real.
	discoveredLinks := linkextract.ExtractLinks(fetchResult.Body(), fetchResult.URL(), cfg.LinkSelectors())
	for _, discoveredurl := range discoveredLinks {
		submissionErr := s.SubmitUrlForAdmission(discoveredurl, frontier.SourceCrawl, token.Depth()+1)
		if submissionErr != nil {
			if robotsErr, ok := submissionErr.(*robots.RobotsError); ok {
				s.recordRobotsErrorAndBackoff(robotsErr, discoveredurl)
			}
			s.stats.IncPagesFailed()
		}
	}

	if cfg.AssetsDownload() {
		discoveredAssets := linkextract.ExtractAssets(fetchResult.Body(), fetchResult.URL())
		for _, assetURL := range discoveredAssets {
			s.assetCoordinator.Submit(ctx, assetURL, classifyAssetKind(assetURL))
		}
	}

	// 7. HTML → Markdown Conversion
	markdownDoc, err := s.markdownConversionRule.Convert(sanitizedHtml)
	if err != nil {
		if err.Severity() == failure.SeverityFatal {
			return err
		}
		s.stats.IncPagesFailed()
		return nil
	}

	resolveParam := assets.NewResolveParam(cfg.OutputDir(), cfg.MaxAssetSizeBytes())
	assetfulMarkdown, err := s.assetResolver.Resolve(
		ctx,
		fetchResult.URL(),
		markdownDoc,
		resolveParam,
		RetryParam(cfg),
	)
	if err != nil {
		if err.Severity() == failure.SeverityFatal {
			return err
		}
		s.stats.IncPagesFailed()
		// Continue to process the markdown even if asset resolution had errors
	}

	convertedContent := s.plugins.PostConvert(fetchResult.URL(), assetfulMarkdown.Content())
	assetfulMarkdown = assets.NewAssetfulMarkdownDoc(
		convertedContent,
		assetfulMarkdown.MissingAssets(),
		assetfulMarkdown.UnparseableURLs(),
		assetfulMarkdown.LocalAssets(),
	)

	// 8. Markdown Normalization
	hashAlgo := hashutil.HashAlgo(cfg.HashAlgo())
	normalizeParam := normalize.NewNormalizeParam(
		appVersion,
		fetchResult.FetchedAt(),
		hashAlgo,
		token.Depth(),
		cfg.AllowedPathPrefix(),
	)
	normalizedMarkdown, err := s.markdownConstraint.Normalize(fetchResult.URL(), assetfulMarkdown, normalizeParam)
	if err != nil {
		if err.Severity() == failure.SeverityFatal {
			return err
		}
		s.stats.IncPagesFailed()
		return nil
	}

	// Write Artifact
	writeResult, err := s.storageSink.Write(cfg.OutputDir(), normalizedMarkdown, hashAlgo)
	if err != nil {
		if err.Severity() == failure.SeverityFatal {
			return err
		}
		s.stats.IncPagesFailed()
		return nil
	}
	s.writeResultsMu.Lock()
	s.writeResults = append(s.writeResults, writeResult)
	s.writeResultsMu.Unlock()

	s.plugins.PostSave(writeResult.Path(), metadata.ArtifactMarkdown)
	s.stats.IncPagesCrawled()

	// 9. Update checkpoint and commit on cadence.
	s.recordCheckpoint(ctx, token, fetchResult, writeResult)

	return nil
}

// recordCheckpoint adds the page to the checkpoint store (if one is
// configured) and commits every 50 pages, matching §4.8's "at least every
// N pages" cadence. A nil store is a no-op: checkpointing is best-effort.
func (s *Scheduler) recordCheckpoint(ctx context.Context, token frontier.CrawlToken, fetchResult fetcher.FetchResult, writeResult storage.WriteResult) {
	if s.checkpointStore == nil {
		return
	}

	_ = s.checkpointStore.AddPage(ctx, checkpoint.PageCheckpoint{
		URL:         token.URL().String(),
		ContentHash: writeResult.ContentHash(),
		LastScraped: time.Now(),
		StatusCode:  fetchResult.Code(),
		FilePath:    writeResult.Path(),
	})

	const commitEveryNPages = 50
	s.pagesSinceCommitMu.Lock()
	s.pagesSinceCommit++
	due := s.pagesSinceCommit >= commitEveryNPages
	if due {
		s.pagesSinceCommit = 0
	}
	s.pagesSinceCommitMu.Unlock()

	if due {
		_ = s.checkpointStore.Commit(ctx)
	}
}

// acquireDomainSem returns the (lazily created) per-domain semaphore for
// host, sized to perDomainCap.
func (s *Scheduler) acquireDomainSem(host string) chan struct{} {
	s.domainSemsMu.Lock()
	defer s.domainSemsMu.Unlock()

	sem, ok := s.domainSems[host]
	if !ok {
		sem = make(chan struct{}, s.perDomainCap)
		s.domainSems[host] = sem
	}
	return sem
}

// classifyAssetKind maps an asset URL's file extension onto the vocabulary
// config.AssetTypes() filters against ("images", "css", "js", "fonts").
// Anything unrecognized classifies as "other", which a default (empty)
// AssetTypes allowlist still downloads.
func classifyAssetKind(u url.URL) string {
	switch ext := strings.ToLower(pathExt(u.Path)); ext {
	case ".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp", ".ico", ".avif":
		return "images"
	case ".css":
		return "css"
	case ".js", ".mjs":
		return "js"
	case ".woff", ".woff2", ".ttf", ".otf", ".eot":
		return "fonts"
	default:
		return "other"
	}
}

func pathExt(p string) string {
	for i := len(p) - 1; i >= 0 && p[i] != '/'; i-- {
		if p[i] == '.' {
			return p[i:]
		}
	}
	return ""
}

// ratePerSecond converts a minimum inter-request interval into the
// requests-per-second figure the token-bucket limiter is configured with.
func ratePerSecond(delay time.Duration) float64 {
	if delay <= 0 {
		return 1
	}
	return 1.0 / delay.Seconds()
}

// recordRobotsErrorAndBackoff records a robots error using metadataSink and
// triggers exponential backoff on the rate limiter if the error cause warrants it.
// This method handles ErrCauseHttpTooManyRequests (429) and ErrCauseHttpServerError (5xx)
// by recording the error and applying backoff to the current host.
func (s *Scheduler) recordRobotsErrorAndBackoff(robotsErr *robots.RobotsError, targetURL url.URL) {
	// Only record and backoff for specific HTTP error causes
	if robotsErr.Cause == robots.ErrCauseHttpTooManyRequests ||
		robotsErr.Cause == robots.ErrCauseHttpServerError {
		s.metadataSink.RecordError(
			time.Now(),
			"scheduler",
			"SubmitUrlForAdmission",
			metadata.CauseNetworkFailure,
			robotsErr.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, targetURL.String()),
				metadata.NewAttr(metadata.AttrHost, targetURL.Host),
				metadata.NewAttr(metadata.AttrPath, targetURL.Path),
			},
		)
		if s.rateLimiter != nil {
			s.rateLimiter.Backoff(targetURL.Host)
			if s.tokenLimiter != nil {
				s.tokenLimiter.SetDomainRate(targetURL.Host, ratePerSecond(s.rateLimiter.ResolveDelay(targetURL.Host)), 1)
			}
		}
	}
}

func RetryParam(cfg config.Config) retry.RetryParam {
	return retry.NewRetryParam(
		cfg.BaseDelay(),
		cfg.Jitter(),
		cfg.RandomSeed(),
		cfg.MaxAttempt(),
		timeutil.NewBackoffParam(
			cfg.BackoffInitialDuration(),
			cfg.BackoffMultiplier(),
			cfg.BackoffMaxDuration(),
		),
	)
}

// ---------------------------------------------------------------------------
// Test Helper Methods
// These methods are exported to enable testing of SubmitUrlForAdmission()
// and other scheduler internals. They are not part of the public API.
// ---------------------------------------------------------------------------

// InitWith initializes the dependencies with the given data.
// This is a test helper method.
func (s *Scheduler) InitWith(userAgent string, baseDelay time.Duration, jitter time.Duration, randomSeed int64) {
	s.robot.Init(userAgent)
	s.rateLimiter.SetBaseDelay(baseDelay)
	s.rateLimiter.SetJitter(jitter)
	s.rateLimiter.SetRandomSeed(randomSeed)
	if baseDelay > 0 {
		s.tokenLimiter = limiter.NewTokenBucketLimiter(1.0/baseDelay.Seconds(), 1)
	} else {
		s.tokenLimiter = limiter.NewTokenBucketLimiter(1, 1)
	}
}

// SetCurrentHost sets the current host.
// This is a test helper method to simulate the host context.
func (s *Scheduler) SetCurrentHost(host string) {
	s.currentHost = host
}

// FrontierVisitedCount returns the number of URLs in the frontier's visited set.
// This is a test helper method to verify frontier state.
func (s *Scheduler) FrontierVisitedCount() int {
	if s.frontier == nil {
		return 0
	}
	return s.frontier.VisitedCount()
}

// DequeueFromFrontier dequeues a token from the frontier.
// This is a test helper method to verify frontier contents.
func (s *Scheduler) DequeueFromFrontier() (frontier.CrawlToken, bool) {
	if s.frontier == nil {
		return frontier.CrawlToken{}, false
	}
	return s.frontier.Dequeue()
}

// SetConvertRule sets the markdown conversion rule for testing.
// This is a test helper method to inject mock conversion rules.
func (s *Scheduler) SetConvertRule(rule mdconvert.ConvertRule) {
	s.markdownConversionRule = rule
}
