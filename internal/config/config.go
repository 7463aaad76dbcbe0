package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"time"
)

type Config struct {
	//===============
	//  Crawl scope
	//===============
	// Initial pages to give to the crawler to begin discovering and traversing other pages.
	seedURLs []url.URL
	// Whitelisted hostname. Empty means all hostnames are allowed
	allowedHosts map[string]struct{}
	// Which URL path segments are permitted to be fetched and traversed, even if the links are on the same domain
	allowedPathPrefix []string

	//===============
	// Limits
	//===============
	// Maximum number of hyperlink hops from a seed (root) URL
	maxDepth int
	// Maximum number of total documents are allowed to be fetched
	maxPages int

	//===============
	// Politeness
	//===============
	// Maximum number of crawl worker goroutines processing URLs concurrently;
	// it does not control OS threads or CPU parallelism.
	concurrency int
	// Minimum, fixed waiting time you enforce between two HTTP requests to the same host.
	baseDelay time.Duration
	// Randomized variation added on top of the base delay.
	// Intentional randomness applied to timing.
	jitter time.Duration
	// Controls the random number generator
	randomSeed int64
	// maximum attempt during retry
	maxAttempt int
	// initial delay for backoff
	backoffInitialDuration time.Duration
	// multiplier during exponential backoff
	backoffMultiplier float64
	// capped maximum delay for backoff to stop exponential multiplication
	backoffMaxDuration time.Duration

	//===============
	// Fetch
	//===============
	// Maximum time of a single fetch request
	timeout time.Duration
	// User agent that will be used in the request header. In raw string
	userAgent string

	//===============
	// Output
	//===============
	// Root directory in which to store the resulting markdown files
	outputDir string
	// Whether the program will simulates what it would do without
	// actually performing any irreversible or side-effecting actions
	dryRun bool

	//===============
	// Extraction
	//===============
	// BodySpecificityBias is the threshold for preferring a child container over <body>.
	// If a child node's score is >= BodySpecificityBias * bodyScore, the child is preferred.
	// Default: 0.75 (75%)
	bodySpecificityBias float64
	// LinkDensityThreshold is the maximum ratio of link text to total text before
	// applying a penalty. Higher values allow more link-heavy content.
	// Default: 0.80 (80%)
	linkDensityThreshold float64
	// ScoreMultiplierNonWhitespaceDivisor is the divisor for calculating text score.
	// Score gets +1 point per NonWhitespaceDivisor characters.
	// Default: 50.0
	scoreMultiplierNonWhitespaceDivisor float64
	// ScoreMultiplierParagraphs is the score multiplier for each paragraph element.
	// Default: 5.0
	scoreMultiplierParagraphs float64
	// ScoreMultiplierHeadings is the score multiplier for each heading element (h1-h3).
	// Default: 10.0
	scoreMultiplierHeadings float64
	// ScoreMultiplierCodeBlocks is the score multiplier for each code block.
	// Default: 15.0
	scoreMultiplierCodeBlocks float64
	// ScoreMultiplierListItems is the score multiplier for each list item.
	// Default: 2.0
	scoreMultiplierListItems float64
	// ThresholdMinNonWhitespace is the minimum number of non-whitespace characters
	// required for content to be considered meaningful.
	// Default: 50
	thresholdMinNonWhitespace int
	// ThresholdMinHeadings is the minimum number of headings required.
	// Headings are optional but valuable.
	// Default: 0
	thresholdMinHeadings int
	// ThresholdMinParagraphsOrCode is the minimum number of paragraphs OR code blocks
	// required for content to be considered meaningful.
	// Default: 1
	thresholdMinParagraphsOrCode int
	// ThresholdMaxLinkDensity is the maximum ratio of link text to total text before
	// content is considered navigation-only and rejected.
	// Default: 0.8 (80%)
	thresholdMaxLinkDensity float64

	//===============
	// Concurrency & rate limiting (§4.3, §4.7)
	//===============
	// globalConcurrentRequests bounds the total number of in-flight fetches
	// across all hosts.
	globalConcurrentRequests int
	// perDomainConcurrentRequests bounds in-flight fetches to a single host.
	perDomainConcurrentRequests int
	// rateLimiterBurstSize is the token-bucket burst capacity per domain.
	rateLimiterBurstSize int
	// requestsPerSecond is the token-bucket refill rate per domain. It
	// defaults to 1.0 and is set directly by the builder or the config file.
	requestsPerSecond float64

	//===============
	// Fetch guards (§4.5)
	//===============
	// maxRetries is the configured retry count per URL. It is a field of its
	// own, not an alias of maxAttempt: the fetch retry loop reads maxAttempt,
	// and nothing in the crawl path reads maxRetries.
	maxRetries int
	// retryBackoff is the configured exponential backoff factor. It is a field
	// of its own: the fetch retry loop reads backoffMultiplier, not this value.
	retryBackoff float64
	// retryJitter is the configured jitter fraction in [0,1]. Nothing in the
	// crawl path reads it.
	retryJitter float64
	// maxRedirects is the configured redirect cap. The page fetcher does not
	// read it; it uses net/http's default redirect policy.
	maxRedirects int
	// maxPageSizeMB is the configured page size ceiling in MiB; nil means
	// unlimited. The page fetcher does not check it.
	maxPageSizeMB *float64
	// maxAssetSizeMB is the per-asset download ceiling in MiB.
	maxAssetSizeMB float64
	// respectRobotsTxt is the configured robots.txt switch. Nothing in the
	// crawl path reads it.
	respectRobotsTxt bool

	//===============
	// Scope filters (§6)
	//===============
	includePatterns []PatternRule
	excludePatterns []PatternRule
	linkSelectors   []string

	//===============
	// Checkpoint (§4.8, §6)
	//===============
	checkpointPath    string
	checkpointBackend string
	checkpointTTLDays *int
	configName        string

	//===============
	// Assets (§4.9, §6)
	//===============
	assetsDownload                 bool
	assetTypes                     []string
	maxConcurrentAssetDownloads    int

	//===============
	// Plugins (§4.10, §6)
	//===============
	pluginsEnabled []string

	//===============
	// HTTP cache settings. They are parsed and exposed here only; no
	// response cache reads them.
	//===============
	httpCacheEnabled bool
	httpCacheDir     string
	httpCacheTTL     time.Duration

	//===============
	// Hashing
	//===============
	hashAlgo string
}

// PatternRule is an include/exclude scope filter: Pattern is matched against
// a candidate URL, and Type selects how (glob or regex).
type PatternRule struct {
	Pattern string `json:"pattern"`
	Type    string `json:"type"`
}

type configDTO struct {
	SeedURLs               []url.URL           `json:"seedUrls"`
	AllowedHosts           map[string]struct{} `json:"allowedHosts,omitempty"`
	AllowedPathPrefix      []string            `json:"allowedPathPrefix,omitempty"`
	MaxDepth               int                 `json:"maxDepth,omitempty"`
	MaxPages               int                 `json:"maxPages,omitempty"`
	Concurrency            int                 `json:"concurrency,omitempty"`
	BaseDelay              time.Duration       `json:"baseDelay,omitempty"`
	Jitter                 time.Duration       `json:"jitter,omitempty"`
	RandomSeed             int64               `json:"randomSeed,omitempty"`
	MaxAttempt             int                 `json:"maxAttempt,omitempty"`
	BackoffInitialDuration time.Duration       `json:"backoffInitialDuration,omitempty"`
	BackoffMultiplier      float64             `json:"backoffMultiplier,omitempty"`
	BackoffMaxDuration     time.Duration       `json:"backoffMaxDuration,omitempty"`
	Timeout                time.Duration       `json:"timeout,omitempty"`
	UserAgent              string              `json:"userAgent,omitempty"`
	OutputDir              string              `json:"outputDir,omitempty"`
	DryRun                 bool                `json:"dryRun,omitempty"`
	// Extraction parameters
	BodySpecificityBias                 float64 `json:"bodySpecificityBias,omitempty"`
	LinkDensityThreshold                float64 `json:"linkDensityThreshold,omitempty"`
	ScoreMultiplierNonWhitespaceDivisor float64 `json:"scoreMultiplierNonWhitespaceDivisor,omitempty"`
	ScoreMultiplierParagraphs           float64 `json:"scoreMultiplierParagraphs,omitempty"`
	ScoreMultiplierHeadings             float64 `json:"scoreMultiplierHeadings,omitempty"`
	ScoreMultiplierCodeBlocks           float64 `json:"scoreMultiplierCodeBlocks,omitempty"`
	ScoreMultiplierListItems            float64 `json:"scoreMultiplierListItems,omitempty"`
	ThresholdMinNonWhitespace           int     `json:"thresholdMinNonWhitespace,omitempty"`
	ThresholdMinHeadings                int     `json:"thresholdMinHeadings,omitempty"`
	ThresholdMinParagraphsOrCode        int     `json:"thresholdMinParagraphsOrCode,omitempty"`
	ThresholdMaxLinkDensity             float64 `json:"thresholdMaxLinkDensity,omitempty"`

	GlobalConcurrentRequests    int           `json:"globalConcurrentRequests,omitempty"`
	PerDomainConcurrentRequests int           `json:"perDomainConcurrentRequests,omitempty"`
	RateLimiterBurstSize        int           `json:"rateLimiterBurstSize,omitempty"`
	RequestsPerSecond           float64       `json:"requestsPerSecond,omitempty"`
	MaxRetries                  int           `json:"maxRetries,omitempty"`
	RetryBackoff                float64       `json:"retryBackoff,omitempty"`
	RetryJitter                 float64       `json:"retryJitter,omitempty"`
	MaxRedirects                int           `json:"maxRedirects,omitempty"`
	MaxPageSizeMB               *float64      `json:"maxPageSizeMb,omitempty"`
	MaxAssetSizeMB              float64       `json:"maxAssetSizeMb,omitempty"`
	RespectRobotsTxt            *bool         `json:"respectRobotsTxt,omitempty"`
	IncludePatterns             []PatternRule `json:"includePatterns,omitempty"`
	ExcludePatterns             []PatternRule `json:"excludePatterns,omitempty"`
	LinkSelectors               []string      `json:"linkSelectors,omitempty"`
	CheckpointPath              string        `json:"checkpointPath,omitempty"`
	CheckpointBackend           string        `json:"checkpointBackend,omitempty"`
	CheckpointTTLDays           *int          `json:"checkpointTtlDays,omitempty"`
	ConfigName                  string        `json:"configName,omitempty"`
	AssetsDownload              *bool         `json:"assetsDownload,omitempty"`
	AssetTypes                  []string      `json:"assetTypes,omitempty"`
	MaxConcurrentAssetDownloads int           `json:"maxConcurrentAssetDownloads,omitempty"`
	PluginsEnabled              []string      `json:"pluginsEnabled,omitempty"`
	HttpCacheEnabled            bool          `json:"httpCacheEnabled,omitempty"`
	HttpCacheDir                string        `json:"httpCacheDir,omitempty"`
	HttpCacheTTL                time.Duration `json:"httpCacheTtl,omitempty"`
	HashAlgo                    string        `json:"hashAlgo,omitempty"`
}

func newConfigFromDTO(dto configDTO) (Config, error) {

	// Start with default config
	cfg, err := WithDefault(dto.SeedURLs).Build()
	if err != nil {
		return Config{}, err
	}

	// AllowedHosts can be empty - if so, default to seed URLs hostnames
	if len(dto.AllowedHosts) > 0 {
		cfg.allowedHosts = dto.AllowedHosts
	}

	// AllowedPathPrefix can be empty - always use DTO values
	cfg.allowedPathPrefix = dto.AllowedPathPrefix

	// For other fields, only override if non-zero value is provided
	if dto.MaxDepth != 0 {
		cfg.maxDepth = dto.MaxDepth
	}
	if dto.MaxPages != 0 {
		cfg.maxPages = dto.MaxPages
	}
	if dto.Concurrency != 0 {
		cfg.concurrency = dto.Concurrency
	}
	if dto.BaseDelay != 0 {
		cfg.baseDelay = dto.BaseDelay
	}
	if dto.Jitter != 0 {
		cfg.jitter = dto.Jitter
	}
	if dto.RandomSeed != 0 {
		cfg.randomSeed = dto.RandomSeed
	}
	if dto.MaxAttempt != 0 {
		cfg.maxAttempt = dto.MaxAttempt
	}
	if dto.BackoffInitialDuration != 0 {
		cfg.backoffInitialDuration = dto.BackoffInitialDuration
	}
	if dto.BackoffMultiplier != 0 {
		cfg.backoffMultiplier = dto.BackoffMultiplier
	}
	if dto.BackoffMaxDuration != 0 {
		cfg.backoffMaxDuration = dto.BackoffMaxDuration
	}

	if dto.Timeout != 0 {
		cfg.timeout = dto.Timeout
	}
	if dto.UserAgent != "" {
		cfg.userAgent = dto.UserAgent
	}
	if dto.OutputDir != "" {
		cfg.outputDir = dto.OutputDir
	}
	// DryRun is a boolean, check if explicitly set (we use the DTO value as-is since bool zero value is false)
	cfg.dryRun = dto.DryRun

	// Extraction parameters - only override if non-zero value is provided
	// For float64, we check if value is not 0 (which is also the zero value)
	if dto.BodySpecificityBias != 0 {
		cfg.bodySpecificityBias = dto.BodySpecificityBias
	}
	if dto.LinkDensityThreshold != 0 {
		cfg.linkDensityThreshold = dto.LinkDensityThreshold
	}
	if dto.ScoreMultiplierNonWhitespaceDivisor != 0 {
		cfg.scoreMultiplierNonWhitespaceDivisor = dto.ScoreMultiplierNonWhitespaceDivisor
	}
	if dto.ScoreMultiplierParagraphs != 0 {
		cfg.scoreMultiplierParagraphs = dto.ScoreMultiplierParagraphs
	}
	if dto.ScoreMultiplierHeadings != 0 {
		cfg.scoreMultiplierHeadings = dto.ScoreMultiplierHeadings
	}
	if dto.ScoreMultiplierCodeBlocks != 0 {
		cfg.scoreMultiplierCodeBlocks = dto.ScoreMultiplierCodeBlocks
	}
	if dto.ScoreMultiplierListItems != 0 {
		cfg.scoreMultiplierListItems = dto.ScoreMultiplierListItems
	}
	if dto.ThresholdMinNonWhitespace != 0 {
		cfg.thresholdMinNonWhitespace = dto.ThresholdMinNonWhitespace
	}
	// Note: ThresholdMinHeadings can be 0 (which is a valid value), so we don't check for non-zero
	cfg.thresholdMinHeadings = dto.ThresholdMinHeadings
	if dto.ThresholdMinParagraphsOrCode != 0 {
		cfg.thresholdMinParagraphsOrCode = dto.ThresholdMinParagraphsOrCode
	}
	if dto.ThresholdMaxLinkDensity != 0 {
		cfg.thresholdMaxLinkDensity = dto.ThresholdMaxLinkDensity
	}

	if dto.GlobalConcurrentRequests != 0 {
		cfg.globalConcurrentRequests = dto.GlobalConcurrentRequests
	}
	if dto.PerDomainConcurrentRequests != 0 {
		cfg.perDomainConcurrentRequests = dto.PerDomainConcurrentRequests
	}
	if dto.RateLimiterBurstSize != 0 {
		cfg.rateLimiterBurstSize = dto.RateLimiterBurstSize
	}
	if dto.RequestsPerSecond != 0 {
		cfg.requestsPerSecond = dto.RequestsPerSecond
	}
	if dto.MaxRetries != 0 {
		cfg.maxRetries = dto.MaxRetries
	}
	if dto.RetryBackoff != 0 {
		cfg.retryBackoff = dto.RetryBackoff
	}
	if dto.RetryJitter != 0 {
		cfg.retryJitter = dto.RetryJitter
	}
	if dto.MaxRedirects != 0 {
		cfg.maxRedirects = dto.MaxRedirects
	}
	if dto.MaxPageSizeMB != nil {
		cfg.maxPageSizeMB = dto.MaxPageSizeMB
	}
	if dto.MaxAssetSizeMB != 0 {
		cfg.maxAssetSizeMB = dto.MaxAssetSizeMB
	}
	if dto.RespectRobotsTxt != nil {
		cfg.respectRobotsTxt = *dto.RespectRobotsTxt
	}
	if len(dto.IncludePatterns) > 0 {
		cfg.includePatterns = dto.IncludePatterns
	}
	if len(dto.ExcludePatterns) > 0 {
		cfg.excludePatterns = dto.ExcludePatterns
	}
	if len(dto.LinkSelectors) > 0 {
		cfg.linkSelectors = dto.LinkSelectors
	}
	if dto.CheckpointPath != "" {
		cfg.checkpointPath = dto.CheckpointPath
	}
	if dto.CheckpointBackend != "" {
		cfg.checkpointBackend = dto.CheckpointBackend
	}
	if dto.CheckpointTTLDays != nil {
		cfg.checkpointTTLDays = dto.CheckpointTTLDays
	}
	if dto.ConfigName != "" {
		cfg.configName = dto.ConfigName
	}
	if dto.AssetsDownload != nil {
		cfg.assetsDownload = *dto.AssetsDownload
	}
	if len(dto.AssetTypes) > 0 {
		cfg.assetTypes = dto.AssetTypes
	}
	if dto.MaxConcurrentAssetDownloads != 0 {
		cfg.maxConcurrentAssetDownloads = dto.MaxConcurrentAssetDownloads
	}
	if len(dto.PluginsEnabled) > 0 {
		cfg.pluginsEnabled = dto.PluginsEnabled
	}
	cfg.httpCacheEnabled = dto.HttpCacheEnabled
	if dto.HttpCacheDir != "" {
		cfg.httpCacheDir = dto.HttpCacheDir
	}
	if dto.HttpCacheTTL != 0 {
		cfg.httpCacheTTL = dto.HttpCacheTTL
	}
	if dto.HashAlgo != "" {
		cfg.hashAlgo = dto.HashAlgo
	}

	return cfg, nil
}

func WithConfigFile(path string) (Config, error) {
	_, err := os.Stat(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrFileDoesNotExist, err.Error())
	}
	configContent, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrReadConfigFail, err.Error())
	}
	cfgDTO := configDTO{}

	err = json.Unmarshal(configContent, &cfgDTO)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrConfigParsingFail, err.Error())
	}

	cfg, err := newConfigFromDTO(cfgDTO)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// WithDefault creates a new Config with the provided seed URLs and default values for all other fields.
// seedUrls is mandatory and must not be empty - an error will be returned if it is.
func WithDefault(seedUrls []url.URL) *Config {
	defaultConfig := Config{
		seedURLs:     seedUrls,
		allowedHosts: map[string]struct{}{},
		allowedPathPrefix: []string{
			"/",
		},
		maxDepth:               3,
		maxPages:               100,
		concurrency:            10,
		baseDelay:              time.Second,
		jitter:                 time.Millisecond * 500,
		randomSeed:             time.Now().UnixNano(),
		maxAttempt:             10,
		backoffInitialDuration: 100 * time.Millisecond,
		backoffMultiplier:      2.0,
		backoffMaxDuration:     10 * time.Second,
		timeout:                time.Second * 10,
		userAgent:              "SUS/1.0 (Simple Universal Scraper)",
		outputDir:              "output",
		dryRun:                 false,
		// Extraction defaults
		bodySpecificityBias:                 0.75,
		linkDensityThreshold:                0.80,
		scoreMultiplierNonWhitespaceDivisor: 50.0,
		scoreMultiplierParagraphs:           5.0,
		scoreMultiplierHeadings:             10.0,
		scoreMultiplierCodeBlocks:           15.0,
		scoreMultiplierListItems:            2.0,
		thresholdMinNonWhitespace:           50,
		thresholdMinHeadings:                0,
		thresholdMinParagraphsOrCode:        1,
		thresholdMaxLinkDensity:             0.8,

		globalConcurrentRequests:    50,
		perDomainConcurrentRequests: 10,
		rateLimiterBurstSize:        10,
		requestsPerSecond:           1.0,
		maxRetries:                  3,
		retryBackoff:                2.0,
		retryJitter:                 0.3,
		maxRedirects:                10,
		maxPageSizeMB:               float64Ptr(10),
		maxAssetSizeMB:              50,
		respectRobotsTxt:            true,
		linkSelectors:               []string{"a[href]"},
		checkpointPath:              "checkpoint.json",
		checkpointBackend:           "",
		configName:                  "default",
		assetsDownload:              true,
		assetTypes:                  []string{"images", "css", "js", "fonts"},
		maxConcurrentAssetDownloads: 10,
		hashAlgo:                    "sha256",
	}
	return &defaultConfig
}

func float64Ptr(v float64) *float64 {
	return &v
}

func (c *Config) WithSeedUrls(urls []url.URL) *Config {
	c.seedURLs = urls
	return c
}

func (c *Config) WithAllowedHosts(hosts map[string]struct{}) *Config {
	c.allowedHosts = hosts
	return c
}

func (c *Config) WithAllowedPathPrefix(prefixes []string) *Config {
	c.allowedPathPrefix = prefixes
	return c
}

func (c *Config) WithMaxDepth(depth int) *Config {
	c.maxDepth = depth
	return c
}

func (c *Config) WithMaxPages(pages int) *Config {
	c.maxPages = pages
	return c
}

func (c *Config) WithConcurrency(concurrency int) *Config {
	c.concurrency = concurrency
	return c
}

func (c *Config) WithBaseDelay(delay time.Duration) *Config {
	c.baseDelay = delay
	return c
}

func (c *Config) WithJitter(jitter time.Duration) *Config {
	c.jitter = jitter
	return c
}

func (c *Config) WithRandomSeed(seed int64) *Config {
	c.randomSeed = seed
	return c
}

func (c *Config) WithMaxAttempt(attempts int) *Config {
	c.maxAttempt = attempts
	return c
}

func (c *Config) WithBackoffInitialDuration(duration time.Duration) *Config {
	c.backoffInitialDuration = duration
	return c
}

func (c *Config) WithBackoffMultiplier(multiplier float64) *Config {
	c.backoffMultiplier = multiplier
	return c
}

func (c *Config) WithBackoffMaxDuration(duration time.Duration) *Config {
	c.backoffMaxDuration = duration
	return c
}

func (c *Config) WithTimeout(timeout time.Duration) *Config {
	c.timeout = timeout
	return c
}

func (c *Config) WithUserAgent(agent string) *Config {
	c.userAgent = agent
	return c
}

func (c *Config) WithOutputDir(outputDir string) *Config {
	c.outputDir = outputDir
	return c
}

func (c *Config) WithDryRun(dryRun bool) *Config {
	c.dryRun = dryRun
	return c
}

func (c *Config) WithBodySpecificityBias(bias float64) *Config {
	c.bodySpecificityBias = bias
	return c
}

func (c *Config) WithLinkDensityThreshold(threshold float64) *Config {
	c.linkDensityThreshold = threshold
	return c
}

func (c *Config) WithScoreMultiplierNonWhitespaceDivisor(divisor float64) *Config {
	c.scoreMultiplierNonWhitespaceDivisor = divisor
	return c
}

func (c *Config) WithScoreMultiplierParagraphs(multiplier float64) *Config {
	c.scoreMultiplierParagraphs = multiplier
	return c
}

func (c *Config) WithScoreMultiplierHeadings(multiplier float64) *Config {
	c.scoreMultiplierHeadings = multiplier
	return c
}

func (c *Config) WithScoreMultiplierCodeBlocks(multiplier float64) *Config {
	c.scoreMultiplierCodeBlocks = multiplier
	return c
}

func (c *Config) WithScoreMultiplierListItems(multiplier float64) *Config {
	c.scoreMultiplierListItems = multiplier
	return c
}

func (c *Config) WithThresholdMinNonWhitespace(min int) *Config {
	c.thresholdMinNonWhitespace = min
	return c
}

func (c *Config) WithThresholdMinHeadings(min int) *Config {
	c.thresholdMinHeadings = min
	return c
}

func (c *Config) WithThresholdMinParagraphsOrCode(min int) *Config {
	c.thresholdMinParagraphsOrCode = min
	return c
}

func (c *Config) WithThresholdMaxLinkDensity(max float64) *Config {
	c.thresholdMaxLinkDensity = max
	return c
}

func (c *Config) Build() (Config, error) {
	if len(c.seedURLs) == 0 {
		return Config{}, fmt.Errorf("%w: seedUrls cannot be empty", ErrInvalidConfig)
	}

	// If allowedHosts is empty, default to seed URLs hostnames
	if len(c.allowedHosts) == 0 {
		c.allowedHosts = make(map[string]struct{})
		for _, u := range c.seedURLs {
			if u.Host != "" {
				c.allowedHosts[u.Host] = struct{}{}
			}
		}
	}

	return *c, nil
}

func (c Config) SeedURLs() []url.URL {
	urls := make([]url.URL, len(c.seedURLs))
	copy(urls, c.seedURLs)
	return urls
}

func (c Config) AllowedHosts() map[string]struct{} {
	hosts := make(map[string]struct{})
	for k, v := range c.allowedHosts {
		hosts[k] = v
	}
	return hosts
}

func (c Config) AllowedPathPrefix() []string {
	prefixes := make([]string, len(c.allowedPathPrefix))
	copy(prefixes, c.allowedPathPrefix)
	return prefixes
}

func (c Config) MaxDepth() int {
	return c.maxDepth
}

func (c Config) MaxPages() int {
	return c.maxPages
}

func (c Config) Concurrency() int {
	return c.concurrency
}

func (c Config) BaseDelay() time.Duration {
	return c.baseDelay
}

func (c Config) Jitter() time.Duration {
	return c.jitter
}

func (c Config) RandomSeed() int64 {
	return c.randomSeed
}

func (c Config) Timeout() time.Duration {
	return c.timeout
}

func (c Config) UserAgent() string {
	return c.userAgent
}

func (c Config) OutputDir() string {
	return c.outputDir
}

func (c Config) DryRun() bool {
	return c.dryRun
}

func (c Config) MaxAttempt() int {
	return c.maxAttempt
}

func (c Config) BackoffInitialDuration() time.Duration {
	return c.backoffInitialDuration
}

func (c Config) BackoffMultiplier() float64 {
	return c.backoffMultiplier
}

func (c Config) BackoffMaxDuration() time.Duration {
	return c.backoffMaxDuration
}

func (c Config) BodySpecificityBias() float64 {
	return c.bodySpecificityBias
}

func (c Config) LinkDensityThreshold() float64 {
	return c.linkDensityThreshold
}

func (c Config) ScoreMultiplierNonWhitespaceDivisor() float64 {
	return c.scoreMultiplierNonWhitespaceDivisor
}

func (c Config) ScoreMultiplierParagraphs() float64 {
	return c.scoreMultiplierParagraphs
}

func (c Config) ScoreMultiplierHeadings() float64 {
	return c.scoreMultiplierHeadings
}

func (c Config) ScoreMultiplierCodeBlocks() float64 {
	return c.scoreMultiplierCodeBlocks
}

func (c Config) ScoreMultiplierListItems() float64 {
	return c.scoreMultiplierListItems
}

func (c Config) ThresholdMinNonWhitespace() int {
	return c.thresholdMinNonWhitespace
}

func (c Config) ThresholdMinHeadings() int {
	return c.thresholdMinHeadings
}

func (c Config) ThresholdMinParagraphsOrCode() int {
	return c.thresholdMinParagraphsOrCode
}

func (c Config) ThresholdMaxLinkDensity() float64 {
	return c.thresholdMaxLinkDensity
}

func (c *Config) WithGlobalConcurrentRequests(n int) *Config {
	c.globalConcurrentRequests = n
	return c
}

func (c *Config) WithPerDomainConcurrentRequests(n int) *Config {
	c.perDomainConcurrentRequests = n
	return c
}

func (c *Config) WithRateLimiterBurstSize(n int) *Config {
	c.rateLimiterBurstSize = n
	return c
}

func (c *Config) WithRequestsPerSecond(n float64) *Config {
	c.requestsPerSecond = n
	return c
}

func (c *Config) WithMaxRetries(n int) *Config {
	c.maxRetries = n
	return c
}

func (c *Config) WithRetryBackoff(f float64) *Config {
	c.retryBackoff = f
	return c
}

func (c *Config) WithRetryJitter(f float64) *Config {
	c.retryJitter = f
	return c
}

func (c *Config) WithMaxRedirects(n int) *Config {
	c.maxRedirects = n
	return c
}

func (c *Config) WithMaxPageSizeMB(mb *float64) *Config {
	c.maxPageSizeMB = mb
	return c
}

func (c *Config) WithMaxAssetSizeMB(mb float64) *Config {
	c.maxAssetSizeMB = mb
	return c
}

func (c *Config) WithRespectRobotsTxt(b bool) *Config {
	c.respectRobotsTxt = b
	return c
}

func (c *Config) WithIncludePatterns(p []PatternRule) *Config {
	c.includePatterns = p
	return c
}

func (c *Config) WithExcludePatterns(p []PatternRule) *Config {
	c.excludePatterns = p
	return c
}

func (c *Config) WithLinkSelectors(s []string) *Config {
	c.linkSelectors = s
	return c
}

func (c *Config) WithCheckpointPath(p string) *Config {
	c.checkpointPath = p
	return c
}

func (c *Config) WithCheckpointBackend(b string) *Config {
	c.checkpointBackend = b
	return c
}

func (c *Config) WithCheckpointTTLDays(days *int) *Config {
	c.checkpointTTLDays = days
	return c
}

func (c *Config) WithConfigName(name string) *Config {
	c.configName = name
	return c
}

func (c *Config) WithAssetsDownload(b bool) *Config {
	c.assetsDownload = b
	return c
}

func (c *Config) WithAssetTypes(types []string) *Config {
	c.assetTypes = types
	return c
}

func (c *Config) WithMaxConcurrentAssetDownloads(n int) *Config {
	c.maxConcurrentAssetDownloads = n
	return c
}

func (c *Config) WithPluginsEnabled(names []string) *Config {
	c.pluginsEnabled = names
	return c
}

func (c *Config) WithHTTPCache(enabled bool, dir string, ttl time.Duration) *Config {
	c.httpCacheEnabled = enabled
	c.httpCacheDir = dir
	c.httpCacheTTL = ttl
	return c
}

func (c *Config) WithHashAlgo(algo string) *Config {
	c.hashAlgo = algo
	return c
}

func (c Config) GlobalConcurrentRequests() int { return c.globalConcurrentRequests }

func (c Config) PerDomainConcurrentRequests() int { return c.perDomainConcurrentRequests }

func (c Config) RateLimiterBurstSize() int { return c.rateLimiterBurstSize }

func (c Config) RequestsPerSecond() float64 { return c.requestsPerSecond }

func (c Config) MaxRetries() int { return c.maxRetries }

func (c Config) RetryBackoff() float64 { return c.retryBackoff }

func (c Config) RetryJitter() float64 { return c.retryJitter }

func (c Config) MaxRedirects() int { return c.maxRedirects }

// MaxPageSizeBytes returns the configured page size ceiling in bytes, and
// false when unlimited (MaxPageSizeMB is nil).
func (c Config) MaxPageSizeBytes() (int64, bool) {
	if c.maxPageSizeMB == nil {
		return 0, false
	}
	return int64(*c.maxPageSizeMB * 1024 * 1024), true
}

func (c Config) MaxAssetSizeBytes() int64 {
	return int64(c.maxAssetSizeMB * 1024 * 1024)
}

func (c Config) RespectRobotsTxt() bool { return c.respectRobotsTxt }

func (c Config) IncludePatterns() []PatternRule {
	out := make([]PatternRule, len(c.includePatterns))
	copy(out, c.includePatterns)
	return out
}

func (c Config) ExcludePatterns() []PatternRule {
	out := make([]PatternRule, len(c.excludePatterns))
	copy(out, c.excludePatterns)
	return out
}

func (c Config) LinkSelectors() []string {
	out := make([]string, len(c.linkSelectors))
	copy(out, c.linkSelectors)
	return out
}

func (c Config) CheckpointPath() string { return c.checkpointPath }

func (c Config) CheckpointBackend() string { return c.checkpointBackend }

func (c Config) CheckpointTTLDays() *int { return c.checkpointTTLDays }

func (c Config) ConfigName() string { return c.configName }

func (c Config) AssetsDownload() bool { return c.assetsDownload }

func (c Config) AssetTypes() []string {
	out := make([]string, len(c.assetTypes))
	copy(out, c.assetTypes)
	return out
}

func (c Config) MaxConcurrentAssetDownloads() int { return c.maxConcurrentAssetDownloads }

func (c Config) PluginsEnabled() []string {
	out := make([]string, len(c.pluginsEnabled))
	copy(out, c.pluginsEnabled)
	return out
}

func (c Config) HTTPCacheEnabled() bool { return c.httpCacheEnabled }

func (c Config) HTTPCacheDir() string { return c.httpCacheDir }

func (c Config) HTTPCacheTTL() time.Duration { return c.httpCacheTTL }

func (c Config) HashAlgo() string { return c.hashAlgo }

// ToConfigFileJSON serializes c into the same DTO shape WithConfigFile reads,
// so CLI flag-built configs can be handed to the scheduler, which only
// accepts a config file path.
func (c Config) ToConfigFileJSON() ([]byte, error) {
	respectRobots := c.respectRobotsTxt
	assetsDownload := c.assetsDownload
	dto := configDTO{
		SeedURLs:                    c.seedURLs,
		AllowedHosts:                c.allowedHosts,
		AllowedPathPrefix:           c.allowedPathPrefix,
		MaxDepth:                    c.maxDepth,
		MaxPages:                    c.maxPages,
		Concurrency:                 c.concurrency,
		BaseDelay:                   c.baseDelay,
		Jitter:                      c.jitter,
		RandomSeed:                  c.randomSeed,
		MaxAttempt:                  c.maxAttempt,
		BackoffInitialDuration:      c.backoffInitialDuration,
		BackoffMultiplier:           c.backoffMultiplier,
		BackoffMaxDuration:          c.backoffMaxDuration,
		Timeout:                     c.timeout,
		UserAgent:                   c.userAgent,
		OutputDir:                   c.outputDir,
		DryRun:                      c.dryRun,
		GlobalConcurrentRequests:    c.globalConcurrentRequests,
		PerDomainConcurrentRequests: c.perDomainConcurrentRequests,
		RateLimiterBurstSize:        c.rateLimiterBurstSize,
		RequestsPerSecond:           c.requestsPerSecond,
		MaxRetries:                  c.maxRetries,
		RetryBackoff:                c.retryBackoff,
		RetryJitter:                 c.retryJitter,
		MaxRedirects:                c.maxRedirects,
		MaxPageSizeMB:               c.maxPageSizeMB,
		MaxAssetSizeMB:              c.maxAssetSizeMB,
		RespectRobotsTxt:            &respectRobots,
		IncludePatterns:             c.includePatterns,
		ExcludePatterns:             c.excludePatterns,
		LinkSelectors:               c.linkSelectors,
		CheckpointPath:              c.checkpointPath,
		CheckpointBackend:           c.checkpointBackend,
		CheckpointTTLDays:           c.checkpointTTLDays,
		ConfigName:                  c.configName,
		AssetsDownload:              &assetsDownload,
		AssetTypes:                  c.assetTypes,
		MaxConcurrentAssetDownloads: c.maxConcurrentAssetDownloads,
		PluginsEnabled:              c.pluginsEnabled,
		HttpCacheEnabled:            c.httpCacheEnabled,
		HttpCacheDir:                c.httpCacheDir,
		HttpCacheTTL:                c.httpCacheTTL,
		HashAlgo:                    c.hashAlgo,
	}
	return json.MarshalIndent(dto, "", "  ")
}
