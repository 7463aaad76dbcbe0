package robots

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/suscrawl/suscrawl/internal/metadata"
	"github.com/suscrawl/suscrawl/internal/robots/cache"
)

/*
Responsibilities

- Fetch robots.txt per host
- Cache rules for crawl duration
- Enforce allow/disallow rules before enqueue

Robots checks occur before a URL enters the frontier.
*/

// robotState holds the mutable, shared state behind a CachedRobot. It is
// referenced through a pointer so that CachedRobot itself stays a small,
// comparable value (copies share the same underlying cache).
type robotState struct {
	mu    sync.RWMutex
	rules map[string]ruleSet
}

// Robot decides whether a URL may be crawled under its host's robots.txt.
// The scheduler holds one Robot for the lifetime of a crawl; CachedRobot is
// the only production implementation.
type Robot interface {
	Init(userAgent string)
	Decide(u url.URL) (Decision, *RobotsError)
}

// Compile-time interface check
var _ Robot = (*CachedRobot)(nil)

// CachedRobot decides whether a URL may be crawled, fetching and caching
// robots.txt once per host for the lifetime of the crawl.
type CachedRobot struct {
	state     *robotState
	fetcher   *RobotsFetcher
	sink      metadata.MetadataSink
	userAgent string
}

// NewCachedRobot builds an uninitialized CachedRobot. Call Init or
// InitWithCache before Decide.
func NewCachedRobot(sink metadata.MetadataSink) CachedRobot {
	return CachedRobot{sink: sink}
}

// Init wires an in-memory robots.txt cache for the given user agent.
func (c *CachedRobot) Init(userAgent string) {
	c.InitWithCache(userAgent, cache.NewMemoryCache())
}

// InitWithCache wires the given cache implementation for the given user agent.
func (c *CachedRobot) InitWithCache(userAgent string, ca cache.Cache) {
	c.userAgent = userAgent
	c.fetcher = NewRobotsFetcher(c.sink, userAgent, ca)
	c.state = &robotState{rules: make(map[string]ruleSet)}
}

// Decide reports whether u may be crawled under the target host's robots.txt.
// robots.txt is fetched at most once per host; subsequent calls reuse the
// mapped ruleSet. A 404 (or any 4xx besides 429) fails open.
func (c *CachedRobot) Decide(u url.URL) (Decision, *RobotsError) {
	scheme := u.Scheme
	if scheme == "" {
		scheme = "https"
	}
	key := scheme + "://" + u.Host

	c.state.mu.RLock()
	rs, ok := c.state.rules[key]
	c.state.mu.RUnlock()

	if !ok {
		fetchResult, ferr := c.fetcher.Fetch(context.Background(), scheme, u.Host)
		if ferr != nil {
			c.sink.RecordError(
				time.Now(),
				"robots",
				"CachedRobot.Decide",
				mapRobotsErrorToMetadataCause(ferr),
				ferr.Error(),
				[]metadata.Attribute{
					metadata.NewAttr(metadata.AttrURL, u.String()),
				},
			)
			return Decision{}, ferr
		}

		rs = MapResponseToRuleSet(fetchResult.Response, c.userAgent, fetchResult.FetchedAt)

		c.state.mu.Lock()
		c.state.rules[key] = rs
		c.state.mu.Unlock()
	}

	return evaluateDecision(u, rs), nil
}

// crawlDelayValue unwraps ruleSet's optional crawl-delay pointer into the
// plain duration Decision carries; absence reads as zero (no override).
func crawlDelayValue(rs ruleSet) time.Duration {
	if d := rs.CrawlDelay(); d != nil {
		return *d
	}
	return 0
}

// evaluateDecision applies the longest-match-wins rule (ties favor Allow)
// against the ruleSet matched for the target host.
func evaluateDecision(u url.URL, rs ruleSet) Decision {
	path := u.Path
	if path == "" {
		path = "/"
	}

	if !rs.hasGroups {
		return Decision{Url: u, Allowed: true, Reason: EmptyRuleSet, CrawlDelay: crawlDelayValue(rs)}
	}
	if !rs.matchedGroup {
		return Decision{Url: u, Allowed: true, Reason: NoMatchingRules, CrawlDelay: crawlDelayValue(rs)}
	}

	bestAllowLen := -1
	for _, rule := range rs.allowRules {
		if matchesRobotsPattern(path, rule.prefix) && len(rule.prefix) > bestAllowLen {
			bestAllowLen = len(rule.prefix)
		}
	}

	bestDisallowLen := -1
	for _, rule := range rs.disallowRules {
		if matchesRobotsPattern(path, rule.prefix) && len(rule.prefix) > bestDisallowLen {
			bestDisallowLen = len(rule.prefix)
		}
	}

	allowed := bestDisallowLen <= bestAllowLen
	reason := AllowedByRobots
	if !allowed {
		reason = DisallowedByRobots
	}

	return Decision{
		Url:        u,
		Allowed:    allowed,
		Reason:     reason,
		CrawlDelay: crawlDelayValue(rs),
	}
}

// matchesRobotsPattern matches a robots.txt path rule against path. Rules may
// contain "*" as a multi-character wildcard and a trailing "$" to anchor the
// match to the end of path.
func matchesRobotsPattern(path, pattern string) bool {
	if pattern == "" || pattern == "/" {
		return true
	}

	anchored := strings.HasSuffix(pattern, "$")
	if anchored {
		pattern = strings.TrimSuffix(pattern, "$")
	}

	parts := strings.Split(pattern, "*")
	if !strings.HasPrefix(path, parts[0]) {
		return false
	}
	remaining := path[len(parts[0]):]

	if len(parts) == 1 {
		return !anchored || remaining == ""
	}

	for i := 1; i < len(parts); i++ {
		part := parts[i]
		if part == "" {
			continue
		}

		idx := strings.Index(remaining, part)
		if idx == -1 {
			return false
		}

		if i == len(parts)-1 && anchored && idx+len(part) != len(remaining) {
			return false
		}

		remaining = remaining[idx+len(part):]
	}

	return true
}
