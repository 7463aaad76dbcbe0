package checkpoint

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/url"
	"sort"

	"github.com/suscrawl/suscrawl/internal/config"
)

// crawlRelevantFields is the subset of config.Config that changes what gets
// crawled, as opposed to where output lands. Hashing only these means a mere
// output-path rename does not invalidate an otherwise-identical checkpoint.
type crawlRelevantFields struct {
	SeedURLs        []string             `json:"seed_urls"`
	AllowedHosts    []string             `json:"allowed_hosts"`
	IncludePatterns []config.PatternRule `json:"include_patterns"`
	ExcludePatterns []config.PatternRule `json:"exclude_patterns"`
	MaxDepth        int                  `json:"max_depth"`
	LinkSelectors   []string             `json:"link_selectors"`
}

// ConfigHash computes the SHA-256 fingerprint stored in Metadata.ConfigHash
// and compared against on every resume.
func ConfigHash(cfg config.Config) string {
	seeds := make([]string, 0, len(cfg.SeedURLs()))
	for _, u := range cfg.SeedURLs() {
		seeds = append(seeds, normalizeURLForHash(u))
	}
	sort.Strings(seeds)

	hosts := make([]string, 0, len(cfg.AllowedHosts()))
	for h := range cfg.AllowedHosts() {
		hosts = append(hosts, h)
	}
	sort.Strings(hosts)

	include := append([]config.PatternRule(nil), cfg.IncludePatterns()...)
	exclude := append([]config.PatternRule(nil), cfg.ExcludePatterns()...)
	sort.Slice(include, func(i, j int) bool { return include[i].Pattern < include[j].Pattern })
	sort.Slice(exclude, func(i, j int) bool { return exclude[i].Pattern < exclude[j].Pattern })

	selectors := append([]string(nil), cfg.LinkSelectors()...)
	sort.Strings(selectors)

	fields := crawlRelevantFields{
		SeedURLs:        seeds,
		AllowedHosts:    hosts,
		IncludePatterns: include,
		ExcludePatterns: exclude,
		MaxDepth:        cfg.MaxDepth(),
		LinkSelectors:   selectors,
	}

	data, err := json.Marshal(fields)
	if err != nil {
		// Marshal of a struct built entirely from primitives and other
		// marshalable structs cannot fail; this is unreachable in practice.
		return ""
	}

	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func normalizeURLForHash(u url.URL) string {
	u.Fragment = ""
	return u.String()
}
