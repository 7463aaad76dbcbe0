package scheduler

import (
	"net/url"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/suscrawl/suscrawl/internal/config"
)

// inScope reports whether u may be admitted to the frontier given the
// configured domain allowlist and include/exclude scope patterns. An empty
// allowedHosts set means every host is allowed, matching config.Config's
// own "empty means all hostnames are allowed" contract.
func inScope(u url.URL, allowedHosts map[string]struct{}, include, exclude []config.PatternRule) bool {
	if len(allowedHosts) > 0 {
		if _, ok := allowedHosts[u.Host]; !ok {
			return false
		}
	}

	target := u.String()

	for _, rule := range exclude {
		if matchesPattern(target, rule) {
			return false
		}
	}

	if len(include) == 0 {
		return true
	}
	for _, rule := range include {
		if matchesPattern(target, rule) {
			return true
		}
	}
	return false
}

// matchesPattern evaluates a single PatternRule against target. "regex" type
// rules are matched with regexp.MatchString; anything else (including an
// empty/unrecognized type) falls back to shell-glob semantics, mirroring the
// teacher's "be lenient about ambiguous config" stance elsewhere in config.go.
func matchesPattern(target string, rule config.PatternRule) bool {
	if rule.Pattern == "" {
		return false
	}
	if strings.EqualFold(rule.Type, "regex") {
		matched, err := regexp.MatchString(rule.Pattern, target)
		return err == nil && matched
	}
	matched, err := filepath.Match(rule.Pattern, target)
	return err == nil && matched
}
