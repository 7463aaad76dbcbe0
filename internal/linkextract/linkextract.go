// Package linkextract parses an HTML document and resolves the links and
// asset references it carries to absolute, normalized URLs.
//
// It is deliberately independent of internal/sanitizer and
// internal/extractor: those packages operate on the readability-trimmed
// content node used for Markdown conversion, while the crawl frontier needs
// every link and asset reference in the *original* document, including ones
// that live outside the extracted content area (navigation, footer, head).
package linkextract

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/suscrawl/suscrawl/pkg/urlutil"
)

// DefaultLinkSelectors is used when a crawl config supplies none.
var DefaultLinkSelectors = []string{"a[href]"}

// assetSelectors map a CSS-like selector to the attribute holding the
// asset's URL. Order is insignificant; results are deduplicated.
var assetSelectors = map[string]string{
	"img[src]":               "src",
	"link[rel=stylesheet]":   "href",
	"script[src]":            "src",
	"source[src]":            "src",
	"link[rel=preload][as=font]": "href",
}

// schemeDenylist holds non-fetchable URI schemes the extractor must never
// resolve or enqueue, per spec §4.2 step 4.
var schemeDenylist = map[string]bool{
	"mailto":     true,
	"javascript": true,
	"tel":        true,
	"data":       true,
}

// ExtractLinks parses html and returns the set of absolute, normalized
// navigational link URLs it references, resolved against either an
// in-document <base href> (if present in <head>) or fallbackBase.
//
// Malformed HTML never raises: goquery/golang.org/x/net/html tolerate
// broken markup by design, and a document with no matching elements simply
// yields an empty set.
func ExtractLinks(html []byte, fallbackBase url.URL, selectors []string) []url.URL {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil
	}

	base := resolveBase(doc, fallbackBase)
	if len(selectors) == 0 {
		selectors = DefaultLinkSelectors
	}

	seen := make(map[string]bool)
	var out []url.URL
	for _, sel := range selectors {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			href, ok := s.Attr("href")
			if !ok {
				href, ok = s.Attr("src")
			}
			if !ok {
				return
			}
			if u, ok := resolveCandidate(href, base); ok {
				key := u.String()
				if !seen[key] {
					seen[key] = true
					out = append(out, u)
				}
			}
		})
	}
	return out
}

// ExtractAssets parses html and returns the set of absolute, normalized
// asset URLs (images, stylesheets, scripts, fonts) it references.
func ExtractAssets(html []byte, fallbackBase url.URL) []url.URL {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil
	}

	base := resolveBase(doc, fallbackBase)

	seen := make(map[string]bool)
	var out []url.URL
	for selector, attr := range assetSelectors {
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			ref, ok := s.Attr(attr)
			if !ok {
				return
			}
			if u, ok := resolveCandidate(ref, base); ok {
				key := u.String()
				if !seen[key] {
					seen[key] = true
					out = append(out, u)
				}
			}
		})
	}
	return out
}

// resolveBase detects the first <base href> in <head> (per spec, the first
// one wins when several exist) and resolves it against fallbackBase. When
// absent or empty, fallbackBase is used unchanged.
func resolveBase(doc *goquery.Document, fallbackBase url.URL) url.URL {
	baseHref, exists := doc.Find("head base[href]").First().Attr("href")
	if !exists || strings.TrimSpace(baseHref) == "" {
		return fallbackBase
	}

	baseURL, err := url.Parse(strings.TrimSpace(baseHref))
	if err != nil {
		return fallbackBase
	}

	resolved := fallbackBase.ResolveReference(baseURL)
	return *resolved
}

// resolveCandidate resolves a raw href/src reference against base, rejects
// non-fetchable schemes and empty/fragment-only references, and normalizes
// the result. The bool return is false when the candidate should be dropped.
func resolveCandidate(raw string, base url.URL) (url.URL, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasPrefix(raw, "#") {
		return url.URL{}, false
	}

	ref, err := url.Parse(raw)
	if err != nil {
		return url.URL{}, false
	}

	if schemeDenylist[strings.ToLower(ref.Scheme)] {
		return url.URL{}, false
	}

	resolved := base.ResolveReference(ref)

	normalized, err := urlutil.Normalize(*resolved)
	if err != nil {
		return url.URL{}, false
	}

	return normalized, true
}
