// Package urlutil provides deterministic URL canonicalization shared by the
// frontier, checkpoint store, and link extractor so that membership tests
// and dedup keys always compare canonical forms.
package urlutil

import (
	"errors"
	"net/url"
	"sort"
	"strings"
)

// ErrUnsupportedScheme is returned by Normalize when the URL's scheme is
// anything other than http or https.
var ErrUnsupportedScheme = errors.New("urlutil: unsupported scheme")

// Canonicalize applies a deterministic normalization to a URL, producing a
// canonical form suitable for dedup-key comparison.
//
// The normalization follows these rules:
//   - Scheme and host are lowercased
//   - Default ports are omitted (e.g., :80 for http, :443 for https)
//   - Fragments are removed
//   - Query parameters are sorted by key (not removed)
//   - Path is cleaned (trailing slashes removed, except for root "/")
//   - Percent-encoded unreserved characters are decoded
//
// Properties:
//   - Pure: no state, no memory
//   - Deterministic: same input always produces same output
//   - Idempotent: Canonicalize(Canonicalize(url)) == Canonicalize(url)
//   - Context-free: does not depend on crawl history
func Canonicalize(sourceUrl url.URL) url.URL {
	// Create a copy to avoid mutating the original
	canonical := sourceUrl

	// Lowercase scheme and host
	canonical.Scheme = lowerASCII(canonical.Scheme)
	canonical.Host = lowerASCII(canonical.Host)

	// Remove default port if present
	if host, port := canonical.Hostname(), canonical.Port(); port != "" {
		if (canonical.Scheme == "http" && port == "80") ||
			(canonical.Scheme == "https" && port == "443") {
			canonical.Host = host
		}
	}

	// Percent-decode unreserved characters in the path before cleaning it,
	// so that e.g. "/gu%69de" and "/guide" dedup to the same key.
	canonical.Path = decodeUnreservedPath(canonical.Path)
	canonical.RawPath = ""

	// Clean the path: remove trailing slashes (except root)
	if len(canonical.Path) > 1 {
		canonical.Path = stripTrailingSlash(canonical.Path)
	}

	// Remove fragment (anchor)
	canonical.Fragment = ""
	canonical.RawFragment = ""

	// Sort query parameters by key so equivalent queries in different
	// orders dedup to the same canonical string.
	canonical.RawQuery = sortedQuery(canonical.Query())
	canonical.ForceQuery = false

	return canonical
}

// Resolve turns a possibly-relative reference into an absolute URL. If ref
// already carries a scheme and host, it is returned unchanged. Otherwise it
// is resolved against the given default scheme and host (root path).
func Resolve(ref url.URL, defaultScheme string, defaultHost string) url.URL {
	if ref.Host != "" {
		if ref.Scheme == "" {
			ref.Scheme = defaultScheme
		}
		return ref
	}

	base := url.URL{Scheme: defaultScheme, Host: defaultHost, Path: "/"}
	return *base.ResolveReference(&ref)
}

// FilterByHost returns the subset of urls whose host matches target,
// case-insensitively. It is used to keep link discovery within the crawl's
// allowed scope after resolving relative references to absolute form.
func FilterByHost(host string, urls []url.URL) []url.URL {
	host = lowerASCII(host)
	filtered := make([]url.URL, 0, len(urls))
	for _, u := range urls {
		if lowerASCII(u.Host) == host {
			filtered = append(filtered, u)
		}
	}
	return filtered
}

// Normalize applies Canonicalize and additionally rejects any URL whose
// scheme is not http or https, returning ErrUnsupportedScheme. The link
// extractor uses it to drop non-http(s) links.
func Normalize(sourceUrl url.URL) (url.URL, error) {
	canonical := Canonicalize(sourceUrl)
	if canonical.Scheme != "http" && canonical.Scheme != "https" {
		return url.URL{}, ErrUnsupportedScheme
	}
	return canonical, nil
}

// sortedQuery re-encodes query values with keys sorted lexically, so two
// queries differing only in parameter order produce identical strings.
func sortedQuery(values url.Values) string {
	if len(values) == 0 {
		return ""
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		vs := values[k]
		sort.Strings(vs)
		for j, v := range vs {
			if i > 0 || j > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(k))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(v))
		}
	}
	return b.String()
}

// decodeUnreservedPath percent-decodes any escape sequence in path whose
// decoded byte is an RFC 3986 "unreserved" character (ALPHA / DIGIT / "-" /
// "." / "_" / "~"). Escapes for reserved or otherwise meaningful characters
// (e.g. %2F for "/") are left untouched so the path structure is preserved.
func decodeUnreservedPath(path string) string {
	if !strings.Contains(path, "%") {
		return path
	}

	var b strings.Builder
	b.Grow(len(path))
	for i := 0; i < len(path); i++ {
		if path[i] == '%' && i+2 < len(path) {
			if hi, ok := hexVal(path[i+1]); ok {
				if lo, ok := hexVal(path[i+2]); ok {
					decoded := byte(hi<<4 | lo)
					if isUnreserved(decoded) {
						b.WriteByte(decoded)
						i += 2
						continue
					}
				}
			}
		}
		b.WriteByte(path[i])
	}
	return b.String()
}

func isUnreserved(b byte) bool {
	switch {
	case b >= 'A' && b <= 'Z', b >= 'a' && b <= 'z', b >= '0' && b <= '9':
		return true
	case b == '-' || b == '.' || b == '_' || b == '~':
		return true
	}
	return false
}

func hexVal(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// lowerASCII converts ASCII characters to lowercase without allocating.
// This is faster than strings.ToLower for ASCII-only strings.
func lowerASCII(s string) string {
	var needsLower bool
	for i := 0; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'Z' {
			needsLower = true
			break
		}
	}
	if !needsLower {
		return s
	}
	b := make([]byte, len(s))
	copy(b, s)
	for i := 0; i < len(b); i++ {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}

// stripTrailingSlash removes trailing slashes from a path.
func stripTrailingSlash(path string) string {
	for len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}
	return path
}
