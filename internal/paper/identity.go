package paper

import (
	"crypto/md5"
	"encoding/hex"
	"net/url"
	"strings"
)

// doiPrefixes are resolver and scheme prefixes stripped during DOI
// normalization, matched case-insensitively.
var doiPrefixes = []string{
	"https://doi.org/",
	"http://doi.org/",
	"https://dx.doi.org/",
	"http://dx.doi.org/",
	"doi.org/",
	"doi:",
}

// NormalizeDOI normalizes a DOI to a consistent form for comparison.
// It trims whitespace, removes resolver-URL and scheme prefixes, and
// lower-cases the remainder. Empty input yields empty output.
func NormalizeDOI(doi string) string {
	doi = strings.TrimSpace(doi)
	for _, prefix := range doiPrefixes {
		if len(doi) >= len(prefix) && strings.EqualFold(doi[:len(prefix)], prefix) {
			doi = doi[len(prefix):]
			break
		}
	}
	return strings.ToLower(strings.TrimSpace(doi))
}

// NormalizeURL produces a canonical form of a URL so that trivially
// different spellings of the same resource compare equal: scheme and host
// lower-cased, default port and trailing slash removed, fragment dropped,
// query kept. The function is total and idempotent; input that does not
// parse is returned trimmed and lower-cased.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return strings.ToLower(raw)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	switch u.Scheme {
	case "http":
		u.Host = strings.TrimSuffix(u.Host, ":80")
	case "https":
		u.Host = strings.TrimSuffix(u.Host, ":443")
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.Fragment = ""

	return u.String()
}

// normalizeWhitespace collapses runs of whitespace into single spaces and
// trims the ends.
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// IdentityKey computes the deduplication key for a paper: the normalized
// DOI when present, otherwise a content hash over the normalized title and
// journal name. The result is never empty.
func IdentityKey(p Paper) string {
	if doi := NormalizeDOI(p.DOI); doi != "" {
		return doi
	}

	title := normalizeWhitespace(strings.ToLower(p.Title))
	journal := normalizeWhitespace(strings.ToLower(p.JournalName))
	sum := md5.Sum([]byte(title + ":" + journal))
	return hex.EncodeToString(sum[:])
}
