// Package paper defines the core domain types for journal articles.
package paper

import "time"

// Paper represents a single journal article flowing through the pipeline.
type Paper struct {
	Title       string     `json:"title"`
	JournalName string     `json:"journal_name"`
	Authors     []string   `json:"authors,omitempty"`
	Abstract    string     `json:"abstract,omitempty"`
	DOI         string     `json:"doi,omitempty"` // Raw DOI, possibly prefixed with a resolver URL
	URL         string     `json:"url,omitempty"`
	Published   *time.Time `json:"published,omitempty"`  // Calendar date only, no time-of-day semantics
	FetchedAt   *time.Time `json:"fetched_at,omitempty"` // Set by the store on insert, not by adapters
}

// Journal describes a tracked journal. Loaded once per run from the
// configured journal list and never mutated afterwards.
type Journal struct {
	Name       string `json:"name"`
	Abbrev     string `json:"abbrev,omitempty"`
	Publisher  string `json:"publisher,omitempty"`
	JournalURL string `json:"journal_url,omitempty"`
	FeedURL    string `json:"feed_url,omitempty"`
	ISSN       string `json:"issn,omitempty"`
	Status     string `json:"status,omitempty"`
}

// noFeedPlaceholder marks journals whose feed column holds a dash
// instead of a URL.
const noFeedPlaceholder = "-"

// StatusWorking is the operational status flag required for feed fetching.
const StatusWorking = "Working"

// HasFeed reports whether the journal has a usable feed: a feed URL is
// present, it is not the placeholder value, and the journal is marked
// operational.
func (j Journal) HasFeed() bool {
	return j.FeedURL != "" && j.FeedURL != noFeedPlaceholder && j.Status == StatusWorking
}
