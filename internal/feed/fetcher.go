// Package feed fetches papers from journal RSS and Atom feeds.
package feed

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/tanakalab/jtrack/internal/fetch"
	"github.com/tanakalab/jtrack/internal/netclass"
	"github.com/tanakalab/jtrack/internal/paper"
)

// doiResolverFragment marks a DOI embedded in an entry link.
const doiResolverFragment = "doi.org/"

// Fetcher parses a journal's feed document into papers.
type Fetcher struct {
	client *http.Client
	logger *slog.Logger
}

// NewFetcher creates a feed fetcher with the given per-request timeout.
func NewFetcher(timeout time.Duration, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Kind identifies the adapter in run statistics.
func (f *Fetcher) Kind() string { return "feed" }

// Fetch parses the journal's feed and emits one paper per usable entry.
// Entries without a title are dropped silently. Entries published before
// since are filtered out after parsing, since feed documents carry no
// chronological guarantee. A failure to fetch or parse the whole document
// is returned as a feed_fetch_error.
func (f *Fetcher) Fetch(ctx context.Context, journal paper.Journal, since time.Time, emit func(paper.Paper)) *fetch.Failure {
	parser := gofeed.NewParser()
	parser.Client = f.client

	doc, err := parser.ParseURLWithContext(journal.FeedURL, ctx)
	if err != nil {
		return &fetch.Failure{
			Category: netclass.CategoryFeedFetchError,
			Message:  err.Error(),
		}
	}

	for _, item := range doc.Items {
		p, ok := f.parseEntry(item, journal)
		if !ok {
			continue
		}
		if p.Published != nil && p.Published.Before(since) {
			continue
		}
		emit(p)
	}

	return nil
}

// parseEntry converts one feed entry into a paper. The boolean is false
// when the entry lacks a title.
func (f *Fetcher) parseEntry(item *gofeed.Item, journal paper.Journal) (paper.Paper, bool) {
	title := strings.TrimSpace(item.Title)
	if title == "" {
		f.logger.Debug("dropping entry without title", "journal", journal.Name)
		return paper.Paper{}, false
	}

	p := paper.Paper{
		Title:       title,
		JournalName: journal.Name,
		Authors:     entryAuthors(item),
		Abstract:    item.Description,
		DOI:         entryDOI(item),
		URL:         item.Link,
	}

	switch {
	case item.PublishedParsed != nil:
		t := *item.PublishedParsed
		p.Published = &t
	case item.UpdatedParsed != nil:
		t := *item.UpdatedParsed
		p.Published = &t
	}

	return p, true
}

// entryAuthors collects author names from the repeated author structure,
// falling back to the single-author field.
func entryAuthors(item *gofeed.Item) []string {
	var authors []string
	for _, a := range item.Authors {
		if a != nil && a.Name != "" {
			authors = append(authors, a.Name)
		}
	}
	if len(authors) == 0 && item.Author != nil && item.Author.Name != "" {
		authors = []string{item.Author.Name}
	}
	return authors
}

// entryDOI extracts a DOI from a resolver-URL fragment in the entry link,
// falling back to the prism:doi extension field.
func entryDOI(item *gofeed.Item) string {
	if idx := strings.Index(item.Link, doiResolverFragment); idx >= 0 {
		return item.Link[idx+len(doiResolverFragment):]
	}
	if prism, ok := item.Extensions["prism"]; ok {
		if dois, ok := prism["doi"]; ok && len(dois) > 0 {
			return dois[0].Value
		}
	}
	return ""
}
