package crossref

import (
	"context"
	"html"
	"log/slog"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/tanakalab/jtrack/internal/fetch"
	"github.com/tanakalab/jtrack/internal/netclass"
	"github.com/tanakalab/jtrack/internal/paper"
)

// worksResponse is the envelope returned by the works endpoint.
type worksResponse struct {
	Message struct {
		Items []WorkItem `json:"items"`
	} `json:"message"`
}

// WorkItem is a single work record from the CrossRef API.
type WorkItem struct {
	Title           []string    `json:"title"`
	Author          []WorkNamed `json:"author"`
	DOI             string      `json:"DOI"`
	Abstract        string      `json:"abstract"`
	Published       DateField   `json:"published"`
	PublishedOnline DateField   `json:"published-online"`
	PublishedPrint  DateField   `json:"published-print"`
	Issued          DateField   `json:"issued"`
}

// WorkNamed holds the name parts of a contributor.
type WorkNamed struct {
	Given  string `json:"given"`
	Family string `json:"family"`
}

// DateField is a CrossRef date value: a year with optional month and day.
type DateField struct {
	DateParts [][]int `json:"date-parts"`
}

// stripPolicy removes every markup tag, keeping only text content.
var stripPolicy = bluemonday.StrictPolicy()

// Fetcher adapts the works client to the orchestrator contract.
type Fetcher struct {
	client *Client
	logger *slog.Logger
}

// NewFetcher creates a CrossRef fetcher around an existing client.
func NewFetcher(client *Client, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{client: client, logger: logger}
}

// Kind identifies the adapter in run statistics.
func (f *Fetcher) Kind() string { return "crossref" }

// Fetch queries the journal's works endpoint and emits one paper per
// usable item. Items without a title are dropped silently. A transport or
// protocol failure, after retries, is classified and returned.
func (f *Fetcher) Fetch(ctx context.Context, journal paper.Journal, since time.Time, emit func(paper.Paper)) *fetch.Failure {
	items, err := f.client.Works(ctx, journal.ISSN, since)
	if err != nil {
		return &fetch.Failure{
			Category: netclass.Classify(err),
			Message:  err.Error(),
		}
	}

	for _, item := range items {
		p, ok := f.parseItem(item, journal)
		if !ok {
			continue
		}
		emit(p)
	}

	return nil
}

// parseItem converts one work record into a paper. The boolean is false
// when the item lacks a title.
func (f *Fetcher) parseItem(item WorkItem, journal paper.Journal) (paper.Paper, bool) {
	title := ""
	if len(item.Title) > 0 {
		title = strings.TrimSpace(item.Title[0])
	}
	if title == "" {
		f.logger.Debug("dropping work without title", "journal", journal.Name, "doi", item.DOI)
		return paper.Paper{}, false
	}

	p := paper.Paper{
		Title:       title,
		JournalName: journal.Name,
		Authors:     itemAuthors(item.Author),
		Abstract:    cleanAbstract(item.Abstract),
		DOI:         item.DOI,
		Published:   resolveDate(item),
	}
	if item.DOI != "" {
		p.URL = "https://doi.org/" + item.DOI
	}

	return p, true
}

// itemAuthors assembles "Given Family" names in source order.
func itemAuthors(named []WorkNamed) []string {
	var authors []string
	for _, a := range named {
		var parts []string
		if a.Given != "" {
			parts = append(parts, a.Given)
		}
		if a.Family != "" {
			parts = append(parts, a.Family)
		}
		if len(parts) > 0 {
			authors = append(authors, strings.Join(parts, " "))
		}
	}
	return authors
}

// cleanAbstract strips markup from abstracts that arrive as JATS or other
// inline-tagged text.
func cleanAbstract(abstract string) string {
	if !strings.HasPrefix(strings.TrimSpace(abstract), "<") {
		return abstract
	}
	stripped := stripPolicy.Sanitize(abstract)
	return strings.TrimSpace(html.UnescapeString(stripped))
}

// resolveDate picks the publication date from the work's date fields in
// fixed priority order. A field whose components do not form a valid
// calendar date is skipped in favor of the next one.
func resolveDate(item WorkItem) *time.Time {
	for _, field := range []DateField{item.Published, item.PublishedOnline, item.PublishedPrint, item.Issued} {
		if t, ok := field.date(); ok {
			return &t
		}
	}
	return nil
}

// date converts the field's first date-parts triple into a calendar date.
// Missing month and day components default to 1.
func (d DateField) date() (time.Time, bool) {
	if len(d.DateParts) == 0 || len(d.DateParts[0]) == 0 {
		return time.Time{}, false
	}

	parts := d.DateParts[0]
	year := parts[0]
	month, day := 1, 1
	if len(parts) > 1 {
		month = parts[1]
	}
	if len(parts) > 2 {
		day = parts[2]
	}

	if year <= 0 || month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes out-of-range days (Feb 30 becomes Mar 2); a
	// changed component means the original was not a real calendar date.
	if t.Year() != year || t.Month() != time.Month(month) || t.Day() != day {
		return time.Time{}, false
	}

	return t, true
}
