// Package store implements the deduplicating SQLite store for papers.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tanakalab/jtrack/internal/paper"
)

// selectPaperFields is the standard field list for SELECT queries.
const selectPaperFields = `unique_id, title, journal_name, authors, abstract,
	doi, url, published_date, fetched_at, notified`

// Store wraps the SQLite papers database. Migration runs in Open; a Store
// handed to callers is always at the target schema version.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens or creates the papers database at the given path, creating
// parent directories as needed, and brings the schema up to the target
// version. A bootstrap or migration failure is returned and the store is
// unusable.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite doesn't support concurrent writes
	db.SetMaxOpenConns(1)

	if err := migrate(db, logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveBatch inserts the given papers in a single transaction and returns
// the subset that was actually inserted. A record whose identity key,
// normalized DOI, or normalized URL already exists is skipped without
// error; only a hard storage failure aborts the batch.
func (s *Store) SaveBatch(papers []paper.Paper) ([]paper.Paper, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO papers (
			unique_id, normalized_doi, normalized_url,
			title, journal_name, authors, abstract, doi, url,
			published_date, fetched_at, notified
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0)
	`)
	if err != nil {
		return nil, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	fetchedAt := time.Now().UTC().Truncate(time.Second)
	var inserted []paper.Paper

	for _, p := range papers {
		res, err := stmt.Exec(
			paper.IdentityKey(p),
			nullableStringValue(paper.NormalizeDOI(p.DOI)),
			nullableStringValue(paper.NormalizeURL(p.URL)),
			p.Title, p.JournalName,
			encodeAuthors(p.Authors),
			p.Abstract, p.DOI, p.URL,
			nullableDate(p.Published),
			fetchedAt.Format(time.RFC3339),
		)
		if err != nil {
			return nil, fmt.Errorf("inserting paper %q: %w", p.Title, err)
		}

		rows, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("checking insert result: %w", err)
		}
		if rows > 0 {
			t := fetchedAt
			p.FetchedAt = &t
			inserted = append(inserted, p)
			s.logger.Info("new paper saved",
				"title", truncate(p.Title, 60), "journal", p.JournalName)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing batch: %w", err)
	}

	return inserted, nil
}

// IsNew reports whether the paper is unknown to the store. A paper is
// already known when it matches an existing row on identity key, on
// non-empty normalized DOI, or on non-empty normalized URL. Any single
// match suffices even if the other keys differ.
func (s *Store) IsNew(p paper.Paper) (bool, error) {
	key := paper.IdentityKey(p)
	ndoi := paper.NormalizeDOI(p.DOI)
	nurl := paper.NormalizeURL(p.URL)

	var one int
	err := s.db.QueryRow(`
		SELECT 1 FROM papers
		WHERE unique_id = ?
		   OR (? <> '' AND normalized_doi = ?)
		   OR (? <> '' AND normalized_url = ?)
		LIMIT 1
	`, key, ndoi, ndoi, nurl, nurl).Scan(&one)

	if err == sql.ErrNoRows {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("probing existence: %w", err)
	}
	return false, nil
}

// GetUnnotified returns papers not yet notified, newest-fetched first.
func (s *Store) GetUnnotified() ([]paper.Paper, error) {
	rows, err := s.db.Query(`
		SELECT ` + selectPaperFields + `
		FROM papers WHERE notified = 0
		ORDER BY fetched_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying unnotified papers: %w", err)
	}
	defer rows.Close()

	return scanPapers(rows)
}

// GetRecent returns papers fetched within the last given days, ordered by
// journal name and then published date descending.
func (s *Store) GetRecent(days int) ([]paper.Paper, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -days).Format(time.RFC3339)
	rows, err := s.db.Query(`
		SELECT `+selectPaperFields+`
		FROM papers WHERE fetched_at >= ?
		ORDER BY journal_name, published_date DESC
	`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("querying recent papers: %w", err)
	}
	defer rows.Close()

	return scanPapers(rows)
}

// MarkNotified flips the notified flag for each given paper.
func (s *Store) MarkNotified(papers []paper.Paper) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("UPDATE papers SET notified = 1 WHERE unique_id = ?")
	if err != nil {
		return fmt.Errorf("preparing update: %w", err)
	}
	defer stmt.Close()

	for _, p := range papers {
		if _, err := stmt.Exec(paper.IdentityKey(p)); err != nil {
			return fmt.Errorf("marking %q notified: %w", p.Title, err)
		}
	}

	return tx.Commit()
}

// Stats summarizes the store contents.
type Stats struct {
	Total      int            `json:"total"`
	Notified   int            `json:"notified"`
	Unnotified int            `json:"unnotified"`
	ByJournal  map[string]int `json:"by_journal"`
}

// GetStats returns paper counts, total and per journal.
func (s *Store) GetStats() (*Stats, error) {
	stats := &Stats{ByJournal: map[string]int{}}

	if err := s.db.QueryRow("SELECT COUNT(*) FROM papers").Scan(&stats.Total); err != nil {
		return nil, fmt.Errorf("counting papers: %w", err)
	}
	if err := s.db.QueryRow("SELECT COUNT(*) FROM papers WHERE notified = 1").Scan(&stats.Notified); err != nil {
		return nil, fmt.Errorf("counting notified papers: %w", err)
	}
	stats.Unnotified = stats.Total - stats.Notified

	rows, err := s.db.Query("SELECT journal_name, COUNT(*) FROM papers GROUP BY journal_name")
	if err != nil {
		return nil, fmt.Errorf("counting per journal: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var count int
		if err := rows.Scan(&name, &count); err != nil {
			return nil, err
		}
		stats.ByJournal[name] = count
	}

	return stats, rows.Err()
}

// scanner is satisfied by both sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanPaper(sc scanner) (*paper.Paper, error) {
	var p paper.Paper
	var uniqueID string
	var authors, abstract, doi, rawURL, published, fetched sql.NullString
	var notified int

	err := sc.Scan(
		&uniqueID, &p.Title, &p.JournalName, &authors, &abstract,
		&doi, &rawURL, &published, &fetched, &notified,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	p.Authors = decodeAuthors(authors.String)
	p.Abstract = abstract.String
	p.DOI = doi.String
	p.URL = rawURL.String
	if published.Valid && published.String != "" {
		if t, ok := parseStoredTime(published.String); ok {
			p.Published = &t
		}
	}
	if fetched.Valid && fetched.String != "" {
		if t, ok := parseStoredTime(fetched.String); ok {
			p.FetchedAt = &t
		}
	}

	return &p, nil
}

func scanPapers(rows *sql.Rows) ([]paper.Paper, error) {
	var papers []paper.Paper
	for rows.Next() {
		p, err := scanPaper(rows)
		if err != nil {
			return nil, err
		}
		if p != nil {
			papers = append(papers, *p)
		}
	}
	return papers, rows.Err()
}

// parseStoredTime accepts the formats this store has written over its
// life: RFC3339, bare ISO datetime, and date-only.
func parseStoredTime(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// nullableStringValue converts a string to sql.NullString, treating empty as NULL.
func nullableStringValue(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullableDate(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format("2006-01-02"), Valid: true}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
