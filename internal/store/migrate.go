package store

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/tanakalab/jtrack/internal/paper"
)

// SchemaVersion is the version the store migrates to on Open.
const SchemaVersion = 2

// A migration step brings the schema from version-1 to version. Steps are
// idempotent so that a database predating version tracking (no metadata
// table) can be walked from zero without harm.
type migration struct {
	version int
	apply   func(tx *sql.Tx) error
}

var migrations = []migration{
	{1, applyBaseSchema},
	{2, applyNormalizedKeys},
}

func migrate(db *sql.DB, logger *slog.Logger) error {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS metadata (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("creating metadata table: %w", err)
	}

	current, err := schemaVersion(db)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("beginning migration %d: %w", m.version, err)
		}

		if err := m.apply(tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", m.version, err)
		}
		if _, err := tx.Exec(`
			INSERT INTO metadata (key, value) VALUES ('schema_version', ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value
		`, fmt.Sprint(m.version)); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording schema version %d: %w", m.version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", m.version, err)
		}
		logger.Info("schema migrated", "version", m.version)
	}

	return nil
}

// schemaVersion reads the recorded version, zero when absent.
func schemaVersion(db *sql.DB) (int, error) {
	var raw string
	err := db.QueryRow("SELECT value FROM metadata WHERE key = 'schema_version'").Scan(&raw)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}

	var v int
	if _, err := fmt.Sscanf(raw, "%d", &v); err != nil {
		return 0, fmt.Errorf("parsing schema version %q: %w", raw, err)
	}
	return v, nil
}

func applyBaseSchema(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS papers (
			unique_id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			journal_name TEXT NOT NULL,
			authors TEXT,
			abstract TEXT,
			doi TEXT,
			url TEXT,
			published_date TEXT,
			fetched_at TEXT NOT NULL,
			notified INTEGER NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_papers_journal ON papers(journal_name);
		CREATE INDEX IF NOT EXISTS idx_papers_fetched ON papers(fetched_at);
	`)
	return err
}

// applyNormalizedKeys adds the normalized_doi and normalized_url columns,
// backfills them from the raw values, and enforces uniqueness among
// non-empty entries. Backfill skips rows whose normalized value would
// collide with one already present, leaving the existing owner untouched.
func applyNormalizedKeys(tx *sql.Tx) error {
	for _, col := range []string{"normalized_doi", "normalized_url"} {
		has, err := hasColumn(tx, "papers", col)
		if err != nil {
			return err
		}
		if !has {
			if _, err := tx.Exec(fmt.Sprintf("ALTER TABLE papers ADD COLUMN %s TEXT", col)); err != nil {
				return fmt.Errorf("adding column %s: %w", col, err)
			}
		}
	}

	if err := backfillNormalized(tx); err != nil {
		return err
	}

	_, err := tx.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_papers_normalized_doi
			ON papers(normalized_doi) WHERE normalized_doi IS NOT NULL AND normalized_doi <> '';
		CREATE UNIQUE INDEX IF NOT EXISTS idx_papers_normalized_url
			ON papers(normalized_url) WHERE normalized_url IS NOT NULL AND normalized_url <> '';
	`)
	return err
}

// backfillNormalized fills each normalized column independently. A
// column that already holds a value is left untouched; only NULL cells
// are computed from the raw column.
func backfillNormalized(tx *sql.Tx) error {
	columns := []struct {
		name      string
		source    string
		normalize func(string) string
	}{
		{"normalized_doi", "doi", paper.NormalizeDOI},
		{"normalized_url", "url", paper.NormalizeURL},
	}

	for _, c := range columns {
		if err := backfillColumn(tx, c.name, c.source, c.normalize); err != nil {
			return err
		}
	}
	return nil
}

func backfillColumn(tx *sql.Tx, col, source string, normalize func(string) string) error {
	seen, err := existingValues(tx, col)
	if err != nil {
		return err
	}

	type row struct {
		id  string
		raw sql.NullString
	}

	rows, err := tx.Query(fmt.Sprintf(
		"SELECT unique_id, %s FROM papers WHERE %s IS NULL ORDER BY rowid", source, col))
	if err != nil {
		return fmt.Errorf("selecting %s backfill candidates: %w", col, err)
	}

	var pending []row
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.id, &r.raw); err != nil {
			rows.Close()
			return err
		}
		pending = append(pending, r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	for _, r := range pending {
		v := normalize(r.raw.String)
		if v == "" || seen[v] {
			continue
		}

		if _, err := tx.Exec(fmt.Sprintf(
			"UPDATE papers SET %s = ? WHERE unique_id = ? AND %s IS NULL", col, col),
			v, r.id); err != nil {
			return fmt.Errorf("backfilling %s for row %s: %w", col, r.id, err)
		}
		seen[v] = true
	}

	return nil
}

func existingValues(tx *sql.Tx, col string) (map[string]bool, error) {
	rows, err := tx.Query(fmt.Sprintf(
		"SELECT %s FROM papers WHERE %s IS NOT NULL AND %s <> ''", col, col, col))
	if err != nil {
		return nil, fmt.Errorf("collecting existing %s values: %w", col, err)
	}
	defer rows.Close()

	seen := map[string]bool{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		seen[v] = true
	}
	return seen, rows.Err()
}

func hasColumn(tx *sql.Tx, table, column string) (bool, error) {
	rows, err := tx.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, fmt.Errorf("inspecting table %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}
