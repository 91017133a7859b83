package learn

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

const sqlSchema = `
CREATE TABLE IF NOT EXISTS vocab_records (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    canonical  TEXT NOT NULL DEFAULT '',
    header     TEXT NOT NULL,
    attributes TEXT NOT NULL DEFAULT '{}',
    UNIQUE(canonical, header)
);
CREATE INDEX IF NOT EXISTS idx_vocab_canonical ON vocab_records(canonical);
`

// SQLStore persists vocabulary records in SQLite. Inserts are idempotent
// (unique on canonical+header), which makes interleaved batch workers safe
// without additional locking.
type SQLStore struct {
	db *sql.DB
}

// OpenSQLStore opens or creates a SQLite-backed store at path and applies
// the schema.
func OpenSQLStore(path string) (*SQLStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open vocabulary db %s: %w", path, err)
	}
	for _, stmt := range strings.Split(sqlSchema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("vocabulary db schema: %w", err)
		}
	}
	return &SQLStore{db: db}, nil
}

// Load returns all records in insertion order.
func (s *SQLStore) Load() ([]Record, error) {
	rows, err := s.db.Query(`SELECT canonical, header, attributes FROM vocab_records ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("load vocabulary db: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var attrs string
		if err := rows.Scan(&rec.Canonical, &rec.Header, &attrs); err != nil {
			return nil, fmt.Errorf("load vocabulary db: %w", err)
		}
		if attrs != "" && attrs != "{}" {
			if err := json.Unmarshal([]byte(attrs), &rec.Attributes); err != nil {
				return nil, fmt.Errorf("%w: bad attributes for %q: %v", ErrStoreCorrupt, rec.Header, err)
			}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load vocabulary db: %w", err)
	}
	return records, nil
}

// Append inserts one record; duplicates are ignored.
func (s *SQLStore) Append(rec Record) error {
	attrs := "{}"
	if len(rec.Attributes) > 0 {
		raw, err := json.Marshal(rec.Attributes)
		if err != nil {
			return fmt.Errorf("encode vocabulary record: %w", err)
		}
		attrs = string(raw)
	}
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO vocab_records (canonical, header, attributes) VALUES (?, ?, ?)`,
		rec.Canonical, rec.Header, attrs)
	if err != nil {
		return fmt.Errorf("append vocabulary db: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
