package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/normanking/wikidex/internal/document"
)

// sqliteSchema holds the table layout. Document bodies are stored as JSON
// payloads with the promoted query and url denormalized into indexed
// columns for exact-match lookups.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS wikipedia_documents (
	id         TEXT PRIMARY KEY,
	query      TEXT NOT NULL DEFAULT '',
	url        TEXT NOT NULL DEFAULT '',
	payload    TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_wikipedia_documents_query ON wikipedia_documents(query);
CREATE INDEX IF NOT EXISTS idx_wikipedia_documents_url ON wikipedia_documents(url);
`

// SQLiteBackend persists documents in a single local database file using
// the pure-Go driver.
type SQLiteBackend struct {
	db *sql.DB
}

// NewSQLiteBackend opens (and if needed creates) the database at path.
func NewSQLiteBackend(path string) (*SQLiteBackend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite works best with a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("execute %s: %w", pragma, err)
		}
	}

	// The driver executes one statement per call.
	for _, stmt := range strings.Split(sqliteSchema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("initialize schema: %w", err)
		}
	}

	return &SQLiteBackend{db: db}, nil
}

// marshalPayload serializes the document body without its backend id.
func marshalPayload(doc *document.Document) (string, error) {
	clone := doc.Clone()
	clone.ID = ""
	data, err := json.Marshal(clone)
	if err != nil {
		return "", fmt.Errorf("marshal document: %w", err)
	}
	return string(data), nil
}

// Insert stores doc under a fresh id.
func (s *SQLiteBackend) Insert(ctx context.Context, doc *document.Document) (string, error) {
	id := uuid.NewString()

	payload, err := marshalPayload(doc)
	if err != nil {
		return "", err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO wikipedia_documents (id, query, url, payload, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, doc.Query, doc.URL, payload, doc.CreatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("insert document: %w", err)
	}
	return id, nil
}

// Replace swaps the stored row for doc. Unknown ids update nothing.
func (s *SQLiteBackend) Replace(ctx context.Context, id string, doc *document.Document) error {
	payload, err := marshalPayload(doc)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE wikipedia_documents SET query = ?, url = ?, payload = ?, created_at = ? WHERE id = ?`,
		doc.Query, doc.URL, payload, doc.CreatedAt, id,
	)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	return nil
}

// Delete removes the row with the given id. Unknown ids delete nothing.
func (s *SQLiteBackend) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM wikipedia_documents WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// Find returns matching documents in insertion order. Exact-match
// predicates use the indexed columns; substring predicates decode and
// filter rows in Go.
func (s *SQLiteBackend) Find(ctx context.Context, f Filter) ([]*document.Document, error) {
	var (
		where string
		args  []any
	)
	switch {
	case f.ID != "":
		where, args = "WHERE id = ?", []any{f.ID}
	case f.Query != "":
		where, args = "WHERE query = ?", []any{f.Query}
	case f.URL != "":
		where, args = "WHERE url = ?", []any{f.URL}
	}

	var queryRe *regexp.Regexp
	if f.QueryContains != "" {
		re, err := ciPattern(f.QueryContains)
		if err != nil {
			return nil, err
		}
		queryRe = re
	}

	query := `SELECT id, payload FROM wikipedia_documents ` + where + ` ORDER BY rowid`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var out []*document.Document
	for rows.Next() {
		var id, payload string
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}

		var doc document.Document
		if err := json.Unmarshal([]byte(payload), &doc); err != nil {
			return nil, fmt.Errorf("unmarshal document %s: %w", id, err)
		}
		doc.ID = id

		if !matchFilter(&doc, f, queryRe) {
			continue
		}
		out = append(out, &doc)
		if f.Limit > 0 && int64(len(out)) >= f.Limit {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return out, nil
}

// Count returns the number of stored documents.
func (s *SQLiteBackend) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM wikipedia_documents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}

// Totals aggregates the per-document statistics embedded in the JSON
// payloads.
func (s *SQLiteBackend) Totals(ctx context.Context) (*Totals, error) {
	const query = `
		SELECT
			COALESCE(SUM(json_extract(payload, '$.statistics.total_sections')), 0),
			COALESCE(SUM(json_extract(payload, '$.statistics.total_words')), 0),
			COALESCE(SUM(json_extract(payload, '$.statistics.total_characters')), 0),
			COALESCE(AVG(json_extract(payload, '$.statistics.total_sections')), 0),
			COALESCE(MAX(json_extract(payload, '$.statistics.hierarchy_depth')), 0)
		FROM wikipedia_documents`

	t := &Totals{}
	err := s.db.QueryRowContext(ctx, query).Scan(
		&t.TotalSections, &t.TotalWords, &t.TotalCharacters, &t.AvgSections, &t.MaxDepth,
	)
	if err != nil {
		return nil, fmt.Errorf("aggregate statistics: %w", err)
	}
	return t, nil
}

// Ping verifies the database connection.
func (s *SQLiteBackend) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

// Close flushes the WAL and closes the database.
func (s *SQLiteBackend) Close(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	// Checkpoint is best effort; close regardless.
	s.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)")

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
