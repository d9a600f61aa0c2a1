// Package store persists parsed documents and implements the query
// operations the agent and CLI expose. Three interchangeable backends cover
// the deployment spectrum: MongoDB for shared collections, SQLite for local
// single-file storage, and an in-memory map for tests and ephemeral runs.
package store

import (
	"context"

	"github.com/normanking/wikidex/internal/document"
)

// Filter selects stored documents. Callers set at most one predicate;
// backends may index the exact-match fields.
type Filter struct {
	// ID matches the backend-assigned identifier exactly. Malformed
	// identifiers match nothing rather than erroring.
	ID string

	// Query and URL match the promoted document fields exactly.
	Query string
	URL   string

	// QueryContains is a case-insensitive substring match against the
	// promoted query field or the raw metadata entry.
	QueryContains string

	// Limit caps the result count when positive.
	Limit int64
}

// Backend is the persistence contract shared by all storage implementations.
// Find with a zero Filter lists every document in insertion order. Replace
// and Delete are no-ops for unknown ids, matching replace-one semantics.
// Absent documents are reported as empty results, not errors.
type Backend interface {
	Insert(ctx context.Context, doc *document.Document) (string, error)
	Replace(ctx context.Context, id string, doc *document.Document) error
	Delete(ctx context.Context, id string) error
	Find(ctx context.Context, f Filter) ([]*document.Document, error)
	Count(ctx context.Context) (int64, error)
	Totals(ctx context.Context) (*Totals, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Totals aggregates per-document statistics across the collection.
type Totals struct {
	TotalSections   int64
	TotalWords      int64
	TotalCharacters int64
	AvgSections     float64
	MaxDepth        int
}
