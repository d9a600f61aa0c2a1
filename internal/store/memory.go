package store

import (
	"context"
	"regexp"
	"sync"

	"github.com/google/uuid"

	"github.com/normanking/wikidex/internal/document"
)

// MemoryBackend stores documents in process memory. It backs tests and
// ephemeral runs where persistence is not wanted.
type MemoryBackend struct {
	mu    sync.RWMutex
	docs  map[string]*document.Document
	order []string
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{docs: make(map[string]*document.Document)}
}

// Insert stores a deep copy of doc under a fresh id.
func (m *MemoryBackend) Insert(ctx context.Context, doc *document.Document) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.NewString()
	clone := doc.Clone()
	clone.ID = id
	m.docs[id] = clone
	m.order = append(m.order, id)
	return id, nil
}

// Replace swaps the stored document for a deep copy of doc. Unknown ids are
// ignored.
func (m *MemoryBackend) Replace(ctx context.Context, id string, doc *document.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.docs[id]; !ok {
		return nil
	}
	clone := doc.Clone()
	clone.ID = id
	m.docs[id] = clone
	return nil
}

// Delete removes the document with the given id. Unknown ids are ignored.
func (m *MemoryBackend) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.docs[id]; !ok {
		return nil
	}
	delete(m.docs, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// Find returns deep copies of matching documents in insertion order.
func (m *MemoryBackend) Find(ctx context.Context, f Filter) ([]*document.Document, error) {
	var queryRe *regexp.Regexp
	if f.QueryContains != "" {
		re, err := ciPattern(f.QueryContains)
		if err != nil {
			return nil, err
		}
		queryRe = re
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*document.Document
	for _, id := range m.order {
		doc := m.docs[id]
		if !matchFilter(doc, f, queryRe) {
			continue
		}
		out = append(out, doc.Clone())
		if f.Limit > 0 && int64(len(out)) >= f.Limit {
			break
		}
	}
	return out, nil
}

// Count returns the number of stored documents.
func (m *MemoryBackend) Count(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.docs)), nil
}

// Totals aggregates statistics across all stored documents.
func (m *MemoryBackend) Totals(ctx context.Context) (*Totals, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t := &Totals{}
	counted := 0
	for _, doc := range m.docs {
		if doc.Statistics == nil {
			continue
		}
		t.TotalSections += int64(doc.Statistics.TotalSections)
		t.TotalWords += int64(doc.Statistics.TotalWords)
		t.TotalCharacters += int64(doc.Statistics.TotalCharacters)
		if doc.Statistics.HierarchyDepth > t.MaxDepth {
			t.MaxDepth = doc.Statistics.HierarchyDepth
		}
		counted++
	}
	if counted > 0 {
		t.AvgSections = float64(t.TotalSections) / float64(counted)
	}
	return t, nil
}

// Ping always succeeds.
func (m *MemoryBackend) Ping(ctx context.Context) error { return nil }

// Close is a no-op.
func (m *MemoryBackend) Close(ctx context.Context) error { return nil }
