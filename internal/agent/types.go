// Package agent routes knowledge operations across the document store and
// the Wikipedia fetcher, wrapping every outcome in a structured result
// envelope.
package agent

import (
	"context"

	"github.com/normanking/wikidex/internal/store"
)

// ═══════════════════════════════════════════════════════════════════════════════
// OPERATIONS
// ═══════════════════════════════════════════════════════════════════════════════

// Operation identifies a dispatcher operation.
type Operation string

const (
	OpFetchDocument Operation = "fetch_document" // Full document, fetched on miss
	OpFetchSections Operation = "fetch_sections" // Filtered section list
	OpListDocuments Operation = "list_documents" // Collection listing
	OpSearchContent Operation = "search_content" // Highlighted content search
	OpGetStatistics Operation = "get_statistics" // Collection aggregates
)

// Valid reports whether the operation is one the dispatcher understands.
func (o Operation) Valid() bool {
	switch o {
	case OpFetchDocument, OpFetchSections, OpListDocuments, OpSearchContent, OpGetStatistics:
		return true
	}
	return false
}

// DefaultLimit bounds result lists when the caller does not say otherwise.
const DefaultLimit = 10

// Result statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// ═══════════════════════════════════════════════════════════════════════════════
// REQUEST / RESULT ENVELOPE
// ═══════════════════════════════════════════════════════════════════════════════

// Request is one dispatcher call.
type Request struct {
	Query         string            `json:"query"`
	Operation     Operation         `json:"operation"`
	SectionFilter string            `json:"section_filter,omitempty"`
	SearchScope   store.SearchScope `json:"search_scope,omitempty"`
	Limit         int               `json:"limit,omitempty"`
}

// Result is the structured envelope every operation returns. Collaborator
// failures land here as status "error"; they never propagate as Go errors.
type Result struct {
	Status    string         `json:"status"`
	Operation Operation      `json:"operation"`
	Query     string         `json:"query"`
	Data      any            `json:"data"`
	Metadata  map[string]any `json:"metadata"`
	Timestamp string         `json:"timestamp"`
	Error     string         `json:"error,omitempty"`
}

// fail marks the result as errored with a caller-facing message.
func (r *Result) fail(msg string) {
	r.Status = StatusError
	r.Error = msg
}

// ═══════════════════════════════════════════════════════════════════════════════
// SECTION EXTRACTION PAYLOAD
// ═══════════════════════════════════════════════════════════════════════════════

// SectionData is one section in a fetch_sections payload.
type SectionData struct {
	Key            string   `json:"key"`
	Title          string   `json:"title"`
	Level          int      `json:"level"`
	Content        string   `json:"content"`
	WordCount      int      `json:"word_count"`
	CharacterCount int      `json:"character_count"`
	ParentSection  string   `json:"parent_section,omitempty"`
	Subsections    []string `json:"subsections,omitempty"`
}

// DocumentInfo is the abbreviated document header attached to a section
// payload. Summary is omitted when a section filter is active.
type DocumentInfo struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Summary string `json:"summary,omitempty"`
}

// SectionsData is the fetch_sections payload.
type SectionsData struct {
	DocumentInfo DocumentInfo  `json:"document_info"`
	Sections     []SectionData `json:"sections"`
}

// ═══════════════════════════════════════════════════════════════════════════════
// COLLABORATORS
// ═══════════════════════════════════════════════════════════════════════════════

// Fetcher supplies raw article markdown for a topic. A topic with no
// article returns empty content without error.
type Fetcher interface {
	FetchMarkdown(ctx context.Context, topic string) (string, error)
}
