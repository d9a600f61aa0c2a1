package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/normanking/wikidex/internal/document"
)

// Mode is a duplicate resolution strategy applied when storing a document
// that collides with existing ones.
type Mode string

const (
	// ModeSkip leaves the collection untouched.
	ModeSkip Mode = "skip"
	// ModeAdd inserts the new document alongside the duplicates.
	ModeAdd Mode = "add"
	// ModeUpdate replaces the first duplicate in place, retaining its id.
	ModeUpdate Mode = "update"
	// ModeOverwrite deletes every duplicate and inserts the new document.
	ModeOverwrite Mode = "overwrite"
)

// ParseMode converts a user-supplied string into a Mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeSkip, ModeAdd, ModeUpdate, ModeOverwrite:
		return m, nil
	default:
		return "", fmt.Errorf("unknown duplicate mode %q (want skip, add, update, or overwrite)", s)
	}
}

// Resolver decides how a new document interacts with detected duplicates.
// A nil resolver applies ModeUpdate, the non-interactive default.
type Resolver func(newDoc *document.Document, duplicates []*document.Document) Mode

// SearchScope restricts which document fields a content search considers.
type SearchScope string

const (
	ScopeAll       SearchScope = "all"
	ScopeTitles    SearchScope = "titles"
	ScopeSummaries SearchScope = "summaries"
	ScopeSections  SearchScope = "sections"
)

// ParseScope converts a user-supplied string into a SearchScope. The empty
// string resolves to ScopeAll.
func ParseScope(s string) (SearchScope, error) {
	switch sc := SearchScope(strings.ToLower(strings.TrimSpace(s))); sc {
	case "":
		return ScopeAll, nil
	case ScopeAll, ScopeTitles, ScopeSummaries, ScopeSections:
		return sc, nil
	default:
		return "", fmt.Errorf("unknown search scope %q (want all, titles, summaries, or sections)", s)
	}
}

// StoreResult reports what Store did with a parsed document.
type StoreResult struct {
	// ID is the stored document's identifier, empty when skipped.
	ID string

	// Mode is the resolution that was applied. ModeAdd covers the
	// no-duplicate path.
	Mode Mode

	// Document is the parsed document with statistics attached.
	Document *document.Document
}

// SectionOutline is one entry of a document's heading outline.
type SectionOutline struct {
	Title string `json:"title"`
	Level int    `json:"level"`
}

// DocumentSummary is the listing view of a stored document.
type DocumentSummary struct {
	ID             string               `json:"id"`
	Title          string               `json:"title"`
	URL            string               `json:"url"`
	SummaryPreview string               `json:"summary_preview"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      *time.Time           `json:"updated_at,omitempty"`
	Stats          *document.Statistics `json:"stats,omitempty"`
	Sections       []SectionOutline     `json:"sections"`
}

// SearchMatch is a single excerpt where the search term occurred.
type SearchMatch struct {
	// Type is "summary" or "section".
	Type         string `json:"type"`
	SectionTitle string `json:"section_title,omitempty"`
	Content      string `json:"content"`
}

// SearchResult is one matching document with its highlighted excerpts.
// Matches come from the summary and section contents; a document matched
// only by title carries an empty match list.
type SearchResult struct {
	ID      string        `json:"id"`
	Title   string        `json:"title"`
	URL     string        `json:"url"`
	Matches []SearchMatch `json:"matches"`
}

// CollectionStats summarizes the whole collection. A collection with no
// documents reports TotalDocuments zero with Message set; the aggregate
// fields are only meaningful when documents exist.
type CollectionStats struct {
	TotalDocuments        int64   `json:"total_documents"`
	Message               string  `json:"message,omitempty"`
	TotalSections         int64   `json:"total_sections"`
	TotalWords            int64   `json:"total_words"`
	TotalCharacters       int64   `json:"total_characters"`
	AverageSectionsPerDoc float64 `json:"average_sections_per_doc"`
	MaximumHierarchyDepth int     `json:"maximum_hierarchy_depth"`
	CollectionName        string  `json:"collection_name,omitempty"`
	DatabaseName          string  `json:"database_name,omitempty"`
}
