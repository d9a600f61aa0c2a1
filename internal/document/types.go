// Package document converts loosely structured article markdown into a
// hierarchical section tree with stable keys, parent/child links, and
// derived statistics.
package document

import (
	"time"
)

// ContentTypeWikipedia marks documents produced by the article parser.
const ContentTypeWikipedia = "wikipedia"

// Document is a fully parsed article. The field layout doubles as the
// durable storage contract: other tooling may read persisted documents
// directly, so the bson/json names are load-bearing.
type Document struct {
	// ID is assigned by the storage backend on insert. It is not part of
	// the serialized document body; each backend manages identity itself.
	ID string `bson:"-" json:"id,omitempty"`

	Metadata map[string]string `bson:"metadata" json:"metadata"`

	// Promoted copies of well-known metadata keys.
	Query       string `bson:"query,omitempty" json:"query,omitempty"`
	URL         string `bson:"url,omitempty" json:"url,omitempty"`
	Format      string `bson:"format,omitempty" json:"format,omitempty"`
	ExtractedAt string `bson:"extracted_at,omitempty" json:"extracted_at,omitempty"`

	// Summary is the plain text preceding the first recognized section.
	Summary string `bson:"summary" json:"summary"`

	Sections         map[string]*Section `bson:"sections" json:"sections"`
	SectionHierarchy []HierarchyEntry    `bson:"section_hierarchy" json:"section_hierarchy"`

	Statistics *Statistics `bson:"statistics,omitempty" json:"statistics,omitempty"`

	ContentType string `bson:"content_type" json:"content_type"`
	SourceFile  string `bson:"source_file,omitempty" json:"source_file,omitempty"`

	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt *time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// Section is one heading's worth of content. Sections are immutable once
// attached to a document.
type Section struct {
	Title          string   `bson:"title" json:"title"`
	Content        string   `bson:"content" json:"content"`
	Level          int      `bson:"level" json:"level"`
	WordCount      int      `bson:"word_count" json:"word_count"`
	CharacterCount int      `bson:"character_count" json:"character_count"`
	ParentSection  string   `bson:"parent_section,omitempty" json:"parent_section,omitempty"`
	Subsections    []string `bson:"subsections,omitempty" json:"subsections,omitempty"`
}

// HierarchyEntry records one heading in document order. The hierarchy keeps
// every heading encountered, including ones whose section entry was later
// overwritten by a key collision.
type HierarchyEntry struct {
	Key   string `bson:"key" json:"key"`
	Title string `bson:"title" json:"title"`
	Level int    `bson:"level" json:"level"`
}

// Statistics holds counts derived from the parsed tree.
type Statistics struct {
	TotalSections   int `bson:"total_sections" json:"total_sections"`
	TotalWords      int `bson:"total_words" json:"total_words"`
	TotalCharacters int `bson:"total_characters" json:"total_characters"`
	HierarchyDepth  int `bson:"hierarchy_depth" json:"hierarchy_depth"`
}

// Heading is a classified section heading.
type Heading struct {
	Title string
	Level int
}

// EffectiveQuery returns the promoted query field, falling back to the raw
// metadata entry.
func (d *Document) EffectiveQuery() string {
	if d.Query != "" {
		return d.Query
	}
	return d.Metadata["query"]
}

// EffectiveURL returns the promoted url field, falling back to the raw
// metadata entry.
func (d *Document) EffectiveURL() string {
	if d.URL != "" {
		return d.URL
	}
	return d.Metadata["url"]
}

// DisplayTitle returns a human-readable name for the document.
func (d *Document) DisplayTitle() string {
	if q := d.EffectiveQuery(); q != "" {
		return q
	}
	return "Unknown"
}

// SectionKeysInOrder returns the unique section keys in first-appearance
// document order. Keys that collided keep the position of their first
// heading while mapping to the surviving (last-written) section.
func (d *Document) SectionKeysInOrder() []string {
	seen := make(map[string]struct{}, len(d.Sections))
	keys := make([]string, 0, len(d.Sections))
	for _, entry := range d.SectionHierarchy {
		if _, dup := seen[entry.Key]; dup {
			continue
		}
		seen[entry.Key] = struct{}{}
		if _, ok := d.Sections[entry.Key]; ok {
			keys = append(keys, entry.Key)
		}
	}
	return keys
}

// Clone returns a deep copy of the document. Backends store and return
// clones so callers cannot mutate persisted state through shared pointers.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := *d
	if d.Metadata != nil {
		out.Metadata = make(map[string]string, len(d.Metadata))
		for k, v := range d.Metadata {
			out.Metadata[k] = v
		}
	}
	if d.Sections != nil {
		out.Sections = make(map[string]*Section, len(d.Sections))
		for k, s := range d.Sections {
			cp := *s
			if s.Subsections != nil {
				cp.Subsections = append([]string(nil), s.Subsections...)
			}
			out.Sections[k] = &cp
		}
	}
	if d.SectionHierarchy != nil {
		out.SectionHierarchy = append([]HierarchyEntry(nil), d.SectionHierarchy...)
	}
	if d.Statistics != nil {
		st := *d.Statistics
		out.Statistics = &st
	}
	if d.UpdatedAt != nil {
		ts := *d.UpdatedAt
		out.UpdatedAt = &ts
	}
	return &out
}
