package store

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"time"

	"github.com/rs/zerolog"

	"github.com/normanking/wikidex/internal/bus"
	"github.com/normanking/wikidex/internal/document"
	"github.com/normanking/wikidex/internal/logging"
)

// Adapter wires a storage backend to the parsing pipeline and implements
// the operations the agent and CLI expose.
type Adapter struct {
	backend Backend
	events  *bus.Bus
	log     zerolog.Logger

	database   string
	collection string
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithBus attaches an event bus; storage operations publish lifecycle
// events to it.
func WithBus(b *bus.Bus) Option {
	return func(a *Adapter) { a.events = b }
}

// WithNames sets the database and collection names reported by
// CollectionStatistics.
func WithNames(database, collection string) Option {
	return func(a *Adapter) {
		a.database = database
		a.collection = collection
	}
}

// NewAdapter creates an adapter around backend.
func NewAdapter(backend Backend, opts ...Option) *Adapter {
	a := &Adapter{
		backend:    backend,
		log:        logging.Component("store"),
		database:   "wikidex",
		collection: "wikipedia",
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// publish sends a lifecycle event when a bus is attached.
func (a *Adapter) publish(t bus.EventType, query, id string) {
	if a.events == nil {
		return
	}
	evt := bus.NewEvent(t)
	evt.Query = query
	evt.DocumentID = id
	a.events.Publish(evt)
}

// FindDuplicates returns the existing document that shares the new
// document's query, or failing that its url. At most one match; the url
// strategy only runs when the query strategy found nothing.
func (a *Adapter) FindDuplicates(ctx context.Context, doc *document.Document) ([]*document.Document, error) {
	var dups []*document.Document

	if q := doc.EffectiveQuery(); q != "" {
		found, err := a.backend.Find(ctx, Filter{Query: q, Limit: 1})
		if err != nil {
			return nil, fmt.Errorf("find duplicates by query: %w", err)
		}
		dups = append(dups, found...)
	}

	if u := doc.EffectiveURL(); u != "" && len(dups) == 0 {
		found, err := a.backend.Find(ctx, Filter{URL: u, Limit: 1})
		if err != nil {
			return nil, fmt.Errorf("find duplicates by url: %w", err)
		}
		dups = append(dups, found...)
	}

	return dups, nil
}

// Store parses content, computes statistics, resolves duplicates, and
// persists the result. A nil resolver updates the first duplicate, the
// non-interactive default.
func (a *Adapter) Store(ctx context.Context, content, sourceFile string, resolve Resolver) (*StoreResult, error) {
	doc := document.Parse(content)
	doc.SourceFile = sourceFile
	doc.Statistics = document.ComputeStatistics(doc)

	dups, err := a.FindDuplicates(ctx, doc)
	if err != nil {
		return nil, err
	}

	overwrote := false
	if len(dups) > 0 {
		mode := ModeUpdate
		if resolve != nil {
			mode = resolve(doc, dups)
		}

		switch mode {
		case ModeSkip:
			a.log.Info().Str("query", doc.DisplayTitle()).Msg("skipping duplicate document")
			a.publish(bus.EventDocumentSkipped, doc.EffectiveQuery(), "")
			return &StoreResult{Mode: ModeSkip, Document: doc}, nil

		case ModeUpdate:
			target := dups[0]
			now := time.Now()
			doc.UpdatedAt = &now
			if err := a.backend.Replace(ctx, target.ID, doc); err != nil {
				return nil, fmt.Errorf("update document: %w", err)
			}
			doc.ID = target.ID
			a.log.Info().Str("id", target.ID).Str("query", doc.DisplayTitle()).Msg("updated existing document")
			a.publish(bus.EventDocumentUpdated, doc.EffectiveQuery(), target.ID)
			return &StoreResult{ID: target.ID, Mode: ModeUpdate, Document: doc}, nil

		case ModeOverwrite:
			for _, dup := range dups {
				if err := a.backend.Delete(ctx, dup.ID); err != nil {
					return nil, fmt.Errorf("delete duplicate %s: %w", dup.ID, err)
				}
				a.publish(bus.EventDocumentDeleted, dup.EffectiveQuery(), dup.ID)
			}
			overwrote = true

		case ModeAdd:
			// Deliberate duplicate; fall through to insert.

		default:
			return nil, fmt.Errorf("unknown duplicate mode %q", mode)
		}
	}

	id, err := a.backend.Insert(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert document: %w", err)
	}
	doc.ID = id

	mode := ModeAdd
	if overwrote {
		mode = ModeOverwrite
	}
	a.log.Info().Str("id", id).Str("query", doc.DisplayTitle()).Msg("stored document")
	a.publish(bus.EventDocumentStored, doc.EffectiveQuery(), id)
	return &StoreResult{ID: id, Mode: mode, Document: doc}, nil
}

// GetByQuery returns the first document whose query contains the given
// text, case-insensitively. Identifier-shaped input is tried as an id
// lookup first. Returns nil without error when nothing matches.
func (a *Adapter) GetByQuery(ctx context.Context, query string) (*document.Document, error) {
	if query == "" {
		return nil, nil
	}

	byID, err := a.backend.Find(ctx, Filter{ID: query, Limit: 1})
	if err != nil {
		return nil, fmt.Errorf("find document by id: %w", err)
	}
	if len(byID) > 0 {
		return byID[0], nil
	}

	docs, err := a.backend.Find(ctx, Filter{QueryContains: query, Limit: 1})
	if err != nil {
		return nil, fmt.Errorf("find document by query: %w", err)
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return docs[0], nil
}

// GetByID returns the document with the given backend id, nil when absent.
func (a *Adapter) GetByID(ctx context.Context, id string) (*document.Document, error) {
	docs, err := a.backend.Find(ctx, Filter{ID: id, Limit: 1})
	if err != nil {
		return nil, fmt.Errorf("find document by id: %w", err)
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return docs[0], nil
}

// GetSection resolves a named section of the document matching query. The
// document is returned alongside so callers can attach context. A nil
// section with a non-nil document means the section was not found; a nil
// document means the query matched nothing.
func (a *Adapter) GetSection(ctx context.Context, query, section string) (*document.Section, *document.Document, error) {
	doc, err := a.GetByQuery(ctx, query)
	if err != nil || doc == nil {
		return nil, nil, err
	}
	return doc.ResolveSection(section), doc, nil
}

// Search scans stored documents for term and returns highlighted excerpts.
// The scope restricts which fields qualify a document; excerpts always come
// from the summary and section contents.
func (a *Adapter) Search(ctx context.Context, term string, scope SearchScope, limit int) ([]SearchResult, error) {
	if term == "" {
		return nil, fmt.Errorf("search term cannot be empty")
	}
	if scope == "" {
		scope = ScopeAll
	}

	re, err := ciPattern(term)
	if err != nil {
		return nil, err
	}

	docs, err := a.backend.Find(ctx, Filter{})
	if err != nil {
		return nil, fmt.Errorf("scan documents: %w", err)
	}

	results := make([]SearchResult, 0)
	for _, doc := range docs {
		if limit > 0 && len(results) >= limit {
			break
		}
		if !matchesScope(doc, re, scope) {
			continue
		}
		results = append(results, SearchResult{
			ID:      doc.ID,
			Title:   searchTitle(doc),
			URL:     doc.URL,
			Matches: collectMatches(doc, re),
		})
	}
	return results, nil
}

// matchesScope reports whether doc qualifies for the search scope. The
// titles scope consults the raw metadata entry as well; the all scope
// matches the promoted query, the summary, or any section content.
func matchesScope(doc *document.Document, re *regexp.Regexp, scope SearchScope) bool {
	sectionHit := func() bool {
		for _, sec := range doc.Sections {
			if re.MatchString(sec.Content) {
				return true
			}
		}
		return false
	}

	switch scope {
	case ScopeTitles:
		return re.MatchString(doc.Query) || re.MatchString(doc.Metadata["query"])
	case ScopeSummaries:
		return re.MatchString(doc.Summary)
	case ScopeSections:
		return sectionHit()
	default:
		return re.MatchString(doc.Query) || re.MatchString(doc.Summary) || sectionHit()
	}
}

// searchTitle names a search hit. Unlike the listing title there is no
// metadata fallback.
func searchTitle(doc *document.Document) string {
	if doc.Query != "" {
		return doc.Query
	}
	return "Unknown"
}

// collectMatches builds highlighted excerpts from the summary and sections
// in document order.
func collectMatches(doc *document.Document, re *regexp.Regexp) []SearchMatch {
	matches := make([]SearchMatch, 0)
	if re.MatchString(doc.Summary) {
		matches = append(matches, SearchMatch{Type: "summary", Content: buildExcerpt(doc.Summary, re)})
	}
	for _, key := range doc.SectionKeysInOrder() {
		sec := doc.Sections[key]
		if re.MatchString(sec.Content) {
			matches = append(matches, SearchMatch{
				Type:         "section",
				SectionTitle: sec.Title,
				Content:      buildExcerpt(sec.Content, re),
			})
		}
	}
	return matches
}

// List returns summaries of stored documents in insertion order.
func (a *Adapter) List(ctx context.Context, limit int) ([]DocumentSummary, error) {
	docs, err := a.backend.Find(ctx, Filter{Limit: int64(limit)})
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	out := make([]DocumentSummary, 0, len(docs))
	for _, doc := range docs {
		summary := DocumentSummary{
			ID:             doc.ID,
			Title:          doc.DisplayTitle(),
			URL:            doc.Metadata["url"],
			SummaryPreview: preview(doc.Summary, 200),
			CreatedAt:      doc.CreatedAt,
			UpdatedAt:      doc.UpdatedAt,
			Stats:          doc.Statistics,
			Sections:       make([]SectionOutline, 0, len(doc.SectionHierarchy)),
		}
		for _, entry := range doc.SectionHierarchy {
			summary.Sections = append(summary.Sections, SectionOutline{Title: entry.Title, Level: entry.Level})
		}
		out = append(out, summary)
	}
	return out, nil
}

// preview truncates s to max characters, marking elision.
func preview(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

// CollectionStatistics aggregates collection-wide counts. An empty
// collection is reported distinctly via the Message field.
func (a *Adapter) CollectionStatistics(ctx context.Context) (*CollectionStats, error) {
	count, err := a.backend.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}

	if count == 0 {
		return &CollectionStats{
			TotalDocuments: 0,
			Message:        "No Wikipedia documents found in collection",
		}, nil
	}

	totals, err := a.backend.Totals(ctx)
	if err != nil {
		return nil, err
	}

	return &CollectionStats{
		TotalDocuments:        count,
		TotalSections:         totals.TotalSections,
		TotalWords:            totals.TotalWords,
		TotalCharacters:       totals.TotalCharacters,
		AverageSectionsPerDoc: math.Round(totals.AvgSections*100) / 100,
		MaximumHierarchyDepth: totals.MaxDepth,
		CollectionName:        a.collection,
		DatabaseName:          a.database,
	}, nil
}

// Count reports how many documents are stored.
func (a *Adapter) Count(ctx context.Context) (int64, error) {
	return a.backend.Count(ctx)
}

// Ping verifies the backend connection.
func (a *Adapter) Ping(ctx context.Context) error {
	return a.backend.Ping(ctx)
}

// Close releases the backend.
func (a *Adapter) Close(ctx context.Context) error {
	return a.backend.Close(ctx)
}
