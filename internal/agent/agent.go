package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/normanking/wikidex/internal/bus"
	"github.com/normanking/wikidex/internal/document"
	"github.com/normanking/wikidex/internal/logging"
	"github.com/normanking/wikidex/internal/store"
)

// Agent answers knowledge queries database-first: a topic already in the
// store is served from it, anything else is fetched from Wikipedia, stored,
// and then served.
type Agent struct {
	store   *store.Adapter
	fetcher Fetcher
	events  *bus.Bus
	log     zerolog.Logger
}

// Option configures an Agent.
type Option func(*Agent)

// WithBus publishes lifecycle events to the given bus.
func WithBus(b *bus.Bus) Option {
	return func(a *Agent) {
		a.events = b
	}
}

// NewAgent creates an agent over the given store and fetcher.
func NewAgent(st *store.Adapter, fetcher Fetcher, opts ...Option) *Agent {
	a := &Agent{
		store:   st,
		fetcher: fetcher,
		log:     logging.Component("agent"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Query dispatches one operation and returns its result envelope. Unknown
// operations and collaborator failures come back as status "error".
func (a *Agent) Query(ctx context.Context, req Request) *Result {
	if req.Operation == "" {
		req.Operation = OpFetchDocument
	}
	if req.Limit == 0 {
		req.Limit = DefaultLimit
	}

	res := &Result{
		Status:    StatusSuccess,
		Operation: req.Operation,
		Query:     req.Query,
		Metadata: map[string]any{
			"database_checked":  false,
			"wikipedia_fetched": false,
			"cached":            false,
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}

	start := time.Now()
	switch req.Operation {
	case OpListDocuments:
		a.handleList(ctx, req, res)
	case OpGetStatistics:
		a.handleStatistics(ctx, res)
	case OpSearchContent:
		a.handleSearch(ctx, req, res)
	case OpFetchDocument, OpFetchSections:
		a.handleFetch(ctx, req, res)
	default:
		res.fail(fmt.Sprintf("Unknown operation: %s", req.Operation))
	}

	a.log.Debug().
		Str("operation", string(req.Operation)).
		Str("query", req.Query).
		Str("status", res.Status).
		Dur("elapsed", time.Since(start)).
		Msg("query dispatched")

	if a.events != nil {
		evt := bus.NewEvent(bus.EventQueryServed)
		evt.Query = req.Query
		evt.Operation = string(req.Operation)
		evt.DurationMs = time.Since(start).Milliseconds()
		evt.Error = res.Error
		a.events.Publish(evt)
	}
	return res
}

// ═══════════════════════════════════════════════════════════════════════════════
// COLLECTION OPERATIONS
// ═══════════════════════════════════════════════════════════════════════════════

func (a *Agent) handleList(ctx context.Context, req Request, res *Result) {
	summaries, err := a.store.List(ctx, 0)
	if err != nil {
		res.fail(fmt.Sprintf("Error listing documents: %s", err))
		return
	}
	res.Metadata["database_checked"] = true

	limited := false
	if req.Limit > 0 && len(summaries) > req.Limit {
		summaries = summaries[:req.Limit]
		limited = true
	}
	res.Data = summaries
	res.Metadata["limited"] = limited
	res.Metadata["total_found"] = len(summaries)
}

func (a *Agent) handleStatistics(ctx context.Context, res *Result) {
	stats, err := a.store.CollectionStatistics(ctx)
	if err != nil {
		res.fail(fmt.Sprintf("Error getting statistics: %s", err))
		return
	}
	res.Metadata["database_checked"] = true
	res.Data = stats
}

func (a *Agent) handleSearch(ctx context.Context, req Request, res *Result) {
	scope := req.SearchScope
	if scope == "" {
		scope = store.ScopeAll
	}
	matches, err := a.store.Search(ctx, req.Query, scope, 0)
	if err != nil {
		res.fail(fmt.Sprintf("Error searching content: %s", err))
		return
	}
	res.Metadata["database_checked"] = true

	limited := false
	if req.Limit > 0 && len(matches) > req.Limit {
		matches = matches[:req.Limit]
		limited = true
	}
	res.Data = matches
	res.Metadata["limited"] = limited
	res.Metadata["total_matches"] = len(matches)
	res.Metadata["search_scope"] = string(scope)
}

// ═══════════════════════════════════════════════════════════════════════════════
// FETCH OPERATIONS
// ═══════════════════════════════════════════════════════════════════════════════

func (a *Agent) handleFetch(ctx context.Context, req Request, res *Result) {
	doc, err := a.store.GetByQuery(ctx, req.Query)
	if err != nil {
		res.fail(fmt.Sprintf("Error fetching data: %s", err))
		return
	}
	res.Metadata["database_checked"] = true

	if doc != nil {
		res.Metadata["cached"] = true
		a.log.Info().Str("query", req.Query).Msg("serving document from store")
	} else {
		a.log.Info().Str("query", req.Query).Msg("document not stored, fetching from wikipedia")
		doc, err = a.fetchAndStore(ctx, req.Query, res)
		if err != nil {
			res.fail(fmt.Sprintf("Error fetching data: %s", err))
			return
		}
		if doc == nil {
			res.fail(fmt.Sprintf("Could not retrieve information for: %s", req.Query))
			return
		}
	}

	switch req.Operation {
	case OpFetchSections:
		data := extractSections(doc, req.SectionFilter, req.Limit)
		res.Data = data
		res.Metadata["sections_returned"] = len(data.Sections)
		if req.SectionFilter != "" {
			res.Metadata["section_filter"] = req.SectionFilter
		} else {
			res.Metadata["section_filter"] = nil
		}
	default:
		res.Data = doc
		res.Metadata["sections_count"] = len(doc.Sections)
	}
}

// fetchAndStore pulls the article from Wikipedia, persists it, and re-reads
// the stored document. A topic with no article returns (nil, nil).
func (a *Agent) fetchAndStore(ctx context.Context, topic string, res *Result) (*document.Document, error) {
	content, err := a.fetcher.FetchMarkdown(ctx, topic)
	if err != nil {
		a.publishFetchFailed(topic, err.Error())
		return nil, err
	}
	if content == "" {
		a.log.Warn().Str("query", topic).Msg("no wikipedia results found")
		a.publishFetchFailed(topic, "no article found")
		return nil, nil
	}

	if a.events != nil {
		evt := bus.NewEvent(bus.EventArticleFetched)
		evt.Query = topic
		a.events.Publish(evt)
	}

	if _, err := a.store.Store(ctx, content, "", nil); err != nil {
		return nil, err
	}
	res.Metadata["wikipedia_fetched"] = true
	return a.store.GetByQuery(ctx, topic)
}

func (a *Agent) publishFetchFailed(topic, detail string) {
	if a.events == nil {
		return
	}
	evt := bus.NewEvent(bus.EventFetchFailed)
	evt.Query = topic
	evt.Error = detail
	a.events.Publish(evt)
}

// extractSections builds the fetch_sections payload: sections whose title
// contains the filter, in document order, capped at limit. The document
// summary travels along only when no filter is active.
func extractSections(doc *document.Document, filter string, limit int) *SectionsData {
	needle := strings.ToLower(filter)
	sections := make([]SectionData, 0, len(doc.Sections))
	for _, key := range doc.SectionKeysInOrder() {
		sec := doc.Sections[key]
		if sec == nil {
			continue
		}
		if filter != "" && !strings.Contains(strings.ToLower(sec.Title), needle) {
			continue
		}
		sections = append(sections, SectionData{
			Key:            key,
			Title:          sec.Title,
			Level:          sec.Level,
			Content:        sec.Content,
			WordCount:      sec.WordCount,
			CharacterCount: sec.CharacterCount,
			ParentSection:  sec.ParentSection,
			Subsections:    sec.Subsections,
		})
	}
	if limit > 0 && len(sections) > limit {
		sections = sections[:limit]
	}

	title := doc.Query
	if title == "" {
		title = "Unknown"
	}
	info := DocumentInfo{Title: title, URL: doc.URL}
	if filter == "" {
		info.Summary = doc.Summary
	}
	return &SectionsData{DocumentInfo: info, Sections: sections}
}
