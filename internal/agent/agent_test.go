package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/normanking/wikidex/internal/bus"
	"github.com/normanking/wikidex/internal/document"
	"github.com/normanking/wikidex/internal/store"
)

// ═══════════════════════════════════════════════════════════════════════════════
// TEST FIXTURES
// ═══════════════════════════════════════════════════════════════════════════════

const malariaMarkdown = `# Malaria

**Query:** Malaria

**URL:** https://en.wikipedia.org/wiki/Malaria

**Extract Format:** wiki

**Hierarchy Preserved:** Yes

---

Malaria is a mosquito-borne infectious disease affecting humans.

## Signs and symptoms

Fever, tiredness, vomiting and headaches appear ten to fifteen days after the bite.

### Complications

Severe cases can progress to coma or death.

## Treatment

Artemisinin combination therapy is the recommended first line treatment.
`

// fakeFetcher serves canned markdown by lowercased topic and counts calls.
type fakeFetcher struct {
	calls    int
	articles map[string]string
	err      error
}

func (f *fakeFetcher) FetchMarkdown(_ context.Context, topic string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.articles[strings.ToLower(topic)], nil
}

func setupAgent(t *testing.T, f Fetcher, opts ...Option) (*Agent, *store.Adapter) {
	t.Helper()
	adapter := store.NewAdapter(store.NewMemoryBackend(), store.WithNames("testdb", "wikipedia"))
	return NewAgent(adapter, f, opts...), adapter
}

// seedArticle stores a minimal one-section document directly, bypassing the
// fetcher.
func seedArticle(t *testing.T, adapter *store.Adapter, title, summary, body string) {
	t.Helper()
	md := fmt.Sprintf(`# %[1]s

**Query:** %[1]s

**URL:** https://en.wikipedia.org/wiki/%[1]s

---

%[2]s

## Overview

%[3]s
`, title, summary, body)
	if _, err := adapter.Store(context.Background(), md, "", nil); err != nil {
		t.Fatalf("seeding %s failed: %v", title, err)
	}
}

// ═══════════════════════════════════════════════════════════════════════════════
// FETCH DOCUMENT
// ═══════════════════════════════════════════════════════════════════════════════

func TestQueryFetchDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("fetches and stores on first query", func(t *testing.T) {
		fetcher := &fakeFetcher{articles: map[string]string{"malaria": malariaMarkdown}}
		agent, _ := setupAgent(t, fetcher)

		res := agent.Query(ctx, Request{Query: "Malaria", Operation: OpFetchDocument})
		if res.Status != StatusSuccess {
			t.Fatalf("expected success, got %s (%s)", res.Status, res.Error)
		}
		if fetcher.calls != 1 {
			t.Errorf("expected 1 fetch, got %d", fetcher.calls)
		}
		if res.Metadata["database_checked"] != true {
			t.Error("expected database_checked metadata")
		}
		if res.Metadata["wikipedia_fetched"] != true {
			t.Error("expected wikipedia_fetched metadata")
		}
		if res.Metadata["cached"] != false {
			t.Error("first query should not report cached")
		}
		doc, ok := res.Data.(*document.Document)
		if !ok {
			t.Fatalf("expected document payload, got %T", res.Data)
		}
		if doc.Query != "Malaria" {
			t.Errorf("expected query Malaria, got %q", doc.Query)
		}
		if len(doc.Sections) != 3 {
			t.Errorf("expected 3 sections, got %d", len(doc.Sections))
		}
		if res.Metadata["sections_count"] != 3 {
			t.Errorf("expected sections_count 3, got %v", res.Metadata["sections_count"])
		}
	})

	t.Run("serves from the store afterwards", func(t *testing.T) {
		fetcher := &fakeFetcher{articles: map[string]string{"malaria": malariaMarkdown}}
		agent, _ := setupAgent(t, fetcher)

		agent.Query(ctx, Request{Query: "Malaria", Operation: OpFetchDocument})
		res := agent.Query(ctx, Request{Query: "malaria", Operation: OpFetchDocument})

		if fetcher.calls != 1 {
			t.Errorf("expected no second fetch, got %d calls", fetcher.calls)
		}
		if res.Metadata["cached"] != true {
			t.Error("second query should be served from the store")
		}
		if res.Metadata["wikipedia_fetched"] != false {
			t.Error("second query should not report a wikipedia fetch")
		}
	})

	t.Run("reports topics with no article", func(t *testing.T) {
		fetcher := &fakeFetcher{}
		agent, _ := setupAgent(t, fetcher)

		res := agent.Query(ctx, Request{Query: "Atlantis", Operation: OpFetchDocument})
		if res.Status != StatusError {
			t.Fatalf("expected error status, got %s", res.Status)
		}
		if res.Error != "Could not retrieve information for: Atlantis" {
			t.Errorf("unexpected error message: %q", res.Error)
		}
		if res.Metadata["database_checked"] != true {
			t.Error("expected database_checked metadata")
		}
		if res.Metadata["wikipedia_fetched"] != false {
			t.Error("failed fetch should not report wikipedia_fetched")
		}
		if fetcher.calls != 1 {
			t.Errorf("expected 1 fetch attempt, got %d", fetcher.calls)
		}
	})

	t.Run("wraps fetcher failures", func(t *testing.T) {
		fetcher := &fakeFetcher{err: errors.New("wikipedia api returned status 503")}
		agent, _ := setupAgent(t, fetcher)

		res := agent.Query(ctx, Request{Query: "Malaria", Operation: OpFetchDocument})
		if res.Status != StatusError {
			t.Fatalf("expected error status, got %s", res.Status)
		}
		if res.Error != "Error fetching data: wikipedia api returned status 503" {
			t.Errorf("unexpected error message: %q", res.Error)
		}
	})

	t.Run("defaults to fetch_document", func(t *testing.T) {
		fetcher := &fakeFetcher{articles: map[string]string{"malaria": malariaMarkdown}}
		agent, _ := setupAgent(t, fetcher)

		res := agent.Query(ctx, Request{Query: "Malaria"})
		if res.Operation != OpFetchDocument {
			t.Errorf("expected fetch_document, got %s", res.Operation)
		}
		if _, ok := res.Data.(*document.Document); !ok {
			t.Errorf("expected document payload, got %T", res.Data)
		}
	})

	t.Run("publishes lifecycle events", func(t *testing.T) {
		b := bus.NewBus()
		defer b.Close()

		fetcher := &fakeFetcher{articles: map[string]string{"malaria": malariaMarkdown}}
		adapter := store.NewAdapter(store.NewMemoryBackend(), store.WithBus(b))
		agent := NewAgent(adapter, fetcher, WithBus(b))

		agent.Query(ctx, Request{Query: "Malaria", Operation: OpFetchDocument})

		counts := make(map[bus.EventType]int)
		for _, evt := range b.GetHistory() {
			counts[evt.Type]++
		}
		if counts[bus.EventArticleFetched] != 1 {
			t.Errorf("expected 1 article_fetched event, got %d", counts[bus.EventArticleFetched])
		}
		if counts[bus.EventDocumentStored] != 1 {
			t.Errorf("expected 1 document_stored event, got %d", counts[bus.EventDocumentStored])
		}
		if counts[bus.EventQueryServed] != 1 {
			t.Errorf("expected 1 query_served event, got %d", counts[bus.EventQueryServed])
		}
	})

	t.Run("publishes fetch_failed for missing articles", func(t *testing.T) {
		b := bus.NewBus()
		defer b.Close()

		agent, _ := setupAgent(t, &fakeFetcher{}, WithBus(b))

		agent.Query(ctx, Request{Query: "Atlantis", Operation: OpFetchDocument})

		found := false
		for _, evt := range b.GetHistory() {
			if evt.Type == bus.EventFetchFailed && evt.Query == "Atlantis" {
				found = true
			}
		}
		if !found {
			t.Error("expected a fetch_failed event for Atlantis")
		}
	})
}

// ═══════════════════════════════════════════════════════════════════════════════
// FETCH SECTIONS
// ═══════════════════════════════════════════════════════════════════════════════

func TestQueryFetchSections(t *testing.T) {
	ctx := context.Background()

	newStockedAgent := func(t *testing.T) *Agent {
		t.Helper()
		fetcher := &fakeFetcher{articles: map[string]string{"malaria": malariaMarkdown}}
		agent, _ := setupAgent(t, fetcher)
		return agent
	}

	t.Run("returns every section with document info", func(t *testing.T) {
		agent := newStockedAgent(t)

		res := agent.Query(ctx, Request{Query: "Malaria", Operation: OpFetchSections})
		if res.Status != StatusSuccess {
			t.Fatalf("expected success, got %s (%s)", res.Status, res.Error)
		}
		data, ok := res.Data.(*SectionsData)
		if !ok {
			t.Fatalf("expected sections payload, got %T", res.Data)
		}
		if data.DocumentInfo.Title != "Malaria" {
			t.Errorf("expected title Malaria, got %q", data.DocumentInfo.Title)
		}
		if data.DocumentInfo.URL != "https://en.wikipedia.org/wiki/Malaria" {
			t.Errorf("unexpected url: %q", data.DocumentInfo.URL)
		}
		if !strings.Contains(data.DocumentInfo.Summary, "mosquito-borne") {
			t.Errorf("expected the summary to travel along, got %q", data.DocumentInfo.Summary)
		}
		if len(data.Sections) != 3 {
			t.Fatalf("expected 3 sections, got %d", len(data.Sections))
		}
		wantKeys := []string{"signs_and_symptoms", "complications", "treatment"}
		for i, want := range wantKeys {
			if data.Sections[i].Key != want {
				t.Errorf("section %d: expected key %q, got %q", i, want, data.Sections[i].Key)
			}
		}
		if data.Sections[1].ParentSection != "signs_and_symptoms" {
			t.Errorf("expected complications under signs_and_symptoms, got %q", data.Sections[1].ParentSection)
		}
		if data.Sections[1].Level != 3 {
			t.Errorf("expected complications at level 3, got %d", data.Sections[1].Level)
		}
		if res.Metadata["sections_returned"] != 3 {
			t.Errorf("expected sections_returned 3, got %v", res.Metadata["sections_returned"])
		}
		if v, present := res.Metadata["section_filter"]; !present || v != nil {
			t.Errorf("expected a null section_filter, got %v (present=%v)", v, present)
		}
	})

	t.Run("filters sections by title", func(t *testing.T) {
		agent := newStockedAgent(t)

		res := agent.Query(ctx, Request{Query: "Malaria", Operation: OpFetchSections, SectionFilter: "TREAT"})
		data := res.Data.(*SectionsData)
		if len(data.Sections) != 1 {
			t.Fatalf("expected 1 filtered section, got %d", len(data.Sections))
		}
		if data.Sections[0].Key != "treatment" {
			t.Errorf("expected treatment, got %q", data.Sections[0].Key)
		}
		if data.DocumentInfo.Summary != "" {
			t.Errorf("filtered payload should omit the summary, got %q", data.DocumentInfo.Summary)
		}
		if res.Metadata["section_filter"] != "TREAT" {
			t.Errorf("expected section_filter TREAT, got %v", res.Metadata["section_filter"])
		}
		if res.Metadata["sections_returned"] != 1 {
			t.Errorf("expected sections_returned 1, got %v", res.Metadata["sections_returned"])
		}
	})

	t.Run("caps sections at the limit", func(t *testing.T) {
		agent := newStockedAgent(t)

		res := agent.Query(ctx, Request{Query: "Malaria", Operation: OpFetchSections, Limit: 2})
		data := res.Data.(*SectionsData)
		if len(data.Sections) != 2 {
			t.Fatalf("expected 2 sections, got %d", len(data.Sections))
		}
		if data.Sections[0].Key != "signs_and_symptoms" || data.Sections[1].Key != "complications" {
			t.Errorf("expected the first two sections in document order, got %q and %q",
				data.Sections[0].Key, data.Sections[1].Key)
		}
	})

	t.Run("fetches before extracting", func(t *testing.T) {
		fetcher := &fakeFetcher{articles: map[string]string{"malaria": malariaMarkdown}}
		agent, _ := setupAgent(t, fetcher)

		res := agent.Query(ctx, Request{Query: "Malaria", Operation: OpFetchSections})
		if fetcher.calls != 1 {
			t.Errorf("expected 1 fetch, got %d", fetcher.calls)
		}
		if res.Metadata["wikipedia_fetched"] != true {
			t.Error("expected wikipedia_fetched metadata")
		}
		if data := res.Data.(*SectionsData); len(data.Sections) != 3 {
			t.Errorf("expected 3 sections from a fresh fetch, got %d", len(data.Sections))
		}
	})
}

// ═══════════════════════════════════════════════════════════════════════════════
// LIST, SEARCH AND STATISTICS
// ═══════════════════════════════════════════════════════════════════════════════

func TestQueryListDocuments(t *testing.T) {
	ctx := context.Background()
	agent, adapter := setupAgent(t, &fakeFetcher{})

	seedArticle(t, adapter, "Malaria", "A mosquito-borne disease.", "Malaria is covered in clinical detail.")
	seedArticle(t, adapter, "Influenza", "A contagious respiratory illness.", "Influenza is covered in clinical detail.")
	seedArticle(t, adapter, "Cholera", "An infection of the small intestine.", "Cholera is covered in clinical detail.")

	t.Run("lists stored documents", func(t *testing.T) {
		res := agent.Query(ctx, Request{Operation: OpListDocuments})
		if res.Status != StatusSuccess {
			t.Fatalf("expected success, got %s (%s)", res.Status, res.Error)
		}
		summaries, ok := res.Data.([]store.DocumentSummary)
		if !ok {
			t.Fatalf("expected summaries payload, got %T", res.Data)
		}
		if len(summaries) != 3 {
			t.Errorf("expected 3 documents, got %d", len(summaries))
		}
		if res.Metadata["limited"] != false {
			t.Error("under-limit listing should not report limited")
		}
		if res.Metadata["total_found"] != 3 {
			t.Errorf("expected total_found 3, got %v", res.Metadata["total_found"])
		}
		if res.Metadata["database_checked"] != true {
			t.Error("expected database_checked metadata")
		}
	})

	t.Run("truncates and reports the returned count", func(t *testing.T) {
		res := agent.Query(ctx, Request{Operation: OpListDocuments, Limit: 2})
		summaries := res.Data.([]store.DocumentSummary)
		if len(summaries) != 2 {
			t.Errorf("expected 2 documents, got %d", len(summaries))
		}
		if res.Metadata["limited"] != true {
			t.Error("over-limit listing should report limited")
		}
		if res.Metadata["total_found"] != 2 {
			t.Errorf("total_found counts returned documents, got %v", res.Metadata["total_found"])
		}
	})
}

func TestQuerySearchContent(t *testing.T) {
	ctx := context.Background()
	agent, adapter := setupAgent(t, &fakeFetcher{})

	seedArticle(t, adapter, "Malaria", "A mosquito-borne disease.", "Malaria is covered in clinical detail.")
	seedArticle(t, adapter, "Influenza", "A contagious respiratory illness.", "Influenza is covered in clinical detail.")
	seedArticle(t, adapter, "Cholera", "An infection of the small intestine.", "Cholera is covered in clinical detail.")

	t.Run("highlights matches", func(t *testing.T) {
		res := agent.Query(ctx, Request{Query: "mosquito", Operation: OpSearchContent})
		if res.Status != StatusSuccess {
			t.Fatalf("expected success, got %s (%s)", res.Status, res.Error)
		}
		results, ok := res.Data.([]store.SearchResult)
		if !ok {
			t.Fatalf("expected search payload, got %T", res.Data)
		}
		if len(results) != 1 {
			t.Fatalf("expected 1 match, got %d", len(results))
		}
		if results[0].Title != "Malaria" {
			t.Errorf("expected Malaria, got %q", results[0].Title)
		}
		if len(results[0].Matches) == 0 || !strings.Contains(results[0].Matches[0].Content, "**mosquito**") {
			t.Errorf("expected a highlighted excerpt, got %+v", results[0].Matches)
		}
		if res.Metadata["search_scope"] != "all" {
			t.Errorf("expected default scope all, got %v", res.Metadata["search_scope"])
		}
		if res.Metadata["total_matches"] != 1 {
			t.Errorf("expected total_matches 1, got %v", res.Metadata["total_matches"])
		}
	})

	t.Run("truncates matches at the limit", func(t *testing.T) {
		res := agent.Query(ctx, Request{Query: "detail", Operation: OpSearchContent, Limit: 2})
		results := res.Data.([]store.SearchResult)
		if len(results) != 2 {
			t.Errorf("expected 2 matches, got %d", len(results))
		}
		if res.Metadata["limited"] != true {
			t.Error("over-limit search should report limited")
		}
		if res.Metadata["total_matches"] != 2 {
			t.Errorf("total_matches counts returned matches, got %v", res.Metadata["total_matches"])
		}
	})

	t.Run("passes the scope through", func(t *testing.T) {
		res := agent.Query(ctx, Request{Query: "malaria", Operation: OpSearchContent, SearchScope: store.ScopeTitles})
		if res.Metadata["search_scope"] != "titles" {
			t.Errorf("expected scope titles, got %v", res.Metadata["search_scope"])
		}
		if results := res.Data.([]store.SearchResult); len(results) != 1 {
			t.Errorf("expected 1 title match, got %d", len(results))
		}
	})

	t.Run("rejects an empty term", func(t *testing.T) {
		res := agent.Query(ctx, Request{Query: "", Operation: OpSearchContent})
		if res.Status != StatusError {
			t.Fatalf("expected error status, got %s", res.Status)
		}
		if res.Error != "Error searching content: search term cannot be empty" {
			t.Errorf("unexpected error message: %q", res.Error)
		}
	})
}

func TestQueryStatistics(t *testing.T) {
	ctx := context.Background()

	t.Run("reports the empty collection", func(t *testing.T) {
		agent, _ := setupAgent(t, &fakeFetcher{})

		res := agent.Query(ctx, Request{Operation: OpGetStatistics})
		stats, ok := res.Data.(*store.CollectionStats)
		if !ok {
			t.Fatalf("expected statistics payload, got %T", res.Data)
		}
		if stats.TotalDocuments != 0 {
			t.Errorf("expected 0 documents, got %d", stats.TotalDocuments)
		}
		if stats.Message != "No Wikipedia documents found in collection" {
			t.Errorf("unexpected empty-collection message: %q", stats.Message)
		}
	})

	t.Run("aggregates stored documents", func(t *testing.T) {
		agent, adapter := setupAgent(t, &fakeFetcher{})
		seedArticle(t, adapter, "Malaria", "A mosquito-borne disease.", "Clinical overview.")
		seedArticle(t, adapter, "Cholera", "An intestinal infection.", "Clinical overview.")

		res := agent.Query(ctx, Request{Operation: OpGetStatistics})
		stats := res.Data.(*store.CollectionStats)
		if stats.TotalDocuments != 2 {
			t.Errorf("expected 2 documents, got %d", stats.TotalDocuments)
		}
		if stats.TotalSections != 2 {
			t.Errorf("expected 2 sections, got %d", stats.TotalSections)
		}
		if res.Metadata["database_checked"] != true {
			t.Error("expected database_checked metadata")
		}
	})
}

// ═══════════════════════════════════════════════════════════════════════════════
// DISPATCH
// ═══════════════════════════════════════════════════════════════════════════════

func TestQueryUnknownOperation(t *testing.T) {
	agent, _ := setupAgent(t, &fakeFetcher{})

	res := agent.Query(context.Background(), Request{Query: "Malaria", Operation: "purge"})
	if res.Status != StatusError {
		t.Fatalf("expected error status, got %s", res.Status)
	}
	if res.Error != "Unknown operation: purge" {
		t.Errorf("unexpected error message: %q", res.Error)
	}
	if res.Data != nil {
		t.Errorf("unknown operation should carry no data, got %v", res.Data)
	}
}

func TestOperationValid(t *testing.T) {
	for _, op := range []Operation{OpFetchDocument, OpFetchSections, OpListDocuments, OpSearchContent, OpGetStatistics} {
		if !op.Valid() {
			t.Errorf("%s should be valid", op)
		}
	}
	if Operation("purge").Valid() {
		t.Error("purge should not be valid")
	}
}
