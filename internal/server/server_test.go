package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/normanking/wikidex/internal/agent"
	"github.com/normanking/wikidex/internal/store"
)

// ═══════════════════════════════════════════════════════════════════════════════
// TEST FIXTURES
// ═══════════════════════════════════════════════════════════════════════════════

const malariaArticle = `# Malaria

**Query:** Malaria
**URL:** https://en.wikipedia.org/wiki/Malaria
**Extract Format:** wiki
**Hierarchy Preserved:** Yes

---

Malaria is a mosquito-borne infectious disease affecting humans.

## Signs and symptoms

Fever, tiredness, vomiting, and headaches.

## Treatment

Artemisinin-based combination therapy.
`

type staticFetcher struct {
	articles map[string]string
}

func (f *staticFetcher) FetchMarkdown(ctx context.Context, topic string) (string, error) {
	return f.articles[strings.ToLower(topic)], nil
}

func newTestServer(t *testing.T, token string, seeds ...string) *Server {
	t.Helper()

	adapter := store.NewAdapter(store.NewMemoryBackend(),
		store.WithNames("testdb", "wikipedia"))
	t.Cleanup(func() { adapter.Close(context.Background()) })

	for _, content := range seeds {
		if _, err := adapter.Store(context.Background(), content, "", nil); err != nil {
			t.Fatalf("seeding document: %v", err)
		}
	}

	ag := agent.NewAgent(adapter, &staticFetcher{articles: map[string]string{}})

	srv, err := NewServer(ag, adapter, Config{TokenHash: hashToken(t, token)})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return srv
}

// hashToken bcrypt-hashes a plain test token the way the serve command stores
// it in the config file. MinCost keeps the tests fast.
func hashToken(t *testing.T, token string) string {
	t.Helper()
	if token == "" {
		return ""
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hashing test token: %v", err)
	}
	return string(hash)
}

func doRequest(t *testing.T, srv *Server, method, target, token string, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func decodeResult(t *testing.T, w *httptest.ResponseRecorder) *agent.Result {
	t.Helper()
	var res agent.Result
	if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
		t.Fatalf("decoding result envelope: %v", err)
	}
	return &res
}

// ═══════════════════════════════════════════════════════════════════════════════
// REST ENDPOINT TESTS
// ═══════════════════════════════════════════════════════════════════════════════

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, "", malariaArticle)

	w := doRequest(t, srv, http.MethodGet, "/api/v1/health", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("health returned %d, want 200", w.Code)
	}

	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decoding health body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %v, want ok", body["status"])
	}
	if body["documents"] != float64(1) {
		t.Errorf("documents = %v, want 1", body["documents"])
	}
}

func TestListDocumentsEndpoint(t *testing.T) {
	srv := newTestServer(t, "", malariaArticle)

	w := doRequest(t, srv, http.MethodGet, "/api/v1/documents", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("list returned %d, want 200", w.Code)
	}

	res := decodeResult(t, w)
	if res.Status != agent.StatusSuccess {
		t.Fatalf("envelope status = %q, want success", res.Status)
	}
	docs, ok := res.Data.([]any)
	if !ok || len(docs) != 1 {
		t.Errorf("data = %v, want one summary", res.Data)
	}
}

func TestGetDocumentEndpoint(t *testing.T) {
	srv := newTestServer(t, "", malariaArticle)

	w := doRequest(t, srv, http.MethodGet, "/api/v1/documents/Malaria", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("get returned %d, want 200", w.Code)
	}

	res := decodeResult(t, w)
	if res.Status != agent.StatusSuccess {
		t.Fatalf("envelope status = %q: %s", res.Status, res.Error)
	}
	if cached, _ := res.Metadata["cached"].(bool); !cached {
		t.Error("stored document not reported as cached")
	}
}

func TestGetDocumentNotFound(t *testing.T) {
	srv := newTestServer(t, "")

	w := doRequest(t, srv, http.MethodGet, "/api/v1/documents/Atlantis", "", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing topic returned %d, want 404", w.Code)
	}

	res := decodeResult(t, w)
	if res.Error != "Could not retrieve information for: Atlantis" {
		t.Errorf("error = %q", res.Error)
	}
}

func TestGetSectionsEndpoint(t *testing.T) {
	srv := newTestServer(t, "", malariaArticle)

	w := doRequest(t, srv, http.MethodGet, "/api/v1/documents/Malaria/sections?filter=treat", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("sections returned %d, want 200", w.Code)
	}

	res := decodeResult(t, w)
	if returned, _ := res.Metadata["sections_returned"].(float64); returned != 1 {
		t.Errorf("sections_returned = %v, want 1", res.Metadata["sections_returned"])
	}
}

func TestSearchEndpoint(t *testing.T) {
	srv := newTestServer(t, "", malariaArticle)

	t.Run("finds matches", func(t *testing.T) {
		w := doRequest(t, srv, http.MethodGet, "/api/v1/search?q=mosquito", "", "")
		if w.Code != http.StatusOK {
			t.Fatalf("search returned %d, want 200", w.Code)
		}
		res := decodeResult(t, w)
		if matches, _ := res.Metadata["total_matches"].(float64); matches != 1 {
			t.Errorf("total_matches = %v, want 1", res.Metadata["total_matches"])
		}
	})

	t.Run("rejects a bad scope", func(t *testing.T) {
		w := doRequest(t, srv, http.MethodGet, "/api/v1/search?q=x&scope=bogus", "", "")
		if w.Code != http.StatusBadRequest {
			t.Errorf("bad scope returned %d, want 400", w.Code)
		}
	})

	t.Run("rejects an empty term", func(t *testing.T) {
		w := doRequest(t, srv, http.MethodGet, "/api/v1/search", "", "")
		if w.Code != http.StatusBadRequest {
			t.Errorf("empty term returned %d, want 400", w.Code)
		}
	})
}

func TestQueryEndpoint(t *testing.T) {
	srv := newTestServer(t, "", malariaArticle)

	t.Run("routes a full request", func(t *testing.T) {
		w := doRequest(t, srv, http.MethodPost, "/api/v1/query", "",
			`{"operation":"get_statistics"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("query returned %d, want 200", w.Code)
		}
		res := decodeResult(t, w)
		if res.Operation != agent.OpGetStatistics {
			t.Errorf("operation = %q, want get_statistics", res.Operation)
		}
	})

	t.Run("rejects an invalid body", func(t *testing.T) {
		w := doRequest(t, srv, http.MethodPost, "/api/v1/query", "", `{"operation":`)
		if w.Code != http.StatusBadRequest {
			t.Errorf("invalid body returned %d, want 400", w.Code)
		}
	})

	t.Run("rejects an unknown operation", func(t *testing.T) {
		w := doRequest(t, srv, http.MethodPost, "/api/v1/query", "", `{"operation":"purge"}`)
		if w.Code != http.StatusBadRequest {
			t.Errorf("unknown operation returned %d, want 400", w.Code)
		}
	})
}

// ═══════════════════════════════════════════════════════════════════════════════
// AUTH TESTS
// ═══════════════════════════════════════════════════════════════════════════════

func TestBearerTokenAuth(t *testing.T) {
	srv := newTestServer(t, "sekret", malariaArticle)

	t.Run("rejects missing token", func(t *testing.T) {
		w := doRequest(t, srv, http.MethodGet, "/api/v1/documents", "", "")
		if w.Code != http.StatusUnauthorized {
			t.Errorf("missing token returned %d, want 401", w.Code)
		}
	})

	t.Run("rejects wrong token", func(t *testing.T) {
		w := doRequest(t, srv, http.MethodGet, "/api/v1/documents", "wrong", "")
		if w.Code != http.StatusUnauthorized {
			t.Errorf("wrong token returned %d, want 401", w.Code)
		}
	})

	t.Run("accepts the configured token", func(t *testing.T) {
		w := doRequest(t, srv, http.MethodGet, "/api/v1/documents", "sekret", "")
		if w.Code != http.StatusOK {
			t.Errorf("valid token returned %d, want 200", w.Code)
		}
	})

	t.Run("health stays open", func(t *testing.T) {
		w := doRequest(t, srv, http.MethodGet, "/api/v1/health", "", "")
		if w.Code != http.StatusOK {
			t.Errorf("health returned %d, want 200", w.Code)
		}
	})
}

func TestTokenGuard(t *testing.T) {
	guard := NewTokenGuard(hashToken(t, "sekret"))

	tests := []struct {
		name   string
		header string
		want   error
	}{
		{"no header", "", ErrMissingToken},
		{"no bearer prefix", "Basic sekret", ErrInvalidToken},
		{"empty token", "Bearer ", ErrMissingToken},
		{"wrong token", "Bearer nope", ErrInvalidToken},
		{"valid token", "Bearer sekret", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if got := guard.Allow(req); got != tt.want {
				t.Errorf("Allow() = %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("nil guard allows everything", func(t *testing.T) {
		var g *TokenGuard
		called := false
		handler := g.Require(func(w http.ResponseWriter, r *http.Request) { called = true })
		handler(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		if !called {
			t.Error("nil guard blocked the request")
		}
	})
}

func TestGenerateToken(t *testing.T) {
	token, hash, err := GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if len(token) != 48 {
		t.Errorf("token length = %d, want 48 hex chars", len(token))
	}
	if hash == "" || hash == token {
		t.Errorf("hash = %q, want a bcrypt hash distinct from the token", hash)
	}

	guard := NewTokenGuard(hash)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	if err := guard.Allow(req); err != nil {
		t.Errorf("generated token rejected by its own hash: %v", err)
	}
}

// ═══════════════════════════════════════════════════════════════════════════════
// CORS AND DISCOVERY TESTS
// ═══════════════════════════════════════════════════════════════════════════════

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t, "")

	w := doRequest(t, srv, http.MethodOptions, "/api/v1/documents", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("preflight returned %d, want 200", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}

func TestAgentCardDiscovery(t *testing.T) {
	srv := newTestServer(t, "")

	w := doRequest(t, srv, http.MethodGet, "/.well-known/agent-card.json", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("agent card returned %d, want 200", w.Code)
	}

	var card map[string]any
	if err := json.NewDecoder(w.Body).Decode(&card); err != nil {
		t.Fatalf("decoding agent card: %v", err)
	}
	if card["name"] != "wikidex" {
		t.Errorf("card name = %v, want wikidex", card["name"])
	}

	skills, ok := card["skills"].([]any)
	if !ok {
		t.Fatalf("card skills = %T, want array", card["skills"])
	}
	if len(skills) != 5 {
		t.Errorf("card lists %d skills, want 5", len(skills))
	}
	for i, op := range []agent.Operation{
		agent.OpFetchDocument, agent.OpFetchSections, agent.OpListDocuments,
		agent.OpSearchContent, agent.OpGetStatistics,
	} {
		skill, ok := skills[i].(map[string]any)
		if !ok || skill["id"] != string(op) {
			t.Errorf("skill %d = %v, want id %q", i, skills[i], op)
		}
	}
}

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		msg  string
		want int
	}{
		{"Could not retrieve information for: Atlantis", http.StatusNotFound},
		{"Unknown operation: purge", http.StatusBadRequest},
		{"Error searching content: search term cannot be empty", http.StatusBadRequest},
		{"Error listing documents: backend offline", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := errorStatus(tt.msg); got != tt.want {
			t.Errorf("errorStatus(%q) = %d, want %d", tt.msg, got, tt.want)
		}
	}
}
