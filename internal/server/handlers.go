package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/normanking/wikidex/internal/agent"
	"github.com/normanking/wikidex/internal/store"
)

// Fetches can reach out to Wikipedia, so REST requests get a generous
// deadline.
const requestTimeout = 30 * time.Second

// ═══════════════════════════════════════════════════════════════════════════════
// REST HANDLERS
// ═══════════════════════════════════════════════════════════════════════════════

// handleHealth handles GET /api/v1/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "unavailable",
			"error":  err.Error(),
		})
		return
	}

	count, err := s.store.Count(ctx)
	if err != nil {
		count = -1
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"documents": count,
	})
}

// handleListDocuments handles GET /api/v1/documents.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	res := s.agent.Query(ctx, agent.Request{
		Operation: agent.OpListDocuments,
		Limit:     parseLimit(r),
	})
	s.writeResult(w, res)
}

// handleGetDocument handles GET /api/v1/documents/{query}.
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	query := r.PathValue("query")
	if query == "" {
		s.writeError(w, http.StatusBadRequest, "document query required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	res := s.agent.Query(ctx, agent.Request{
		Query:     query,
		Operation: agent.OpFetchDocument,
	})
	s.writeResult(w, res)
}

// handleGetSections handles GET /api/v1/documents/{query}/sections.
func (s *Server) handleGetSections(w http.ResponseWriter, r *http.Request) {
	query := r.PathValue("query")
	if query == "" {
		s.writeError(w, http.StatusBadRequest, "document query required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	res := s.agent.Query(ctx, agent.Request{
		Query:         query,
		Operation:     agent.OpFetchSections,
		SectionFilter: r.URL.Query().Get("filter"),
		Limit:         parseLimit(r),
	})
	s.writeResult(w, res)
}

// handleSearch handles GET /api/v1/search.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	scope, err := store.ParseScope(r.URL.Query().Get("scope"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	res := s.agent.Query(ctx, agent.Request{
		Query:       r.URL.Query().Get("q"),
		Operation:   agent.OpSearchContent,
		SearchScope: scope,
		Limit:       parseLimit(r),
	})
	s.writeResult(w, res)
}

// handleStatistics handles GET /api/v1/statistics.
func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	res := s.agent.Query(ctx, agent.Request{Operation: agent.OpGetStatistics})
	s.writeResult(w, res)
}

// handleQuery handles POST /api/v1/query with a full agent request body.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req agent.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Operation != "" && !req.Operation.Valid() {
		s.writeError(w, http.StatusBadRequest, "unknown operation: "+string(req.Operation))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	s.writeResult(w, s.agent.Query(ctx, req))
}

// ═══════════════════════════════════════════════════════════════════════════════
// RESPONSE HELPERS
// ═══════════════════════════════════════════════════════════════════════════════

// writeResult writes an agent result envelope, mapping envelope errors to
// HTTP status codes.
func (s *Server) writeResult(w http.ResponseWriter, res *agent.Result) {
	status := http.StatusOK
	if res.Status == agent.StatusError {
		status = errorStatus(res.Error)
	}
	s.writeJSON(w, status, res)
}

func errorStatus(msg string) int {
	switch {
	case strings.HasPrefix(msg, "Could not retrieve information"):
		return http.StatusNotFound
	case strings.HasPrefix(msg, "Unknown operation"):
		return http.StatusBadRequest
	case strings.Contains(msg, "search term cannot be empty"):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeJSON writes a JSON response.
func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func parseLimit(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}
