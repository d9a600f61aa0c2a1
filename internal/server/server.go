// Package server exposes the knowledge agent over HTTP.
//
// Three surfaces share one listener:
//   - Agent Card discovery (/.well-known/agent-card.json)
//   - A2A JSON-RPC 2.0 transport (HTTP POST /)
//   - REST endpoints under /api/v1 for document operations
//
// A WebSocket feed of document pipeline events can be mounted alongside
// them, and every REST endpoint except the health check can be guarded by
// a bearer token.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/a2aproject/a2a-go/a2a"
	"github.com/a2aproject/a2a-go/a2asrv"
	"github.com/rs/zerolog"

	"github.com/normanking/wikidex/internal/agent"
	"github.com/normanking/wikidex/internal/bus"
	"github.com/normanking/wikidex/internal/logging"
	"github.com/normanking/wikidex/internal/store"
)

// Config configures the HTTP server.
type Config struct {
	// AgentName is the advertised agent name on the agent card.
	AgentName string

	// AgentVersion is the advertised version on the agent card.
	AgentVersion string

	// ListenAddr is the host:port the server binds to.
	ListenAddr string

	// TokenHash is the bcrypt hash of the bearer token guarding the REST
	// endpoints. Empty disables auth.
	TokenHash string

	// Observer, when set, serves the event feed on the same listener.
	Observer *bus.Observer
}

// Server wires the agent, the document store, and the event observer into
// a single http.Handler.
type Server struct {
	agent    *agent.Agent
	store    *store.Adapter
	executor *KnowledgeExecutor
	handler  a2asrv.RequestHandler
	mux      *http.ServeMux
	server   *http.Server
	guard    *TokenGuard
	card     *a2a.AgentCard
	log      zerolog.Logger
}

// NewServer creates the HTTP server around the agent. The store is used for
// health reporting only; every document operation goes through the agent so
// REST and A2A clients see the same envelopes.
func NewServer(ag *agent.Agent, st *store.Adapter, cfg Config) (*Server, error) {
	if cfg.AgentName == "" {
		cfg.AgentName = "wikidex"
	}
	if cfg.AgentVersion == "" {
		cfg.AgentVersion = "1.0.0"
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}

	guard := NewTokenGuard(cfg.TokenHash)
	executor := NewKnowledgeExecutor(ag)
	handler := a2asrv.NewHandler(executor)
	card := newAgentCard(cfg)

	s := &Server{
		agent:    ag,
		store:    st,
		executor: executor,
		handler:  handler,
		mux:      http.NewServeMux(),
		guard:    guard,
		card:     card,
		log:      logging.Component("server"),
	}

	s.mux.Handle("/", a2asrv.NewJSONRPCHandler(handler))
	s.mux.Handle(a2asrv.WellKnownAgentCardPath, a2asrv.NewStaticAgentCardHandler(card))
	// Also handle the alternate path
	s.mux.Handle("/.well-known/agent.json", a2asrv.NewStaticAgentCardHandler(card))

	s.mux.HandleFunc("GET /api/v1/health", s.handleHealth)
	s.mux.HandleFunc("GET /api/v1/documents", s.guard.Require(s.handleListDocuments))
	s.mux.HandleFunc("GET /api/v1/documents/{query}", s.guard.Require(s.handleGetDocument))
	s.mux.HandleFunc("GET /api/v1/documents/{query}/sections", s.guard.Require(s.handleGetSections))
	s.mux.HandleFunc("GET /api/v1/search", s.guard.Require(s.handleSearch))
	s.mux.HandleFunc("GET /api/v1/statistics", s.guard.Require(s.handleStatistics))
	s.mux.HandleFunc("POST /api/v1/query", s.guard.Require(s.handleQuery))

	if cfg.Observer != nil {
		s.mux.HandleFunc(bus.WebSocketEndpoint, cfg.Observer.HandleWebSocket)
	}

	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Accept")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	s.mux.ServeHTTP(w, r)
}

// Start begins serving on addr and blocks until the listener closes.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:    addr,
		Handler: s,
	}

	s.log.Info().
		Str("agent", s.card.Name).
		Str("version", s.card.Version).
		Str("protocol", s.card.ProtocolVersion).
		Str("addr", addr).
		Msg("starting server")
	s.log.Info().
		Str("agent_card", fmt.Sprintf("http://localhost%s%s", addr, a2asrv.WellKnownAgentCardPath)).
		Str("jsonrpc", fmt.Sprintf("http://localhost%s/", addr)).
		Str("rest", fmt.Sprintf("http://localhost%s/api/v1", addr)).
		Bool("auth", s.guard != nil).
		Msg("endpoints ready")

	return s.server.ListenAndServe()
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	s.log.Info().Msg("shutting down server")
	return s.server.Shutdown(ctx)
}

// newAgentCard describes the agent for A2A discovery.
func newAgentCard(cfg Config) *a2a.AgentCard {
	return &a2a.AgentCard{
		Name:               cfg.AgentName,
		Description:        "Wikipedia knowledge agent over a hierarchical document store. Fetches articles on demand, caches them, and answers document, section, search, and statistics queries.",
		Version:            cfg.AgentVersion,
		ProtocolVersion:    "0.3",
		URL:                fmt.Sprintf("http://localhost%s/", cfg.ListenAddr),
		PreferredTransport: a2a.TransportProtocolJSONRPC,
		Capabilities: a2a.AgentCapabilities{
			Streaming: true,
		},
		DefaultInputModes:  []string{"text", "application/json"},
		DefaultOutputModes: []string{"text", "application/json"},
		Skills: []a2a.AgentSkill{
			{
				ID:          "fetch_document",
				Name:        "Document Retrieval",
				Description: "Fetch a Wikipedia article by topic. Stored documents are served from the collection; unknown topics are fetched from Wikipedia and cached.",
				Tags:        []string{"wikipedia", "documents", "retrieval", "cache"},
				Examples:    []string{"Tell me about malaria", "Fetch the article on quantum computing"},
				InputModes:  []string{"text", "application/json"},
				OutputModes: []string{"text", "application/json"},
			},
			{
				ID:          "fetch_sections",
				Name:        "Section Extraction",
				Description: "Return the sections of a stored article in document order, optionally filtered by title.",
				Tags:        []string{"sections", "hierarchy", "documents"},
				Examples:    []string{"Show the treatment sections of the malaria article"},
				InputModes:  []string{"text", "application/json"},
				OutputModes: []string{"application/json"},
			},
			{
				ID:          "list_documents",
				Name:        "Collection Listing",
				Description: "List the stored documents with summaries, statistics, and section outlines.",
				Tags:        []string{"collection", "listing", "documents"},
				Examples:    []string{"What articles are stored?"},
				InputModes:  []string{"text", "application/json"},
				OutputModes: []string{"application/json"},
			},
			{
				ID:          "search_content",
				Name:        "Content Search",
				Description: "Search stored article content with match highlighting, scoped to titles, summaries, sections, or everything.",
				Tags:        []string{"search", "content", "highlighting"},
				Examples:    []string{"Search the collection for mosquito"},
				InputModes:  []string{"text", "application/json"},
				OutputModes: []string{"application/json"},
			},
			{
				ID:          "get_statistics",
				Name:        "Collection Statistics",
				Description: "Aggregate statistics over the stored collection: document, section, word, and character counts.",
				Tags:        []string{"statistics", "collection"},
				Examples:    []string{"How big is the collection?"},
				InputModes:  []string{"text", "application/json"},
				OutputModes: []string{"application/json"},
			},
		},
	}
}
