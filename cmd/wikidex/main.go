// Package main is the entry point for the wikidex CLI.
// wikidex fetches Wikipedia articles into a hierarchical document store and
// serves them back through a terminal browser, a CLI, and an A2A/REST server.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/normanking/wikidex/internal/agent"
	"github.com/normanking/wikidex/internal/bus"
	"github.com/normanking/wikidex/internal/config"
	"github.com/normanking/wikidex/internal/document"
	"github.com/normanking/wikidex/internal/logging"
	"github.com/normanking/wikidex/internal/server"
	"github.com/normanking/wikidex/internal/store"
	"github.com/normanking/wikidex/internal/ui"
	"github.com/normanking/wikidex/internal/wiki"
)

var (
	version = "1.0.0"
	cfgPath string
	verbose bool
	cfg     *config.Config
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "wikidex",
		Short: "wikidex - Wikipedia knowledge base in your terminal",
		Long: `wikidex is a personal Wikipedia knowledge base that combines:
  • On-demand article fetching with hierarchy-preserving markdown storage
  • MongoDB, SQLite, or in-memory document backends
  • Section-aware retrieval, content search, and collection statistics
  • A BubbleTea collection browser with rendered article views
  • An A2A-compliant agent server with REST endpoints and a live event feed

Browse the collection:   wikidex
Fetch an article:        wikidex fetch "Quantum computing"
Search stored content:   wikidex search mosquito
Run the agent server:    wikidex serve`,
		PersistentPreRunE: initLogging,
		RunE:              runBrowse,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file path (default ~/.wikidex/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Version command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("wikidex v%s\n", version)
		},
	})

	// Document commands
	rootCmd.AddCommand(fetchCmd())
	rootCmd.AddCommand(getCmd())
	rootCmd.AddCommand(sectionsCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(statsCmd())

	// One-shot agent query
	rootCmd.AddCommand(queryCmd())

	// Markdown file import
	rootCmd.AddCommand(importCmd())

	// Collection browser
	rootCmd.AddCommand(browseCmd())

	// Agent server
	rootCmd.AddCommand(serveCmd())

	// Config command group
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// ═══════════════════════════════════════════════════════════════════════════════
// LOGGING AND CONFIG INITIALIZATION
// ═══════════════════════════════════════════════════════════════════════════════

func initLogging(cmd *cobra.Command, args []string) error {
	c, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := c.EnsureDirectories(); err != nil {
		return fmt.Errorf("preparing data directories: %w", err)
	}
	cfg = c

	logCfg := logging.Config{
		Level:    cfg.Logging.Level,
		Pretty:   cfg.Logging.Pretty,
		FilePath: cfg.Logging.File,
	}
	if verbose {
		logCfg.Level = "debug"
		logCfg.WithCaller = true
	}
	if err := logging.Init(logCfg); err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}

	if verbose {
		logging.Debug().Str("config", configPath()).Msg("verbose logging enabled")
	}
	return nil
}

func loadConfig() (*config.Config, error) {
	if cfgPath != "" {
		return config.LoadFromPath(cfgPath)
	}
	return config.Load()
}

// configPath reports the active config file. cfg is always set by
// PersistentPreRunE before any command body runs.
func configPath() string {
	if cfgPath != "" {
		return cfgPath
	}
	return cfg.GetConfigPath()
}

// ═══════════════════════════════════════════════════════════════════════════════
// COMPONENT ASSEMBLY
// ═══════════════════════════════════════════════════════════════════════════════

func openBackend() (store.Backend, error) {
	switch cfg.Storage.Backend {
	case "mongo":
		timeout := time.Duration(cfg.Storage.Mongo.TimeoutSec) * time.Second
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return store.NewMongoBackend(ctx, cfg.Storage.Mongo.URI,
			cfg.Storage.Mongo.Database, cfg.Storage.Mongo.Collection)
	case "sqlite":
		return store.NewSQLiteBackend(cfg.Storage.SQLite.Path)
	case "memory":
		return store.NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func initializeAdapter(opts ...store.Option) (*store.Adapter, func(), error) {
	backend, err := openBackend()
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s backend: %w", cfg.Storage.Backend, err)
	}

	opts = append(opts,
		store.WithNames(cfg.Storage.Mongo.Database, cfg.Storage.Mongo.Collection))
	adapter := store.NewAdapter(backend, opts...)

	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		adapter.Close(ctx)
	}
	return adapter, cleanup, nil
}

func newWikiClient() *wiki.Client {
	opts := cfg.Wikipedia.ClientOptions()
	if cfg.Wikipedia.TimeoutSec > 0 {
		opts = append(opts, wiki.WithHTTPClient(&http.Client{
			Timeout: time.Duration(cfg.Wikipedia.TimeoutSec) * time.Second,
		}))
	}
	return wiki.NewClient(opts...)
}

func initializeAgent() (*agent.Agent, *store.Adapter, func(), error) {
	adapter, cleanup, err := initializeAdapter()
	if err != nil {
		return nil, nil, nil, err
	}
	ag := agent.NewAgent(adapter, newWikiClient())
	return ag, adapter, cleanup, nil
}

// ═══════════════════════════════════════════════════════════════════════════════
// DOCUMENT COMMANDS
// ═══════════════════════════════════════════════════════════════════════════════

func fetchCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "fetch [topic]",
		Short: "Fetch a Wikipedia article (from the store, or live when missing)",
		Long: `Fetch an article by topic. Stored documents are served from the
collection; unknown topics are fetched from Wikipedia and cached.

Examples:
  wikidex fetch Malaria
  wikidex fetch "Quantum computing"
  wikidex fetch Malaria --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ag, _, cleanup, err := initializeAgent()
			if err != nil {
				return err
			}
			defer cleanup()

			res := ag.Query(cmd.Context(), agent.Request{
				Query:     strings.Join(args, " "),
				Operation: agent.OpFetchDocument,
			})
			if res.Status == agent.StatusError {
				return errors.New(res.Error)
			}
			if asJSON {
				return printJSON(res)
			}

			doc, ok := res.Data.(*document.Document)
			if !ok {
				return fmt.Errorf("unexpected payload %T", res.Data)
			}
			fmt.Println(ui.RenderDocument(doc, 0))
			if cached, _ := res.Metadata["cached"].(bool); !cached {
				fmt.Println("\n✅ Fetched from Wikipedia and stored")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw result envelope")
	return cmd
}

func getCmd() *cobra.Command {
	var (
		render bool
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "get [topic]",
		Short: "Print a stored document without fetching",
		Long: `Print a stored document as markdown. Unlike fetch, get never calls
Wikipedia; an unknown topic is an error.

Examples:
  wikidex get Malaria
  wikidex get Malaria --render
  wikidex get Malaria --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			adapter, cleanup, err := initializeAdapter()
			if err != nil {
				return err
			}
			defer cleanup()

			topic := strings.Join(args, " ")
			doc, err := adapter.GetByQuery(cmd.Context(), topic)
			if err != nil {
				return fmt.Errorf("reading document: %w", err)
			}
			if doc == nil {
				return fmt.Errorf("no stored document matches %q (fetch it with: wikidex fetch %s)", topic, topic)
			}

			if asJSON {
				return printJSON(doc)
			}
			if render {
				fmt.Println(ui.RenderDocument(doc, 0))
				return nil
			}
			fmt.Println(doc.Markdown())
			return nil
		},
	}
	cmd.Flags().BoolVar(&render, "render", false, "render the markdown for the terminal")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the document as JSON")
	return cmd
}

func sectionsCmd() *cobra.Command {
	var (
		filter string
		limit  int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "sections [topic]",
		Short: "Show the sections of an article in document order",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ag, _, cleanup, err := initializeAgent()
			if err != nil {
				return err
			}
			defer cleanup()

			res := ag.Query(cmd.Context(), agent.Request{
				Query:         strings.Join(args, " "),
				Operation:     agent.OpFetchSections,
				SectionFilter: filter,
				Limit:         limit,
			})
			if res.Status == agent.StatusError {
				return errors.New(res.Error)
			}
			if asJSON {
				return printJSON(res)
			}

			data, ok := res.Data.(*agent.SectionsData)
			if !ok {
				return fmt.Errorf("unexpected payload %T", res.Data)
			}

			fmt.Printf("%s\n", data.DocumentInfo.Title)
			fmt.Printf("%s\n\n", data.DocumentInfo.URL)
			if len(data.Sections) == 0 {
				fmt.Println("No sections matched.")
				return nil
			}
			for _, sec := range data.Sections {
				depth := sec.Level - 2
				if depth < 0 {
					depth = 0
				}
				fmt.Printf("%s%s (%d words)\n", strings.Repeat("  ", depth), sec.Title, sec.WordCount)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", "only sections whose title contains this text")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum sections to return (default 10)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw result envelope")
	return cmd
}

func listCmd() *cobra.Command {
	var (
		limit       int
		asJSON      bool
		interactive bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the stored documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			if interactive {
				return runBrowse(cmd, args)
			}

			ag, _, cleanup, err := initializeAgent()
			if err != nil {
				return err
			}
			defer cleanup()

			res := ag.Query(cmd.Context(), agent.Request{
				Operation: agent.OpListDocuments,
				Limit:     limit,
			})
			if res.Status == agent.StatusError {
				return errors.New(res.Error)
			}
			if asJSON {
				return printJSON(res)
			}

			summaries, ok := res.Data.([]store.DocumentSummary)
			if !ok {
				return fmt.Errorf("unexpected payload %T", res.Data)
			}
			if len(summaries) == 0 {
				fmt.Println("No documents stored yet.")
				return nil
			}

			fmt.Printf("Found %d documents:\n\n", len(summaries))
			for _, doc := range summaries {
				fmt.Printf("  %s\n", doc.Title)
				if doc.Stats != nil {
					fmt.Printf("    Sections: %d | Words: %d | %s\n\n",
						doc.Stats.TotalSections, doc.Stats.TotalWords,
						truncate(doc.SummaryPreview, 70))
				} else {
					fmt.Printf("    %s\n\n", truncate(doc.SummaryPreview, 70))
				}
			}
			if limited, _ := res.Metadata["limited"].(bool); limited {
				fmt.Println("(list truncated, raise --limit to see more)")
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum documents to list (default 10)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw result envelope")
	cmd.Flags().BoolVar(&interactive, "interactive", false, "browse the collection in the terminal UI")
	return cmd
}

func searchCmd() *cobra.Command {
	var (
		scope  string
		limit  int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "search [term]",
		Short: "Search stored article content",
		Long: `Search the collection with match highlighting.

Examples:
  wikidex search mosquito
  wikidex search "combination therapy" --scope sections
  wikidex search malaria --scope titles --limit 5`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsedScope, err := store.ParseScope(scope)
			if err != nil {
				return err
			}

			ag, _, cleanup, err := initializeAgent()
			if err != nil {
				return err
			}
			defer cleanup()

			res := ag.Query(cmd.Context(), agent.Request{
				Query:       strings.Join(args, " "),
				Operation:   agent.OpSearchContent,
				SearchScope: parsedScope,
				Limit:       limit,
			})
			if res.Status == agent.StatusError {
				return errors.New(res.Error)
			}
			if asJSON {
				return printJSON(res)
			}

			results, ok := res.Data.([]store.SearchResult)
			if !ok {
				return fmt.Errorf("unexpected payload %T", res.Data)
			}
			if len(results) == 0 {
				fmt.Printf("No matches for: %s\n", strings.Join(args, " "))
				return nil
			}

			fmt.Printf("Found %d matching documents:\n\n", len(results))
			for i, r := range results {
				fmt.Printf("%d. %s\n", i+1, r.Title)
				for _, m := range r.Matches {
					where := m.Type
					if m.SectionTitle != "" {
						where = m.SectionTitle
					}
					fmt.Printf("   [%s] %s\n", where, truncate(m.Content, 90))
				}
				fmt.Println()
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&scope, "scope", "", "search scope: all, titles, summaries, or sections")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum documents to return (default 10)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw result envelope")
	return cmd
}

func statsCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show collection statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			ag, _, cleanup, err := initializeAgent()
			if err != nil {
				return err
			}
			defer cleanup()

			res := ag.Query(cmd.Context(), agent.Request{Operation: agent.OpGetStatistics})
			if res.Status == agent.StatusError {
				return errors.New(res.Error)
			}
			if asJSON {
				return printJSON(res)
			}

			stats, ok := res.Data.(*store.CollectionStats)
			if !ok {
				return fmt.Errorf("unexpected payload %T", res.Data)
			}

			fmt.Println("Collection Statistics:")
			fmt.Println("──────────────────────")
			if stats.TotalDocuments == 0 {
				fmt.Println(stats.Message)
				return nil
			}
			fmt.Printf("Documents:        %d\n", stats.TotalDocuments)
			fmt.Printf("Sections:         %d\n", stats.TotalSections)
			fmt.Printf("Words:            %d\n", stats.TotalWords)
			fmt.Printf("Characters:       %d\n", stats.TotalCharacters)
			fmt.Printf("Avg sections/doc: %.1f\n", stats.AverageSectionsPerDoc)
			fmt.Printf("Max depth:        %d\n", stats.MaximumHierarchyDepth)
			fmt.Printf("Collection:       %s/%s\n", stats.DatabaseName, stats.CollectionName)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw result envelope")
	return cmd
}

// ═══════════════════════════════════════════════════════════════════════════════
// QUERY COMMAND (One-shot agent envelope)
// ═══════════════════════════════════════════════════════════════════════════════

func queryCmd() *cobra.Command {
	var (
		operation string
		filter    string
		scope     string
		limit     int
	)
	cmd := &cobra.Command{
		Use:   "query [topic]",
		Short: "Run one agent operation and print the result envelope",
		Long: `Run a single agent operation and print its JSON envelope, exactly as
A2A and REST clients receive it.

Examples:
  wikidex query Malaria
  wikidex query Malaria --operation fetch_sections --filter treatment
  wikidex query --operation get_statistics`,
		RunE: func(cmd *cobra.Command, args []string) error {
			op := agent.Operation(operation)
			if operation != "" && !op.Valid() {
				return fmt.Errorf("unknown operation %q", operation)
			}
			parsedScope, err := store.ParseScope(scope)
			if err != nil {
				return err
			}

			ag, _, cleanup, err := initializeAgent()
			if err != nil {
				return err
			}
			defer cleanup()

			res := ag.Query(cmd.Context(), agent.Request{
				Query:         strings.Join(args, " "),
				Operation:     op,
				SectionFilter: filter,
				SearchScope:   parsedScope,
				Limit:         limit,
			})
			return printJSON(res)
		},
	}
	cmd.Flags().StringVar(&operation, "operation", "", "fetch_document, fetch_sections, list_documents, search_content, or get_statistics")
	cmd.Flags().StringVar(&filter, "filter", "", "section title filter for fetch_sections")
	cmd.Flags().StringVar(&scope, "scope", "", "search scope for search_content")
	cmd.Flags().IntVar(&limit, "limit", 0, "result limit (default 10)")
	return cmd
}

// ═══════════════════════════════════════════════════════════════════════════════
// IMPORT COMMAND
// ═══════════════════════════════════════════════════════════════════════════════

func importCmd() *cobra.Command {
	var (
		mode        string
		interactive bool
	)
	cmd := &cobra.Command{
		Use:   "import [files...]",
		Short: "Import markdown article files into the store",
		Long: `Import previously exported article markdown files.

Duplicates resolve with --mode, or interactively with --interactive.
Without either, duplicates update the existing document in place.

Examples:
  wikidex import exports/*.md
  wikidex import malaria.md --mode skip
  wikidex import malaria.md --interactive`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resolve store.Resolver
			if interactive {
				resolve = ui.PromptResolver()
			} else if mode != "" {
				parsed, err := store.ParseMode(mode)
				if err != nil {
					return err
				}
				resolve = func(*document.Document, []*document.Document) store.Mode {
					return parsed
				}
			}

			adapter, cleanup, err := initializeAdapter()
			if err != nil {
				return err
			}
			defer cleanup()

			var failures int
			for _, path := range args {
				content, err := os.ReadFile(path)
				if err != nil {
					fmt.Printf("❌ %s: %v\n", path, err)
					failures++
					continue
				}

				result, err := adapter.Store(cmd.Context(), string(content), path, resolve)
				if err != nil {
					fmt.Printf("❌ %s: %v\n", path, err)
					failures++
					continue
				}

				title := path
				if result.Document != nil {
					title = result.Document.DisplayTitle()
				}
				switch result.Mode {
				case store.ModeSkip:
					fmt.Printf("Skipped (duplicate): %s\n", title)
				case store.ModeUpdate:
					fmt.Printf("✅ Updated: %s\n", title)
				case store.ModeOverwrite:
					fmt.Printf("✅ Overwrote: %s\n", title)
				default:
					fmt.Printf("✅ Stored: %s\n", title)
				}
			}

			if failures > 0 {
				return fmt.Errorf("%d of %d files failed", failures, len(args))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "", "duplicate resolution: skip, add, update, or overwrite")
	cmd.Flags().BoolVar(&interactive, "interactive", false, "prompt on duplicates")
	return cmd
}

// ═══════════════════════════════════════════════════════════════════════════════
// BROWSE COMMAND (ROOT)
// ═══════════════════════════════════════════════════════════════════════════════

func browseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse the collection in a terminal UI",
		RunE:  runBrowse,
	}
}

func runBrowse(cmd *cobra.Command, args []string) error {
	adapter, cleanup, err := initializeAdapter()
	if err != nil {
		return err
	}
	defer cleanup()

	// Log lines would corrupt the alternate screen
	logging.DisableConsoleOutput()
	defer logging.EnableConsoleOutput()

	// Force TrueColor so the hardcoded palette renders consistently
	lipgloss.SetColorProfile(termenv.TrueColor)

	return ui.NewBrowseModel(adapter).Run()
}

// ═══════════════════════════════════════════════════════════════════════════════
// SERVE COMMAND
// ═══════════════════════════════════════════════════════════════════════════════

func serveCmd() *cobra.Command {
	var (
		addr          string
		generateToken bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the knowledge agent over HTTP (A2A + REST + event feed)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if generateToken {
				return runGenerateToken()
			}

			if addr == "" {
				addr = cfg.Server.ListenAddr
			}

			events := bus.NewBus()
			defer events.Close()

			adapter, cleanup, err := initializeAdapter(store.WithBus(events))
			if err != nil {
				return err
			}
			defer cleanup()

			ag := agent.NewAgent(adapter, newWikiClient(), agent.WithBus(events))

			observerCfg := bus.DefaultObserverConfig()
			observerCfg.Port = cfg.Server.ObserverPort
			if cfg.Server.EventBuffer > 0 {
				observerCfg.HistoryCount = cfg.Server.EventBuffer
			} else {
				observerCfg.ReplayHistory = false
			}
			observer := bus.NewObserver(events, observerCfg)
			if err := observer.Start(); err != nil {
				return fmt.Errorf("starting event observer: %w", err)
			}
			defer observer.Stop()

			srv, err := server.NewServer(ag, adapter, server.Config{
				AgentVersion: version,
				ListenAddr:   addr,
				TokenHash:    cfg.Server.TokenHash,
				Observer:     observer,
			})
			if err != nil {
				return err
			}

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start(addr) }()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			fmt.Printf("\nwikidex agent server\n")
			fmt.Printf("  REST API:   http://localhost%s/api/v1\n", addr)
			fmt.Printf("  A2A:        http://localhost%s/\n", addr)
			fmt.Printf("  Agent card: http://localhost%s/.well-known/agent-card.json\n", addr)
			fmt.Printf("  Events:     ws://localhost:%d%s\n", cfg.Server.ObserverPort, bus.WebSocketEndpoint)
			fmt.Printf("\nPress Ctrl+C to stop...\n")

			select {
			case err := <-errCh:
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
			case <-sigChan:
			}
			fmt.Println("\nShutting down...")

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			return srv.Stop(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&generateToken, "generate-token", false, "generate a bearer token, save its hash, and exit")
	return cmd
}

// runGenerateToken mints a bearer token, stores its bcrypt hash in the config
// file, and prints the token exactly once.
func runGenerateToken() error {
	token, hash, err := server.GenerateToken()
	if err != nil {
		return fmt.Errorf("generating token: %w", err)
	}

	cfg.Server.TokenHash = hash
	if err := cfg.SaveToPath(configPath()); err != nil {
		return fmt.Errorf("saving token hash: %w", err)
	}

	fmt.Printf("✅ Token hash saved to %s\n\n", configPath())
	fmt.Printf("  Bearer token: %s\n\n", token)
	fmt.Println("Store the token now; only its hash is kept.")
	return nil
}

// ═══════════════════════════════════════════════════════════════════════════════
// CONFIG COMMANDS
// ═══════════════════════════════════════════════════════════════════════════════

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}

	// Show command
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("wikidex Configuration:")
			fmt.Println("──────────────────────")
			fmt.Printf("Storage Backend:  %s\n", cfg.Storage.Backend)
			switch cfg.Storage.Backend {
			case "mongo":
				fmt.Printf("MongoDB URI:      %s\n", cfg.Storage.Mongo.URI)
				fmt.Printf("Database:         %s/%s\n", cfg.Storage.Mongo.Database, cfg.Storage.Mongo.Collection)
			case "sqlite":
				fmt.Printf("Database Path:    %s\n", cfg.Storage.SQLite.Path)
			}
			fmt.Printf("Wiki Language:    %s\n", cfg.Wikipedia.Language)
			fmt.Printf("Cache TTL:        %s\n", cfg.Wikipedia.CacheTTL)
			fmt.Printf("Listen Address:   %s\n", cfg.Server.ListenAddr)
			fmt.Printf("Observer Port:    %d\n", cfg.Server.ObserverPort)
			auth := "disabled"
			if cfg.Server.TokenHash != "" {
				auth = "bearer token"
			}
			fmt.Printf("Auth:             %s\n", auth)
			fmt.Printf("Event Buffer:     %d\n", cfg.Server.EventBuffer)
			fmt.Printf("Log Level:        %s\n", cfg.Logging.Level)
			return nil
		},
	})

	// Path command
	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(configPath())
		},
	})

	// Init command
	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write the default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Loading creates the file when it is missing
			fmt.Printf("✅ Configuration ready at %s\n", configPath())
			return nil
		},
	})

	return cmd
}

// ═══════════════════════════════════════════════════════════════════════════════
// OUTPUT HELPERS
// ═══════════════════════════════════════════════════════════════════════════════

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
