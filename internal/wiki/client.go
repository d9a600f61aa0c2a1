// Package wiki fetches Wikipedia articles over the MediaWiki Action API and
// renders them into the markdown layout the document parser understands.
package wiki

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/normanking/wikidex/internal/logging"
)

// DefaultUserAgent identifies wikidex to the Wikipedia API. The API rejects
// anonymous default agents.
const DefaultUserAgent = "wikidex/1.0 (https://github.com/normanking/wikidex)"

// Article is a fetched Wikipedia page, split into its lead summary and the
// ordered section list extracted from the wikitext heading markers.
type Article struct {
	Query     string
	Title     string
	URL       string
	Summary   string
	Sections  []ExtractSection
	FetchedAt time.Time
}

// ExtractSection is one wikitext heading with its text. Level follows the
// marker depth, so "==" is level 2.
type ExtractSection struct {
	Title   string
	Level   int
	Content string
}

// Client talks to a MediaWiki Action API endpoint.
type Client struct {
	baseURL    string
	language   string
	userAgent  string
	httpClient *http.Client
	cache      *articleCache
	log        zerolog.Logger
}

// articleCache provides simple TTL-based caching to reduce API calls.
type articleCache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
	maxSize int
	ttl     time.Duration
}

type cacheEntry struct {
	article   *Article
	expiresAt time.Time
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithBaseURL points the client at a specific api.php endpoint, bypassing
// the language-derived default.
func WithBaseURL(raw string) ClientOption {
	return func(c *Client) {
		c.baseURL = raw
	}
}

// WithLanguage selects the Wikipedia language edition.
func WithLanguage(lang string) ClientOption {
	return func(c *Client) {
		c.language = lang
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithCacheTTL sets how long fetched articles are reused.
func WithCacheTTL(ttl time.Duration) ClientOption {
	return func(c *Client) {
		c.cache.ttl = ttl
	}
}

// NewClient creates a Wikipedia client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		language:   "en",
		userAgent:  DefaultUserAgent,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		cache: &articleCache{
			entries: make(map[string]*cacheEntry),
			maxSize: 100,
			ttl:     15 * time.Minute,
		},
		log: logging.Component("wiki"),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.baseURL == "" {
		c.baseURL = fmt.Sprintf("https://%s.wikipedia.org/w/api.php", c.language)
	}

	return c
}

// pageResponse mirrors the formatversion=2 query result shape.
type pageResponse struct {
	Query struct {
		Pages []struct {
			Title   string `json:"title"`
			Extract string `json:"extract"`
			FullURL string `json:"fullurl"`
			Missing bool   `json:"missing"`
		} `json:"pages"`
	} `json:"query"`
}

// Fetch retrieves the article for query. A page that does not exist returns
// nil without error.
func (c *Client) Fetch(ctx context.Context, query string) (*Article, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}

	cacheKey := c.cacheKey(query)
	if cached := c.cache.get(cacheKey); cached != nil {
		c.log.Debug().Str("query", query).Msg("article cache hit")
		return cached, nil
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("formatversion", "2")
	params.Set("redirects", "1")
	params.Set("prop", "extracts|info")
	params.Set("explaintext", "1")
	params.Set("exsectionformat", "wiki")
	params.Set("inprop", "url")
	params.Set("titles", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("wikipedia api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wikipedia api returned status %d", resp.StatusCode)
	}

	var page pageResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(page.Query.Pages) == 0 || page.Query.Pages[0].Missing {
		c.log.Info().Str("query", query).Msg("no wikipedia page found")
		return nil, nil
	}

	p := page.Query.Pages[0]
	summary, sections := splitExtract(p.Extract)
	article := &Article{
		Query:     query,
		Title:     p.Title,
		URL:       p.FullURL,
		Summary:   summary,
		Sections:  sections,
		FetchedAt: time.Now(),
	}

	c.log.Info().
		Str("query", query).
		Str("title", p.Title).
		Int("sections", len(sections)).
		Dur("elapsed", time.Since(start)).
		Msg("fetched wikipedia article")

	c.cache.set(cacheKey, article)
	return article, nil
}

func (c *Client) cacheKey(query string) string {
	normalized := strings.ToLower(strings.TrimSpace(query))
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:16])
}

func (a *articleCache) get(key string) *Article {
	a.mu.RLock()
	defer a.mu.RUnlock()

	entry, ok := a.entries[key]
	if !ok {
		return nil
	}

	if time.Now().After(entry.expiresAt) {
		return nil // Expired
	}

	return entry.article
}

func (a *articleCache) set(key string, article *Article) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.entries) >= a.maxSize {
		a.evictOldest()
	}

	a.entries[key] = &cacheEntry{
		article:   article,
		expiresAt: time.Now().Add(a.ttl),
	}
}

func (a *articleCache) evictOldest() {
	var oldestKey string
	var oldestTime time.Time

	for key, entry := range a.entries {
		if oldestKey == "" || entry.expiresAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.expiresAt
		}
	}

	if oldestKey != "" {
		delete(a.entries, oldestKey)
	}
}
