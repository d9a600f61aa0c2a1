package wiki

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const malariaExtract = "Malaria is a mosquito-borne infectious disease.\n\n\n== History ==\nEarly treatments used quinine bark.\n\n\n=== Modern era ===\nArtemisinin arrived in the twentieth century.\n\n\n== See also ==\nList of epidemics."

// servePage responds like the Action API with formatversion=2.
func servePage(w http.ResponseWriter, title, extract, fullURL string, missing bool) {
	page := map[string]any{
		"ns":    0,
		"title": title,
	}
	if missing {
		page["missing"] = true
	} else {
		page["pageid"] = 1234
		page["extract"] = extract
		page["fullurl"] = fullURL
	}

	resp := map[string]any{
		"batchcomplete": true,
		"query":         map[string]any{"pages": []any{page}},
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func TestFetchArticle(t *testing.T) {
	var gotRequest *http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRequest = r.Clone(context.Background())
		servePage(w, "Malaria", malariaExtract, "https://en.wikipedia.org/wiki/Malaria", false)
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))

	article, err := client.Fetch(context.Background(), "Malaria")
	require.NoError(t, err)
	require.NotNil(t, article)

	assert.Equal(t, "Malaria", article.Title)
	assert.Equal(t, "Malaria", article.Query)
	assert.Equal(t, "https://en.wikipedia.org/wiki/Malaria", article.URL)
	assert.Equal(t, "Malaria is a mosquito-borne infectious disease.", article.Summary)
	require.Len(t, article.Sections, 3)
	assert.Equal(t, "History", article.Sections[0].Title)
	assert.Equal(t, 2, article.Sections[0].Level)
	assert.Equal(t, "Modern era", article.Sections[1].Title)
	assert.Equal(t, 3, article.Sections[1].Level)
	assert.False(t, article.FetchedAt.IsZero())

	// The request carries the extract parameters and a real user agent.
	q := gotRequest.URL.Query()
	assert.Equal(t, "query", q.Get("action"))
	assert.Equal(t, "2", q.Get("formatversion"))
	assert.Equal(t, "1", q.Get("explaintext"))
	assert.Equal(t, "Malaria", q.Get("titles"))
	assert.Equal(t, DefaultUserAgent, gotRequest.Header.Get("User-Agent"))
}

func TestFetchMissingPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		servePage(w, "Xqzzyvix", "", "", true)
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))

	article, err := client.Fetch(context.Background(), "Xqzzyvix")
	require.NoError(t, err)
	assert.Nil(t, article)
}

func TestFetchServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))

	_, err := client.Fetch(context.Background(), "Malaria")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestFetchEmptyQuery(t *testing.T) {
	client := NewClient(WithBaseURL("http://127.0.0.1:0"))

	_, err := client.Fetch(context.Background(), "   ")
	require.Error(t, err)
}

func TestFetchCaching(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		servePage(w, "Malaria", malariaExtract, "https://en.wikipedia.org/wiki/Malaria", false)
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))

	first, err := client.Fetch(context.Background(), "Malaria")
	require.NoError(t, err)
	second, err := client.Fetch(context.Background(), "malaria")
	require.NoError(t, err)

	assert.Equal(t, int64(1), calls.Load(), "second fetch should hit the cache")
	assert.Equal(t, first.Title, second.Title)
}

func TestFetchCacheExpiry(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		servePage(w, "Malaria", malariaExtract, "https://en.wikipedia.org/wiki/Malaria", false)
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL), WithCacheTTL(time.Millisecond))

	_, err := client.Fetch(context.Background(), "Malaria")
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	_, err = client.Fetch(context.Background(), "Malaria")
	require.NoError(t, err)

	assert.Equal(t, int64(2), calls.Load(), "expired entry should refetch")
}
