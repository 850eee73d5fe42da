package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newsharvest/topiccrawler/internal/scrape"
)

func TestStaticFetcherFetchContent(t *testing.T) {
	var seenAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenAgent = r.UserAgent()
		fmt.Fprint(w, `<html><body>
<div class="article"><p>Erster Absatz.</p><p>Zweiter Absatz.</p></div>
<div class="sidebar"><p>Ignorieren.</p></div>
</body></html>`)
	}))
	defer srv.Close()

	fetcher := NewStatic(Config{
		UserAgent:       "topiccrawler-test/1.0",
		ContentSelector: "div.article p",
		Timeout:         5 * time.Second,
	})

	content, err := fetcher.FetchContent(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, content, "Erster Absatz.")
	assert.Contains(t, content, "Zweiter Absatz.")
	assert.NotContains(t, content, "Ignorieren.")
	assert.Equal(t, "topiccrawler-test/1.0", seenAgent)
}

func TestStaticFetcherNoMatchYieldsEmptyContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><p>kein Artikel</p></body></html>`)
	}))
	defer srv.Close()

	fetcher := NewStatic(Config{ContentSelector: "div.article p", Timeout: 5 * time.Second})

	content, err := fetcher.FetchContent(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Empty(t, content)
}

func TestStaticFetcherWrapsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	fetcher := NewStatic(Config{ContentSelector: "p", Timeout: 5 * time.Second})

	_, err := fetcher.FetchContent(context.Background(), srv.URL)
	require.Error(t, err)

	var artErr *scrape.ArticleError
	require.True(t, errors.As(err, &artErr), "expected *scrape.ArticleError, got %T", err)
	assert.Equal(t, srv.URL, artErr.URL)
}

func TestStaticFetcherHonorsContext(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	fetcher := NewStatic(Config{ContentSelector: "p", Timeout: 30 * time.Second})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := fetcher.FetchContent(ctx, srv.URL)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second, "fetch should return promptly on context cancellation")
}
