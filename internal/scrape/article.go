package scrape

import (
	"context"
	"time"

	"github.com/newsharvest/topiccrawler/internal/extract"
	"github.com/newsharvest/topiccrawler/internal/metrics"
)

// BrowserFetcher retrieves article content by rendering the page in a fresh
// tab of the shared session. Every tab it opens is closed before the fetch
// returns, whether the fetch succeeded or not.
type BrowserFetcher struct {
	session         Session
	contentSelector string
	pageLoadTimeout time.Duration
}

// NewBrowserFetcher builds a fetcher over the given session.
func NewBrowserFetcher(session Session, contentSelector string, pageLoadTimeout time.Duration) *BrowserFetcher {
	return &BrowserFetcher{
		session:         session,
		contentSelector: contentSelector,
		pageLoadTimeout: pageLoadTimeout,
	}
}

// FetchContent navigates to url, waits for network quiescence, and returns
// the article's content fragments joined by newlines. Any failure is wrapped
// as an *ArticleError and is recoverable at the topic pipeline.
func (f *BrowserFetcher) FetchContent(ctx context.Context, url string) (string, error) {
	start := time.Now()

	tab, err := f.session.NewTab(ctx)
	if err != nil {
		return "", &ArticleError{URL: url, Err: err}
	}
	defer tab.Close() //nolint:errcheck // tab close is idempotent and best-effort

	if err := tab.Navigate(ctx, url, f.pageLoadTimeout); err != nil {
		return "", &ArticleError{URL: url, Err: err}
	}

	fragments, err := tab.ExtractFragments(ctx, f.contentSelector)
	if err != nil {
		return "", &ArticleError{URL: url, Err: err}
	}

	metrics.ObserveArticleFetchDuration("browser", time.Since(start))
	return extract.JoinFragments(fragments), nil
}
