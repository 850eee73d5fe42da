// Package scrape implements the topic crawl pipeline: listing extraction,
// per-article fetch with isolated failure handling, and rate-limited
// sequential traversal across the configured topics.
package scrape

import (
	"context"
	"time"

	"github.com/newsharvest/topiccrawler/internal/extract"
)

// NewsItem is one discovered article. Content stays empty until the article
// fetch succeeds; items whose fetch fails are omitted from results entirely.
type NewsItem struct {
	Title     string `json:"title"`
	DetailURL string `json:"detail_url"`
	Content   string `json:"content,omitempty"`
}

// Result maps topic identifiers to their articles. Every configured topic
// has exactly one entry, in configuration order, even when it yielded
// nothing.
type Result struct {
	RunID  string                `json:"run_id"`
	Order  []string              `json:"order"`
	Topics map[string][]NewsItem `json:"topics"`
}

func newResult(runID string) *Result {
	return &Result{
		RunID:  runID,
		Topics: make(map[string][]NewsItem),
	}
}

func (r *Result) add(topic string, items []NewsItem) {
	if _, exists := r.Topics[topic]; !exists {
		r.Order = append(r.Order, topic)
	}
	if items == nil {
		items = []NewsItem{}
	}
	r.Topics[topic] = items
}

// Tab is one isolated navigation context, owned by the operation that opened
// it and closed by that operation on every exit path.
type Tab interface {
	Navigate(ctx context.Context, url string, timeout time.Duration) error
	ExtractListing(ctx context.Context, itemSelector, linkSelector string) ([]extract.Headline, error)
	ExtractFragments(ctx context.Context, selector string) ([]string, error)
	CurrentURL(ctx context.Context) (string, error)
	Close() error
}

// Session spawns tabs. One session is open per crawl, owned by the Crawler.
type Session interface {
	NewTab(ctx context.Context) (Tab, error)
	Close() error
}

// SessionOpener creates the session at the start of a run. An open failure
// surfaces to the caller unmodified and aborts the crawl before any topic is
// processed.
type SessionOpener func(ctx context.Context) (Session, error)

// ArticleFetcher retrieves the textual content of a single article.
type ArticleFetcher interface {
	FetchContent(ctx context.Context, url string) (string, error)
}

// FetcherFactory builds the article fetcher once the session exists. The
// static engine ignores the session; the browser engine fetches through it.
type FetcherFactory func(session Session) ArticleFetcher

// IDGenerator produces run IDs.
type IDGenerator interface {
	NewID() (string, error)
}
