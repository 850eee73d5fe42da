// Package fetch implements the render-free article engine using the Colly
// collector. It serves sites whose article bodies are present in the initial
// HTML and do not need a browser.
package fetch

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/newsharvest/topiccrawler/internal/extract"
	"github.com/newsharvest/topiccrawler/internal/metrics"
	"github.com/newsharvest/topiccrawler/internal/scrape"
)

// Config controls collector behavior.
type Config struct {
	UserAgent       string
	ContentSelector string
	Timeout         time.Duration
}

// StaticFetcher implements scrape.ArticleFetcher with plain HTTP GETs.
type StaticFetcher struct {
	cfg           Config
	baseCollector *colly.Collector
}

var _ scrape.ArticleFetcher = (*StaticFetcher)(nil)

// NewStatic builds a StaticFetcher.
func NewStatic(cfg Config) *StaticFetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	// colly v2.1.0's Async option ignores its argument and always enables
	// async mode; set the field directly to keep the collector synchronous.
	c := colly.NewCollector()
	c.Async = false
	// Crawl directives are left to the operator.
	c.IgnoreRobotsTxt = true
	c.WithTransport(newHTTPTransport())

	return &StaticFetcher{
		cfg:           cfg,
		baseCollector: c,
	}
}

// FetchContent executes a single GET and extracts the configured content
// fragments. Failures come back as *scrape.ArticleError, recoverable at the
// topic pipeline.
func (f *StaticFetcher) FetchContent(ctx context.Context, url string) (string, error) {
	start := time.Now()

	collector := f.baseCollector.Clone()
	if f.cfg.UserAgent != "" {
		collector.UserAgent = f.cfg.UserAgent
	}
	collector.SetRequestTimeout(f.cfg.Timeout)

	var body []byte
	collector.OnResponse(func(r *colly.Response) {
		body = r.Body
	})

	if err := f.visit(ctx, collector, url); err != nil {
		return "", &scrape.ArticleError{URL: url, Err: err}
	}

	fragments, err := extract.Fragments(string(body), f.cfg.ContentSelector)
	if err != nil {
		return "", &scrape.ArticleError{URL: url, Err: err}
	}

	metrics.ObserveArticleFetchDuration("static", time.Since(start))
	return extract.JoinFragments(fragments), nil
}

func (f *StaticFetcher) visit(ctx context.Context, collector *colly.Collector, url string) error {
	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("static fetch canceled: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return fmt.Errorf("visit failed: %w", err)
		}
		return nil
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
