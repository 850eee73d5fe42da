package render

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/newsharvest/topiccrawler/internal/extract"
)

// NavigationError reports a failed or timed-out navigation.
type NavigationError struct {
	URL string
	Err error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigate %s: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error { return e.Err }

// Tab is one isolated navigation context. It loads exactly one page and is
// closed by whichever operation opened it, on every exit path.
type Tab struct {
	ctx       context.Context
	cancel    context.CancelFunc
	session   *Session
	closeOnce sync.Once
}

// Navigate loads rawURL and waits until outstanding network activity goes
// quiet, bounded by timeout.
func (t *Tab) Navigate(ctx context.Context, rawURL string, timeout time.Duration) error {
	if err := t.session.waitHostBudget(ctx, rawURL); err != nil {
		return &NavigationError{URL: rawURL, Err: err}
	}

	taskCtx, cancelTask := context.WithTimeout(t.ctx, timeout)
	defer cancelTask()

	stopForward := forwardCancel(ctx, cancelTask)
	defer stopForward()

	tasks := chromedp.Tasks{
		network.Enable(),
		emulation.SetUserAgentOverride(t.session.userAgent),
		enableLifecycleEvents(),
		navigateAndWaitIdle(rawURL),
	}
	if err := chromedp.Run(taskCtx, tasks); err != nil {
		return &NavigationError{URL: rawURL, Err: err}
	}
	return nil
}

// ExtractListing pulls (title, link) pairs from the loaded page. Extraction
// is strict: a matched item without a resolvable link or title fails the
// whole listing with extract.ErrInvalidItem.
func (t *Tab) ExtractListing(ctx context.Context, itemSelector, linkSelector string) ([]extract.Headline, error) {
	html, err := t.outerHTML(ctx)
	if err != nil {
		return nil, err
	}
	return extract.Listing(html, itemSelector, linkSelector)
}

// ExtractFragments returns the serialized fragments matching selector in
// document order. No match yields an empty slice.
func (t *Tab) ExtractFragments(ctx context.Context, selector string) ([]string, error) {
	html, err := t.outerHTML(ctx)
	if err != nil {
		return nil, err
	}
	return extract.Fragments(html, selector)
}

// CurrentURL reports the tab's location after redirects. Relative article
// links are resolved against it, not against the configured base URL.
func (t *Tab) CurrentURL(ctx context.Context) (string, error) {
	var location string
	if err := t.run(ctx, chromedp.Location(&location)); err != nil {
		return "", fmt.Errorf("read tab location: %w", err)
	}
	return location, nil
}

// Close disposes the tab. Safe to call more than once.
func (t *Tab) Close() error {
	t.closeOnce.Do(t.cancel)
	return nil
}

func (t *Tab) outerHTML(ctx context.Context) (string, error) {
	var html string
	if err := t.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("read document html: %w", err)
	}
	return html, nil
}

func (t *Tab) run(ctx context.Context, actions ...chromedp.Action) error {
	taskCtx, cancelTask := context.WithCancel(t.ctx)
	defer cancelTask()

	stopForward := forwardCancel(ctx, cancelTask)
	defer stopForward()

	return chromedp.Run(taskCtx, actions...)
}

func enableLifecycleEvents() chromedp.ActionFunc {
	return func(ctx context.Context) error {
		if err := page.Enable().Do(ctx); err != nil {
			return fmt.Errorf("enable page domain: %w", err)
		}
		if err := page.SetLifecycleEventsEnabled(true).Do(ctx); err != nil {
			return fmt.Errorf("enable lifecycle events: %w", err)
		}
		return nil
	}
}

// navigateAndWaitIdle starts the navigation and blocks until the browser
// reports the networkIdle lifecycle event, i.e. outstanding network activity
// has dropped off rather than just the initial document load finishing.
func navigateAndWaitIdle(rawURL string) chromedp.ActionFunc {
	return func(ctx context.Context) error {
		idle := make(chan struct{})
		listenCtx, stopListening := context.WithCancel(ctx)
		defer stopListening()

		var once sync.Once
		chromedp.ListenTarget(listenCtx, func(ev interface{}) {
			if e, ok := ev.(*page.EventLifecycleEvent); ok && e.Name == "networkIdle" {
				once.Do(func() { close(idle) })
			}
		})

		if _, _, _, err := page.Navigate(rawURL).Do(ctx); err != nil {
			return fmt.Errorf("start navigation: %w", err)
		}

		select {
		case <-idle:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func forwardCancel(parent context.Context, cancel context.CancelFunc) func() {
	if parent == nil {
		return func() {}
	}
	done := make(chan struct{})
	go func() {
		select {
		case <-parent.Done():
			cancel()
		case <-done:
		}
	}()
	return func() { close(done) }
}
