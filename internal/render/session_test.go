package render

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestNavigationErrorUnwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	err := &NavigationError{URL: "https://news.example.com/a", Err: cause}
	if !errors.Is(err, cause) {
		t.Fatal("expected NavigationError to unwrap its cause")
	}
	if err.Error() == "" {
		t.Fatal("expected non-empty error text")
	}
}

func TestNewTabOnClosedSession(t *testing.T) {
	t.Parallel()

	s := &Session{logger: zap.NewNop()}
	s.closed.Store(true)
	if _, err := s.NewTab(context.Background()); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("expected ErrSessionClosed, got %v", err)
	}
}

func TestSessionNavigateAndExtract(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<!doctype html><html><body>
<ul><li class="item"><a class="link" href="/artikel/eins">Eins</a></li>
<li class="item"><a class="link" href="/artikel/zwei">Zwei</a></li></ul>
<div class="content"><p>Absatz.</p></div>
<script>document.title = 'rendered';</script>
</body></html>`)
	}))
	defer srv.Close()

	session, err := NewSession(context.Background(), Options{UserAgent: "TestAgent"}, zap.NewNop())
	if err != nil {
		t.Skipf("chromedp unavailable: %v", err)
	}
	defer session.Close()

	tab, err := session.NewTab(context.Background())
	if err != nil {
		t.Fatalf("NewTab() error = %v", err)
	}
	defer tab.Close()

	if err := tab.Navigate(context.Background(), srv.URL, 15*time.Second); err != nil {
		t.Skipf("navigate failed: %v", err)
	}

	headlines, err := tab.ExtractListing(context.Background(), "li.item", "a.link")
	if err != nil {
		t.Fatalf("ExtractListing() error = %v", err)
	}
	if len(headlines) != 2 || headlines[0].Title != "Eins" {
		t.Fatalf("unexpected headlines: %+v", headlines)
	}

	fragments, err := tab.ExtractFragments(context.Background(), "div.content p")
	if err != nil {
		t.Fatalf("ExtractFragments() error = %v", err)
	}
	if len(fragments) != 1 {
		t.Fatalf("expected one fragment, got %d", len(fragments))
	}

	location, err := tab.CurrentURL(context.Background())
	if err != nil {
		t.Fatalf("CurrentURL() error = %v", err)
	}
	if location == "" {
		t.Fatal("expected non-empty tab location")
	}
}

func TestTabCloseIsIdempotent(t *testing.T) {
	session, err := NewSession(context.Background(), Options{UserAgent: "TestAgent"}, zap.NewNop())
	if err != nil {
		t.Skipf("chromedp unavailable: %v", err)
	}
	defer session.Close()

	tab, err := session.NewTab(context.Background())
	if err != nil {
		t.Fatalf("NewTab() error = %v", err)
	}
	if err := tab.Close(); err != nil {
		t.Fatalf("first Close() error = %v", err)
	}
	if err := tab.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}

	if err := session.Close(); err != nil {
		t.Fatalf("session Close() error = %v", err)
	}
	if err := session.Close(); err != nil {
		t.Fatalf("repeated session Close() error = %v", err)
	}
	if _, err := session.NewTab(context.Background()); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("expected ErrSessionClosed after close, got %v", err)
	}
}
