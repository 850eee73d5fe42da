// Package render drives headless Chrome via chromedp. A Session owns the
// browser process for the duration of one crawl; Tabs are isolated navigation
// contexts spawned from it, each loading exactly one page.
package render

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ErrSessionClosed indicates a tab was requested from a closed session.
var ErrSessionClosed = errors.New("render session closed")

// Options configures a Session.
type Options struct {
	// UserAgent is the identity string sent by every tab the session spawns.
	UserAgent string
	// HostQPS caps navigations per host. Zero disables the budget.
	HostQPS float64
}

// Session wraps a long-lived exec allocator and browser context. At most one
// session should be open per crawl; it must be closed even when the crawl
// fails.
type Session struct {
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	logger        *zap.Logger
	userAgent     string
	hostQPS       float64
	hostLimiters  sync.Map
	closed        atomic.Bool
	closeOnce     sync.Once
}

// NewSession starts the headless browser and warms it up. The returned
// session must be closed by the caller.
func NewSession(ctx context.Context, opts Options, logger *zap.Logger) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	allocOpts := chromedp.DefaultExecAllocatorOptions[:]
	allocOpts = append(allocOpts,
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.UserAgent(opts.UserAgent),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("start browser session: %w", err)
	}

	logger.Debug("browser session started", zap.String("user_agent", opts.UserAgent))

	return &Session{
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		logger:        logger,
		userAgent:     opts.UserAgent,
		hostQPS:       opts.HostQPS,
	}, nil
}

// NewTab opens an isolated navigation context. The caller owns the tab and
// must close it on every exit path.
func (s *Session) NewTab(ctx context.Context) (*Tab, error) {
	if s.closed.Load() {
		return nil, ErrSessionClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("open tab: %w", err)
	}
	tabCtx, cancel := chromedp.NewContext(s.browserCtx)
	return &Tab{
		ctx:     tabCtx,
		cancel:  cancel,
		session: s,
	}, nil
}

// Close tears down the browser and allocator contexts. Safe to call more
// than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.browserCancel()
		s.allocCancel()
		s.logger.Debug("browser session closed")
	})
	return nil
}

func (s *Session) waitHostBudget(ctx context.Context, rawURL string) error {
	if s.hostQPS <= 0 {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse navigation url: %w", err)
	}
	host := strings.ToLower(parsed.Host)
	val, _ := s.hostLimiters.LoadOrStore(host, rate.NewLimiter(rate.Limit(s.hostQPS), 1))
	limiter, ok := val.(*rate.Limiter)
	if !ok {
		return fmt.Errorf("unexpected limiter type %T", val)
	}
	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("wait host budget: %w", err)
	}
	return nil
}
