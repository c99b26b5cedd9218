// Package browser manages the long-lived headless Chrome session the agent
// observes and drives. All page analysis elsewhere works on snapshots or
// goes through narrow interfaces; this package is the only one that talks
// CDP.
package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// DefaultNavigationTimeout bounds a single Navigate call.
const DefaultNavigationTimeout = 30 * time.Second

// DefaultRenderSettle is the extra wait after body readiness for
// JavaScript-heavy pages to paint their content.
const DefaultRenderSettle = 2 * time.Second

// Session is one browser target. It implements the page-reading and
// expression-evaluation interfaces the watchers and the fill engine depend
// on.
type Session struct {
	log         *zap.Logger
	ctx         context.Context
	cancels     []context.CancelFunc
	navTimeout  time.Duration
	renderWait  time.Duration
	attachedURL string
}

// Option configures a Session.
type Option func(*settings)

type settings struct {
	headless   bool
	execPath   string
	navTimeout time.Duration
	renderWait time.Duration
}

// WithHeadless toggles headless mode. Visible mode helps when debugging
// selector tables against a live site.
func WithHeadless(headless bool) Option {
	return func(s *settings) { s.headless = headless }
}

// WithExecPath points the allocator at a specific Chrome binary.
func WithExecPath(path string) Option {
	return func(s *settings) { s.execPath = path }
}

// WithNavigationTimeout overrides the per-navigation deadline.
func WithNavigationTimeout(d time.Duration) Option {
	return func(s *settings) { s.navTimeout = d }
}

// WithRenderSettle overrides the post-load settle wait.
func WithRenderSettle(d time.Duration) Option {
	return func(s *settings) { s.renderWait = d }
}

// NewSession launches a browser and opens one target. Close releases the
// browser; the parent context cancels everything early.
func NewSession(parent context.Context, log *zap.Logger, opts ...Option) (*Session, error) {
	if log == nil {
		log = zap.NewNop()
	}
	cfg := settings{
		headless:   true,
		navTimeout: DefaultNavigationTimeout,
		renderWait: DefaultRenderSettle,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if cfg.execPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(cfg.execPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, allocOpts...)
	targetCtx, cancelTarget := chromedp.NewContext(allocCtx)

	s := &Session{
		log:        log,
		ctx:        targetCtx,
		cancels:    []context.CancelFunc{cancelTarget, cancelAlloc},
		navTimeout: cfg.navTimeout,
		renderWait: cfg.renderWait,
	}

	// Starting the browser eagerly surfaces a missing Chrome install as an
	// error here instead of on the first navigation.
	if err := chromedp.Run(targetCtx); err != nil {
		s.Close()
		return nil, fmt.Errorf("start browser: %w", err)
	}
	return s, nil
}

// Context returns the chromedp target context. Watchers register their
// bindings and listeners against it.
func (s *Session) Context() context.Context { return s.ctx }

// Navigate loads a URL, waits for body readiness and lets scripts settle.
func (s *Session) Navigate(url string) error {
	ctx, cancel := context.WithTimeout(s.ctx, s.navTimeout)
	defer cancel()

	err := chromedp.Run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Sleep(s.renderWait),
	)
	if err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	s.attachedURL = url
	s.log.Debug("navigated", zap.String("url", url))
	return nil
}

// HTML returns the rendered document markup.
func (s *Session) HTML() (string, error) {
	var html string
	if err := chromedp.Run(s.ctx, chromedp.OuterHTML("html", &html)); err != nil {
		return "", fmt.Errorf("read document html: %w", err)
	}
	return html, nil
}

// Document snapshots the rendered page as a parsed document. Analysis
// packages operate on the snapshot, never on the live page.
func (s *Session) Document() (*goquery.Document, error) {
	html, err := s.HTML()
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return doc, nil
}

// CurrentURL reports the target's location. Transient CDP errors degrade to
// the last navigated URL so classification keeps working.
func (s *Session) CurrentURL() (string, error) {
	var location string
	if err := chromedp.Run(s.ctx, chromedp.Location(&location)); err != nil {
		if s.attachedURL != "" {
			s.log.Debug("read location failed", zap.Error(err))
			return s.attachedURL, nil
		}
		return "", err
	}
	return location, nil
}

// BodyText returns the page's visible text.
func (s *Session) BodyText() (string, error) {
	var text string
	err := chromedp.Run(s.ctx,
		chromedp.Evaluate("document.body ? document.body.innerText : ''", &text))
	if err != nil {
		return "", err
	}
	return text, nil
}

// Evaluate runs an expression in the page, decoding the result into out when
// out is non-nil.
func (s *Session) Evaluate(ctx context.Context, expr string, out any) error {
	runCtx := s.ctx
	if ctx != nil {
		if deadline, ok := ctx.Deadline(); ok {
			// Bound by the caller's deadline while staying on our target.
			var cancel context.CancelFunc
			runCtx, cancel = context.WithDeadline(s.ctx, deadline)
			defer cancel()
		}
	}
	return chromedp.Run(runCtx, chromedp.Evaluate(expr, out))
}

// Close shuts the target and the browser down. Safe to call more than once.
func (s *Session) Close() {
	for _, cancel := range s.cancels {
		cancel()
	}
}
