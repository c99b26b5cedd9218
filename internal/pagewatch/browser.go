package pagewatch

import (
	"context"
	_ "embed"
	"encoding/json"
	"sync"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

//go:embed js/observe.js
var observeScript string

// notifyBinding is the name of the browser binding the injected observer
// script calls with change notifications.
const notifyBinding = "__applyAgentNotify"

// BrowserSource is the chromedp-backed Source: it injects an observer script
// that wraps the history mutation entry points, watches primary-content DOM
// mutations, form submissions and apply-intent clicks, and forwards each
// signal through a page binding.
type BrowserSource struct {
	log    *zap.Logger
	events chan Event

	mu     sync.Mutex
	closed bool
}

// NewBrowserSource installs the observer into the browser target behind ctx
// and starts forwarding its notifications. The context must be a chromedp
// target context that stays alive for the source's lifetime.
func NewBrowserSource(ctx context.Context, log *zap.Logger) (*BrowserSource, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s := &BrowserSource{
		log:    log,
		events: make(chan Event, 32),
	}

	err := chromedp.Run(ctx,
		runtime.AddBinding(notifyBinding),
		chromedp.ActionFunc(func(ctx context.Context) error {
			// New documents get the observer before any page script runs.
			_, err := page.AddScriptToEvaluateOnNewDocument(observeScript).Do(ctx)
			return err
		}),
		// The current document is already loaded; install directly.
		chromedp.Evaluate(observeScript, nil),
	)
	if err != nil {
		return nil, err
	}

	chromedp.ListenTarget(ctx, func(ev interface{}) {
		called, ok := ev.(*runtime.EventBindingCalled)
		if !ok || called.Name != notifyBinding {
			return
		}
		var payload struct {
			Kind string `json:"kind"`
			URL  string `json:"url"`
		}
		if err := json.Unmarshal([]byte(called.Payload), &payload); err != nil {
			s.log.Debug("malformed observer payload", zap.Error(err))
			return
		}
		s.push(Event{Kind: EventKind(payload.Kind), URL: payload.URL})
	})

	return s, nil
}

// push delivers an event without blocking the CDP event loop. Events are
// dropped when the channel is full; the monitor re-reads page state anyway,
// so a dropped signal only delays reclassification until the next one.
func (s *BrowserSource) push(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.events <- ev:
	default:
		s.log.Debug("observer event dropped", zap.String("kind", string(ev.Kind)))
	}
}

// Events returns the notification channel.
func (s *BrowserSource) Events() <-chan Event { return s.events }

// Close stops the source. The underlying binding stays installed; it goes
// away with the browser target.
func (s *BrowserSource) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.events)
}
