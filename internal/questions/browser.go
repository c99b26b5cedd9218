package questions

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

//go:embed js/inputs.js
var inputsScript string

// inputBinding is the page binding the injected listener calls with answer
// updates.
const inputBinding = "__applyAgentInput"

// InputWatcher forwards live input/change events from the page to a
// detector. Listener registration happens once per browser target; the
// started flag makes delivery exclusive to the tracking session, so repeated
// start/stop cycles never double-register page listeners.
type InputWatcher struct {
	log *zap.Logger

	mu       sync.Mutex
	detector *Detector
}

// NewInputWatcher installs the input listener into the browser target behind
// ctx. Events are dropped until Attach is called.
func NewInputWatcher(ctx context.Context, log *zap.Logger) (*InputWatcher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	w := &InputWatcher{log: log}

	err := chromedp.Run(ctx,
		runtime.AddBinding(inputBinding),
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(inputsScript).Do(ctx)
			return err
		}),
		chromedp.Evaluate(inputsScript, nil),
	)
	if err != nil {
		return nil, err
	}

	chromedp.ListenTarget(ctx, func(ev interface{}) {
		called, ok := ev.(*runtime.EventBindingCalled)
		if !ok || called.Name != inputBinding {
			return
		}
		var payload struct {
			Selector string `json:"selector"`
			Value    string `json:"value"`
		}
		if err := json.Unmarshal([]byte(called.Payload), &payload); err != nil {
			w.log.Debug("malformed input payload", zap.Error(err))
			return
		}
		w.mu.Lock()
		det := w.detector
		w.mu.Unlock()
		if det != nil {
			det.OnAnswerChanged(payload.Selector, payload.Value)
		}
	})

	return w, nil
}

// Attach routes input events to the detector for the current tracking
// session.
func (w *InputWatcher) Attach(det *Detector) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.detector = det
}

// Detach stops event delivery. Called when tracking stops.
func (w *InputWatcher) Detach() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.detector = nil
}
