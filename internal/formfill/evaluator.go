package formfill

import "context"

// Evaluator runs a JavaScript expression against the live page and decodes
// the result into out (which may be nil when the result is unused). The
// production implementation is the chromedp browser session; tests substitute
// a fake so adapter behavior is checkable without a browser.
type Evaluator interface {
	Evaluate(ctx context.Context, expr string, out any) error
}
