package formfill

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// eventStep is one entry in the post-fill event sequence.
type eventStep struct {
	eventType string
	init      string // JSON event init, empty for defaults
}

// eventSequence returns the broad event trigger run after every fill:
// focusin, focus, a simulated keystroke, input with insert-text semantics,
// change, variant-specific extras, then blur and focusout. Frameworks differ
// in which of these they listen to; firing the full set keeps reconciliation
// and validation listeners in sync for all of them.
func eventSequence(variant Variant, value string) []eventStep {
	steps := []eventStep{
		{"focusin", ""},
		{"focus", ""},
		{"keydown", `{"key":"a"}`},
		{"input", fmt.Sprintf(`{"inputType":"insertText","data":%s}`, strconv.Quote(value))},
		{"keyup", `{"key":"a"}`},
		{"change", ""},
	}

	switch variant {
	case VariantReact:
		// React's synthetic system tracks composition on controlled inputs.
		steps = append(steps, eventStep{"compositionend", ""})
	case VariantVue:
		steps = append(steps, eventStep{"update", ""})
	}

	steps = append(steps, eventStep{"blur", ""}, eventStep{"focusout", ""})
	return steps
}

// triggerEventSequence dispatches the sequence with a short delay between
// events so framework reconciliation and validation listeners get a turn.
func (e *Engine) triggerEventSequence(ctx context.Context, selector string, variant Variant, value string) error {
	for _, step := range eventSequence(variant, value) {
		init := step.init
		if init == "" {
			init = "{}"
		}
		expr := fmt.Sprintf("window.__applyAgentHelpers.dispatchEvent(%s, %s, %s)",
			strconv.Quote(selector), strconv.Quote(step.eventType), init)
		if err := e.evaluator.Evaluate(ctx, expr, nil); err != nil {
			return fmt.Errorf("dispatch %s: %w", step.eventType, err)
		}
		if err := e.sleep(ctx, e.eventDelay); err != nil {
			return err
		}
	}
	return nil
}

// sleep waits d, honoring context cancellation. Zero delays return at once so
// tests run synchronously.
func (e *Engine) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
