package formfill

import (
	"context"
	"fmt"
	"strconv"
)

// Adapter encapsulates how to set a value for one input variant and notify
// that variant's framework binding. Adapters return an error instead of
// panicking; the engine converts errors into tagged results.
type Adapter interface {
	Variant() Variant
	Fill(ctx context.Context, ev Evaluator, selector, value string) error
}

// helperCall evaluates one __applyAgentHelpers method that returns an error
// string ("" means success).
func helperCall(ctx context.Context, ev Evaluator, method, selector, value string) error {
	expr := fmt.Sprintf("window.__applyAgentHelpers.%s(%s, %s)",
		method, strconv.Quote(selector), strconv.Quote(value))
	var errMsg string
	if err := ev.Evaluate(ctx, expr, &errMsg); err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	if errMsg != "" {
		return fmt.Errorf("%s", errMsg)
	}
	return nil
}

// standardAdapter focuses, clears, assigns through the value property and
// dispatches input.
type standardAdapter struct{}

func (standardAdapter) Variant() Variant { return VariantStandard }

func (standardAdapter) Fill(ctx context.Context, ev Evaluator, selector, value string) error {
	return helperCall(ctx, ev, "setStandard", selector, value)
}

// reactAdapter invokes the platform's native value setter directly, bypassing
// the framework's property interception, then dispatches input and change so
// the synthetic event system observes the new value.
type reactAdapter struct{}

func (reactAdapter) Variant() Variant { return VariantReact }

func (reactAdapter) Fill(ctx context.Context, ev Evaluator, selector, value string) error {
	return helperCall(ctx, ev, "setReact", selector, value)
}

// vueAdapter assigns directly and emits input/change through the component
// instance when a back-reference exists, with native events as a safety net.
type vueAdapter struct{}

func (vueAdapter) Variant() Variant { return VariantVue }

func (vueAdapter) Fill(ctx context.Context, ev Evaluator, selector, value string) error {
	return helperCall(ctx, ev, "setVue", selector, value)
}

// contentEditableAdapter rewrites the element's text content.
type contentEditableAdapter struct{}

func (contentEditableAdapter) Variant() Variant { return VariantContentEditable }

func (contentEditableAdapter) Fill(ctx context.Context, ev Evaluator, selector, value string) error {
	return helperCall(ctx, ev, "setContentEditable", selector, value)
}

// wysiwygAdapter uses the editor's own content API when an instance is
// discoverable, falling back to the inner contentEditable node.
type wysiwygAdapter struct{}

func (wysiwygAdapter) Variant() Variant { return VariantWYSIWYG }

func (wysiwygAdapter) Fill(ctx context.Context, ev Evaluator, selector, value string) error {
	return helperCall(ctx, ev, "setWysiwyg", selector, value)
}

// selectAdapter picks the option whose text or value contains the target,
// case-insensitively.
type selectAdapter struct{}

func (selectAdapter) Variant() Variant { return VariantSelect }

func (selectAdapter) Fill(ctx context.Context, ev Evaluator, selector, value string) error {
	return helperCall(ctx, ev, "setSelect", selector, value)
}

// defaultAdapters returns the built-in adapter registry. New variants extend
// the registry instead of widening detection reflection.
func defaultAdapters() map[Variant]Adapter {
	adapters := []Adapter{
		standardAdapter{},
		reactAdapter{},
		vueAdapter{},
		contentEditableAdapter{},
		wysiwygAdapter{},
		selectAdapter{},
	}
	registry := make(map[Variant]Adapter, len(adapters))
	for _, a := range adapters {
		registry[a.Variant()] = a
	}
	return registry
}
