package formfill

import (
	"context"
	_ "embed"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

//go:embed js/helpers.js
var helpersScript string

// Timing and verification defaults, carried over from the original system
// for behavior compatibility.
const (
	DefaultEventDelay      = 25 * time.Millisecond
	DefaultSettleDelay     = 100 * time.Millisecond
	DefaultValidationStep  = 50 * time.Millisecond
	DefaultValidationCap   = 500 * time.Millisecond
	DefaultVerifyRatio     = 0.8
	validationMaxIteration = 50
)

// Result is the tagged outcome of one fill attempt. Fill never panics or
// returns a Go error for per-element problems; callers aggregate Results into
// a batch report.
type Result struct {
	Selector string  `json:"selector"`
	Variant  Variant `json:"variant"`
	Success  bool    `json:"success"`
	Error    string  `json:"error,omitempty"`
}

// Engine detects input variants and performs fills through the adapter
// registry. It holds no per-page state beyond the registry and tunables.
type Engine struct {
	log       *zap.Logger
	evaluator Evaluator
	registry  map[Variant]Adapter

	eventDelay     time.Duration
	settleDelay    time.Duration
	validationStep time.Duration
	validationCap  time.Duration
	verifyRatio    float64
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithDelays overrides the inter-event and post-fill settle delays. Tests
// pass zeros.
func WithDelays(event, settle time.Duration) EngineOption {
	return func(e *Engine) {
		e.eventDelay = event
		e.settleDelay = settle
	}
}

// WithValidationWait overrides the validation polling step and cap.
func WithValidationWait(step, overall time.Duration) EngineOption {
	return func(e *Engine) {
		e.validationStep = step
		e.validationCap = overall
	}
}

// WithVerifyRatio overrides the read-back length ratio required for success.
func WithVerifyRatio(ratio float64) EngineOption {
	return func(e *Engine) {
		if ratio > 0 && ratio <= 1 {
			e.verifyRatio = ratio
		}
	}
}

// NewEngine creates a fill engine over an evaluator.
func NewEngine(log *zap.Logger, evaluator Evaluator, opts ...EngineOption) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	e := &Engine{
		log:            log,
		evaluator:      evaluator,
		registry:       defaultAdapters(),
		eventDelay:     DefaultEventDelay,
		settleDelay:    DefaultSettleDelay,
		validationStep: DefaultValidationStep,
		validationCap:  DefaultValidationCap,
		verifyRatio:    DefaultVerifyRatio,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EnsureHelpers installs the helper script into the page. Idempotent; the
// script guards against double installation itself.
func (e *Engine) EnsureHelpers(ctx context.Context) error {
	return e.evaluator.Evaluate(ctx, helpersScript, nil)
}

// DetectVariant probes the element and classifies its controlling
// implementation. Returns an error only when the element does not exist or
// the page is unreachable.
func (e *Engine) DetectVariant(ctx context.Context, selector string) (Variant, error) {
	if err := e.EnsureHelpers(ctx); err != nil {
		return "", fmt.Errorf("install helpers: %w", err)
	}
	var probe *Probe
	expr := fmt.Sprintf("window.__applyAgentHelpers.probe(%s)", strconv.Quote(selector))
	if err := e.evaluator.Evaluate(ctx, expr, &probe); err != nil {
		return "", fmt.Errorf("probe: %w", err)
	}
	if probe == nil {
		return "", fmt.Errorf("no element matches %s", selector)
	}
	return ClassifyProbe(*probe), nil
}

// ScrollIntoView centers the element in the viewport.
func (e *Engine) ScrollIntoView(ctx context.Context, selector string) error {
	if err := e.EnsureHelpers(ctx); err != nil {
		return err
	}
	expr := fmt.Sprintf("window.__applyAgentHelpers.scrollIntoView(%s)", strconv.Quote(selector))
	return e.evaluator.Evaluate(ctx, expr, nil)
}

// Fill detects the element's variant, runs its adapter, fires the post-fill
// event sequence, waits for validation to settle and verifies the read-back
// value. Every failure mode is reported through the Result, never by panic.
func (e *Engine) Fill(ctx context.Context, selector, value string) Result {
	result := Result{Selector: selector}

	variant, err := e.DetectVariant(ctx, selector)
	if err != nil {
		result.Error = "no element: " + err.Error()
		return result
	}
	result.Variant = variant

	adapter, ok := e.registry[variant]
	if !ok {
		adapter = e.registry[VariantStandard]
	}

	if err := adapter.Fill(ctx, e.evaluator, selector, value); err != nil {
		result.Error = "adapter: " + err.Error()
		return result
	}

	if err := e.triggerEventSequence(ctx, selector, variant, value); err != nil {
		result.Error = "event sequence: " + err.Error()
		return result
	}

	if err := e.sleep(ctx, e.settleDelay); err != nil {
		result.Error = err.Error()
		return result
	}

	if err := e.waitValidation(ctx, selector); err != nil {
		result.Error = "validation: " + err.Error()
		return result
	}

	if err := e.verify(ctx, selector, value); err != nil {
		result.Error = err.Error()
		return result
	}

	result.Success = true
	e.log.Debug("fill verified",
		zap.String("selector", selector),
		zap.String("variant", string(variant)))
	return result
}

// waitValidation polls for the disappearance of error indicators, bounded by
// both an iteration limit and an overall cap. A persistent indicator is not
// fatal by itself; verification decides success.
func (e *Engine) waitValidation(ctx context.Context, selector string) error {
	expr := fmt.Sprintf("window.__applyAgentHelpers.hasValidationError(%s)", strconv.Quote(selector))
	deadline := time.Now().Add(e.validationCap)

	for i := 0; i < validationMaxIteration; i++ {
		var hasError bool
		if err := e.evaluator.Evaluate(ctx, expr, &hasError); err != nil {
			return err
		}
		if !hasError {
			return nil
		}
		if time.Now().After(deadline) {
			break
		}
		if err := e.sleep(ctx, e.validationStep); err != nil {
			return err
		}
		if e.validationStep <= 0 {
			// Zero-delay configurations must still terminate.
			break
		}
	}
	e.log.Debug("validation indicator persisted", zap.String("selector", selector))
	return nil
}

// verify reads the element's effective content back and requires its trimmed
// length to reach the configured ratio of the intended value, tolerating
// formatting normalization by the page.
func (e *Engine) verify(ctx context.Context, selector, value string) error {
	var observed *string
	expr := fmt.Sprintf("window.__applyAgentHelpers.readBack(%s)", strconv.Quote(selector))
	if err := e.evaluator.Evaluate(ctx, expr, &observed); err != nil {
		return fmt.Errorf("read back: %w", err)
	}
	if observed == nil {
		return fmt.Errorf("no element: removed before verification")
	}

	intended := strings.TrimSpace(value)
	got := strings.TrimSpace(*observed)
	if intended == "" {
		return nil
	}
	if got == intended {
		return nil
	}
	if float64(len(got)) >= e.verifyRatio*float64(len(intended)) {
		return nil
	}
	return fmt.Errorf("value verification failed: got %d of %d chars", len(got), len(intended))
}
