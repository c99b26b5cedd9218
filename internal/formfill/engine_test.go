package formfill

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeEvaluator emulates the helper script's behavior over an in-memory
// element table, so adapters and the engine run without a browser.
type fakeEvaluator struct {
	probes           map[string]*Probe
	values           map[string]string
	options          map[string][]string
	validationPolls  map[string]int // polls that still report an error
	readBackOverride map[string]string
	calls            []string
}

func newFakeEvaluator() *fakeEvaluator {
	return &fakeEvaluator{
		probes:           make(map[string]*Probe),
		values:           make(map[string]string),
		options:          make(map[string][]string),
		validationPolls:  make(map[string]int),
		readBackOverride: make(map[string]string),
	}
}

var helperCallRe = regexp.MustCompile(`window\.__applyAgentHelpers\.(\w+)\(`)
var quotedArgRe = regexp.MustCompile(`"(?:[^"\\]|\\.)*"`)

func (f *fakeEvaluator) Evaluate(_ context.Context, expr string, out any) error {
	if strings.Contains(expr, "window.__applyAgentHelpers = {") {
		f.calls = append(f.calls, "install")
		return nil
	}

	m := helperCallRe.FindStringSubmatch(expr)
	if m == nil {
		return fmt.Errorf("unexpected expression: %s", expr)
	}
	method := m[1]
	f.calls = append(f.calls, method)

	var args []string
	for _, quoted := range quotedArgRe.FindAllString(expr, -1) {
		arg, err := strconv.Unquote(quoted)
		if err != nil {
			return err
		}
		args = append(args, arg)
	}
	selector := ""
	if len(args) > 0 {
		selector = args[0]
	}

	setOut := func(v any) error {
		if out == nil {
			return nil
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}
		return json.Unmarshal(raw, out)
	}

	switch method {
	case "probe":
		return setOut(f.probes[selector])
	case "scrollIntoView":
		return setOut(f.probes[selector] != nil)
	case "setStandard", "setReact", "setVue", "setContentEditable", "setWysiwyg":
		if f.probes[selector] == nil {
			return setOut("no element")
		}
		f.values[selector] = args[1]
		return setOut("")
	case "setSelect":
		if f.probes[selector] == nil {
			return setOut("no element")
		}
		needle := strings.ToLower(args[1])
		for _, option := range f.options[selector] {
			if strings.Contains(strings.ToLower(option), needle) {
				f.values[selector] = option
				return setOut("")
			}
		}
		return setOut("no matching option")
	case "dispatchEvent":
		return setOut(f.probes[selector] != nil)
	case "hasValidationError":
		if f.validationPolls[selector] > 0 {
			f.validationPolls[selector]--
			return setOut(true)
		}
		return setOut(false)
	case "readBack":
		if f.probes[selector] == nil {
			return setOut(nil)
		}
		if override, ok := f.readBackOverride[selector]; ok {
			return setOut(override)
		}
		return setOut(f.values[selector])
	default:
		return fmt.Errorf("unknown helper method %s", method)
	}
}

func (f *fakeEvaluator) callCount(method string) int {
	n := 0
	for _, c := range f.calls {
		if c == method {
			n++
		}
	}
	return n
}

func newTestEngine(f *fakeEvaluator) *Engine {
	return NewEngine(zap.NewNop(), f,
		WithDelays(0, 0),
		WithValidationWait(0, 0),
	)
}

func TestClassifyProbe_Priority(t *testing.T) {
	tests := []struct {
		name  string
		probe Probe
		want  Variant
	}{
		{"wysiwyg beats contenteditable", Probe{EditorSignature: "quill", ContentEditable: true}, VariantWYSIWYG},
		{"contenteditable beats react", Probe{ContentEditable: true, HasReactKeys: true}, VariantContentEditable},
		{"select beats react", Probe{Tag: "select", HasReactKeys: true}, VariantSelect},
		{"react beats vue", Probe{Tag: "input", HasReactKeys: true, HasVueInstance: true}, VariantReact},
		{"vue", Probe{Tag: "input", HasVueInstance: true}, VariantVue},
		{"standard", Probe{Tag: "textarea"}, VariantStandard},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyProbe(tt.probe))
		})
	}
}

func TestFill_StandardInput(t *testing.T) {
	f := newFakeEvaluator()
	f.probes["#msg"] = &Probe{Tag: "input"}
	engine := newTestEngine(f)

	result := engine.Fill(context.Background(), "#msg", "hello world")

	require.True(t, result.Success, "error: %s", result.Error)
	assert.Equal(t, VariantStandard, result.Variant)
	assert.Equal(t, "hello world", f.values["#msg"])
	assert.Equal(t, 1, f.callCount("setStandard"))
	// Full event sequence fired around the fill.
	assert.GreaterOrEqual(t, f.callCount("dispatchEvent"), 8)
}

func TestFill_ReactUsesNativeSetterPath(t *testing.T) {
	f := newFakeEvaluator()
	f.probes["#controlled"] = &Probe{Tag: "input", HasReactKeys: true}
	engine := newTestEngine(f)

	result := engine.Fill(context.Background(), "#controlled", "hello world")

	require.True(t, result.Success, "error: %s", result.Error)
	assert.Equal(t, VariantReact, result.Variant)
	assert.Equal(t, 1, f.callCount("setReact"))
	assert.Zero(t, f.callCount("setStandard"))
}

func TestFill_SelectAdapter(t *testing.T) {
	f := newFakeEvaluator()
	f.probes["#city"] = &Probe{Tag: "select"}
	f.options["#city"] = []string{"New York", "San Francisco"}
	engine := newTestEngine(f)

	t.Run("case-insensitive substring match", func(t *testing.T) {
		result := engine.Fill(context.Background(), "#city", "francisco")
		require.True(t, result.Success, "error: %s", result.Error)
		assert.Equal(t, "San Francisco", f.values["#city"])
	})

	t.Run("no matching option fails", func(t *testing.T) {
		result := engine.Fill(context.Background(), "#city", "Boston")
		assert.False(t, result.Success)
		assert.Contains(t, result.Error, "no matching option")
	})
}

func TestFill_MissingElement(t *testing.T) {
	f := newFakeEvaluator()
	engine := newTestEngine(f)

	result := engine.Fill(context.Background(), "#ghost", "value")
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "no element")
}

func TestFill_VerificationTolerance(t *testing.T) {
	f := newFakeEvaluator()
	f.probes["#msg"] = &Probe{Tag: "textarea"}
	engine := newTestEngine(f)

	t.Run("page normalization within 80 percent passes", func(t *testing.T) {
		f.readBackOverride["#msg"] = "hello wor" // 9 of 11 chars
		result := engine.Fill(context.Background(), "#msg", "hello world")
		assert.True(t, result.Success, "error: %s", result.Error)
	})

	t.Run("below 80 percent fails", func(t *testing.T) {
		f.readBackOverride["#msg"] = "hel"
		result := engine.Fill(context.Background(), "#msg", "hello world")
		assert.False(t, result.Success)
		assert.Contains(t, result.Error, "value verification failed")
	})
}

func TestFill_ValidationWaitPolls(t *testing.T) {
	f := newFakeEvaluator()
	f.probes["#msg"] = &Probe{Tag: "input"}
	engine := NewEngine(zap.NewNop(), f,
		WithDelays(0, 0),
		WithValidationWait(1, 1000000000),
	)
	f.validationPolls["#msg"] = 3

	result := engine.Fill(context.Background(), "#msg", "hello world")
	require.True(t, result.Success, "error: %s", result.Error)
	assert.GreaterOrEqual(t, f.callCount("hasValidationError"), 4,
		"poll until the error indicator disappears")
}

func TestDetectVariant_MissingElementErrors(t *testing.T) {
	f := newFakeEvaluator()
	engine := newTestEngine(f)

	_, err := engine.DetectVariant(context.Background(), "#ghost")
	assert.Error(t, err)
}

func TestFill_ContentEditableAndWysiwyg(t *testing.T) {
	f := newFakeEvaluator()
	f.probes["#bio"] = &Probe{Tag: "div", ContentEditable: true}
	f.probes["#rich"] = &Probe{Tag: "div", EditorSignature: "tinymce"}
	engine := newTestEngine(f)

	result := engine.Fill(context.Background(), "#bio", "long form answer")
	require.True(t, result.Success, "error: %s", result.Error)
	assert.Equal(t, 1, f.callCount("setContentEditable"))

	result = engine.Fill(context.Background(), "#rich", "rich text answer")
	require.True(t, result.Success, "error: %s", result.Error)
	assert.Equal(t, 1, f.callCount("setWysiwyg"))
}
