// Package formfill sets values on heterogeneous, framework-controlled form
// inputs and fires the event sequences those frameworks expect.
//
// The controlling implementation of an input (plain DOM, React, Vue, native
// select, contentEditable, WYSIWYG editor) is detected by an explicit probe
// and mapped onto a small closed set of fill adapters sharing one interface.
// Framework internals are inherently unstable; all of that fragility is
// isolated inside the adapters' JavaScript so breakage stays local to one
// variant.
package formfill

// Variant identifies the controlling input implementation.
type Variant string

// Input variants, most specific first. Detection follows this priority.
const (
	VariantWYSIWYG         Variant = "wysiwyg"
	VariantContentEditable Variant = "contenteditable"
	VariantSelect          Variant = "select"
	VariantReact           Variant = "react"
	VariantVue             Variant = "vue"
	VariantStandard        Variant = "standard"
)

// Probe is the raw capability snapshot of an element, produced by the
// injected probe script.
type Probe struct {
	Tag             string `json:"tag"`
	ContentEditable bool   `json:"contentEditable"`
	EditorSignature string `json:"editorSignature"`
	HasReactKeys    bool   `json:"hasReactKeys"`
	HasVueInstance  bool   `json:"hasVueInstance"`
}

// ClassifyProbe maps a probe onto a variant. Priority order is fixed:
// a WYSIWYG signature wins over bare contentEditable, which wins over the
// element tag, which wins over framework instrumentation.
func ClassifyProbe(p Probe) Variant {
	switch {
	case p.EditorSignature != "":
		return VariantWYSIWYG
	case p.ContentEditable:
		return VariantContentEditable
	case p.Tag == "select":
		return VariantSelect
	case p.HasReactKeys:
		return VariantReact
	case p.HasVueInstance:
		return VariantVue
	default:
		return VariantStandard
	}
}
