// Package questions detects application-form questions in a DOM snapshot and
// tracks them across rescans.
//
// Scanning is a pure function of the snapshot, so it runs identically from
// mutation-driven rescans and from tests. The Detector layers session state
// on top: debounced rescans, the deletion blacklist and the two-tier update
// notifications.
package questions

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Candidate is a form control with its resolved question text, before
// registration and deduplication.
type Candidate struct {
	Text          string
	InputSelector string
	LabelSelector string
}

// skippedInputTypes are input types that can never carry a free-text answer.
var skippedInputTypes = map[string]bool{
	"hidden": true, "submit": true, "button": true, "reset": true,
	"image": true, "file": true,
}

// Scan enumerates all form controls in the snapshot and resolves each one's
// question text through the label-resolution priority chain. Only candidates
// passing the acceptance filter are returned, in document order.
func Scan(doc *goquery.Document) []Candidate {
	var out []Candidate

	doc.Find("input, textarea, select").Each(func(_ int, s *goquery.Selection) {
		if goquery.NodeName(s) == "input" {
			if skippedInputTypes[strings.ToLower(s.AttrOr("type", "text"))] {
				return
			}
		}

		text, labelSelector := resolveQuestionText(doc, s)
		text = collapseWhitespace(text)
		if !Accept(text) {
			return
		}

		out = append(out, Candidate{
			Text:          text,
			InputSelector: selectorFor(s),
			LabelSelector: labelSelector,
		})
	})

	return out
}

// resolveQuestionText walks the label-resolution priority chain: explicit
// label[for] association, enclosing label (minus the control's own text),
// aria-label, placeholder (only when it reads like a question), nearest
// preceding sibling text block, enclosing fieldset legend.
func resolveQuestionText(doc *goquery.Document, s *goquery.Selection) (string, string) {
	if id, ok := s.Attr("id"); ok && id != "" {
		label := doc.Find(`label[for="` + id + `"]`).First()
		if text := strings.TrimSpace(label.Text()); text != "" {
			return text, `label[for="` + id + `"]`
		}
	}

	if enclosing := s.Closest("label"); enclosing.Length() > 0 {
		labelText := enclosing.Text()
		// Selects contribute their option text to the label; strip it.
		labelText = strings.Replace(labelText, s.Text(), "", 1)
		if text := strings.TrimSpace(labelText); text != "" {
			return text, selectorFor(enclosing)
		}
	}

	if aria := strings.TrimSpace(s.AttrOr("aria-label", "")); aria != "" {
		return aria, ""
	}

	if placeholder := strings.TrimSpace(s.AttrOr("placeholder", "")); strings.Contains(placeholder, "?") {
		return placeholder, ""
	}

	if text, sel := precedingTextBlock(s); text != "" {
		return text, sel
	}

	if fieldset := s.Closest("fieldset"); fieldset.Length() > 0 {
		legend := fieldset.Find("legend").First()
		if text := strings.TrimSpace(legend.Text()); text != "" {
			return text, selectorFor(legend)
		}
	}

	return "", ""
}

// textBlockTags are elements considered question-bearing text blocks when
// searching preceding siblings.
var textBlockTags = map[string]bool{
	"p": true, "div": true, "span": true, "label": true, "legend": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"strong": true, "b": true, "dt": true,
}

// precedingTextBlock finds the nearest preceding sibling with text content,
// climbing up to three ancestor levels when the control has no useful
// siblings of its own.
func precedingTextBlock(s *goquery.Selection) (string, string) {
	node := s
	for depth := 0; depth < 3; depth++ {
		siblings := node.PrevAll()
		var found *goquery.Selection
		siblings.EachWithBreak(func(_ int, sib *goquery.Selection) bool {
			if !textBlockTags[goquery.NodeName(sib)] {
				return true
			}
			if strings.TrimSpace(sib.Text()) == "" {
				return true
			}
			found = sib
			return false
		})
		if found != nil {
			return strings.TrimSpace(found.Text()), selectorFor(found)
		}
		node = node.Parent()
		if node.Length() == 0 {
			break
		}
	}
	return "", ""
}

// selectorFor builds a selector that re-identifies the element in the live
// page: id when present, name scoped by tag, otherwise an nth-child path
// from body.
func selectorFor(s *goquery.Selection) string {
	if id, ok := s.Attr("id"); ok && id != "" && !strings.ContainsAny(id, " \t\"") {
		return `[id="` + id + `"]`
	}
	tag := goquery.NodeName(s)
	if name, ok := s.Attr("name"); ok && name != "" && !strings.ContainsAny(name, " \t\"") {
		return tag + `[name="` + name + `"]`
	}
	return domPath(s)
}

// domPath builds a body-rooted nth-child chain for elements without usable
// id/name attributes.
func domPath(s *goquery.Selection) string {
	var parts []string
	for cur := s; cur.Length() > 0; cur = cur.Parent() {
		tag := goquery.NodeName(cur)
		if tag == "body" || tag == "html" || tag == "#document" {
			break
		}
		parts = append([]string{fmt.Sprintf("%s:nth-child(%d)", tag, cur.Index()+1)}, parts...)
	}
	if len(parts) == 0 {
		return goquery.NodeName(s)
	}
	return "body > " + strings.Join(parts, " > ")
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
