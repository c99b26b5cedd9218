package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/apply-agent/internal/types"
)

// extractStructured walks every JSON-LD block in the document, recursively
// collects objects whose declared @type contains "jobposting" and maps the
// first match onto a JobPosting. Malformed blocks are skipped.
func extractStructured(doc *goquery.Document) types.JobPosting {
	var posting map[string]any

	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var data any
		if err := json.Unmarshal([]byte(s.Text()), &data); err != nil {
			return true
		}
		if found := findJobPostingObject(data); found != nil {
			posting = found
			return false
		}
		return true
	})

	if posting == nil {
		return types.JobPosting{}
	}
	return mapStructuredPosting(posting)
}

// findJobPostingObject recursively searches arbitrary JSON for the first
// object typed as a JobPosting. @graph containers and nested values are all
// walked.
func findJobPostingObject(data any) map[string]any {
	switch v := data.(type) {
	case map[string]any:
		if typeContains(v["@type"], "jobposting") {
			return v
		}
		for _, child := range v {
			if found := findJobPostingObject(child); found != nil {
				return found
			}
		}
	case []any:
		for _, item := range v {
			if found := findJobPostingObject(item); found != nil {
				return found
			}
		}
	}
	return nil
}

// typeContains matches a JSON-LD @type value, which may be a string or an
// array of strings, against a lower-case needle.
func typeContains(typeVal any, needle string) bool {
	switch t := typeVal.(type) {
	case string:
		return strings.Contains(strings.ToLower(t), needle)
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && strings.Contains(strings.ToLower(s), needle) {
				return true
			}
		}
	}
	return false
}

func mapStructuredPosting(obj map[string]any) types.JobPosting {
	return types.JobPosting{
		Title:           stringField(obj, "title"),
		CompanyName:     structuredCompany(obj["hiringOrganization"]),
		Location:        structuredLocation(obj["jobLocation"]),
		DescriptionHTML: stringField(obj, "description"),
		Salary:          structuredSalary(obj["baseSalary"]),
		EmploymentType:  structuredEmploymentType(obj["employmentType"]),
	}
}

func stringField(obj map[string]any, key string) string {
	if s, ok := obj[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func structuredCompany(v any) string {
	switch org := v.(type) {
	case string:
		return strings.TrimSpace(org)
	case map[string]any:
		return stringField(org, "name")
	}
	return ""
}

func structuredLocation(v any) string {
	switch loc := v.(type) {
	case string:
		return strings.TrimSpace(loc)
	case []any:
		for _, item := range loc {
			if s := structuredLocation(item); s != "" {
				return s
			}
		}
	case map[string]any:
		if addr, ok := loc["address"].(map[string]any); ok {
			parts := make([]string, 0, 3)
			for _, key := range []string{"addressLocality", "addressRegion", "addressCountry"} {
				if s := stringField(addr, key); s != "" {
					parts = append(parts, s)
				}
			}
			if len(parts) > 0 {
				return strings.Join(parts, ", ")
			}
		}
		return stringField(loc, "name")
	}
	return ""
}

func structuredSalary(v any) string {
	salary, ok := v.(map[string]any)
	if !ok {
		if s, isStr := v.(string); isStr {
			return strings.TrimSpace(s)
		}
		return ""
	}

	currency := stringField(salary, "currency")
	value, ok := salary["value"].(map[string]any)
	if !ok {
		return currency
	}

	format := func(key string) string {
		switch n := value[key].(type) {
		case float64:
			if n == float64(int64(n)) {
				return fmt.Sprintf("%d", int64(n))
			}
			return fmt.Sprintf("%g", n)
		case string:
			return n
		}
		return ""
	}

	minVal, maxVal := format("minValue"), format("maxValue")
	single := format("value")

	var amount string
	switch {
	case minVal != "" && maxVal != "":
		amount = minVal + " - " + maxVal
	case single != "":
		amount = single
	case minVal != "":
		amount = minVal
	case maxVal != "":
		amount = maxVal
	default:
		return currency
	}

	if currency != "" {
		amount += " " + currency
	}
	if unit := stringField(value, "unitText"); unit != "" {
		amount += " per " + strings.ToLower(unit)
	}
	return amount
}

func structuredEmploymentType(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				parts = append(parts, strings.TrimSpace(s))
			}
		}
		return strings.Join(parts, ", ")
	}
	return ""
}
