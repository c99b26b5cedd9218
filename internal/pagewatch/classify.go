// Package pagewatch detects logical page-type transitions in single-page
// applications: job posting, application form, application complete.
//
// Classification is a pure function of the current URL and body text, so it
// can run from observer callbacks and from tests without a live browser. The
// Monitor wraps it with a DOM change notification source, a settle delay and
// type-change-only escalation.
package pagewatch

import (
	"net/url"
	"strings"

	"github.com/jonathan/apply-agent/internal/types"
)

// completionPhrases in the page body mark a finished application regardless
// of what the URL says.
var completionPhrases = []string{
	"application submitted",
	"thank you for applying",
	"application received",
	"successfully applied",
	"your application has been",
	"we have received your application",
}

// platformURLRules map host + URL substring onto a page type. Rules are
// ordered: within a platform, more specific paths come first.
var platformURLRules = []struct {
	host     string
	contains string
	pageType types.PageType
}{
	{"linkedin.com", "/jobs/application/", types.PageApplicationComplete},
	{"linkedin.com", "/apply", types.PageApplicationForm},
	{"linkedin.com", "/jobs/view/", types.PageJobPosting},
	{"indeed.com", "/viewjob", types.PageJobPosting},
	{"indeed.com", "apply", types.PageApplicationForm},
	{"greenhouse.io", "/confirmation", types.PageApplicationComplete},
	{"greenhouse.io", "#app", types.PageApplicationForm},
	{"greenhouse.io", "/jobs/", types.PageJobPosting},
	{"lever.co", "/thanks", types.PageApplicationComplete},
	{"lever.co", "/apply", types.PageApplicationForm},
	{"myworkdayjobs.com", "/apply", types.PageApplicationForm},
	{"myworkdayjobs.com", "/job/", types.PageJobPosting},
	{"smartrecruiters.com", "/oneclick-ui", types.PageApplicationForm},
	{"smartrecruiters.com", "/publication", types.PageJobPosting},
}

// applyIntentKeywords mark elements whose activation suggests the user is
// starting or advancing an application. Exported for the injected observer
// script and shared with click monitoring.
var applyIntentKeywords = []string{
	"apply", "easy apply", "apply now", "submit application", "send application",
}

// ApplyIntentKeywords returns the keyword set used for apply-intent click
// detection.
func ApplyIntentKeywords() []string {
	out := make([]string, len(applyIntentKeywords))
	copy(out, applyIntentKeywords)
	return out
}

// Classify maps the current URL and visible body text onto a page type.
// Completion phrases in the body override URL-based rules, platform-specific
// URL rules come next, and a generic substring fallback applies when no
// platform rule matches.
func Classify(pageURL, bodyText string) types.PageType {
	lowerBody := strings.ToLower(bodyText)
	for _, phrase := range completionPhrases {
		if strings.Contains(lowerBody, phrase) {
			return types.PageApplicationComplete
		}
	}

	parsed, err := url.Parse(pageURL)
	if err != nil {
		return types.PageUnknown
	}
	host := strings.ToLower(parsed.Host)
	target := strings.ToLower(parsed.Path)
	if parsed.RawQuery != "" {
		target += "?" + strings.ToLower(parsed.RawQuery)
	}
	if parsed.Fragment != "" {
		target += "#" + strings.ToLower(parsed.Fragment)
	}

	for _, rule := range platformURLRules {
		if strings.Contains(host, rule.host) && strings.Contains(target, rule.contains) {
			return rule.pageType
		}
	}

	return classifyGeneric(target, lowerBody)
}

// classifyGeneric applies the platform heuristics by substring match when no
// platform rule hit.
func classifyGeneric(target, lowerBody string) types.PageType {
	if strings.Contains(target, "apply") || strings.Contains(target, "application") {
		return types.PageApplicationForm
	}
	if strings.Contains(target, "/job") || strings.Contains(target, "/career") ||
		strings.Contains(target, "/vacanc") || strings.Contains(target, "/position") {
		return types.PageJobPosting
	}

	if strings.Contains(lowerBody, "job description") ||
		(strings.Contains(lowerBody, "responsibilities") && strings.Contains(lowerBody, "apply")) {
		return types.PageJobPosting
	}
	return types.PageUnknown
}
