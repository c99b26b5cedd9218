package questions

import (
	"regexp"
	"strings"

	"github.com/jonathan/apply-agent/internal/types"
)

// Question text length bounds, in bytes.
const (
	MinQuestionLength = 10
	MaxQuestionLength = 500
)

// genericFieldBlocklist holds normalized labels that are plain contact fields
// rather than questions.
var genericFieldBlocklist = map[string]bool{
	"name": true, "full name": true, "first name": true, "last name": true,
	"email": true, "email address": true, "e mail": true,
	"phone": true, "phone number": true, "telephone": true, "mobile": true,
	"password": true, "confirm password": true,
	"address": true, "street address": true, "city": true, "state": true,
	"zip": true, "zip code": true, "postal code": true, "country": true,
	"submit": true, "search": true, "username": true,
	"linkedin profile": true, "website": true, "portfolio url": true,
	"resume": true, "cv": true, "upload resume": true, "date of birth": true,
}

var questionWordPattern = regexp.MustCompile(`(?i)\b(why|how|what|when|where|which|who|describe|tell|explain|share)\b`)

// domainKeywords are application-domain signals that make a statement-shaped
// label a question worth tracking. Stems are used where inflection varies.
var domainKeywords = []string{
	"experience", "qualification", "motivat", "example", "requirement",
	"skill", "salary", "compensation", "notice period", "relocat", "sponsor",
	"authoriz", "visa", "start date", "availability", "available",
	"cover letter", "strength", "weakness", "achievement", "challenge",
	"interest", "expectation", "proficien",
}

// Accept applies the candidate acceptance filter: length bounds, the generic
// field blocklist, and at least one question signal (a question mark, a
// question word, or a domain keyword).
func Accept(text string) bool {
	text = strings.TrimSpace(text)
	if len(text) < MinQuestionLength || len(text) > MaxQuestionLength {
		return false
	}

	if genericFieldBlocklist[types.NormalizeQuestionText(text)] {
		return false
	}

	if strings.Contains(text, "?") {
		return true
	}
	if questionWordPattern.MatchString(text) {
		return true
	}
	lower := strings.ToLower(text)
	for _, kw := range domainKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
