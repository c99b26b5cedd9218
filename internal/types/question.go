package types

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
	"time"
)

// QuestionCategory is a coarse classification of a detected question.
type QuestionCategory string

// Question categories inferred from the question text.
const (
	CategoryMotivation QuestionCategory = "motivation"
	CategoryExperience QuestionCategory = "experience"
	CategorySkills     QuestionCategory = "skills"
	CategoryGeneral    QuestionCategory = "general"
)

// Question represents a detected application-form prompt together with the
// input it controls. The answer is the only mutable field; everything else is
// fixed at detection time.
type Question struct {
	ID             string           `json:"id"`
	Text           string           `json:"text"`
	NormalizedText string           `json:"normalized_text"`
	InputSelector  string           `json:"input_selector"`
	LabelSelector  string           `json:"label_selector,omitempty"`
	Category       QuestionCategory `json:"category"`
	DetectedAt     time.Time        `json:"detected_at"`
	Answer         string           `json:"answer"`
}

// QuestionID derives a stable identifier from raw question text. The same
// text always hashes to the same id across redetection scans; the collision
// risk of the truncated digest is accepted.
func QuestionID(text string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(text)))
	return hex.EncodeToString(sum[:])[:16]
}

var (
	punctuationRe = regexp.MustCompile(`[^\p{L}\p{N}\s]`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
)

// NormalizeQuestionText lower-cases, strips punctuation and collapses
// whitespace. The normalized form is the key for the deletion blacklist, so
// semantically identical prompts with different punctuation collapse to one
// entry.
func NormalizeQuestionText(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	text = punctuationRe.ReplaceAllString(text, "")
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

var categoryKeywords = map[QuestionCategory][]string{
	CategoryMotivation: {"why", "motivat", "interest", "passion", "excite"},
	CategoryExperience: {"experience", "example", "describe a time", "tell us about", "worked on", "project"},
	CategorySkills:     {"skill", "qualification", "proficien", "technolog", "tool", "language"},
}

// CategorizeQuestion assigns a coarse category by keyword containment over
// the lower-cased text. CategoryGeneral is the fallback.
func CategorizeQuestion(text string) QuestionCategory {
	lower := strings.ToLower(text)
	for _, cat := range []QuestionCategory{CategoryMotivation, CategoryExperience, CategorySkills} {
		for _, kw := range categoryKeywords[cat] {
			if strings.Contains(lower, kw) {
				return cat
			}
		}
	}
	return CategoryGeneral
}

// NewQuestion builds a Question from detected text and the selector of its
// input element.
func NewQuestion(text, inputSelector, labelSelector string) Question {
	return Question{
		ID:             QuestionID(text),
		Text:           strings.TrimSpace(text),
		NormalizedText: NormalizeQuestionText(text),
		InputSelector:  inputSelector,
		LabelSelector:  labelSelector,
		Category:       CategorizeQuestion(text),
		DetectedAt:     time.Now().UTC(),
	}
}
