package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuestionID_Stable(t *testing.T) {
	a := QuestionID("Why do you want to work here?")
	b := QuestionID("Why do you want to work here?")
	assert.Equal(t, a, b)
	assert.Len(t, a, 16)

	c := QuestionID("  Why do you want to work here?  ")
	assert.Equal(t, a, c, "surrounding whitespace must not change the id")

	d := QuestionID("What interests you about this role?")
	assert.NotEqual(t, a, d)
}

func TestNormalizeQuestionText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "Why Us?", "why us"},
		{"strips punctuation", "What's your (ideal) salary?!", "whats your ideal salary"},
		{"collapses whitespace", "tell  us \n about   yourself", "tell us about yourself"},
		{"empty", "", ""},
		{"unicode letters survive", "Déjà vu?", "déjà vu"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeQuestionText(tt.in))
		})
	}
}

func TestCategorizeQuestion(t *testing.T) {
	tests := []struct {
		text string
		want QuestionCategory
	}{
		{"Why do you want to join our team?", CategoryMotivation},
		{"Describe a time you led a project", CategoryExperience},
		{"Which programming languages are you proficient in?", CategorySkills},
		{"Are you authorized to work in the US?", CategoryGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, CategorizeQuestion(tt.text))
		})
	}
}

func TestNewQuestion(t *testing.T) {
	q := NewQuestion("  Why us?  ", "#q1", "label[for=q1]")
	assert.Equal(t, "Why us?", q.Text)
	assert.Equal(t, "why us", q.NormalizedText)
	assert.Equal(t, QuestionID("Why us?"), q.ID)
	assert.Equal(t, "#q1", q.InputSelector)
	assert.Equal(t, CategoryMotivation, q.Category)
	assert.False(t, q.DetectedAt.IsZero())
	assert.Empty(t, q.Answer)
}
