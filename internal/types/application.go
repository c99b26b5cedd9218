package types

import "github.com/google/uuid"

// Step is the logical stage of an application being tracked.
type Step string

// Application steps, in order of progression.
const (
	StepJobPosting  Step = "job_posting"
	StepApplication Step = "application"
	StepComplete    Step = "complete"
)

// DefaultAnswerAdmissionThreshold is the minimum answer length, in bytes,
// required for an answer to be promoted into the persisted answer set. The
// value is carried over from the original system for behavior compatibility.
const DefaultAnswerAdmissionThreshold = 100

// ApplicationRecord is the aggregate state of one tracking session: the
// extracted posting, the user's company/CV selection, the current step and
// the admitted answers. It is owned by a single session and not safe for
// concurrent mutation.
type ApplicationRecord struct {
	SessionID   string     `json:"session_id"`
	Job         JobPosting `json:"job"`
	URL         string     `json:"url"`
	CompanyID   string     `json:"company_id,omitempty"`
	CVID        string     `json:"cv_id,omitempty"`
	CurrentStep Step       `json:"current_step"`

	// UserAnswers maps raw question text to answers that met the admission
	// threshold. Answers below the threshold live only on the Question.
	UserAnswers map[string]string `json:"user_answers"`

	// AnswerThreshold is the admission threshold in effect for this record.
	AnswerThreshold int `json:"-"`
}

// NewApplicationRecord creates an empty record at the job_posting step.
func NewApplicationRecord() *ApplicationRecord {
	return &ApplicationRecord{
		SessionID:       uuid.NewString(),
		CurrentStep:     StepJobPosting,
		UserAnswers:     make(map[string]string),
		AnswerThreshold: DefaultAnswerAdmissionThreshold,
	}
}

// SetJob replaces the posting snapshot. The previous posting is superseded,
// not merged; merging across extraction passes happens upstream.
func (r *ApplicationRecord) SetJob(job JobPosting, url string) {
	r.Job = job
	if url != "" {
		r.URL = url
	}
}

// SetStep records a step transition. Steps only move forward; a regression
// (e.g. SPA navigation back to the posting) is ignored.
func (r *ApplicationRecord) SetStep(step Step) {
	order := map[Step]int{StepJobPosting: 0, StepApplication: 1, StepComplete: 2}
	if order[step] >= order[r.CurrentStep] {
		r.CurrentStep = step
	}
}

// ApplyAnswer runs the admission rule for a question's current answer:
// answers at or above the threshold are written into UserAnswers, answers
// below it are removed if previously present. This holds the invariant
// len(answer) >= threshold <=> key present.
func (r *ApplicationRecord) ApplyAnswer(questionText, answer string) {
	threshold := r.AnswerThreshold
	if threshold <= 0 {
		threshold = DefaultAnswerAdmissionThreshold
	}
	if len(answer) >= threshold {
		r.UserAnswers[questionText] = answer
		return
	}
	delete(r.UserAnswers, questionText)
}

// RemoveAnswer purges a question's entry regardless of length. Used when the
// question itself is deleted.
func (r *ApplicationRecord) RemoveAnswer(questionText string) {
	delete(r.UserAnswers, questionText)
}

// RenameQuestion migrates an admitted answer to a new question text key.
func (r *ApplicationRecord) RenameQuestion(oldText, newText string) {
	if answer, ok := r.UserAnswers[oldText]; ok {
		delete(r.UserAnswers, oldText)
		r.UserAnswers[newText] = answer
	}
}
