package bridge

import (
	"context"
	"fmt"

	"github.com/jonathan/apply-agent/internal/llm"
	"github.com/jonathan/apply-agent/internal/types"
)

// LocalAnswers wraps a Client so the answer messages are served by an
// in-process LLM service instead of the remote collaborator. Dropdown data
// and sync-out still go remote; useful when the backend's answer endpoint is
// unavailable or a local API key should be used directly.
type LocalAnswers struct {
	remote  Client
	answers *llm.AnswerService
}

// NewLocalAnswers layers local answer generation over a remote client.
// remote may be nil when only the answer messages are needed.
func NewLocalAnswers(remote Client, answers *llm.AnswerService) *LocalAnswers {
	return &LocalAnswers{remote: remote, answers: answers}
}

// DropdownData delegates to the remote collaborator.
func (l *LocalAnswers) DropdownData(ctx context.Context) (DropdownData, error) {
	if l.remote == nil {
		return DropdownData{}, fmt.Errorf("%s: no remote collaborator configured", MsgGetDropdownData)
	}
	return l.remote.DropdownData(ctx)
}

// SaveTrackedApplication delegates to the remote collaborator.
func (l *LocalAnswers) SaveTrackedApplication(ctx context.Context, req SaveRequest) error {
	if l.remote == nil {
		return fmt.Errorf("%s: no remote collaborator configured", MsgSaveTrackedApplication)
	}
	return l.remote.SaveTrackedApplication(ctx, req)
}

// AnswersBatch serves the batch message from the local LLM service.
func (l *LocalAnswers) AnswersBatch(ctx context.Context, req BatchAnswerRequest) ([]string, error) {
	job := types.JobPosting{DescriptionHTML: req.JobDescription}
	return l.answers.AnswersBatch(ctx, req.Questions, job)
}

// Answer serves the single-question fallback from the local LLM service.
func (l *LocalAnswers) Answer(ctx context.Context, req SingleAnswerRequest) (string, error) {
	job := types.JobPosting{DescriptionHTML: req.JobDescription}
	return l.answers.Answer(ctx, req.Question, job)
}

var _ Client = (*LocalAnswers)(nil)
var _ Client = (*HTTPClient)(nil)
