package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/apply-agent/internal/bridge"
	"github.com/jonathan/apply-agent/internal/observability"
	"github.com/jonathan/apply-agent/internal/types"
)

// ErrAlreadyRunning is returned when an auto-fill invocation overlaps a
// running one. Exclusivity is per session.
var ErrAlreadyRunning = errors.New("auto-fill already running")

// Outcome tags one question's result in the report.
type Outcome string

// Per-question outcomes.
const (
	OutcomeFilled  Outcome = "filled"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// QuestionResult is one entry of the completion report.
type QuestionResult struct {
	QuestionID string  `json:"question_id"`
	Question   string  `json:"question"`
	Outcome    Outcome `json:"outcome"`
	Detail     string  `json:"detail,omitempty"`
}

// Report is the completion report of one auto-fill run.
type Report struct {
	Filled    int              `json:"filled"`
	Skipped   int              `json:"skipped"`
	Failed    int              `json:"failed"`
	Cancelled bool             `json:"cancelled"`
	Summary   string           `json:"summary"`
	Results   []QuestionResult `json:"results"`
}

// AutoFill answers and fills every unanswered question. Preconditions
// (questions present, resolvable identity, successful batch request) fail
// the invocation as a unit; per-question fill failures only mark their
// entry. Cancelling ctx stops the loop at the next checkpoint and reports
// cancelled.
func (s *Session) AutoFill(ctx context.Context) (*Report, error) {
	if !s.fillSem.TryAcquire(1) {
		return nil, ErrAlreadyRunning
	}
	defer s.fillSem.Release(1)

	all := s.detector.Questions()
	if len(all) == 0 {
		return nil, fmt.Errorf("no questions detected")
	}

	userID, err := bridge.UserIDFromToken(s.token)
	if err != nil {
		return nil, fmt.Errorf("no authenticated user: %w", err)
	}

	report := &Report{}

	// Any existing answer excludes a question, regardless of length.
	var candidates []types.Question
	for _, q := range all {
		if strings.TrimSpace(q.Answer) != "" {
			s.skip(report, q, "already answered")
			continue
		}
		candidates = append(candidates, q)
	}
	if len(candidates) == 0 {
		report.Summary = summarize(report, len(all))
		return report, nil
	}

	texts := make([]string, len(candidates))
	for i, q := range candidates {
		texts[i] = q.Text
	}
	answers, err := s.bridge.AnswersBatch(ctx, bridge.BatchAnswerRequest{
		UserID:         userID,
		Questions:      texts,
		JobDescription: s.Record().Job.DescriptionHTML,
	})
	if err != nil {
		return nil, fmt.Errorf("batch answer request: %w", err)
	}

	for i, q := range candidates {
		if ctx.Err() != nil {
			report.Cancelled = true
			break
		}

		answer := strings.TrimSpace(answers[i])
		if answer == "" {
			s.skip(report, q, "no answer generated")
			continue
		}

		if err := s.filler.ScrollIntoView(ctx, q.InputSelector); err != nil {
			s.log.Debug("scroll failed", zap.String("selector", q.InputSelector), zap.Error(err))
		}

		result := s.filler.Fill(ctx, q.InputSelector, answer)
		if result.Success {
			report.Filled++
			report.Results = append(report.Results, QuestionResult{
				QuestionID: q.ID,
				Question:   q.Text,
				Outcome:    OutcomeFilled,
			})
			// Promotion rule runs through the sink path.
			s.detector.SetAnswerByID(q.ID, answer)
			observability.FillsTotal.WithLabelValues(string(OutcomeFilled)).Inc()
		} else {
			report.Failed++
			report.Results = append(report.Results, QuestionResult{
				QuestionID: q.ID,
				Question:   q.Text,
				Outcome:    OutcomeFailed,
				Detail:     result.Error,
			})
			observability.FillsTotal.WithLabelValues(string(OutcomeFailed)).Inc()
			s.log.Warn("fill failed",
				zap.String("question", q.Text),
				zap.String("error", result.Error))
		}

		if i < len(candidates)-1 {
			if !s.pause(ctx) {
				report.Cancelled = true
				break
			}
		}
	}

	report.Summary = summarize(report, len(all))
	s.log.Info("auto-fill finished", zap.String("summary", report.Summary),
		zap.Bool("cancelled", report.Cancelled))
	return report, nil
}

func (s *Session) skip(report *Report, q types.Question, detail string) {
	report.Skipped++
	report.Results = append(report.Results, QuestionResult{
		QuestionID: q.ID,
		Question:   q.Text,
		Outcome:    OutcomeSkipped,
		Detail:     detail,
	})
	observability.FillsTotal.WithLabelValues(string(OutcomeSkipped)).Inc()
}

// pause waits the inter-fill delay, reporting false on cancellation.
func (s *Session) pause(ctx context.Context) bool {
	if s.interFillDelay <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(s.interFillDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func summarize(r *Report, total int) string {
	return fmt.Sprintf("filled %d, skipped %d, failed %d of %d questions",
		r.Filled, r.Skipped, r.Failed, total)
}
