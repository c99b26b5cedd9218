// Package session is the orchestrator: it owns the application record for
// one tracking session, wires the extraction engine, page monitor, question
// detector, fill engine and bridge client together, and drives the auto-fill
// workflow. All collaborators arrive through the constructor; the session
// holds the only mutable aggregate state.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/jonathan/apply-agent/internal/bridge"
	"github.com/jonathan/apply-agent/internal/extract"
	"github.com/jonathan/apply-agent/internal/formfill"
	"github.com/jonathan/apply-agent/internal/observability"
	"github.com/jonathan/apply-agent/internal/questions"
	"github.com/jonathan/apply-agent/internal/types"
)

// DefaultInterFillDelay spaces sequential fills so page scripts keep up.
const DefaultInterFillDelay = 300 * time.Millisecond

// Filler is the slice of the fill engine the session uses.
type Filler interface {
	Fill(ctx context.Context, selector, value string) formfill.Result
	ScrollIntoView(ctx context.Context, selector string) error
}

// PageSource supplies DOM snapshots of the live page.
type PageSource interface {
	Document() (*goquery.Document, error)
}

// Session owns one tracking session's aggregate state.
type Session struct {
	log       *zap.Logger
	extractor *extract.Engine
	detector  *questions.Detector
	filler    Filler
	bridge    bridge.Client
	pages     PageSource
	token     string

	fillSem        *semaphore.Weighted
	interFillDelay time.Duration

	mu     sync.Mutex
	record *types.ApplicationRecord
}

// Option configures a Session.
type Option func(*Session)

// WithInterFillDelay overrides the pause between sequential fills.
func WithInterFillDelay(d time.Duration) Option {
	return func(s *Session) { s.interFillDelay = d }
}

// WithAnswerThreshold overrides the record's answer admission threshold.
func WithAnswerThreshold(n int) Option {
	return func(s *Session) { s.record.AnswerThreshold = n }
}

// New wires a session. token is the collaborator bearer token; identity for
// answer requests is read from it.
func New(log *zap.Logger, extractor *extract.Engine, detector *questions.Detector,
	filler Filler, bridgeClient bridge.Client, pages PageSource, token string,
	opts ...Option) *Session {

	if log == nil {
		log = zap.NewNop()
	}
	s := &Session{
		log:            log,
		extractor:      extractor,
		detector:       detector,
		filler:         filler,
		bridge:         bridgeClient,
		pages:          pages,
		token:          token,
		fillSem:        semaphore.NewWeighted(1),
		interFillDelay: DefaultInterFillDelay,
		record:         types.NewApplicationRecord(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record returns a copy of the aggregate record.
func (s *Session) Record() types.ApplicationRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	record := *s.record
	record.UserAnswers = make(map[string]string, len(s.record.UserAnswers))
	for k, v := range s.record.UserAnswers {
		record.UserAnswers[k] = v
	}
	return record
}

// SetCompany records the user-chosen company.
func (s *Session) SetCompany(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record.CompanyID = id
}

// SetCV records the user-chosen CV.
func (s *Session) SetCV(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record.CVID = id
}

// StartTracking begins question detection with this session as the answer
// sink, so admission and purge logic run against the record.
func (s *Session) StartTracking(notifier questions.Notifier) {
	s.detector.StartTracking(notifier, s)
}

// StopTracking ends detection; detector state and blacklist are discarded.
func (s *Session) StopTracking() {
	s.detector.StopTracking()
}

// OnPageChanged is the monitor callback. The step never regresses; reaching
// a job posting page triggers a fresh extraction pass that supersedes the
// previous posting snapshot.
func (s *Session) OnPageChanged(pageType types.PageType, url string) {
	observability.PageTransitions.WithLabelValues(string(pageType)).Inc()

	if step, ok := pageType.Step(); ok {
		s.mu.Lock()
		s.record.SetStep(step)
		s.mu.Unlock()
	}

	if pageType != types.PageJobPosting {
		return
	}
	doc, err := s.pages.Document()
	if err != nil {
		s.log.Warn("page snapshot failed", zap.Error(err))
		return
	}
	job := s.extractor.Extract(doc, url)
	observability.ExtractionsTotal.WithLabelValues("live").Inc()
	if job.IsEmpty() {
		return
	}
	s.mu.Lock()
	s.record.SetJob(job, url)
	s.mu.Unlock()
	s.log.Info("job posting extracted",
		zap.String("title", job.Title),
		zap.String("company", job.CompanyName))
}

// AnswerChanged implements questions.AnswerSink. The admission threshold
// decides whether the answer enters the persisted set.
func (s *Session) AnswerChanged(questionText, answer string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record.ApplyAnswer(questionText, answer)
}

// QuestionRemoved implements questions.AnswerSink: deletion purges the
// persisted answer.
func (s *Session) QuestionRemoved(questionText string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record.RemoveAnswer(questionText)
}

// DropdownData fetches companies and CVs from the collaborator.
func (s *Session) DropdownData(ctx context.Context) (bridge.DropdownData, error) {
	return s.bridge.DropdownData(ctx)
}

// Save syncs the record and the current question set out to the
// collaborator.
func (s *Session) Save(ctx context.Context) error {
	req := bridge.SaveRequest{
		Application: s.Record(),
		Questions:   s.detector.Questions(),
	}
	if err := s.bridge.SaveTrackedApplication(ctx, req); err != nil {
		return fmt.Errorf("save tracked application: %w", err)
	}
	s.log.Info("application synced",
		zap.String("session_id", req.Application.SessionID),
		zap.Int("questions", len(req.Questions)))
	return nil
}

var _ questions.AnswerSink = (*Session)(nil)
