package session

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jonathan/apply-agent/internal/bridge"
	"github.com/jonathan/apply-agent/internal/extract"
	"github.com/jonathan/apply-agent/internal/formfill"
	"github.com/jonathan/apply-agent/internal/questions"
	"github.com/jonathan/apply-agent/internal/types"
)

const formHTML = `<html><body><form>
<label for="q1">Why do you want to work at our company?</label>
<textarea id="q1"></textarea>
<label for="q2">Describe a challenging project you led recently.</label>
<textarea id="q2"></textarea>
<label for="q3">What motivates you in your daily work?</label>
<textarea id="q3"></textarea>
</form></body></html>`

const postingHTML = `<html><head>
<script type="application/ld+json">
{"@type":"JobPosting","title":"Backend Engineer","description":"Build services.",
"hiringOrganization":{"@type":"Organization","name":"Acme"}}
</script></head><body></body></html>`

type fakeFiller struct {
	mu        sync.Mutex
	filled    []string
	failWith  map[string]string
	afterFill func(count int)
}

func (f *fakeFiller) Fill(_ context.Context, selector, value string) formfill.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, ok := f.failWith[selector]; ok {
		return formfill.Result{Selector: selector, Error: msg}
	}
	f.filled = append(f.filled, value)
	if f.afterFill != nil {
		f.afterFill(len(f.filled))
	}
	return formfill.Result{Selector: selector, Success: true}
}

func (f *fakeFiller) ScrollIntoView(context.Context, string) error { return nil }

type fakeBridge struct {
	mu        sync.Mutex
	answer    string
	batchErr  error
	lastBatch bridge.BatchAnswerRequest
	saved     []bridge.SaveRequest
}

func (b *fakeBridge) DropdownData(context.Context) (bridge.DropdownData, error) {
	return bridge.DropdownData{}, nil
}

func (b *fakeBridge) SaveTrackedApplication(_ context.Context, req bridge.SaveRequest) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.saved = append(b.saved, req)
	return nil
}

func (b *fakeBridge) AnswersBatch(_ context.Context, req bridge.BatchAnswerRequest) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastBatch = req
	if b.batchErr != nil {
		return nil, b.batchErr
	}
	answers := make([]string, len(req.Questions))
	for i := range answers {
		answers[i] = b.answer
	}
	return answers, nil
}

func (b *fakeBridge) Answer(context.Context, bridge.SingleAnswerRequest) (string, error) {
	return b.answer, nil
}

type fakePages struct {
	html string
	url  string
}

func (p *fakePages) Document() (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(p.html))
}

func testToken(t *testing.T) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256,
		jwt.MapClaims{"userId": "user-1"}).SignedString([]byte("secret"))
	require.NoError(t, err)
	return token
}

func newTestSession(t *testing.T, filler *fakeFiller, br *fakeBridge, pages *fakePages) (*Session, *questions.Detector) {
	t.Helper()
	detector := questions.NewDetector(zap.NewNop(), pages.Document, questions.WithRescanDebounce(0))
	s := New(zap.NewNop(), extract.NewEngine(zap.NewNop()), detector, filler, br,
		pages, testToken(t), WithInterFillDelay(0))
	return s, detector
}

func TestOnPageChanged_ExtractsPosting(t *testing.T) {
	pages := &fakePages{html: postingHTML, url: "https://example.com/jobs/1"}
	s, _ := newTestSession(t, &fakeFiller{}, &fakeBridge{}, pages)

	s.OnPageChanged(types.PageJobPosting, pages.url)

	record := s.Record()
	assert.Equal(t, "Backend Engineer", record.Job.Title)
	assert.Equal(t, "Acme", record.Job.CompanyName)
	assert.Equal(t, types.StepJobPosting, record.CurrentStep)
	assert.Equal(t, "https://example.com/jobs/1", record.URL)
}

func TestOnPageChanged_StepNeverRegresses(t *testing.T) {
	pages := &fakePages{html: postingHTML}
	s, _ := newTestSession(t, &fakeFiller{}, &fakeBridge{}, pages)

	s.OnPageChanged(types.PageApplicationForm, "https://example.com/apply")
	assert.Equal(t, types.StepApplication, s.Record().CurrentStep)

	s.OnPageChanged(types.PageJobPosting, "https://example.com/jobs/1")
	assert.Equal(t, types.StepApplication, s.Record().CurrentStep)
}

func TestAnswerSink_AdmissionThreshold(t *testing.T) {
	s, _ := newTestSession(t, &fakeFiller{}, &fakeBridge{}, &fakePages{html: formHTML})

	long := strings.Repeat("a", 120)
	s.AnswerChanged("Why us?", long)
	assert.Equal(t, long, s.Record().UserAnswers["Why us?"])

	s.AnswerChanged("Why us?", "short")
	_, ok := s.Record().UserAnswers["Why us?"]
	assert.False(t, ok, "shrinking below threshold removes the entry")

	s.AnswerChanged("Other question?", strings.Repeat("b", 150))
	s.QuestionRemoved("Other question?")
	_, ok = s.Record().UserAnswers["Other question?"]
	assert.False(t, ok, "deletion purges the entry")
}

func TestAutoFill_FillsAndPromotes(t *testing.T) {
	filler := &fakeFiller{}
	br := &fakeBridge{answer: strings.Repeat("A thoughtful answer. ", 10)}
	pages := &fakePages{html: formHTML}
	s, detector := newTestSession(t, filler, br, pages)

	s.StartTracking(nil)
	t.Cleanup(s.StopTracking)
	require.Len(t, detector.Questions(), 3)

	report, err := s.AutoFill(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, report.Filled)
	assert.Zero(t, report.Skipped)
	assert.Zero(t, report.Failed)
	assert.False(t, report.Cancelled)
	assert.Contains(t, report.Summary, "filled 3")
	assert.Equal(t, "user-1", br.lastBatch.UserID)
	assert.Len(t, br.lastBatch.Questions, 3)

	// Long answers pass the admission threshold through the sink path.
	record := s.Record()
	assert.Len(t, record.UserAnswers, 3)
}

func TestAutoFill_SkipRule(t *testing.T) {
	filler := &fakeFiller{}
	br := &fakeBridge{answer: "generated answer text"}
	pages := &fakePages{html: formHTML}
	s, detector := newTestSession(t, filler, br, pages)

	s.StartTracking(nil)
	t.Cleanup(s.StopTracking)

	// A 1-character answer still excludes the question.
	first := detector.Questions()[0]
	detector.SetAnswerByID(first.ID, "x")

	report, err := s.AutoFill(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 2, report.Filled)
	assert.Len(t, br.lastBatch.Questions, 2, "answered question excluded from the batch request")
	for _, q := range br.lastBatch.Questions {
		assert.NotEqual(t, first.Text, q)
	}
}

func TestAutoFill_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	filler := &fakeFiller{}
	filler.afterFill = func(count int) {
		if count == 1 {
			cancel()
		}
	}
	br := &fakeBridge{answer: "generated answer text"}
	s, _ := newTestSession(t, filler, br, &fakePages{html: formHTML})

	s.StartTracking(nil)
	t.Cleanup(s.StopTracking)

	report, err := s.AutoFill(ctx)
	require.NoError(t, err)

	assert.True(t, report.Cancelled)
	assert.Equal(t, 1, report.Filled)
}

func TestAutoFill_PerQuestionFailure(t *testing.T) {
	filler := &fakeFiller{failWith: map[string]string{`[id="q2"]`: "no matching option"}}
	br := &fakeBridge{answer: "generated answer text"}
	s, _ := newTestSession(t, filler, br, &fakePages{html: formHTML})

	s.StartTracking(nil)
	t.Cleanup(s.StopTracking)

	report, err := s.AutoFill(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Filled)
	assert.Equal(t, 1, report.Failed)

	var failure QuestionResult
	for _, r := range report.Results {
		if r.Outcome == OutcomeFailed {
			failure = r
		}
	}
	assert.Contains(t, failure.Detail, "no matching option")
}

func TestAutoFill_Preconditions(t *testing.T) {
	t.Run("no questions", func(t *testing.T) {
		s, _ := newTestSession(t, &fakeFiller{}, &fakeBridge{}, &fakePages{html: "<html><body></body></html>"})
		s.StartTracking(nil)
		t.Cleanup(s.StopTracking)

		_, err := s.AutoFill(context.Background())
		assert.ErrorContains(t, err, "no questions")
	})

	t.Run("no identity", func(t *testing.T) {
		pages := &fakePages{html: formHTML}
		detector := questions.NewDetector(zap.NewNop(), pages.Document, questions.WithRescanDebounce(0))
		s := New(zap.NewNop(), extract.NewEngine(zap.NewNop()), detector,
			&fakeFiller{}, &fakeBridge{}, pages, "not-a-token", WithInterFillDelay(0))
		s.StartTracking(nil)
		t.Cleanup(s.StopTracking)

		_, err := s.AutoFill(context.Background())
		assert.ErrorContains(t, err, "no authenticated user")
	})

	t.Run("exclusive", func(t *testing.T) {
		s, _ := newTestSession(t, &fakeFiller{}, &fakeBridge{}, &fakePages{html: formHTML})
		require.True(t, s.fillSem.TryAcquire(1))
		defer s.fillSem.Release(1)

		_, err := s.AutoFill(context.Background())
		assert.ErrorIs(t, err, ErrAlreadyRunning)
	})
}

func TestSave_SyncsRecordAndQuestions(t *testing.T) {
	br := &fakeBridge{}
	pages := &fakePages{html: formHTML}
	s, _ := newTestSession(t, &fakeFiller{}, br, pages)

	s.StartTracking(nil)
	t.Cleanup(s.StopTracking)
	s.SetCompany("c1")
	s.SetCV("cv1")

	require.NoError(t, s.Save(context.Background()))
	require.Len(t, br.saved, 1)
	assert.Equal(t, "c1", br.saved[0].Application.CompanyID)
	assert.Len(t, br.saved[0].Questions, 3)
}
