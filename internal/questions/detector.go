package questions

import (
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/jonathan/apply-agent/internal/types"
)

// DefaultRescanDebounce is the window over which mutation-driven rescan
// triggers are coalesced.
const DefaultRescanDebounce = 500 * time.Millisecond

// Notifier is the two-tier update channel toward the UI collaborator.
// UpdateQuestions is the expensive full-rebuild path, sent only on structural
// changes (question added/removed); UpdateStatus is the lightweight counter
// path, safe to call on every answer keystroke.
type Notifier interface {
	UpdateQuestions(questions []types.Question)
	UpdateStatus(total, answered int)
}

// AnswerSink receives answer lifecycle callbacks so the record owner can run
// admission and purge logic without the detector knowing about records.
type AnswerSink interface {
	AnswerChanged(questionText, answer string)
	QuestionRemoved(questionText string)
}

// SnapshotFunc returns the current DOM snapshot for a rescan.
type SnapshotFunc func() (*goquery.Document, error)

// Detector maintains the live question set for one tracking session.
// State machine: idle -> tracking -> idle. All mutation entry points are
// guarded so callbacks arriving after StopTracking are ignored.
type Detector struct {
	log      *zap.Logger
	snapshot SnapshotFunc
	debounce time.Duration

	mu         sync.Mutex
	isTracking bool
	questions  map[string]*types.Question
	order      []string
	blacklist  map[string]struct{}
	notifier   Notifier
	sink       AnswerSink
	timer      *time.Timer
}

// DetectorOption configures a Detector.
type DetectorOption func(*Detector)

// WithRescanDebounce overrides the rescan debounce window. Tests pass zero to
// rescan synchronously.
func WithRescanDebounce(d time.Duration) DetectorOption {
	return func(det *Detector) { det.debounce = d }
}

// NewDetector creates a detector reading snapshots from snapshot.
func NewDetector(log *zap.Logger, snapshot SnapshotFunc, opts ...DetectorOption) *Detector {
	if log == nil {
		log = zap.NewNop()
	}
	d := &Detector{
		log:      log,
		snapshot: snapshot,
		debounce: DefaultRescanDebounce,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// StartTracking enters the tracking state with a fresh question set and
// blacklist, then runs an initial scan. Starting an already tracking detector
// is a no-op.
func (d *Detector) StartTracking(notifier Notifier, sink AnswerSink) {
	d.mu.Lock()
	if d.isTracking {
		d.mu.Unlock()
		return
	}
	d.isTracking = true
	d.questions = make(map[string]*types.Question)
	d.order = nil
	d.blacklist = make(map[string]struct{})
	d.notifier = notifier
	d.sink = sink
	d.mu.Unlock()

	d.Rescan()
}

// StopTracking leaves the tracking state and discards all session state,
// including the deletion blacklist.
func (d *Detector) StopTracking() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.isTracking {
		return
	}
	d.isTracking = false
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.questions = nil
	d.order = nil
	d.blacklist = nil
	d.notifier = nil
	d.sink = nil
}

// IsTracking reports the state machine position.
func (d *Detector) IsTracking() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.isTracking
}

// OnDOMChanged schedules a debounced rescan. Bursts of mutation signals
// within the debounce window coalesce into one scan.
func (d *Detector) OnDOMChanged() {
	d.mu.Lock()
	if !d.isTracking {
		d.mu.Unlock()
		return
	}
	if d.debounce <= 0 {
		d.mu.Unlock()
		d.Rescan()
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.debounce, d.Rescan)
	d.mu.Unlock()
}

// Rescan snapshots the DOM, scans it and registers new questions. The
// UpdateQuestions notification fires only when at least one new question was
// found, so unrelated mutations do not cause notification storms.
func (d *Detector) Rescan() {
	d.mu.Lock()
	if !d.isTracking {
		d.mu.Unlock()
		return
	}
	snapshot := d.snapshot
	d.mu.Unlock()

	doc, err := snapshot()
	if err != nil {
		d.log.Debug("snapshot unavailable, rescan skipped", zap.Error(err))
		return
	}
	candidates := Scan(doc)

	d.mu.Lock()
	if !d.isTracking {
		d.mu.Unlock()
		return
	}
	added := 0
	for _, c := range candidates {
		id := types.QuestionID(c.Text)
		if _, exists := d.questions[id]; exists {
			continue
		}
		if _, blocked := d.blacklist[types.NormalizeQuestionText(c.Text)]; blocked {
			continue
		}
		q := types.NewQuestion(c.Text, c.InputSelector, c.LabelSelector)
		d.questions[q.ID] = &q
		d.order = append(d.order, q.ID)
		added++
	}
	notifier := d.notifier
	list := d.snapshotLocked()
	total, answered := d.countsLocked()
	d.mu.Unlock()

	if added > 0 && notifier != nil {
		d.log.Debug("questions registered", zap.Int("new", added), zap.Int("total", total))
		notifier.UpdateQuestions(list)
		notifier.UpdateStatus(total, answered)
	}
}

// OnAnswerChanged updates the matching question's answer in place. Only the
// lightweight status tier is notified; answer edits must never trigger a full
// list rebuild.
func (d *Detector) OnAnswerChanged(inputSelector, value string) {
	d.mu.Lock()
	if !d.isTracking {
		d.mu.Unlock()
		return
	}
	var changed *types.Question
	for _, id := range d.order {
		if q := d.questions[id]; q.InputSelector == inputSelector {
			q.Answer = value
			changed = q
			break
		}
	}
	notifier := d.notifier
	sink := d.sink
	total, answered := d.countsLocked()
	d.mu.Unlock()

	if changed == nil {
		return
	}
	if sink != nil {
		sink.AnswerChanged(changed.Text, value)
	}
	if notifier != nil {
		notifier.UpdateStatus(total, answered)
	}
}

// SetAnswerByID records a programmatic fill result against a question.
// Same promotion path as user edits.
func (d *Detector) SetAnswerByID(id, value string) {
	d.mu.Lock()
	if !d.isTracking {
		d.mu.Unlock()
		return
	}
	q, ok := d.questions[id]
	if ok {
		q.Answer = value
	}
	notifier := d.notifier
	sink := d.sink
	total, answered := d.countsLocked()
	d.mu.Unlock()

	if !ok {
		return
	}
	if sink != nil {
		sink.AnswerChanged(q.Text, value)
	}
	if notifier != nil {
		notifier.UpdateStatus(total, answered)
	}
}

// RemoveQuestion soft-deletes a question: it leaves the live set, its
// normalized text joins the deletion blacklist for the rest of the session,
// and the sink purges its admitted answer. Structural change, so the full
// rebuild tier fires immediately.
func (d *Detector) RemoveQuestion(id string) {
	d.mu.Lock()
	if !d.isTracking {
		d.mu.Unlock()
		return
	}
	q, ok := d.questions[id]
	if !ok {
		d.mu.Unlock()
		return
	}
	delete(d.questions, id)
	for i, qid := range d.order {
		if qid == id {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	d.blacklist[q.NormalizedText] = struct{}{}
	notifier := d.notifier
	sink := d.sink
	list := d.snapshotLocked()
	total, answered := d.countsLocked()
	d.mu.Unlock()

	if sink != nil {
		sink.QuestionRemoved(q.Text)
	}
	if notifier != nil {
		notifier.UpdateQuestions(list)
		notifier.UpdateStatus(total, answered)
	}
}

// Questions returns a copy of the live question set in detection order.
func (d *Detector) Questions() []types.Question {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.snapshotLocked()
}

func (d *Detector) snapshotLocked() []types.Question {
	out := make([]types.Question, 0, len(d.order))
	for _, id := range d.order {
		if q, ok := d.questions[id]; ok {
			out = append(out, *q)
		}
	}
	return out
}

func (d *Detector) countsLocked() (total, answered int) {
	for _, q := range d.questions {
		total++
		if q.Answer != "" {
			answered++
		}
	}
	return total, answered
}
