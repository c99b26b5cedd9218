package pagewatch

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jonathan/apply-agent/internal/types"
)

// fakeReader is a PageReader whose state tests mutate between events.
type fakeReader struct {
	mu   sync.Mutex
	url  string
	body string
}

func (f *fakeReader) set(url, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.url, f.body = url, body
}

func (f *fakeReader) CurrentURL() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.url, nil
}

func (f *fakeReader) BodyText() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.body, nil
}

type changeRecorder struct {
	mu      sync.Mutex
	changes []types.PageType
}

func (r *changeRecorder) record(pt types.PageType, _ string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, pt)
}

func (r *changeRecorder) snapshot() []types.PageType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]types.PageType, len(r.changes))
	copy(out, r.changes)
	return out
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	require.Fail(t, "condition not met in time")
}

func TestMonitor_EscalatesOnlyTypeChanges(t *testing.T) {
	reader := &fakeReader{}
	reader.set("https://www.linkedin.com/jobs/view/1", "")

	rec := &changeRecorder{}
	source := NewChanSource()
	defer source.Close()

	m := NewMonitor(zap.NewNop(), reader, WithSettleDelay(0))
	m.Start(source, rec.record)
	defer m.Stop()

	// Initial classification is reported.
	waitFor(t, func() bool { return len(rec.snapshot()) == 1 })
	assert.Equal(t, types.PageJobPosting, rec.snapshot()[0])

	// Same type, different URL: absorbed.
	reader.set("https://www.linkedin.com/jobs/view/2", "")
	source.C <- Event{Kind: EventNavigation}
	// Type change: escalated.
	reader.set("https://www.linkedin.com/jobs/view/2/apply", "")
	source.C <- Event{Kind: EventNavigation}

	waitFor(t, func() bool { return len(rec.snapshot()) == 2 })
	assert.Equal(t, types.PageApplicationForm, rec.snapshot()[1])
}

func TestMonitor_ContentChangeSameURL(t *testing.T) {
	reader := &fakeReader{}
	reader.set("https://example.com/jobs/1/apply", "")

	rec := &changeRecorder{}
	source := NewChanSource()
	defer source.Close()

	m := NewMonitor(zap.NewNop(), reader, WithSettleDelay(0))
	m.Start(source, rec.record)
	defer m.Stop()

	waitFor(t, func() bool { return len(rec.snapshot()) == 1 })

	// URL stays put, completion text appears in the body.
	reader.set("https://example.com/jobs/1/apply", "Thank you for applying!")
	source.C <- Event{Kind: EventMutation}

	waitFor(t, func() bool { return len(rec.snapshot()) == 2 })
	assert.Equal(t, types.PageApplicationComplete, rec.snapshot()[1])
}

func TestMonitor_StopIsIdempotentAndSilences(t *testing.T) {
	reader := &fakeReader{}
	reader.set("https://example.com/jobs/1", "")

	rec := &changeRecorder{}
	source := NewChanSource()
	defer source.Close()

	m := NewMonitor(zap.NewNop(), reader, WithSettleDelay(0))
	m.Start(source, rec.record)
	waitFor(t, func() bool { return len(rec.snapshot()) == 1 })

	m.Stop()
	m.Stop() // second stop is a no-op

	before := len(rec.snapshot())
	reader.set("https://example.com/jobs/1/apply", "")
	select {
	case source.C <- Event{Kind: EventNavigation}:
	default:
	}
	time.Sleep(50 * time.Millisecond)
	assert.Len(t, rec.snapshot(), before, "no escalation after Stop")
}

func TestMonitor_DoubleStartIsNoOp(t *testing.T) {
	reader := &fakeReader{}
	reader.set("https://example.com/jobs/1", "")

	rec := &changeRecorder{}
	source := NewChanSource()
	defer source.Close()

	m := NewMonitor(zap.NewNop(), reader, WithSettleDelay(0))
	m.Start(source, rec.record)
	defer m.Stop()
	m.Start(source, rec.record)

	waitFor(t, func() bool { return len(rec.snapshot()) >= 1 })
	time.Sleep(20 * time.Millisecond)
	assert.Len(t, rec.snapshot(), 1)
}
