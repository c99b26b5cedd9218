package pagewatch

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/apply-agent/internal/types"
)

// DefaultSettleDelay is the wait after a change signal before the page is
// re-classified, letting the SPA finish rendering.
const DefaultSettleDelay = 300 * time.Millisecond

// ChangeFunc receives escalated page-type changes.
type ChangeFunc func(pageType types.PageType, url string)

// Monitor consumes DOM change notifications, re-classifies the page after a
// settle delay and escalates type changes only. URL changes that keep the
// same classification are absorbed; a content change on the same URL is
// re-classified through the same path.
type Monitor struct {
	log    *zap.Logger
	reader PageReader
	settle time.Duration

	mu           sync.Mutex
	isMonitoring bool
	lastURL      string
	lastType     types.PageType
	onChange     ChangeFunc
	stop         chan struct{}
	done         chan struct{}
}

// MonitorOption configures a Monitor.
type MonitorOption func(*Monitor)

// WithSettleDelay overrides the settle delay. Tests pass zero.
func WithSettleDelay(d time.Duration) MonitorOption {
	return func(m *Monitor) { m.settle = d }
}

// NewMonitor creates a monitor over the given page reader.
func NewMonitor(log *zap.Logger, reader PageReader, opts ...MonitorOption) *Monitor {
	if log == nil {
		log = zap.NewNop()
	}
	m := &Monitor{
		log:      log,
		reader:   reader,
		settle:   DefaultSettleDelay,
		lastType: types.PageUnknown,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start subscribes to the source and begins escalating type changes to
// onChange. An initial classification runs immediately so the first page is
// reported without waiting for a change signal. Start on a running monitor is
// a no-op.
func (m *Monitor) Start(source Source, onChange ChangeFunc) {
	m.mu.Lock()
	if m.isMonitoring {
		m.mu.Unlock()
		return
	}
	m.isMonitoring = true
	m.onChange = onChange
	m.stop = make(chan struct{})
	m.done = make(chan struct{})
	m.mu.Unlock()

	m.recheck()

	go m.run(source)
}

func (m *Monitor) run(source Source) {
	defer close(m.done)
	for {
		select {
		case <-m.stop:
			return
		case ev, ok := <-source.Events():
			if !ok {
				return
			}
			if !m.settleWait() {
				return
			}
			m.log.Debug("page change signal", zap.String("kind", string(ev.Kind)))
			m.recheck()
		}
	}
}

// settleWait sleeps the settle delay, returning false if the monitor stopped
// while waiting.
func (m *Monitor) settleWait() bool {
	if m.settle <= 0 {
		return true
	}
	timer := time.NewTimer(m.settle)
	defer timer.Stop()
	select {
	case <-m.stop:
		return false
	case <-timer.C:
		return true
	}
}

// recheck reads the current page state, classifies it and escalates when the
// classification changed since the last report.
func (m *Monitor) recheck() {
	m.mu.Lock()
	if !m.isMonitoring {
		m.mu.Unlock()
		return
	}
	onChange := m.onChange
	lastType := m.lastType
	m.mu.Unlock()

	url, err := m.reader.CurrentURL()
	if err != nil {
		m.log.Debug("page state unavailable", zap.Error(err))
		return
	}
	body, err := m.reader.BodyText()
	if err != nil {
		m.log.Debug("body text unavailable", zap.Error(err))
		body = ""
	}

	newType := Classify(url, body)

	m.mu.Lock()
	m.lastURL = url
	m.lastType = newType
	m.mu.Unlock()

	if newType != lastType && onChange != nil {
		m.log.Info("page type changed",
			zap.String("from", string(lastType)),
			zap.String("to", string(newType)),
			zap.String("url", url))
		onChange(newType, url)
	}
}

// Stop halts monitoring. Signals arriving after Stop are ignored. Stop on an
// idle monitor is a no-op.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.isMonitoring {
		m.mu.Unlock()
		return
	}
	m.isMonitoring = false
	close(m.stop)
	done := m.done
	m.mu.Unlock()

	<-done
}

// LastKnown returns the most recent URL and classification.
func (m *Monitor) LastKnown() (string, types.PageType) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastURL, m.lastType
}
