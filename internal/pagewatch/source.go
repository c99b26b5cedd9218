package pagewatch

// EventKind is the category of a DOM change notification.
type EventKind string

// Event kinds delivered by a Source.
const (
	// EventNavigation covers history pushState/replaceState, back/forward
	// and fragment changes.
	EventNavigation EventKind = "navigation"
	// EventMutation flags a significant DOM mutation: addition or removal
	// of a primary-content element while the URL stayed the same.
	EventMutation EventKind = "mutation"
	// EventFormSubmit is an observed form submission.
	EventFormSubmit EventKind = "form_submit"
	// EventApplyClick is a click on an element matching the apply-intent
	// keyword set.
	EventApplyClick EventKind = "apply_click"
)

// Event is one DOM change notification.
type Event struct {
	Kind EventKind
	// URL is the page URL at emission time, when the source knows it.
	URL string
}

// Source is the DOM change notification abstraction the monitor subscribes
// to. The browser-backed implementation emits from injected observers; tests
// drive a channel directly.
type Source interface {
	// Events returns the notification channel. The source closes it when
	// it stops.
	Events() <-chan Event
}

// PageReader provides the current page state for re-classification after a
// settle delay.
type PageReader interface {
	CurrentURL() (string, error)
	BodyText() (string, error)
}

// ChanSource is a trivial Source backed by a caller-owned channel. Used by
// tests and by adapters that receive notifications out of band.
type ChanSource struct {
	C chan Event
}

// NewChanSource creates a buffered channel source.
func NewChanSource() *ChanSource {
	return &ChanSource{C: make(chan Event, 16)}
}

// Events returns the underlying channel.
func (s *ChanSource) Events() <-chan Event { return s.C }

// Close closes the channel, stopping any subscribed monitor.
func (s *ChanSource) Close() { close(s.C) }
