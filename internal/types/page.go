package types

// PageType is the logical classification of the current page within an
// application flow.
type PageType string

// Page types recognized by the navigation monitor.
const (
	PageJobPosting          PageType = "job_posting"
	PageApplicationForm     PageType = "application_form"
	PageApplicationComplete PageType = "application_complete"
	PageUnknown             PageType = "unknown"
)

// Step returns the application step a page type corresponds to, or false if
// the type does not advance the application.
func (p PageType) Step() (Step, bool) {
	switch p {
	case PageJobPosting:
		return StepJobPosting, true
	case PageApplicationForm:
		return StepApplication, true
	case PageApplicationComplete:
		return StepComplete, true
	default:
		return "", false
	}
}
