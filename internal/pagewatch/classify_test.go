package pagewatch

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/apply-agent/internal/types"
)

func TestClassify_PlatformRules(t *testing.T) {
	tests := []struct {
		name string
		url  string
		body string
		want types.PageType
	}{
		{"linkedin job view", "https://www.linkedin.com/jobs/view/12345", "", types.PageJobPosting},
		{"linkedin post-apply", "https://www.linkedin.com/jobs/application/98765/", "", types.PageApplicationComplete},
		{"linkedin apply", "https://www.linkedin.com/jobs/view/12345/apply", "", types.PageApplicationForm},
		{"indeed viewjob", "https://www.indeed.com/viewjob?jk=abc123", "", types.PageJobPosting},
		{"indeed smartapply", "https://smartapply.indeed.com/beta/indeedapply/form/contact-info", "", types.PageApplicationForm},
		{"greenhouse posting", "https://boards.greenhouse.io/acme/jobs/400", "", types.PageJobPosting},
		{"greenhouse form fragment", "https://boards.greenhouse.io/acme/jobs/400#app", "", types.PageApplicationForm},
		{"lever apply", "https://jobs.lever.co/acme/uuid/apply", "", types.PageApplicationForm},
		{"lever thanks", "https://jobs.lever.co/acme/uuid/thanks", "", types.PageApplicationComplete},
		{"workday posting", "https://acme.wd1.myworkdayjobs.com/en-US/ext/job/Engineer_R123", "", types.PageJobPosting},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.url, tt.body))
		})
	}
}

func TestClassify_CompletionPhraseOverridesURL(t *testing.T) {
	got := Classify("https://www.linkedin.com/jobs/view/12345/apply",
		"Thank you for applying! We'll be in touch.")
	assert.Equal(t, types.PageApplicationComplete, got)
}

func TestClassify_GenericFallback(t *testing.T) {
	tests := []struct {
		name string
		url  string
		body string
		want types.PageType
	}{
		{"apply path", "https://careers.example.com/positions/12/apply", "", types.PageApplicationForm},
		{"application path", "https://example.com/application/new", "", types.PageApplicationForm},
		{"jobs path", "https://example.com/jobs/backend-engineer", "", types.PageJobPosting},
		{"careers path", "https://example.com/careers/123", "", types.PageJobPosting},
		{"body text posting", "https://example.com/p/123", "Job Description: build things. Apply below.", types.PageJobPosting},
		{"nothing matches", "https://example.com/about", "We are a company.", types.PageUnknown},
		{"unparseable url", "::::", "", types.PageUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.url, tt.body))
		})
	}
}
