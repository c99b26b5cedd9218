package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenericTitle(t *testing.T) {
	t.Run("largest visible heading wins", func(t *testing.T) {
		html := `<html><body>
<h2>Secondary</h2>
<h1 style="display:none">Hidden Title</h1>
<h1>Visible Title</h1>
</body></html>`
		assert.Equal(t, "Visible Title", genericTitle(mustDoc(t, html)))
	})

	t.Run("falls back to document title segment", func(t *testing.T) {
		html := `<html><head><title>Staff Engineer | Acme Careers</title></head><body></body></html>`
		assert.Equal(t, "Staff Engineer", genericTitle(mustDoc(t, html)))
	})
}

func TestGenericCompany(t *testing.T) {
	t.Run("semantic selector", func(t *testing.T) {
		html := `<html><body><span class="company-name">Hooli</span></body></html>`
		assert.Equal(t, "Hooli", genericCompany(mustDoc(t, html), "https://example.com"))
	})

	t.Run("derived from domain", func(t *testing.T) {
		html := `<html><body></body></html>`
		assert.Equal(t, "Acme", genericCompany(mustDoc(t, html), "https://www.acme.com/jobs/1"))
	})

	t.Run("job board domain suppressed", func(t *testing.T) {
		html := `<html><body></body></html>`
		assert.Empty(t, genericCompany(mustDoc(t, html), "https://www.indeed.com/viewjob?jk=1"))
	})
}

func TestBestDescriptionContainer(t *testing.T) {
	longDesc := strings.Repeat("build and ship services with the team ", 10)
	html := `<html><body>
<nav>Home Jobs About Contact Blog Pricing Login Signup Press Docs Help More Even More Links Here To Pad The Word Count Of This Nav Element Considerably For The Test</nav>
<div class="job-body"><p>About the role: ` + longDesc + `</p>
<ul><li>Responsibilities one</li><li>Two</li><li>Three</li></ul></div>
<div class="similar-jobs">Similar jobs you might like: lots and lots of other postings repeated here over and over and over again with many words to inflate the counter beyond the threshold easily</div>
</body></html>`

	out := bestDescriptionContainer(mustDoc(t, html))
	assert.Contains(t, out, "About the role")
	assert.NotContains(t, out, "Similar jobs you might like")
}

func TestIsVisible(t *testing.T) {
	html := `<html><body>
<div id="plain">a</div>
<div id="none" style="display: none">b</div>
<div style="visibility:hidden"><span id="nested">c</span></div>
<div hidden id="hid">d</div>
<div aria-hidden="true" id="aria">e</div>
</body></html>`
	doc := mustDoc(t, html)

	assert.True(t, isVisible(doc.Find("#plain")))
	assert.False(t, isVisible(doc.Find("#none")))
	assert.False(t, isVisible(doc.Find("#nested")), "hidden ancestors hide descendants")
	assert.False(t, isVisible(doc.Find("#hid")))
	assert.False(t, isVisible(doc.Find("#aria")))
}
