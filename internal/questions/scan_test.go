package questions

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestScan_LabelResolutionChain(t *testing.T) {
	html := `<html><body><form>
<label for="q1">Why do you want to work with us?</label>
<textarea id="q1"></textarea>

<label>Describe your experience with Go <textarea name="q2"></textarea></label>

<textarea aria-label="What motivates you in your work?" name="q3"></textarea>

<input type="text" placeholder="What is your expected salary?" name="q4"/>

<p>Tell us about a challenge you overcame</p>
<textarea name="q5"></textarea>

<fieldset>
<legend>Why is this role interesting to you?</legend>
<div><textarea name="q6"></textarea></div>
</fieldset>
</form></body></html>`

	candidates := Scan(mustDoc(t, html))
	require.Len(t, candidates, 6)

	texts := make([]string, len(candidates))
	for i, c := range candidates {
		texts[i] = c.Text
	}
	assert.Equal(t, []string{
		"Why do you want to work with us?",
		"Describe your experience with Go",
		"What motivates you in your work?",
		"What is your expected salary?",
		"Tell us about a challenge you overcame",
		"Why is this role interesting to you?",
	}, texts)

	assert.Equal(t, `[id="q1"]`, candidates[0].InputSelector)
	assert.Equal(t, `textarea[name="q2"]`, candidates[1].InputSelector)
}

func TestScan_SkipsNonAnswerInputs(t *testing.T) {
	html := `<html><body>
<p>Why do you want this role at our company?</p>
<input type="hidden" name="token"/>
<input type="submit" value="Send"/>
<input type="file" name="resume"/>
</body></html>`

	// The text block precedes only skipped inputs, so nothing is detected.
	assert.Empty(t, Scan(mustDoc(t, html)))
}

func TestScan_PlaceholderRequiresQuestionMark(t *testing.T) {
	html := `<html><body>
<input type="text" placeholder="Your motivation statement here" name="a"/>
<input type="text" placeholder="What is your motivation?" name="b"/>
</body></html>`

	candidates := Scan(mustDoc(t, html))
	require.Len(t, candidates, 1)
	assert.Equal(t, "What is your motivation?", candidates[0].Text)
}

func TestAccept(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"question mark", "Anything at all, really?", true},
		{"question word", "Describe your ideal team", true},
		{"domain keyword", "Relevant experience with Kubernetes", true},
		{"too short", "Why us?", false},
		{"too long", strings.Repeat("a", 501) + "?", false},
		{"generic field", "Email address", false},
		{"generic field punctuated", "Email Address:", false},
		{"no signal", "Acme Corporation is a leading provider", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Accept(tt.text))
		})
	}
}

func TestSelectorFor_FallbackPath(t *testing.T) {
	html := `<html><body><div><form><textarea></textarea></form></div></body></html>`
	doc := mustDoc(t, html)
	sel := selectorFor(doc.Find("textarea"))
	assert.Equal(t, "body > div:nth-child(1) > form:nth-child(1) > textarea:nth-child(1)", sel)

	// The derived path must resolve back to the same element.
	assert.Equal(t, 1, doc.Find(sel).Length())
}
