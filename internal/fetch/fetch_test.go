package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "ApplyAgent")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body><h1>Backend Engineer</h1></body></html>"))
	}))
	t.Cleanup(srv.Close)

	result, err := URL(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Contains(t, result.HTML, "Backend Engineer")
}

func TestURL_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	result, err := URL(context.Background(), srv.URL, nil)
	require.Error(t, err)
	require.NotNil(t, result)
	assert.Equal(t, http.StatusNotFound, result.StatusCode)

	var fetchErr *Error
	require.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, fetchErr.Message, "404")
}

func TestURL_InvalidURL(t *testing.T) {
	_, err := URL(context.Background(), "not a url", nil)
	assert.Error(t, err)
}

func TestDocument_RemovesNoiseKeepsStructuredData(t *testing.T) {
	html := `<html><head>
<script type="application/ld+json">{"@type":"JobPosting"}</script>
<script src="app.js"></script>
<style>body{}</style>
</head><body><div class="cookie-banner">Accept</div><h1>Title</h1></body></html>`

	doc, err := Document(html)
	require.NoError(t, err)

	assert.Equal(t, 1, doc.Find(`script[type="application/ld+json"]`).Length())
	assert.Zero(t, doc.Find("script[src]").Length())
	assert.Zero(t, doc.Find(".cookie-banner").Length())
	assert.Equal(t, "Title", strings.TrimSpace(doc.Find("h1").Text()))
}

func TestShouldUseBrowser(t *testing.T) {
	assert.True(t, ShouldUseBrowser(10))
	assert.False(t, ShouldUseBrowser(5000))

	doc, err := Document("<html><body><p>tiny</p></body></html>")
	require.NoError(t, err)
	assert.True(t, ShouldUseBrowser(VisibleTextLength(doc)))
}
