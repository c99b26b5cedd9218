package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/apply-agent/internal/types"
)

// extractMeta reads Open Graph and Twitter card metadata. Meta descriptions
// are usually short summaries rather than the full posting, so this pass
// mostly contributes title and company when the richer passes came up empty.
func extractMeta(doc *goquery.Document) types.JobPosting {
	return types.JobPosting{
		Title:           metaContent(doc, "og:title", "twitter:title"),
		CompanyName:     metaContent(doc, "og:site_name"),
		DescriptionHTML: metaContent(doc, "og:description", "twitter:description", "description"),
	}
}

// metaContent returns the first non-empty content attribute among meta tags
// matched by property or name.
func metaContent(doc *goquery.Document, keys ...string) string {
	for _, key := range keys {
		for _, attr := range []string{"property", "name"} {
			sel := doc.Find(`meta[` + attr + `="` + key + `"]`).First()
			if content, ok := sel.Attr("content"); ok {
				if trimmed := strings.TrimSpace(content); trimmed != "" {
					return trimmed
				}
			}
		}
	}
	return ""
}
