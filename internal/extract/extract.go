// Package extract derives a normalized job posting from an HTML snapshot.
//
// Extraction is a fixed-priority cascade: structured markup first, then
// site-specific selector tables for known job platforms, then Open Graph and
// Twitter card metadata, then a generic DOM-scoring fallback. The passes are
// merged field-by-field with earlier passes winning, so clean structured data
// always beats heuristics. No pass ever fails the cascade; missing elements
// degrade to empty fields and the engine always returns some record.
package extract

import (
	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/jonathan/apply-agent/internal/types"
)

// Engine runs the extraction cascade. It holds no per-page state; Extract is
// a pure function of the document snapshot and is safe to call repeatedly.
type Engine struct {
	log            *zap.Logger
	maxDescription int
}

// Option configures an Engine.
type Option func(*Engine)

// WithDescriptionCap overrides the description length cap.
func WithDescriptionCap(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxDescription = n
		}
	}
}

// NewEngine creates an extraction engine.
func NewEngine(log *zap.Logger, opts ...Option) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	e := &Engine{
		log:            log,
		maxDescription: types.DefaultDescriptionMaxLength,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract runs the full cascade against a document snapshot and returns the
// merged, normalized posting. pageURL is used for platform detection and for
// the company-from-domain fallback.
func (e *Engine) Extract(doc *goquery.Document, pageURL string) types.JobPosting {
	structured := extractStructured(doc)
	if structured.CoreComplete() {
		// Clean structured data short-circuits the heuristic passes.
		e.log.Debug("extraction short-circuited on structured data",
			zap.String("title", structured.Title),
			zap.String("company", structured.CompanyName))
		return e.finalize(structured)
	}

	site := extractSiteSpecific(doc, pageURL)
	meta := extractMeta(doc)
	generic := extractGeneric(doc, pageURL)

	merged := structured.Merge(site).Merge(meta).Merge(generic)

	e.log.Debug("extraction cascade merged",
		zap.Bool("structured", !structured.IsEmpty()),
		zap.Bool("site_specific", !site.IsEmpty()),
		zap.Bool("meta", !meta.IsEmpty()),
		zap.Bool("generic", !generic.IsEmpty()),
		zap.String("title", merged.Title))

	return e.finalize(merged)
}

// finalize applies normalization shared by all cascade outcomes.
func (e *Engine) finalize(job types.JobPosting) types.JobPosting {
	job.EmploymentType = NormalizeEmploymentType(job.EmploymentType)
	job.DescriptionHTML = SmartTruncate(job.DescriptionHTML, e.maxDescription)
	return job
}
