package extract

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/apply-agent/internal/types"
)

// descriptionKeywords are semantic signals that a container holds the actual
// job description rather than page chrome.
var descriptionKeywords = []string{
	"responsibilities", "requirements", "qualifications", "what you'll do",
	"what you will do", "about the role", "about this role", "who you are",
	"we are looking for", "your role", "benefits", "what we offer",
}

// noiseTokens are class/id fragments that mark navigation or other chrome.
var noiseTokens = []string{
	"nav", "menu", "footer", "header", "sidebar", "cookie", "banner",
	"breadcrumb", "similar", "related", "recommend", "signup", "login",
}

// noiseTextSignals are content phrases that mark a container as chrome.
var noiseTextSignals = []string{
	"cookie", "similar jobs", "sign in", "privacy policy", "all rights reserved",
}

// companySelectors are semantic selectors tried before falling back to the
// page domain.
var companySelectors = []string{
	`[itemprop="hiringOrganization"]`,
	`[data-company]`,
	`.company-name`,
	`.companyName`,
	`[class*="company-name"]`,
	`[class*="companyName"]`,
	`.employer`,
	`.organization`,
}

var (
	salaryPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)[$£€]\s?\d[\d,.]*\s?[kK]?\s*(?:-|–|to)\s*[$£€]?\s?\d[\d,.]*\s?[kK]?(?:\s*(?:per|/|a)\s*(?:year|yr|annum|month|mo|week|hour|hr))?`),
		regexp.MustCompile(`(?i)\d[\d,.]*\s*(?:-|–|to)\s*\d[\d,.]*\s*(?:USD|EUR|GBP|CAD|AUD)(?:\s*(?:per|/|a)\s*(?:year|yr|annum|month|mo|week|hour|hr))?`),
		regexp.MustCompile(`(?i)[$£€]\s?\d[\d,.]*\s?[kK]?\s*(?:per|/|a)\s*(?:year|yr|annum|month|mo|week|hour|hr)`),
	}

	employmentTypePattern = regexp.MustCompile(`(?i)\b(full[\s-]?time|part[\s-]?time|contract(?:or)?|intern(?:ship)?|temporary|seasonal|freelance|permanent)\b`)
)

// extractGeneric is the heuristic fallback pass: largest visible heading for
// the title, semantic selectors or the page domain for the company, a scored
// block container for the description, and first regex matches for salary and
// employment type.
func extractGeneric(doc *goquery.Document, pageURL string) types.JobPosting {
	bodyText := visibleText(doc.Find("body"))

	return types.JobPosting{
		Title:           genericTitle(doc),
		CompanyName:     genericCompany(doc, pageURL),
		DescriptionHTML: bestDescriptionContainer(doc),
		Salary:          firstSalaryMatch(bodyText),
		EmploymentType:  employmentTypePattern.FindString(bodyText),
	}
}

// genericTitle takes the first visible heading, preferring larger heading
// levels, and falls back to the document title's first segment.
func genericTitle(doc *goquery.Document) string {
	for _, tag := range []string{"h1", "h2", "h3"} {
		var title string
		doc.Find(tag).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if !isVisible(s) {
				return true
			}
			if text := collapseSpaces(s.Text()); text != "" {
				title = text
				return false
			}
			return true
		})
		if title != "" {
			return title
		}
	}

	// "Senior Engineer | Acme Corp" -> "Senior Engineer"
	docTitle := strings.TrimSpace(doc.Find("title").First().Text())
	for _, sep := range []string{" | ", " - ", " – ", " · "} {
		if idx := strings.Index(docTitle, sep); idx > 0 {
			return strings.TrimSpace(docTitle[:idx])
		}
	}
	return docTitle
}

// genericCompany tries semantic selectors first, then derives a name from the
// page domain unless the domain belongs to a known job board.
func genericCompany(doc *goquery.Document, pageURL string) string {
	for _, selector := range companySelectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		if text := collapseSpaces(sel.Text()); text != "" {
			return text
		}
	}

	parsed, err := url.Parse(pageURL)
	if err != nil || parsed.Host == "" {
		return ""
	}
	host := strings.ToLower(parsed.Host)
	if IsJobBoardHost(host) {
		return ""
	}

	host = strings.TrimPrefix(host, "www.")
	host = strings.TrimPrefix(host, "careers.")
	host = strings.TrimPrefix(host, "jobs.")
	label, _, _ := strings.Cut(host, ".")
	if label == "" {
		return ""
	}
	return strings.ToUpper(label[:1]) + label[1:]
}

// bestDescriptionContainer scores every visible block container and returns
// the inner HTML of the winner. A container whose text carries an explicit
// description keyword beats a higher-scoring one without, so boilerplate-heavy
// but keyword-free regions lose to the actual description.
func bestDescriptionContainer(doc *goquery.Document) string {
	var (
		best           *goquery.Selection
		bestScore      int
		bestKw         *goquery.Selection
		bestKwScore    int
		candidateFound bool
	)

	doc.Find("div, section, article, main").Each(func(_ int, s *goquery.Selection) {
		score, hasKeyword, ok := scoreContainer(s)
		if !ok {
			return
		}
		candidateFound = true
		if score > bestScore || best == nil {
			best, bestScore = s, score
		}
		if hasKeyword && (score > bestKwScore || bestKw == nil) {
			bestKw, bestKwScore = s, score
		}
	})

	if !candidateFound {
		return ""
	}

	winner := best
	if bestKw != nil {
		winner = bestKw
	}
	if html, err := winner.Html(); err == nil {
		return strings.TrimSpace(html)
	}
	return ""
}

// scoreContainer computes the description score for one container. ok is
// false for containers that can never be the description (invisible, chrome
// tags, trivially short).
func scoreContainer(s *goquery.Selection) (score int, hasKeyword bool, ok bool) {
	if !isVisible(s) {
		return 0, false, false
	}

	tag := goquery.NodeName(s)
	if tag == "nav" || tag == "header" || tag == "footer" {
		return 0, false, false
	}

	text := collapseSpaces(s.Text())
	words := len(strings.Fields(text))
	if words < 30 {
		return 0, false, false
	}

	score = words
	score += s.Find("li").Length() * 10
	score += s.Find("p").Length() * 5
	score += s.Find("br").Length() * 2

	lower := strings.ToLower(text)
	for _, kw := range descriptionKeywords {
		if strings.Contains(lower, kw) {
			score += 50
			hasKeyword = true
		}
	}

	classAndID := strings.ToLower(s.AttrOr("class", "") + " " + s.AttrOr("id", ""))
	for _, token := range noiseTokens {
		if strings.Contains(classAndID, token) {
			score -= 200
		}
	}
	for _, signal := range noiseTextSignals {
		if strings.Contains(lower, signal) {
			score -= 100
		}
	}

	return score, hasKeyword, true
}

func firstSalaryMatch(text string) string {
	for _, pattern := range salaryPatterns {
		if match := pattern.FindString(text); match != "" {
			return collapseSpaces(match)
		}
	}
	return ""
}

// isVisible approximates browser visibility on a static snapshot: inline
// display/visibility styles, the hidden attribute and aria-hidden mark an
// element (and its subtree) as invisible.
func isVisible(s *goquery.Selection) bool {
	for sel := s; sel.Length() > 0; sel = sel.Parent() {
		if goquery.NodeName(sel) == "body" || goquery.NodeName(sel) == "html" {
			break
		}
		if _, hidden := sel.Attr("hidden"); hidden {
			return false
		}
		if sel.AttrOr("aria-hidden", "") == "true" {
			return false
		}
		style := strings.ToLower(sel.AttrOr("style", ""))
		style = strings.ReplaceAll(style, " ", "")
		if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
			return false
		}
	}
	return true
}

// visibleText concatenates the text of a selection, skipping invisible
// top-level children. Fine-grained per-node filtering is not worth the cost
// for regex scanning.
func visibleText(s *goquery.Selection) string {
	var sb strings.Builder
	s.Children().Each(func(_ int, child *goquery.Selection) {
		tag := goquery.NodeName(child)
		if tag == "script" || tag == "style" || tag == "noscript" || !isVisible(child) {
			return
		}
		sb.WriteString(child.Text())
		sb.WriteString(" ")
	})
	if sb.Len() == 0 {
		return s.Text()
	}
	return sb.String()
}
