package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/apply-agent/internal/types"
)

// Platform identifies a known job-posting platform.
type Platform string

// Known job-posting platforms with dedicated selector tables.
const (
	PlatformLinkedIn       Platform = "linkedin"
	PlatformIndeed         Platform = "indeed"
	PlatformGlassdoor      Platform = "glassdoor"
	PlatformGreenhouse     Platform = "greenhouse"
	PlatformLever          Platform = "lever"
	PlatformWorkday        Platform = "workday"
	PlatformSmartRecruiter Platform = "smartrecruiters"
	PlatformZipRecruiter   Platform = "ziprecruiter"
	PlatformMonster        Platform = "monster"
	PlatformUnknown        Platform = "unknown"
)

// platformHosts maps host substrings to platforms. First match wins.
var platformHosts = []struct {
	host     string
	platform Platform
}{
	{"linkedin.com", PlatformLinkedIn},
	{"indeed.com", PlatformIndeed},
	{"glassdoor.", PlatformGlassdoor},
	{"greenhouse.io", PlatformGreenhouse},
	{"lever.co", PlatformLever},
	{"myworkdayjobs.com", PlatformWorkday},
	{"workday.com", PlatformWorkday},
	{"smartrecruiters.com", PlatformSmartRecruiter},
	{"ziprecruiter.com", PlatformZipRecruiter},
	{"monster.com", PlatformMonster},
}

// DetectPlatform identifies the job platform from a page URL.
func DetectPlatform(pageURL string) Platform {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return PlatformUnknown
	}
	host := strings.ToLower(parsed.Host)
	for _, entry := range platformHosts {
		if strings.Contains(host, entry.host) {
			return entry.platform
		}
	}
	return PlatformUnknown
}

// IsJobBoardHost reports whether the host belongs to a known job board. Used
// to suppress the company-from-domain fallback, where "Indeed" would be
// mistaken for the employer.
func IsJobBoardHost(host string) bool {
	host = strings.ToLower(host)
	for _, entry := range platformHosts {
		if strings.Contains(host, entry.host) {
			return true
		}
	}
	return false
}

// siteSelectors is a per-platform selector table. Selectors in each list are
// tried in order; the first non-empty match wins.
type siteSelectors struct {
	title       []string
	company     []string
	location    []string
	description []string
	salary      []string
}

var platformSelectorTables = map[Platform]siteSelectors{
	PlatformLinkedIn: {
		title:       []string{".top-card-layout__title", ".job-details-jobs-unified-top-card__job-title", "h1.topcard__title"},
		company:     []string{".topcard__org-name-link", ".job-details-jobs-unified-top-card__company-name", ".top-card-layout__card a[data-tracking-control-name*='topcard-org']"},
		location:    []string{".topcard__flavor--bullet", ".job-details-jobs-unified-top-card__bullet", ".top-card-layout__second-subline span"},
		description: []string{".show-more-less-html__markup", ".jobs-description__content", ".description__text"},
		salary:      []string{".compensation__salary", ".salary"},
	},
	PlatformIndeed: {
		title:       []string{"h1.jobsearch-JobInfoHeader-title", "[data-testid='jobsearch-JobInfoHeader-title']"},
		company:     []string{"[data-testid='inlineHeader-companyName']", "[data-company-name='true']", ".jobsearch-CompanyInfoContainer a"},
		location:    []string{"[data-testid='inlineHeader-companyLocation']", ".jobsearch-JobInfoHeader-subtitle div:last-child"},
		description: []string{"#jobDescriptionText", ".jobsearch-JobComponent-description"},
		salary:      []string{"#salaryInfoAndJobType .attribute_snippet", "[data-testid='attribute_snippet_testid']"},
	},
	PlatformGlassdoor: {
		title:       []string{"[data-test='job-title']", ".JobDetails_jobTitle__Rw_gn"},
		company:     []string{"[data-test='employer-name']", ".EmployerProfile_employerName__Xemli"},
		location:    []string{"[data-test='location']", ".JobDetails_location__mSg5h"},
		description: []string{".JobDetails_jobDescription__uW_fK", "[data-test='jobDescriptionContent']"},
		salary:      []string{"[data-test='detailSalary']"},
	},
	PlatformGreenhouse: {
		title:       []string{".app-title", ".job__title h1"},
		company:     []string{".company-name", ".job__title .company"},
		location:    []string{".location", ".job__location"},
		description: []string{".job__description.body", ".job__description", "#content"},
	},
	PlatformLever: {
		title:       []string{".posting-headline h2"},
		company:     []string{".main-header-logo img[alt]"},
		location:    []string{".posting-categories .location", ".sort-by-time.posting-category"},
		description: []string{".posting-page .section-wrapper .section:not(.last-section-apply)", ".posting-description"},
	},
	PlatformWorkday: {
		title:       []string{"[data-automation-id='jobPostingHeader']", "h2[data-automation-id='jobPostingHeader']"},
		company:     []string{"[data-automation-id='company']"},
		location:    []string{"[data-automation-id='locations'] dd", "[data-automation-id='location']"},
		description: []string{"[data-automation-id='jobPostingDescription']"},
	},
	PlatformSmartRecruiter: {
		title:       []string{"h1.job-title", ".job-header h1"},
		company:     []string{".job-header .company-name"},
		location:    []string{"[itemprop='jobLocation']", "spl-job-location"},
		description: []string{"[itemprop='description']", ".job-sections"},
	},
	PlatformZipRecruiter: {
		title:       []string{"h1.job_title", "[class*='JobTitle']"},
		company:     []string{".hiring_company_text", "[class*='CompanyName']"},
		location:    []string{".hiring_location", "[class*='Location']"},
		description: []string{".job_description", "[class*='JobDescription']"},
	},
	PlatformMonster: {
		title:       []string{"[data-testid='jobTitle']", "h1.job_title"},
		company:     []string{"[data-testid='company']", ".job_company_name"},
		location:    []string{"[data-testid='jobDetailLocation']", ".location"},
		description: []string{"[data-testid='svx-description-container-inner']", "#JobDescription"},
	},
}

// extractSiteSpecific applies the platform selector table matched by the page
// host. Unknown platforms yield an empty record.
func extractSiteSpecific(doc *goquery.Document, pageURL string) types.JobPosting {
	platform := DetectPlatform(pageURL)
	table, ok := platformSelectorTables[platform]
	if !ok {
		return types.JobPosting{}
	}

	return types.JobPosting{
		Title:           firstText(doc, table.title),
		CompanyName:     firstText(doc, table.company),
		Location:        firstText(doc, table.location),
		DescriptionHTML: firstHTML(doc, table.description),
		Salary:          firstText(doc, table.salary),
	}
}

// firstText returns the trimmed text of the first selector with a non-empty
// match. Image selectors fall back to the alt attribute.
func firstText(doc *goquery.Document, selectors []string) string {
	for _, selector := range selectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		if goquery.NodeName(sel) == "img" {
			if alt, ok := sel.Attr("alt"); ok && strings.TrimSpace(alt) != "" {
				return strings.TrimSpace(alt)
			}
			continue
		}
		if text := strings.TrimSpace(sel.Text()); text != "" {
			return collapseSpaces(text)
		}
	}
	return ""
}

// firstHTML returns the inner HTML of the first selector with non-empty text
// content.
func firstHTML(doc *goquery.Document, selectors []string) string {
	for _, selector := range selectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 || strings.TrimSpace(sel.Text()) == "" {
			continue
		}
		if html, err := sel.Html(); err == nil && strings.TrimSpace(html) != "" {
			return strings.TrimSpace(html)
		}
	}
	return ""
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
