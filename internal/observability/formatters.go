package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/apply-agent/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose CLI mode.
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer.
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintJobPosting outputs a human-readable summary of an extracted posting.
func (p *Printer) PrintJobPosting(job types.JobPosting) {
	var b strings.Builder
	fmt.Fprintf(&b, "Title:    %s\n", orDash(job.Title))
	fmt.Fprintf(&b, "Company:  %s\n", orDash(job.CompanyName))
	fmt.Fprintf(&b, "Location: %s\n", orDash(job.Location))
	fmt.Fprintf(&b, "Salary:   %s\n", orDash(job.Salary))
	fmt.Fprintf(&b, "Type:     %s\n", orDash(job.EmploymentType))
	fmt.Fprintf(&b, "Description: %d chars", len(job.DescriptionHTML))
	p.printBox("Job Posting", b.String())
}

// PrintQuestions outputs the currently detected questions, truncated to the
// display limit.
func (p *Printer) PrintQuestions(questions []types.Question) {
	var b strings.Builder
	for i, q := range questions {
		if i >= maxItemsToShow {
			fmt.Fprintf(&b, "... and %d more", len(questions)-maxItemsToShow)
			break
		}
		marker := " "
		if q.Answer != "" {
			marker = "*"
		}
		fmt.Fprintf(&b, "%s [%s] %s\n", marker, q.Category, q.Text)
	}
	if len(questions) == 0 {
		b.WriteString("none detected")
	}
	p.printBox(fmt.Sprintf("Questions (%d)", len(questions)), b.String())
}

// PrintFillResults outputs the per-question outcomes of an auto-fill run.
func (p *Printer) PrintFillResults(results map[string]string) {
	var b strings.Builder
	shown := 0
	for question, outcome := range results {
		if shown >= maxItemsToShow {
			fmt.Fprintf(&b, "... and %d more", len(results)-maxItemsToShow)
			break
		}
		fmt.Fprintf(&b, "%-30.30s %s\n", question, outcome)
		shown++
	}
	if len(results) == 0 {
		b.WriteString("nothing filled")
	}
	p.printBox("Auto-Fill Results", b.String())
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
