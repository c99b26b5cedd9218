// Package types provides type definitions for structured data used throughout the apply-agent system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "strings"

// DefaultDescriptionMaxLength is the cap applied to job descriptions before
// they are carried in an ApplicationRecord.
const DefaultDescriptionMaxLength = 5000

// TruncationMarker is appended to descriptions cut at the length cap.
const TruncationMarker = "..."

// JobPosting represents a normalized job posting extracted from a page.
// All fields are optional; absence is the empty string, never a null marker,
// so records from different extraction passes merge cleanly. A JobPosting is
// immutable once produced: later extraction passes supersede it with a new
// value instead of mutating it.
type JobPosting struct {
	Title           string `json:"title"`
	CompanyName     string `json:"company_name"`
	Location        string `json:"location"`
	DescriptionHTML string `json:"description_html"`
	Salary          string `json:"salary"`
	EmploymentType  string `json:"employment_type"`
}

// IsEmpty reports whether no field of the posting carries a value.
func (j JobPosting) IsEmpty() bool {
	return j.Title == "" && j.CompanyName == "" && j.Location == "" &&
		j.DescriptionHTML == "" && j.Salary == "" && j.EmploymentType == ""
}

// CoreComplete reports whether the posting carries the three fields that make
// a record usable on its own: title, company and description.
func (j JobPosting) CoreComplete() bool {
	return j.Title != "" && j.CompanyName != "" && j.DescriptionHTML != ""
}

// Merge combines two postings field-by-field, preferring j's values and
// filling gaps from other. Neither input is mutated.
func (j JobPosting) Merge(other JobPosting) JobPosting {
	pick := func(a, b string) string {
		if strings.TrimSpace(a) != "" {
			return a
		}
		return b
	}
	return JobPosting{
		Title:           pick(j.Title, other.Title),
		CompanyName:     pick(j.CompanyName, other.CompanyName),
		Location:        pick(j.Location, other.Location),
		DescriptionHTML: pick(j.DescriptionHTML, other.DescriptionHTML),
		Salary:          pick(j.Salary, other.Salary),
		EmploymentType:  pick(j.EmploymentType, other.EmploymentType),
	}
}
