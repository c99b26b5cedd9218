package extract

import "strings"

// employmentVocabulary maps free-text keywords onto the closed employment
// type vocabulary. Order matters: more specific keywords are checked first
// ("part-time" before the bare "time" family, "internship" before "intern").
var employmentVocabulary = []struct {
	keyword   string
	canonical string
}{
	{"part-time", "Part-time"},
	{"part time", "Part-time"},
	{"part_time", "Part-time"},
	{"parttime", "Part-time"},
	{"full-time", "Full-time"},
	{"full time", "Full-time"},
	{"full_time", "Full-time"},
	{"fulltime", "Full-time"},
	{"permanent", "Full-time"},
	{"intern", "Internship"},
	{"contract", "Contract"},
	{"temporary", "Temporary"},
	{"temp", "Temporary"},
	{"seasonal", "Seasonal"},
	{"freelance", "Freelance"},
}

// NormalizeEmploymentType maps free text onto the closed vocabulary by
// keyword containment. Unrecognized text is returned trimmed but otherwise
// unchanged, so uncommon arrangements are not silently dropped.
func NormalizeEmploymentType(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	lower := strings.ToLower(trimmed)
	for _, entry := range employmentVocabulary {
		if strings.Contains(lower, entry.keyword) {
			return entry.canonical
		}
	}
	return trimmed
}

// truncationMarker matches the marker used by the original system.
const truncationMarker = "..."

// SmartTruncate caps s at max bytes, cutting at a word or sentence boundary
// rather than mid-word, and appends the truncation marker. Strings within the
// cap are returned unchanged.
func SmartTruncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}

	budget := max - len(truncationMarker)
	if budget <= 0 {
		return truncationMarker[:max]
	}
	cut := s[:budget]

	// Prefer ending on a sentence; fall back to the last word boundary.
	if idx := strings.LastIndexAny(cut, ".!?"); idx > budget/2 {
		cut = cut[:idx+1]
	} else if idx := strings.LastIndexAny(cut, " \t\n"); idx > 0 {
		cut = cut[:idx]
	}

	return strings.TrimRight(cut, " \t\n") + truncationMarker
}
