package normalize

import "regexp"

// Salary patterns in priority order: range-with-currency forms before bare
// amounts, US dollar forms before other currencies. The first pattern that
// matches anywhere in the text wins.
var salaryPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\$[\d,]+\s*-\s*\$[\d,]+(?:\s*(?:per|/)\s*(?:year|yr|annual))?`),
	regexp.MustCompile(`(?i)\$[\d,]+(?:\s*(?:per|/)\s*(?:year|yr|annual))`),
	regexp.MustCompile(`(?i)[\d,]+\s*-\s*[\d,]+\s*(?:EUR|GBP|USD)`),
	regexp.MustCompile(`(?i)\$[\d,]+(?:\s*(?:per|/)\s*(?:hour|hr))`),
	regexp.MustCompile(`£[\d,]+\s*-\s*£[\d,]+`),
}

// ExtractSalary scans text against the ordered salary patterns and returns
// the first match, or "" when none apply.
func ExtractSalary(text string) string {
	for _, p := range salaryPatterns {
		if m := p.FindString(text); m != "" {
			return m
		}
	}
	return ""
}
