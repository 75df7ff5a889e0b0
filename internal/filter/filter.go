package filter

import (
	"strings"

	"github.com/JoseAndresM/LKND/internal/model"
)

// CriteriaFilter evaluates the user's configured criteria over a record.
// Four stages, AND-combined: keyword inclusion, keyword exclusion, location,
// job type. Matching is case-insensitive substring containment and empty
// lists are treated as "match all" (or "exclude nothing").
type CriteriaFilter struct {
	keywords  []string
	excluded  []string
	locations []string
	jobTypes  []string
}

var _ model.Filter = (*CriteriaFilter)(nil)

// NewCriteriaFilter returns a filter over the four criteria lists. A literal
// "remote" entry in locations turns the location stage into a pass-through.
func NewCriteriaFilter(keywords, excluded, locations, jobTypes []string) *CriteriaFilter {
	return &CriteriaFilter{
		keywords:  keywords,
		excluded:  excluded,
		locations: locations,
		jobTypes:  jobTypes,
	}
}

// Match reports whether the job passes every configured stage. Keyword
// stages scan title, company and description together. When job_types is
// configured, a record without a job_type is excluded.
func (f *CriteriaFilter) Match(job model.Job) bool {
	text := strings.ToLower(job.Title + " " + job.Company + " " + job.Description)

	if len(f.keywords) > 0 {
		matched := false
		for _, kw := range f.keywords {
			if strings.Contains(text, strings.ToLower(kw)) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	for _, kw := range f.excluded {
		if strings.Contains(text, strings.ToLower(kw)) {
			return false
		}
	}

	if len(f.locations) > 0 && !f.remoteConfigured() {
		locationLower := strings.ToLower(job.Location)
		matched := false
		for _, loc := range f.locations {
			if strings.Contains(locationLower, strings.ToLower(loc)) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if len(f.jobTypes) > 0 {
		if job.JobType == "" {
			return false
		}
		jtLower := strings.ToLower(job.JobType)
		matched := false
		for _, jt := range f.jobTypes {
			if strings.Contains(jtLower, strings.ToLower(jt)) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	return true
}

func (f *CriteriaFilter) remoteConfigured() bool {
	for _, loc := range f.locations {
		if strings.EqualFold(loc, "remote") {
			return true
		}
	}
	return false
}
