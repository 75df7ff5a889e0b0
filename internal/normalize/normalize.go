// Package normalize turns raw adapter output into canonical job records.
package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/JoseAndresM/LKND/internal/model"
)

// MaxDescriptionLen caps stored description length, in runes.
const MaxDescriptionLen = 500

// MakeID derives the stable record identity from title, company and URL.
// Title and company are lowercased first so casing differences between
// adapters collapse to one record. The SHA-256 digest is truncated to
// 16 hex characters (64 bits); collision odds stay negligible at the
// expected volumes of 10^3 to 10^5 records per day.
func MakeID(title, company, url string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(title) + strings.ToLower(company) + url))
	return hex.EncodeToString(sum[:])[:16]
}

// Normalize converts one raw field bag into a Job. Title and URL are
// required; a record missing either is dropped with a NormalizeError.
// Absent company and location fall back to the sentinel values, and the
// salary is pattern-extracted from the text when the source gave none.
// FoundDate is set to now; the store keeps the first value forever.
func Normalize(raw model.RawJob, source string, now time.Time) (model.Job, error) {
	title := strings.TrimSpace(raw[model.FieldTitle])
	if title == "" {
		return model.Job{}, &model.NormalizeError{Field: model.FieldTitle}
	}
	url := strings.TrimSpace(raw[model.FieldURL])
	if url == "" {
		return model.Job{}, &model.NormalizeError{Field: model.FieldURL}
	}

	company := strings.TrimSpace(raw[model.FieldCompany])
	if company == "" {
		company = model.UnknownCompany
	}
	location := strings.TrimSpace(raw[model.FieldLocation])
	if location == "" {
		location = model.UnspecifiedLocation
	}

	description := ClipDescription(strings.TrimSpace(raw[model.FieldDescription]))

	salary := strings.TrimSpace(raw[model.FieldSalary])
	if salary == "" {
		salary = ExtractSalary(description + " " + title)
	}

	return model.Job{
		ID:          MakeID(title, company, url),
		Title:       title,
		Company:     company,
		Location:    location,
		URL:         url,
		Description: description,
		Salary:      salary,
		JobType:     strings.TrimSpace(raw[model.FieldJobType]),
		PostedDate:  strings.TrimSpace(raw[model.FieldPostedDate]),
		Source:      source,
		FoundDate:   now,
	}, nil
}

// ClipDescription truncates s to MaxDescriptionLen runes.
func ClipDescription(s string) string {
	runes := []rune(s)
	if len(runes) <= MaxDescriptionLen {
		return s
	}
	return string(runes[:MaxDescriptionLen])
}
