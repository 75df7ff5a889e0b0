package model

import (
	"context"
	"time"
)

// Sentinel values stored when a source does not provide the field.
const (
	UnknownCompany      = "Unknown"
	UnspecifiedLocation = "Not specified"
)

// Job is the canonical record for one posting, deduplicated across sources.
type Job struct {
	ID          string    // content-derived, stable across adapters and days
	Title       string    // job title
	Company     string    // company name, UnknownCompany when absent
	Location    string    // free text, UnspecifiedLocation when absent
	URL         string    // absolute link to the posting
	Description string    // possibly empty, clipped by the adapter
	Salary      string    // extracted via pattern match, empty when none
	JobType     string    // e.g. "Remote", empty when unknown
	PostedDate  string    // ISO date from the source, empty when unknown
	Source      string    // adapter name that produced the record
	FoundDate   time.Time // first local observation, set once
	Tags        []string  // category labels, never empty after classification
}

// RawJob is the untyped field bag a source adapter produces. The normalizer
// turns it into a Job; adapters only agree on the key names below.
type RawJob map[string]string

// Well-known RawJob keys.
const (
	FieldTitle       = "title"
	FieldCompany     = "company"
	FieldLocation    = "location"
	FieldURL         = "url"
	FieldDescription = "description"
	FieldSalary      = "salary"
	FieldJobType     = "job_type"
	FieldPostedDate  = "posted_date"
)

// Source fetches raw candidate records from one upstream origin.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]RawJob, error)
}

// InsertResult is the outcome of an insert-if-absent attempt.
type InsertResult int

const (
	// Inserted means the record was new and is now persisted.
	Inserted InsertResult = iota
	// AlreadyExists means a record with the same ID was stored earlier.
	// It is the dedup signal, not an error.
	AlreadyExists
)

// Store persists job records with at-most-once semantics per ID.
type Store interface {
	// InsertIfAbsent atomically inserts the record unless its ID is already
	// present. A duplicate never modifies the stored row, found_date included.
	InsertIfAbsent(ctx context.Context, job Job) (InsertResult, error)
	// RecordsSince returns records first seen at or after the cutoff, oldest first.
	RecordsSince(ctx context.Context, cutoff time.Time) ([]Job, error)
	// UpdateSourceMeta records when a source was last scraped and how many
	// records it yielded.
	UpdateSourceMeta(ctx context.Context, source string, found int, runID string) error
}

// CountDelta is one pending counter increment.
type CountDelta struct {
	Bucket string
	Key    string
	N      int
}

// CounterStore persists aggregate counters alongside the job records.
type CounterStore interface {
	AddCounts(ctx context.Context, deltas []CountDelta) error
	CounterSnapshot(ctx context.Context, bucket string) (map[string]int, error)
}

// Aggregator maintains running counts over newly inserted records.
type Aggregator interface {
	// Record is called exactly once per Inserted result.
	Record(job Job)
	// Flush persists accumulated increments at a cycle boundary.
	Flush(ctx context.Context) error
}

// Filter decides whether a job matches the user's criteria.
type Filter interface {
	Match(job Job) bool
}

// Tagger assigns category labels from the taxonomy.
type Tagger interface {
	Tags(job Job) []string
}

// Notifier delivers new-job batches and standalone report texts.
type Notifier interface {
	Notify(ctx context.Context, jobs []Job) error
	Send(ctx context.Context, text string) error
}
