// Package stats maintains the aggregate counters over inserted records.
package stats

import (
	"context"

	"github.com/JoseAndresM/LKND/internal/model"
)

// Counter bucket names as persisted in the store.
const (
	BucketTotal     = "total"
	BucketCategory  = "category"
	BucketLocation  = "location"
	BucketCompany   = "company"
	BucketDay       = "day"
	BucketDaySource = "day_source"

	KeyAll = "all"
)

// DayLayout is the key format of the per-day buckets.
const DayLayout = "2006-01-02"

// DaySourceKey builds the nested per-source key of the day_source bucket.
func DaySourceKey(day, source string) string {
	return day + "|" + source
}

type delta struct {
	bucket, key string
}

// Counts accumulates counter increments in memory during a cycle and
// flushes them to the store at the cycle boundary. Record must be driven
// off Inserted results only; that is what keeps re-fetches of known
// postings from double-counting.
type Counts struct {
	store   model.CounterStore
	pending map[delta]int
	order   []delta // flush order follows first increment
}

var _ model.Aggregator = (*Counts)(nil)

func NewCounts(store model.CounterStore) *Counts {
	return &Counts{
		store:   store,
		pending: make(map[delta]int),
	}
}

// Record increments every counter the job contributes to: the running
// total, one per tag, the first comma segment of the location, the
// company, and the per-day bucket with its nested per-source count.
func (c *Counts) Record(job model.Job) {
	c.add(BucketTotal, KeyAll)
	for _, tag := range job.Tags {
		c.add(BucketCategory, tag)
	}
	c.add(BucketLocation, LocationKey(job.Location))
	c.add(BucketCompany, job.Company)

	day := job.FoundDate.Format(DayLayout)
	c.add(BucketDay, day)
	c.add(BucketDaySource, DaySourceKey(day, job.Source))
}

func (c *Counts) add(bucket, key string) {
	d := delta{bucket, key}
	if _, ok := c.pending[d]; !ok {
		c.order = append(c.order, d)
	}
	c.pending[d]++
}

// Pending reports how many distinct counters have unflushed increments.
func (c *Counts) Pending() int {
	return len(c.pending)
}

// Flush persists the accumulated increments in one transaction and resets
// the in-memory state. On failure the increments stay pending, so the next
// flush retries them.
func (c *Counts) Flush(ctx context.Context) error {
	if len(c.pending) == 0 {
		return nil
	}
	deltas := make([]model.CountDelta, 0, len(c.order))
	for _, d := range c.order {
		deltas = append(deltas, model.CountDelta{Bucket: d.bucket, Key: d.key, N: c.pending[d]})
	}
	if err := c.store.AddCounts(ctx, deltas); err != nil {
		return err
	}
	c.pending = make(map[delta]int)
	c.order = nil
	return nil
}
