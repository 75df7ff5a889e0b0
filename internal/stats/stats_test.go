package stats

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/JoseAndresM/LKND/internal/model"
)

// recordingCounterStore captures flushed deltas.
type recordingCounterStore struct {
	flushed [][]model.CountDelta
	err     error
}

func (r *recordingCounterStore) AddCounts(_ context.Context, deltas []model.CountDelta) error {
	if r.err != nil {
		return r.err
	}
	r.flushed = append(r.flushed, deltas)
	return nil
}

func (r *recordingCounterStore) CounterSnapshot(context.Context, string) (map[string]int, error) {
	return nil, nil
}

func TestCounts_RecordAndFlush(t *testing.T) {
	rec := &recordingCounterStore{}
	c := NewCounts(rec)
	found := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	c.Record(model.Job{
		Company:   "Acme",
		Location:  "London, UK",
		Source:    "boardsrc",
		FoundDate: found,
		Tags:      []string{"Production", "Live Events"},
	})
	c.Record(model.Job{
		Company:   "Acme",
		Location:  "London, England",
		Source:    "feedsrc",
		FoundDate: found,
		Tags:      []string{"Production"},
	})

	if err := c.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if len(rec.flushed) != 1 {
		t.Fatalf("flushes = %d, want 1", len(rec.flushed))
	}

	got := make(map[string]int)
	for _, d := range rec.flushed[0] {
		got[d.Bucket+"/"+d.Key] = d.N
	}
	want := map[string]int{
		"total/all":                  2,
		"category/Production":        2,
		"category/Live Events":       1,
		"location/London":            2,
		"company/Acme":               2,
		"day/2025-03-01":             2,
		"day_source/2025-03-01|boardsrc": 1,
		"day_source/2025-03-01|feedsrc":  1,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("flushed deltas = %v, want %v", got, want)
	}
}

func TestCounts_FlushResets(t *testing.T) {
	rec := &recordingCounterStore{}
	c := NewCounts(rec)
	c.Record(model.Job{Company: "Acme", Location: "Remote", Source: "s", FoundDate: time.Now(), Tags: []string{"Other"}})

	if err := c.Flush(context.Background()); err != nil {
		t.Fatalf("first Flush: %v", err)
	}
	if c.Pending() != 0 {
		t.Errorf("Pending after flush = %d, want 0", c.Pending())
	}
	// An empty flush must not touch the store.
	if err := c.Flush(context.Background()); err != nil {
		t.Fatalf("empty Flush: %v", err)
	}
	if len(rec.flushed) != 1 {
		t.Errorf("flushes = %d, want 1", len(rec.flushed))
	}
}

func TestCounts_FailedFlushKeepsPending(t *testing.T) {
	rec := &recordingCounterStore{err: errors.New("disk full")}
	c := NewCounts(rec)
	c.Record(model.Job{Company: "Acme", Location: "Remote", Source: "s", FoundDate: time.Now(), Tags: []string{"Other"}})

	if err := c.Flush(context.Background()); err == nil {
		t.Fatal("Flush: expected error")
	}
	if c.Pending() == 0 {
		t.Error("pending increments were lost on failed flush")
	}

	rec.err = nil
	if err := c.Flush(context.Background()); err != nil {
		t.Fatalf("retry Flush: %v", err)
	}
	if len(rec.flushed) != 1 || c.Pending() != 0 {
		t.Errorf("retry did not deliver the pending increments")
	}
}

func TestLocationKey(t *testing.T) {
	tests := []struct{ in, want string }{
		{"London, UK", "London"},
		{"Remote", "Remote"},
		{" Berlin , Germany", "Berlin"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := LocationKey(tt.in); got != tt.want {
			t.Errorf("LocationKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTally_TopOrderAndTies(t *testing.T) {
	ta := NewTally()
	for _, k := range []string{"London", "Berlin", "London", "Remote", "Berlin", "London", "Remote"} {
		ta.Add(k)
	}
	// London 3, Berlin 2, Remote 2; Berlin appeared before Remote.
	got := ta.Top(3)
	want := []KV{{"London", 3}, {"Berlin", 2}, {"Remote", 2}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Top = %v, want %v", got, want)
	}
	if ta.Distinct() != 3 {
		t.Errorf("Distinct = %d, want 3", ta.Distinct())
	}
}

func TestTopOfMap(t *testing.T) {
	got := TopOfMap(map[string]int{"b": 2, "a": 2, "c": 5}, 2)
	want := []KV{{"c", 5}, {"a", 2}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TopOfMap = %v, want %v", got, want)
	}
}
