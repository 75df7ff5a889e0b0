package store

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/JoseAndresM/LKND/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testJob(id string, found time.Time) model.Job {
	return model.Job{
		ID:          id,
		Title:       "Mixing Engineer",
		Company:     "Acme",
		Location:    "London, UK",
		URL:         "http://x/" + id,
		Description: "mixing and mastering work",
		Source:      "boardsrc",
		FoundDate:   found,
		Tags:        []string{"Production"},
	}
}

func TestInsertIfAbsent_NewThenDuplicate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	first := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	res, err := s.InsertIfAbsent(ctx, testJob("aaa111", first))
	if err != nil {
		t.Fatalf("first InsertIfAbsent: %v", err)
	}
	if res != model.Inserted {
		t.Fatalf("first insert = %v, want Inserted", res)
	}

	// Re-fetch of the same posting a day later, by a different adapter.
	dup := testJob("aaa111", first.Add(24*time.Hour))
	dup.Source = "feedsrc"
	res, err = s.InsertIfAbsent(ctx, dup)
	if err != nil {
		t.Fatalf("duplicate InsertIfAbsent: %v", err)
	}
	if res != model.AlreadyExists {
		t.Fatalf("duplicate insert = %v, want AlreadyExists", res)
	}

	jobs, err := s.RecordsSince(ctx, time.Time{})
	if err != nil {
		t.Fatalf("RecordsSince: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("stored records = %d, want 1", len(jobs))
	}
	if !jobs[0].FoundDate.Equal(first) {
		t.Errorf("FoundDate = %v, want first-seen time %v", jobs[0].FoundDate, first)
	}
	if jobs[0].Source != "boardsrc" {
		t.Errorf("Source = %q, want the first adapter kept", jobs[0].Source)
	}
}

func TestRecordsSince_WindowAndOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	// Insert out of chronological order on purpose.
	for _, j := range []model.Job{
		testJob("ccc333", base.Add(48 * time.Hour)),
		testJob("aaa111", base),
		testJob("bbb222", base.Add(24 * time.Hour)),
	} {
		if _, err := s.InsertIfAbsent(ctx, j); err != nil {
			t.Fatalf("InsertIfAbsent(%s): %v", j.ID, err)
		}
	}

	jobs, err := s.RecordsSince(ctx, base.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("RecordsSince: %v", err)
	}
	var ids []string
	for _, j := range jobs {
		ids = append(ids, j.ID)
	}
	if !reflect.DeepEqual(ids, []string{"bbb222", "ccc333"}) {
		t.Errorf("RecordsSince ids = %v, want [bbb222 ccc333]", ids)
	}
}

func TestRecentRecords_NewestFirstCapped(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"aaa111", "bbb222", "ccc333"} {
		if _, err := s.InsertIfAbsent(ctx, testJob(id, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("InsertIfAbsent(%s): %v", id, err)
		}
	}

	jobs, err := s.RecentRecords(ctx, 2)
	if err != nil {
		t.Fatalf("RecentRecords: %v", err)
	}
	var ids []string
	for _, j := range jobs {
		ids = append(ids, j.ID)
	}
	if !reflect.DeepEqual(ids, []string{"ccc333", "bbb222"}) {
		t.Errorf("RecentRecords ids = %v, want newest two", ids)
	}
}

func TestTagsRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	j := testJob("ddd444", time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	j.Tags = []string{"Production", "Live Events"}
	if _, err := s.InsertIfAbsent(ctx, j); err != nil {
		t.Fatalf("InsertIfAbsent: %v", err)
	}

	jobs, err := s.RecordsSince(ctx, time.Time{})
	if err != nil {
		t.Fatalf("RecordsSince: %v", err)
	}
	if !reflect.DeepEqual(jobs[0].Tags, []string{"Production", "Live Events"}) {
		t.Errorf("Tags = %v, want round-tripped", jobs[0].Tags)
	}
}

func TestSearchDescriptions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	found := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	a := testJob("eee555", found)
	a.Description = "analog mastering chain and tape machines"
	b := testJob("fff666", found)
	b.Description = "booking tours across Europe"
	for _, j := range []model.Job{a, b} {
		if _, err := s.InsertIfAbsent(ctx, j); err != nil {
			t.Fatalf("InsertIfAbsent: %v", err)
		}
	}

	hits, err := s.SearchDescriptions(ctx, "mastering", 10)
	if err != nil {
		t.Fatalf("SearchDescriptions: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != "eee555" {
		t.Errorf("hits = %+v, want only eee555", hits)
	}
}

func TestCounters_Accumulate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	deltas := []model.CountDelta{
		{Bucket: "total", Key: "all", N: 2},
		{Bucket: "category", Key: "Production", N: 2},
		{Bucket: "category", Key: "Media", N: 1},
	}
	if err := s.AddCounts(ctx, deltas); err != nil {
		t.Fatalf("first AddCounts: %v", err)
	}
	if err := s.AddCounts(ctx, []model.CountDelta{
		{Bucket: "category", Key: "Production", N: 3},
	}); err != nil {
		t.Fatalf("second AddCounts: %v", err)
	}

	got, err := s.CounterSnapshot(ctx, "category")
	if err != nil {
		t.Fatalf("CounterSnapshot: %v", err)
	}
	want := map[string]int{"Production": 5, "Media": 1}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("category counters = %v, want %v", got, want)
	}

	total, err := s.CounterSnapshot(ctx, "total")
	if err != nil {
		t.Fatalf("CounterSnapshot total: %v", err)
	}
	if total["all"] != 2 {
		t.Errorf("total/all = %d, want 2", total["all"])
	}
}

func TestSourceMeta_Upsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.UpdateSourceMeta(ctx, "boardsrc", 12, "run-1"); err != nil {
		t.Fatalf("first UpdateSourceMeta: %v", err)
	}
	if err := s.UpdateSourceMeta(ctx, "boardsrc", 7, "run-2"); err != nil {
		t.Fatalf("second UpdateSourceMeta: %v", err)
	}

	meta, err := s.SourceMeta(ctx)
	if err != nil {
		t.Fatalf("SourceMeta: %v", err)
	}
	if len(meta) != 1 {
		t.Fatalf("meta rows = %d, want 1", len(meta))
	}
	if meta[0].JobsFound != 7 || meta[0].LastRunID != "run-2" {
		t.Errorf("meta = %+v, want latest values", meta[0])
	}
}
