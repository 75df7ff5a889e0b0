package store

import (
	"context"
	"testing"
	"time"

	"github.com/JoseAndresM/LKND/internal/model"
)

func TestMemoryStore_DedupMatchesSQLite(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	j := testJob("aaa111", time.Now())

	res, err := s.InsertIfAbsent(ctx, j)
	if err != nil || res != model.Inserted {
		t.Fatalf("first insert = (%v, %v), want Inserted", res, err)
	}
	res, err = s.InsertIfAbsent(ctx, j)
	if err != nil || res != model.AlreadyExists {
		t.Fatalf("second insert = (%v, %v), want AlreadyExists", res, err)
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
}

func TestMemoryStore_RecordsSinceAndMeta(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	now := time.Now().UTC()

	for _, j := range []model.Job{
		testJob("aaa111", now.Add(-48*time.Hour)),
		testJob("bbb222", now),
	} {
		if _, err := s.InsertIfAbsent(ctx, j); err != nil {
			t.Fatalf("InsertIfAbsent(%s): %v", j.ID, err)
		}
	}

	recent, err := s.RecordsSince(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("RecordsSince: %v", err)
	}
	if len(recent) != 1 || recent[0].ID != "bbb222" {
		t.Errorf("RecordsSince = %v, want just bbb222", recent)
	}

	if err := s.UpdateSourceMeta(ctx, "boards/soundbetter", 4, "run-1"); err != nil {
		t.Fatalf("UpdateSourceMeta: %v", err)
	}
	row, ok := s.meta["boards/soundbetter"]
	if !ok {
		t.Fatal("meta row not recorded")
	}
	if row.JobsFound != 4 || row.LastRunID != "run-1" {
		t.Errorf("meta row = %+v, want JobsFound=4 LastRunID=run-1", row)
	}
}

func TestMemoryStore_Counters(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.AddCounts(ctx, []model.CountDelta{{Bucket: "total", Key: "all", N: 3}}); err != nil {
		t.Fatalf("AddCounts: %v", err)
	}
	if err := s.AddCounts(ctx, []model.CountDelta{{Bucket: "total", Key: "all", N: 2}}); err != nil {
		t.Fatalf("AddCounts: %v", err)
	}
	snap, err := s.CounterSnapshot(ctx, "total")
	if err != nil {
		t.Fatalf("CounterSnapshot: %v", err)
	}
	if snap["all"] != 5 {
		t.Errorf("total/all = %d, want 5", snap["all"])
	}
}
