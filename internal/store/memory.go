package store

import (
	"context"
	"sync"
	"time"

	"github.com/JoseAndresM/LKND/internal/model"
)

// MemoryStore keeps records in memory with the same insert-if-absent
// semantics as the SQLite store. Used for dry runs and tests; everything
// is gone when the process exits.
type MemoryStore struct {
	mu     sync.Mutex
	jobs   []model.Job
	byID   map[string]struct{}
	counts map[string]map[string]int
	meta   map[string]SourceMetaRow
}

var (
	_ model.Store        = (*MemoryStore)(nil)
	_ model.CounterStore = (*MemoryStore)(nil)
)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:   make(map[string]struct{}),
		counts: make(map[string]map[string]int),
		meta:   make(map[string]SourceMetaRow),
	}
}

func (s *MemoryStore) InsertIfAbsent(_ context.Context, job model.Job) (model.InsertResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[job.ID]; ok {
		return model.AlreadyExists, nil
	}
	s.byID[job.ID] = struct{}{}
	s.jobs = append(s.jobs, job)
	return model.Inserted, nil
}

func (s *MemoryStore) RecordsSince(_ context.Context, cutoff time.Time) ([]model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Job
	for _, j := range s.jobs {
		if !j.FoundDate.Before(cutoff) {
			out = append(out, j)
		}
	}
	return out, nil
}

func (s *MemoryStore) UpdateSourceMeta(_ context.Context, source string, found int, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.meta[source] = SourceMetaRow{
		Source:      source,
		LastScraped: time.Now(),
		JobsFound:   found,
		LastRunID:   runID,
	}
	return nil
}

func (s *MemoryStore) AddCounts(_ context.Context, deltas []model.CountDelta) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range deltas {
		bucket := s.counts[d.Bucket]
		if bucket == nil {
			bucket = make(map[string]int)
			s.counts[d.Bucket] = bucket
		}
		bucket[d.Key] += d.N
	}
	return nil
}

func (s *MemoryStore) CounterSnapshot(_ context.Context, bucket string) (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int, len(s.counts[bucket]))
	for k, v := range s.counts[bucket] {
		out[k] = v
	}
	return out, nil
}

// Len reports how many records are stored.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}
