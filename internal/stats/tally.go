package stats

import (
	"sort"
	"strings"
)

// LocationKey reduces a free-text location to its first comma-delimited
// segment, so "London, UK" and "London, England" count together.
func LocationKey(location string) string {
	seg, _, _ := strings.Cut(location, ",")
	return strings.TrimSpace(seg)
}

// KV is one key with its count, as produced by Top.
type KV struct {
	Key string
	N   int
}

// Tally counts string keys while remembering first-appearance order, so
// Top breaks count ties deterministically by who showed up first.
type Tally struct {
	counts map[string]int
	order  []string
}

func NewTally() *Tally {
	return &Tally{counts: make(map[string]int)}
}

func (t *Tally) Add(key string) {
	if _, ok := t.counts[key]; !ok {
		t.order = append(t.order, key)
	}
	t.counts[key]++
}

// Get returns the count for key, zero when never added.
func (t *Tally) Get(key string) int {
	return t.counts[key]
}

// Distinct reports how many different keys were added.
func (t *Tally) Distinct() int {
	return len(t.counts)
}

// Top returns up to n entries ordered by count descending, ties broken by
// first appearance.
func (t *Tally) Top(n int) []KV {
	out := make([]KV, 0, len(t.order))
	for _, k := range t.order {
		out = append(out, KV{Key: k, N: t.counts[k]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].N > out[j].N })
	if n < len(out) {
		out = out[:n]
	}
	return out
}

// TopOfMap is Top for a bare counter map (persisted snapshots carry no
// appearance order); ties are broken by key instead.
func TopOfMap(m map[string]int, n int) []KV {
	out := make([]KV, 0, len(m))
	for k, v := range m {
		out = append(out, KV{Key: k, N: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].N != out[j].N {
			return out[i].N > out[j].N
		}
		return out[i].Key < out[j].Key
	})
	if n < len(out) {
		out = out[:n]
	}
	return out
}
