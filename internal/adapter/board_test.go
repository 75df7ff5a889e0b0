package adapter

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/JoseAndresM/LKND/internal/config"
	"github.com/JoseAndresM/LKND/internal/model"
)

const listingPage = `<html><body>
<div class="job-item">
	<h3 class="job-title">Mixing Engineer</h3>
	<div class="company-name">Abbey Road Studios</div>
	<div class="location">London, UK</div>
	<div class="posted-date">Posted 3 days ago</div>
	<a class="job-link" href="/jobs/mixing-engineer">View</a>
</div>
<div class="job-item">
	<h3 class="job-title">Label Manager</h3>
	<div class="location">Remote - Europe</div>
	<a class="job-link" href="https://other.example.com/jobs/77">View</a>
</div>
<div class="job-item">
	<div class="company-name">No Title Records</div>
	<a class="job-link" href="/jobs/broken">View</a>
</div>
</body></html>`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSelectors() config.SelectorConfig {
	return config.SelectorConfig{
		Container: "div.job-item",
		Title:     "h3.job-title",
		Company:   "div.company-name",
		Location:  "div.location",
		Link:      "a.job-link",
		Posted:    "div.posted-date",
	}
}

func newTestBoard(srvURL string, maxJobs int) *Board {
	src := config.SourceConfig{
		Name:      "testboard",
		URL:       srvURL,
		Selectors: testSelectors(),
	}
	b := NewBoard(src, maxJobs, newTestClient(), discardLogger())
	b.now = func() time.Time {
		return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	}
	return b
}

func TestBoardFetch_ExtractsCards(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(listingPage))
	}))
	defer srv.Close()

	jobs, err := newTestBoard(srv.URL, 50).Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs (card without title skipped), got %d", len(jobs))
	}

	first := jobs[0]
	if first[model.FieldTitle] != "Mixing Engineer" {
		t.Errorf("expected title Mixing Engineer, got %q", first[model.FieldTitle])
	}
	if first[model.FieldCompany] != "Abbey Road Studios" {
		t.Errorf("expected company Abbey Road Studios, got %q", first[model.FieldCompany])
	}
	if first[model.FieldLocation] != "London, UK" {
		t.Errorf("expected location London, UK, got %q", first[model.FieldLocation])
	}
	if want := srv.URL + "/jobs/mixing-engineer"; first[model.FieldURL] != want {
		t.Errorf("expected relative link resolved to %q, got %q", want, first[model.FieldURL])
	}
	if first[model.FieldPostedDate] != "2026-03-07" {
		t.Errorf("expected posted date 2026-03-07, got %q", first[model.FieldPostedDate])
	}
	if _, ok := first[model.FieldJobType]; ok {
		t.Errorf("expected no job_type for on-site role, got %q", first[model.FieldJobType])
	}

	second := jobs[1]
	if _, ok := second[model.FieldCompany]; ok {
		t.Errorf("expected no company key when the element is absent, got %q", second[model.FieldCompany])
	}
	if second[model.FieldURL] != "https://other.example.com/jobs/77" {
		t.Errorf("expected absolute link kept as-is, got %q", second[model.FieldURL])
	}
	if second[model.FieldJobType] != "Remote" {
		t.Errorf("expected job_type Remote, got %q", second[model.FieldJobType])
	}
}

func TestBoardFetch_CapsContainers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(listingPage))
	}))
	defer srv.Close()

	jobs, err := newTestBoard(srv.URL, 1).Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected 1 job with cap 1, got %d", len(jobs))
	}
}

func TestBoardFetch_DetailPageDescription(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<div class="job-item">
			<h3 class="job-title">Studio Assistant</h3>
			<a class="job-link" href="/jobs/1">View</a>
		</div>`))
	})
	mux.HandleFunc("/jobs/1", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><div class="job-description">Assist with
			tracking sessions and tape transfers.</div></body></html>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	b := newTestBoard(srv.URL, 50)
	b.sel.Detail = "div.job-description"

	jobs, err := b.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected 1 job, got %d", len(jobs))
	}
	want := "Assist with tracking sessions and tape transfers."
	if jobs[0][model.FieldDescription] != want {
		t.Errorf("expected detail description %q, got %q", want, jobs[0][model.FieldDescription])
	}
}

func TestBoardFetch_DetailPageFailureKeepsListing(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<div class="job-item">
			<h3 class="job-title">Studio Assistant</h3>
			<div class="summary">Short listing blurb.</div>
			<a class="job-link" href="/jobs/1">View</a>
		</div>`))
	})
	mux.HandleFunc("/jobs/1", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	b := newTestBoard(srv.URL, 50)
	b.sel.Description = "div.summary"
	b.sel.Detail = "div.job-description"

	jobs, err := b.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if jobs[0][model.FieldDescription] != "Short listing blurb." {
		t.Errorf("expected listing description kept, got %q", jobs[0][model.FieldDescription])
	}
}

func TestBoardFetch_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestBoard(srv.URL, 50).Fetch(context.Background())
	if err == nil {
		t.Fatal("expected error for HTTP 503, got nil")
	}
}

func TestPostedDate(t *testing.T) {
	b := newTestBoard("http://unused", 1)

	tests := []struct {
		raw  string
		want string
	}{
		{"Posted 3 days ago", "2026-03-07"},
		{"1 day ago", "2026-03-09"},
		{"Posted today", "2026-03-10"},
		{"yesterday", "2026-03-10"},
	}
	for _, tt := range tests {
		if got := b.postedDate(tt.raw); got != tt.want {
			t.Errorf("postedDate(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
