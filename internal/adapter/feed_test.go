package adapter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JoseAndresM/LKND/internal/config"
	"github.com/JoseAndresM/LKND/internal/model"
)

const feedPayload = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:dc="http://purl.org/dc/elements/1.1/">
<channel>
	<title>Music Jobs</title>
	<item>
		<title>Sync Licensing Coordinator</title>
		<link>https://jobs.example.com/sync-licensing</link>
		<author>Tuned Global</author>
		<pubDate>Mon, 02 Mar 2026 10:30:00 +0000</pubDate>
		<description>&lt;p&gt;Clear music rights for &lt;b&gt;film&lt;/b&gt; and TV.&lt;/p&gt;</description>
	</item>
	<item>
		<title>Playlist Editor</title>
		<link>https://jobs.example.com/playlist-editor</link>
		<dc:creator>Streamline</dc:creator>
		<pubDate>not a date</pubDate>
	</item>
	<item>
		<title>Role Without Link</title>
	</item>
</channel>
</rss>`

func newTestFeed(srvURL string, maxJobs int) *Feed {
	src := config.SourceConfig{Name: "testfeed", URL: srvURL}
	return NewFeed(src, maxJobs, newTestClient())
}

func TestFeedFetch_ParsesItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(feedPayload))
	}))
	defer srv.Close()

	jobs, err := newTestFeed(srv.URL, 50).Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs (item without link skipped), got %d", len(jobs))
	}

	first := jobs[0]
	if first[model.FieldTitle] != "Sync Licensing Coordinator" {
		t.Errorf("expected title Sync Licensing Coordinator, got %q", first[model.FieldTitle])
	}
	if first[model.FieldURL] != "https://jobs.example.com/sync-licensing" {
		t.Errorf("unexpected url %q", first[model.FieldURL])
	}
	if first[model.FieldCompany] != "Tuned Global" {
		t.Errorf("expected company from author, got %q", first[model.FieldCompany])
	}
	if first[model.FieldPostedDate] != "2026-03-02" {
		t.Errorf("expected posted date 2026-03-02, got %q", first[model.FieldPostedDate])
	}
	if want := "Clear music rights for film and TV."; first[model.FieldDescription] != want {
		t.Errorf("expected tags stripped from description, got %q", first[model.FieldDescription])
	}

	second := jobs[1]
	if second[model.FieldCompany] != "Streamline" {
		t.Errorf("expected company from dc:creator, got %q", second[model.FieldCompany])
	}
	if _, ok := second[model.FieldPostedDate]; ok {
		t.Errorf("expected no posted date for unparseable pubDate, got %q", second[model.FieldPostedDate])
	}
}

func TestFeedFetch_CapsItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(feedPayload))
	}))
	defer srv.Close()

	jobs, err := newTestFeed(srv.URL, 1).Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected 1 job with cap 1, got %d", len(jobs))
	}
}

func TestFeedFetch_MalformedXML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<rss><channel><item>`))
	}))
	defer srv.Close()

	_, err := newTestFeed(srv.URL, 50).Fetch(context.Background())
	if err == nil {
		t.Fatal("expected error for malformed XML, got nil")
	}
}

func TestParsePubDate(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{"Mon, 02 Mar 2026 10:30:00 +0000", "2026-03-02"},
		{"Mon, 02 Mar 2026 10:30:00 GMT", "2026-03-02"},
		{"2026-03-02T10:30:00Z", "2026-03-02"},
		{"", ""},
		{"sometime last week", ""},
	}
	for _, tt := range tests {
		if got := parsePubDate(tt.value); got != tt.want {
			t.Errorf("parsePubDate(%q) = %q, want %q", tt.value, got, tt.want)
		}
	}
}
