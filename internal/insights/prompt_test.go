package insights

import (
	"fmt"
	"strings"
	"testing"

	"github.com/JoseAndresM/LKND/internal/model"
)

func TestBuildPrompt(t *testing.T) {
	jobs := []model.Job{
		{Title: "Tour Manager", Company: "Live Nation", Location: "London, UK", Tags: []string{"Performance", "Business"}},
		{Title: "Mastering Engineer", Company: "Abbey Road", Location: "London, UK", Tags: []string{"Production"}},
	}

	got, err := BuildPrompt(jobs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(got, "Analyze these 2 music industry jobs:") {
		t.Errorf("missing job count header in:\n%s", got)
	}
	if !strings.Contains(got, "- Tour Manager at Live Nation in London, UK (Categories: Performance, Business)") {
		t.Errorf("missing summary line in:\n%s", got)
	}
	if !strings.Contains(got, "- Main categories: Performance: 1, Business: 1, Production: 1") {
		t.Errorf("missing category stats in:\n%s", got)
	}
	if !strings.Contains(got, "- Top locations: London: 2") {
		t.Errorf("missing location stats in:\n%s", got)
	}
	if !strings.Contains(got, "- Most active companies: Live Nation: 1, Abbey Road: 1") {
		t.Errorf("missing company stats in:\n%s", got)
	}
	if !strings.Contains(got, "5. Short-term predictions based on the data") {
		t.Errorf("missing insight topics in:\n%s", got)
	}
}

func TestBuildPrompt_NoTags(t *testing.T) {
	jobs := []model.Job{
		{Title: "Roadie", Company: "Unknown", Location: "Not specified"},
	}

	got, err := BuildPrompt(jobs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(got, "- Roadie at Unknown in Not specified\n") {
		t.Errorf("expected plain summary line without categories in:\n%s", got)
	}
	if strings.Contains(got, "(Categories:") {
		t.Errorf("untagged job should not carry a categories suffix:\n%s", got)
	}
}

func TestBuildPrompt_CapsSummaryLines(t *testing.T) {
	jobs := make([]model.Job, 35)
	for i := range jobs {
		jobs[i] = model.Job{
			Title:    fmt.Sprintf("Job %d", i),
			Company:  "Acme Records",
			Location: "Berlin, Germany",
		}
	}

	got, err := BuildPrompt(jobs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(got, "Analyze these 35 music industry jobs:") {
		t.Errorf("header should count all jobs, got:\n%s", got)
	}
	if n := strings.Count(got, "- Job "); n != 30 {
		t.Errorf("got %d summary lines, want 30", n)
	}
}
