package insights

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/JoseAndresM/LKND/internal/model"
	"github.com/JoseAndresM/LKND/internal/stats"
)

//go:embed prompts/market_insights.md
var marketInsightsRaw string

// marketInsightsTemplate is parsed once at package init and reused for
// every report.
var marketInsightsTemplate = template.Must(
	template.New("market_insights").Parse(marketInsightsRaw))

const (
	// maxSummaryJobs caps how many jobs are summarized at all.
	maxSummaryJobs = 50
	// maxPromptLines caps how many summary lines end up in the prompt.
	maxPromptLines = 30
)

// promptData is the view rendered into the prompt template.
type promptData struct {
	Total      int
	Summaries  string
	Categories string
	Locations  string
	Companies  string
}

// BuildPrompt renders the analysis request: one line per job (capped),
// top-5 statistics over the whole set, and the insight topics.
func BuildPrompt(jobs []model.Job) (string, error) {
	limit := len(jobs)
	if limit > maxSummaryJobs {
		limit = maxSummaryJobs
	}
	summaries := make([]string, 0, limit)
	for _, job := range jobs[:limit] {
		line := fmt.Sprintf("- %s at %s in %s", job.Title, job.Company, job.Location)
		if len(job.Tags) > 0 {
			line += fmt.Sprintf(" (Categories: %s)", strings.Join(job.Tags, ", "))
		}
		summaries = append(summaries, line)
	}
	if len(summaries) > maxPromptLines {
		summaries = summaries[:maxPromptLines]
	}

	categories := stats.NewTally()
	locations := stats.NewTally()
	companies := stats.NewTally()
	for _, job := range jobs {
		for _, tag := range job.Tags {
			categories.Add(tag)
		}
		locations.Add(stats.LocationKey(job.Location))
		companies.Add(job.Company)
	}

	var buf bytes.Buffer
	err := marketInsightsTemplate.Execute(&buf, promptData{
		Total:      len(jobs),
		Summaries:  strings.Join(summaries, "\n"),
		Categories: joinTop(categories.Top(5)),
		Locations:  joinTop(locations.Top(5)),
		Companies:  joinTop(companies.Top(5)),
	})
	if err != nil {
		return "", fmt.Errorf("render insights prompt: %w", err)
	}
	return buf.String(), nil
}

// joinTop renders ranked entries as "key: count" joined by commas.
func joinTop(entries []stats.KV) string {
	parts := make([]string, 0, len(entries))
	for _, kv := range entries {
		parts = append(parts, fmt.Sprintf("%s: %d", kv.Key, kv.N))
	}
	return strings.Join(parts, ", ")
}
