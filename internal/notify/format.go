package notify

import (
	"fmt"
	"strings"

	"github.com/JoseAndresM/LKND/internal/model"
	"github.com/JoseAndresM/LKND/internal/stats"
)

// maxPerCategory bounds how many jobs are spelled out under one category
// heading; the rest collapse into an "...and N more" line.
const maxPerCategory = 3

// FormatBatch renders a batch of new jobs as a Markdown digest: a header
// with the total, the first batchSize jobs grouped under each of their
// category tags, and a top-locations summary over the whole batch.
func FormatBatch(jobs []model.Job, batchSize int) string {
	if len(jobs) == 0 {
		return "No new jobs found in this search."
	}

	var b strings.Builder
	b.WriteString("🎵 *New jobs in the music industry* 🎵\n")
	fmt.Fprintf(&b, "_Found %d new jobs_\n\n", len(jobs))

	shown := jobs
	if len(shown) > batchSize {
		shown = shown[:batchSize]
	}

	// A job appears under every tag it carries, categories in the order
	// they first show up.
	byCategory := make(map[string][]model.Job)
	var order []string
	for _, job := range shown {
		for _, tag := range job.Tags {
			if _, ok := byCategory[tag]; !ok {
				order = append(order, tag)
			}
			byCategory[tag] = append(byCategory[tag], job)
		}
	}

	for _, category := range order {
		group := byCategory[category]
		fmt.Fprintf(&b, "*%s*\n", category)

		limit := len(group)
		if limit > maxPerCategory {
			limit = maxPerCategory
		}
		for _, job := range group[:limit] {
			b.WriteString("\n")
			fmt.Fprintf(&b, "📍 *%s*\n", job.Title)
			fmt.Fprintf(&b, "🏢 %s\n", job.Company)
			fmt.Fprintf(&b, "📌 %s\n", job.Location)
			if job.Salary != "" {
				fmt.Fprintf(&b, "💰 %s\n", job.Salary)
			}
			if job.JobType != "" {
				fmt.Fprintf(&b, "🏷️ %s\n", job.JobType)
			}
			fmt.Fprintf(&b, "🔗 [View job](%s)\n", job.URL)
			fmt.Fprintf(&b, "_Source: %s_\n", job.Source)
		}
		if len(group) > maxPerCategory {
			fmt.Fprintf(&b, "\n_...and %d more in %s_\n", len(group)-maxPerCategory, category)
		}
		b.WriteString("\n")
	}

	if len(jobs) > batchSize {
		fmt.Fprintf(&b, "\n📊 *Total: %d new jobs found*", len(jobs))
	}

	b.WriteString("\n\n📈 *Quick summary:*\n")
	locations := stats.NewTally()
	for _, job := range jobs {
		locations.Add(stats.LocationKey(job.Location))
	}
	for _, kv := range locations.Top(3) {
		fmt.Fprintf(&b, "• %s: %d jobs\n", kv.Key, kv.N)
	}

	return b.String()
}

// SplitMessage cuts text into chunks of at most maxLen runes each, so a
// multi-byte rune never straddles a chunk boundary.
func SplitMessage(text string, maxLen int) []string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return []string{text}
	}
	parts := make([]string, 0, (len(runes)+maxLen-1)/maxLen)
	for start := 0; start < len(runes); start += maxLen {
		end := start + maxLen
		if end > len(runes) {
			end = len(runes)
		}
		parts = append(parts, string(runes[start:end]))
	}
	return parts
}
