// Package report assembles the weekly aggregate summary from stored
// records and delivers it through a notifier.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/JoseAndresM/LKND/internal/insights"
	"github.com/JoseAndresM/LKND/internal/model"
	"github.com/JoseAndresM/LKND/internal/stats"
)

// reportWindow is how far back the weekly report looks.
const reportWindow = 7 * 24 * time.Hour

// Builder renders the weekly report over the last seven days of records.
type Builder struct {
	store    model.Store
	insights *insights.Generator
	logger   *slog.Logger
	now      func() time.Time
}

func NewBuilder(store model.Store, gen *insights.Generator, logger *slog.Logger) *Builder {
	return &Builder{
		store:    store,
		insights: gen,
		logger:   logger,
		now:      time.Now,
	}
}

// Build renders the report text. An empty week short-circuits to a single
// sentence instead of the full layout.
func (b *Builder) Build(ctx context.Context) (string, error) {
	now := b.now()
	weekAgo := now.Add(-reportWindow)

	jobs, err := b.store.RecordsSince(ctx, weekAgo)
	if err != nil {
		return "", fmt.Errorf("load weekly records: %w", err)
	}
	if len(jobs) == 0 {
		return "No new jobs were found this week.", nil
	}

	commentary := b.insights.Generate(ctx, jobs)

	categories := stats.NewTally()
	locations := stats.NewTally()
	companies := stats.NewTally()
	salaried := 0
	for _, job := range jobs {
		for _, tag := range job.Tags {
			categories.Add(tag)
		}
		locations.Add(stats.LocationKey(job.Location))
		companies.Add(job.Company)
		if job.Salary != "" {
			salaried++
		}
	}
	total := len(jobs)

	var sb strings.Builder
	sb.WriteString("📊 *WEEKLY REPORT - Music Industry* 📊\n")
	fmt.Fprintf(&sb, "_Period: %s - %s_\n\n", weekAgo.Format("02/01"), now.Format("02/01/2006"))

	sb.WriteString("📈 *EXECUTIVE SUMMARY*\n")
	fmt.Fprintf(&sb, "• Total new opportunities: %d\n", total)
	fmt.Fprintf(&sb, "• Daily average: %.1f jobs\n\n", float64(total)/7)

	sb.WriteString("🎯 *MOST IN-DEMAND CATEGORIES*\n")
	for _, kv := range categories.Top(5) {
		pct := float64(kv.N) / float64(total) * 100
		fmt.Fprintf(&sb, "• %s: %d jobs (%.1f%%)\n", kv.Key, kv.N, pct)
	}

	sb.WriteString("\n🌍 *TOP LOCATIONS*\n")
	for _, kv := range locations.Top(5) {
		fmt.Fprintf(&sb, "• %s: %d openings\n", kv.Key, kv.N)
	}

	sb.WriteString("\n🏢 *MOST ACTIVE COMPANIES*\n")
	for _, kv := range companies.Top(5) {
		fmt.Fprintf(&sb, "• %s: %d positions\n", kv.Key, kv.N)
	}

	if commentary != "" {
		sb.WriteString("\n🤖 *MARKET ANALYSIS*\n")
		sb.WriteString(commentary)
	}

	// The section header always prints, even when no recommendation fires.
	sb.WriteString("\n\n💡 *WEEKLY RECOMMENDATIONS*\n")
	if locations.Get("Remote") > 5 {
		sb.WriteString("• ✅ High demand for remote work - consider widening your geographic search\n")
	}
	if float64(categories.Get("Production")) > float64(total)*0.2 {
		sb.WriteString("• 🎚️ Strong demand in music production - highlight your technical experience\n")
	}
	if companies.Distinct() > 20 {
		sb.WriteString("• 🌟 Diversified market - look at emerging companies beyond the big names\n")
	}
	if float64(salaried) > float64(total)*0.3 {
		fmt.Fprintf(&sb, "• 💰 %d jobs disclose pay - negotiate with real numbers\n", salaried)
	}

	fmt.Fprintf(&sb, "\n📅 *Next report: %s*", now.AddDate(0, 0, 7).Format("02/01/2006"))

	return sb.String(), nil
}

// Deliver builds the report and pushes it through the notifier.
func (b *Builder) Deliver(ctx context.Context, n model.Notifier) error {
	text, err := b.Build(ctx)
	if err != nil {
		return err
	}
	b.logger.Info("weekly report built", "length", len(text))
	return n.Send(ctx, text)
}
