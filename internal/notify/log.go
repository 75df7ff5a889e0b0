package notify

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/JoseAndresM/LKND/internal/model"
)

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes matches to the logger instead of a chat. It is the
// default sink and what dry runs use.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs each job via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs each job with its headline fields. Returns nil; logging
// does not fail.
func (n *LogNotifier) Notify(_ context.Context, jobs []model.Job) error {
	for _, j := range jobs {
		n.logger.Info("new job",
			"title", j.Title,
			"company", j.Company,
			"location", j.Location,
			"url", j.URL,
			"source", j.Source,
			"tags", strings.Join(j.Tags, ","))
	}
	return nil
}

// Send logs the full report text as one record.
func (n *LogNotifier) Send(_ context.Context, text string) error {
	n.logger.Info("report", "text", text)
	return nil
}

// SendTestMessage pushes one fabricated job through the notifier so the
// channel wiring can be verified end to end.
func SendTestMessage(ctx context.Context, n model.Notifier) error {
	job := model.Job{
		ID:        "test-001",
		Title:     "Test notification",
		Company:   "LKND",
		Location:  "Everywhere",
		URL:       "https://github.com/JoseAndresM/LKND",
		Source:    "test",
		FoundDate: time.Now(),
		Tags:      []string{"Other"},
	}
	return n.Notify(ctx, []model.Job{job})
}
