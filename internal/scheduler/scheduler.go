// Package scheduler owns the daemon loop: one immediate ingestion cycle,
// then one per interval, plus the weekly report on its configured day.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/JoseAndresM/LKND/internal/model"
	"github.com/JoseAndresM/LKND/internal/pipeline"
)

// Cycler runs one ingestion cycle.
type Cycler interface {
	Run(ctx context.Context) (pipeline.Summary, error)
}

// Reporter builds and delivers the weekly report.
type Reporter interface {
	Deliver(ctx context.Context, n model.Notifier) error
}

// Scheduler drives cycles on an interval and fires the weekly report on
// the first tick that lands on the configured weekday.
type Scheduler struct {
	cycler   Cycler
	reporter Reporter
	notifier model.Notifier
	interval time.Duration
	weekday  time.Weekday
	logger   *slog.Logger

	now        func() time.Time
	lastReport time.Time
}

// New creates a scheduler wired with its collaborators.
func New(
	cycler Cycler,
	reporter Reporter,
	notifier model.Notifier,
	interval time.Duration,
	weekday time.Weekday,
	logger *slog.Logger,
) *Scheduler {
	return &Scheduler{
		cycler:   cycler,
		reporter: reporter,
		notifier: notifier,
		interval: interval,
		weekday:  weekday,
		logger:   logger,
		now:      time.Now,
	}
}

// Run starts the loop. It runs one immediate tick, then one per interval.
// It returns nil when ctx is cancelled (graceful shutdown).
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("starting scheduler",
		"interval", s.interval.String(),
		"report_day", s.weekday.String(),
	)

	s.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("shutting down scheduler")
			return nil
		case <-time.After(s.interval):
			s.tick(ctx)
		}
	}
}

// tick runs one cycle and, when due, the weekly report.
func (s *Scheduler) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	if _, err := s.cycler.Run(ctx); err != nil {
		s.logger.Error("cycle failed", "error", err)
	}

	if !s.reportDue() {
		return
	}
	if err := s.reporter.Deliver(ctx, s.notifier); err != nil {
		s.logger.Error("weekly report failed", "error", err)
		return
	}
	s.lastReport = s.now()
}

// reportDue is true on the first tick of the configured weekday. A failed
// delivery leaves lastReport untouched, so the next tick that day tries
// again.
func (s *Scheduler) reportDue() bool {
	now := s.now()
	if now.Weekday() != s.weekday {
		return false
	}
	return s.lastReport.IsZero() || !sameDay(s.lastReport, now)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
