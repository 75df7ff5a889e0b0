// Package pipeline drives one ingestion cycle: parallel fetch across all
// sources, then a single-threaded pass through normalize, classify,
// dedup, aggregate, and notify.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JoseAndresM/LKND/internal/model"
	"github.com/JoseAndresM/LKND/internal/normalize"
)

// Options are the cycle's runtime knobs, taken from configuration.
type Options struct {
	Concurrency  int
	FetchTimeout time.Duration
	PaceDelay    time.Duration
}

// Summary reports what one cycle did.
type Summary struct {
	RunID         string
	Fetched       int
	Inserted      int
	Duplicates    int
	Dropped       int
	Matched       int
	FailedSources int
}

// fetchResult carries one source's outcome across the fan-in boundary.
type fetchResult struct {
	source string
	raw    []model.RawJob
	err    error
}

// Pipeline owns one full cycle over all configured sources. Everything
// after the fetch stage runs on the calling goroutine, so the aggregator
// and the notification batch need no locking.
type Pipeline struct {
	sources  []model.Source
	store    model.Store
	filter   model.Filter
	tagger   model.Tagger
	agg      model.Aggregator
	notifier model.Notifier
	opts     Options
	logger   *slog.Logger
	now      func() time.Time
}

// New creates a pipeline wired with all its dependencies.
func New(
	sources []model.Source,
	store model.Store,
	filter model.Filter,
	tagger model.Tagger,
	agg model.Aggregator,
	notifier model.Notifier,
	opts Options,
	logger *slog.Logger,
) *Pipeline {
	if opts.Concurrency <= 0 {
		// SetLimit(0) would block every launch.
		opts.Concurrency = 1
	}
	return &Pipeline{
		sources:  sources,
		store:    store,
		filter:   filter,
		tagger:   tagger,
		agg:      agg,
		notifier: notifier,
		opts:     opts,
		logger:   logger,
		now:      time.Now,
	}
}

// Run executes one cycle. Source failures, bad records, and store faults
// are logged and isolated; the only error Run itself returns is
// cancellation.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	runID := uuid.NewString()
	logger := p.logger.With("run_id", runID)
	started := p.now()

	results := p.fetchAll(ctx, logger)

	summary := Summary{RunID: runID}
	var batch []model.Job

	for _, res := range results {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if res.err != nil {
			summary.FailedSources++
			logger.Error("source failed", "source", res.source, "error", res.err)
			continue
		}
		summary.Fetched += len(res.raw)

		for _, raw := range res.raw {
			job, err := normalize.Normalize(raw, res.source, p.now())
			if err != nil {
				summary.Dropped++
				logger.Debug("record dropped", "source", res.source, "error", err)
				continue
			}
			job.Tags = p.tagger.Tags(job)

			outcome, err := p.store.InsertIfAbsent(ctx, job)
			if err != nil {
				summary.Dropped++
				logger.Error("insert failed", "source", res.source, "id", job.ID, "error", err)
				continue
			}
			if outcome == model.AlreadyExists {
				summary.Duplicates++
				continue
			}
			summary.Inserted++
			p.agg.Record(job)
			if p.filter.Match(job) {
				batch = append(batch, job)
			}
		}

		if err := p.store.UpdateSourceMeta(ctx, res.source, len(res.raw), runID); err != nil {
			logger.Warn("source meta update failed", "source", res.source, "error", err)
		}
	}
	summary.Matched = len(batch)

	if err := p.agg.Flush(ctx); err != nil {
		logger.Error("counter flush failed", "error", err)
	}

	if len(batch) > 0 {
		if err := p.notifier.Notify(ctx, batch); err != nil {
			logger.Error("notification failed", "error", err)
		}
	}

	logger.Info("cycle complete",
		"sources", len(p.sources),
		"failed_sources", summary.FailedSources,
		"fetched", summary.Fetched,
		"inserted", summary.Inserted,
		"duplicates", summary.Duplicates,
		"dropped", summary.Dropped,
		"matched", summary.Matched,
		"elapsed", p.now().Sub(started).String(),
	)
	return summary, nil
}

// fetchAll runs every source under the concurrency ceiling with a pacing
// delay between launches. One result slot per source, in configuration
// order, so the sequential stages behave the same from run to run. A
// failing source fills its slot with a FetchError and never cancels
// siblings.
func (p *Pipeline) fetchAll(ctx context.Context, logger *slog.Logger) []fetchResult {
	var g errgroup.Group
	g.SetLimit(p.opts.Concurrency)

	results := make([]fetchResult, len(p.sources))

	for i, src := range p.sources {
		if i > 0 && p.opts.PaceDelay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(p.opts.PaceDelay):
			}
		}
		if ctx.Err() != nil {
			break
		}

		g.Go(func() error {
			fctx, cancel := context.WithTimeout(ctx, p.opts.FetchTimeout)
			defer cancel()

			logger.Debug("fetching source", "source", src.Name())
			raw, err := src.Fetch(fctx)
			if err != nil {
				results[i] = fetchResult{source: src.Name(), err: &model.FetchError{Source: src.Name(), Err: err}}
				return nil
			}
			results[i] = fetchResult{source: src.Name(), raw: raw}
			return nil
		})
	}

	g.Wait()
	return results
}
