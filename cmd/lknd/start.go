package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/JoseAndresM/LKND/internal/classify"
	"github.com/JoseAndresM/LKND/internal/filter"
	"github.com/JoseAndresM/LKND/internal/pipeline"
	"github.com/JoseAndresM/LKND/internal/report"
	"github.com/JoseAndresM/LKND/internal/runlock"
	"github.com/JoseAndresM/LKND/internal/scheduler"
	"github.com/JoseAndresM/LKND/internal/stats"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the search daemon",
	Long:  "Runs one cycle immediately, then one per configured interval, and delivers the weekly report on its configured day. Blocks until SIGINT/SIGTERM.",
	RunE:  runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("config loaded",
		"interval", cfg.Interval.String(),
		"sources", len(cfg.EnabledSources()),
		"keywords", len(cfg.Filters.Keywords),
		"report_day", cfg.Report.Weekday.String(),
	)

	if err := ensureDataDir(cfg); err != nil {
		logger.Error("failed to prepare data dir", "error", err)
		os.Exit(1)
	}
	lock, err := runlock.Acquire(cfg.LockPath())
	if err != nil {
		logger.Error("failed to acquire run lock", "error", err)
		os.Exit(1)
	}
	defer lock.Release()

	sqlStore, err := openStore(cfg)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer sqlStore.Close()

	httpClient := &http.Client{Timeout: 30 * time.Second}

	n, err := setupNotifier(cfg, httpClient, logger)
	if err != nil {
		logger.Error("failed to set up notifier", "error", err)
		os.Exit(1)
	}

	sources := buildSources(cfg, httpClient, logger)
	if len(sources) == 0 {
		logger.Error("no usable sources configured")
		os.Exit(1)
	}

	jobFilter := filter.NewCriteriaFilter(
		cfg.Filters.Keywords,
		cfg.Filters.ExcludedKeywords,
		cfg.Filters.Locations,
		cfg.Filters.JobTypes,
	)

	pipe := pipeline.New(sources, sqlStore, jobFilter, classify.New(), stats.NewCounts(sqlStore), n, pipelineOptions(cfg), logger)
	builder := report.NewBuilder(sqlStore, setupInsights(cfg, httpClient, logger), logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched := scheduler.New(pipe, builder, n, cfg.Interval, cfg.Report.Weekday, logger)
	if err := sched.Run(ctx); err != nil {
		logger.Error("scheduler error", "error", err)
		os.Exit(1)
	}

	logger.Info("goodbye")
	return nil
}
