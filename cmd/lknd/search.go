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
	"github.com/JoseAndresM/LKND/internal/model"
	"github.com/JoseAndresM/LKND/internal/notify"
	"github.com/JoseAndresM/LKND/internal/pipeline"
	"github.com/JoseAndresM/LKND/internal/runlock"
	"github.com/JoseAndresM/LKND/internal/stats"
	"github.com/JoseAndresM/LKND/internal/store"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run one search cycle, then exit",
	Long:  "Fetches every enabled source once, stores and classifies what is new, and notifies about matches. With --dry-run nothing is persisted and matches are logged instead of sent.",
	RunE:  runSearch,
}

var dryRun bool

func init() {
	searchCmd.Flags().BoolVar(&dryRun, "dry-run", false, "use an in-memory store and log matches instead of notifying")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}

	var (
		st  model.Store
		agg model.Aggregator
		n   model.Notifier
	)
	if dryRun {
		logger.Info("dry-run mode, nothing will be persisted")
		mem := store.NewMemoryStore()
		st = mem
		agg = stats.NewCounts(mem)
		n = notify.NewLogNotifier(logger)
	} else {
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
		st = sqlStore
		agg = stats.NewCounts(sqlStore)

		n, err = setupNotifier(cfg, httpClient, logger)
		if err != nil {
			logger.Error("failed to set up notifier", "error", err)
			os.Exit(1)
		}
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

	pipe := pipeline.New(sources, st, jobFilter, classify.New(), agg, n, pipelineOptions(cfg), logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summary, err := pipe.Run(ctx)
	if err != nil {
		logger.Error("search cycle failed", "error", err)
		os.Exit(1)
	}

	logger.Info("search complete",
		"fetched", summary.Fetched,
		"new", summary.Inserted,
		"matched", summary.Matched,
	)
	return nil
}
