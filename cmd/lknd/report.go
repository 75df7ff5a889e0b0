package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/JoseAndresM/LKND/internal/report"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Build and send the weekly report now",
	Long:  "Builds the weekly aggregate report over the last seven days of stored jobs and delivers it through the configured notifier.",
	RunE:  runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

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

	builder := report.NewBuilder(sqlStore, setupInsights(cfg, httpClient, logger), logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := builder.Deliver(ctx, n); err != nil {
		logger.Error("weekly report failed", "error", err)
		os.Exit(1)
	}
	logger.Info("weekly report sent")
	return nil
}
