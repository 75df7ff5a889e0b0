package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/JoseAndresM/LKND/internal/adapter"
	"github.com/JoseAndresM/LKND/internal/config"
	"github.com/JoseAndresM/LKND/internal/insights"
	"github.com/JoseAndresM/LKND/internal/model"
	"github.com/JoseAndresM/LKND/internal/notify"
	"github.com/JoseAndresM/LKND/internal/pipeline"
	"github.com/JoseAndresM/LKND/internal/ratelimit"
	"github.com/JoseAndresM/LKND/internal/retry"
	"github.com/JoseAndresM/LKND/internal/secrets"
	"github.com/JoseAndresM/LKND/internal/store"
)

var (
	cfgPath string
	debug   bool
)

// Per-host scraping budget shared by every adapter in a process.
const (
	hostReqPerSec = 2
	hostBurst     = 4
)

var rootCmd = &cobra.Command{
	Use:   "lknd",
	Short: "Music-industry job radar",
	Long:  "LKND watches music-industry job boards, feeds and mail alerts, dedups and classifies what it finds, and notifies you about postings that match your profile.",
	// Default to `start` so that `lknd` with no args runs the daemon.
	// This preserves compatibility with systemd unit files that invoke the binary directly.
	RunE: runStart,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: LKND_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > LKND_CONFIG env var > "./config.yaml"
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if env := os.Getenv("LKND_CONFIG"); env != "" {
			path = env
		} else {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

// ensureDataDir creates the directory that holds the database and the run lock.
func ensureDataDir(cfg *config.Config) error {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir %s: %w", cfg.DataDir, err)
	}
	return nil
}

func openStore(cfg *config.Config) (*store.SQLiteStore, error) {
	if err := ensureDataDir(cfg); err != nil {
		return nil, err
	}
	return store.NewSQLiteStore(cfg.DBPath())
}

func setupNotifier(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) (model.Notifier, error) {
	switch cfg.Notification.Type {
	case "telegram":
		token, err := secrets.Resolve(cfg.Notification.Token, secrets.TelegramToken)
		if err != nil {
			return nil, fmt.Errorf("telegram notifier: %w", err)
		}
		ncfg := cfg.Notification
		ncfg.Token = token
		logger.Info("using telegram notifier")
		return notify.NewTelegramNotifier(ncfg, httpClient, logger), nil
	default:
		return notify.NewLogNotifier(logger), nil
	}
}

// setupInsights builds the report commentary generator. A generator with a
// nil provider is valid and simply contributes nothing to reports.
func setupInsights(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) *insights.Generator {
	if !cfg.AI.Enabled {
		return insights.NewGenerator(nil, cfg.AI.Timeout, logger)
	}

	key, err := secrets.Resolve(cfg.AI.APIKey, secrets.LLMAPIKey)
	if err != nil {
		logger.Warn("ai enabled but no api key found, insights disabled", "error", err)
		return insights.NewGenerator(nil, cfg.AI.Timeout, logger)
	}

	var provider insights.Provider
	switch cfg.AI.Provider {
	case "gemini":
		provider = insights.NewGeminiProvider(key, cfg.AI.Model)
	default:
		provider = insights.NewOpenAIProvider(cfg.AI.BaseURL, key, cfg.AI.Model, httpClient)
	}
	logger.Info("insights enabled", "provider", cfg.AI.Provider, "model", cfg.AI.Model)
	return insights.NewGenerator(provider, cfg.AI.Timeout, logger)
}

func createSource(src config.SourceConfig, cfg *config.Config, client *adapter.Client, logger *slog.Logger) (model.Source, bool) {
	switch src.Kind {
	case "board":
		return adapter.NewBoard(src, cfg.MaxJobsFor(src), client, logger), true
	case "feed":
		return adapter.NewFeed(src, cfg.MaxJobsFor(src), client), true
	case "mail":
		password, err := secrets.Get(secrets.IMAPPassword)
		if err != nil {
			logger.Warn("mail source skipped, imap password not found", "source", src.Name, "error", err)
			return nil, false
		}
		return adapter.NewMail(src, password, logger), true
	default:
		logger.Warn("unknown source kind, skipping", "source", src.Name, "kind", src.Kind)
		return nil, false
	}
}

func buildSources(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) []model.Source {
	client := adapter.NewClient(httpClient, ratelimit.NewHostLimiter(hostReqPerSec, hostBurst))

	var sources []model.Source
	for _, src := range cfg.EnabledSources() {
		s, ok := createSource(src, cfg, client, logger)
		if !ok {
			continue
		}
		sources = append(sources, retry.NewSource(s, 2, 5*time.Second, logger))
		logger.Info("registered source", "name", src.Name, "kind", src.Kind)
	}
	return sources
}

func pipelineOptions(cfg *config.Config) pipeline.Options {
	return pipeline.Options{
		Concurrency:  cfg.Concurrency,
		FetchTimeout: cfg.FetchTimeout,
		PaceDelay:    cfg.PaceDelay,
	}
}
