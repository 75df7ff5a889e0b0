package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JoseAndresM/LKND/internal/config"
	"github.com/JoseAndresM/LKND/internal/store"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List all configured sources",
	Long:  "Reads the config and prints a table of all configured sources with their last-scrape bookkeeping.",
	RunE:  runSources,
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	meta := loadSourceMeta(cfg)

	fmt.Printf("%-28s %-8s %-10s %-18s %s\n", "Source", "Kind", "Status", "Last scraped", "Found")
	fmt.Println(strings.Repeat("─", 72))

	enabled, disabled := 0, 0
	for _, s := range cfg.Sources {
		status := "enabled"
		if !s.Enabled {
			status = "disabled"
			disabled++
		} else {
			enabled++
		}

		scraped, found := "never", "-"
		if m, ok := meta[s.Name]; ok {
			scraped = m.LastScraped.Local().Format("2006-01-02 15:04")
			found = fmt.Sprintf("%d", m.JobsFound)
		}
		fmt.Printf("%-28s %-8s %-10s %-18s %s\n", s.Name, s.Kind, status, scraped, found)
	}

	fmt.Printf("\nTotal: %d sources (%d enabled, %d disabled)\n", len(cfg.Sources), enabled, disabled)
	return nil
}

// loadSourceMeta reads per-source bookkeeping, keyed by source name. A
// missing or unreadable store just means no bookkeeping to show.
func loadSourceMeta(cfg *config.Config) map[string]store.SourceMetaRow {
	out := make(map[string]store.SourceMetaRow)

	sqlStore, err := openStore(cfg)
	if err != nil {
		return out
	}
	defer sqlStore.Close()

	rows, err := sqlStore.SourceMeta(context.Background())
	if err != nil {
		return out
	}
	for _, r := range rows {
		out[r.Source] = r
	}
	return out
}
