package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/JoseAndresM/LKND/internal/browse"
)

// browseLimit caps how many records the TUI loads.
const browseLimit = 500

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse stored jobs interactively (TUI)",
	Long:  "Opens a list/detail view over the most recently found jobs in the store.",
	RunE:  runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	// No logger here: any output before the alt screen starts corrupts
	// the display.
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	sqlStore, err := openStore(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open store: %v\n", err)
		os.Exit(1)
	}
	defer sqlStore.Close()

	jobs, err := sqlStore.RecentRecords(context.Background(), browseLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load jobs: %v\n", err)
		os.Exit(1)
	}

	if err := browse.Run(jobs); err != nil {
		fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
		os.Exit(1)
	}
	return nil
}
