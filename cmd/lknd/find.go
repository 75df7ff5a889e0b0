package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var findLimit int

var findCmd = &cobra.Command{
	Use:   "find <query>",
	Short: "Full-text search over stored descriptions",
	Long:  "Runs an FTS query against the stored job descriptions and prints the best matches. Multi-word queries follow SQLite FTS5 syntax (AND by default, quotes for phrases).",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runFind,
}

func init() {
	findCmd.Flags().IntVar(&findLimit, "limit", 20, "maximum matches to print")
	rootCmd.AddCommand(findCmd)
}

func runFind(cmd *cobra.Command, args []string) error {
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

	query := strings.Join(args, " ")
	jobs, err := sqlStore.SearchDescriptions(context.Background(), query, findLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "search failed: %v\n", err)
		os.Exit(1)
	}

	if len(jobs) == 0 {
		fmt.Printf("no matches for %q\n", query)
		return nil
	}

	for i, j := range jobs {
		fmt.Printf("%2d. %s | %s | %s\n", i+1, j.Title, j.Company, j.Location)
		fmt.Printf("    %s\n", j.URL)
	}
	fmt.Printf("\n%d match(es)\n", len(jobs))
	return nil
}
