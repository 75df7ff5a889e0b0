package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/JoseAndresM/LKND/internal/stats"
	"github.com/JoseAndresM/LKND/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate counters",
	Long:  "Prints the persisted counters: totals, top categories, locations and companies, and the daily intake over the last week.",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

var (
	statsTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	statsHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	statsMutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	statsBarStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
)

const (
	statsTopN     = 5
	statsBarWidth = 30
)

func runStats(cmd *cobra.Command, args []string) error {
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

	ctx := context.Background()

	total := snapshot(ctx, sqlStore, stats.BucketTotal)[stats.KeyAll]
	categories := snapshot(ctx, sqlStore, stats.BucketCategory)
	locations := snapshot(ctx, sqlStore, stats.BucketLocation)
	companies := snapshot(ctx, sqlStore, stats.BucketCompany)
	days := snapshot(ctx, sqlStore, stats.BucketDay)

	fmt.Println(statsTitleStyle.Render("LKND statistics"))
	fmt.Printf("Stored jobs: %d\n\n", total)

	printTop("Top categories", categories)
	printTop("Top locations", locations)
	printTop("Top companies", companies)
	printDaily(days)
	return nil
}

func snapshot(ctx context.Context, st *store.SQLiteStore, bucket string) map[string]int {
	counts, err := st.CounterSnapshot(ctx, bucket)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read %s counters: %v\n", bucket, err)
		os.Exit(1)
	}
	return counts
}

func printTop(title string, counts map[string]int) {
	fmt.Println(statsHeaderStyle.Render(title))
	entries := stats.TopOfMap(counts, statsTopN)
	if len(entries) == 0 {
		fmt.Println(statsMutedStyle.Render("  (nothing counted yet)"))
		fmt.Println()
		return
	}
	for _, e := range entries {
		fmt.Printf("  %-28s %d\n", e.Key, e.N)
	}
	fmt.Println()
}

// printDaily renders the last seven days as a small bar chart, oldest first.
func printDaily(days map[string]int) {
	fmt.Println(statsHeaderStyle.Render("Last 7 days"))

	today := time.Now()
	maxCount := 0
	for i := 6; i >= 0; i-- {
		key := today.AddDate(0, 0, -i).Format(stats.DayLayout)
		if days[key] > maxCount {
			maxCount = days[key]
		}
	}

	for i := 6; i >= 0; i-- {
		key := today.AddDate(0, 0, -i).Format(stats.DayLayout)
		n := days[key]
		bar := ""
		if maxCount > 0 && n > 0 {
			width := n * statsBarWidth / maxCount
			if width == 0 {
				width = 1
			}
			bar = " " + statsBarStyle.Render(strings.Repeat("▇", width))
		}
		fmt.Printf("  %s %4d%s\n", key, n, bar)
	}
}
