package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/udyogmitra/mitra/internal/trends"
)

const (
	trendWindow  = 500
	trendTopN    = 10
	queryTimeout = 10 * time.Second
)

var trendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "Show trending keywords across logged queries",
	RunE:  runTrends,
}

func init() {
	rootCmd.AddCommand(trendsCmd)
}

func runTrends(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	_, store, pool, _, err := setupStorage(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	qctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	queries, err := store.RecentQueries(qctx, trendWindow)
	if err != nil {
		return fmt.Errorf("loading query history: %w", err)
	}

	ranked := trends.Analyze(queries, trendTopN)
	if len(ranked) == 0 {
		fmt.Println("No queries logged yet.")
		return nil
	}

	fmt.Printf("Trending keywords across the last %d queries:\n", len(queries))
	for i, kc := range ranked {
		fmt.Printf("  %2d. %-20s %d\n", i+1, kc.Keyword, kc.Count)
	}
	return nil
}
