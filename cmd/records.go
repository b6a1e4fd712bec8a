package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/udyogmitra/mitra/internal/catalog"
	"github.com/udyogmitra/mitra/internal/config"
)

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Fetch the record feeds and show what loaded",
	RunE:  runRecords,
}

var recordsVerbose bool

func init() {
	recordsCmd.Flags().BoolVarP(&recordsVerbose, "verbose", "v", false, "list every record")
	rootCmd.AddCommand(recordsCmd)
}

// runRecords loads the catalog without touching the model or storage, so
// operators can check feed health in isolation.
func runRecords(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := newLogger()
	feed := catalog.NewFeed(time.Duration(cfg.FeedTimeout)*time.Second, logger)
	cat := catalog.Load(ctx, feed, cfg.FAQSheetURL, cfg.VideoSheetURL, logger)

	stats := cat.Stats()
	fmt.Printf("FAQs:   %d\n", stats.FAQCount)
	fmt.Printf("Videos: %d\n", stats.VideoCount)

	if !recordsVerbose {
		return nil
	}

	fmt.Println()
	for _, f := range cat.FAQs() {
		fmt.Printf("[faq] %s (%s) keywords=%v\n", f.Question, f.Domain, f.Keywords)
	}
	for _, v := range cat.Videos() {
		fmt.Printf("[video] %s (%s) %s keywords=%v\n", v.Title, v.Domain, v.Link, v.Keywords)
	}
	return nil
}
