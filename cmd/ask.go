package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/udyogmitra/mitra/internal/team"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a single question and exit",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, closeApp, err := setup(ctx)
	if err != nil {
		return err
	}
	defer closeApp()

	query := strings.Join(args, " ")
	turn, err := a.assistant.Respond(ctx, team.DefaultRoster().Guest(), query,
		func(_ context.Context, text string) error {
			fmt.Print(text)
			return nil
		})
	if err != nil {
		return err
	}
	fmt.Println()

	printVideos(turn)
	return nil
}
