package cmd

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage saved chat sessions",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved chat sessions",
	RunE:  runSessionsList,
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show one chat session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsShow,
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a chat session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsDelete,
}

var (
	sessionsUserID string
	sessionsLimit  int
)

func init() {
	sessionsListCmd.Flags().StringVar(&sessionsUserID, "user", "user-guest", "user ID to list sessions for")
	sessionsListCmd.Flags().IntVar(&sessionsLimit, "limit", 20, "maximum sessions to list")
	sessionsCmd.AddCommand(sessionsListCmd, sessionsShowCmd, sessionsDeleteCmd)
	rootCmd.AddCommand(sessionsCmd)
}

func runSessionsList(cmd *cobra.Command, _ []string) error {
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

	chats, err := store.ListChats(qctx, sessionsUserID, sessionsLimit, 0)
	if err != nil {
		return fmt.Errorf("listing sessions: %w", err)
	}
	if len(chats) == 0 {
		fmt.Println("No sessions found.")
		return nil
	}

	for _, c := range chats {
		fmt.Printf("%s  %s  [%s] %q (%d messages)\n",
			c.ID, c.UpdatedAt.Format("2006-01-02 15:04"), c.Domain, c.InitialQuery, len(c.Messages))
	}
	return nil
}

func runSessionsShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	chatID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid session ID: %w", err)
	}

	_, store, pool, _, err := setupStorage(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	qctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	chat, err := store.Chat(qctx, chatID)
	if err != nil {
		return fmt.Errorf("loading session: %w", err)
	}

	fmt.Printf("Session %s (%s)\nStarted: %s by %s\n\n",
		chat.ID, chat.Domain, chat.CreatedAt.Format("2006-01-02 15:04"), chat.UserName)
	for _, m := range chat.Messages {
		fmt.Printf("[%s] %s\n", m.Role, m.Content)
		for _, v := range m.Videos {
			fmt.Printf("    video: %s %s\n", v.Title, v.Link)
		}
	}
	return nil
}

func runSessionsDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	chatID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid session ID: %w", err)
	}

	_, store, pool, _, err := setupStorage(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	qctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if err := store.DeleteChat(qctx, chatID); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	fmt.Printf("Deleted session %s\n", chatID)
	return nil
}
