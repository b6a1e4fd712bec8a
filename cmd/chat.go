package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/udyogmitra/mitra/internal/assistant"
	"github.com/udyogmitra/mitra/internal/catalog"
	"github.com/udyogmitra/mitra/internal/history"
	"github.com/udyogmitra/mitra/internal/team"
	"github.com/udyogmitra/mitra/internal/trends"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	RunE:  runChat,
}

var chatUserName string

func init() {
	chatCmd.Flags().StringVar(&chatUserName, "name", "", "display name for this session")
	rootCmd.AddCommand(chatCmd)
}

// Terminal styles for the interactive session.
var (
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	answerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	videoStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	noticeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
	errTextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

func runChat(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, closeApp, err := setup(ctx)
	if err != nil {
		return err
	}
	defer closeApp()

	user := team.DefaultRoster().Guest()
	if chatUserName != "" {
		user.Name = chatUserName
	}

	stats := a.catalog.Stats()
	fmt.Println(promptStyle.Render("Mitra") + " - ask me anything about running your business.")
	fmt.Println(noticeStyle.Render(fmt.Sprintf(
		"Loaded %d FAQs and %d videos. Type /help for commands, Ctrl+D to quit.",
		stats.FAQCount, stats.VideoCount)))
	fmt.Println()

	var (
		lastTurn   *assistant.Turn
		chatID     uuid.UUID
		transcript []history.Message
	)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(promptStyle.Render("you> "))
		if !scanner.Scan() {
			fmt.Println()
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			if handleChatCommand(a, input, user, lastTurn) {
				break
			}
			continue
		}

		fmt.Print(answerStyle.Render("mitra> "))
		turn, err := a.assistant.Respond(ctx, user, input, func(_ context.Context, text string) error {
			fmt.Print(answerStyle.Render(text))
			return nil
		})
		if err != nil {
			if errors.Is(err, assistant.ErrEmptyQuery) {
				continue
			}
			fmt.Println(errTextStyle.Render("something went wrong: " + err.Error()))
			continue
		}
		fmt.Println()

		printVideos(turn)
		lastTurn = turn

		if a.store != nil {
			transcript = append(transcript,
				history.Message{
					ID:        uuid.NewString(),
					Role:      history.RoleUser,
					Content:   input,
					Timestamp: turn.Timestamp,
				},
				history.Message{
					ID:        uuid.NewString(),
					Role:      history.RoleAssistant,
					Content:   turn.Response,
					Timestamp: turn.Timestamp,
					Videos:    turn.Videos,
				},
			)
			saveTranscript(a, user, turn, &chatID, transcript)
		}
		fmt.Println()
	}

	if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("reading input: %w", err)
	}
	return nil
}

// saveTranscript persists the running session transcript. Best effort:
// a failed write warns and the conversation continues.
func saveTranscript(a *app, user team.Member, turn *assistant.Turn, chatID *uuid.UUID, transcript []history.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	if *chatID == uuid.Nil {
		domain := catalog.DefaultDomain
		if len(turn.MatchedFAQs) > 0 {
			domain = turn.MatchedFAQs[0].Domain
		}
		chat, err := a.store.CreateChat(ctx, user.ID, user.Name, turn.Query, domain, transcript)
		if err != nil {
			a.logger.Warn("saving chat session failed", "error", err)
			return
		}
		*chatID = chat.ID
		return
	}

	if _, err := a.store.UpdateMessages(ctx, *chatID, transcript); err != nil {
		a.logger.Warn("updating chat session failed", "error", err)
	}
}

func printVideos(turn *assistant.Turn) {
	if len(turn.Videos) == 0 {
		return
	}
	fmt.Println()
	fmt.Println(videoStyle.Render("Videos you might find useful:"))
	for _, v := range turn.Videos {
		fmt.Println(videoStyle.Render("  - " + v.Title + "  " + v.Link))
	}
}

// handleChatCommand executes a slash command; true means exit.
func handleChatCommand(a *app, input string, user team.Member, lastTurn *assistant.Turn) bool {
	parts := strings.Fields(input)

	switch parts[0] {
	case "/help":
		fmt.Println("Commands:")
		fmt.Println("  /help            show this help")
		fmt.Println("  /records         show catalog counts")
		fmt.Println("  /trends          show trending query keywords")
		fmt.Println("  /up, /down       rate the last answer")
		fmt.Println("  /exit            quit")
		fmt.Println()

	case "/records":
		stats := a.catalog.Stats()
		fmt.Printf("FAQs: %d\nVideos: %d\n\n", stats.FAQCount, stats.VideoCount)

	case "/trends":
		printTrendReport(a)

	case "/up", "/down":
		if lastTurn == nil {
			fmt.Println(noticeStyle.Render("Nothing to rate yet."))
			break
		}
		vote := assistant.VoteUp
		if parts[0] == "/down" {
			vote = assistant.VoteDown
		}
		a.assistant.RecordFeedback(assistant.Feedback{
			UserID:   user.ID,
			UserName: user.Name,
			Query:    lastTurn.Query,
			Response: lastTurn.Response,
			Vote:     vote,
		})
		fmt.Println(noticeStyle.Render("Thanks for the feedback."))
		fmt.Println()

	case "/exit", "/quit":
		fmt.Println("Goodbye!")
		return true

	default:
		fmt.Printf("Unknown command: %s (try /help)\n\n", parts[0])
	}
	return false
}

func printTrendReport(a *app) {
	if a.store == nil {
		fmt.Println(noticeStyle.Render("Trends need storage; enable it with MITRA_STORAGE_ENABLED or DATABASE_URL."))
		fmt.Println()
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	queries, err := a.store.RecentQueries(ctx, trendWindow)
	if err != nil {
		fmt.Println(errTextStyle.Render("loading query history failed: " + err.Error()))
		return
	}

	ranked := trends.Analyze(queries, trendTopN)
	if len(ranked) == 0 {
		fmt.Println(noticeStyle.Render("No queries logged yet."))
		fmt.Println()
		return
	}

	fmt.Println("Trending keywords:")
	for i, kc := range ranked {
		fmt.Printf("  %2d. %-20s %d\n", i+1, kc.Keyword, kc.Count)
	}
	fmt.Println()
}
