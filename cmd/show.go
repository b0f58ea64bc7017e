package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/cursor-history/internal"
	"github.com/spf13/cobra"
)

var (
	showLimit int
	showSince string
	showJSON  bool
)

var (
	// Styles for show command
	conversationHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("212")).
				Padding(0, 1).
				MarginBottom(1)

	conversationMetaStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("243")).
				MarginBottom(1)

	userMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39")).
				Bold(true).
				Padding(0, 1)

	assistantMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("135")).
				Bold(true).
				Padding(0, 1)

	messageContentStyle = lipgloss.NewStyle().
				Padding(0, 2).
				MarginBottom(1)

	timestampStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show <conversation-id>",
	Short: "Show messages for a specific conversation",
	Long:  `Display the messages of one reconstructed conversation. Use 'cursor-history list' to find ids.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]

		var since time.Time
		if showSince != "" {
			var err error
			if since, err = time.Parse(time.RFC3339, showSince); err != nil {
				return fmt.Errorf("invalid --since timestamp %q: %w", showSince, err)
			}
		}

		history, err := newHistory()
		if err != nil {
			return err
		}

		conv, err := findConversation(cmd, history, id)
		if err != nil {
			return err
		}

		if showJSON {
			return printJSON(cmd.OutOrStdout(), conv)
		}

		messages := conv.Messages
		if !since.IsZero() {
			filtered := make([]internal.Message, 0, len(messages))
			for _, msg := range messages {
				if t, err := time.Parse(time.RFC3339Nano, msg.CreatedAt); err == nil && !t.Before(since) {
					filtered = append(filtered, msg)
				}
			}
			messages = filtered
		}

		total := len(messages)
		if showLimit > 0 && showLimit < total {
			messages = messages[:showLimit]
		}

		w := cmd.OutOrStdout()
		displayConversationHeader(w, conv)
		for i, msg := range messages {
			displayMessage(w, i+1, msg, total)
		}

		// Show remaining count if limit was applied
		if showLimit > 0 && showLimit < total {
			_, _ = fmt.Fprintln(w, lipgloss.NewStyle().
				Foreground(lipgloss.Color("243")).
				Italic(true).
				Render(fmt.Sprintf("... (%d more message(s))", total-showLimit)))
		}

		return nil
	},
}

// findConversation looks a conversation up by id across every workspace
func findConversation(cmd *cobra.Command, history *internal.History, id string) (*internal.Conversation, error) {
	var conversations []internal.Conversation
	err := internal.ShowProgress(cmd.Context(), "Loading conversations", func() error {
		var loadErr error
		conversations, loadErr = history.Conversations(cmd.Context(), []string{id})
		return loadErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load conversations: %w", err)
	}
	if len(conversations) == 0 {
		return nil, fmt.Errorf("%w: %s", internal.ErrConversationNotFound, id)
	}
	return &conversations[0], nil
}

func displayConversationHeader(w io.Writer, conv *internal.Conversation) {
	if conv == nil {
		return
	}
	_, _ = fmt.Fprintln(w, conversationHeaderStyle.Render(conv.Title))

	metaParts := []string{
		fmt.Sprintf("Created: %s", conv.CreatedAt),
		fmt.Sprintf("Updated: %s", conv.UpdatedAt),
		fmt.Sprintf("Messages: %d", len(conv.Messages)),
	}
	if conv.WorkspaceFolder != "" {
		metaParts = append(metaParts, fmt.Sprintf("Workspace: %s", conv.WorkspaceFolder))
	}
	_, _ = fmt.Fprintln(w, conversationMetaStyle.Render(strings.Join(metaParts, " • ")))
	_, _ = fmt.Fprintln(w)
}

func displayMessage(w io.Writer, index int, msg internal.Message, total int) {
	actorStyle := assistantMessageStyle
	actorLabel := "Assistant"
	if msg.Type == internal.MessageUser {
		actorStyle = userMessageStyle
		actorLabel = "User"
	}

	// Message header
	header := actorStyle.Render(actorLabel) + " " + timestampStyle.Render(fmt.Sprintf("[%d/%d]", index, total))
	if msg.CreatedAt != "" {
		if t, err := time.Parse(time.RFC3339Nano, msg.CreatedAt); err == nil {
			header += " " + timestampStyle.Render(t.Format("2006-01-02 15:04:05"))
		} else {
			header += " " + timestampStyle.Render(msg.CreatedAt)
		}
	}
	_, _ = fmt.Fprintln(w, header)

	content := strings.TrimSpace(msg.Text)
	if content != "" {
		_, _ = fmt.Fprintln(w, messageContentStyle.Render(wrapText(content, 80)))
	} else {
		_, _ = fmt.Fprintln(w, messageContentStyle.Foreground(lipgloss.Color("240")).Render("(empty message)"))
	}
	_, _ = fmt.Fprintln(w)
}

// wrapText wraps prose lines to width. Lines inside ``` fences are kept as is.
func wrapText(text string, width int) string {
	lines := strings.Split(text, "\n")
	var wrapped []string
	inFence := false

	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inFence = !inFence
			wrapped = append(wrapped, line)
			continue
		}
		if inFence || len(line) <= width {
			wrapped = append(wrapped, line)
			continue
		}

		// Wrap long lines
		words := strings.Fields(line)
		currentLine := ""
		for _, word := range words {
			if len(currentLine)+len(word)+1 > width {
				if currentLine != "" {
					wrapped = append(wrapped, currentLine)
					currentLine = word
				} else {
					wrapped = append(wrapped, word)
					currentLine = ""
				}
			} else {
				if currentLine == "" {
					currentLine = word
				} else {
					currentLine += " " + word
				}
			}
		}
		if currentLine != "" {
			wrapped = append(wrapped, currentLine)
		}
	}

	return strings.Join(wrapped, "\n")
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().IntVarP(&showLimit, "limit", "n", 0, "Limit number of messages to show")
	showCmd.Flags().StringVar(&showSince, "since", "", "Show messages since timestamp (ISO8601)")
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Print the conversation as JSON")
}
