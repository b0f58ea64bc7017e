package cmd

import (
	"fmt"
	"strings"

	"github.com/iksnae/cursor-history/internal"
	"github.com/spf13/cobra"
)

var (
	searchLimit int
	searchJSON  bool
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search conversation titles and messages",
	Long:  `Search every conversation for a case-insensitive substring of its title or message text.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")

		history, err := newHistory()
		if err != nil {
			return err
		}

		limit := searchLimit
		if limit == 0 {
			limit = cfg.Limits.Search
		}

		var matches []internal.Conversation
		err = internal.ShowProgress(cmd.Context(), fmt.Sprintf("Searching for %q", query), func() error {
			var searchErr error
			matches, _, searchErr = history.Search(cmd.Context(), query, limit)
			return searchErr
		})
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}

		if searchJSON {
			return printJSON(cmd.OutOrStdout(), matches)
		}
		displayConversations(cmd.OutOrStdout(), matches, len(matches))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "Maximum number of results (default from config)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Print matches as JSON")
}
