package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/iksnae/cursor-history/internal"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	listLimit      int
	listWorkspace  string
	listJSON       bool
	listClearCache bool
	listLatest     bool
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List conversations across workspaces",
	Long: `List reconstructed conversations from every workspace, newest first.

Use --workspace to restrict the listing to one workspace hash, or --latest to
the most recently used workspace.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		history, err := newHistory()
		if err != nil {
			return err
		}
		if listClearCache {
			clearCache()
		}

		var conversations []internal.Conversation
		err = internal.ShowProgress(cmd.Context(), "Loading conversations", func() error {
			var loadErr error
			switch {
			case listWorkspace != "":
				conversations, loadErr = history.WorkspaceConversations(cmd.Context(), listWorkspace)
			case listLatest:
				conversations, loadErr = history.LatestConversations(cmd.Context())
			default:
				conversations, _, loadErr = history.AllConversations(cmd.Context())
			}
			return loadErr
		})
		if err != nil {
			return fmt.Errorf("failed to load conversations: %w", err)
		}

		limit := listLimit
		if limit == 0 {
			limit = cfg.Limits.Conversations
		}
		total := len(conversations)
		if limit > 0 && total > limit {
			conversations = conversations[:limit]
		}

		if listJSON {
			return printJSON(cmd.OutOrStdout(), conversations)
		}
		displayConversations(cmd.OutOrStdout(), conversations, total)
		return nil
	},
}

func displayConversations(w io.Writer, conversations []internal.Conversation, total int) {
	if len(conversations) == 0 {
		printHeader(w, "No conversations found")
		return
	}

	printHeader(w, "Found %d conversation(s)", total)

	tbl := newTable(w)
	tbl.AppendHeader(table.Row{"ID", "Title", "Messages", "Updated", "Workspace"})
	for _, conv := range conversations {
		tbl.AppendRow(table.Row{
			conv.ID,
			truncate(conv.Title, 50),
			strconv.Itoa(len(conv.Messages)),
			formatWhen(conv.UpdatedAt),
			shortWorkspace(conv.WorkspaceFolder),
		})
	}
	if len(conversations) < total {
		tbl.AppendFooter(table.Row{fmt.Sprintf("... %d more", total-len(conversations))})
	}
	tbl.Render()

	printTip(w, fmt.Sprintf("Tip: view one with `cursor-history show %s`", conversations[0].ID))
}

// clearCache removes the reconstruction cache named by the config
func clearCache() {
	dir := cfg.Cache.Dir
	if dir == "" {
		var err error
		if dir, err = internal.DefaultCacheDir(); err != nil {
			internal.LogWarn("Failed to locate cache: %v", err)
			return
		}
	}
	if err := internal.NewCacheManager(dir).ClearCache(); err != nil {
		internal.LogWarn("Failed to clear cache: %v", err)
	} else {
		internal.LogInfo("Cache cleared")
	}
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 0, "Maximum number of conversations to list (default from config)")
	listCmd.Flags().StringVarP(&listWorkspace, "workspace", "w", "", "Only list conversations of this workspace hash")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Print conversations as JSON")
	listCmd.Flags().BoolVar(&listLatest, "latest", false, "Only list conversations of the most recently used workspace")
	listCmd.Flags().BoolVar(&listClearCache, "clear-cache", false, "Clear the cache before running")
}
