package cmd

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/iksnae/cursor-history/internal"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	inspectKey    string
	inspectSearch string
	inspectFormat string
)

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect <workspace-hash>",
	Short: "Inspect the ItemTable of a workspace database",
	Long: `Inspect the raw key/value store of one workspace's state.vscdb.

Examples:
  cursor-history inspect <hash>                         # List every key with its size
  cursor-history inspect <hash> --key aiService.prompts # Print one decoded value
  cursor-history inspect <hash> --search assistant      # Keys whose value contains a term`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := resolveWorkspaceStorage()
		if err != nil {
			return err
		}

		ws, err := internal.NewWorkspaceScanner(root).Find(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		db, err := internal.OpenWorkspaceDB(ws)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		w := cmd.OutOrStdout()

		if inspectSearch != "" {
			pairs, err := db.Search(cmd.Context(), inspectSearch)
			if err != nil {
				return err
			}
			if inspectFormat == "json" {
				return printJSON(w, pairs)
			}
			displayPairs(w, pairs)
			return nil
		}

		data, err := db.AllData(cmd.Context())
		if err != nil {
			return err
		}

		if inspectKey != "" {
			value, ok := data[inspectKey]
			if !ok {
				return fmt.Errorf("key not found in %s: %s", ws.DBPath(), inspectKey)
			}
			return printJSON(w, value)
		}

		if inspectFormat == "json" {
			return printJSON(w, data)
		}

		pairs := make([]internal.KeyValuePair, 0, len(data))
		for _, key := range sortedKeys(data) {
			pairs = append(pairs, internal.KeyValuePair{Key: key, Value: fmt.Sprint(data[key])})
		}
		printHeader(w, "%s (%d keys)", ws.DBPath(), len(pairs))
		displayPairs(w, pairs)
		return nil
	},
}

func displayPairs(w io.Writer, pairs []internal.KeyValuePair) {
	if len(pairs) == 0 {
		_, _ = fmt.Fprintln(w, warningStyle.Render("No matching keys"))
		return
	}

	tbl := newTable(w)
	tbl.AppendHeader(table.Row{"Key", "Size", "Preview"})
	for _, pair := range pairs {
		tbl.AppendRow(table.Row{pair.Key, humanize.Bytes(uint64(len(pair.Value))), truncate(pair.Value, 60)})
	}
	tbl.AppendFooter(table.Row{fmt.Sprintf("Total: %d keys", len(pairs))})
	tbl.Render()
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringVar(&inspectKey, "key", "", "Print the decoded value of one key")
	inspectCmd.Flags().StringVar(&inspectSearch, "search", "", "Only keys whose raw value contains this term")
	inspectCmd.Flags().StringVar(&inspectFormat, "format", "text", "Output format (text, json)")
}
