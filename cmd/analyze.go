package cmd

import (
	"fmt"
	"io"

	"github.com/iksnae/cursor-history/internal"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var analyzeJSON bool

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <conversation-id>",
	Short: "Analyze the code changes of a conversation",
	Long: `Pair each user turn with the assistant reply that follows it and classify
the reply's code blocks as created or modified files.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		history, err := newHistory()
		if err != nil {
			return err
		}

		var result *internal.ConversationAnalysis
		err = internal.ShowProgress(cmd.Context(), "Analyzing conversation", func() error {
			var analyzeErr error
			result, analyzeErr = history.AnalyzeConversation(cmd.Context(), args[0])
			return analyzeErr
		})
		if err != nil {
			return err
		}

		if analyzeJSON {
			return printJSON(cmd.OutOrStdout(), result)
		}
		displayAnalysis(cmd.OutOrStdout(), result)
		return nil
	},
}

func displayAnalysis(w io.Writer, result *internal.ConversationAnalysis) {
	a := result.Analysis
	printHeader(w, "%s", result.Conversation.Title)

	_, _ = fmt.Fprintf(w, "Messages:      %d (%d user, %d assistant)\n", a.MessageCount, a.UserMessages, a.AssistantMessages)
	_, _ = fmt.Fprintf(w, "Code blocks:   %d\n", a.CodeBlocks)
	_, _ = fmt.Fprintf(w, "Lines added:   %d\n", a.TotalLinesAdded)
	_, _ = fmt.Fprintf(w, "Lines changed: %d\n", a.TotalLinesModified)
	_, _ = fmt.Fprintln(w)

	if len(a.FileChanges) == 0 {
		_, _ = fmt.Fprintln(w, dateStyle.Render("No file changes"))
		return
	}

	tbl := newTable(w)
	tbl.AppendHeader(table.Row{"File", "Change", "+", "-"})
	for _, change := range a.FileChanges {
		tbl.AppendRow(table.Row{change.File, string(change.Type), change.Additions, change.Deletions})
	}
	tbl.AppendFooter(table.Row{fmt.Sprintf("Total: %d file(s)", len(a.FileChanges))})
	tbl.Render()
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Print the analysis as JSON")
}
