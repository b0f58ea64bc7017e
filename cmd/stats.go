package cmd

import (
	"fmt"
	"io"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/iksnae/cursor-history/internal"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	statsDays    int
	statsGroupBy string
	statsJSON    bool
)

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize code changes across recent conversations",
	Long: `Roll up the code changes of every conversation updated in the last N days,
by file extension, by workspace and by day (or week or month).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		days := statsDays
		if days == 0 {
			days = cfg.Stats.Days
		}
		groupBy := cfg.GroupBy()
		if statsGroupBy != "" {
			var err error
			if groupBy, err = internal.ParseGroupBy(statsGroupBy); err != nil {
				return err
			}
		}

		history, err := newHistory()
		if err != nil {
			return err
		}

		var result *internal.StatisticsResult
		err = internal.ShowProgress(cmd.Context(), "Aggregating statistics", func() error {
			var statsErr error
			result, statsErr = history.Statistics(cmd.Context(), days, groupBy)
			return statsErr
		})
		if err != nil {
			return fmt.Errorf("failed to aggregate statistics: %w", err)
		}

		if statsJSON {
			return printJSON(cmd.OutOrStdout(), result)
		}
		displayStatistics(cmd.OutOrStdout(), result)
		return nil
	},
}

func displayStatistics(w io.Writer, result *internal.StatisticsResult) {
	s := result.Statistics
	printHeader(w, "Code statistics for the last %s", result.Period)

	_, _ = fmt.Fprintf(w, "Conversations: %s\n", humanize.Comma(int64(s.TotalConversations)))
	_, _ = fmt.Fprintf(w, "Messages:      %s\n", humanize.Comma(int64(s.TotalMessages)))
	_, _ = fmt.Fprintf(w, "Code blocks:   %s\n", humanize.Comma(int64(s.TotalCodeBlocks)))
	_, _ = fmt.Fprintf(w, "Lines added:   %s\n", humanize.Comma(int64(s.TotalLinesAdded)))
	_, _ = fmt.Fprintf(w, "Lines changed: %s\n", humanize.Comma(int64(s.TotalLinesModified)))

	if len(s.LanguageStats) > 0 {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, sectionStyle.Render("By extension"))
		tbl := newTable(w)
		tbl.AppendHeader(table.Row{"Extension", "Language", "Files", "+", "-"})
		for _, ext := range sortedKeys(s.LanguageStats) {
			ls := s.LanguageStats[ext]
			tbl.AppendRow(table.Row{ext, ls.Language, ls.Files, ls.LinesAdded, ls.LinesDeleted})
		}
		tbl.Render()
	}

	if len(s.WorkspaceStats) > 0 {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, sectionStyle.Render("By workspace"))
		tbl := newTable(w)
		tbl.AppendHeader(table.Row{"Workspace", "Conversations", "+", "~"})
		for _, name := range sortedKeys(s.WorkspaceStats) {
			ws := s.WorkspaceStats[name]
			tbl.AppendRow(table.Row{name, ws.Conversations, ws.LinesAdded, ws.LinesModified})
		}
		tbl.Render()
	}

	periods, label := s.DailyStats, "Day"
	if s.PeriodStats != nil {
		periods, label = s.PeriodStats, string(result.GroupBy)
	}
	if len(periods) > 0 {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, sectionStyle.Render("By "+label))
		tbl := newTable(w)
		tbl.AppendHeader(table.Row{label, "Conversations", "Messages", "+", "~"})
		for _, key := range sortedKeys(periods) {
			ps := periods[key]
			tbl.AppendRow(table.Row{key, ps.Conversations, ps.Messages, ps.LinesAdded, ps.LinesModified})
		}
		tbl.Render()
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().IntVar(&statsDays, "days", 0, "Analyze conversations from the last N days (default from config)")
	statsCmd.Flags().StringVar(&statsGroupBy, "group-by", "", "Group by day, week, month, language or workspace (default from config)")
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Print the report as JSON")
}
