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
	diagnoseLimit int
	diagnoseJSON  bool
)

// diagnoseCmd represents the diagnose command
var diagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "Show the largest storage keys of each workspace",
	Long:  `List the largest ItemTable keys of every workspace database to help locate chat data.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		history, err := newHistory()
		if err != nil {
			return err
		}

		limit := diagnoseLimit
		if limit == 0 {
			limit = cfg.Limits.Diagnose
		}

		diagnoses, err := history.Diagnose(cmd.Context(), limit)
		if err != nil {
			return fmt.Errorf("failed to diagnose storage: %w", err)
		}

		if diagnoseJSON {
			return printJSON(cmd.OutOrStdout(), diagnoses)
		}
		displayDiagnoses(cmd.OutOrStdout(), diagnoses)
		return nil
	},
}

func displayDiagnoses(w io.Writer, diagnoses []internal.StorageDiagnosis) {
	if len(diagnoses) == 0 {
		printHeader(w, "No workspaces found")
		return
	}

	for _, d := range diagnoses {
		project := d.ProjectPath
		if project == "" {
			project = emptyCell
		}
		_, _ = fmt.Fprintln(w, sectionStyle.Render(d.Workspace)+" "+dateStyle.Render(project))

		if len(d.TopKeys) == 0 {
			_, _ = fmt.Fprintln(w, warningStyle.Render("  no readable keys"))
			_, _ = fmt.Fprintln(w)
			continue
		}

		tbl := newTable(w)
		tbl.AppendHeader(table.Row{"Key", "Size"})
		for _, k := range d.TopKeys {
			tbl.AppendRow(table.Row{truncate(k.Key, 80), humanize.Bytes(uint64(k.Size))})
		}
		tbl.Render()
		_, _ = fmt.Fprintln(w)
	}
}

func init() {
	rootCmd.AddCommand(diagnoseCmd)
	diagnoseCmd.Flags().IntVarP(&diagnoseLimit, "limit", "n", 0, "Max keys to show per workspace (default from config)")
	diagnoseCmd.Flags().BoolVar(&diagnoseJSON, "json", false, "Print the diagnosis as JSON")
}
