package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/iksnae/cursor-history/internal"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	workspacesRecentDays int
	workspacesProject    string
	workspacesJSON       bool
)

// workspacesCmd represents the workspaces command
var workspacesCmd = &cobra.Command{
	Use:   "workspaces",
	Short: "List Cursor workspaces",
	Long:  `List every workspace under workspaceStorage that has a state database, most recently used first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		history, err := newHistory()
		if err != nil {
			return err
		}

		var workspaces []internal.Workspace
		switch {
		case workspacesProject != "":
			workspaces, err = history.ProjectWorkspaces(cmd.Context(), workspacesProject)
		case workspacesRecentDays > 0:
			workspaces, err = history.RecentWorkspaces(cmd.Context(), workspacesRecentDays)
		default:
			workspaces, err = history.Workspaces(cmd.Context())
		}
		if err != nil {
			return fmt.Errorf("failed to list workspaces: %w", err)
		}

		if workspacesJSON {
			return printJSON(cmd.OutOrStdout(), workspaces)
		}
		displayWorkspaces(cmd.OutOrStdout(), workspaces)
		return nil
	},
}

func displayWorkspaces(w io.Writer, workspaces []internal.Workspace) {
	if len(workspaces) == 0 {
		printHeader(w, "No workspaces found")
		return
	}

	printHeader(w, "Found %d workspace(s)", len(workspaces))

	tbl := newTable(w)
	tbl.AppendHeader(table.Row{"Hash", "Project", "Modified", "Database"})
	for _, ws := range workspaces {
		project := ws.ProjectPath
		if project == "" {
			project = emptyCell
		}
		size := emptyCell
		if info, err := os.Stat(ws.DBPath()); err == nil {
			size = humanize.Bytes(uint64(info.Size()))
		}
		tbl.AppendRow(table.Row{ws.Hash, project, humanize.Time(ws.LastModified), size})
	}
	tbl.Render()
}

func init() {
	rootCmd.AddCommand(workspacesCmd)
	workspacesCmd.Flags().IntVar(&workspacesRecentDays, "recent-days", 0, "Only list workspaces modified in the last N days")
	workspacesCmd.Flags().StringVar(&workspacesProject, "project", "", "Only list workspaces whose project folder matches this path")
	workspacesCmd.Flags().BoolVar(&workspacesJSON, "json", false, "Print workspaces as JSON")
}
