package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/iksnae/cursor-history/internal"
	"github.com/spf13/cobra"
)

var (
	reconstructOutput string
)

// reconstructCmd represents the reconstruct command
var reconstructCmd = &cobra.Command{
	Use:   "reconstruct",
	Short: "Rebuild every workspace and save the intermediary format",
	Long: `Rebuild the conversations of every workspace, refreshing the cache, and
optionally save them per workspace as JSON for debugging.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !noCache {
			clearCache()
		}

		history, err := newHistory()
		if err != nil {
			return err
		}

		workspaces, err := history.Workspaces(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list workspaces: %w", err)
		}

		if reconstructOutput != "" {
			if err := os.MkdirAll(reconstructOutput, 0o755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
			internal.PrintInfo(cmd.ErrOrStderr(), fmt.Sprintf("Writing intermediary files to %s", reconstructOutput))
		}

		total := 0
		for i, ws := range workspaces {
			conversations, err := history.WorkspaceConversations(cmd.Context(), ws.Hash)
			if err != nil {
				internal.LogWarn("Skipping workspace %s: %v", ws.Hash, err)
				continue
			}
			total += len(conversations)
			internal.LogInfo("Rebuilt workspace %d/%d: %s (%d conversation(s))", i+1, len(workspaces), ws.Hash, len(conversations))

			if reconstructOutput == "" || len(conversations) == 0 {
				continue
			}
			path := filepath.Join(reconstructOutput, fmt.Sprintf("workspace_%s.json", ws.Hash))
			data, err := json.MarshalIndent(conversations, "", "  ")
			if err != nil {
				internal.LogError("Failed to marshal workspace %s: %v", ws.Hash, err)
				continue
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				internal.LogError("Failed to write file %s: %v", path, err)
			}
		}

		internal.PrintSuccess(cmd.ErrOrStderr(), fmt.Sprintf("Reconstruction complete: %d conversation(s) from %d workspace(s)", total, len(workspaces)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reconstructCmd)
	reconstructCmd.Flags().StringVarP(&reconstructOutput, "out", "o", "", "Output directory for the intermediary format")
}
