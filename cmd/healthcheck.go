package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/cursor-history/internal"
	"github.com/spf13/cobra"
)

var (
	healthcheckVerbose bool
)

var errorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("196")).
	Bold(true)

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check if cursor-history can locate and read chat history",
	Long: `Check the health of cursor-history by verifying:
  • workspaceStorage detection
  • Workspace databases
  • Conversation reconstruction
  • The reconstruction cache

This command is useful for debugging storage issues.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		say := func(a ...any) { _, _ = fmt.Fprintln(w, a...) }
		sayf := func(format string, a ...any) { _, _ = fmt.Fprintf(w, format, a...) }

		say(sectionStyle.Render("Cursor History Health Check"))
		say()

		// Step 1: Locate workspaceStorage
		say(infoStyle.Render("Step 1: Locating workspaceStorage..."))
		root, err := resolveWorkspaceStorage()
		if err != nil {
			say(errorStyle.Render("✗ workspaceStorage not available:"), err)
			return fmt.Errorf("health check failed: %w", err)
		}
		say(successStyle.Render("✓ workspaceStorage found"))
		if healthcheckVerbose {
			sayf("   Path: %s\n", root)
			if detected, err := internal.DetectStoragePaths(); err == nil && detected.WorkspaceStorage != root {
				sayf("   Default location %s (present: %v)\n", detected.WorkspaceStorage, detected.Exists())
			}
		}
		say()

		history, err := newHistory()
		if err != nil {
			return err
		}

		// Step 2: Scan workspaces
		say(infoStyle.Render("Step 2: Scanning workspaces..."))
		workspaces, err := history.Workspaces(cmd.Context())
		if err != nil {
			say(errorStyle.Render("✗ Failed to scan workspaces:"), err)
			return fmt.Errorf("health check failed: %w", err)
		}
		if len(workspaces) == 0 {
			say(warningStyle.Render("! No workspace databases found"))
		} else {
			say(successStyle.Render(fmt.Sprintf("✓ Found %d workspace(s)", len(workspaces))))
			if healthcheckVerbose {
				for i, ws := range workspaces {
					if i == 5 {
						sayf("   ... and %d more\n", len(workspaces)-5)
						break
					}
					sayf("   [%d] %s %s\n", i+1, ws.Hash, ws.ProjectPath)
				}
			}
		}
		say()

		// Step 3: Reconstruct conversations
		say(infoStyle.Render("Step 3: Reconstructing conversations..."))
		conversations, _, err := history.AllConversations(cmd.Context())
		if err != nil {
			say(errorStyle.Render("✗ Failed to reconstruct conversations:"), err)
			return fmt.Errorf("health check failed: %w", err)
		}
		say()

		// Step 4: Inspect the cache
		say(infoStyle.Render("Step 4: Checking cache..."))
		if cache := history.Cache(); cache == nil {
			say(warningStyle.Render("! Cache disabled"))
		} else if index, err := cache.LoadIndex(); err != nil {
			say(warningStyle.Render("! Cache index not readable yet; it is rebuilt on the next load"))
			if healthcheckVerbose {
				sayf("   Dir: %s (%v)\n", cache.GetCacheDir(), err)
			}
		} else {
			say(successStyle.Render(fmt.Sprintf("✓ Cache holds %d workspace(s)", len(index.Workspaces))))
			if healthcheckVerbose {
				sayf("   Dir: %s\n", cache.GetCacheDir())
			}
		}
		say()

		// Summary
		say(sectionStyle.Render("Summary"))
		say()
		if len(conversations) == 0 {
			say(warningStyle.Render("! Storage available but no conversations found"))
			say("   • No chat has been recorded yet, or it lives under keys this tool does not read")
			say("   • Run `cursor-history diagnose` to see the largest keys per workspace")
			return nil
		}
		say(successStyle.Render("✓ Health check passed!"))
		say(successStyle.Render(fmt.Sprintf("   • Workspaces: %d", len(workspaces))))
		say(successStyle.Render(fmt.Sprintf("   • Conversations: %d", len(conversations))))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
	healthcheckCmd.Flags().BoolVarP(&healthcheckVerbose, "details", "d", false, "Show detailed diagnostic information")
}
