package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/iksnae/cursor-history/internal"
	"github.com/iksnae/cursor-history/internal/export"
	"github.com/spf13/cobra"
)

var (
	exportFormat    string
	exportOutput    string
	exportOutputDir string
	exportWorkspace string
	exportIDs       []string
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export conversations",
	Long: `Export conversations as json, csv, markdown, yaml or jsonl.

By default every conversation is written to stdout as one document. Use --id
to pick conversations, --workspace to restrict to one workspace hash, --out to
write to a file, or --out-dir to write one file per conversation.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		exporter, err := export.NewExporter(exportFormat, nil)
		if err != nil {
			return err
		}

		history, err := newHistory()
		if err != nil {
			return err
		}

		var conversations []internal.Conversation
		err = internal.ShowProgress(cmd.Context(), "Loading conversations", func() error {
			var loadErr error
			if exportWorkspace != "" {
				conversations, loadErr = history.WorkspaceConversations(cmd.Context(), exportWorkspace)
				conversations = internal.SelectConversations(conversations, exportIDs)
			} else {
				conversations, loadErr = history.Conversations(cmd.Context(), exportIDs)
			}
			return loadErr
		})
		if err != nil {
			return fmt.Errorf("failed to load conversations: %w", err)
		}

		if len(conversations) == 0 {
			internal.PrintWarning(cmd.ErrOrStderr(), "No conversations matched; exporting an empty document")
		}

		if exportOutputDir != "" {
			return exportEach(cmd, exporter, conversations)
		}

		out := cmd.OutOrStdout()
		if exportOutput != "" && exportOutput != "-" {
			file, err := os.Create(exportOutput)
			if err != nil {
				return &internal.ExportError{Format: exportFormat, Path: exportOutput, Err: err}
			}
			defer func() { _ = file.Close() }()
			out = file
		}

		if err := exporter.Export(conversations, out); err != nil {
			return &internal.ExportError{Format: exportFormat, Path: exportOutput, Err: err}
		}
		if exportOutput != "" && exportOutput != "-" {
			internal.PrintSuccess(cmd.ErrOrStderr(), fmt.Sprintf("Export complete: %d conversation(s) written to %s", len(conversations), exportOutput))
		}
		return nil
	},
}

// exportEach writes one file per conversation into the output directory
func exportEach(cmd *cobra.Command, exporter export.Exporter, conversations []internal.Conversation) error {
	if err := os.MkdirAll(exportOutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	written := 0
	for i := range conversations {
		conv := conversations[i : i+1]
		path := filepath.Join(exportOutputDir, fmt.Sprintf("conversation_%s.%s", conv[0].ID, exporter.Extension()))

		file, err := os.Create(path)
		if err != nil {
			internal.LogError("Failed to create file %s: %v", path, err)
			continue
		}
		if err := exporter.Export(conv, file); err != nil {
			_ = file.Close()
			internal.LogError("Failed to export conversation %s: %v", conv[0].ID, err)
			continue
		}
		if err := file.Close(); err != nil {
			internal.LogWarn("Failed to close file %s: %v", path, err)
		}
		written++
	}

	internal.PrintSuccess(cmd.ErrOrStderr(), fmt.Sprintf("Export complete: %d conversation(s) exported to %s", written, exportOutputDir))
	return nil
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "Export format (json, csv, md, yaml, jsonl)")
	exportCmd.Flags().StringVarP(&exportOutput, "out", "o", "", "Output file (default stdout)")
	exportCmd.Flags().StringVar(&exportOutputDir, "out-dir", "", "Write one file per conversation into this directory")
	exportCmd.Flags().StringVarP(&exportWorkspace, "workspace", "w", "", "Only export conversations of this workspace hash")
	exportCmd.Flags().StringSliceVar(&exportIDs, "id", nil, "Export only these conversation ids (repeatable)")
}
