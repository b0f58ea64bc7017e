package cmd

import (
	"os/signal"
	"syscall"

	"github.com/iksnae/cursor-history/internal"
	"github.com/iksnae/cursor-history/internal/mcp"
	"github.com/spf13/cobra"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server on stdio",
	Long: `Serve the chat history as Model Context Protocol tools over stdin/stdout.

Logs go to stderr; stdout carries only protocol messages.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		history, err := newHistory()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		srv := mcp.NewServer(history, mcp.ServerDeps{Config: cfg})
		internal.LogInfo("Serving %d tools", len(srv.ListToolNames()))
		return srv.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
