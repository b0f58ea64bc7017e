package export

import (
	"bufio"
	"fmt"
	"io"

	"github.com/iksnae/cursor-history/internal"
)

// MarkdownExporter exports conversations in Markdown format: one section per
// conversation, one subsection per message, code blocks re-fenced with their language.
type MarkdownExporter struct {
	Now internal.Clock
}

// Export exports conversations to Markdown format
func (e *MarkdownExporter) Export(conversations []internal.Conversation, w io.Writer) error {
	now := e.Now
	if now == nil {
		now = internal.SystemClock
	}

	bw := bufio.NewWriter(w)

	// Header
	_, _ = fmt.Fprintf(bw, "# Cursor Chat History Export\n\n")
	_, _ = fmt.Fprintf(bw, "Exported: %s\n", internal.FormatTime(now()))
	_, _ = fmt.Fprintf(bw, "Total Conversations: %d\n\n", len(conversations))

	for _, conv := range conversations {
		workspace := conv.WorkspaceFolder
		if workspace == "" {
			workspace = "Unknown"
		}

		_, _ = fmt.Fprintf(bw, "## %s\n\n", conv.Title)
		_, _ = fmt.Fprintf(bw, "- **ID**: %s\n", conv.ID)
		_, _ = fmt.Fprintf(bw, "- **Created**: %s\n", conv.CreatedAt)
		_, _ = fmt.Fprintf(bw, "- **Updated**: %s\n", conv.UpdatedAt)
		_, _ = fmt.Fprintf(bw, "- **Workspace**: %s\n", workspace)
		_, _ = fmt.Fprintf(bw, "- **Messages**: %d\n\n", len(conv.Messages))

		for i, msg := range conv.Messages {
			_, _ = fmt.Fprintf(bw, "### Message %d (%s)\n\n", i+1, msg.Type)
			_, _ = fmt.Fprintf(bw, "%s\n\n", msg.Text)

			for _, block := range msg.CodeBlocks {
				_, _ = fmt.Fprintf(bw, "```%s\n%s\n```\n\n", block.Language, block.Code)
			}
		}

		_, _ = fmt.Fprintf(bw, "---\n\n")
	}

	return bw.Flush()
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
