package export

import (
	"io"
	"strconv"
	"strings"

	"github.com/iksnae/cursor-history/internal"
)

var csvHeader = []string{"ID", "Title", "Created", "Updated", "Messages", "Workspace"}

// CSVExporter exports one summary row per conversation. The title is always
// quoted and the workspace only when it holds a separator or quote; rows are
// newline-separated with no trailing newline.
type CSVExporter struct{}

// Export exports conversations to CSV format
func (e *CSVExporter) Export(conversations []internal.Conversation, w io.Writer) error {
	rows := make([]string, 0, len(conversations)+1)
	rows = append(rows, strings.Join(csvHeader, ","))

	for _, conv := range conversations {
		rows = append(rows, strings.Join([]string{
			conv.ID,
			quoteCSV(conv.Title),
			conv.CreatedAt,
			conv.UpdatedAt,
			strconv.Itoa(len(conv.Messages)),
			quoteCSVIfNeeded(conv.WorkspaceFolder),
		}, ","))
	}

	_, err := io.WriteString(w, strings.Join(rows, "\n"))
	return err
}

func quoteCSV(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func quoteCSVIfNeeded(s string) string {
	if strings.ContainsAny(s, ",\"\r\n") {
		return quoteCSV(s)
	}
	return s
}

// Extension returns the file extension for this format
func (e *CSVExporter) Extension() string {
	return "csv"
}
