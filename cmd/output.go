package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
)

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)
)

const emptyCell = "—"

// newTable creates a borderless go-pretty table writing to w
func newTable(w io.Writer) table.Writer {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.SeparateColumns = false
	tbl.Style().Options.DrawBorder = false
	tbl.Style().Options.SeparateHeader = true
	return tbl
}

// printJSON writes v as indented JSON
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatWhen renders an ISO-8601 timestamp relative to now
func formatWhen(ts string) string {
	if ts == "" {
		return emptyCell
	}
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return ts
	}
	return humanize.Time(t)
}

// truncate shortens s to at most n runes, marking the cut with "..."
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

// shortWorkspace shows the last path element of a workspace folder
func shortWorkspace(folder string) string {
	if folder == "" {
		return emptyCell
	}
	return truncate(filepath.Base(folder), 25)
}

func printHeader(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf(format, args...)))
	_, _ = fmt.Fprintln(w)
}

func printTip(w io.Writer, tip string) {
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, idStyle.Render(strings.TrimSpace(tip)))
}
