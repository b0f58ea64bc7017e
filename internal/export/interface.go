package export

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/iksnae/cursor-history/internal"
)

// Exporter defines the interface for all export formats
type Exporter interface {
	Export(conversations []internal.Conversation, w io.Writer) error
	Extension() string
}

// NewExporter creates a new exporter based on format. now stamps formats
// that record when they were written; nil means the wall clock.
func NewExporter(format string, now internal.Clock) (Exporter, error) {
	if now == nil {
		now = internal.SystemClock
	}

	switch strings.ToLower(format) {
	case "json":
		return &JSONExporter{}, nil
	case "csv":
		return &CSVExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{Now: now}, nil
	case "yaml", "yml":
		return &YAMLExporter{}, nil
	case "jsonl":
		return &JSONLExporter{}, nil
	default:
		return nil, &internal.ExportError{
			Format: format,
			Err:    fmt.Errorf("unsupported format: %s (supported: json, csv, markdown, yaml, jsonl)", format),
		}
	}
}

// Envelope is a rendered export together with what went into it
type Envelope struct {
	Format            string `json:"format"`
	Content           string `json:"content"`
	ConversationCount int    `json:"conversationCount"`
	ExportedAt        string `json:"exportedAt"`
}

// Render exports conversations in format and wraps the output in an Envelope
func Render(conversations []internal.Conversation, format string, now internal.Clock) (*Envelope, error) {
	if now == nil {
		now = internal.SystemClock
	}
	exportedAt := now()
	at := func() time.Time { return exportedAt }

	exp, err := NewExporter(format, at)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := exp.Export(conversations, &buf); err != nil {
		return nil, &internal.ExportError{Format: format, Err: err}
	}

	return &Envelope{
		Format:            format,
		Content:           buf.String(),
		ConversationCount: len(conversations),
		ExportedAt:        internal.FormatTime(exportedAt),
	}, nil
}
