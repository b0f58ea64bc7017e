package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/iksnae/cursor-history/internal"
)

// JSONLExporter exports conversations in JSONL format (one conversation per line)
type JSONLExporter struct{}

// Export exports conversations to JSONL format
func (e *JSONLExporter) Export(conversations []internal.Conversation, w io.Writer) error {
	enc := json.NewEncoder(w)

	for i := range conversations {
		if err := enc.Encode(&conversations[i]); err != nil {
			return fmt.Errorf("failed to encode conversation %s: %w", conversations[i].ID, err)
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
