package export

import (
	"encoding/json"
	"io"

	"github.com/iksnae/cursor-history/internal"
)

// JSONExporter exports conversations as a pretty-printed JSON array
type JSONExporter struct{}

// Export exports conversations to JSON format
func (e *JSONExporter) Export(conversations []internal.Conversation, w io.Writer) error {
	if conversations == nil {
		conversations = []internal.Conversation{}
	}

	data, err := json.MarshalIndent(conversations, "", "  ")
	if err != nil {
		return err
	}

	_, err = w.Write(data)
	return err
}

// Extension returns the file extension for this format
func (e *JSONExporter) Extension() string {
	return "json"
}
