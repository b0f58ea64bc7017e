package export

import (
	"io"

	"github.com/iksnae/cursor-history/internal"
	"gopkg.in/yaml.v3"
)

// YAMLExporter exports conversations in YAML format
type YAMLExporter struct{}

// Export exports conversations to YAML format
func (e *YAMLExporter) Export(conversations []internal.Conversation, w io.Writer) error {
	if conversations == nil {
		conversations = []internal.Conversation{}
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer func() { _ = enc.Close() }()

	return enc.Encode(conversations)
}

// Extension returns the file extension for this format
func (e *YAMLExporter) Extension() string {
	return "yaml"
}
