package internal

import (
	"encoding/json"
	"math"
	"strconv"
)

// BlobKind is the shape a RawBlob was recognized as
type BlobKind int

const (
	BlobUnknown BlobKind = iota
	BlobCanonical
	BlobRoleMessages
	BlobGenerations
	BlobPrompts
)

func (k BlobKind) String() string {
	switch k {
	case BlobCanonical:
		return "canonical"
	case BlobRoleMessages:
		return "role-messages"
	case BlobGenerations:
		return "generations"
	case BlobPrompts:
		return "prompts"
	default:
		return "unknown"
	}
}

// RawBlob is a decoded JSON value of unknown shape together with the storage key it came from
type RawBlob struct {
	Key   string
	Value any
}

// DecodeRawBlob decodes a stored JSON value
func DecodeRawBlob(source, key string, data []byte) (*RawBlob, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, &ParseError{Source: source, Key: key, Err: err}
	}
	return &RawBlob{Key: key, Value: v}, nil
}

// Kind inspects the blob's shape. Inspection order matters: a canonical
// object wins over anything else it might also contain.
func (b *RawBlob) Kind() BlobKind {
	if b == nil {
		return BlobUnknown
	}

	if obj, ok := asObject(b.Value); ok {
		if _, ok := asArray(obj["conversations"]); ok {
			return BlobCanonical
		}
		if msgs, ok := asArray(obj["messages"]); ok && firstObjectHas(msgs, "role") {
			return BlobRoleMessages
		}
		return BlobUnknown
	}

	items, ok := asArray(b.Value)
	if !ok {
		return BlobUnknown
	}
	switch {
	case firstObjectHas(items, "role"):
		return BlobRoleMessages
	case firstObjectHas(items, "unixMs", "generationUUID", "textDescription"):
		return BlobGenerations
	case firstObjectHas(items, "text", "commandType"):
		return BlobPrompts
	}
	return BlobUnknown
}

// Items returns the blob's top-level array, if it is one
func (b *RawBlob) Items() ([]any, bool) {
	if b == nil {
		return nil, false
	}
	return asArray(b.Value)
}

// firstObjectHas reports whether the first object element carries any of keys
func firstObjectHas(items []any, keys ...string) bool {
	for _, item := range items {
		obj, ok := asObject(item)
		if !ok {
			continue
		}
		for _, key := range keys {
			if _, ok := obj[key]; ok {
				return true
			}
		}
		return false
	}
	return false
}

func asObject(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

func asArray(v any) ([]any, bool) {
	a, ok := v.([]any)
	return a, ok
}

// stringField returns obj[key] as a string. Numbers are formatted; any other
// type, and the empty string, count as missing.
func stringField(obj map[string]any, key string) (string, bool) {
	switch v := obj[key].(type) {
	case string:
		return v, v != ""
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case json.Number:
		return v.String(), true
	default:
		return "", false
	}
}

// stringOr returns obj[key] as a string or def when missing
func stringOr(obj map[string]any, key, def string) string {
	if s, ok := stringField(obj, key); ok {
		return s
	}
	return def
}

// millisField returns obj[key] as Unix milliseconds. Zero counts as missing.
func millisField(obj map[string]any, key string) (int64, bool) {
	var f float64
	switch v := obj[key].(type) {
	case float64:
		f = v
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if f == 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int64(f), true
}
