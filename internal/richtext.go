package internal

import (
	"encoding/json"
	"strings"
)

// RichTextContent flattens the Lexical editor state some Cursor builds store in
// a message's richText field. v is either the JSON-encoded state or the decoded
// object. Top-level blocks become lines and code nodes are re-fenced so code
// block extraction still finds them. Anything unrecognized yields "".
func RichTextContent(v any) string {
	if s, ok := v.(string); ok {
		if s == "" {
			return ""
		}
		var decoded any
		if err := json.Unmarshal([]byte(s), &decoded); err != nil {
			LogDebug("Ignoring undecodable richText: %v", err)
			return ""
		}
		v = decoded
	}

	obj, ok := asObject(v)
	if !ok {
		return ""
	}
	if root, ok := asObject(obj["root"]); ok {
		obj = root
	}
	return strings.TrimSpace(richTextNode(obj))
}

func richTextNode(node map[string]any) string {
	nodeType, _ := node["type"].(string)
	switch nodeType {
	case "linebreak":
		return "\n"
	case "code":
		lang, _ := node["language"].(string)
		return "```" + lang + "\n" + richTextChildren(node, "") + "\n```"
	case "root", "list":
		return richTextChildren(node, "\n")
	default:
		// text and code-highlight leaves carry their own text
		if text, ok := node["text"].(string); ok {
			return text
		}
		return richTextChildren(node, "")
	}
}

func richTextChildren(node map[string]any, sep string) string {
	children, _ := asArray(node["children"])
	parts := make([]string, 0, len(children))
	for _, child := range children {
		if obj, ok := asObject(child); ok {
			parts = append(parts, richTextNode(obj))
		}
	}
	return strings.Join(parts, sep)
}
