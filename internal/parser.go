package internal

import "strconv"

const (
	untitledConversation = "Untitled Conversation"
	importedConversation = "Imported Conversation"
)

// ChatParser normalizes decoded chat blobs into Conversations.
// It holds no state between calls beyond its injected id generator and clock.
type ChatParser struct {
	ids IDGenerator
	now Clock
}

// NewChatParser creates a ChatParser. Nil arguments fall back to random UUIDs and the wall clock.
func NewChatParser(ids IDGenerator, now Clock) *ChatParser {
	if ids == nil {
		ids = UUIDGenerator{}
	}
	if now == nil {
		now = SystemClock
	}
	return &ChatParser{ids: ids, now: now}
}

// ParseConversations maps a canonical {conversations: [...]} blob to Conversations.
// ok is false when the blob has no conversations array; that is absence, not an error.
func (p *ChatParser) ParseConversations(blob *RawBlob) (conversations []Conversation, ok bool) {
	if blob == nil {
		return nil, false
	}
	return p.parseCanonical(blob.Value)
}

func (p *ChatParser) parseCanonical(value any) ([]Conversation, bool) {
	root, ok := asObject(value)
	if !ok {
		return nil, false
	}
	items, ok := asArray(root["conversations"])
	if !ok {
		return nil, false
	}

	conversations := make([]Conversation, 0, len(items))
	for _, item := range items {
		obj, ok := asObject(item)
		if !ok {
			LogDebug("Skipping non-object conversation entry of type %T", item)
			continue
		}
		conversations = append(conversations, p.parseConversation(obj))
	}

	return conversations, true
}

func (p *ChatParser) parseConversation(obj map[string]any) Conversation {
	msgs, _ := asArray(obj["messages"])

	return Conversation{
		ID:              p.stringOrNewID(obj, "id"),
		Title:           stringOr(obj, "title", untitledConversation),
		CreatedAt:       p.timestampOrNow(obj, "createdAt"),
		UpdatedAt:       p.timestampOrNow(obj, "updatedAt"),
		WorkspaceFolder: stringOr(obj, "workspaceFolder", ""),
		Messages:        p.ParseMessages(msgs),
	}
}

// ParseMessages normalizes raw message objects. Non-object entries are skipped.
func (p *ChatParser) ParseMessages(items []any) []Message {
	messages := make([]Message, 0, len(items))
	for _, item := range items {
		obj, ok := asObject(item)
		if !ok {
			continue
		}
		text := stringOr(obj, "text", "")
		if text == "" {
			text = RichTextContent(obj["richText"])
		}
		files, _ := asArray(obj["contextFiles"])

		messages = append(messages, Message{
			ID:           p.stringOrNewID(obj, "id"),
			Type:         ParseMessageType(obj["type"]),
			Text:         text,
			CreatedAt:    p.timestampOrNow(obj, "createdAt"),
			BubbleID:     stringOr(obj, "bubbleId", ""),
			ContextFiles: ParseContextFiles(files),
			CodeBlocks:   ExtractCodeBlocks(text),
		})
	}
	return messages
}

// ParseMessageType classifies a raw type value. Only the exact string "user"
// is a user turn; everything else, including a missing value, is assistant.
func ParseMessageType(v any) MessageType {
	if s, ok := v.(string); ok && s == string(MessageUser) {
		return MessageUser
	}
	return MessageAssistant
}

// ParseContextFiles normalizes attached context files without interpretation
func ParseContextFiles(items []any) []ContextFile {
	files := make([]ContextFile, 0, len(items))
	for _, item := range items {
		obj, ok := asObject(item)
		if !ok {
			continue
		}
		files = append(files, ContextFile{
			Path:     stringOr(obj, "path", ""),
			Content:  stringOr(obj, "content", ""),
			Language: stringOr(obj, "language", defaultLanguage),
		})
	}
	return files
}

// ImportRoleMessages builds a single conversation from a list of
// {role, content|text, unixMs} objects, or an object wrapping such a list in
// "messages". ok is false when the blob has no such list.
func (p *ChatParser) ImportRoleMessages(blob *RawBlob) (conversations []Conversation, ok bool) {
	if blob.Kind() != BlobRoleMessages {
		return nil, false
	}

	items, ok := blob.Items()
	if !ok {
		obj, _ := asObject(blob.Value)
		items, _ = asArray(obj["messages"])
	}

	now := p.now()
	messages := make([]Message, 0, len(items))
	var first, last int64
	for i, item := range items {
		obj, ok := asObject(item)
		if !ok {
			continue
		}

		text := stringOr(obj, "content", stringOr(obj, "text", ""))
		createdAt := FormatTime(now)
		if ms, ok := millisField(obj, "unixMs"); ok {
			createdAt = FormatTimestamp(ms)
			if first == 0 || ms < first {
				first = ms
			}
			if ms > last {
				last = ms
			}
		}

		msgType := MessageAssistant
		if role, _ := obj["role"].(string); role == string(MessageUser) {
			msgType = MessageUser
		}
		files, _ := asArray(obj["contextFiles"])

		messages = append(messages, Message{
			ID:           stringOr(obj, "id", "msg-"+strconv.Itoa(i)),
			Type:         msgType,
			Text:         text,
			CreatedAt:    createdAt,
			BubbleID:     stringOr(obj, "bubbleId", ""),
			ContextFiles: ParseContextFiles(files),
			CodeBlocks:   ExtractCodeBlocks(text),
		})
	}

	conv := Conversation{
		ID:        "conv-" + p.ids.NewID(),
		Title:     importedConversation,
		CreatedAt: FormatTime(now),
		UpdatedAt: FormatTime(now),
		Messages:  messages,
	}
	if first > 0 {
		conv.CreatedAt = FormatTimestamp(first)
		conv.UpdatedAt = FormatTimestamp(last)
	}

	return []Conversation{conv}, true
}

func (p *ChatParser) stringOrNewID(obj map[string]any, key string) string {
	if s, ok := stringField(obj, key); ok {
		return s
	}
	return p.ids.NewID()
}

func (p *ChatParser) timestampOrNow(obj map[string]any, key string) string {
	if s, ok := obj[key].(string); ok && s != "" {
		return s
	}
	return FormatTime(p.now())
}
