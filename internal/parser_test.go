package internal

import (
	"testing"
	"time"

	"github.com/iksnae/cursor-history/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestParser() *ChatParser {
	return NewChatParser(&SequentialIDs{Prefix: "id"}, FixedClock(testNow))
}

func mustBlob(t *testing.T, data string) *RawBlob {
	t.Helper()
	blob, err := DecodeRawBlob("test", "key", []byte(data))
	require.NoError(t, err)
	return blob
}

func TestChatParser_ParseConversations(t *testing.T) {
	p := newTestParser()
	blob := mustBlob(t, `{"conversations":[
		{"id":"c1","title":"First","createdAt":"2024-01-01T00:00:00.000Z","updatedAt":"2024-01-02T00:00:00.000Z",
		 "workspaceFolder":"/src/app",
		 "messages":[
			{"id":"m1","type":"user","text":"hello","createdAt":"2024-01-01T00:00:00.000Z","bubbleId":"b1"},
			{"id":"m2","type":"assistant","text":"`+"```go\\nfmt.Println()\\n```"+`","codeBlocks":[{"language":"x","code":"ignored"}]}
		 ]},
		"not an object",
		{}
	]}`)

	conversations, ok := p.ParseConversations(blob)
	require.True(t, ok)
	require.Len(t, conversations, 2)

	first := conversations[0]
	assert.Equal(t, "c1", first.ID)
	assert.Equal(t, "First", first.Title)
	assert.Equal(t, "2024-01-01T00:00:00.000Z", first.CreatedAt)
	assert.Equal(t, "2024-01-02T00:00:00.000Z", first.UpdatedAt)
	assert.Equal(t, "/src/app", first.WorkspaceFolder)
	require.Len(t, first.Messages, 2)
	assert.Equal(t, MessageUser, first.Messages[0].Type)
	assert.Equal(t, "b1", first.Messages[0].BubbleID)
	assert.Equal(t, []CodeBlock{{Language: "go", Code: "fmt.Println()"}}, first.Messages[1].CodeBlocks)
	assert.Equal(t, "2024-03-01T12:00:00.000Z", first.Messages[1].CreatedAt)

	second := conversations[1]
	assert.Equal(t, "id-1", second.ID)
	assert.Equal(t, "Untitled Conversation", second.Title)
	assert.Equal(t, "2024-03-01T12:00:00.000Z", second.CreatedAt)
	assert.Equal(t, "2024-03-01T12:00:00.000Z", second.UpdatedAt)
	assert.Empty(t, second.Messages)
}

func TestChatParser_ParseConversations_Absent(t *testing.T) {
	p := newTestParser()

	tests := []struct {
		name string
		blob *RawBlob
	}{
		{"nil blob", nil},
		{"no conversations key", mustBlob(t, `{"other":[]}`)},
		{"conversations not an array", mustBlob(t, `{"conversations":{}}`)},
		{"array value", mustBlob(t, `[{"text":"x"}]`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conversations, ok := p.ParseConversations(tt.blob)
			assert.False(t, ok)
			assert.Nil(t, conversations)
		})
	}
}

func TestParseMessageType(t *testing.T) {
	tests := []struct {
		in   any
		want MessageType
	}{
		{"user", MessageUser},
		{"assistant", MessageAssistant},
		{"User", MessageAssistant},
		{"human", MessageAssistant},
		{float64(1), MessageAssistant},
		{nil, MessageAssistant},
	}

	for _, tt := range tests {
		if got := ParseMessageType(tt.in); got != tt.want {
			t.Errorf("ParseMessageType(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestChatParser_ParseMessages_Defaults(t *testing.T) {
	p := newTestParser()
	messages := p.ParseMessages([]any{
		map[string]any{},
		"skipped",
		map[string]any{"id": float64(7), "contextFiles": []any{
			map[string]any{"path": "a.go", "content": "package a"},
			"skipped",
		}},
	})

	require.Len(t, messages, 2)
	assert.Equal(t, "id-1", messages[0].ID)
	assert.Equal(t, MessageAssistant, messages[0].Type)
	assert.Equal(t, "", messages[0].Text)
	assert.Empty(t, messages[0].CodeBlocks)
	assert.Empty(t, messages[0].ContextFiles)

	assert.Equal(t, "7", messages[1].ID)
	assert.Equal(t, []ContextFile{{Path: "a.go", Content: "package a", Language: "text"}}, messages[1].ContextFiles)
}

func TestChatParser_ParseMessages_RichTextFallback(t *testing.T) {
	p := newTestParser()
	richText := string(testutil.JSONMarshal(t, map[string]any{
		"root": map[string]any{
			"type": "root",
			"children": []any{
				map[string]any{"type": "paragraph", "children": []any{
					map[string]any{"type": "text", "text": "Try this:"},
				}},
				map[string]any{"type": "code", "language": "py", "children": []any{
					map[string]any{"type": "code-highlight", "text": "print(1)"},
				}},
			},
		},
	}))
	messages := p.ParseMessages([]any{
		map[string]any{"id": "m1", "type": "user", "text": "", "richText": richText},
		map[string]any{"id": "m2", "type": "user", "text": "plain", "richText": richText},
	})

	require.Len(t, messages, 2)
	assert.Equal(t, "Try this:\n```py\nprint(1)\n```", messages[0].Text)
	require.Len(t, messages[0].CodeBlocks, 1)
	assert.Equal(t, "py", messages[0].CodeBlocks[0].Language)
	assert.Equal(t, "print(1)", messages[0].CodeBlocks[0].Code)

	// text wins over richText
	assert.Equal(t, "plain", messages[1].Text)
}

func TestChatParser_ImportRoleMessages(t *testing.T) {
	p := newTestParser()

	t.Run("array", func(t *testing.T) {
		blob := mustBlob(t, `[
			{"role":"user","content":"hi","unixMs":1000},
			{"role":"assistant","text":"hello","unixMs":3000,"bubbleId":"b2"}
		]`)
		conversations, ok := p.ImportRoleMessages(blob)
		require.True(t, ok)
		require.Len(t, conversations, 1)

		conv := conversations[0]
		assert.Equal(t, "conv-id-1", conv.ID)
		assert.Equal(t, "Imported Conversation", conv.Title)
		assert.Equal(t, FormatTimestamp(1000), conv.CreatedAt)
		assert.Equal(t, FormatTimestamp(3000), conv.UpdatedAt)
		require.Len(t, conv.Messages, 2)
		assert.Equal(t, "msg-0", conv.Messages[0].ID)
		assert.Equal(t, MessageUser, conv.Messages[0].Type)
		assert.Equal(t, "hi", conv.Messages[0].Text)
		assert.Equal(t, MessageAssistant, conv.Messages[1].Type)
		assert.Equal(t, "hello", conv.Messages[1].Text)
		assert.Equal(t, "b2", conv.Messages[1].BubbleID)
	})

	t.Run("wrapped without timestamps", func(t *testing.T) {
		blob := mustBlob(t, `{"messages":[{"role":"user","content":"q"}]}`)
		conversations, ok := p.ImportRoleMessages(blob)
		require.True(t, ok)
		assert.Equal(t, FormatTime(testNow), conversations[0].CreatedAt)
		assert.Equal(t, FormatTime(testNow), conversations[0].Messages[0].CreatedAt)
	})

	t.Run("not role messages", func(t *testing.T) {
		_, ok := p.ImportRoleMessages(mustBlob(t, `[{"unixMs":1}]`))
		assert.False(t, ok)
	})
}

func TestNewChatParser_Defaults(t *testing.T) {
	p := NewChatParser(nil, nil)
	conversations, ok := p.ParseConversations(mustBlob(t, `{"conversations":[{}]}`))
	require.True(t, ok)
	assert.Len(t, conversations[0].ID, 36)
	assert.False(t, parseTimestamp(conversations[0].CreatedAt).IsZero())
}
