package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func userMsg(text string) Message {
	return Message{Type: MessageUser, Text: text, CodeBlocks: ExtractCodeBlocks(text)}
}

func assistantMsg(text string) Message {
	return Message{Type: MessageAssistant, Text: text, CodeBlocks: ExtractCodeBlocks(text)}
}

func TestAnalyzeCodeChanges(t *testing.T) {
	tests := []struct {
		name     string
		messages []Message
		want     CodeAnalysis
	}{
		{
			name:     "no messages",
			messages: nil,
			want:     CodeAnalysis{FileChanges: []FileChange{}},
		},
		{
			name: "create without counterpart",
			messages: []Message{
				userMsg("write a helper"),
				assistantMsg("```py\ndef f():\n    return 1\n```"),
			},
			want: CodeAnalysis{
				TotalLinesAdded: 2,
				FileChanges: []FileChange{
					{File: "unnamed.py", Type: ChangeCreate, Additions: 2, Content: "def f():\n    return 1"},
				},
			},
		},
		{
			name: "modify grows by language match",
			messages: []Message{
				userMsg("```ts\na\nb\n```"),
				assistantMsg("```ts\na\nb\nc\nd\n```"),
			},
			want: CodeAnalysis{
				TotalLinesAdded: 2,
				FileChanges: []FileChange{
					{File: "unnamed.ts", Type: ChangeModify, Additions: 2},
				},
			},
		},
		{
			name: "modify shrinks by filename match",
			messages: []Message{
				userMsg("```javascript\n/* app.js */\n1\n2\n3\n```"),
				assistantMsg("```js\n/* app.js */\n1\n```"),
			},
			want: CodeAnalysis{
				TotalLinesModified: 2,
				FileChanges: []FileChange{
					{File: "app.js", Type: ChangeModify, Deletions: 2},
				},
			},
		},
		{
			name: "equal length counts as modified zero",
			messages: []Message{
				userMsg("```go\nx\n```"),
				assistantMsg("```go\ny\n```"),
			},
			want: CodeAnalysis{
				FileChanges: []FileChange{
					{File: "unnamed.go", Type: ChangeModify},
				},
			},
		},
		{
			name: "user turn not followed by assistant",
			messages: []Message{
				userMsg("```go\nx\n```"),
				userMsg("```go\ny\nz\n```"),
			},
			want: CodeAnalysis{FileChanges: []FileChange{}},
		},
		{
			name: "assistant first is skipped",
			messages: []Message{
				assistantMsg("```go\nx\n```"),
				userMsg("thanks"),
			},
			want: CodeAnalysis{FileChanges: []FileChange{}},
		},
		{
			name: "empty filenames do not match each other",
			messages: []Message{
				userMsg("```go\nx\n```"),
				assistantMsg("```rust\nfn a() {}\n```"),
			},
			want: CodeAnalysis{
				TotalLinesAdded: 1,
				FileChanges: []FileChange{
					{File: "unnamed.rust", Type: ChangeCreate, Additions: 1, Content: "fn a() {}"},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AnalyzeCodeChanges(tt.messages))
		})
	}
}

func TestAnalyzeCodeChanges_NeverDeletes(t *testing.T) {
	conversations := [][]Message{
		{userMsg("```a\n1\n2\n3\n4\n```"), assistantMsg("```a\n1\n```")},
		{userMsg("x"), assistantMsg("```b\n1\n```\n```c\n2\n```")},
		{assistantMsg("```a\n1\n```"), userMsg("```a\n1\n2\n```"), assistantMsg("```a\n```")},
	}
	for _, messages := range conversations {
		assert.Equal(t, 0, AnalyzeCodeChanges(messages).TotalLinesDeleted)
	}
}

func TestAnalyzeCodeChanges_OrderFollowsBlocks(t *testing.T) {
	messages := []Message{
		userMsg("q1"),
		assistantMsg("```a\n1\n```\n```b\n1\n```"),
		userMsg("q2"),
		assistantMsg("```c\n1\n```"),
	}
	analysis := AnalyzeCodeChanges(messages)
	require.Len(t, analysis.FileChanges, 3)
	assert.Equal(t, "unnamed.a", analysis.FileChanges[0].File)
	assert.Equal(t, "unnamed.b", analysis.FileChanges[1].File)
	assert.Equal(t, "unnamed.c", analysis.FileChanges[2].File)
}

func TestCountLines(t *testing.T) {
	assert.Equal(t, 1, countLines(""))
	assert.Equal(t, 1, countLines("a"))
	assert.Equal(t, 3, countLines("a\nb\nc"))
}

func TestSummarizeConversation(t *testing.T) {
	conv := &Conversation{Messages: []Message{
		userMsg("```go\nx\n```"),
		assistantMsg("```go\nx\ny\n```\n```md\n# t\n```"),
		assistantMsg("no code"),
	}}

	summary := SummarizeConversation(conv)
	assert.Equal(t, 3, summary.MessageCount)
	assert.Equal(t, 1, summary.UserMessages)
	assert.Equal(t, 2, summary.AssistantMessages)
	assert.Equal(t, 3, summary.CodeBlocks)
	assert.Equal(t, 2, summary.TotalLinesAdded)
	assert.Len(t, summary.FileChanges, 2)
}
