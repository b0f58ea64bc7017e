package internal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testWorkspace = Workspace{Hash: "abcdef0123456789abcdef0123456789", ProjectPath: "/src/app"}

func newTestSynthesizer(pairing PairingStrategy) *Synthesizer {
	return NewSynthesizer(newTestParser(), pairing)
}

func TestSynthesizer_EndToEnd(t *testing.T) {
	s := newTestSynthesizer(nil)
	gens := ParseGenerationEvents(mustBlob(t, `[
		{"unixMs":1000,"generationUUID":"g1","textDescription":"fix bug"},
		{"unixMs":2000,"generationUUID":"g2","textDescription":"add feature"}
	]`))
	prompts := ParsePromptEvents(mustBlob(t, `[{"text":"Here's the fix"}]`))

	conversations := s.Synthesize(gens, prompts, testWorkspace)
	require.Len(t, conversations, 1)

	conv := conversations[0]
	assert.Equal(t, "gens-"+testWorkspace.Hash, conv.ID)
	assert.Equal(t, "AI Generations (abcdef)", conv.Title)
	assert.Equal(t, FormatTimestamp(1000), conv.CreatedAt)
	assert.Equal(t, FormatTimestamp(2000), conv.UpdatedAt)
	assert.Equal(t, "/src/app", conv.WorkspaceFolder)

	require.Len(t, conv.Messages, 3)
	want := []struct {
		id   string
		typ  MessageType
		text string
		at   int64
	}{
		{"g1", MessageUser, "fix bug", 1000},
		{"assistant-g1", MessageAssistant, "Here's the fix", 1001},
		{"g2", MessageUser, "add feature", 2000},
	}
	for i, w := range want {
		msg := conv.Messages[i]
		assert.Equal(t, w.id, msg.ID, "message %d id", i)
		assert.Equal(t, w.typ, msg.Type, "message %d type", i)
		assert.Equal(t, w.text, msg.Text, "message %d text", i)
		assert.Equal(t, FormatTimestamp(w.at), msg.CreatedAt, "message %d time", i)
	}
}

func TestSynthesizer_Deterministic(t *testing.T) {
	s := newTestSynthesizer(nil)
	gens := []GenerationEvent{{UnixMs: 5000, Description: "x"}}

	first := s.Synthesize(gens, nil, testWorkspace)
	second := s.Synthesize(gens, nil, testWorkspace)
	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ID, second[0].ID)
}

func TestSynthesizer_NoGenerations(t *testing.T) {
	s := newTestSynthesizer(nil)
	conversations := s.Synthesize(nil, []PromptEvent{{Text: "orphan"}}, testWorkspace)
	assert.NotNil(t, conversations)
	assert.Empty(t, conversations)
}

func TestSynthesizer_MissingFields(t *testing.T) {
	s := newTestSynthesizer(nil)
	gens := ParseGenerationEvents(mustBlob(t, `[{"commandType":2},{"unixMs":4000,"textDescription":"later"}]`))
	prompts := ParsePromptEvents(mustBlob(t, `[{"text":"answer"},{"text":""}]`))

	conversations := s.Synthesize(gens, prompts, Workspace{Hash: "abc"})
	require.Len(t, conversations, 1)
	conv := conversations[0]

	assert.Equal(t, "AI Generations (abc)", conv.Title)
	assert.Equal(t, "", conv.WorkspaceFolder)
	require.Len(t, conv.Messages, 3)

	// No description: the event itself is the text, and the clock stands in for the timestamp
	assert.Equal(t, "gen-0", conv.Messages[0].ID)
	assert.JSONEq(t, `{"commandType":2}`, conv.Messages[0].Text)
	assert.Equal(t, FormatTime(testNow), conv.Messages[0].CreatedAt)
	assert.Equal(t, "assistant-0", conv.Messages[1].ID)
	assert.Equal(t, FormatTimestamp(testNow.UnixMilli()+1), conv.Messages[1].CreatedAt)

	// An empty prompt produces no assistant turn
	assert.Equal(t, "gen-1", conv.Messages[2].ID)
	assert.Equal(t, MessageUser, conv.Messages[2].Type)

	assert.Equal(t, FormatTimestamp(4000), conv.CreatedAt)
	assert.Equal(t, FormatTime(testNow), conv.UpdatedAt)
}

func TestSynthesizer_CodeBlocksFromDescriptions(t *testing.T) {
	s := newTestSynthesizer(nil)
	gens := []GenerationEvent{{UnixMs: 1, Description: "```js\nlet a\n```"}}
	conversations := s.Synthesize(gens, nil, testWorkspace)
	require.Len(t, conversations, 1)
	assert.Equal(t, []CodeBlock{{Language: "js", Code: "let a"}}, conversations[0].Messages[0].CodeBlocks)
}

func TestPositionalPairing(t *testing.T) {
	gens := make([]GenerationEvent, 3)
	prompts := []PromptEvent{{Text: "a"}, {Text: ""}}
	assert.Equal(t, []int{0, -1, -1}, PositionalPairing{}.Pair(gens, prompts))
}

func TestNearestTimestampPairing(t *testing.T) {
	gens := []GenerationEvent{{UnixMs: 1000}, {UnixMs: 5000}, {UnixMs: 0}, {UnixMs: 9000}}
	prompts := []PromptEvent{
		{Text: "late", UnixMs: 5100},
		{Text: "early", UnixMs: 1050},
		{Text: "untimed"},
	}

	tests := []struct {
		name    string
		pairing NearestTimestampPairing
		want    []int
	}{
		{"unbounded", NearestTimestampPairing{}, []int{1, 0, -1, -1}},
		{"bounded", NearestTimestampPairing{MaxDistance: 60 * time.Millisecond}, []int{1, -1, -1, -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.pairing.Pair(gens, prompts))
		})
	}
}

func TestSynthesizer_NearestPairing(t *testing.T) {
	s := newTestSynthesizer(NearestTimestampPairing{MaxDistance: 100 * time.Millisecond})
	gens := []GenerationEvent{{UUID: "g1", UnixMs: 1000, Description: "first"}, {UUID: "g2", UnixMs: 2000, Description: "second"}}
	prompts := []PromptEvent{{Text: "for second", UnixMs: 2010}}

	conversations := s.Synthesize(gens, prompts, testWorkspace)
	require.Len(t, conversations, 1)
	messages := conversations[0].Messages
	require.Len(t, messages, 3)
	assert.Equal(t, "g1", messages[0].ID)
	assert.Equal(t, "g2", messages[1].ID)
	assert.Equal(t, "assistant-g2", messages[2].ID)
	assert.Equal(t, "for second", messages[2].Text)
}

func TestPairingByName(t *testing.T) {
	tests := []struct {
		name   string
		want   PairingStrategy
		wantOK bool
	}{
		{"", PositionalPairing{}, true},
		{"positional", PositionalPairing{}, true},
		{"nearest", NearestTimestampPairing{}, true},
		{"timestamp", NearestTimestampPairing{}, true},
		{"random", nil, false},
	}
	for _, tt := range tests {
		got, ok := PairingByName(tt.name)
		assert.Equal(t, tt.wantOK, ok, tt.name)
		assert.Equal(t, tt.want, got, tt.name)
	}
}
