package internal

import (
	"path/filepath"
	"strings"
	"time"
)

// MessageType is the speaker of a message
type MessageType string

const (
	MessageUser      MessageType = "user"
	MessageAssistant MessageType = "assistant"
)

// ChangeType classifies a FileChange
type ChangeType string

const (
	ChangeCreate ChangeType = "create"
	ChangeModify ChangeType = "modify"
	ChangeDelete ChangeType = "delete"
)

// Conversation represents one reconstructed chat session
type Conversation struct {
	ID              string    `json:"id" yaml:"id"`
	Title           string    `json:"title" yaml:"title"`
	CreatedAt       string    `json:"createdAt" yaml:"created_at"`
	UpdatedAt       string    `json:"updatedAt" yaml:"updated_at"`
	WorkspaceFolder string    `json:"workspaceFolder,omitempty" yaml:"workspace_folder,omitempty"`
	Messages        []Message `json:"messages" yaml:"messages"`
}

// Message represents a single turn in a conversation
type Message struct {
	ID           string        `json:"id" yaml:"id"`
	Type         MessageType   `json:"type" yaml:"type"`
	Text         string        `json:"text" yaml:"text"`
	CreatedAt    string        `json:"createdAt" yaml:"created_at"`
	BubbleID     string        `json:"bubbleId,omitempty" yaml:"bubble_id,omitempty"`
	ContextFiles []ContextFile `json:"contextFiles" yaml:"context_files,omitempty"`
	CodeBlocks   []CodeBlock   `json:"codeBlocks" yaml:"code_blocks,omitempty"`
}

// CodeBlock represents a fenced code block found in message text
type CodeBlock struct {
	Language string `json:"language" yaml:"language"`
	Code     string `json:"code" yaml:"code"`
	Filename string `json:"filename,omitempty" yaml:"filename,omitempty"`
}

// ContextFile is a file attached to a message as context
type ContextFile struct {
	Path     string `json:"path" yaml:"path"`
	Content  string `json:"content" yaml:"content"`
	Language string `json:"language" yaml:"language"`
}

// FileChange is one assistant code block classified against the preceding user turn
type FileChange struct {
	File      string     `json:"file" yaml:"file"`
	Type      ChangeType `json:"type" yaml:"type"`
	Additions int        `json:"additions" yaml:"additions"`
	Deletions int        `json:"deletions" yaml:"deletions"`
	Content   string     `json:"content,omitempty" yaml:"content,omitempty"`
}

// CodeAnalysis is the per-conversation rollup of file changes
type CodeAnalysis struct {
	TotalLinesAdded    int          `json:"totalLinesAdded" yaml:"total_lines_added"`
	TotalLinesModified int          `json:"totalLinesModified" yaml:"total_lines_modified"`
	TotalLinesDeleted  int          `json:"totalLinesDeleted" yaml:"total_lines_deleted"`
	FileChanges        []FileChange `json:"fileChanges" yaml:"file_changes"`
}

// Workspace describes one Cursor workspaceStorage entry
type Workspace struct {
	Path         string    `json:"path"`
	Hash         string    `json:"hash"`
	LastModified time.Time `json:"lastModified"`
	ProjectPath  string    `json:"projectPath,omitempty"`
}

// DBPath returns the path to the workspace's state.vscdb file
func (w Workspace) DBPath() string {
	return filepath.Join(w.Path, workspaceDBName)
}

// CodeBlockCount returns the number of code blocks across all messages
func (c *Conversation) CodeBlockCount() int {
	n := 0
	for _, msg := range c.Messages {
		n += len(msg.CodeBlocks)
	}
	return n
}

// Day returns the date portion (YYYY-MM-DD) of UpdatedAt
func (c *Conversation) Day() string {
	day, _, _ := strings.Cut(c.UpdatedAt, "T")
	return day
}

// UpdatedTime parses UpdatedAt. The zero time is returned for unparseable values.
func (c *Conversation) UpdatedTime() time.Time {
	return parseTimestamp(c.UpdatedAt)
}

// isoLayout matches the millisecond precision UTC format used by Cursor exports
const isoLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatTimestamp formats a Unix timestamp (milliseconds) as ISO-8601 in UTC
func FormatTimestamp(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(isoLayout)
}

// FormatTime formats t as ISO-8601 in UTC
func FormatTime(t time.Time) string {
	return t.UTC().Format(isoLayout)
}

// parseTimestamp parses an ISO-8601 string, returning the zero time on failure
func parseTimestamp(ts string) time.Time {
	if ts == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return time.Time{}
	}
	return t
}
