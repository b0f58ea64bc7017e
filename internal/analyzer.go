package internal

import "strings"

// AnalyzeCodeChanges pairs each user turn with the assistant turn immediately
// after it and classifies every assistant code block as a create or a modify.
//
// A block counts as a modify when the user turn has a block with the same
// language or the same (non-empty) filename; the first such block wins. Only
// line counts are compared, so nothing is ever recorded as deleted and
// TotalLinesDeleted stays 0.
func AnalyzeCodeChanges(messages []Message) CodeAnalysis {
	analysis := CodeAnalysis{FileChanges: []FileChange{}}

	for i := 0; i+1 < len(messages); i++ {
		userMsg, assistantMsg := messages[i], messages[i+1]
		if userMsg.Type != MessageUser || assistantMsg.Type != MessageAssistant {
			continue
		}

		for _, block := range assistantMsg.CodeBlocks {
			lines := countLines(block.Code)
			file := block.Filename
			if file == "" {
				file = "unnamed." + block.Language
			}

			userBlock, ok := findCounterpart(userMsg.CodeBlocks, block)
			if !ok {
				analysis.TotalLinesAdded += lines
				analysis.FileChanges = append(analysis.FileChanges, FileChange{
					File:      file,
					Type:      ChangeCreate,
					Additions: lines,
					Deletions: 0,
					Content:   block.Code,
				})
				continue
			}

			diff := lines - countLines(userBlock.Code)
			if diff > 0 {
				analysis.TotalLinesAdded += diff
			} else {
				analysis.TotalLinesModified += -diff
			}
			analysis.FileChanges = append(analysis.FileChanges, FileChange{
				File:      file,
				Type:      ChangeModify,
				Additions: max(0, diff),
				Deletions: max(0, -diff),
			})
		}
	}

	return analysis
}

// findCounterpart returns the first user block sharing the language or filename of block
func findCounterpart(userBlocks []CodeBlock, block CodeBlock) (CodeBlock, bool) {
	for _, ub := range userBlocks {
		if ub.Language == block.Language || (block.Filename != "" && ub.Filename == block.Filename) {
			return ub, true
		}
	}
	return CodeBlock{}, false
}

// countLines counts newline-separated segments; empty code is one line
func countLines(code string) int {
	return strings.Count(code, "\n") + 1
}

// ConversationSummary is a conversation's analysis together with its turn counts
type ConversationSummary struct {
	MessageCount      int `json:"messageCount"`
	UserMessages      int `json:"userMessages"`
	AssistantMessages int `json:"assistantMessages"`
	CodeBlocks        int `json:"codeBlocks"`
	CodeAnalysis
}

// SummarizeConversation analyzes conv and counts its turns and code blocks
func SummarizeConversation(conv *Conversation) ConversationSummary {
	summary := ConversationSummary{
		MessageCount: len(conv.Messages),
		CodeBlocks:   conv.CodeBlockCount(),
		CodeAnalysis: AnalyzeCodeChanges(conv.Messages),
	}
	for _, msg := range conv.Messages {
		switch msg.Type {
		case MessageUser:
			summary.UserMessages++
		case MessageAssistant:
			summary.AssistantMessages++
		}
	}
	return summary
}
