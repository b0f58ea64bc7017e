package export

import (
	"time"

	"github.com/iksnae/cursor-history/internal"
)

var exportTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func sampleConversation(id, title string) internal.Conversation {
	return internal.Conversation{
		ID:              id,
		Title:           title,
		CreatedAt:       "2024-01-01T10:00:00.000Z",
		UpdatedAt:       "2024-01-01T11:00:00.000Z",
		WorkspaceFolder: "/home/dev/webapp",
		Messages: []internal.Message{
			{
				ID:        id + "-m1",
				Type:      internal.MessageUser,
				Text:      "Fix this",
				CreatedAt: "2024-01-01T10:00:00.000Z",
				CodeBlocks: []internal.CodeBlock{
					{Language: "go", Code: "func main() {}"},
				},
			},
			{
				ID:        id + "-m2",
				Type:      internal.MessageAssistant,
				Text:      "Done",
				CreatedAt: "2024-01-01T10:01:00.000Z",
			},
		},
	}
}

func sampleConversations() []internal.Conversation {
	return []internal.Conversation{
		sampleConversation("c1", "Fix login"),
		sampleConversation("c2", `Say "hi"`),
	}
}
