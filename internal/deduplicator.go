package internal

import (
	"crypto/sha256"
	"encoding/hex"
)

// Deduplicator removes conversations that repeat an earlier one. Cursor keeps
// a copy of a workspace's state under a new hash when a folder is reopened, so
// the same chat can surface twice.
type Deduplicator struct{}

// NewDeduplicator creates a new Deduplicator
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{}
}

// Deduplicate keeps the first of every group of conversations sharing an id
// and identical messages
func (d *Deduplicator) Deduplicate(conversations []Conversation) []Conversation {
	seen := make(map[string]bool, len(conversations))
	unique := make([]Conversation, 0, len(conversations))

	for i := range conversations {
		hash := d.hashConversation(&conversations[i])
		if seen[hash] {
			LogDebug("Dropping duplicate conversation %s", conversations[i].ID)
			continue
		}
		seen[hash] = true
		unique = append(unique, conversations[i])
	}

	return unique
}

// hashConversation creates a content-based hash for a conversation
func (d *Deduplicator) hashConversation(conv *Conversation) string {
	h := sha256.New()
	h.Write([]byte(conv.ID))

	// Fields are NUL-separated
	for _, msg := range conv.Messages {
		h.Write([]byte{0})
		h.Write([]byte(msg.Type))
		h.Write([]byte{0})
		h.Write([]byte(msg.Text))
		h.Write([]byte{0})
		h.Write([]byte(msg.CreatedAt))
	}

	return hex.EncodeToString(h.Sum(nil))
}
