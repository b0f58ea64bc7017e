package internal

import (
	"context"
	"errors"
)

// Reconstructor rebuilds a workspace's conversations from its blobs. Canonical
// chat data wins; a role-message list is imported next; otherwise generation
// and prompt events are synthesized into a single conversation.
type Reconstructor struct {
	parser *ChatParser
	synth  *Synthesizer
}

// NewReconstructor creates a new Reconstructor
func NewReconstructor(parser *ChatParser, synth *Synthesizer) *Reconstructor {
	if parser == nil {
		parser = NewChatParser(nil, nil)
	}
	if synth == nil {
		synth = NewSynthesizer(parser, nil)
	}
	return &Reconstructor{
		parser: parser,
		synth:  synth,
	}
}

// Reconstruct returns ws's conversations, tagged with its project path.
// Absent data yields an empty slice, not an error.
func (r *Reconstructor) Reconstruct(ctx context.Context, src BlobSource, ws Workspace) ([]Conversation, error) {
	chat, err := src.ChatData(ctx)
	if err != nil {
		var parseErr *ParseError
		if !errors.As(err, &parseErr) {
			return nil, &ReconstructionError{Workspace: ws.Hash, Err: err}
		}
		// Malformed chat data falls back to events
		LogWarn("Ignoring chat data in workspace %s: %v", ws.Hash, err)
		chat = nil
	}

	if conversations, ok := r.fromChatData(chat); ok {
		tagWorkspace(conversations, ws)
		return conversations, nil
	}

	gens, err := src.Generations(ctx)
	if err != nil {
		return nil, &ReconstructionError{Workspace: ws.Hash, Err: err}
	}
	if gens == nil {
		return []Conversation{}, nil
	}

	prompts, err := src.Prompts(ctx)
	if err != nil {
		LogWarn("Synthesizing workspace %s without prompts: %v", ws.Hash, err)
		prompts = nil
	}

	return r.synth.SynthesizeBlobs(gens, prompts, ws), nil
}

// fromChatData runs the canonical parser and then the role-message importer.
// ok is false when neither produced a conversation.
func (r *Reconstructor) fromChatData(chat *RawBlob) ([]Conversation, bool) {
	if chat == nil {
		return nil, false
	}
	if conversations, ok := r.parser.ParseConversations(chat); ok && len(conversations) > 0 {
		return conversations, true
	}
	if conversations, ok := r.parser.ImportRoleMessages(chat); ok && len(conversations[0].Messages) > 0 {
		return conversations, true
	}
	LogDebug("Chat data %q has shape %s; falling back to generations", chat.Key, chat.Kind())
	return nil, false
}

// tagWorkspace late-binds the workspace folder. A folder carried by the data
// is kept when the workspace has no project path of its own.
func tagWorkspace(conversations []Conversation, ws Workspace) {
	if ws.ProjectPath == "" {
		return
	}
	for i := range conversations {
		conversations[i].WorkspaceFolder = ws.ProjectPath
	}
}
