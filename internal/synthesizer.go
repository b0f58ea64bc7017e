package internal

import (
	"encoding/json"
	"strconv"
	"time"
)

// GenerationEvent is one entry of aiService.generations
type GenerationEvent struct {
	UUID        string
	UnixMs      int64 // 0 when the event carries no timestamp
	Description string
	Raw         any
}

// PromptEvent is one entry of aiService.prompts
type PromptEvent struct {
	Text   string
	UnixMs int64
}

// HasText reports whether the prompt can become an assistant message
func (p PromptEvent) HasText() bool {
	return p.Text != ""
}

// ParseGenerationEvents converts a generations blob into events, one per array
// entry so positions stay aligned with the source list.
func ParseGenerationEvents(blob *RawBlob) []GenerationEvent {
	items, ok := blob.Items()
	if !ok {
		return nil
	}

	events := make([]GenerationEvent, 0, len(items))
	for _, item := range items {
		ev := GenerationEvent{Raw: item}
		if obj, ok := asObject(item); ok {
			ev.UUID = stringOr(obj, "generationUUID", "")
			ev.UnixMs, _ = millisField(obj, "unixMs")
			ev.Description, _ = obj["textDescription"].(string)
		}
		events = append(events, ev)
	}
	return events
}

// ParsePromptEvents converts a prompts blob into events, keeping one entry per
// array element so index-aligned pairing sees the source positions.
func ParsePromptEvents(blob *RawBlob) []PromptEvent {
	items, ok := blob.Items()
	if !ok {
		return nil
	}

	events := make([]PromptEvent, 0, len(items))
	for _, item := range items {
		var ev PromptEvent
		if obj, ok := asObject(item); ok {
			ev.Text, _ = obj["text"].(string)
			ev.UnixMs, _ = millisField(obj, "unixMs")
		}
		events = append(events, ev)
	}
	return events
}

// PairingStrategy decides which prompt, if any, answers each generation.
// Pair returns one prompt index per generation, or -1 for none.
type PairingStrategy interface {
	Pair(gens []GenerationEvent, prompts []PromptEvent) []int
}

// PositionalPairing pairs generation i with prompt i. It misaligns turns when
// the two lists diverge in length or order; that loss is accepted.
type PositionalPairing struct{}

// Pair implements PairingStrategy
func (PositionalPairing) Pair(gens []GenerationEvent, prompts []PromptEvent) []int {
	pairs := make([]int, len(gens))
	for i := range gens {
		pairs[i] = -1
		if i < len(prompts) && prompts[i].HasText() {
			pairs[i] = i
		}
	}
	return pairs
}

// NearestTimestampPairing pairs each timestamped generation with the closest
// unused timestamped prompt. Prompts without a timestamp are never paired.
type NearestTimestampPairing struct {
	// MaxDistance bounds how far apart a pair may be; zero means unbounded
	MaxDistance time.Duration
}

// Pair implements PairingStrategy
func (n NearestTimestampPairing) Pair(gens []GenerationEvent, prompts []PromptEvent) []int {
	pairs := make([]int, len(gens))
	used := make([]bool, len(prompts))
	maxMs := n.MaxDistance.Milliseconds()

	for i, g := range gens {
		pairs[i] = -1
		if g.UnixMs == 0 {
			continue
		}
		best, bestDist := -1, int64(-1)
		for j, p := range prompts {
			if used[j] || !p.HasText() || p.UnixMs == 0 {
				continue
			}
			dist := p.UnixMs - g.UnixMs
			if dist < 0 {
				dist = -dist
			}
			if maxMs > 0 && dist > maxMs {
				continue
			}
			if best == -1 || dist < bestDist {
				best, bestDist = j, dist
			}
		}
		if best >= 0 {
			used[best] = true
			pairs[i] = best
		}
	}
	return pairs
}

// PairingByName returns the strategy registered under name
func PairingByName(name string) (PairingStrategy, bool) {
	switch name {
	case "", "positional":
		return PositionalPairing{}, true
	case "nearest", "timestamp":
		return NearestTimestampPairing{}, true
	default:
		return nil, false
	}
}

// Synthesizer builds a conversation from generation and prompt events when a
// workspace has no canonical chat data.
type Synthesizer struct {
	parser  *ChatParser
	pairing PairingStrategy
}

// NewSynthesizer creates a Synthesizer that normalizes its output through parser
func NewSynthesizer(parser *ChatParser, pairing PairingStrategy) *Synthesizer {
	if pairing == nil {
		pairing = PositionalPairing{}
	}
	return &Synthesizer{parser: parser, pairing: pairing}
}

// Synthesize builds exactly one conversation for ws, or none when gens is empty.
// The id is derived from the workspace hash so repeated calls agree.
func (s *Synthesizer) Synthesize(gens []GenerationEvent, prompts []PromptEvent, ws Workspace) []Conversation {
	if len(gens) == 0 {
		return []Conversation{}
	}

	now := s.parser.now().UnixMilli()
	pairs := s.pairing.Pair(gens, prompts)

	var minMs, maxMs int64
	messages := make([]any, 0, len(gens)*2)
	for i, g := range gens {
		ts := g.UnixMs
		if ts == 0 {
			ts = now
		}
		if i == 0 || ts < minMs {
			minMs = ts
		}
		if i == 0 || ts > maxMs {
			maxMs = ts
		}

		ref := g.UUID
		if ref == "" {
			ref = strconv.Itoa(i)
		}
		id := g.UUID
		if id == "" {
			id = "gen-" + ref
		}

		messages = append(messages, map[string]any{
			"id":        id,
			"type":      string(MessageUser),
			"text":      generationText(g),
			"createdAt": FormatTimestamp(ts),
		})

		if j := pairs[i]; j >= 0 && j < len(prompts) {
			messages = append(messages, map[string]any{
				"id":        "assistant-" + ref,
				"type":      string(MessageAssistant),
				"text":      prompts[j].Text,
				"createdAt": FormatTimestamp(ts + 1),
			})
		}
	}

	synthetic := map[string]any{
		"conversations": []any{
			map[string]any{
				"id":        "gens-" + ws.Hash,
				"title":     "AI Generations (" + shortHash(ws.Hash) + ")",
				"createdAt": FormatTimestamp(minMs),
				"updatedAt": FormatTimestamp(maxMs),
				"messages":  messages,
			},
		},
	}

	conversations, _ := s.parser.parseCanonical(synthetic)
	for i := range conversations {
		conversations[i].WorkspaceFolder = ws.ProjectPath
	}
	return conversations
}

// SynthesizeBlobs is Synthesize over raw generation and prompt blobs; either may be nil
func (s *Synthesizer) SynthesizeBlobs(gens, prompts *RawBlob, ws Workspace) []Conversation {
	return s.Synthesize(ParseGenerationEvents(gens), ParsePromptEvents(prompts), ws)
}

func generationText(g GenerationEvent) string {
	if g.Description != "" {
		return g.Description
	}
	data, err := json.Marshal(g.Raw)
	if err != nil {
		return ""
	}
	return string(data)
}

func shortHash(hash string) string {
	if len(hash) > 6 {
		return hash[:6]
	}
	return hash
}
