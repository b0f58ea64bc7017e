package internal

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
)

// WorkspaceSource is a BlobSource that can also be diagnosed and closed
type WorkspaceSource interface {
	BlobSource
	TopKeys(ctx context.Context, limit int) ([]KeySize, error)
	Close() error
}

// SourceOpener opens the storage behind a workspace
type SourceOpener func(ws Workspace) (WorkspaceSource, error)

// OpenWorkspaceSource opens ws's state.vscdb
func OpenWorkspaceSource(ws Workspace) (WorkspaceSource, error) {
	return OpenWorkspaceDB(ws)
}

// HistoryOptions configures a History. Zero values select defaults.
type HistoryOptions struct {
	Opener      SourceOpener
	Cache       *CacheManager // nil disables caching
	Concurrency int
	Now         Clock
	Deduplicate bool // drop repeated copies of a conversation across workspaces
}

// History answers questions about the chat history across every workspace
type History struct {
	scanner     *WorkspaceScanner
	recon       *Reconstructor
	open        SourceOpener
	cache       *CacheManager
	concurrency int
	now         Clock
	dedupe      *Deduplicator
}

// NewHistory creates a History over the workspaces scanner finds
func NewHistory(scanner *WorkspaceScanner, recon *Reconstructor, opts HistoryOptions) *History {
	h := &History{
		scanner:     scanner,
		recon:       recon,
		open:        opts.Opener,
		cache:       opts.Cache,
		concurrency: opts.Concurrency,
		now:         opts.Now,
	}
	if h.recon == nil {
		h.recon = NewReconstructor(nil, nil)
	}
	if h.open == nil {
		h.open = OpenWorkspaceSource
	}
	if h.concurrency <= 0 {
		h.concurrency = runtime.GOMAXPROCS(0)
	}
	if h.now == nil {
		h.now = SystemClock
	}
	if opts.Deduplicate {
		h.dedupe = NewDeduplicator()
	}
	return h
}

// Cache returns the cache History reads through, or nil when caching is off
func (h *History) Cache() *CacheManager {
	return h.cache
}

// Workspaces lists every workspace, most recently modified first
func (h *History) Workspaces(ctx context.Context) ([]Workspace, error) {
	return h.scanner.Scan(ctx)
}

// ProjectWorkspaces lists the workspaces whose project folder matches the base name of path
func (h *History) ProjectWorkspaces(ctx context.Context, path string) ([]Workspace, error) {
	return h.scanner.FindByProjectPath(ctx, path)
}

// RecentWorkspaces lists the workspaces modified within the last days
func (h *History) RecentWorkspaces(ctx context.Context, days int) ([]Workspace, error) {
	workspaces, err := h.scanner.Scan(ctx)
	if err != nil {
		return nil, err
	}
	return ModifiedSince(workspaces, h.now().AddDate(0, 0, -days)), nil
}

// WorkspaceConversations rebuilds the conversations of the workspace with the given hash
func (h *History) WorkspaceConversations(ctx context.Context, hash string) ([]Conversation, error) {
	ws, err := h.scanner.Find(ctx, hash)
	if err != nil {
		return nil, err
	}
	conversations, err := h.load(ctx, ws)
	if err != nil {
		return nil, err
	}
	SortByUpdated(conversations)
	return conversations, nil
}

// LatestConversations rebuilds the conversations of the most recently used workspace
func (h *History) LatestConversations(ctx context.Context) ([]Conversation, error) {
	ws, err := h.scanner.Latest(ctx)
	if err != nil {
		return nil, err
	}
	conversations, err := h.load(ctx, ws)
	if err != nil {
		return nil, err
	}
	SortByUpdated(conversations)
	return conversations, nil
}

// AllConversations rebuilds every workspace concurrently. A workspace that
// fails is logged and skipped. It also reports how many workspaces were scanned.
func (h *History) AllConversations(ctx context.Context) ([]Conversation, int, error) {
	workspaces, err := h.scanner.Scan(ctx)
	if err != nil {
		return nil, 0, err
	}

	results := make([][]Conversation, len(workspaces))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.concurrency)
	for i, ws := range workspaces {
		g.Go(func() error {
			conversations, err := h.load(gctx, ws)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				LogWarn("Skipping workspace %s: %v", ws.Hash, err)
				return nil
			}
			results[i] = conversations
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	var all []Conversation
	for _, conversations := range results {
		all = append(all, conversations...)
	}
	if all == nil {
		all = []Conversation{}
	}
	SortByUpdated(all)
	if h.dedupe != nil {
		all = h.dedupe.Deduplicate(all)
	}
	return all, len(workspaces), nil
}

// Search returns up to limit conversations whose title or any message text
// contains query, ignoring case
func (h *History) Search(ctx context.Context, query string, limit int) ([]Conversation, int, error) {
	all, total, err := h.AllConversations(ctx)
	if err != nil {
		return nil, 0, err
	}
	return SearchConversations(all, query, limit), total, nil
}

// ConversationAnalysis is a conversation together with its summary
type ConversationAnalysis struct {
	Conversation Conversation        `json:"conversation"`
	Analysis     ConversationSummary `json:"analysis"`
}

// AnalyzeConversation finds the conversation with the given id and summarizes it
func (h *History) AnalyzeConversation(ctx context.Context, id string) (*ConversationAnalysis, error) {
	all, _, err := h.AllConversations(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			return &ConversationAnalysis{
				Conversation: all[i],
				Analysis:     SummarizeConversation(&all[i]),
			}, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrConversationNotFound, id)
}

// Conversations returns every conversation, or only those named in ids when ids is non-empty
func (h *History) Conversations(ctx context.Context, ids []string) ([]Conversation, error) {
	all, _, err := h.AllConversations(ctx)
	if err != nil {
		return nil, err
	}
	return SelectConversations(all, ids), nil
}

// StatisticsResult is a statistics report with the window it covers
type StatisticsResult struct {
	Period      string            `json:"period"`
	GroupBy     GroupBy           `json:"groupBy"`
	Statistics  *StatisticsReport `json:"statistics"`
	GeneratedAt string            `json:"generatedAt"`
}

// Statistics aggregates the code changes of conversations updated in the last days
func (h *History) Statistics(ctx context.Context, days int, groupBy GroupBy) (*StatisticsResult, error) {
	all, _, err := h.AllConversations(ctx)
	if err != nil {
		return nil, err
	}

	now := h.now()
	recent := UpdatedSince(all, now.AddDate(0, 0, -days))
	agg := NewAggregator(groupBy)
	for i := range recent {
		agg.Add(&recent[i], AnalyzeCodeChanges(recent[i].Messages))
	}

	return &StatisticsResult{
		Period:      fmt.Sprintf("%d days", days),
		GroupBy:     groupBy,
		Statistics:  agg.Report(),
		GeneratedAt: FormatTime(now),
	}, nil
}

// StorageDiagnosis lists a workspace's largest ItemTable keys
type StorageDiagnosis struct {
	Workspace   string    `json:"workspace"`
	ProjectPath string    `json:"projectPath,omitempty"`
	TopKeys     []KeySize `json:"topKeys"`
}

// Diagnose reports the limit largest keys of every workspace. A workspace whose
// database cannot be read reports no keys.
func (h *History) Diagnose(ctx context.Context, limit int) ([]StorageDiagnosis, error) {
	workspaces, err := h.scanner.Scan(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]StorageDiagnosis, len(workspaces))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.concurrency)
	for i, ws := range workspaces {
		g.Go(func() error {
			results[i] = StorageDiagnosis{Workspace: ws.Hash, ProjectPath: ws.ProjectPath, TopKeys: []KeySize{}}
			keys, err := h.topKeys(gctx, ws, limit)
			if err != nil {
				LogWarn("Cannot diagnose workspace %s: %v", ws.Hash, err)
				return gctx.Err()
			}
			results[i].TopKeys = keys
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (h *History) topKeys(ctx context.Context, ws Workspace, limit int) ([]KeySize, error) {
	src, err := h.open(ws)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return src.TopKeys(ctx, limit)
}

// load returns ws's conversations from the cache or by reconstructing them
func (h *History) load(ctx context.Context, ws Workspace) ([]Conversation, error) {
	if h.cache != nil {
		if conversations, ok := h.cache.Load(ws); ok {
			LogDebug("Loaded %d conversations for workspace %s from cache", len(conversations), ws.Hash)
			return conversations, nil
		}
	}

	src, err := h.open(ws)
	if err != nil {
		return nil, &ReconstructionError{Workspace: ws.Hash, Err: err}
	}
	defer src.Close()

	conversations, err := h.recon.Reconstruct(ctx, src, ws)
	if err != nil {
		return nil, err
	}

	if h.cache != nil {
		if err := h.cache.Save(ws, conversations); err != nil {
			LogWarn("Failed to cache workspace %s: %v", ws.Hash, err)
		}
	}
	return conversations, nil
}

// SortByUpdated orders conversations by UpdatedAt, newest first.
// Unparseable timestamps sort last.
func SortByUpdated(conversations []Conversation) {
	sort.SliceStable(conversations, func(i, j int) bool {
		return conversations[i].UpdatedTime().After(conversations[j].UpdatedTime())
	})
}

// SearchConversations returns up to limit conversations matching query in the
// title or any message text, case-insensitively. A limit of zero or less means no limit.
func SearchConversations(conversations []Conversation, query string, limit int) []Conversation {
	needle := strings.ToLower(query)
	matched := make([]Conversation, 0)
	for _, conv := range conversations {
		if limit > 0 && len(matched) >= limit {
			break
		}
		if conversationContains(conv, needle) {
			matched = append(matched, conv)
		}
	}
	return matched
}

func conversationContains(conv Conversation, needle string) bool {
	if strings.Contains(strings.ToLower(conv.Title), needle) {
		return true
	}
	for _, msg := range conv.Messages {
		if strings.Contains(strings.ToLower(msg.Text), needle) {
			return true
		}
	}
	return false
}

// SelectConversations keeps the conversations whose id is in ids, preserving
// their order. An empty ids keeps everything.
func SelectConversations(conversations []Conversation, ids []string) []Conversation {
	if len(ids) == 0 {
		return conversations
	}
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	selected := make([]Conversation, 0, len(ids))
	for _, conv := range conversations {
		if _, ok := wanted[conv.ID]; ok {
			selected = append(selected, conv)
		}
	}
	return selected
}
