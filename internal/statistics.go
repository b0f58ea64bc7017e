package internal

import (
	"fmt"
	"strings"
	"time"

	"github.com/src-d/enry/v2"
)

// GroupBy selects an additional time bucket for a statistics report
type GroupBy string

const (
	GroupByDay       GroupBy = "day"
	GroupByWeek      GroupBy = "week"
	GroupByMonth     GroupBy = "month"
	GroupByLanguage  GroupBy = "language"
	GroupByWorkspace GroupBy = "workspace"
)

// ParseGroupBy validates a group-by name. The empty string means day.
func ParseGroupBy(s string) (GroupBy, error) {
	switch g := GroupBy(strings.ToLower(s)); g {
	case "":
		return GroupByDay, nil
	case GroupByDay, GroupByWeek, GroupByMonth, GroupByLanguage, GroupByWorkspace:
		return g, nil
	default:
		return "", fmt.Errorf("unsupported group_by: %s (supported: day, week, month, language, workspace)", s)
	}
}

const (
	unknownWorkspace = "Unknown"
	unknownExtension = "unknown"
)

// LanguageStats accumulates file changes for one file extension
type LanguageStats struct {
	Language      string `json:"language,omitempty"`
	Files         int    `json:"files"`
	LinesAdded    int    `json:"linesAdded"`
	LinesModified int    `json:"linesModified"`
	LinesDeleted  int    `json:"linesDeleted"`
}

// WorkspaceStats accumulates conversations for one workspace folder
type WorkspaceStats struct {
	Conversations int `json:"conversations"`
	LinesAdded    int `json:"linesAdded"`
	LinesModified int `json:"linesModified"`
	LinesDeleted  int `json:"linesDeleted"`
}

// PeriodStats accumulates conversations for one day, week or month
type PeriodStats struct {
	Conversations int `json:"conversations"`
	Messages      int `json:"messages"`
	LinesAdded    int `json:"linesAdded"`
	LinesModified int `json:"linesModified"`
	LinesDeleted  int `json:"linesDeleted"`
}

// StatisticsReport is the cross-conversation rollup
type StatisticsReport struct {
	TotalConversations int                        `json:"totalConversations"`
	TotalMessages      int                        `json:"totalMessages"`
	TotalCodeBlocks    int                        `json:"totalCodeBlocks"`
	TotalLinesAdded    int                        `json:"totalLinesAdded"`
	TotalLinesModified int                        `json:"totalLinesModified"`
	TotalLinesDeleted  int                        `json:"totalLinesDeleted"`
	LanguageStats      map[string]*LanguageStats  `json:"languageStats"`
	WorkspaceStats     map[string]*WorkspaceStats `json:"workspaceStats"`
	DailyStats         map[string]*PeriodStats    `json:"dailyStats"`
	PeriodStats        map[string]*PeriodStats    `json:"periodStats,omitempty"`
	FileChanges        []FileChange               `json:"fileChanges"`
}

// Aggregator accumulates conversations and their analyses into a StatisticsReport.
// Buckets are created on first use and only ever grow. Not safe for concurrent use.
type Aggregator struct {
	groupBy GroupBy
	report  StatisticsReport
}

// NewAggregator creates an empty Aggregator
func NewAggregator(groupBy GroupBy) *Aggregator {
	a := &Aggregator{
		groupBy: groupBy,
		report: StatisticsReport{
			LanguageStats:  make(map[string]*LanguageStats),
			WorkspaceStats: make(map[string]*WorkspaceStats),
			DailyStats:     make(map[string]*PeriodStats),
			FileChanges:    []FileChange{},
		},
	}
	if groupBy == GroupByWeek || groupBy == GroupByMonth {
		a.report.PeriodStats = make(map[string]*PeriodStats)
	}
	return a
}

// Add folds one conversation and its analysis into the report
func (a *Aggregator) Add(conv *Conversation, analysis CodeAnalysis) {
	r := &a.report
	messages := len(conv.Messages)

	r.TotalConversations++
	r.TotalMessages += messages
	r.TotalCodeBlocks += conv.CodeBlockCount()
	r.TotalLinesAdded += analysis.TotalLinesAdded
	r.TotalLinesModified += analysis.TotalLinesModified
	r.TotalLinesDeleted += analysis.TotalLinesDeleted

	workspace := conv.WorkspaceFolder
	if workspace == "" {
		workspace = unknownWorkspace
	}
	ws, ok := r.WorkspaceStats[workspace]
	if !ok {
		ws = &WorkspaceStats{}
		r.WorkspaceStats[workspace] = ws
	}
	ws.Conversations++
	ws.LinesAdded += analysis.TotalLinesAdded
	ws.LinesModified += analysis.TotalLinesModified
	ws.LinesDeleted += analysis.TotalLinesDeleted

	for _, change := range analysis.FileChanges {
		ext := ExtensionOf(change.File)
		ls, ok := r.LanguageStats[ext]
		if !ok {
			ls = &LanguageStats{Language: languageForExtension(ext)}
			r.LanguageStats[ext] = ls
		}
		ls.Files++
		ls.LinesAdded += change.Additions
		ls.LinesDeleted += change.Deletions
	}
	r.FileChanges = append(r.FileChanges, analysis.FileChanges...)

	addPeriod(r.DailyStats, conv.Day(), messages, analysis)
	if r.PeriodStats != nil {
		addPeriod(r.PeriodStats, periodKey(conv, a.groupBy), messages, analysis)
	}
}

// Report returns the accumulated report. The Aggregator keeps ownership; do not
// call Add after handing the report out.
func (a *Aggregator) Report() *StatisticsReport {
	return &a.report
}

// Aggregate rolls up conversations with their analyses, which must be index-aligned
func Aggregate(conversations []Conversation, analyses []CodeAnalysis, groupBy GroupBy) (*StatisticsReport, error) {
	if len(conversations) != len(analyses) {
		return nil, fmt.Errorf("aggregate: %d conversations but %d analyses", len(conversations), len(analyses))
	}
	agg := NewAggregator(groupBy)
	for i := range conversations {
		agg.Add(&conversations[i], analyses[i])
	}
	return agg.Report(), nil
}

// ExtensionOf returns the text after the final "." of file, or "unknown"
func ExtensionOf(file string) string {
	i := strings.LastIndex(file, ".")
	if i < 0 || i == len(file)-1 {
		return unknownExtension
	}
	return file[i+1:]
}

// UpdatedSince keeps the conversations whose UpdatedAt is at or after cutoff.
// Conversations with an unparseable UpdatedAt are dropped.
func UpdatedSince(conversations []Conversation, cutoff time.Time) []Conversation {
	kept := make([]Conversation, 0, len(conversations))
	for _, conv := range conversations {
		t := conv.UpdatedTime()
		if t.IsZero() || t.Before(cutoff) {
			continue
		}
		kept = append(kept, conv)
	}
	return kept
}

func addPeriod(buckets map[string]*PeriodStats, key string, messages int, analysis CodeAnalysis) {
	ps, ok := buckets[key]
	if !ok {
		ps = &PeriodStats{}
		buckets[key] = ps
	}
	ps.Conversations++
	ps.Messages += messages
	ps.LinesAdded += analysis.TotalLinesAdded
	ps.LinesModified += analysis.TotalLinesModified
	ps.LinesDeleted += analysis.TotalLinesDeleted
}

func periodKey(conv *Conversation, groupBy GroupBy) string {
	t := conv.UpdatedTime()
	if t.IsZero() {
		return unknownExtension
	}
	t = t.UTC()
	switch groupBy {
	case GroupByWeek:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case GroupByMonth:
		return t.Format("2006-01")
	default:
		return t.Format(time.DateOnly)
	}
}

func languageForExtension(ext string) string {
	if ext == unknownExtension {
		return ""
	}
	lang, _ := enry.GetLanguageByExtension("file." + ext)
	return lang
}
