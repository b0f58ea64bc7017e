package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/iksnae/cursor-history/internal"
	"github.com/iksnae/cursor-history/internal/export"
)

// Tool name constants.
const (
	ToolListWorkspaces            = "list_workspaces"
	ToolGetWorkspaceConversations = "get_workspace_conversations"
	ToolGetAllConversations       = "get_all_conversations"
	ToolSearchConversations       = "search_conversations"
	ToolAnalyzeConversation       = "analyze_conversation"
	ToolExportConversations       = "export_conversations"
	ToolAnalyzeCodeStatistics     = "analyze_code_statistics"
	ToolDiagnoseStorage           = "diagnose_storage"
)

// Sentinel errors for tool input validation.
var (
	// ErrMissingWorkspaceHash indicates the workspace_hash argument is empty.
	ErrMissingWorkspaceHash = errors.New("workspace_hash is required")
	// ErrMissingQuery indicates the query argument is empty.
	ErrMissingQuery = errors.New("query is required")
	// ErrMissingConversationID indicates the conversation_id argument is empty.
	ErrMissingConversationID = errors.New("conversation_id is required")
)

// Input types (auto-generate JSON schemas via struct tags).

// ListWorkspacesInput is the input schema for list_workspaces.
type ListWorkspacesInput struct {
	RecentDays int `json:"recent_days,omitempty" jsonschema:"only show workspaces modified in the last N days"`
}

// WorkspaceConversationsInput is the input schema for get_workspace_conversations.
type WorkspaceConversationsInput struct {
	WorkspaceHash string `json:"workspace_hash,omitempty" jsonschema:"the MD5 hash of the workspace folder"`
}

// AllConversationsInput is the input schema for get_all_conversations.
type AllConversationsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of conversations to return (default 50)"`
}

// SearchInput is the input schema for search_conversations.
type SearchInput struct {
	Query string `json:"query,omitempty" jsonschema:"search term to look for in conversation titles and messages"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 20)"`
}

// AnalyzeInput is the input schema for analyze_conversation.
type AnalyzeInput struct {
	ConversationID string `json:"conversation_id,omitempty" jsonschema:"the ID of the conversation to analyze"`
}

// ExportInput is the input schema for export_conversations.
type ExportInput struct {
	Format          string   `json:"format,omitempty"           jsonschema:"export format: json, csv or markdown (default json)"`
	ConversationID  string   `json:"conversation_id,omitempty"  jsonschema:"export only the specified conversation id"`
	ConversationIDs []string `json:"conversation_ids,omitempty" jsonschema:"export only the specified conversation ids"`
}

// StatisticsInput is the input schema for analyze_code_statistics.
type StatisticsInput struct {
	Days    int    `json:"days,omitempty"     jsonschema:"analyze conversations from the last N days (default 30)"`
	GroupBy string `json:"group_by,omitempty" jsonschema:"group statistics by day, week, month, language or workspace"`
}

// DiagnoseInput is the input schema for diagnose_storage.
type DiagnoseInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"max keys to return per workspace (default 30)"`
}

// Result is the JSON document every tool returns as its text content.
type Result struct {
	Success         bool   `json:"success"`
	Data            any    `json:"data,omitempty"`
	Error           string `json:"error,omitempty"`
	TotalWorkspaces int    `json:"totalWorkspaces,omitempty"`
}

// Result helpers.

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, any, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: "Error: " + err.Error()},
		},
		IsError: true,
	}, nil, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value Result) (*mcpsdk.CallToolResult, any, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, nil, nil
}

// failure reports a query that could not be answered. The call itself succeeds.
func failure(err error) (*mcpsdk.CallToolResult, any, error) {
	internal.LogWarn("Tool call failed: %v", err)
	return jsonResult(Result{Success: false, Error: err.Error()})
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// Handlers.

func (s *Server) handleListWorkspaces(ctx context.Context, _ *mcpsdk.CallToolRequest, in ListWorkspacesInput) (*mcpsdk.CallToolResult, any, error) {
	var (
		workspaces []internal.Workspace
		err        error
	)
	if in.RecentDays > 0 {
		workspaces, err = s.history.RecentWorkspaces(ctx, in.RecentDays)
	} else {
		workspaces, err = s.history.Workspaces(ctx)
	}
	if err != nil {
		return failure(err)
	}

	return jsonResult(Result{Success: true, Data: workspaces, TotalWorkspaces: len(workspaces)})
}

func (s *Server) handleWorkspaceConversations(ctx context.Context, _ *mcpsdk.CallToolRequest, in WorkspaceConversationsInput) (*mcpsdk.CallToolResult, any, error) {
	if in.WorkspaceHash == "" {
		return errorResult(ErrMissingWorkspaceHash)
	}

	conversations, err := s.history.WorkspaceConversations(ctx, in.WorkspaceHash)
	if err != nil {
		return failure(err)
	}

	return jsonResult(Result{Success: true, Data: conversations, TotalWorkspaces: 1})
}

func (s *Server) handleAllConversations(ctx context.Context, _ *mcpsdk.CallToolRequest, in AllConversationsInput) (*mcpsdk.CallToolResult, any, error) {
	conversations, total, err := s.history.AllConversations(ctx)
	if err != nil {
		return failure(err)
	}

	limit := orDefault(in.Limit, s.cfg.Limits.Conversations)
	if limit > 0 && len(conversations) > limit {
		conversations = conversations[:limit]
	}

	return jsonResult(Result{Success: true, Data: conversations, TotalWorkspaces: total})
}

func (s *Server) handleSearch(ctx context.Context, _ *mcpsdk.CallToolRequest, in SearchInput) (*mcpsdk.CallToolResult, any, error) {
	if in.Query == "" {
		return errorResult(ErrMissingQuery)
	}

	conversations, total, err := s.history.Search(ctx, in.Query, orDefault(in.Limit, s.cfg.Limits.Search))
	if err != nil {
		return failure(err)
	}

	return jsonResult(Result{Success: true, Data: conversations, TotalWorkspaces: total})
}

func (s *Server) handleAnalyze(ctx context.Context, _ *mcpsdk.CallToolRequest, in AnalyzeInput) (*mcpsdk.CallToolResult, any, error) {
	if in.ConversationID == "" {
		return errorResult(ErrMissingConversationID)
	}

	analysis, err := s.history.AnalyzeConversation(ctx, in.ConversationID)
	if err != nil {
		return failure(err)
	}

	return jsonResult(Result{Success: true, Data: analysis})
}

func (s *Server) handleExport(ctx context.Context, _ *mcpsdk.CallToolRequest, in ExportInput) (*mcpsdk.CallToolResult, any, error) {
	format := in.Format
	if format == "" {
		format = "json"
	}

	conversations, err := s.history.Conversations(ctx, in.ConversationIDs)
	if err != nil {
		return failure(err)
	}
	if in.ConversationID != "" {
		conversations = internal.SelectConversations(conversations, []string{in.ConversationID})
	}

	envelope, err := export.Render(conversations, format, s.now)
	if err != nil {
		return failure(err)
	}

	return jsonResult(Result{Success: true, Data: envelope})
}

func (s *Server) handleStatistics(ctx context.Context, _ *mcpsdk.CallToolRequest, in StatisticsInput) (*mcpsdk.CallToolResult, any, error) {
	groupBy := in.GroupBy
	if groupBy == "" {
		groupBy = s.cfg.Stats.GroupBy
	}
	g, err := internal.ParseGroupBy(groupBy)
	if err != nil {
		return errorResult(err)
	}

	stats, err := s.history.Statistics(ctx, orDefault(in.Days, s.cfg.Stats.Days), g)
	if err != nil {
		return failure(err)
	}

	return jsonResult(Result{Success: true, Data: stats})
}

func (s *Server) handleDiagnose(ctx context.Context, _ *mcpsdk.CallToolRequest, in DiagnoseInput) (*mcpsdk.CallToolResult, any, error) {
	diagnoses, err := s.history.Diagnose(ctx, orDefault(in.Limit, s.cfg.Limits.Diagnose))
	if err != nil {
		return failure(err)
	}

	return jsonResult(Result{Success: true, Data: diagnoses, TotalWorkspaces: len(diagnoses)})
}
