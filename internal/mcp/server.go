// Package mcp exposes the chat history as Model Context Protocol tools over
// stdio transport.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/iksnae/cursor-history/internal"
	"github.com/iksnae/cursor-history/internal/config"
)

const (
	// serverName is the MCP server implementation name.
	serverName = "cursor-db-mcp"
	// serverVersion is the MCP server implementation version.
	serverVersion = "2.0.0"

	// toolCount is the expected number of registered tools.
	toolCount = 8
)

// ServerDeps holds injectable dependencies for the MCP server.
// Zero-value fields use production defaults.
type ServerDeps struct {
	// Config supplies default limits. Nil uses config.Default().
	Config *config.Config

	// Logger is an optional structured logger. Nil uses the package logger.
	Logger *slog.Logger

	// Now stamps exports. Nil uses the wall clock.
	Now internal.Clock
}

// Server wraps the MCP SDK server with the chat history tools registered.
type Server struct {
	inner   *mcpsdk.Server
	history *internal.History
	cfg     *config.Config
	now     internal.Clock
	tools   []string
}

// NewServer creates a new MCP server answering from history.
func NewServer(history *internal.History, deps ServerDeps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = internal.Logger()
	}

	inner := mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    serverName,
			Version: serverVersion,
		},
		&mcpsdk.ServerOptions{Logger: logger},
	)

	srv := &Server{
		inner:   inner,
		history: history,
		cfg:     deps.Config,
		now:     deps.Now,
		tools:   make([]string, 0, toolCount),
	}
	if srv.cfg == nil {
		srv.cfg = config.Default()
	}
	if srv.now == nil {
		srv.now = internal.SystemClock
	}

	srv.registerTools()

	return srv
}

// ListToolNames returns the sorted names of all registered tools.
func (s *Server) ListToolNames() []string {
	names := make([]string, len(s.tools))
	copy(names, s.tools)
	sort.Strings(names)

	return names
}

// Run starts the MCP server on stdio transport. It blocks until the context
// is canceled or the connection closes.
func (s *Server) Run(ctx context.Context) error {
	return s.RunWithTransport(ctx, &mcpsdk.StdioTransport{})
}

// RunWithTransport starts the MCP server on the given transport.
func (s *Server) RunWithTransport(ctx context.Context, transport mcpsdk.Transport) error {
	internal.LogInfo("MCP server %s %s running", serverName, serverVersion)

	err := s.inner.Run(ctx, transport)
	if err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}

	return nil
}

// registerTools adds every history tool to the server.
func (s *Server) registerTools() {
	addTool(s, ToolListWorkspaces,
		"List all Cursor workspaces with their metadata",
		s.handleListWorkspaces)
	addTool(s, ToolGetWorkspaceConversations,
		"Get all conversations from a specific workspace",
		s.handleWorkspaceConversations)
	addTool(s, ToolGetAllConversations,
		"Get all conversations from all workspaces",
		s.handleAllConversations)
	addTool(s, ToolSearchConversations,
		"Search conversations across all workspaces",
		s.handleSearch)
	addTool(s, ToolAnalyzeConversation,
		"Analyze a specific conversation for code changes and statistics",
		s.handleAnalyze)
	addTool(s, ToolExportConversations,
		"Export conversations in the specified format",
		s.handleExport)
	addTool(s, ToolAnalyzeCodeStatistics,
		"Analyze code statistics across all conversations",
		s.handleStatistics)
	addTool(s, ToolDiagnoseStorage,
		"Diagnose storage keys in each workspace to help locate chat data",
		s.handleDiagnose)
}

func addTool[In any](
	s *Server,
	name, description string,
	handler func(context.Context, *mcpsdk.CallToolRequest, In) (*mcpsdk.CallToolResult, any, error),
) {
	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        name,
		Description: description,
	}, handler)

	s.tools = append(s.tools, name)
}
