// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/reviewdash/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
)

// Tool names exposed by the server.
const (
	GetReviewLogsTool     = "get_review_logs"
	GetReviewStatsTool    = "get_review_stats"
	GetFilterOptionsTool  = "get_filter_options"
	defaultServerName     = "Review Dashboard Server"
	defaultServerVersion  = "1.0.0"
	typeArgDescription    = "Review type: 'mr' for merge requests or 'push' for direct pushes. Defaults to the configured type."
	startArgDescription   = "First day to include (YYYY-MM-DD), or 'none' for no lower bound. Defaults to seven days ago."
	endArgDescription     = "Last day to include (YYYY-MM-DD), or 'none' for no upper bound. Defaults to today."
	authorsArgDescription = "Only include these authors."
)

// NewMCPServer initializes and configures the review dashboard MCP server
// without starting it. This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, fetcher contract.ReviewFetcher, history contract.HistoryStore, logger *logrus.Logger) *server.MCPServer {
	s := server.NewMCPServer(
		defaultServerName,
		defaultServerVersion,
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		fetcher: fetcher,
		history: history,
		logger:  logger,
	}

	// --- 1. Tool: get_review_logs ---
	s.AddTool(mcp.NewTool(GetReviewLogsTool,
		mcp.WithDescription("List code review events (merge requests or pushes) with their scores, filtered by date range, author and project."),
		mcp.WithString("type", mcp.Description(typeArgDescription), mcp.Enum("mr", "push")),
		mcp.WithString("start", mcp.Description(startArgDescription)),
		mcp.WithString("end", mcp.Description(endArgDescription)),
		mcp.WithArray("authors", mcp.Description(authorsArgDescription), mcp.WithStringItems()),
		mcp.WithArray("projects", mcp.Description("Only include these projects."), mcp.WithStringItems()),
		mcp.WithNumber("limit", mcp.Description("Limit the number of rows returned.")),
	), h.handleGetReviewLogs)

	// --- 2. Tool: get_review_stats ---
	s.AddTool(mcp.NewTool(GetReviewStatsTool,
		mcp.WithDescription("Get aggregate review statistics per project and per author: review counts, average scores and code lines."),
		mcp.WithString("type", mcp.Description(typeArgDescription), mcp.Enum("mr", "push")),
		mcp.WithString("start", mcp.Description(startArgDescription)),
		mcp.WithString("end", mcp.Description(endArgDescription)),
		mcp.WithString("author", mcp.Description("Only include this author.")),
		mcp.WithString("project", mcp.Description("Only include this project.")),
	), h.handleGetReviewStats)

	// --- 3. Tool: get_filter_options ---
	s.AddTool(mcp.NewTool(GetFilterOptionsTool,
		mcp.WithDescription("List the authors and projects that can be used as filters for a review type."),
		mcp.WithString("type", mcp.Description(typeArgDescription), mcp.Enum("mr", "push")),
	), h.handleGetFilterOptions)

	return s
}

// StartMCPServer starts the review dashboard MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, fetcher contract.ReviewFetcher, history contract.HistoryStore, logger *logrus.Logger) error {
	s := NewMCPServer(baseCfg, fetcher, history, logger)
	return server.ServeStdio(s)
}
