package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/huangsam/reviewdash/core"
	"github.com/huangsam/reviewdash/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	fetcher contract.ReviewFetcher
	history contract.HistoryStore
	logger  *logrus.Logger
}

// newDashboard builds a one-off dashboard for a tool call. Every call starts
// from the base config, so no filter state leaks between calls.
func (h *toolHandler) newDashboard(cfg *contract.Config) *core.Dashboard {
	opts := []core.Option{core.WithLogger(h.logger)}
	if h.history != nil {
		opts = append(opts, core.WithHistory(h.history))
	}
	return core.NewDashboard(core.NewSessionFromConfig(cfg), h.fetcher, nil, nil, opts...)
}

// configFor applies the shared type/start/end arguments.
func (h *toolHandler) configFor(request mcp.CallToolRequest) (*contract.Config, error) {
	cfg := h.baseCfg.Clone()
	err := contract.RevalidateFilters(cfg,
		request.GetString("type", ""),
		request.GetString("start", ""),
		request.GetString("end", ""),
	)
	return cfg, err
}

func (h *toolHandler) handleGetReviewLogs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.configFor(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid filter parameters: %v", err)), nil
	}
	if a := request.GetStringSlice("authors", nil); a != nil {
		cfg.Selection.Authors = a
	}
	if p := request.GetStringSlice("projects", nil); p != nil {
		cfg.Selection.Projects = p
	}

	view, err := h.newDashboard(cfg).LoadData(ctx)
	if err != nil {
		return mcp.NewToolResultError(contract.FailureMessage(err)), nil
	}
	if l := request.GetInt("limit", 0); l > 0 && l < len(view.Rows) {
		view.Rows = view.Rows[:l]
	}

	jsonData, _ := json.MarshalIndent(view, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetReviewStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.configFor(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid filter parameters: %v", err)), nil
	}
	cfg.Selection.Authors = nil
	cfg.Selection.Projects = nil
	if a := request.GetString("author", ""); a != "" {
		cfg.Selection.Authors = []string{a}
	}
	if p := request.GetString("project", ""); p != "" {
		cfg.Selection.Projects = []string{p}
	}

	d := h.newDashboard(cfg)
	defer func() { _ = d.Close() }()
	series, err := d.LoadCharts(ctx)
	if err != nil {
		return mcp.NewToolResultError(contract.FailureMessage(err)), nil
	}
	jsonData, _ := json.MarshalIndent(core.EscapeSeries(series, contract.HTMLEscape), "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetFilterOptions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.configFor(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid filter parameters: %v", err)), nil
	}

	d := h.newDashboard(cfg)
	if err := d.LoadFilterOptions(ctx); err != nil {
		return mcp.NewToolResultError(contract.FailureMessage(err)), nil
	}

	opts := d.Session().Vocabulary().Options(contract.HTMLEscape)
	jsonData, _ := json.MarshalIndent(opts, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
