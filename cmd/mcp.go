package cmd

import (
	"github.com/huangsam/reviewdash/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the reviewdash MCP server",
	Long: `Launch an MCP server on stdio that lets AI agents query review logs,
statistics and filter options through standard tools.

Logs go to stderr or --log-file so stdout stays reserved for the protocol.`,
	PreRunE:  sharedSetupWrapper,
	PostRunE: sharedTeardown,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, newFetcher(), historyStore, logger)
	},
}
