package cmd

import (
	"github.com/huangsam/globeplay/core"
	"github.com/huangsam/globeplay/internal/apiclient"
	"github.com/huangsam/globeplay/internal/contract"
	"github.com/huangsam/globeplay/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the globeplay MCP server",
	Long:  `Launch an MCP server that lets AI agents rank climate hotspots, build frame URLs and locate countries.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return sharedSetup(rootCtx, cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		client := apiclient.New(cfg.BaseURL, cfg.Timeout)
		var store contract.HistoryStore
		if historyStore != nil {
			store = historyStore
		}
		return mcp.StartMCPServer(rootCtx, cfg, mcp.Deps{
			Ranking:  client,
			Geometry: client,
			URLs:     client,
			Gate:     core.NewHTTPFrameGate(nil, cfg.Timeout),
			History:  store,
		})
	},
}
