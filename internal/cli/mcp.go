package cli

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"gymlog/internal/mcpserver"
)

func newMCPCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the MCP tools over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()
			srv := mcpserver.New(a.store, a.analyzer, opts.version, opts.logger)
			return srv.Run(cmd.Context(), &mcp.StdioTransport{})
		},
	}
}
