package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/perachon/p7-puls-events-rag/internal/adapters/driving/mcp"
)

var mcpAddr string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Model Context Protocol integration",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose ask and rebuild as MCP tools",
	Long: `Serve the events assistant to MCP clients.

Tools: ask, and rebuild when a rebuild mode is configured.
Resources: pulsrag://cities and pulsrag://history/{asks|rebuilds}.

Without --addr the server speaks JSON-RPC over stdio, which is what
desktop assistants expect:

  {"mcpServers": {"pulsrag": {"command": "pulsrag", "args": ["mcp", "serve"]}}}

With --addr it serves streamable HTTP instead (MCP Inspector, remote use):

  pulsrag mcp serve --addr 8080`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().StringVarP(&mcpAddr, "addr", "a", "", "HTTP listen address or port (empty = stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	if answerService == nil {
		return notConfigured("answer service")
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Answer:  answerService,
		Rebuild: rebuildService,
		History: historyService,
	})
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	startWatcher(ctx)
	defer startScheduler(ctx)()

	if mcpAddr == "" {
		return server.Run(ctx)
	}
	addr := listenAddr(mcpAddr)
	cmd.Printf("MCP server listening on http://localhost%s\n", addr)
	return server.RunHTTP(ctx, addr)
}

// listenAddr turns a bare port into ":port".
func listenAddr(s string) string {
	if _, err := strconv.Atoi(s); err == nil {
		return ":" + s
	}
	return s
}
