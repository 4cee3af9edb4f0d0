package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/insight/internal/adapters/driving/mcp"
	"github.com/custodia-labs/insight/internal/core/services"
)

// mcpPortRange is searched when --http is given without --port.
const (
	mcpPortStart = 8080
	mcpPortEnd   = 8180
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can ask
questions about your documents.

By default the server speaks JSON-RPC over stdio. Use --port to serve
streamable HTTP instead, or --http to pick a free port automatically.

Tools: ask, list_documents, delete_document, health
Resources: insight://documents, insight://documents/{documentId}

Examples:
  # Stdio mode (for desktop assistants)
  insight mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  insight mcp serve --port 8080

Assistant configuration:
  {
    "mcpServers": {
      "insight": {
        "command": "/path/to/insight",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().Bool("http", false, "serve HTTP on the first free port from 8080")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}
	useHTTP, err := cmd.Flags().GetBool("http")
	if err != nil {
		return fmt.Errorf("getting http flag: %w", err)
	}
	if port < 0 {
		return errors.New("port must not be negative")
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Query:    queryService,
		Document: documentService,
	})
	if err != nil {
		return err
	}

	if useHTTP && port == 0 {
		port, err = services.FindAvailablePort("localhost", mcpPortStart, mcpPortEnd)
		if err != nil {
			return fmt.Errorf("finding a free port: %w", err)
		}
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		cmd.PrintErrf("MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
