package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/creatorscout/internal/app"
	mcpTransport "github.com/kailas-cloud/creatorscout/internal/transport/mcp"
	"github.com/kailas-cloud/creatorscout/internal/version"
)

var mcpHTTPAddr string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server exposing the creator search tools.

By default the server speaks JSON-RPC over stdio. Use --http to serve the
streamable HTTP transport instead.

Examples:
  # Stdio mode
  creatorscout mcp

  # HTTP mode
  creatorscout mcp --http :8090`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().StringVar(&mcpHTTPAddr, "http", "", "serve streamable HTTP on this address instead of stdio")
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.Load(ctx, envName)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	ports := mcpTransport.Ports{Discovery: a.Discovery, Logger: a.Logger}
	if a.Sessions != nil {
		ports.Sessions = a.Sessions
	}
	server, err := mcpTransport.NewServer(ports, version.Version)
	if err != nil {
		return err
	}

	if mcpHTTPAddr != "" {
		return server.RunHTTP(ctx, mcpHTTPAddr)
	}
	return server.Run(ctx)
}
