package main

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/livingtrust/livingtrust"
	"github.com/livingtrust/livingtrust/internal/cli"
	"github.com/livingtrust/livingtrust/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the trust advisor and the wizard as MCP tools, so AI agents can
answer trust questions and fill a trust draft with the user.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		b, err := cli.NewBackend(cfg, logger)
		if err != nil {
			return err
		}
		defer func() { _ = b.Close() }()

		srv := mcp.NewServer(b.Engine.Sessions(), b.Advisor, strings.TrimSpace(livingtrust.Version), mcp.WithLogger(logger))

		switch transport {
		case "stdio":
			// Logs go to stderr, stdout carries JSON-RPC.
			logger.Info("starting MCP server (stdio)")
			return srv.ServeStdio()
		case "sse":
			sigCtx := cli.NewSignalContext(cmd.Context())
			defer sigCtx.Cancel()
			addr := fmt.Sprintf(":%d", port)
			if err := srv.ServeSSE(sigCtx, addr, fmt.Sprintf("http://localhost:%d", port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			logger.Info("MCP server stopped gracefully")
			return nil
		default:
			return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
}
