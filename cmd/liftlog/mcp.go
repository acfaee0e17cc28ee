package main

import (
	"fmt"

	liftmcp "github.com/claude/liftlog/internal/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

var mcpURL string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve MCP over stdio",
	Long: `Serve the MCP tools over stdin/stdout for assistants that launch a
subprocess. Data is read through the API of a running "liftlog serve" so
the session stays owned by a single process.`,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().StringVar(&mcpURL, "url", "", "base URL of the LiftLog API (default http://<server.host>:<server.port>)")
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(_ *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	baseURL := mcpURL
	if baseURL == "" {
		baseURL = "http://" + cfg.Server.Addr()
	}
	log.Info("MCP stdio starting", "version", Version, "api", baseURL)

	s := liftmcp.New(liftmcp.NewHTTPClient(baseURL), Version, log)
	if err := mcpserver.ServeStdio(s); err != nil {
		return fmt.Errorf("mcp stdio: %w", err)
	}
	return nil
}
