package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	pmcp "github.com/pedagogue-ai/pedagogue/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  "Commands for running the pedagogue MCP (Model Context Protocol) server.",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the pedagogue MCP server on stdio",
	Long: `Start the pedagogue MCP server on stdio transport.

The server exposes curriculum search and pipeline health as MCP tools that
AI assistants can call: search_standards, list_standards, cache_info,
get_metrics, get_alerts.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Loader == nil || Lookups == nil {
			return fmt.Errorf("standards loader or lookup cache not initialized")
		}

		ttl := 24 * time.Hour
		if Cfg != nil {
			ttl = Cfg.Cache.TTL
		}
		srv := pmcp.NewServer(Loader, Lookups, ttl, MetricsCalc, AlertEngine, appVersion)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if err := srv.Run(ctx); err != nil {
			return fmt.Errorf("running MCP server: %w", err)
		}

		return nil
	},
}

func init() {
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}
