package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/ziadkadry99/nlpdemo/internal/mcp"
)

var serveOffline bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server for AI agent integration",
	Long: `Starts a Model Context Protocol (MCP) server on stdio, exposing the demos,
the token alignment helpers and saliency ranking as tools for AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		// Set version from the cmd package variable.
		mcpserver.Version = Version

		if serveOffline {
			registry, err := newRegistry(cfg.EnabledDemos)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "nlpdemo MCP server started on stdio (offline, demos=%d)\n", len(registry.All()))
			return mcpserver.NewServer(registry, nil, cfg.Saliency.DefaultTopK).Serve()
		}

		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer a.db.Close()

		fmt.Fprintf(os.Stderr, "nlpdemo MCP server started on stdio (backend=%s, demos=%d)\n", cfg.BackendURL, len(a.registry.All()))

		srv := mcpserver.NewServer(a.registry, a.orchestrator, cfg.Saliency.DefaultTopK)
		return srv.Serve()
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveOffline, "offline", false, "Expose only the tools that do not call the model server")
	rootCmd.AddCommand(serveCmd)
}
