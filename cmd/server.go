package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/nlpdemo/internal/dashboard"
	"github.com/ziadkadry99/nlpdemo/internal/history"
	"github.com/ziadkadry99/nlpdemo/internal/permalink"
	"github.com/ziadkadry99/nlpdemo/internal/server"
)

var serverPort int

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the demo web server",
	Long:  `Starts the nlpdemo web server with the demo pages, the page WebSocket channel and the JSON API.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Port = serverPort
		}

		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer a.db.Close()

		pruned, err := pruneHistory(cmd.Context(), a.history, cfg.Retention())
		if err != nil {
			return err
		}

		srv := server.New(server.Config{
			Port:           cfg.Port,
			AllowAll:       cfg.AllowAllOrigins,
			RequestTimeout: cfg.Timeout(),
		}, a.db)

		registerAllRoutes(srv, a)

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			srv.Shutdown(context.Background())
		}()

		fmt.Fprintf(os.Stderr, "nlpdemo server %s starting on port %d\n", Version, cfg.Port)
		fmt.Fprintf(os.Stderr, "  Backend: %s\n", cfg.BackendURL)
		fmt.Fprintf(os.Stderr, "  Database: %s\n", databasePath(cfg))
		fmt.Fprintf(os.Stderr, "  Demos enabled: %d\n", len(a.registry.All()))
		if pruned > 0 {
			fmt.Fprintf(os.Stderr, "  History: pruned %d run(s) older than %s\n", pruned, cfg.Retention())
		}

		return srv.Start()
	},
}

// registerAllRoutes mounts the feature routes on the server router. The
// dashboard goes last because its /{demo} pages match any single segment.
func registerAllRoutes(srv *server.Server, a *app) {
	r := srv.Router()

	history.RegisterRoutes(r, a.history)
	permalink.RegisterRoutes(r, a.permalinks)

	dash := dashboard.New(a.registry, a.orchestrator, a.permalinks, a.palettes, a.cfg.Saliency.DefaultTopK)
	dash.RegisterRoutes(r)
	dash.RegisterStreams(srv.Streams())
}

func init() {
	serverCmd.Flags().IntVar(&serverPort, "port", 8080, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serverCmd)
}
