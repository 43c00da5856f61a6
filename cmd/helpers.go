package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/ziadkadry99/nlpdemo/internal/backend"
	"github.com/ziadkadry99/nlpdemo/internal/config"
	"github.com/ziadkadry99/nlpdemo/internal/db"
	"github.com/ziadkadry99/nlpdemo/internal/demos"
	"github.com/ziadkadry99/nlpdemo/internal/history"
	"github.com/ziadkadry99/nlpdemo/internal/permalink"
	"github.com/ziadkadry99/nlpdemo/internal/session"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `nlpdemo init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// databasePath is where permalinks and the request history live.
func databasePath(cfg *config.Config) string {
	return filepath.Join(cfg.DataDir, "nlpdemo.db")
}

// newBackendClient creates the model-serving API client from config.
func newBackendClient(cfg *config.Config) *backend.Client {
	return backend.NewClient(cfg.BackendURL, cfg.Timeout(), backend.WithRateLimit(cfg.RequestsPerMinute))
}

// newRegistry builds the demos enabled by the config's glob patterns.
func newRegistry(patterns []string) (*demos.Registry, error) {
	registry, err := demos.NewRegistry(patterns)
	if err != nil {
		return nil, fmt.Errorf("enabled_demos: %w", err)
	}
	return registry, nil
}

// app holds the pieces every command that talks to the backend shares.
type app struct {
	cfg          *config.Config
	db           *db.DB
	registry     *demos.Registry
	palettes     demos.Palettes
	permalinks   *permalink.Store
	history      *history.Store
	orchestrator *session.Orchestrator
}

// newApp opens the database and builds the demo registry, palettes, stores
// and orchestrator. The caller closes app.db.
func newApp(cfg *config.Config) (*app, error) {
	registry, err := newRegistry(cfg.EnabledDemos)
	if err != nil {
		return nil, err
	}
	palettes, err := demos.NewPalettes(cfg.Saliency.Shades, cfg.Saliency.SingleColormap,
		cfg.Saliency.PairedColormap, cfg.Saliency.HeatmapColormap)
	if err != nil {
		return nil, fmt.Errorf("saliency colormaps: %w", err)
	}

	database, err := db.Open(databasePath(cfg))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	links := permalink.NewStore(database)
	hist := history.NewStore(database)
	return &app{
		cfg:          cfg,
		db:           database,
		registry:     registry,
		palettes:     palettes,
		permalinks:   links,
		history:      hist,
		orchestrator: session.NewOrchestrator(newBackendClient(cfg), links, hist),
	}, nil
}

// pruneHistory drops runs older than retention. Zero retention keeps all.
func pruneHistory(ctx context.Context, store *history.Store, retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, nil
	}
	n, err := store.DeleteBefore(ctx, time.Now().Add(-retention))
	if err != nil {
		return 0, fmt.Errorf("pruning history: %w", err)
	}
	return n, nil
}
