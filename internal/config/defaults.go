package config

import "time"

// DefaultRequestTimeout bounds a single backend call.
const DefaultRequestTimeout = 60 * time.Second

// DefaultConfigFile is where init writes and commands read configuration.
const DefaultConfigFile = ".nlpdemo.yml"

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BackendURL:        "http://localhost:8000",
		Port:              8080,
		DataDir:           ".nlpdemo",
		RequestTimeout:    "60s",
		RequestsPerMinute: 0,
		HistoryRetention:  "720h",
		AllowAllOrigins:   false,
		EnabledDemos:      []string{"*"},
		Saliency: SaliencyConfig{
			Shades:          20,
			DefaultTopK:     3,
			PairedColormap:  "RdBu",
			SingleColormap:  "copper",
			HeatmapColormap: "greys",
		},
	}
}
