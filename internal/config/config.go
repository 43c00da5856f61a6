package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/ziadkadry99/nlpdemo/internal/saliency"
)

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (NLPDEMO_*). Nested keys use a double
// underscore: NLPDEMO_SALIENCY__SHADES -> saliency.shades.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider("NLPDEMO_", ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, "NLPDEMO_"))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// validColormaps is the set of recognized colormap names.
var validColormaps = map[string]bool{
	saliency.RdBu:   true,
	saliency.Copper: true,
	saliency.Greys:  true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.BackendURL == "" {
		return fmt.Errorf("backend_url is required")
	}
	u, err := url.Parse(c.BackendURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid backend_url %q: must be an http(s) URL", c.BackendURL)
	}

	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}

	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}

	if c.RequestTimeout != "" {
		if d, err := time.ParseDuration(c.RequestTimeout); err != nil || d <= 0 {
			return fmt.Errorf("invalid request_timeout %q", c.RequestTimeout)
		}
	}

	if c.HistoryRetention != "" {
		if d, err := time.ParseDuration(c.HistoryRetention); err != nil || d < 0 {
			return fmt.Errorf("invalid history_retention %q", c.HistoryRetention)
		}
	}

	if c.RequestsPerMinute < 0 {
		return fmt.Errorf("requests_per_minute must be non-negative")
	}

	if len(c.EnabledDemos) == 0 {
		return fmt.Errorf("enabled_demos must list at least one pattern")
	}

	s := c.Saliency
	if s.Shades <= 0 {
		return fmt.Errorf("saliency.shades must be positive")
	}
	if s.DefaultTopK < 0 {
		return fmt.Errorf("saliency.default_top_k must be non-negative")
	}
	for key, name := range map[string]string{
		"paired_colormap":  s.PairedColormap,
		"single_colormap":  s.SingleColormap,
		"heatmap_colormap": s.HeatmapColormap,
	} {
		if !validColormaps[name] {
			return fmt.Errorf("invalid saliency.%s %q: must be one of RdBu, copper, greys", key, name)
		}
	}

	return nil
}
