package config

import "time"

// Config is the top-level nlpdemo configuration, corresponding to .nlpdemo.yml.
type Config struct {
	BackendURL        string         `yaml:"backend_url" koanf:"backend_url"`
	Port              int            `yaml:"port" koanf:"port"`
	DataDir           string         `yaml:"data_dir" koanf:"data_dir"`
	RequestTimeout    string         `yaml:"request_timeout" koanf:"request_timeout"`
	RequestsPerMinute int            `yaml:"requests_per_minute" koanf:"requests_per_minute"`
	HistoryRetention  string         `yaml:"history_retention" koanf:"history_retention"`
	AllowAllOrigins   bool           `yaml:"allow_all_origins" koanf:"allow_all_origins"`
	EnabledDemos      []string       `yaml:"enabled_demos" koanf:"enabled_demos"`
	Saliency          SaliencyConfig `yaml:"saliency" koanf:"saliency"`
}

// SaliencyConfig controls how saliency maps and heat maps are colored.
type SaliencyConfig struct {
	Shades          int    `yaml:"shades" koanf:"shades"`
	DefaultTopK     int    `yaml:"default_top_k" koanf:"default_top_k"`
	PairedColormap  string `yaml:"paired_colormap" koanf:"paired_colormap"`
	SingleColormap  string `yaml:"single_colormap" koanf:"single_colormap"`
	HeatmapColormap string `yaml:"heatmap_colormap" koanf:"heatmap_colormap"`
}

// Retention returns how long run history is kept. Zero keeps everything.
func (c *Config) Retention() time.Duration {
	d, err := time.ParseDuration(c.HistoryRetention)
	if err != nil || d <= 0 {
		return 0
	}
	return d
}

// Timeout returns the parsed backend request timeout, falling back to the
// default when the value is empty or invalid.
func (c *Config) Timeout() time.Duration {
	d, err := time.ParseDuration(c.RequestTimeout)
	if err != nil || d <= 0 {
		return DefaultRequestTimeout
	}
	return d
}
