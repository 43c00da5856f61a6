package config

import (
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.BackendURL != "http://localhost:8000" {
		t.Errorf("expected default backend_url, got %q", cfg.BackendURL)
	}
	if cfg.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Port)
	}
	if cfg.Saliency.DefaultTopK != 3 {
		t.Errorf("expected default top-k 3, got %d", cfg.Saliency.DefaultTopK)
	}
	if cfg.Saliency.PairedColormap != "RdBu" || cfg.Saliency.SingleColormap != "copper" {
		t.Errorf("unexpected default colormaps: %+v", cfg.Saliency)
	}
	if cfg.Timeout() != 60*time.Second {
		t.Errorf("expected 60s timeout, got %v", cfg.Timeout())
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.nlpdemo.yml")

	original := DefaultConfig()
	original.BackendURL = "https://models.example.com/api"
	original.Port = 9090
	original.RequestTimeout = "15s"
	original.EnabledDemos = []string{"sentiment-*", "textual-entailment"}
	original.Saliency.Shades = 40

	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.BackendURL != original.BackendURL {
		t.Errorf("backend_url: got %q, want %q", loaded.BackendURL, original.BackendURL)
	}
	if loaded.Port != original.Port {
		t.Errorf("port: got %d, want %d", loaded.Port, original.Port)
	}
	if loaded.Timeout() != 15*time.Second {
		t.Errorf("timeout: got %v", loaded.Timeout())
	}
	if !reflect.DeepEqual(loaded.EnabledDemos, original.EnabledDemos) {
		t.Errorf("enabled_demos: got %v, want %v", loaded.EnabledDemos, original.EnabledDemos)
	}
	if loaded.Saliency.Shades != 40 {
		t.Errorf("saliency.shades: got %d, want 40", loaded.Saliency.Shades)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.yml"))
	if err != nil {
		t.Fatalf("Load should not fail for missing file: %v", err)
	}
	if cfg.Port != 8080 {
		t.Errorf("expected default port, got %d", cfg.Port)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.yml")
	if err := DefaultConfig().Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	t.Setenv("NLPDEMO_BACKEND_URL", "http://gpu-box:9000")
	t.Setenv("NLPDEMO_SALIENCY__DEFAULT_TOP_K", "5")

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.BackendURL != "http://gpu-box:9000" {
		t.Errorf("env override failed: got %q", loaded.BackendURL)
	}
	if loaded.Saliency.DefaultTopK != 5 {
		t.Errorf("nested env override failed: got %d", loaded.Saliency.DefaultTopK)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"empty backend", func(c *Config) { c.BackendURL = "" }, true},
		{"backend without scheme", func(c *Config) { c.BackendURL = "localhost:8000" }, true},
		{"port out of range", func(c *Config) { c.Port = 70000 }, true},
		{"empty data dir", func(c *Config) { c.DataDir = "" }, true},
		{"bad timeout", func(c *Config) { c.RequestTimeout = "soon" }, true},
		{"bad retention", func(c *Config) { c.HistoryRetention = "forever" }, true},
		{"retention disabled", func(c *Config) { c.HistoryRetention = "" }, false},
		{"negative rpm", func(c *Config) { c.RequestsPerMinute = -1 }, true},
		{"no demos", func(c *Config) { c.EnabledDemos = nil }, true},
		{"zero shades", func(c *Config) { c.Saliency.Shades = 0 }, true},
		{"negative top-k", func(c *Config) { c.Saliency.DefaultTopK = -2 }, true},
		{"unknown colormap", func(c *Config) { c.Saliency.SingleColormap = "jet" }, true},
		{"https backend", func(c *Config) { c.BackendURL = "https://api.example.com" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRetention(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Retention() != 720*time.Hour {
		t.Errorf("Retention() = %v, want 720h", cfg.Retention())
	}
	for _, raw := range []string{"", "0s", "junk"} {
		cfg.HistoryRetention = raw
		if cfg.Retention() != 0 {
			t.Errorf("Retention(%q) = %v, want 0", raw, cfg.Retention())
		}
	}
}

func TestTimeoutFallback(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RequestTimeout = ""
	if cfg.Timeout() != DefaultRequestTimeout {
		t.Errorf("Timeout() = %v, want default", cfg.Timeout())
	}
}

func TestSplitAndTrim(t *testing.T) {
	got := splitAndTrim(" sentiment-* , ,textual-entailment")
	want := []string{"sentiment-*", "textual-entailment"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("splitAndTrim = %v, want %v", got, want)
	}
}
