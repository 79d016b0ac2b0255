package config

import (
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yildizm/runlens/internal/logview"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Version != "1.0" {
		t.Errorf("Expected version 1.0, got %s", cfg.Version)
	}
	if cfg.Viewer.DebounceDelay != 300*time.Millisecond {
		t.Errorf("Expected debounce 300ms, got %v", cfg.Viewer.DebounceDelay)
	}
	if len(cfg.Viewer.DefaultLevels) != 5 {
		t.Errorf("Expected 5 default levels, got %d", len(cfg.Viewer.DefaultLevels))
	}
	if cfg.Output.DefaultFormat != "text" {
		t.Errorf("Expected output format text, got %s", cfg.Output.DefaultFormat)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should be valid: %v", err)
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		errMsg string
	}{
		{
			name:   "valid config",
			modify: func(*Config) {},
		},
		{
			name:   "negative debounce",
			modify: func(c *Config) { c.Viewer.DebounceDelay = -time.Second },
			errMsg: "debounce_delay must be non-negative",
		},
		{
			name:   "unknown level",
			modify: func(c *Config) { c.Viewer.DefaultLevels = []string{"ERROR", "FATAL"} },
			errMsg: "invalid default_levels",
		},
		{
			name:   "invalid theme",
			modify: func(c *Config) { c.Viewer.Theme = "neon" },
			errMsg: "invalid theme: neon (must be one of: default, high-contrast, minimal)",
		},
		{
			name:   "relative base url",
			modify: func(c *Config) { c.Server.BaseURL = "/api" },
			errMsg: "invalid base_url: /api (must be an absolute URL)",
		},
		{
			name:   "invalid output format",
			modify: func(c *Config) { c.Output.DefaultFormat = "invalid" },
			errMsg: "invalid output format: invalid (must be one of: json, text, markdown, csv)",
		},
		{
			name:   "invalid color mode",
			modify: func(c *Config) { c.Output.ColorMode = "invalid" },
			errMsg: "invalid color mode: invalid (must be one of: auto, always, never)",
		},
		{
			name:   "negative watch debounce",
			modify: func(c *Config) { c.Watch.Debounce = -1 },
			errMsg: "watch debounce must be non-negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()

			if tt.errMsg == "" {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Expected error containing %q, got none", tt.errMsg)
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("Expected error containing %q, got %q", tt.errMsg, err.Error())
			}
		})
	}
}

func TestLevelFilter(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Viewer.DefaultLevels = []string{"error", "warning"}

	f := cfg.LevelFilter()
	if !f.Enabled(logview.LevelError) || !f.Enabled(logview.LevelWarn) || f.Enabled(logview.LevelInfo) {
		t.Errorf("unexpected filter %s", f)
	}

	cfg.Viewer.DefaultLevels = nil
	if cfg.LevelFilter() != logview.AllLevels() {
		t.Errorf("empty levels should enable everything")
	}
}

func TestRunPageURL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.PageURL = "https://dash.example.com/runs/{run}?tab=logs"
	if got := cfg.RunPageURL("run 42"); got != "https://dash.example.com/runs/run%2042?tab=logs" {
		t.Errorf("unexpected page URL %s", got)
	}
}

func TestSampleConfigsParse(t *testing.T) {
	for name, content := range map[string]string{
		"full":    SampleConfig(),
		"minimal": MinimalSampleConfig(),
	} {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			if err := yaml.Unmarshal([]byte(content), cfg); err != nil {
				t.Fatalf("sample does not parse: %v", err)
			}
			if err := cfg.Validate(); err != nil {
				t.Errorf("sample is not valid: %v", err)
			}
		})
	}
}
