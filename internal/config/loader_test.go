package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/yildizm/runlens/internal/logger"
)

func newTestLoader(paths []string, env map[string]string) *Loader {
	l := NewLoader()
	l.configPaths = paths
	l.getenv = func(k string) string { return env[k] }
	l.log = logger.NewWithWriter("config", nil, &bytes.Buffer{})
	return l
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func TestNewLoader(t *testing.T) {
	loader := NewLoader()
	if loader == nil {
		t.Fatal("NewLoader returned nil")
	}
	if len(loader.configPaths) != 3 {
		t.Errorf("Expected 3 config paths, got %d", len(loader.configPaths))
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := newTestLoader(nil, nil).LoadConfig("")
	if err != nil {
		t.Fatalf("Failed to load default config: %v", err)
	}
	if cfg.Server.Timeout != 30*time.Second {
		t.Errorf("Expected default timeout 30s, got %v", cfg.Server.Timeout)
	}
	if cfg.Viewer.Normalize {
		t.Errorf("Expected normalize disabled by default")
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "runlens.yaml", `version: "1.0"
viewer:
  debounce_delay: 150ms
  default_levels: [error, warn]
  normalize: true
server:
  base_url: https://dash.example.com
  timeout: 5s
output:
  default_format: json
  verbose: true
`)

	cfg, err := newTestLoader(nil, nil).LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config from file: %v", err)
	}

	if cfg.Viewer.DebounceDelay != 150*time.Millisecond {
		t.Errorf("Expected debounce 150ms, got %v", cfg.Viewer.DebounceDelay)
	}
	if strings.Join(cfg.Viewer.DefaultLevels, ",") != "error,warn" {
		t.Errorf("Expected levels error,warn, got %v", cfg.Viewer.DefaultLevels)
	}
	if !cfg.Viewer.Normalize {
		t.Errorf("Explicit true should override the default")
	}
	if cfg.Server.BaseURL != "https://dash.example.com" || cfg.Server.Timeout != 5*time.Second {
		t.Errorf("Unexpected server config %+v", cfg.Server)
	}
	if cfg.Server.DownloadDir != "." {
		t.Errorf("Keys absent from the file should keep defaults, got %q", cfg.Server.DownloadDir)
	}
	if cfg.Output.DefaultFormat != "json" || !cfg.Output.Verbose {
		t.Errorf("Unexpected output config %+v", cfg.Output)
	}
}

func TestLoadConfigPriority(t *testing.T) {
	dir := t.TempDir()
	project := writeFile(t, dir, "project.yaml", "output:\n  default_format: markdown\n")
	user := writeFile(t, dir, "user.yaml", "output:\n  default_format: csv\n  color_mode: never\n")

	cfg, err := newTestLoader([]string{project, user, filepath.Join(dir, "missing.yaml")}, nil).LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Output.DefaultFormat != "markdown" {
		t.Errorf("Project config should win, got %s", cfg.Output.DefaultFormat)
	}
	if cfg.Output.ColorMode != "never" {
		t.Errorf("User config should still apply, got %s", cfg.Output.ColorMode)
	}
}

func TestLoadConfigBrokenFileIsSkipped(t *testing.T) {
	dir := t.TempDir()
	broken := writeFile(t, dir, "broken.yaml", "output: [unterminated\n")

	var logs bytes.Buffer
	l := newTestLoader([]string{broken}, nil)
	l.log = logger.NewWithWriter("config", nil, &logs)

	if _, err := l.LoadConfig(""); err != nil {
		t.Fatalf("Broken search-path file should be skipped, got %v", err)
	}
	if !strings.Contains(logs.String(), "failed to load config") {
		t.Errorf("Expected a warning, got %q", logs.String())
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "invalid.yaml", "output:\n  default_format: \"json\n")
	if _, err := newTestLoader(nil, nil).LoadConfig(path); err == nil {
		t.Error("Expected error loading invalid YAML config, but got none")
	}
}

func TestLoadConfigInvalidValues(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.yaml", "viewer:\n  theme: neon\n")
	if _, err := newTestLoader(nil, nil).LoadConfig(path); err == nil {
		t.Error("Expected validation error")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	env := map[string]string{
		"RUNLENS_VIEWER_DEBOUNCE_DELAY": "1s",
		"RUNLENS_VIEWER_DEFAULT_LEVELS": "error, trace",
		"RUNLENS_VIEWER_MATCH_CASE":     "true",
		"RUNLENS_SERVER_BASE_URL":       "https://ci.example.com",
		"RUNLENS_SERVER_TIMEOUT":        "2m",
		"RUNLENS_OUTPUT_DEFAULT_FORMAT": "csv",
		"RUNLENS_OUTPUT_VERBOSE":        "true",
		"RUNLENS_WATCH_FROM_START":      "true",
	}

	cfg, err := newTestLoader(nil, env).LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Viewer.DebounceDelay != time.Second {
		t.Errorf("Expected debounce 1s, got %v", cfg.Viewer.DebounceDelay)
	}
	if strings.Join(cfg.Viewer.DefaultLevels, ",") != "error,trace" {
		t.Errorf("Unexpected levels %v", cfg.Viewer.DefaultLevels)
	}
	if !cfg.Viewer.MatchCase {
		t.Error("Expected match_case true")
	}
	if cfg.Server.BaseURL != "https://ci.example.com" || cfg.Server.Timeout != 2*time.Minute {
		t.Errorf("Unexpected server config %+v", cfg.Server)
	}
	if cfg.Output.DefaultFormat != "csv" || !cfg.Output.Verbose {
		t.Errorf("Unexpected output config %+v", cfg.Output)
	}
	if !cfg.Watch.FromStart {
		t.Error("Expected from_start true")
	}
}

func TestApplyEnvOverridesInvalid(t *testing.T) {
	tests := map[string]string{
		"RUNLENS_VIEWER_DEBOUNCE_DELAY": "soon",
		"RUNLENS_OUTPUT_VERBOSE":        "sometimes",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			_, err := newTestLoader(nil, map[string]string{key: value}).LoadConfig("")
			if err == nil || !strings.Contains(err.Error(), key) {
				t.Errorf("Expected error naming %s, got %v", key, err)
			}
		})
	}
}

func TestValidateConfigPath(t *testing.T) {
	tests := []struct {
		path    string
		wantErr bool
	}{
		{"config.yaml", false},
		{"dir/config.yml", false},
		{"../config.yaml", true},
		{"config.json", true},
		{"/proc/self/config.yaml", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			err := validateConfigPath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateConfigPath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := expandPath("~/x.yaml"); got != filepath.Join(home, "x.yaml") {
		t.Errorf("expandPath() = %s", got)
	}
	if got := expandPath("/abs/x.yaml"); got != "/abs/x.yaml" {
		t.Errorf("absolute path changed: %s", got)
	}
}
