package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/yildizm/runlens/internal/logview"
)

// Config holds the complete application configuration
type Config struct {
	Version string       `yaml:"version" json:"version"`
	Viewer  ViewerConfig `yaml:"viewer" json:"viewer"`
	Server  ServerConfig `yaml:"server" json:"server"`
	Output  OutputConfig `yaml:"output" json:"output"`
	Watch   WatchConfig  `yaml:"watch" json:"watch"`
}

// ViewerConfig configures the log tab
type ViewerConfig struct {
	DebounceDelay time.Duration `yaml:"debounce_delay" json:"debounce_delay"` // quiet period before a search runs
	DefaultLevels []string      `yaml:"default_levels" json:"default_levels"` // levels shown on open
	MatchCase     bool          `yaml:"match_case" json:"match_case"`
	WholeWord     bool          `yaml:"whole_word" json:"whole_word"`
	Theme         string        `yaml:"theme" json:"theme"`         // default|high-contrast|minimal
	Normalize     bool          `yaml:"normalize" json:"normalize"` // rewrite JSON/logfmt lines before classifying
}

// ServerConfig configures the dashboard API used for artifacts and links
type ServerConfig struct {
	BaseURL     string        `yaml:"base_url" json:"base_url"`
	Timeout     time.Duration `yaml:"timeout" json:"timeout"`
	DownloadDir string        `yaml:"download_dir" json:"download_dir"`
	PageURL     string        `yaml:"page_url" json:"page_url"` // base for permalinks, may contain {run}
}

// OutputConfig configures output formatting and display
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format" json:"default_format"` // text|json|csv|markdown
	ColorMode     string `yaml:"color_mode" json:"color_mode"`         // auto|always|never
	Verbose       bool   `yaml:"verbose" json:"verbose"`
}

// WatchConfig configures follow mode
type WatchConfig struct {
	Debounce  time.Duration `yaml:"debounce" json:"debounce"`     // delay between a write and the reload
	FromStart bool          `yaml:"from_start" json:"from_start"` // print existing content first
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Version: "1.0",
		Viewer: ViewerConfig{
			DebounceDelay: 300 * time.Millisecond,
			DefaultLevels: []string{"ERROR", "WARN", "DEBUG", "INFO", "TRACE"},
			Theme:         "default",
			Normalize:     false,
		},
		Server: ServerConfig{
			BaseURL:     "http://localhost:8080",
			Timeout:     30 * time.Second,
			DownloadDir: ".",
			PageURL:     "http://localhost:3000/runs/{run}",
		},
		Output: OutputConfig{
			DefaultFormat: "text",
			ColorMode:     "auto",
		},
		Watch: WatchConfig{
			Debounce: 300 * time.Millisecond,
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.validateViewerConfig(); err != nil {
		return err
	}
	if err := c.validateServerConfig(); err != nil {
		return err
	}
	if err := c.validateOutputConfig(); err != nil {
		return err
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch debounce must be non-negative")
	}
	return nil
}

func (c *Config) validateViewerConfig() error {
	if c.Viewer.DebounceDelay < 0 {
		return fmt.Errorf("debounce_delay must be non-negative")
	}
	if _, err := logview.ParseLevelFilter(c.Viewer.DefaultLevels); err != nil {
		return fmt.Errorf("invalid default_levels: %w", err)
	}
	if c.Viewer.Theme != "" {
		validThemes := map[string]bool{
			"default":       true,
			"high-contrast": true,
			"minimal":       true,
		}
		if !validThemes[c.Viewer.Theme] {
			return fmt.Errorf("invalid theme: %s (must be one of: default, high-contrast, minimal)", c.Viewer.Theme)
		}
	}
	return nil
}

func (c *Config) validateServerConfig() error {
	if c.Server.BaseURL != "" {
		u, err := url.Parse(c.Server.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid base_url: %s (must be an absolute URL)", c.Server.BaseURL)
		}
	}
	if c.Server.Timeout < 0 {
		return fmt.Errorf("server timeout must be non-negative")
	}
	if c.Server.PageURL != "" {
		if _, err := url.Parse(c.Server.PageURL); err != nil {
			return fmt.Errorf("invalid page_url: %w", err)
		}
	}
	return nil
}

func (c *Config) validateOutputConfig() error {
	if c.Output.DefaultFormat != "" {
		validFormats := map[string]bool{
			"json":     true,
			"text":     true,
			"markdown": true,
			"csv":      true,
		}
		if !validFormats[c.Output.DefaultFormat] {
			return fmt.Errorf("invalid output format: %s (must be one of: json, text, markdown, csv)", c.Output.DefaultFormat)
		}
	}
	if c.Output.ColorMode != "" {
		validColorModes := map[string]bool{
			"auto":   true,
			"always": true,
			"never":  true,
		}
		if !validColorModes[c.Output.ColorMode] {
			return fmt.Errorf("invalid color mode: %s (must be one of: auto, always, never)", c.Output.ColorMode)
		}
	}
	return nil
}

// LevelFilter returns the configured default level filter
func (c *Config) LevelFilter() logview.LevelFilter {
	f, err := logview.ParseLevelFilter(c.Viewer.DefaultLevels)
	if err != nil {
		return logview.AllLevels()
	}
	return f
}

// RunPageURL returns the page URL for runID, substituting {run}
func (c *Config) RunPageURL(runID string) string {
	return strings.ReplaceAll(c.Server.PageURL, "{run}", url.PathEscape(runID))
}
