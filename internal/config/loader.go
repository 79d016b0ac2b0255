package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yildizm/runlens/internal/logger"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "RUNLENS_"

// ConfigPaths defines the config file search paths in priority order
var ConfigPaths = []string{
	"./.runlens.yaml",               // Project-specific config (highest priority)
	"~/.config/runlens/config.yaml", // User config
	"/etc/runlens/config.yaml",      // System config (lowest priority)
}

// Loader handles configuration loading with priority merging
type Loader struct {
	configPaths []string
	getenv      func(string) string
	log         *logger.Logger
}

// NewLoader creates a new config loader
func NewLoader() *Loader {
	return &Loader{
		configPaths: ConfigPaths,
		getenv:      os.Getenv,
		log:         logger.New("config", nil),
	}
}

// LoadConfig loads configuration from multiple sources with priority order:
// 1. Command line flags (handled by caller)
// 2. Environment variables
// 3. ./.runlens.yaml
// 4. ~/.config/runlens/config.yaml
// 5. /etc/runlens/config.yaml
// 6. Built-in defaults
func (l *Loader) LoadConfig(customPath string) (*Config, error) {
	config := DefaultConfig()

	if customPath != "" {
		if err := validateConfigPath(customPath); err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		if err := l.loadFromFile(config, customPath); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", customPath, err)
		}
	} else {
		// Lowest priority first so later files win
		for i := len(l.configPaths) - 1; i >= 0; i-- {
			expandedPath := expandPath(l.configPaths[i])
			if !fileExists(expandedPath) {
				continue
			}
			if err := l.loadFromFile(config, expandedPath); err != nil {
				l.log.Warn("failed to load config from %s: %v", expandedPath, err)
			}
		}
	}

	if err := l.applyEnvOverrides(config); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// loadFromFile overlays a YAML file onto config. Keys absent from the file
// keep their current value; keys present, including false booleans, win.
func (l *Loader) loadFromFile(config *Config, path string) error {
	// #nosec G304 - path is validated by validateConfigPath() or comes from ConfigPaths
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	merged := config.clone()
	if err := yaml.Unmarshal(data, merged); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	*config = *merged
	return nil
}

func (c *Config) clone() *Config {
	cp := *c
	cp.Viewer.DefaultLevels = append([]string(nil), c.Viewer.DefaultLevels...)
	return &cp
}

// applyEnvOverrides applies RUNLENS_* environment variables
func (l *Loader) applyEnvOverrides(config *Config) error {
	envMappings := map[string]func(string) error{
		// Viewer Config
		"VIEWER_DEBOUNCE_DELAY": func(v string) error { return parseDuration(v, &config.Viewer.DebounceDelay) },
		"VIEWER_DEFAULT_LEVELS": func(v string) error { config.Viewer.DefaultLevels = splitList(v); return nil },
		"VIEWER_MATCH_CASE":     func(v string) error { return parseBool(v, &config.Viewer.MatchCase) },
		"VIEWER_WHOLE_WORD":     func(v string) error { return parseBool(v, &config.Viewer.WholeWord) },
		"VIEWER_THEME":          func(v string) error { config.Viewer.Theme = v; return nil },
		"VIEWER_NORMALIZE":      func(v string) error { return parseBool(v, &config.Viewer.Normalize) },

		// Server Config
		"SERVER_BASE_URL":     func(v string) error { config.Server.BaseURL = v; return nil },
		"SERVER_TIMEOUT":      func(v string) error { return parseDuration(v, &config.Server.Timeout) },
		"SERVER_DOWNLOAD_DIR": func(v string) error { config.Server.DownloadDir = v; return nil },
		"SERVER_PAGE_URL":     func(v string) error { config.Server.PageURL = v; return nil },

		// Output Config
		"OUTPUT_DEFAULT_FORMAT": func(v string) error { config.Output.DefaultFormat = v; return nil },
		"OUTPUT_COLOR_MODE":     func(v string) error { config.Output.ColorMode = v; return nil },
		"OUTPUT_VERBOSE":        func(v string) error { return parseBool(v, &config.Output.Verbose) },

		// Watch Config
		"WATCH_DEBOUNCE":   func(v string) error { return parseDuration(v, &config.Watch.Debounce) },
		"WATCH_FROM_START": func(v string) error { return parseBool(v, &config.Watch.FromStart) },
	}

	for name, setter := range envMappings {
		envVar := EnvPrefix + name
		if value := l.getenv(envVar); value != "" {
			if err := setter(value); err != nil {
				return fmt.Errorf("invalid value for %s: %w", envVar, err)
			}
		}
	}

	return nil
}

// GetConfigPaths returns the list of configuration file paths that will be searched
func GetConfigPaths() []string {
	paths := make([]string, 0, len(ConfigPaths))
	for _, path := range ConfigPaths {
		paths = append(paths, expandPath(path))
	}
	return paths
}

// FindConfigFile finds the first existing config file in the search paths
func FindConfigFile() (string, bool) {
	for _, path := range ConfigPaths {
		expandedPath := expandPath(path)
		if fileExists(expandedPath) {
			return expandedPath, true
		}
	}
	return "", false
}

// validateConfigPath validates that a config path is safe to read
func validateConfigPath(path string) error {
	cleanPath := filepath.Clean(path)

	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path traversal not allowed")
	}

	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("config file must have .yaml or .yml extension")
	}

	absPath, err := filepath.Abs(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	if strings.HasPrefix(absPath, "/proc/") || strings.HasPrefix(absPath, "/sys/") {
		return fmt.Errorf("access to system files not allowed")
	}

	return nil
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseBool(s string, dst *bool) error {
	val, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}

func parseDuration(s string, dst *time.Duration) error {
	val, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}
