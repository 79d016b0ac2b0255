package ui

import (
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/yildizm/runlens/internal/highlight"
	"github.com/yildizm/runlens/internal/logview"
)

// Theme represents a color theme for the log tab
type Theme struct {
	Name string

	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor

	// Level colors
	Error lipgloss.AdaptiveColor
	Warn  lipgloss.AdaptiveColor
	Info  lipgloss.AdaptiveColor
	Debug lipgloss.AdaptiveColor
	Trace lipgloss.AdaptiveColor

	Success   lipgloss.AdaptiveColor
	Border    lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor
	Selection lipgloss.AdaptiveColor

	// Search highlight background for ordinary and current matches
	Match   lipgloss.AdaptiveColor
	Current lipgloss.AdaptiveColor
}

type palette [2]string

func (p palette) color() lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: p[0], Dark: p[1]}
}

// Available themes
var (
	DefaultTheme = Theme{
		Name:      "default",
		Primary:   palette{"#1E40AF", "#3B82F6"}.color(),
		Secondary: palette{"#6B7280", "#9CA3AF"}.color(),
		Error:     palette{"#DC2626", "#EF4444"}.color(),
		Warn:      palette{"#D97706", "#F59E0B"}.color(),
		Info:      palette{"#0891B2", "#06B6D4"}.color(),
		Debug:     palette{"#7C3AED", "#A855F7"}.color(),
		Trace:     palette{"#6B7280", "#9CA3AF"}.color(),
		Success:   palette{"#059669", "#10B981"}.color(),
		Border:    palette{"#D1D5DB", "#374151"}.color(),
		Muted:     palette{"#6B7280", "#9CA3AF"}.color(),
		Selection: palette{"#DBEAFE", "#1E3A8A"}.color(),
		Match:     palette{"#FEF3C7", "#78350F"}.color(),
		Current:   palette{"#F59E0B", "#F59E0B"}.color(),
	}

	HighContrastTheme = Theme{
		Name:      "high-contrast",
		Primary:   palette{"#000000", "#FFFFFF"}.color(),
		Secondary: palette{"#666666", "#BBBBBB"}.color(),
		Error:     palette{"#CC0000", "#FF4444"}.color(),
		Warn:      palette{"#CC6600", "#FFAA00"}.color(),
		Info:      palette{"#0066CC", "#4499FF"}.color(),
		Debug:     palette{"#800080", "#FF80FF"}.color(),
		Trace:     palette{"#666666", "#BBBBBB"}.color(),
		Success:   palette{"#006600", "#00FF00"}.color(),
		Border:    palette{"#000000", "#FFFFFF"}.color(),
		Muted:     palette{"#666666", "#BBBBBB"}.color(),
		Selection: palette{"#CCCCCC", "#333333"}.color(),
		Match:     palette{"#FFFF00", "#444400"}.color(),
		Current:   palette{"#FF8800", "#FF8800"}.color(),
	}

	MinimalTheme = Theme{
		Name:      "minimal",
		Primary:   palette{"#2D3748", "#E2E8F0"}.color(),
		Secondary: palette{"#718096", "#A0AEC0"}.color(),
		Error:     palette{"#C53030", "#FC8181"}.color(),
		Warn:      palette{"#C05621", "#F6AD55"}.color(),
		Info:      palette{"#2B6CB0", "#63B3ED"}.color(),
		Debug:     palette{"#553C9A", "#B794F6"}.color(),
		Trace:     palette{"#A0AEC0", "#718096"}.color(),
		Success:   palette{"#2F855A", "#68D391"}.color(),
		Border:    palette{"#E2E8F0", "#2D3748"}.color(),
		Muted:     palette{"#A0AEC0", "#718096"}.color(),
		Selection: palette{"#EDF2F7", "#2D3748"}.color(),
		Match:     palette{"#F7FAFC", "#2D3748"}.color(),
		Current:   palette{"#C05621", "#F6AD55"}.color(),
	}
)

var (
	themeMu      sync.RWMutex
	currentTheme = DefaultTheme
)

// GetTheme returns the current active theme
func GetTheme() Theme {
	themeMu.RLock()
	defer themeMu.RUnlock()
	return currentTheme
}

// SetTheme sets the active theme
func SetTheme(theme *Theme) {
	themeMu.Lock()
	defer themeMu.Unlock()
	currentTheme = *theme
}

// SetThemeByName sets the theme by name
func SetThemeByName(name string) bool {
	switch name {
	case "default":
		SetTheme(&DefaultTheme)
	case "high-contrast":
		SetTheme(&HighContrastTheme)
	case "minimal":
		SetTheme(&MinimalTheme)
	default:
		return false
	}
	return true
}

// IsColorDisabled checks if colors should be disabled
func IsColorDisabled() bool {
	return os.Getenv("NO_COLOR") != ""
}

// GetAvailableThemes returns list of available theme names
func GetAvailableThemes() []string {
	return []string{"default", "high-contrast", "minimal"}
}

// Styles contains the styled components of the log tab
type Styles struct {
	Theme Theme

	Title  lipgloss.Style
	Header lipgloss.Style
	Body   lipgloss.Style
	Muted  lipgloss.Style
	Error  lipgloss.Style
	Status lipgloss.Style

	LineNumber lipgloss.Style
	Cursor     lipgloss.Style
	Selected   lipgloss.Style
	Search     lipgloss.Style

	levels map[logview.Level]lipgloss.Style
	match  highlight.Styles
}

// GetStyles builds styles from the current theme
func GetStyles() *Styles {
	theme := GetTheme()

	return &Styles{
		Theme: theme,

		Title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true).
			Padding(0, 1),

		Header: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		Body: lipgloss.NewStyle(),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Error: lipgloss.NewStyle().
			Foreground(theme.Error).
			Bold(true),

		Status: lipgloss.NewStyle().
			Foreground(theme.Success),

		LineNumber: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Width(6).
			Align(lipgloss.Right),

		Cursor: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		Selected: lipgloss.NewStyle().
			Background(theme.Selection),

		Search: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),

		levels: map[logview.Level]lipgloss.Style{
			logview.LevelError: lipgloss.NewStyle().Foreground(theme.Error).Bold(true),
			logview.LevelWarn:  lipgloss.NewStyle().Foreground(theme.Warn).Bold(true),
			logview.LevelInfo:  lipgloss.NewStyle().Foreground(theme.Info),
			logview.LevelDebug: lipgloss.NewStyle().Foreground(theme.Debug),
			logview.LevelTrace: lipgloss.NewStyle().Foreground(theme.Trace),
		},

		match: highlight.Styles{
			Plain: lipgloss.NewStyle(),
			Match: lipgloss.NewStyle().Background(theme.Match),
			Current: lipgloss.NewStyle().
				Background(theme.Current).
				Foreground(lipgloss.Color("#111827")).
				Bold(true),
		},
	}
}

// Level returns the style for a level badge
func (s *Styles) Level(l logview.Level) lipgloss.Style {
	if style, ok := s.levels[l]; ok {
		return style
	}
	return s.Body
}

// Renderer returns the highlight renderer, or bracket markers when colors are
// disabled.
func (s *Styles) Renderer(color bool) highlight.Renderer {
	if !color {
		return highlight.MarkerStyles{}
	}
	return s.match
}
