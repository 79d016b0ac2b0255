package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// LevelChip is one level toggle in the log tab header
type LevelChip struct {
	Key     string
	Label   string
	Count   int
	Enabled bool
	Style   lipgloss.Style
}

// NewLevelChip creates a chip for a level toggle key
func NewLevelChip(key, label string, count int, enabled bool) LevelChip {
	return LevelChip{
		Key:     key,
		Label:   label,
		Count:   count,
		Enabled: enabled,
		Style:   lipgloss.NewStyle(),
	}
}

// WithStyle sets the style used while the level is shown
func (c LevelChip) WithStyle(style lipgloss.Style) LevelChip {
	c.Style = style
	return c
}

// Render renders the chip as "1 ERROR 12". Hidden levels are struck through.
func (c LevelChip) Render(muted lipgloss.Style) string {
	text := fmt.Sprintf("%s %s %d", c.Key, c.Label, c.Count)
	if !c.Enabled {
		return muted.Strikethrough(true).Render(text)
	}
	return c.Style.Render(text)
}

// LevelBar joins chips on one line, truncating chips that do not fit width.
// A width of zero or less means no limit.
func LevelBar(chips []LevelChip, muted lipgloss.Style, width int) string {
	var parts []string
	used := 0
	for _, chip := range chips {
		rendered := chip.Render(muted)
		w := lipgloss.Width(rendered)
		if width > 0 && used+w > width {
			parts = append(parts, muted.Render("…"))
			break
		}
		parts = append(parts, rendered)
		used += w + 2
	}
	return strings.Join(parts, "  ")
}
