package highlight

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles decide how segments look in a terminal
type Styles struct {
	Plain   lipgloss.Style
	Match   lipgloss.Style
	Current lipgloss.Style
}

// DefaultStyles returns yellow matches with a reversed current match
func DefaultStyles() Styles {
	return Styles{
		Plain: lipgloss.NewStyle(),
		Match: lipgloss.NewStyle().
			Background(lipgloss.AdaptiveColor{Light: "#FEF3C7", Dark: "#78350F"}).
			Foreground(lipgloss.AdaptiveColor{Light: "#111827", Dark: "#FDE68A"}),
		Current: lipgloss.NewStyle().
			Background(lipgloss.AdaptiveColor{Light: "#F59E0B", Dark: "#F59E0B"}).
			Foreground(lipgloss.AdaptiveColor{Light: "#111827", Dark: "#111827"}).
			Bold(true),
	}
}

// Render renders segments with the styles
func (s Styles) Render(segments []Segment) string {
	var b strings.Builder
	for _, seg := range segments {
		switch {
		case seg.Current:
			b.WriteString(s.Current.Render(seg.Text))
		case seg.Highlighted:
			b.WriteString(s.Match.Render(seg.Text))
		default:
			b.WriteString(s.Plain.Render(seg.Text))
		}
	}
	return b.String()
}

// MarkerStyles renders matches as [text] and the current one as >>text<<,
// for output without colours.
type MarkerStyles struct{}

// Render renders segments with bracket markers
func (MarkerStyles) Render(segments []Segment) string {
	var b strings.Builder
	for _, seg := range segments {
		switch {
		case seg.Current:
			b.WriteString(">>" + seg.Text + "<<")
		case seg.Highlighted:
			b.WriteString("[" + seg.Text + "]")
		default:
			b.WriteString(seg.Text)
		}
	}
	return b.String()
}

// Renderer is implemented by Styles and MarkerStyles
type Renderer interface {
	Render(segments []Segment) string
}
