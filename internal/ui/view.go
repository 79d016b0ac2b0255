package ui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/yildizm/runlens/internal/emoji"
	"github.com/yildizm/runlens/internal/highlight"
	"github.com/yildizm/runlens/internal/logview"
	"github.com/yildizm/runlens/internal/permalink"
	"github.com/yildizm/runlens/internal/ui/components"
)

var helpSections = []string{
	"Navigation:",
	"  j/k, arrows    Move the cursor",
	"  h/l, 0/$       Move within the line",
	"  g/G, PgUp/PgDn Jump to top, bottom or by page",
	"",
	"Search:",
	"  /              Focus the search box",
	"  Enter / Esc    Run now / leave the search box",
	"  n / N          Next / previous match",
	"  c / w          Toggle match case / whole word",
	"",
	"Levels:",
	"  1-5            Toggle ERROR WARN DEBUG INFO TRACE",
	"",
	"Permalinks:",
	"  v              Start or stop a selection",
	"  y              Copy a permalink to the selection",
	"  Esc            Clear the selection, then the search",
	"",
	"  r              Reload    q  Quit",
}

// View renders the log tab
func (m *LogTabModel) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return m.styles.Muted.Render("Initializing...")
	}
	if m.showHelp {
		return m.renderHelp()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderHeader(),
		m.styles.Search.Width(max(10, m.width-2)).Render(m.input.View()),
		m.renderBody(),
		m.renderStatus(),
	)
}

func (m *LogTabModel) renderHeader() string {
	title := m.styles.Title.Render(emoji.GetEmoji("search") + " " + m.opts.Title)

	counts := logview.Counts(m.session.Lines())
	filter := m.session.Filter()
	chips := make([]components.LevelChip, 0, len(logview.Levels))
	for i, level := range logview.Levels {
		chips = append(chips, components.NewLevelChip(
			fmt.Sprint(i+1), level.String(), counts[level], filter.Enabled(level),
		).WithStyle(m.styles.Level(level)))
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		components.LevelBar(chips, m.styles.Muted, m.width),
	)
}

func (m *LogTabModel) renderBody() string {
	switch {
	case m.loading:
		return m.placeBody(m.styles.Muted.Render(emoji.GetEmoji("download") + " Loading log..."))
	case m.err != nil && len(m.session.Lines()) == 0:
		return m.placeBody(m.styles.Error.Render(emoji.GetEmoji("error") + " " + m.err.Error()))
	case len(m.session.Lines()) == 0:
		return m.placeBody(m.styles.Muted.Render("Log is empty"))
	case len(m.visible) == 0:
		return m.placeBody(m.styles.Muted.Render("All levels are hidden: press 1-5 to show them"))
	}
	return m.viewport.View()
}

func (m *LogTabModel) placeBody(content string) string {
	return lipgloss.Place(m.width, m.viewport.Height, lipgloss.Center, lipgloss.Center, content)
}

func (m *LogTabModel) renderStatus() string {
	var parts []string

	total := len(m.session.Matches())
	switch {
	case m.session.Pending():
		parts = append(parts, "searching...")
	case m.session.Term() == "":
	case total == 0:
		parts = append(parts, "no matches")
	default:
		parts = append(parts, fmt.Sprintf("%d/%d", m.session.Current()+1, total))
	}

	var flags []string
	opts := m.session.Options()
	if opts.MatchCase {
		flags = append(flags, "Aa")
	}
	if opts.WholeWord {
		flags = append(flags, "word")
	}
	if len(flags) > 0 {
		parts = append(parts, "["+strings.Join(flags, " ")+"]")
	}

	if len(m.visible) > 0 {
		parts = append(parts, fmt.Sprintf("Ln %d, Col %d", m.cursorLine(), m.column+1))
	}
	if r, ok := m.selection.Range(); ok {
		parts = append(parts, emoji.GetEmoji("link")+" "+strings.TrimPrefix(r.Hash(), "#"))
	} else if m.selecting {
		parts = append(parts, "selecting")
	}

	left := m.styles.Muted.Render(strings.Join(parts, "  "))
	switch {
	case m.err != nil && !m.loading:
		return left + "  " + m.styles.Error.Render(emoji.GetEmoji("error")+" "+m.err.Error())
	case m.status != "":
		return left + "  " + m.styles.Status.Render(m.status)
	default:
		return left + "  " + m.styles.Muted.Render("? help")
	}
}

func (m *LogTabModel) renderHelp() string {
	lines := make([]string, 0, len(helpSections)+2)
	lines = append(lines, m.styles.Header.Render(emoji.GetEmoji("help")+" Log viewer help"), "")
	for _, line := range helpSections {
		if line != "" && !strings.HasPrefix(line, " ") {
			lines = append(lines, m.styles.Header.Render(line))
			continue
		}
		lines = append(lines, m.styles.Muted.Render(line))
	}

	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.styles.Theme.Primary).
		Padding(1, 2)

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
		border.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)))
}

// refreshContent re-renders every visible line into the viewport
func (m *LogTabModel) refreshContent() {
	lines := m.session.Lines()
	current := m.session.Current()
	sel, hasSel := m.selection.Range()

	rows := make([]string, len(m.visible))
	for row, idx := range m.visible {
		line := lines[idx]
		gutter := "  "
		if row == m.cursor {
			gutter = m.styles.Cursor.Render("> ")
		}

		var body string
		if hasSel && line.Number >= sel.StartLine && line.Number <= sel.EndLine {
			body = m.renderSelected(line, sel)
		} else {
			body = m.renderer.Render(highlight.RenderLine(line.Content, m.session.MatchesForLine(idx), current))
		}

		rows[row] = gutter +
			m.styles.LineNumber.Render(fmt.Sprint(line.Number)) + " " +
			m.styles.Level(line.Level).Render(fmt.Sprintf("%-5s", line.Level)) + " " +
			body
	}
	m.viewport.SetContent(strings.Join(rows, "\n"))
}

// renderSelected shades the selected runes of a line
func (m *LogTabModel) renderSelected(line logview.Line, sel permalink.Range) string {
	runes := []rune(line.Content)
	from, to := 0, len(runes)
	if line.Number == sel.StartLine {
		from = min(sel.StartOffset, len(runes))
	}
	if line.Number == sel.EndLine {
		to = min(sel.EndOffset, len(runes))
	}
	if from >= to {
		if utf8.RuneCountInString(line.Content) == 0 && line.Number != sel.EndLine {
			return m.styles.Selected.Render(" ")
		}
		return line.Content
	}
	return string(runes[:from]) +
		m.styles.Selected.Render(string(runes[from:to])) +
		string(runes[to:])
}
