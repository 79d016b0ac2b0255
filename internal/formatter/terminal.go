package formatter

import (
	"fmt"
	"strings"

	"github.com/yildizm/go-termfmt"

	"github.com/yildizm/runlens/internal/highlight"
	"github.com/yildizm/runlens/internal/logview"
)

// maxListedLines caps the match listing in text output
const maxListedLines = 50

// terminalFormatter formats output for terminal display using go-termfmt
type terminalFormatter struct {
	opts     *termfmt.TerminalOptions
	renderer highlight.Renderer
}

// NewTerminal creates a new terminal formatter with optional color support
func NewTerminal(color bool) Formatter {
	opts := termfmt.DefaultOptions()
	opts.Color = color
	opts.Emoji = true

	var renderer highlight.Renderer = highlight.MarkerStyles{}
	if color {
		renderer = highlight.DefaultStyles()
	}
	return &terminalFormatter{opts: opts, renderer: renderer}
}

func (f *terminalFormatter) Format(s *Summary) ([]byte, error) {
	var b strings.Builder

	f.writeHeader(&b, s)
	f.writeStatistics(&b, s)
	f.writeLevels(&b, s)
	f.writeLines(&b, s)

	return []byte(b.String()), nil
}

func (f *terminalFormatter) writeHeader(b *strings.Builder, s *Summary) {
	header := "Log Search Summary"
	if s.Source != "" {
		header += ": " + s.Source
	}
	width := len([]rune(header))

	b.WriteString("╔" + strings.Repeat("═", width+2) + "╗\n")
	b.WriteString("║ " + header + " ║\n")
	b.WriteString("╚" + strings.Repeat("═", width+2) + "╝\n\n")
}

func (f *terminalFormatter) writeStatistics(b *strings.Builder, s *Summary) {
	b.WriteString(termfmt.GetEmoji("statistics", f.opts) + " Statistics\n")

	items := []termfmt.TreeItem{
		{Label: "Lines", Value: formatNumber(s.TotalLines)},
		{Label: "Visible", Value: fmt.Sprintf("%s (%.1f%%)", formatNumber(s.VisibleLines), percent(s.VisibleLines, s.TotalLines))},
	}
	if s.Term != "" {
		items = append(items,
			termfmt.TreeItem{Label: "Term", Value: fmt.Sprintf("%q%s", s.Term, optionSuffix(s))},
			termfmt.TreeItem{Label: "Matches", Value: fmt.Sprintf("%s in %d line(s)", formatNumber(s.MatchCount), len(s.Lines)), Last: true},
		)
	} else {
		items[len(items)-1].Last = true
	}

	b.WriteString(termfmt.TreeViewWithOptions(items, f.opts) + "\n\n")
}

func optionSuffix(s *Summary) string {
	var flags []string
	if s.Options.MatchCase {
		flags = append(flags, "match case")
	}
	if s.Options.WholeWord {
		flags = append(flags, "whole word")
	}
	if len(flags) == 0 {
		return ""
	}
	return " (" + strings.Join(flags, ", ") + ")"
}

func (f *terminalFormatter) writeLevels(b *strings.Builder, s *Summary) {
	b.WriteString(termfmt.GetEmoji("summary", f.opts) + " Levels\n")

	items := make([]termfmt.TreeItem, 0, len(logview.Levels))
	for i, level := range logview.Levels {
		items = append(items, termfmt.TreeItem{
			Label: fmt.Sprintf("%s %s", levelEmoji(level, f.opts), level),
			Value: formatNumber(s.LevelCounts[level]),
			Last:  i == len(logview.Levels)-1,
		})
	}
	b.WriteString(termfmt.TreeViewWithOptions(items, f.opts) + "\n\n")
}

func (f *terminalFormatter) writeLines(b *strings.Builder, s *Summary) {
	title := "Matching Lines"
	if s.Term == "" {
		title = "Visible Lines"
	}
	b.WriteString(termfmt.GetEmoji("pattern", f.opts) + " " + title + "\n")

	if len(s.Lines) == 0 {
		if s.Term != "" {
			b.WriteString("No matches\n")
		} else {
			b.WriteString("No visible lines\n")
		}
		return
	}

	shown := len(s.Lines)
	if shown > maxListedLines {
		shown = maxListedLines
	}
	width := len(fmt.Sprintf("%d", s.Lines[shown-1].Number))
	for _, line := range s.Lines[:shown] {
		fmt.Fprintf(b, "%*d │ %-5s │ %s\n", width, line.Number, line.Level, f.renderer.Render(line.Segments))
	}
	if shown < len(s.Lines) {
		fmt.Fprintf(b, "… %d more line(s)\n", len(s.Lines)-shown)
	}
}
