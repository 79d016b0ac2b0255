package formatter

import (
	"fmt"
	"strings"

	"github.com/yildizm/runlens/internal/highlight"
	"github.com/yildizm/runlens/internal/logview"
)

// markdownFormatter formats output as Markdown
type markdownFormatter struct{}

// NewMarkdown creates a new Markdown formatter
func NewMarkdown() Formatter {
	return &markdownFormatter{}
}

func (f *markdownFormatter) Format(s *Summary) ([]byte, error) {
	var b strings.Builder

	b.WriteString("# Log Search Report\n\n")
	if s.Source != "" {
		fmt.Fprintf(&b, "Source: `%s`\n\n", s.Source)
	}

	f.writeSummaryTable(&b, s)
	f.writeLines(&b, s)

	return []byte(b.String()), nil
}

func (f *markdownFormatter) writeSummaryTable(b *strings.Builder, s *Summary) {
	b.WriteString("## Summary\n\n")
	b.WriteString("| Metric | Value |\n")
	b.WriteString("|--------|-------|\n")
	fmt.Fprintf(b, "| Lines | %s |\n", formatNumber(s.TotalLines))
	fmt.Fprintf(b, "| Visible | %s |\n", formatNumber(s.VisibleLines))
	fmt.Fprintf(b, "| Levels shown | %s |\n", s.Filter)
	for _, level := range logview.Levels {
		fmt.Fprintf(b, "| %s | %s |\n", level, formatNumber(s.LevelCounts[level]))
	}
	if s.Term != "" {
		fmt.Fprintf(b, "| Term | `%s`%s |\n", escapeMarkdownCell(s.Term), optionSuffix(s))
		fmt.Fprintf(b, "| Matches | %s |\n", formatNumber(s.MatchCount))
	}
	b.WriteString("\n")
}

func (f *markdownFormatter) writeLines(b *strings.Builder, s *Summary) {
	if s.Term != "" {
		b.WriteString("## Matching Lines\n\n")
	} else {
		b.WriteString("## Visible Lines\n\n")
	}
	if len(s.Lines) == 0 {
		b.WriteString("_None_\n")
		return
	}

	b.WriteString("| Line | Level | Content |\n")
	b.WriteString("|-----:|-------|---------|\n")
	for _, line := range s.Lines {
		fmt.Fprintf(b, "| %d | %s | %s |\n", line.Number, line.Level, markdownSegments(line.Segments))
	}
}

// markdownSegments bolds highlighted spans
func markdownSegments(segments []highlight.Segment) string {
	var b strings.Builder
	for _, seg := range segments {
		text := escapeMarkdownCell(seg.Text)
		if seg.Highlighted && text != "" {
			b.WriteString("**" + text + "**")
			continue
		}
		b.WriteString(text)
	}
	return b.String()
}

func escapeMarkdownCell(s string) string {
	r := strings.NewReplacer("|", `\|`, "*", `\*`, "`", "\\`", "\r", "")
	return r.Replace(s)
}
