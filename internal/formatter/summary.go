package formatter

import (
	"fmt"

	"github.com/yildizm/go-termfmt"

	"github.com/yildizm/runlens/internal/highlight"
	"github.com/yildizm/runlens/internal/logview"
	"github.com/yildizm/runlens/internal/search"
)

// Summary is the result of a non-interactive search over one log
type Summary struct {
	Source       string
	TotalLines   int
	VisibleLines int
	LevelCounts  map[logview.Level]int
	Filter       logview.LevelFilter
	Term         string
	Options      search.Options
	MatchCount   int
	Lines        []MatchedLine
}

// MatchedLine is a visible line with at least one match
type MatchedLine struct {
	Number   int
	Level    logview.Level
	Content  string
	Matches  int
	Segments []highlight.Segment
}

// BuildSummary collects the lines with matches. Lines with no match are
// omitted, and when term is empty every visible line is listed.
func BuildSummary(source string, lines []logview.Line, filter logview.LevelFilter, term string, opts search.Options, matches []search.Match) *Summary {
	s := &Summary{
		Source:       source,
		Filter:       filter,
		TotalLines:   len(lines),
		VisibleLines: logview.VisibleCount(lines),
		LevelCounts:  logview.Counts(lines),
		Term:         term,
		Options:      opts,
		MatchCount:   len(matches),
	}

	if term == "" {
		for _, line := range lines {
			if line.Visible {
				s.Lines = append(s.Lines, MatchedLine{
					Number:   line.Number,
					Level:    line.Level,
					Content:  line.Content,
					Segments: highlight.RenderLine(line.Content, nil, -1),
				})
			}
		}
		return s
	}

	byLine := search.ByLine(matches)
	for i, line := range lines {
		lineMatches := byLine[i]
		if len(lineMatches) == 0 {
			continue
		}
		s.Lines = append(s.Lines, MatchedLine{
			Number:   line.Number,
			Level:    line.Level,
			Content:  line.Content,
			Matches:  len(lineMatches),
			Segments: highlight.RenderLine(line.Content, lineMatches, -1),
		})
	}
	return s
}

// formatNumber formats numbers with commas for readability
func formatNumber(n int) string {
	return addCommas(fmt.Sprintf("%d", n))
}

func addCommas(s string) string {
	if len(s) <= 3 {
		return s
	}
	return addCommas(s[:len(s)-3]) + "," + s[len(s)-3:]
}

// levelEmoji picks a go-termfmt symbol for a level
func levelEmoji(l logview.Level, opts *termfmt.TerminalOptions) string {
	switch l {
	case logview.LevelError:
		return termfmt.GetEmoji("error", opts)
	case logview.LevelWarn:
		return termfmt.GetEmoji("warning", opts)
	case logview.LevelInfo:
		return termfmt.GetEmoji("info", opts)
	default:
		return termfmt.GetEmoji("insight", opts)
	}
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
