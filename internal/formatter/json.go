package formatter

import (
	"encoding/json"

	"github.com/yildizm/runlens/internal/highlight"
	"github.com/yildizm/runlens/internal/logview"
)

// jsonFormatter formats output as JSON
type jsonFormatter struct{}

// NewJSON creates a new JSON formatter
func NewJSON() Formatter {
	return &jsonFormatter{}
}

// JSONOutput is the document written by the JSON formatter
type JSONOutput struct {
	Source       string         `json:"source,omitempty"`
	TotalLines   int            `json:"total_lines"`
	VisibleLines int            `json:"visible_lines"`
	Levels       []string       `json:"levels"`
	LevelCounts  map[string]int `json:"level_counts"`
	Search       *SearchOutput  `json:"search,omitempty"`
	Lines        []LineOutput   `json:"lines"`
}

// SearchOutput describes the search that produced the listed lines
type SearchOutput struct {
	Term       string `json:"term"`
	MatchCase  bool   `json:"match_case"`
	WholeWord  bool   `json:"whole_word"`
	MatchCount int    `json:"match_count"`
}

// LineOutput is one listed line. Spans are byte offsets into Content.
type LineOutput struct {
	Number  int          `json:"line"`
	Level   string       `json:"level"`
	Content string       `json:"content"`
	Matches []SpanOutput `json:"matches,omitempty"`
}

// SpanOutput is one highlighted span
type SpanOutput struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
}

func (f *jsonFormatter) Format(s *Summary) ([]byte, error) {
	out := &JSONOutput{
		Source:       s.Source,
		TotalLines:   s.TotalLines,
		VisibleLines: s.VisibleLines,
		Levels:       enabledLevels(s.Filter),
		LevelCounts:  make(map[string]int, len(logview.Levels)),
		Lines:        make([]LineOutput, 0, len(s.Lines)),
	}
	for _, level := range logview.Levels {
		out.LevelCounts[level.String()] = s.LevelCounts[level]
	}
	if s.Term != "" {
		out.Search = &SearchOutput{
			Term:       s.Term,
			MatchCase:  s.Options.MatchCase,
			WholeWord:  s.Options.WholeWord,
			MatchCount: s.MatchCount,
		}
	}
	for _, line := range s.Lines {
		out.Lines = append(out.Lines, LineOutput{
			Number:  line.Number,
			Level:   line.Level.String(),
			Content: line.Content,
			Matches: spans(line.Segments),
		})
	}

	return json.MarshalIndent(out, "", "  ")
}

func spans(segments []highlight.Segment) []SpanOutput {
	var out []SpanOutput
	pos := 0
	for _, seg := range segments {
		if seg.Highlighted {
			out = append(out, SpanOutput{Start: pos, End: pos + len(seg.Text), Text: seg.Text})
		}
		pos += len(seg.Text)
	}
	return out
}

func enabledLevels(f logview.LevelFilter) []string {
	levels := make([]string, 0, len(logview.Levels))
	for _, level := range logview.Levels {
		if f.Enabled(level) {
			levels = append(levels, level.String())
		}
	}
	return levels
}
