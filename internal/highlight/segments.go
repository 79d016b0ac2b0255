package highlight

import (
	"sort"

	"github.com/yildizm/runlens/internal/search"
)

// Segment is a run of line text, either plain or part of a match
type Segment struct {
	Text        string `json:"text"`
	Highlighted bool   `json:"highlighted,omitempty"`
	Current     bool   `json:"current,omitempty"`
	GlobalIndex int    `json:"global_index,omitempty"`
}

// RenderLine splits content around its matches. The match whose global index
// equals current is flagged so the view can scroll to it. Matches that fall
// outside the content or overlap an earlier match are skipped.
func RenderLine(content string, matches []search.Match, current int) []Segment {
	if len(matches) == 0 {
		return []Segment{{Text: content}}
	}

	ordered := make([]search.Match, len(matches))
	copy(ordered, matches)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Start < ordered[j].Start
	})

	segments := make([]Segment, 0, len(ordered)*2+1)
	last := 0
	for _, m := range ordered {
		if m.Start < last || m.End > len(content) || m.End < m.Start {
			continue
		}
		if m.Start > last {
			segments = append(segments, Segment{Text: content[last:m.Start]})
		}
		segments = append(segments, Segment{
			Text:        content[m.Start:m.End],
			Highlighted: true,
			Current:     m.GlobalIndex == current,
			GlobalIndex: m.GlobalIndex,
		})
		last = m.End
	}
	if last < len(content) {
		segments = append(segments, Segment{Text: content[last:]})
	}
	return segments
}

// Plain joins the segment text back into the original line
func Plain(segments []Segment) string {
	n := 0
	for _, s := range segments {
		n += len(s.Text)
	}
	b := make([]byte, 0, n)
	for _, s := range segments {
		b = append(b, s.Text...)
	}
	return string(b)
}
