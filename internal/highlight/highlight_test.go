package highlight

import (
	"testing"

	"github.com/yildizm/runlens/internal/search"
)

func TestRenderLine(t *testing.T) {
	content := "connect failed, retry failed"

	tests := []struct {
		name    string
		matches []search.Match
		current int
		want    []Segment
	}{
		{
			name:    "no matches",
			current: -1,
			want:    []Segment{{Text: content}},
		},
		{
			name: "two matches with current second",
			matches: []search.Match{
				{Start: 8, End: 14, GlobalIndex: 3},
				{Start: 22, End: 28, GlobalIndex: 4},
			},
			current: 4,
			want: []Segment{
				{Text: "connect "},
				{Text: "failed", Highlighted: true, GlobalIndex: 3},
				{Text: ", retry "},
				{Text: "failed", Highlighted: true, Current: true, GlobalIndex: 4},
			},
		},
		{
			name: "unsorted input and match at start",
			matches: []search.Match{
				{Start: 8, End: 14, GlobalIndex: 1},
				{Start: 0, End: 7, GlobalIndex: 0},
			},
			current: 0,
			want: []Segment{
				{Text: "connect", Highlighted: true, Current: true, GlobalIndex: 0},
				{Text: " "},
				{Text: "failed", Highlighted: true, GlobalIndex: 1},
				{Text: ", retry failed"},
			},
		},
		{
			name: "out of range match ignored",
			matches: []search.Match{
				{Start: 20, End: 99, GlobalIndex: 0},
			},
			current: -1,
			want:    []Segment{{Text: content}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RenderLine(content, tt.matches, tt.current)
			if len(got) != len(tt.want) {
				t.Fatalf("want %d segments, got %d: %+v", len(tt.want), len(got), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("segment %d: want %+v, got %+v", i, tt.want[i], got[i])
				}
			}
			if Plain(got) != content {
				t.Errorf("segments do not reassemble the line: %q", Plain(got))
			}
		})
	}
}

func TestMarkerStyles(t *testing.T) {
	segments := RenderLine("a b a", []search.Match{
		{Start: 0, End: 1, GlobalIndex: 0},
		{Start: 4, End: 5, GlobalIndex: 1},
	}, 1)

	if got := (MarkerStyles{}).Render(segments); got != "[a] b >>a<<" {
		t.Errorf("want [a] b >>a<<, got %s", got)
	}
}
