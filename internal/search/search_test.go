package search

import (
	"regexp"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yildizm/runlens/internal/logview"
)

func linesOf(raw string) []logview.Line {
	return logview.Classify(raw)
}

func TestEngineSearch(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		term  string
		opts  Options
		want  int
		check func(*testing.T, []Match)
	}{
		{
			name: "parentheses are literal",
			text: "INFO call (parentheses) done",
			term: "(parentheses)",
			want: 1,
			check: func(t *testing.T, m []Match) {
				if m[0].Start != 10 || m[0].End != 23 {
					t.Errorf("want span 10-23, got %d-%d", m[0].Start, m[0].End)
				}
			},
		},
		{
			name: "dollar is literal",
			text: "INFO price is $dollar today",
			term: "$dollar",
			want: 1,
		},
		{
			name: "all metacharacters",
			text: `INFO a.*+?^${}()|[]\b`,
			term: `.*+?^${}()|[]\`,
			want: 1,
		},
		{
			name: "case insensitive by default",
			text: "ERROR Timeout\nINFO timeout again",
			term: "TIMEOUT",
			want: 2,
		},
		{
			name: "match case",
			text: "ERROR Timeout\nINFO timeout again",
			term: "timeout",
			opts: Options{MatchCase: true},
			want: 1,
			check: func(t *testing.T, m []Match) {
				if m[0].LineIndex != 1 {
					t.Errorf("want match on line index 1, got %d", m[0].LineIndex)
				}
			},
		},
		{
			name: "whole word",
			text: "INFO cat concat cat,dog scatter",
			term: "cat",
			opts: Options{WholeWord: true},
			want: 2,
		},
		{
			name: "whole word term starting with punctuation",
			text: "INFO a.b.b",
			term: ".b",
			opts: Options{WholeWord: true},
			want: 2,
			check: func(t *testing.T, m []Match) {
				if m[0].Start != 6 || m[1].Start != 8 {
					t.Errorf("want matches at 6 and 8, got %d and %d", m[0].Start, m[1].Start)
				}
			},
		},
		{
			name: "several matches on one line",
			text: "INFO aaaa",
			term: "aa",
			want: 2,
			check: func(t *testing.T, m []Match) {
				if m[1].Start != 7 {
					t.Errorf("matches must not overlap, second starts at %d", m[1].Start)
				}
			},
		},
		{
			name: "whitespace term",
			text: "INFO anything",
			term: "   ",
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine()
			matches := e.Search(linesOf(tt.text), tt.term, tt.opts)
			if len(matches) != tt.want {
				t.Fatalf("want %d matches, got %d", tt.want, len(matches))
			}
			for i, m := range matches {
				if m.GlobalIndex != i {
					t.Errorf("match %d has global index %d", i, m.GlobalIndex)
				}
			}
			if tt.check != nil {
				tt.check(t, matches)
			}
		})
	}
}

func TestEngineSkipsHiddenLines(t *testing.T) {
	lines := logview.ApplyVisibility(
		linesOf("ERROR disk\nINFO disk\nWARN disk\ncontinued disk"),
		logview.NewLevelFilter(logview.LevelError, logview.LevelWarn),
	)

	matches := NewEngine().Search(lines, "disk", Options{})
	if len(matches) != 3 {
		t.Fatalf("want 3 matches, got %d", len(matches))
	}

	wantLines := []int{0, 2, 3}
	for i, m := range matches {
		if m.LineIndex != wantLines[i] {
			t.Errorf("match %d: want line index %d, got %d", i, wantLines[i], m.LineIndex)
		}
		if m.GlobalIndex != i {
			t.Errorf("match %d: want global index %d, got %d", i, i, m.GlobalIndex)
		}
	}
}

func TestScanZeroWidth(t *testing.T) {
	done := make(chan []Match, 1)
	go func() {
		done <- Scan(linesOf("INFO abc"), regexp.MustCompile("x*"))
	}()

	select {
	case matches := <-done:
		// one empty match at every position, including the end
		if len(matches) != len("INFO abc")+1 {
			t.Errorf("want %d empty matches, got %d", len("INFO abc")+1, len(matches))
		}
		for _, m := range matches {
			if m.Start != m.End {
				t.Errorf("want zero-length match, got %d-%d", m.Start, m.End)
			}
		}
	case <-time.After(2 * time.Second):
		t.Fatal("scan did not terminate on a zero-width pattern")
	}
}

func TestScanZeroWidthMultibyte(t *testing.T) {
	matches := Scan(linesOf("INFO é"), regexp.MustCompile("x*"))
	// "INFO " is five bytes, é is two bytes but one position
	if len(matches) != 7 {
		t.Errorf("want 7 empty matches, got %d", len(matches))
	}
}

func TestEngineCache(t *testing.T) {
	e := NewEngine()
	lines := linesOf("ERROR failed\nINFO failed again\nDEBUG ok")

	first := e.Search(lines, "failed", Options{})
	if e.CompileCount() != 1 {
		t.Fatalf("want 1 compile, got %d", e.CompileCount())
	}

	second := e.Search(lines, "failed", Options{})
	if e.CompileCount() != 1 {
		t.Errorf("identical search recompiled: %d compiles", e.CompileCount())
	}
	if len(first) != len(second) {
		t.Fatalf("cached result differs: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("cached match %d differs", i)
		}
	}

	e.Search(lines, "ok", Options{})
	if e.CacheSize() != 2 {
		t.Errorf("new term should append to cache, size %d", e.CacheSize())
	}

	e.Search(lines, "failed", Options{MatchCase: true})
	if e.CacheSize() != 1 {
		t.Errorf("option change should clear cache, size %d", e.CacheSize())
	}

	logview.ApplyVisibility(lines, logview.NewLevelFilter(logview.LevelError))
	got := e.Search(lines, "failed", Options{MatchCase: true})
	if len(got) != 1 {
		t.Errorf("want 1 match after filter change, got %d", len(got))
	}
	if e.CompileCount() != 4 {
		t.Errorf("filter change should miss the cache, compiles %d", e.CompileCount())
	}

	e.Search(lines, "  ", Options{MatchCase: true})
	if e.CacheSize() != 1 {
		t.Errorf("empty term must not be cached, size %d", e.CacheSize())
	}
}

func TestBuildPattern(t *testing.T) {
	tests := []struct {
		term string
		opts Options
		want string
	}{
		{"a.b", Options{MatchCase: true}, `a\.b`},
		{"a.b", Options{}, `(?i)a\.b`},
		{"word", Options{MatchCase: true, WholeWord: true}, `\bword\b`},
	}
	for _, tt := range tests {
		if got := BuildPattern(tt.term, tt.opts); got != tt.want {
			t.Errorf("BuildPattern(%q, %+v) = %q, want %q", tt.term, tt.opts, got, tt.want)
		}
	}
}

func TestNavigator(t *testing.T) {
	n := NewNavigator()
	if n.Current() != -1 {
		t.Fatalf("want -1 initially, got %d", n.Current())
	}
	if n.Next() != -1 {
		t.Errorf("Next with no matches should stay -1")
	}

	n.SetTotal(3)
	if n.Current() != 0 {
		t.Errorf("want first match selected, got %d", n.Current())
	}
	n.Next()
	n.Next()
	if n.Next() != 0 {
		t.Errorf("Next should wrap to 0")
	}
	if n.Prev() != 2 {
		t.Errorf("Prev should wrap to 2")
	}

	n.SetTotal(2)
	if n.Current() != 1 {
		t.Errorf("want clamp to 1, got %d", n.Current())
	}

	n.SetTotal(0)
	if n.Current() != -1 {
		t.Errorf("want -1 with zero matches, got %d", n.Current())
	}
}

func TestSessionPipeline(t *testing.T) {
	s := NewSession(logview.AllLevels(), Options{})
	s.SetText("ERROR db down\nretrying db\nINFO db up")

	s.Search("db")
	if len(s.Matches()) != 3 {
		t.Fatalf("want 3 matches, got %d", len(s.Matches()))
	}
	s.Next()
	s.Next()
	if s.Current() != 2 {
		t.Fatalf("want current 2, got %d", s.Current())
	}

	s.ToggleLevel(logview.LevelInfo)
	if len(s.Matches()) != 2 {
		t.Errorf("want 2 matches with INFO hidden, got %d", len(s.Matches()))
	}
	if s.Current() != 1 {
		t.Errorf("want current clamped to 1, got %d", s.Current())
	}
	if got := s.MatchesForLine(1); len(got) != 1 {
		t.Errorf("want 1 match on continuation line, got %d", len(got))
	}

	compiles := s.Engine().CompileCount()
	if s.SetText("ERROR db down\nretrying db\nINFO db up") {
		t.Errorf("identical text should not reclassify")
	}
	if s.Engine().CompileCount() != compiles {
		t.Errorf("identical text should not search again")
	}

	s.SetFilter(logview.LevelFilter{})
	if len(s.Matches()) != 0 || s.Current() != -1 {
		t.Errorf("empty filter should leave no matches, got %d (current %d)", len(s.Matches()), s.Current())
	}
}

func TestSessionClearInputResetsImmediately(t *testing.T) {
	s := NewSession(logview.AllLevels(), Options{})
	s.SetText("INFO alpha beta")
	s.Search("alpha")
	if len(s.Matches()) != 1 {
		t.Fatalf("want 1 match, got %d", len(s.Matches()))
	}

	if s.SetInput("") {
		t.Errorf("clearing input should not need a commit")
	}
	if len(s.Matches()) != 0 || s.Current() != -1 || s.Term() != "" {
		t.Errorf("clearing input should reset matches at once")
	}
}

func TestSessionDebouncedSearch(t *testing.T) {
	s := NewSession(logview.AllLevels(), Options{})
	s.SetText("INFO nothing to see\nERROR still nothing")

	committed := make(chan struct{}, 1)
	d := NewDebouncer(30 * time.Millisecond)
	defer d.Stop()

	for _, typed := range []string{"X", "XY", "XYZ"} {
		if s.SetInput(typed) {
			d.Trigger(func() { committed <- struct{}{} })
		}
	}

	if s.Term() != "" || !s.Pending() {
		t.Fatalf("term should not update before the quiet period")
	}
	if s.Input() != "XYZ" {
		t.Errorf("display term should update immediately, got %q", s.Input())
	}

	select {
	case <-committed:
	case <-time.After(2 * time.Second):
		t.Fatal("debounced commit never fired")
	}
	s.Commit()

	if s.Term() != "XYZ" {
		t.Errorf("want term XYZ, got %q", s.Term())
	}
	if len(s.Matches()) != 0 || s.Current() != -1 {
		t.Errorf("want no matches for XYZ")
	}
}

func TestDebouncer(t *testing.T) {
	t.Run("only last trigger runs", func(t *testing.T) {
		var calls atomic.Int32
		var last atomic.Int32
		d := NewDebouncer(20 * time.Millisecond)
		defer d.Stop()

		for i := 1; i <= 5; i++ {
			d.Trigger(func() {
				calls.Add(1)
				last.Store(int32(i))
			})
		}

		time.Sleep(150 * time.Millisecond)
		if calls.Load() != 1 {
			t.Errorf("want 1 call, got %d", calls.Load())
		}
		if last.Load() != 5 {
			t.Errorf("want last trigger to win, got %d", last.Load())
		}
	})

	t.Run("stop cancels pending call", func(t *testing.T) {
		var calls atomic.Int32
		d := NewDebouncer(20 * time.Millisecond)
		d.Trigger(func() { calls.Add(1) })
		d.Stop()
		d.Trigger(func() { calls.Add(1) })

		time.Sleep(100 * time.Millisecond)
		if calls.Load() != 0 {
			t.Errorf("want no calls after Stop, got %d", calls.Load())
		}
	})

	t.Run("default delay", func(t *testing.T) {
		if d := NewDebouncer(0); d.Delay() != DefaultDebounceDelay {
			t.Errorf("want default delay, got %v", d.Delay())
		}
	})
}
