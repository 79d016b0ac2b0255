package search

import (
	"strings"

	"github.com/yildizm/runlens/internal/logview"
)

// Session is the state of one log viewing session: raw text, classified
// lines, the level filter, search options and the current match. Each stage
// is recomputed only when one of its inputs changes.
type Session struct {
	raw    string
	loaded bool
	lines  []logview.Line
	filter logview.LevelFilter
	opts   Options

	input string // what the user typed
	term  string // what the matches were computed for

	engine  *Engine
	matches []Match
	byLine  map[int][]Match
	nav     *Navigator
}

// NewSession creates an empty session
func NewSession(filter logview.LevelFilter, opts Options) *Session {
	return &Session{
		filter: filter,
		opts:   opts,
		engine: NewEngine(),
		byLine: map[int][]Match{},
		nav:    NewNavigator(),
	}
}

// SetText replaces the raw log text. Lines are reclassified only when the
// text actually changed.
func (s *Session) SetText(raw string) bool {
	if s.loaded && raw == s.raw {
		return false
	}
	s.raw = raw
	s.loaded = true
	s.lines = logview.ApplyVisibility(logview.Classify(raw), s.filter)
	s.engine.Invalidate()
	s.refresh()
	return true
}

// SetFilter changes the visible levels without reclassifying
func (s *Session) SetFilter(f logview.LevelFilter) bool {
	if f == s.filter {
		return false
	}
	s.filter = f
	logview.ApplyVisibility(s.lines, f)
	s.engine.Invalidate()
	s.refresh()
	return true
}

// ToggleLevel flips one level in the filter
func (s *Session) ToggleLevel(l logview.Level) {
	s.SetFilter(s.filter.Toggle(l))
}

// SetOptions changes case sensitivity or whole-word matching
func (s *Session) SetOptions(opts Options) bool {
	if opts == s.opts {
		return false
	}
	s.opts = opts
	s.engine.Invalidate()
	s.refresh()
	return true
}

// SetInput records the raw search box value. Clearing the box resets the
// matches immediately; otherwise it reports whether Commit is needed once the
// input has settled.
func (s *Session) SetInput(value string) bool {
	s.input = value
	if strings.TrimSpace(value) == "" {
		s.term = ""
		s.matches = nil
		s.byLine = map[int][]Match{}
		s.nav.Reset()
		return false
	}
	return value != s.term
}

// Commit makes the current input the effective search term
func (s *Session) Commit() {
	if s.input == s.term {
		return
	}
	s.term = s.input
	s.nav.Reset()
	s.refresh()
}

// Search sets and commits a term in one step
func (s *Session) Search(term string) {
	if s.SetInput(term) {
		s.Commit()
	}
}

func (s *Session) refresh() {
	s.matches = s.engine.Search(s.lines, s.term, s.opts)
	s.byLine = ByLine(s.matches)
	s.nav.SetTotal(len(s.matches))
}

// Lines returns every classified line, visible or not
func (s *Session) Lines() []logview.Line { return s.lines }

// Filter returns the active level filter
func (s *Session) Filter() logview.LevelFilter { return s.filter }

// Options returns the search options
func (s *Session) Options() Options { return s.opts }

// Input returns the displayed search text
func (s *Session) Input() string { return s.input }

// Term returns the effective search term
func (s *Session) Term() string { return s.term }

// Pending reports whether the input has not been committed yet
func (s *Session) Pending() bool {
	return strings.TrimSpace(s.input) != "" && s.input != s.term
}

// Matches returns all matches for the effective term
func (s *Session) Matches() []Match { return s.matches }

// MatchesForLine returns the matches on one line, ordered by start
func (s *Session) MatchesForLine(lineIndex int) []Match { return s.byLine[lineIndex] }

// Current returns the selected global match index, or -1
func (s *Session) Current() int { return s.nav.Current() }

// CurrentMatch returns the selected match
func (s *Session) CurrentMatch() (Match, bool) {
	i := s.nav.Current()
	if i < 0 || i >= len(s.matches) {
		return Match{}, false
	}
	return s.matches[i], true
}

// Next selects the following match
func (s *Session) Next() int { return s.nav.Next() }

// Prev selects the preceding match
func (s *Session) Prev() int { return s.nav.Prev() }

// Engine exposes the underlying engine for cache statistics
func (s *Session) Engine() *Engine { return s.engine }
