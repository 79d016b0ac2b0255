package search

import (
	"regexp"
	"strings"

	"github.com/yildizm/runlens/internal/logview"
)

// Options controls how a term is turned into a pattern
type Options struct {
	MatchCase bool `json:"match_case" yaml:"match_case"`
	WholeWord bool `json:"whole_word" yaml:"whole_word"`
}

// Match is one occurrence of the term in a visible line
type Match struct {
	LineIndex   int `json:"line_index"` // index into the unfiltered line slice
	Start       int `json:"start"`      // byte offset within the line content
	End         int `json:"end"`
	GlobalIndex int `json:"global_index"`
}

type cacheKey struct {
	term        string
	opts        Options
	fingerprint string
}

// Engine runs literal searches over classified lines and caches the results.
// The cache is dropped as a whole when the visibility fingerprint or the
// option flags differ from the previous search.
type Engine struct {
	cache           map[cacheKey][]Match
	lastFingerprint string
	lastOpts        Options
	compiles        int
}

// NewEngine creates a new search engine
func NewEngine() *Engine {
	return &Engine{cache: make(map[cacheKey][]Match)}
}

// Search returns every match of term in the visible lines. Whitespace-only
// terms yield nil and are never cached.
func (e *Engine) Search(lines []logview.Line, term string, opts Options) []Match {
	if strings.TrimSpace(term) == "" {
		return nil
	}

	fingerprint := logview.Fingerprint(lines)
	if fingerprint != e.lastFingerprint || opts != e.lastOpts {
		e.Invalidate()
		e.lastFingerprint = fingerprint
		e.lastOpts = opts
	}

	key := cacheKey{term: term, opts: opts, fingerprint: fingerprint}
	if cached, ok := e.cache[key]; ok {
		return cached
	}

	matches := e.run(lines, term, opts)
	e.cache[key] = matches
	return matches
}

// Invalidate clears every cached result
func (e *Engine) Invalidate() {
	e.cache = make(map[cacheKey][]Match)
}

// CompileCount reports how many times a pattern was compiled, i.e. how many
// searches missed the cache.
func (e *Engine) CompileCount() int {
	return e.compiles
}

// CacheSize returns the number of cached searches
func (e *Engine) CacheSize() int {
	return len(e.cache)
}

func (e *Engine) run(lines []logview.Line, term string, opts Options) []Match {
	e.compiles++
	re, err := regexp.Compile(BuildPattern(term, opts))
	if err != nil {
		return nil
	}
	return Scan(lines, re)
}

// BuildPattern escapes term and applies the whole-word and case options
func BuildPattern(term string, opts Options) string {
	pattern := regexp.QuoteMeta(term)
	if opts.WholeWord {
		pattern = `\b` + pattern + `\b`
	}
	if !opts.MatchCase {
		pattern = "(?i)" + pattern
	}
	return pattern
}

// Scan collects non-overlapping matches of re in visible lines, in document
// order. A zero-length match advances the cursor by one rune. A panic inside
// the regexp package degrades to no matches.
func Scan(lines []logview.Line, re *regexp.Regexp) (matches []Match) {
	defer func() {
		if r := recover(); r != nil {
			matches = nil
		}
	}()

	global := 0
	for i, line := range lines {
		if !line.Visible {
			continue
		}
		// the whole line is matched at once so \b sees the text before a match
		for _, loc := range re.FindAllStringIndex(line.Content, -1) {
			matches = append(matches, Match{
				LineIndex:   i,
				Start:       loc[0],
				End:         loc[1],
				GlobalIndex: global,
			})
			global++
		}
	}
	return matches
}

// ByLine groups matches by line index
func ByLine(matches []Match) map[int][]Match {
	grouped := make(map[int][]Match)
	for _, m := range matches {
		grouped[m.LineIndex] = append(grouped[m.LineIndex], m)
	}
	return grouped
}
