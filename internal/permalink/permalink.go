package permalink

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	hashPrefix     = "log-"
	lineHashPrefix = "log-line-"
)

var (
	// ErrMalformed is returned when a hash is not of the form #log-a-b-c-d
	ErrMalformed = errors.New("malformed log permalink")

	// ErrNoSelection is returned when copying without an active selection
	ErrNoSelection = errors.New("no text selected")
)

// Position is a point in the rendered log: a 1-based line number and a rune
// offset within that line.
type Position struct {
	Line   int `json:"line"`
	Offset int `json:"offset"`
}

// Range is a selection normalised so that start comes before end
type Range struct {
	StartLine   int `json:"start_line"`
	StartOffset int `json:"start_offset"`
	EndLine     int `json:"end_line"`
	EndOffset   int `json:"end_offset"`
}

// Before reports whether p comes before o in document order
func (p Position) Before(o Position) bool {
	if p.Line != o.Line {
		return p.Line < o.Line
	}
	return p.Offset < o.Offset
}

// Capture turns an anchor and focus into a range regardless of drag
// direction. A collapsed selection returns false.
func Capture(anchor, focus Position) (Range, bool) {
	if anchor == focus {
		return Range{}, false
	}
	start, end := anchor, focus
	if focus.Before(anchor) {
		start, end = focus, anchor
	}
	return Range{
		StartLine:   start.Line,
		StartOffset: start.Offset,
		EndLine:     end.Line,
		EndOffset:   end.Offset,
	}, true
}

// Start returns the first position of the range
func (r Range) Start() Position { return Position{Line: r.StartLine, Offset: r.StartOffset} }

// End returns the last position of the range
func (r Range) End() Position { return Position{Line: r.EndLine, Offset: r.EndOffset} }

// Hash renders the range as #log-a-b-c-d
func (r Range) Hash() string {
	return fmt.Sprintf("#%s%d-%d-%d-%d", hashPrefix, r.StartLine, r.StartOffset, r.EndLine, r.EndOffset)
}

// Build appends the range hash to pageURL, replacing any existing fragment
func Build(pageURL string, r Range) (string, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("invalid page URL: %w", err)
	}
	u.Fragment = ""
	u.RawFragment = ""
	return u.String() + r.Hash(), nil
}

// Decode parses #log-a-b-c-d. The leading # is optional.
func Decode(hash string) (Range, error) {
	rest, ok := strings.CutPrefix(strings.TrimPrefix(hash, "#"), hashPrefix)
	if !ok {
		return Range{}, ErrMalformed
	}
	parts := strings.Split(rest, "-")
	if len(parts) != 4 {
		return Range{}, ErrMalformed
	}

	var values [4]int
	for i, part := range parts {
		n, ok := parseNumber(part)
		if !ok {
			return Range{}, ErrMalformed
		}
		values[i] = n
	}

	return Range{
		StartLine:   values[0],
		StartOffset: values[1],
		EndLine:     values[2],
		EndOffset:   values[3],
	}, nil
}

// Parse is Decode for callers that ignore malformed hashes
func Parse(hash string) (Range, bool) {
	r, err := Decode(hash)
	return r, err == nil
}

// ParseLine parses the scroll-only form #log-line-n
func ParseLine(hash string) (int, bool) {
	rest, ok := strings.CutPrefix(strings.TrimPrefix(hash, "#"), lineHashPrefix)
	if !ok {
		return 0, false
	}
	n, ok := parseNumber(rest)
	if !ok || n < 1 {
		return 0, false
	}
	return n, true
}

// LineHash renders the scroll-only form for line n
func LineHash(n int) string {
	return fmt.Sprintf("#%s%d", lineHashPrefix, n)
}

// SplitURL separates a full URL into the page part and its #fragment.
// A bare fragment returns an empty page.
func SplitURL(raw string) (page, hash string) {
	if i := strings.IndexByte(raw, '#'); i >= 0 {
		return raw[:i], raw[i:]
	}
	return raw, ""
}

// LineText returns the rendered text of a 1-based line, or false when the
// line is not currently rendered (for example filtered out).
type LineText func(line int) (string, bool)

// Restore validates a decoded range against the rendered lines and clamps
// both offsets to the length of their line. It returns false, and the caller
// does nothing, when either line is not rendered.
func Restore(r Range, text LineText) (Range, bool) {
	startText, ok := text(r.StartLine)
	if !ok {
		return Range{}, false
	}
	endText, ok := text(r.EndLine)
	if !ok {
		return Range{}, false
	}

	r.StartOffset = clamp(r.StartOffset, utf8.RuneCountInString(startText))
	r.EndOffset = clamp(r.EndOffset, utf8.RuneCountInString(endText))

	if r.End().Before(r.Start()) {
		r = Range{
			StartLine:   r.EndLine,
			StartOffset: r.EndOffset,
			EndLine:     r.StartLine,
			EndOffset:   r.StartOffset,
		}
	}
	return r, true
}

// Extract returns the selected text, lines joined with newlines
func Extract(r Range, text LineText) (string, bool) {
	r, ok := Restore(r, text)
	if !ok {
		return "", false
	}

	var b strings.Builder
	for line := r.StartLine; line <= r.EndLine; line++ {
		content, ok := text(line)
		if !ok {
			continue
		}
		runes := []rune(content)
		from, to := 0, len(runes)
		if line == r.StartLine {
			from = r.StartOffset
		}
		if line == r.EndLine {
			to = r.EndOffset
		}
		if line > r.StartLine {
			b.WriteByte('\n')
		}
		if from < to {
			b.WriteString(string(runes[from:to]))
		}
	}
	return b.String(), true
}

func clamp(offset, length int) int {
	if offset > length {
		return length
	}
	if offset < 0 {
		return 0
	}
	return offset
}

func parseNumber(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
