package logview

import (
	"fmt"
	"strings"
)

// LevelFilter records which levels are shown
type LevelFilter struct {
	enabled [levelCount]bool
}

// AllLevels returns a filter with every level enabled
func AllLevels() LevelFilter {
	var f LevelFilter
	for _, l := range Levels {
		f.enabled[l] = true
	}
	return f
}

// NewLevelFilter returns a filter with only the given levels enabled
func NewLevelFilter(levels ...Level) LevelFilter {
	var f LevelFilter
	for _, l := range levels {
		f = f.With(l, true)
	}
	return f
}

// ParseLevelFilter builds a filter from names such as "error,warn".
// An empty list enables every level.
func ParseLevelFilter(names []string) (LevelFilter, error) {
	if len(names) == 0 {
		return AllLevels(), nil
	}
	var f LevelFilter
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		level, ok := ParseLevelName(name)
		if !ok {
			return f, fmt.Errorf("unknown level %q (must be one of: error, warn, debug, info, trace)", name)
		}
		f = f.With(level, true)
	}
	return f, nil
}

// Enabled reports whether lines of the level are shown
func (f LevelFilter) Enabled(l Level) bool {
	if l < 0 || l >= levelCount {
		return false
	}
	return f.enabled[l]
}

// With returns a copy with the level set to on
func (f LevelFilter) With(l Level, on bool) LevelFilter {
	if l >= 0 && l < levelCount {
		f.enabled[l] = on
	}
	return f
}

// Toggle returns a copy with the level flipped
func (f LevelFilter) Toggle(l Level) LevelFilter {
	return f.With(l, !f.Enabled(l))
}

// None reports whether every level is disabled
func (f LevelFilter) None() bool {
	for _, on := range f.enabled {
		if on {
			return false
		}
	}
	return true
}

// String lists enabled levels, e.g. "ERROR,WARN"
func (f LevelFilter) String() string {
	names := make([]string, 0, levelCount)
	for _, l := range Levels {
		if f.enabled[l] {
			names = append(names, l.String())
		}
	}
	return strings.Join(names, ",")
}

// ApplyVisibility recomputes Visible in place without touching content or
// level. A filter with no enabled level hides every line.
func ApplyVisibility(lines []Line, f LevelFilter) []Line {
	none := f.None()
	for i := range lines {
		lines[i].Visible = !none && f.Enabled(lines[i].Level)
	}
	return lines
}

// Fingerprint summarises line visibility as a bit string
func Fingerprint(lines []Line) string {
	var b strings.Builder
	b.Grow(len(lines))
	for _, line := range lines {
		if line.Visible {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

// Counts returns the number of lines per level
func Counts(lines []Line) map[Level]int {
	counts := make(map[Level]int, levelCount)
	for _, line := range lines {
		counts[line.Level]++
	}
	return counts
}

// VisibleCount returns the number of visible lines
func VisibleCount(lines []Line) int {
	n := 0
	for _, line := range lines {
		if line.Visible {
			n++
		}
	}
	return n
}
