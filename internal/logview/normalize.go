package logview

import (
	"strings"

	"github.com/yildizm/go-logparser"
)

// normalizedLayout keeps the structured detection path in Classify happy:
// a 10-character date, a clock token, then the level.
const normalizedLayout = "01/02/2006 15:04:05.000"

// Normalize rewrites structured artifacts (JSON lines or logfmt) into plain
// "date time LEVEL message" lines so that every line carries an explicit
// level. Plain text, and anything the parser cannot fully account for, is
// returned unchanged.
func Normalize(raw string) string {
	format, ok := detectStructured(raw)
	if !ok {
		return raw
	}

	p := logparser.NewWithFormat(format)
	entries, err := p.ParseString(raw)
	if err != nil || len(entries) == 0 {
		return raw
	}
	if len(entries) != countNonEmpty(raw) {
		// a partial parse cannot be mapped back onto source lines
		return raw
	}

	// one output line per source line; blank lines keep their position
	sourceLines := strings.Split(raw, "\n")
	out := make([]string, len(sourceLines))
	next := 0
	for i, line := range sourceLines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		entry := entries[next]
		next++
		out[i] = entry.Timestamp.Format(normalizedLayout) + " " +
			normalizeLevel(entry.Level).String() + " " + entry.Message
	}
	return strings.Join(out, "\n")
}

func detectStructured(raw string) (logparser.Format, bool) {
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, "{") && strings.HasSuffix(line, "}"):
			return logparser.FormatJSON, true
		case strings.Contains(line, "level=") && strings.Contains(line, "msg="):
			return logparser.FormatLogfmt, true
		default:
			return logparser.FormatText, false
		}
	}
	return logparser.FormatText, false
}

func normalizeLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ERROR", "ERR", "FATAL", "CRITICAL", "PANIC":
		return LevelError
	case "WARN", "WARNING":
		return LevelWarn
	case "DEBUG":
		return LevelDebug
	case "TRACE":
		return LevelTrace
	default:
		return LevelInfo
	}
}

func countNonEmpty(raw string) int {
	n := 0
	for _, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}
