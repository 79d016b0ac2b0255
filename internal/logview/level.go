package logview

// Level represents the severity of a log line
type Level int

const (
	LevelError Level = iota
	LevelWarn
	LevelDebug
	LevelInfo
	LevelTrace

	levelCount
)

// Levels lists every level in the order prefix detection tries them
var Levels = []Level{LevelError, LevelWarn, LevelDebug, LevelInfo, LevelTrace}

// String methods for Level
func (l Level) String() string {
	switch l {
	case LevelError:
		return "ERROR"
	case LevelWarn:
		return "WARN"
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelTrace:
		return "TRACE"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel matches a token exactly against the level names
func ParseLevel(s string) (Level, bool) {
	for _, l := range Levels {
		if s == l.String() {
			return l, true
		}
	}
	return LevelInfo, false
}

// ParseLevelName is the lenient variant used for flags and config values.
// It accepts lower case and the WARNING alias.
func ParseLevelName(s string) (Level, bool) {
	switch s {
	case "error", "ERROR", "e", "E":
		return LevelError, true
	case "warn", "WARN", "warning", "WARNING", "w", "W":
		return LevelWarn, true
	case "debug", "DEBUG", "d", "D":
		return LevelDebug, true
	case "info", "INFO", "i", "I":
		return LevelInfo, true
	case "trace", "TRACE", "t", "T":
		return LevelTrace, true
	default:
		return LevelInfo, false
	}
}
