package emoji

import "sync/atomic"

// emojiMap holds [emoji, fallback] pairs
var emojiMap = map[string][2]string{
	"error":      {"❌", "[ERR]"},
	"warning":    {"⚠️", "[WRN]"},
	"info":       {"ℹ️", "[INF]"},
	"debug":      {"🐛", "[DBG]"},
	"trace":      {"🔬", "[TRC]"},
	"success":    {"✅", "[OK]"},
	"search":     {"🔍", "[FIND]"},
	"link":       {"🔗", "[LINK]"},
	"clipboard":  {"📋", "[COPY]"},
	"download":   {"📥", "[GET]"},
	"save":       {"💾", "[SAVE]"},
	"watch":      {"👀", "[WATCH]"},
	"statistics": {"📊", "[STATS]"},
	"state":      {"🧭", "[STATE]"},
	"help":       {"❓", "[?]"},
	"door":       {"🚪", "[EXIT]"},
}

var emojiDisabled atomic.Bool

// SetEmojiDisabled sets the global emoji disabled state
func SetEmojiDisabled(disabled bool) {
	emojiDisabled.Store(disabled)
}

// IsEmojiDisabled returns the current emoji disabled state
func IsEmojiDisabled() bool {
	return emojiDisabled.Load()
}

// GetEmoji returns emoji or fallback based on no-emoji setting
func GetEmoji(key string) string {
	if mapping, exists := emojiMap[key]; exists {
		if emojiDisabled.Load() {
			return mapping[1]
		}
		return mapping[0]
	}
	return "[?]"
}

// ForLevel returns the symbol for a level name such as "ERROR"
func ForLevel(level string) string {
	switch level {
	case "ERROR":
		return GetEmoji("error")
	case "WARN":
		return GetEmoji("warning")
	case "DEBUG":
		return GetEmoji("debug")
	case "TRACE":
		return GetEmoji("trace")
	default:
		return GetEmoji("info")
	}
}
