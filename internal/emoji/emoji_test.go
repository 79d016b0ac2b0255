package emoji

import "testing"

func TestGetEmoji(t *testing.T) {
	defer SetEmojiDisabled(false)

	tests := []struct {
		key      string
		disabled bool
		want     string
	}{
		{"error", false, "❌"},
		{"error", true, "[ERR]"},
		{"link", true, "[LINK]"},
		{"unknown", false, "[?]"},
	}
	for _, tt := range tests {
		SetEmojiDisabled(tt.disabled)
		if got := GetEmoji(tt.key); got != tt.want {
			t.Errorf("GetEmoji(%q) disabled=%v = %q, want %q", tt.key, tt.disabled, got, tt.want)
		}
	}
}

func TestForLevel(t *testing.T) {
	SetEmojiDisabled(true)
	defer SetEmojiDisabled(false)

	for level, want := range map[string]string{
		"ERROR": "[ERR]",
		"WARN":  "[WRN]",
		"DEBUG": "[DBG]",
		"INFO":  "[INF]",
		"TRACE": "[TRC]",
	} {
		if got := ForLevel(level); got != want {
			t.Errorf("ForLevel(%s) = %q, want %q", level, got, want)
		}
	}
}
