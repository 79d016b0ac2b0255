package logview

import (
	"strings"
	"unicode"
)

// Line is one line of raw log text with its inherited level
type Line struct {
	Content string `json:"content"`
	Level   Level  `json:"level"`
	Number  int    `json:"line_number"` // 1-based
	Visible bool   `json:"visible"`
}

// Classify splits raw text into lines and assigns each a level. Lines without
// an explicit level inherit the last one seen; the first lines default to INFO.
// Every line starts visible.
func Classify(raw string) []Line {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, "\n")
	lines := make([]Line, len(parts))
	c := NewClassifier()
	for i, content := range parts {
		lines[i] = c.Next(content)
	}
	return lines
}

// Classifier assigns levels to lines that arrive one at a time, keeping the
// inherited level and the line number between calls.
type Classifier struct {
	active Level
	number int
}

// NewClassifier starts at line 1 with INFO as the inherited level
func NewClassifier() *Classifier {
	return &Classifier{active: LevelInfo}
}

// Next classifies the following line
func (c *Classifier) Next(content string) Line {
	content = strings.TrimSuffix(content, "\r")
	if level, ok := detectLevel(content); ok {
		c.active = level
	}
	c.number++
	return Line{
		Content: content,
		Level:   c.active,
		Number:  c.number,
		Visible: true,
	}
}

// Active returns the level the next continuation line would inherit
func (c *Classifier) Active() Level {
	return c.active
}

// detectLevel tries the structured "date time LEVEL" layout first and falls
// back to a level prefix on the trimmed line.
func detectLevel(content string) (Level, bool) {
	fields := strings.Fields(content)
	if len(fields) >= 3 && isDateToken(fields[0]) && isTimeToken(fields[1]) {
		if level, ok := ParseLevel(fields[2]); ok {
			return level, true
		}
	}

	trimmed := strings.TrimSpace(content)
	for _, level := range Levels {
		if strings.HasPrefix(trimmed, level.String()) {
			return level, true
		}
	}

	return LevelInfo, false
}

// isDateToken accepts 10-character dates such as 01/02/2024 or 2024-01-02
func isDateToken(tok string) bool {
	if len(tok) != 10 {
		return false
	}
	for _, sep := range []byte{'/', '-'} {
		if tok[2] == sep && tok[5] == sep {
			return true
		}
		if tok[4] == sep && tok[7] == sep {
			return true
		}
	}
	return false
}

// isTimeToken accepts clock values such as 10:00:00 or 10:00:00.123
func isTimeToken(tok string) bool {
	if tok == "" || !unicode.IsDigit(rune(tok[0])) {
		return false
	}
	return strings.Contains(tok, ":")
}
