package logview

import (
	"strings"
	"testing"
)

const sampleLog = `2024-01-01 10:00:00 INFO Starting application
2024-01-01 10:00:01 DEBUG Loading configuration
2024-01-01 10:00:02 WARN Cache directory missing
2024-01-01 10:00:03 ERROR Failed to connect to database
java.sql.SQLException: connection refused
    at com.example.Db.connect(Db.java:42)
2024-01-01 10:00:04 TRACE Retrying connection
2024-01-01 10:00:05 INFO Connected`

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Level
	}{
		{
			name:  "slash date with fractional time",
			input: "01/02/2024 10:00:00.123 ERROR boom\nstack line",
			want:  []Level{LevelError, LevelError},
		},
		{
			name:  "prefix fallback",
			input: "WARN disk almost full\n  details\nDEBUG probe",
			want:  []Level{LevelWarn, LevelWarn, LevelDebug},
		},
		{
			name:  "defaults to info before any level",
			input: "plain text\nmore text\nERROR now",
			want:  []Level{LevelInfo, LevelInfo, LevelError},
		},
		{
			name:  "third token must match exactly",
			input: "01/02/2024 10:00:00.123 error lower case\nTRACE explicit",
			want:  []Level{LevelInfo, LevelTrace},
		},
		{
			name:  "WARNING prefix counts as WARN",
			input: "WARNING: deprecated flag",
			want:  []Level{LevelWarn},
		},
		{
			name:  "empty lines inherit",
			input: "ERROR first\n\nINFO after",
			want:  []Level{LevelError, LevelError, LevelInfo},
		},
		{
			name:  "crlf line endings",
			input: "ERROR a\r\ncontinued\r\n",
			want:  []Level{LevelError, LevelError, LevelError},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := Classify(tt.input)
			if len(lines) != len(tt.want) {
				t.Fatalf("want %d lines, got %d", len(tt.want), len(lines))
			}
			for i, line := range lines {
				if line.Level != tt.want[i] {
					t.Errorf("line %d: want %s, got %s", i+1, tt.want[i], line.Level)
				}
				if line.Number != i+1 {
					t.Errorf("line %d: want number %d, got %d", i+1, i+1, line.Number)
				}
				if strings.HasSuffix(line.Content, "\r") {
					t.Errorf("line %d: carriage return not stripped", i+1)
				}
				if !line.Visible {
					t.Errorf("line %d: want visible by default", i+1)
				}
			}
		})
	}
}

func TestClassifyEmpty(t *testing.T) {
	if lines := Classify(""); lines != nil {
		t.Errorf("want no lines for empty input, got %d", len(lines))
	}
}

func TestClassifyInheritance(t *testing.T) {
	lines := Classify(sampleLog)
	if len(lines) != 8 {
		t.Fatalf("want 8 lines, got %d", len(lines))
	}

	for i := 3; i <= 5; i++ {
		if lines[i].Level != LevelError {
			t.Errorf("line %d: want ERROR, got %s", i+1, lines[i].Level)
		}
	}
	if lines[6].Level != LevelTrace {
		t.Errorf("line 7: want TRACE, got %s", lines[6].Level)
	}
}

func TestClassifierMatchesClassify(t *testing.T) {
	want := Classify(sampleLog)

	c := NewClassifier()
	for i, content := range strings.Split(sampleLog, "\n") {
		got := c.Next(content)
		if got != want[i] {
			t.Errorf("line %d: want %+v, got %+v", i+1, want[i], got)
		}
	}
}

func TestClassifierKeepsLevelBetweenChunks(t *testing.T) {
	c := NewClassifier()
	for _, content := range strings.Split("INFO start\nERROR boom", "\n") {
		c.Next(content)
	}
	if c.Active() != LevelError {
		t.Fatalf("want ERROR carried over, got %s", c.Active())
	}

	line := c.Next("  continuation from a later write")
	if line.Level != LevelError || line.Number != 3 {
		t.Errorf("want ERROR on line 3, got %s on line %d", line.Level, line.Number)
	}
}

func TestApplyVisibility(t *testing.T) {
	t.Run("only errors", func(t *testing.T) {
		lines := ApplyVisibility(Classify(sampleLog), NewLevelFilter(LevelError))

		var visible []int
		for _, line := range lines {
			if line.Visible {
				visible = append(visible, line.Number)
			}
		}
		want := []int{4, 5, 6}
		if len(visible) != len(want) {
			t.Fatalf("want visible lines %v, got %v", want, visible)
		}
		for i := range want {
			if visible[i] != want[i] {
				t.Errorf("want visible lines %v, got %v", want, visible)
				break
			}
		}
	})

	t.Run("no levels hides everything", func(t *testing.T) {
		lines := ApplyVisibility(Classify(sampleLog), LevelFilter{})
		if n := VisibleCount(lines); n != 0 {
			t.Errorf("want 0 visible lines, got %d", n)
		}
	})

	t.Run("all levels shows everything", func(t *testing.T) {
		lines := ApplyVisibility(Classify(sampleLog), AllLevels())
		if n := VisibleCount(lines); n != 8 {
			t.Errorf("want 8 visible lines, got %d", n)
		}
	})

	t.Run("content untouched", func(t *testing.T) {
		lines := Classify(sampleLog)
		before := lines[4]
		ApplyVisibility(lines, NewLevelFilter(LevelInfo))
		if lines[4].Content != before.Content || lines[4].Level != before.Level {
			t.Errorf("visibility change altered content or level")
		}
	})
}

func TestLevelFilter(t *testing.T) {
	f := AllLevels().Toggle(LevelDebug).Toggle(LevelTrace)
	if f.Enabled(LevelDebug) || f.Enabled(LevelTrace) {
		t.Errorf("toggled levels should be disabled")
	}
	if got := f.String(); got != "ERROR,WARN,INFO" {
		t.Errorf("want ERROR,WARN,INFO, got %s", got)
	}
	if f.None() {
		t.Errorf("filter with levels reported none")
	}

	parsed, err := ParseLevelFilter([]string{"error", " warning "})
	if err != nil {
		t.Fatalf("ParseLevelFilter() error = %v", err)
	}
	if parsed.String() != "ERROR,WARN" {
		t.Errorf("want ERROR,WARN, got %s", parsed.String())
	}

	if _, err := ParseLevelFilter([]string{"fatal"}); err == nil {
		t.Errorf("want error for unknown level")
	}
}

func TestFingerprint(t *testing.T) {
	lines := ApplyVisibility(Classify("ERROR a\nINFO b\ncontinued"), NewLevelFilter(LevelInfo))
	if got := Fingerprint(lines); got != "011" {
		t.Errorf("want 011, got %s", got)
	}
}

func TestCounts(t *testing.T) {
	counts := Counts(Classify(sampleLog))
	want := map[Level]int{LevelInfo: 2, LevelDebug: 1, LevelWarn: 1, LevelError: 3, LevelTrace: 1}
	for level, n := range want {
		if counts[level] != n {
			t.Errorf("%s: want %d, got %d", level, n, counts[level])
		}
	}
}

func TestNormalizePlainTextUnchanged(t *testing.T) {
	if got := Normalize(sampleLog); got != sampleLog {
		t.Errorf("plain text should be returned unchanged")
	}
}

func TestNormalizeKeepsLinePositions(t *testing.T) {
	raw := `{"level":"info","msg":"one","time":"2024-01-01T10:00:00Z"}` + "\n\n" +
		`{"level":"error","msg":"two","time":"2024-01-01T10:00:01Z"}`

	got := strings.Split(Normalize(raw), "\n")
	if len(got) != 3 {
		t.Fatalf("want 3 lines, got %d: %q", len(got), got)
	}
	if got[1] != "" {
		t.Errorf("blank line should stay blank, got %q", got[1])
	}

	lines := Classify(strings.Join(got, "\n"))
	if lines[2].Number != 3 || lines[2].Level != LevelError {
		t.Errorf("want line 3 at ERROR, got %d at %s", lines[2].Number, lines[2].Level)
	}
	if !strings.HasSuffix(lines[2].Content, "ERROR two") {
		t.Errorf("unexpected content %q", lines[2].Content)
	}
}

func TestNormalizeLevel(t *testing.T) {
	tests := map[string]Level{
		"fatal":   LevelError,
		"warning": LevelWarn,
		"debug":   LevelDebug,
		"trace":   LevelTrace,
		"notice":  LevelInfo,
	}
	for in, want := range tests {
		if got := normalizeLevel(in); got != want {
			t.Errorf("normalizeLevel(%q) = %s, want %s", in, got, want)
		}
	}
}
