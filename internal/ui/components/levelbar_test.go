package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestLevelBar(t *testing.T) {
	muted := lipgloss.NewStyle()
	chips := []LevelChip{
		NewLevelChip("1", "ERROR", 3, true),
		NewLevelChip("2", "WARN", 0, false),
		NewLevelChip("3", "DEBUG", 12, true),
	}

	tests := []struct {
		name    string
		width   int
		want    []string
		missing []string
	}{
		{"unlimited", 0, []string{"1 ERROR 3", "2 WARN 0", "3 DEBUG 12"}, nil},
		{"truncated", 12, []string{"1 ERROR 3", "…"}, []string{"DEBUG"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LevelBar(chips, muted, tt.width)
			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("LevelBar() = %q, missing %q", got, want)
				}
			}
			for _, missing := range tt.missing {
				if strings.Contains(got, missing) {
					t.Errorf("LevelBar() = %q, should not contain %q", got, missing)
				}
			}
		})
	}
}
