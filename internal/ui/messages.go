package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Loader fetches the raw log text shown by the log tab
type Loader func(ctx context.Context) (string, error)

type contentLoadedMsg struct {
	text string
}

type contentErrorMsg struct {
	err error
}

// ReloadMsg replaces the log text, for example after the followed file grew
type ReloadMsg struct {
	Text string
}

// searchSettledMsg fires once the search box has been quiet for the debounce
// delay. Only the tick carrying the latest sequence number commits.
type searchSettledMsg struct {
	seq int
}

type clearStatusMsg struct {
	seq int
}

// loadCommand runs the loader off the UI goroutine
func loadCommand(ctx context.Context, load Loader) tea.Cmd {
	return func() tea.Msg {
		text, err := load(ctx)
		if err != nil {
			return contentErrorMsg{err: err}
		}
		return contentLoadedMsg{text: text}
	}
}

func settleAfter(delay time.Duration, seq int) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return searchSettledMsg{seq: seq}
	})
}

func clearStatusAfter(delay time.Duration, seq int) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return clearStatusMsg{seq: seq}
	})
}
