package ui

import (
	"time"

	"github.com/yildizm/runlens/internal/logger"
	"github.com/yildizm/runlens/internal/logview"
	"github.com/yildizm/runlens/internal/permalink"
	"github.com/yildizm/runlens/internal/search"
)

// focusArea is the part of the log tab receiving key presses
type focusArea int

const (
	focusLog focusArea = iota
	focusSearch
)

const statusTimeout = 3 * time.Second

// LogTabOptions configures a log tab
type LogTabOptions struct {
	// Title is shown in the header, usually the file name or artifact path
	Title string
	// Loader fetches the log text. When nil, Text is shown directly.
	Loader Loader
	Text   string

	// PageURL is the page permalinks point at
	PageURL string
	// Hash restores a #log-a-b-c-d selection or jumps to #log-line-n once
	// the text has loaded.
	Hash string

	Filter    logview.LevelFilter
	Search    search.Options
	Debounce  time.Duration
	Normalize bool
	Color     bool

	Clipboard permalink.Clipboard
	Log       *logger.Logger
}
