package ui

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/yildizm/runlens/internal/emoji"
	"github.com/yildizm/runlens/internal/highlight"
	"github.com/yildizm/runlens/internal/logger"
	"github.com/yildizm/runlens/internal/logview"
	"github.com/yildizm/runlens/internal/permalink"
	"github.com/yildizm/runlens/internal/search"
)

// chrome is the number of rows taken by the header, search box and status line
const chrome = 6

// LogTabModel is the interactive log tab: a level-filtered, searchable view
// of one log with line selection and permalink copying.
type LogTabModel struct {
	opts     LogTabOptions
	ctx      context.Context
	log      *logger.Logger
	styles   *Styles
	renderer highlight.Renderer

	session  *search.Session
	input    textinput.Model
	viewport viewport.Model
	focus    focusArea

	// visible maps rows of the body to indices into session.Lines()
	visible []int
	cursor  int
	column  int

	selecting bool
	anchor    permalink.Position
	selection permalink.Selection

	searchSeq int
	statusSeq int
	status    string

	pendingHash string
	loading     bool
	err         error

	width    int
	height   int
	ready    bool
	showHelp bool
	quitting bool
}

// NewLogTab creates a log tab model
func NewLogTab(ctx context.Context, opts LogTabOptions) *LogTabModel {
	if opts.Debounce < 0 {
		opts.Debounce = 0
	}
	if opts.Clipboard == nil {
		opts.Clipboard = permalink.SystemClipboard{}
	}
	log := opts.Log
	if log == nil {
		log = logger.Discard()
	}

	input := textinput.New()
	input.Placeholder = "Search log..."
	input.Prompt = emoji.GetEmoji("search") + " "
	input.CharLimit = 256

	vp := viewport.New(80, 20)
	vp.KeyMap = viewport.KeyMap{}

	styles := GetStyles()
	m := &LogTabModel{
		opts:        opts,
		ctx:         ctx,
		log:         log.WithComponent("ui"),
		styles:      styles,
		renderer:    styles.Renderer(opts.Color),
		session:     search.NewSession(opts.Filter, opts.Search),
		input:       input,
		viewport:    vp,
		pendingHash: opts.Hash,
	}
	if opts.Loader == nil {
		m.setText(opts.Text)
		m.applyHash()
	}
	return m
}

// Init starts loading the log
func (m *LogTabModel) Init() tea.Cmd {
	if m.opts.Loader == nil {
		return nil
	}
	m.loading = true
	return loadCommand(m.ctx, m.opts.Loader)
}

// Update handles messages
func (m *LogTabModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowResize(msg)
	case tea.KeyMsg:
		if m.focus == focusSearch {
			return m.handleSearchKey(msg)
		}
		return m.handleKeyPress(msg)
	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	case contentLoadedMsg:
		return m.handleContentLoaded(msg)
	case contentErrorMsg:
		return m.handleContentError(msg)
	case ReloadMsg:
		return m.handleReload(msg)
	case searchSettledMsg:
		return m.handleSearchSettled(msg)
	case clearStatusMsg:
		if msg.seq == m.statusSeq {
			m.status = ""
		}
		return m, nil
	}

	if m.focus == focusSearch {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *LogTabModel) handleWindowResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.ready = true
	m.viewport.Width = msg.Width
	m.viewport.Height = max(1, msg.Height-chrome)
	m.input.Width = max(10, msg.Width-8)
	m.refreshContent()
	m.scrollToCursor()
	return m, nil
}

func (m *LogTabModel) handleContentLoaded(msg contentLoadedMsg) (tea.Model, tea.Cmd) {
	m.loading = false
	m.err = nil
	m.setText(msg.text)
	m.applyHash()
	return m, nil
}

func (m *LogTabModel) handleContentError(msg contentErrorMsg) (tea.Model, tea.Cmd) {
	m.loading = false
	m.err = msg.err
	m.log.WarnWithFields("failed to load log", []logger.Field{logger.Error(msg.err)})
	return m, nil
}

// handleReload keeps the cursor on the same line number, or on the last line
// when it was already there.
func (m *LogTabModel) handleReload(msg ReloadMsg) (tea.Model, tea.Cmd) {
	atEnd := len(m.visible) == 0 || m.cursor == len(m.visible)-1
	number := m.cursorLine()

	m.setText(msg.Text)
	if atEnd {
		m.cursor = max(0, len(m.visible)-1)
	} else {
		m.moveToLine(number)
	}
	m.clampColumn()
	m.refreshContent()
	m.scrollToCursor()
	return m, nil
}

func (m *LogTabModel) handleSearchSettled(msg searchSettledMsg) (tea.Model, tea.Cmd) {
	if msg.seq != m.searchSeq || !m.session.Pending() {
		return m, nil
	}
	m.session.Commit()
	m.jumpToCurrent()
	return m, nil
}

// handleSearchKey handles keys while the search box is focused
func (m *LogTabModel) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m.handleQuit()
	case "enter":
		m.searchSeq++
		m.session.Commit()
		m.blurSearch()
		m.jumpToCurrent()
		return m, nil
	case "esc":
		m.blurSearch()
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() == before {
		return m, cmd
	}
	return m, tea.Batch(cmd, m.inputChanged())
}

// inputChanged schedules a commit after the quiet period. Clearing the box
// resets the matches at once.
func (m *LogTabModel) inputChanged() tea.Cmd {
	m.searchSeq++
	if !m.session.SetInput(m.input.Value()) {
		m.refreshContent()
		return nil
	}
	if m.opts.Debounce == 0 {
		m.session.Commit()
		m.jumpToCurrent()
		return nil
	}
	return settleAfter(m.opts.Debounce, m.searchSeq)
}

// handleKeyPress handles keys while the log body is focused
func (m *LogTabModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if m.showHelp && key != "q" && key != "ctrl+c" {
		m.showHelp = false
		return m, nil
	}

	switch key {
	case "q", "ctrl+c":
		return m.handleQuit()
	case "?":
		m.showHelp = true
		return m, nil
	case "/":
		m.focus = focusSearch
		return m, m.input.Focus()
	case "esc":
		return m.handleEscape()
	case "n":
		m.session.Next()
		m.jumpToCurrent()
	case "N":
		m.session.Prev()
		m.jumpToCurrent()
	case "1", "2", "3", "4", "5":
		m.toggleLevel(logview.Levels[key[0]-'1'])
	case "c":
		opts := m.session.Options()
		opts.MatchCase = !opts.MatchCase
		m.setOptions(opts)
	case "w":
		opts := m.session.Options()
		opts.WholeWord = !opts.WholeWord
		m.setOptions(opts)
	case "up", "k":
		m.moveCursor(-1)
	case "down", "j":
		m.moveCursor(1)
	case "pgup", "ctrl+b":
		m.moveCursor(-m.viewport.Height)
	case "pgdown", "ctrl+f":
		m.moveCursor(m.viewport.Height)
	case "home", "g":
		m.moveCursor(-len(m.visible))
	case "end", "G":
		m.moveCursor(len(m.visible))
	case "left", "h":
		m.moveColumn(m.column - 1)
	case "right", "l":
		m.moveColumn(m.column + 1)
	case "0":
		m.moveColumn(0)
	case "$":
		m.moveColumn(utf8.RuneCountInString(m.cursorText()))
	case "v":
		m.toggleSelecting()
	case "y":
		return m.copyPermalink()
	case "r":
		return m.handleReloadRequest()
	}
	return m, nil
}

func (m *LogTabModel) handleQuit() (tea.Model, tea.Cmd) {
	m.quitting = true
	return m, tea.Quit
}

// handleEscape drops the selection first, then the search
func (m *LogTabModel) handleEscape() (tea.Model, tea.Cmd) {
	switch {
	case m.selecting || m.selection.Active():
		m.selecting = false
		m.selection.Clear()
	case m.session.Input() != "":
		m.searchSeq++
		m.input.SetValue("")
		m.session.SetInput("")
	}
	m.refreshContent()
	return m, nil
}

func (m *LogTabModel) handleReloadRequest() (tea.Model, tea.Cmd) {
	if m.opts.Loader == nil || m.loading {
		return m, nil
	}
	m.loading = true
	m.err = nil
	return m, loadCommand(m.ctx, m.opts.Loader)
}

func (m *LogTabModel) blurSearch() {
	m.focus = focusLog
	m.input.Blur()
}

func (m *LogTabModel) setText(raw string) {
	if m.opts.Normalize {
		raw = logview.Normalize(raw)
	}
	m.session.SetText(raw)
	m.rebuildVisible()
	m.refreshContent()
}

func (m *LogTabModel) toggleLevel(l logview.Level) {
	number := m.cursorLine()
	m.session.ToggleLevel(l)
	m.rebuildVisible()
	m.moveToLine(number)
	m.clampColumn()
	m.refreshContent()
	m.scrollToCursor()
}

func (m *LogTabModel) setOptions(opts search.Options) {
	if m.session.SetOptions(opts) {
		m.jumpToCurrent()
	}
}

func (m *LogTabModel) rebuildVisible() {
	m.visible = m.visible[:0]
	for i, line := range m.session.Lines() {
		if line.Visible {
			m.visible = append(m.visible, i)
		}
	}
	if m.cursor >= len(m.visible) {
		m.cursor = max(0, len(m.visible)-1)
	}
}

// moveToLine places the cursor on the first visible line at or after number
func (m *LogTabModel) moveToLine(number int) {
	lines := m.session.Lines()
	for row, idx := range m.visible {
		if lines[idx].Number >= number {
			m.cursor = row
			return
		}
	}
	m.cursor = max(0, len(m.visible)-1)
}

// rowOf returns the body row showing a line index, or -1 when it is hidden
func (m *LogTabModel) rowOf(lineIndex int) int {
	for row, idx := range m.visible {
		if idx == lineIndex {
			return row
		}
		if idx > lineIndex {
			break
		}
	}
	return -1
}

func (m *LogTabModel) cursorLine() int {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return 0
	}
	return m.session.Lines()[m.visible[m.cursor]].Number
}

func (m *LogTabModel) cursorText() string {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return ""
	}
	return m.session.Lines()[m.visible[m.cursor]].Content
}

func (m *LogTabModel) cursorPosition() permalink.Position {
	return permalink.Position{Line: m.cursorLine(), Offset: m.column}
}

func (m *LogTabModel) moveCursor(delta int) {
	if len(m.visible) == 0 {
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), len(m.visible)-1)
	m.clampColumn()
	m.cursorMoved()
}

func (m *LogTabModel) moveColumn(column int) {
	m.column = column
	m.clampColumn()
	m.cursorMoved()
}

func (m *LogTabModel) clampColumn() {
	m.column = min(max(m.column, 0), utf8.RuneCountInString(m.cursorText()))
}

func (m *LogTabModel) cursorMoved() {
	if m.selecting {
		m.selection.Update(m.anchor, m.cursorPosition())
	}
	m.refreshContent()
	m.scrollToCursor()
}

// toggleSelecting anchors a new selection at the cursor, or stops extending
// the current one.
func (m *LogTabModel) toggleSelecting() {
	if m.selecting {
		m.selecting = false
		return
	}
	if len(m.visible) == 0 {
		return
	}
	m.selecting = true
	m.anchor = m.cursorPosition()
	m.selection.Clear()
	m.refreshContent()
}

func (m *LogTabModel) copyPermalink() (tea.Model, tea.Cmd) {
	link, err := permalink.Copy(m.opts.Clipboard, m.opts.PageURL, &m.selection)
	if err != nil {
		if errors.Is(err, permalink.ErrNoSelection) {
			return m, m.setStatus("Nothing selected: press v and move the cursor")
		}
		m.log.WarnWithFields("permalink copy failed", []logger.Field{logger.Error(err)})
		return m, m.setStatus(emoji.GetEmoji("error") + " " + err.Error())
	}
	m.selecting = false
	m.refreshContent()
	m.log.DebugWithFields("permalink copied", []logger.Field{logger.F("link", link)})
	return m, m.setStatus(emoji.GetEmoji("clipboard") + " Copied " + link)
}

func (m *LogTabModel) setStatus(text string) tea.Cmd {
	m.statusSeq++
	m.status = text
	return clearStatusAfter(statusTimeout, m.statusSeq)
}

// jumpToCurrent moves the cursor to the current match
func (m *LogTabModel) jumpToCurrent() {
	if match, ok := m.session.CurrentMatch(); ok {
		if row := m.rowOf(match.LineIndex); row >= 0 {
			m.cursor = row
			m.column = utf8.RuneCountInString(m.cursorText()[:match.Start])
		}
	}
	m.refreshContent()
	m.scrollToCursor()
}

// applyHash restores the permalink selection or line jump requested at start
func (m *LogTabModel) applyHash() {
	hash := m.pendingHash
	m.pendingHash = ""
	if hash == "" {
		return
	}

	if r, ok := permalink.Parse(hash); ok {
		restored, ok := permalink.Restore(r, m.lineText)
		if !ok {
			m.log.DebugWithFields("permalink lines not shown", []logger.Field{logger.F("hash", hash)})
			return
		}
		m.selection.Set(restored)
		m.moveToLine(restored.StartLine)
		m.column = restored.StartOffset
	} else if n, ok := permalink.ParseLine(hash); ok {
		m.moveToLine(n)
		m.column = 0
	} else {
		return
	}
	m.clampColumn()
	m.refreshContent()
	m.scrollToCursor()
}

// lineText resolves rendered line numbers for permalink restore
func (m *LogTabModel) lineText(number int) (string, bool) {
	lines := m.session.Lines()
	if number < 1 || number > len(lines) || !lines[number-1].Visible {
		return "", false
	}
	return lines[number-1].Content, true
}

func (m *LogTabModel) scrollToCursor() {
	switch {
	case m.cursor < m.viewport.YOffset:
		m.viewport.SetYOffset(m.cursor)
	case m.cursor >= m.viewport.YOffset+m.viewport.Height:
		m.viewport.SetYOffset(m.cursor - m.viewport.Height + 1)
	}
}

// Selection returns the current selection range, if any
func (m *LogTabModel) Selection() (permalink.Range, bool) {
	return m.selection.Range()
}

// Session exposes the search session
func (m *LogTabModel) Session() *search.Session {
	return m.session
}

// Err returns the last load error
func (m *LogTabModel) Err() error {
	return m.err
}

// Run runs the log tab until the user quits. Texts received on reloads
// replace the log, keeping the cursor in place.
func Run(ctx context.Context, opts LogTabOptions, reloads <-chan string, programOpts ...tea.ProgramOption) error {
	model := NewLogTab(ctx, opts)
	programOpts = append([]tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	}, programOpts...)
	p := tea.NewProgram(model, programOpts...)

	if reloads != nil {
		go func() {
			for text := range reloads {
				p.Send(ReloadMsg{Text: text})
			}
		}()
	}

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("log viewer failed: %w", err)
	}
	return nil
}
