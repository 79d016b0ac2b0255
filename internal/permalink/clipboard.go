package permalink

import (
	"fmt"

	"github.com/atotto/clipboard"
)

// Clipboard writes text to a clipboard
type Clipboard interface {
	WriteText(text string) error
}

// SystemClipboard uses the operating system clipboard
type SystemClipboard struct{}

// WriteText implements Clipboard
func (SystemClipboard) WriteText(text string) error {
	return clipboard.WriteAll(text)
}

// Selection holds the current selection range, if any
type Selection struct {
	rng    Range
	active bool
}

// Update sets the selection from an anchor and focus. A collapsed selection
// clears it.
func (s *Selection) Update(anchor, focus Position) {
	if r, ok := Capture(anchor, focus); ok {
		s.Set(r)
		return
	}
	s.Clear()
}

// Set replaces the selection
func (s *Selection) Set(r Range) {
	s.rng = r
	s.active = true
}

// Clear drops the selection
func (s *Selection) Clear() {
	s.rng = Range{}
	s.active = false
}

// Range returns the selection
func (s *Selection) Range() (Range, bool) {
	return s.rng, s.active
}

// Active reports whether something is selected
func (s *Selection) Active() bool {
	return s.active
}

// Copy writes the permalink of the selection to the clipboard and clears the
// selection. On failure the selection is kept so the user can retry.
func Copy(cb Clipboard, pageURL string, sel *Selection) (string, error) {
	r, ok := sel.Range()
	if !ok {
		return "", ErrNoSelection
	}

	link, err := Build(pageURL, r)
	if err != nil {
		return "", err
	}
	if err := cb.WriteText(link); err != nil {
		return "", fmt.Errorf("failed to copy permalink: %w", err)
	}

	sel.Clear()
	return link, nil
}
