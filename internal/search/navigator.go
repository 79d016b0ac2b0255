package search

// Navigator tracks the current match. Current is -1 when there is nothing to
// select.
type Navigator struct {
	current int
	total   int
}

// NewNavigator creates a navigator with no selection
func NewNavigator() *Navigator {
	return &Navigator{current: -1}
}

// SetTotal updates the match count. The selection resets to -1 when there are
// no matches, starts at the first match when nothing was selected, and clamps
// to the last match when the count shrinks.
func (n *Navigator) SetTotal(total int) {
	n.total = total
	switch {
	case total <= 0:
		n.total = 0
		n.current = -1
	case n.current < 0:
		n.current = 0
	case n.current >= total:
		n.current = total - 1
	}
}

// Reset clears the selection and the count
func (n *Navigator) Reset() {
	n.current = -1
	n.total = 0
}

// Next moves forward, wrapping to the first match
func (n *Navigator) Next() int {
	if n.total == 0 {
		return -1
	}
	n.current = (n.current + 1) % n.total
	return n.current
}

// Prev moves backward, wrapping to the last match
func (n *Navigator) Prev() int {
	if n.total == 0 {
		return -1
	}
	n.current = (n.current - 1 + n.total) % n.total
	return n.current
}

// Current returns the selected global match index, or -1
func (n *Navigator) Current() int {
	return n.current
}

// Total returns the match count
func (n *Navigator) Total() int {
	return n.total
}
