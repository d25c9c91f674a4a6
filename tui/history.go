// Package tui provides the Bubble Tea terminal UI: a scrolling transcript,
// a status bar with session and combat state, and an input line with
// command history.
package tui

// History keeps recently entered commands for up/down recall. The cursor
// tracks where the player is while browsing; -1 means fresh input.
type History struct {
	entries []string
	max     int
	cursor  int
}

// NewHistory returns a history holding at most max commands.
func NewHistory(max int) *History {
	return &History{entries: make([]string, 0, max), max: max, cursor: -1}
}

// Push records a command. Repeating the last command adds nothing; the
// oldest entry falls off once the buffer is full.
func (h *History) Push(cmd string) {
	n := len(h.entries)
	if n > 0 && h.entries[n-1] == cmd {
		return
	}
	h.entries = append(h.entries, cmd)
	if len(h.entries) > h.max {
		h.entries = h.entries[1:]
	}
}

// Prev steps toward older entries, sticking at the oldest. False when
// there is nothing recorded.
func (h *History) Prev() (string, bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	switch {
	case h.cursor == -1:
		h.cursor = len(h.entries) - 1
	case h.cursor > 0:
		h.cursor--
	}
	return h.entries[h.cursor], true
}

// Next steps toward newer entries. Stepping past the newest returns false
// and leaves the cursor on fresh input.
func (h *History) Next() (string, bool) {
	if h.cursor == -1 {
		return "", false
	}
	h.cursor++
	if h.cursor >= len(h.entries) {
		h.cursor = -1
		return "", false
	}
	return h.entries[h.cursor], true
}

// ResetCursor abandons browsing and returns to fresh input.
func (h *History) ResetCursor() {
	h.cursor = -1
}
