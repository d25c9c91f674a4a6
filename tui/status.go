package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderStatusBar produces a full-width inverted status line showing the
// active session, position, heading, combat state, and turn count.
func (m Model) renderStatusBar() string {
	info, ok := m.store.Active()
	if !ok {
		bar := " No session — :start to begin"
		return styleStatusBar.Width(m.width).Render(bar)
	}

	left := fmt.Sprintf(" %s | (%d,%d,%d) %s",
		info.SessionID, info.Position.X, info.Position.Y, info.Position.Z, info.Heading)

	if tile, err := m.store.Look(""); err == nil {
		left += " | Exits: " + strings.Join(tile.Exits, ",")
	}

	right := fmt.Sprintf("T:%d ", info.Turn)
	if snap, err := m.store.CombatStatus(""); err == nil && snap.Active {
		right = fmt.Sprintf("COMBAT R%d | T:%d ", snap.Round, info.Turn)
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}
