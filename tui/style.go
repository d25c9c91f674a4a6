package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleNarrative = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleFact = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228"))

	styleExits = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleCombat = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))
)

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindNarrative lineKind = iota
	kindFact
	kindExits
	kindCombat
	kindSystem
	kindError
)

// classifyLine determines what kind of output line this is.
func classifyLine(line string) lineKind {
	trimmed := strings.TrimSpace(line)
	switch {
	case strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]"):
		if strings.Contains(trimmed, "failed") || strings.HasPrefix(trimmed, "[Unknown") {
			return kindError
		}
		return kindSystem
	case strings.HasPrefix(trimmed, "Exits:"):
		return kindExits
	case strings.HasPrefix(trimmed, "Combat"),
		strings.Contains(trimmed, "damage"),
		strings.Contains(trimmed, "Critical hit"),
		strings.Contains(trimmed, "initiative"):
		return kindCombat
	case strings.HasPrefix(line, "  "):
		// Indented tile facts and log lines.
		return kindFact
	default:
		return kindNarrative
	}
}

// renderLine applies the style for a given lineKind.
func renderLine(line string, kind lineKind) string {
	switch kind {
	case kindFact:
		return styleFact.Render(line)
	case kindExits:
		return styleExits.Render(line)
	case kindCombat:
		return styleCombat.Render(line)
	case kindSystem:
		return styleSystem.Render(line)
	case kindError:
		return styleError.Render(line)
	default:
		return styleNarrative.Render(line)
	}
}
