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

	styleNarration = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleWin = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")).
			Bold(true)

	styleMiss = lipgloss.NewStyle().
			Foreground(lipgloss.Color("246"))

	styleRound = lipgloss.NewStyle().
			Foreground(lipgloss.Color("81")).
			Bold(true)

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleTrace = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	stylePointer = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("220")).
			Bold(true)
)

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindNarration lineKind = iota
	kindWin
	kindMiss
	kindRound
	kindSystem
	kindError
	kindTrace
	kindInput // echoed player input
)

// classifyLine determines what kind of output line this is.
func classifyLine(line string) lineKind {
	switch {
	case strings.HasPrefix(line, "[trace]"):
		return kindTrace
	case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
		return kindSystem
	case strings.HasPrefix(line, "The wheel stops on"):
		if strings.Contains(line, "You win") {
			return kindWin
		}
		return kindMiss
	case strings.HasPrefix(line, "Round "):
		return kindRound
	case strings.HasPrefix(line, "There is no segment"),
		strings.HasPrefix(line, "Which "),
		strings.HasPrefix(line, "Usage:"),
		strings.HasPrefix(line, "I don't know how"),
		strings.HasPrefix(line, "You have no spins"):
		return kindError
	default:
		return kindNarration
	}
}

// segmentStyle colours a segment label with the segment's own colour when
// it has one.
func segmentStyle(color string) lipgloss.Style {
	if color == "" {
		return stylePointer
	}
	return stylePointer.Background(lipgloss.Color(color))
}
