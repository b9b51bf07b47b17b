package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/spinwheel/engine/wheel"
)

// pointerLabel names the segment currently under the pointer, styled in
// the segment's colour. An empty wheel shows a dash.
func (m Model) pointerLabel() string {
	w := m.engine.Wheel
	seg, ok := w.Segment(w.PointerIndex())
	if !ok {
		return "-"
	}
	return segmentStyle(seg.Color).Render(" " + seg.Name + " ")
}

// phaseLabel describes the wheel's motion for the status bar.
func (m Model) phaseLabel() string {
	w := m.engine.Wheel
	switch w.Phase() {
	case wheel.Decelerating:
		return fmt.Sprintf("%.0f°/s", w.Speed())
	case wheel.Settling:
		return "settling"
	default:
		return fmt.Sprintf("%.0f°", w.Rotation())
	}
}

// renderStatusBar produces a full-width inverted status line showing the
// wheel, the segment under the pointer, money, spins left and the round.
func (m Model) renderStatusBar() string {
	s := m.engine.State

	left := fmt.Sprintf(" %s ▶ %s %s", m.defs.Wheel.Name, m.pointerLabel(), m.phaseLabel())
	right := fmt.Sprintf("$%d | Spins: %d | R:%d ", m.displayMoney(), s.Player.SpinsLeft, s.Round)
	if lipgloss.Width(left)+lipgloss.Width(right) >= m.width {
		right = fmt.Sprintf("$%d ", m.displayMoney())
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}
