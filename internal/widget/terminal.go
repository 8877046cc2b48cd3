package widget

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// terminalColumns is the stripe width in character cells.
const terminalColumns = 24

// RenderTerminal draws w as true-color blocks for a terminal preview.
// Each stripe becomes one line followed by its label and reading.
func RenderTerminal(w *Widget) string {
	if len(w.Error) > 0 {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(ErrorColor.Hex()))
		return style.Render(strings.Join(w.Error, "\n")) + "\n"
	}

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(TitleColor.Hex())).
		Background(lipgloss.Color(TitleFrom.Hex())).
		Width(terminalColumns).
		Padding(0, 1).
		Render(w.Title)

	lines := []string{title}
	blank := strings.Repeat(" ", terminalColumns)
	label := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	for _, s := range w.Stripes {
		bar := lipgloss.NewStyle().Background(lipgloss.Color(s.Color.Hex())).Render(blank)
		text := s.Label + "  " + Reading(s.Value, w.Unit)
		if s.Current {
			text += "  ◀"
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, bar, " ", label.Render(text)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...) + "\n"
}
