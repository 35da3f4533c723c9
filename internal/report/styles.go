package report

import "github.com/charmbracelet/lipgloss"

var (
	colorPositive = lipgloss.Color("78")
	colorNegative = lipgloss.Color("203")
	colorNeutral  = lipgloss.Color("245")
	colorAccent   = lipgloss.Color("62")
)

var titleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(colorAccent).
	Padding(0, 1)

var sectionStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorAccent).
	MarginTop(1)

var boxStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorAccent).
	Padding(0, 1)

var mutedStyle = lipgloss.NewStyle().Foreground(colorNeutral)

func labelStyle(label string) lipgloss.Style {
	style := lipgloss.NewStyle().Bold(true)
	switch label {
	case "positive":
		return style.Foreground(colorPositive)
	case "negative":
		return style.Foreground(colorNegative)
	default:
		return style.Foreground(colorNeutral)
	}
}
