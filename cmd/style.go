package cmd

import "github.com/charmbracelet/lipgloss"

var (
	failColor  = lipgloss.Color("#FF0000")
	mutedColor = lipgloss.Color("#666666")
	passColor  = lipgloss.Color("#00CC66")
	white      = lipgloss.Color("#FFFFFF")
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(white)
	failStyle  = lipgloss.NewStyle().Foreground(failColor).Bold(true)
	passStyle  = lipgloss.NewStyle().Foreground(passColor).Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(mutedColor)
)
