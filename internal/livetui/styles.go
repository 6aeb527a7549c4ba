// Package livetui renders the live-watch dashboard: the running Stall
// Verdict and a thread-count history, refreshed on each sampler tick.
package livetui

import "github.com/charmbracelet/lipgloss"

var (
	criticalColor = lipgloss.Color("#CC3333")
	warningColor  = lipgloss.Color("#FF8800")
	goodColor     = lipgloss.Color("#228B22")
	infoColor     = lipgloss.Color("#4682B4")
	mutedColor    = lipgloss.Color("#888888")
	borderColor   = lipgloss.Color("#666666")
)

var (
	criticalStyle = lipgloss.NewStyle().Foreground(criticalColor).Bold(true)
	warningStyle  = lipgloss.NewStyle().Foreground(warningColor).Bold(true)
	goodStyle     = lipgloss.NewStyle().Foreground(goodColor).Bold(true)
	infoStyle     = lipgloss.NewStyle().Foreground(infoColor)
	mutedStyle    = lipgloss.NewStyle().Foreground(mutedColor)

	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(borderColor).Padding(1, 2)
)

func verdictStyle(v string) lipgloss.Style {
	switch v {
	case "DEADLOCK":
		return criticalStyle
	case "SUSPECTED_STALL":
		return warningStyle
	case "ERROR":
		return criticalStyle
	default:
		return goodStyle
	}
}
