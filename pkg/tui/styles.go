package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/meridianclaims/payerkb/pkg/ranking"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	userLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	assistantLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("135"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	sidebarStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	sidebarHeadingStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("75"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	bandHighStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	bandMedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	bandLowStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	sevCriticalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	sevWarningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	sevInfoStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
)

// bandStyle picks the style for a confidence band: green for high, amber for
// medium, gray for low.
func bandStyle(b ranking.Band) lipgloss.Style {
	switch b {
	case ranking.BandHigh:
		return bandHighStyle
	case ranking.BandMedium:
		return bandMedStyle
	default:
		return bandLowStyle
	}
}

func severityStyle(severity string) lipgloss.Style {
	switch severity {
	case "critical":
		return sevCriticalStyle
	case "warning":
		return sevWarningStyle
	default:
		return sevInfoStyle
	}
}
