package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/hyperfocus/internal/session"
)

// Palette. Each phase has its own hue so the timer reads at a glance.
var (
	colorWork       = lipgloss.Color("#FF6B6B")
	colorShortBreak = lipgloss.Color("#2ECC71")
	colorLongBreak  = lipgloss.Color("#7AA2F7")
	colorHyperfocus = lipgloss.Color("#BB9AF7")

	colorPrimary = lipgloss.Color("#6C63FF")
	colorWarning = lipgloss.Color("#F39C12")
	colorError   = lipgloss.Color("#E74C3C")
	colorMuted   = lipgloss.Color("#666666")
	colorSubtle  = lipgloss.Color("#414868")
	colorBg      = lipgloss.Color("#1A1B26")
	colorFg      = lipgloss.Color("#C0CAF5")
)

// clockStyle is the base for the big countdown.
func clockStyle(fg lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(fg).Align(lipgloss.Center)
}

var (
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(colorPrimary).
			Padding(0, 2)
	inactiveTabStyle = lipgloss.NewStyle().Foreground(colorMuted).Padding(0, 2)

	panelStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorSubtle).Padding(1, 2)
	activePanelStyle = panelStyle.BorderForeground(colorPrimary)

	// Countdown
	timerStyle           = clockStyle(colorFg)
	timerRunningStyle    = clockStyle(colorShortBreak)
	timerPausedStyle     = clockStyle(colorWarning)
	timerHyperfocusStyle = clockStyle(colorHyperfocus)
	timerBeatStyle       = clockStyle(colorBg).Background(colorWork)

	hyperfocusBadgeStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorBg).
				Background(colorHyperfocus).
				Padding(0, 1)

	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorFg)
	subtitleStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	mutedStyle     = subtitleStyle
	accentStyle    = lipgloss.NewStyle().Foreground(colorWork)
	successStyle   = lipgloss.NewStyle().Foreground(colorShortBreak)
	highlightStyle = lipgloss.NewStyle().Foreground(colorLongBreak)
	warningStyle   = lipgloss.NewStyle().Foreground(colorWarning)
	errorStyle     = lipgloss.NewStyle().Foreground(colorError)

	headerStyle = lipgloss.NewStyle().Padding(0, 1)
	footerStyle = lipgloss.NewStyle().Foreground(colorMuted).Padding(0, 1)

	selectedItemStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	normalItemStyle   = lipgloss.NewStyle().Foreground(colorFg)

	// Report bars; days without focus time are dimmed.
	barStyle      = lipgloss.NewStyle().Foreground(colorPrimary)
	emptyBarStyle = lipgloss.NewStyle().Foreground(colorSubtle)
)

func phaseStyle(p session.Phase) lipgloss.Style {
	switch p {
	case session.ShortBreak:
		return successStyle
	case session.LongBreak:
		return highlightStyle
	default:
		return accentStyle
	}
}
