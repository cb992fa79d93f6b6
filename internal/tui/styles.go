package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/tylerwhitlock50/month-end-close-manager-sub001/internal/task"
)

// Tokyo Night inspired palette.
var (
	colorPrimary   = lipgloss.Color("#7aa2f7") // Blue
	colorSecondary = lipgloss.Color("#bb9af7") // Purple
	colorSuccess   = lipgloss.Color("#9ece6a") // Green
	colorWarning   = lipgloss.Color("#e0af68") // Yellow
	colorError     = lipgloss.Color("#f7768e") // Red
	colorMuted     = lipgloss.Color("#565f89") // Gray
	colorBg        = lipgloss.Color("#1a1b26") // Dark background
	colorBgLight   = lipgloss.Color("#24283b") // Lighter background
	colorFg        = lipgloss.Color("#c0caf5") // Foreground
	colorFgDim     = lipgloss.Color("#a9b1d6") // Dimmed foreground
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(colorFgDim)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError)

	columnStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(0, 1)

	columnFocusedStyle = lipgloss.NewStyle().
				Border(lipgloss.ThickBorder()).
				BorderForeground(colorPrimary).
				Padding(0, 1)

	columnDropStyle = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(colorSuccess).
			Padding(0, 1)

	columnNoDropStyle = lipgloss.NewStyle().
				Border(lipgloss.ThickBorder()).
				BorderForeground(colorError).
				Padding(0, 1)

	cardSelectedStyle = lipgloss.NewStyle().
				Background(colorBgLight).
				Foreground(colorFg).
				Bold(true)

	cardCarriedStyle = lipgloss.NewStyle().
				Foreground(colorWarning).
				Bold(true)

	pendingStyle = lipgloss.NewStyle().
			Foreground(colorWarning).
			Italic(true)

	blockedMarkStyle = lipgloss.NewStyle().
				Foreground(colorError)

	badgeStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Background(colorPrimary).
			Foreground(colorBg)

	badgeQuietStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Background(colorBgLight).
			Foreground(colorFgDim)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(0, 1)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(colorPrimary)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	selectedListStyle = lipgloss.NewStyle().
				Background(colorBgLight).
				Foreground(colorFg).
				Bold(true)

	unselectedListStyle = lipgloss.NewStyle().
				Foreground(colorFgDim)

	tabStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Foreground(colorMuted)

	activeTabStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Foreground(colorPrimary).
			Bold(true).
			Underline(true)
)

func statusColor(s task.Status) lipgloss.Color {
	switch s {
	case task.StatusInProgress:
		return colorPrimary
	case task.StatusReview:
		return colorSecondary
	case task.StatusBlocked:
		return colorError
	case task.StatusComplete:
		return colorSuccess
	default:
		return colorMuted
	}
}

func statusStyle(s task.Status) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(statusColor(s))
}
