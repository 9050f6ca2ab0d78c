package tui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	Amber     = lipgloss.Color("#E5A00D")
	DimGray   = lipgloss.Color("#6B7280")
	LightGray = lipgloss.Color("#9CA3AF")
	White     = lipgloss.Color("#F9FAFB")
	Red       = lipgloss.Color("#EF4444")
	Pink      = lipgloss.Color("#EC4899")
)

// Text styles
var (
	titleStyle = lipgloss.NewStyle().
			Foreground(White).
			Bold(true)

	sectionStyle = lipgloss.NewStyle().
			Foreground(Amber).
			Bold(true)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(LightGray)

	dimStyle = lipgloss.NewStyle().
			Foreground(DimGray)

	errorStyle = lipgloss.NewStyle().
			Foreground(Red)

	favoriteStyle = lipgloss.NewStyle().
			Foreground(Pink)

	selectedStyle = lipgloss.NewStyle().
			Foreground(White).
			Background(Amber).
			Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(LightGray)
)

// Indicators
const (
	favoriteMark = "♥"
	cursorMark   = "› "
)
