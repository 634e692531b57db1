package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorGreen  = lipgloss.Color("#4caf50")
	colorBlue   = lipgloss.Color("#2196f3")
	colorRed    = lipgloss.Color("#f44336")
	colorGray   = lipgloss.Color("#6b7280")
	colorLight  = lipgloss.Color("#e0e0e0")
	colorInfo   = lipgloss.Color("#1976d2")
	colorInfoBg = lipgloss.Color("#e3f2fd")
	colorWhite  = lipgloss.Color("#f8fafc")
	colorDark   = lipgloss.Color("#1e293b")
	colorSelect = lipgloss.Color("#334155")
)

// StyleHeader is the full-width title bar.
var StyleHeader = lipgloss.NewStyle().
	Background(colorDark).
	Foreground(colorWhite).
	Padding(0, 1)

// StyleClearButton mirrors the red "Clear Confirmed" action.
var StyleClearButton = lipgloss.NewStyle().
	Background(colorRed).
	Foreground(colorWhite).
	Bold(true).
	Padding(0, 1)

// StyleEmpty is the "no patients" notice.
var StyleEmpty = lipgloss.NewStyle().
	Background(colorInfoBg).
	Foreground(colorInfo).
	Padding(0, 1)

// Table styles.
var (
	StyleTableHeader = lipgloss.NewStyle().
				Bold(true).
				Underline(true).
				Foreground(colorGray)

	StyleRowPending   = lipgloss.NewStyle().Foreground(colorWhite)
	StyleRowConfirmed = lipgloss.NewStyle().Foreground(colorGray)
	StyleRowSelected  = lipgloss.NewStyle().Background(colorSelect)

	StyleTriage       = lipgloss.NewStyle().Foreground(colorBlue).Bold(true)
	StyleTriageLocked = lipgloss.NewStyle().Foreground(colorGray)
	StyleDone         = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
)

// Dialog styles.
var (
	StyleDialog = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorRed).
			Padding(1, 2)

	StyleAlert = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(colorRed).
			Foreground(colorLight).
			Padding(1, 2)
)

// Utility styles.
var (
	StyleError = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	StyleDim   = lipgloss.NewStyle().Foreground(colorGray)
)
