package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Color palette
var (
	PrimaryColor  = lipgloss.Color("#7D56F4") // Purple - borders, operators
	SuccessColor  = lipgloss.Color("#43BF6D") // Green - success, literal values
	ErrorColor    = lipgloss.Color("#FF5555") // Red - errors
	WarningColor  = lipgloss.Color("#FFA500") // Orange - warnings, versions
	MutedColor    = lipgloss.Color("#626262") // Gray - offsets, secondary info
	TextColor     = lipgloss.Color("#FFFFFF") // White - main content
	SelectedColor = lipgloss.Color("#F25D94") // Pink - inspector cursor
)

// Layout constants
const (
	MinTerminalWidth = 60  // Minimum supported terminal width
	MaxContentWidth  = 100 // Maximum content width before capping
)

var (
	SuccessTitleStyle = lipgloss.NewStyle().
				Foreground(SuccessColor).
				Bold(true)

	ErrorTitleStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	ErrorMessageStyle = lipgloss.NewStyle().
				Foreground(ErrorColor)

	ResultKeyStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Width(18)

	ResultValueStyle = lipgloss.NewStyle().
				Foreground(TextColor)

	TroubleshootingTitleStyle = lipgloss.NewStyle().
					Foreground(MutedColor).
					Bold(true)

	TroubleshootingItemStyle = lipgloss.NewStyle().
					Foreground(MutedColor)

	// Packet tree
	OperatorStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true)

	LiteralStyle = lipgloss.NewStyle().
			Foreground(SuccessColor)

	VersionStyle = lipgloss.NewStyle().
			Foreground(WarningColor)

	ExtentStyle = lipgloss.NewStyle().
			Foreground(MutedColor)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(SelectedColor).
			Bold(true)
)

// Markers
const (
	SuccessMarker   = "✓"
	FailureMarker   = "✗"
	CollapsedMarker = "▸"
	ExpandedMarker  = "▾"
	LeafMarker      = "·"
)

// IsTerminal reports whether stdout is a terminal
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// GetTerminalWidth returns the current terminal width, with fallback
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width < MinTerminalWidth {
		return MinTerminalWidth
	}
	if width > MaxContentWidth {
		return MaxContentWidth
	}
	return width
}
