package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Palette. Everything below maps onto these few hues.
const (
	ColorNeonPink   lipgloss.Color = "#FF2E88"
	ColorNeonCyan   lipgloss.Color = "#00E5FF"
	ColorNeonPurple lipgloss.Color = "#B14EFF"
	ColorNeonGreen  lipgloss.Color = "#39FF88"
	ColorNeonRed    lipgloss.Color = "#FF4D5E"
	ColorSteel      lipgloss.Color = "#C9D1D9"
	ColorSlate      lipgloss.Color = "#6E7681"
)

// Semantic colors for status indication
const (
	ColorSuccess = ColorNeonGreen
	ColorError   = ColorNeonRed
)

// Text colors for content hierarchy
const (
	ColorPrimary = ColorSteel
	ColorMuted   = ColorSlate
)

// GradientColors is the cycle the spinner animates through.
var GradientColors = []lipgloss.Color{
	ColorNeonPink,
	ColorNeonPurple,
	ColorNeonCyan,
	ColorNeonGreen,
}

func SuccessStyle() lipgloss.Style { return lipgloss.NewStyle().Foreground(ColorSuccess) }
func ErrorStyle() lipgloss.Style   { return lipgloss.NewStyle().Foreground(ColorError) }
func MutedStyle() lipgloss.Style   { return lipgloss.NewStyle().Foreground(ColorMuted) }

// HeaderStyle is used for table headers and section titles.
func HeaderStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
}

// DisableColors switches lipgloss to plain ASCII output (--no-color).
func DisableColors() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// ForceColors keeps colors on even when stdout is not a terminal
// (output.color: always).
func ForceColors() {
	lipgloss.SetColorProfile(termenv.ANSI256)
}
