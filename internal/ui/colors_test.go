package ui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestColorConstants(t *testing.T) {
	colors := []lipgloss.Color{
		ColorNeonPink,
		ColorNeonCyan,
		ColorNeonPurple,
		ColorNeonGreen,
		ColorNeonRed,
		ColorSteel,
		ColorSlate,
		ColorSuccess,
		ColorError,
		ColorPrimary,
		ColorMuted,
	}

	for _, color := range colors {
		colorStr := string(color)
		assert.NotEmpty(t, colorStr, "color should not be empty")
		assert.True(t, colorStr[0] == '#', "color should start with #: %s", colorStr)
		assert.Len(t, colorStr, 7, "color should be 7 chars (#RRGGBB): %s", colorStr)
	}
}

func TestGradientColors(t *testing.T) {
	assert.Len(t, GradientColors, 4)
	for i, color := range GradientColors {
		assert.NotEmpty(t, string(color), "gradient color %d should not be empty", i)
	}
}

func TestStylesAreFunctional(t *testing.T) {
	styles := []struct {
		name  string
		style lipgloss.Style
	}{
		{"Success", SuccessStyle()},
		{"Error", ErrorStyle()},
		{"Muted", MutedStyle()},
		{"Header", HeaderStyle()},
	}

	for _, tt := range styles {
		t.Run(tt.name, func(t *testing.T) {
			rendered := tt.style.Render(tt.name)
			assert.Contains(t, rendered, tt.name)
		})
	}
}

func TestDisableColors(t *testing.T) {
	assert.NotPanics(t, func() {
		DisableColors()
	})

	rendered := SuccessStyle().Render("test")
	assert.Equal(t, "test", rendered)
}
