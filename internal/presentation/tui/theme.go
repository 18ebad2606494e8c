package tui

import (
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// Palette.
var (
	ColorAccent = lipgloss.Color("#818cf8")
	ColorGreen  = lipgloss.Color("#34d399")
	ColorRed    = lipgloss.Color("#f87171")
	ColorYellow = lipgloss.Color("#fbbf24")
	ColorDim    = lipgloss.Color("#94a3b8")
	ColorFg     = lipgloss.Color("#e2e8f0")
)

var (
	StyleHeader  = lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)
	StyleDim     = lipgloss.NewStyle().Foreground(ColorDim)
	StyleNotice  = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleError   = lipgloss.NewStyle().Foreground(ColorRed).Bold(true)
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorGreen).Bold(true)
	StyleSummary = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorAccent).
			Padding(0, 1)
)

// HuhTheme styles the wizard forms.
func HuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)
	t.Focused.Description = lipgloss.NewStyle().Foreground(ColorDim)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(ColorAccent)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(ColorFg)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(ColorFg).Background(ColorAccent).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(ColorAccent)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(ColorAccent)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(ColorDim)
	t.Focused.ErrorMessage = lipgloss.NewStyle().Foreground(ColorRed)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(ColorDim)
	t.Blurred.SelectSelector = lipgloss.NewStyle().Foreground(ColorDim)
	t.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(ColorDim)
	t.Blurred.UnselectedOption = lipgloss.NewStyle().Foreground(ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(ColorDim)

	return t
}
