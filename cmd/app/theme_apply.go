package main

import (
	"github.com/charmbracelet/lipgloss/v2"

	"github.com/sessionaut/sessionaut/pkg/config"
	"github.com/sessionaut/sessionaut/pkg/theme"
)

// currentPalette holds the active color palette. View code reads it on
// every render so a theme switch takes effect on the next frame.
var currentPalette = theme.Default()

// Derived styles rebuilt whenever the palette changes
var (
	accentStyle   lipgloss.Style
	dimStyle      lipgloss.Style
	warningStyle  lipgloss.Style
	dangerStyle   lipgloss.Style
	successStyle  lipgloss.Style
	infoStyle     lipgloss.Style
	textStyle     lipgloss.Style
	headerStyle   lipgloss.Style
	cursorStyle   lipgloss.Style
	selectedStyle lipgloss.Style
	borderStyle   lipgloss.Style
)

func init() {
	rebuildStyles()
}

// applyTheme resolves the configured palette, including user overrides and
// environment variables, and rebuilds the derived styles
func applyTheme(cfg *config.AppConfig) {
	currentPalette = theme.FromEnv(theme.FromConfig(cfg))
	rebuildStyles()
}

func rebuildStyles() {
	accentStyle = lipgloss.NewStyle().Foreground(currentPalette.Accent)
	dimStyle = lipgloss.NewStyle().Foreground(currentPalette.Dim)
	warningStyle = lipgloss.NewStyle().Foreground(currentPalette.Warning)
	dangerStyle = lipgloss.NewStyle().Foreground(currentPalette.Danger)
	successStyle = lipgloss.NewStyle().Foreground(currentPalette.Success)
	infoStyle = lipgloss.NewStyle().Foreground(currentPalette.Info)
	textStyle = lipgloss.NewStyle().Foreground(currentPalette.Text)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(currentPalette.Accent)
	cursorStyle = lipgloss.NewStyle().Foreground(currentPalette.Text).Background(currentPalette.CursorBG)
	selectedStyle = lipgloss.NewStyle().Foreground(currentPalette.Text).Background(currentPalette.SelectedBG)
	borderStyle = lipgloss.NewStyle().Foreground(currentPalette.Border)
}
