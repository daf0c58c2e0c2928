package theme

import (
	"image/color"
	"os"

	"github.com/charmbracelet/lipgloss/v2"

	"github.com/sessionaut/sessionaut/pkg/model"
)

// Palette defines the core colors used by the TUI. It uses
// lipgloss.TerminalColor so themes can be ANSI indices, truecolor hex values,
// or AdaptiveColor depending on the terminal.
type Palette struct {
	// Accents and roles
	Accent  color.Color // primary accent (selection/background)
	Warning color.Color // headings, hints
	Dim     color.Color // subtle text

	// Status colors
	Success  color.Color // running sessions
	Danger   color.Color // failed/errored sessions
	Progress color.Color // pending/preparing sessions
	Unknown  color.Color // unknown/neutral

	// Additional accents
	Info color.Color // cyan accents
	Text color.Color // bright white text
	Gray color.Color // gray

	// Specific backgrounds
	SelectedBG       color.Color // selected row bg (usually == Accent)
	CursorBG         color.Color // cursor row bg
	CursorSelectedBG color.Color // cursor on selected row bg
	Border           color.Color // border color

	// Neutrals/backgrounds
	MutedBG color.Color // low-contrast background (e.g., inactive buttons)
	ShadeBG color.Color // subtle row highlight background
	DarkBG  color.Color // dark panel background when needed
}

// Default returns a palette built from the basic ANSI colors, usable on
// any terminal.
func Default() Palette {
	return Palette{
		Accent:           lipgloss.Color("13"), // magentaBright
		Warning:          lipgloss.Color("11"),
		Dim:              lipgloss.Color("8"),
		Success:          lipgloss.Color("10"),
		Danger:           lipgloss.Color("9"),
		Progress:         lipgloss.Color("11"),
		Unknown:          lipgloss.Color("8"),
		Info:             lipgloss.Color("14"),
		Text:             lipgloss.Color("15"),
		Gray:             lipgloss.Color("8"),
		SelectedBG:       lipgloss.Color("13"), // same as Accent by default
		CursorBG:         lipgloss.Color("14"),
		CursorSelectedBG: lipgloss.Color("14"), // cyan
		Border:           lipgloss.Color("13"),
		MutedBG:          lipgloss.Color("238"),
		ShadeBG:          lipgloss.Color("240"),
		DarkBG:           lipgloss.Color("0"),
	}
}

// StatusColor returns the terminal color for a session status
func StatusColor(status model.SessionStatus) color.Color {
	return lipgloss.Color(model.StatusColors.Get(status))
}

// StatusStyle returns a lipgloss style rendering the status in its color
func StatusStyle(status model.SessionStatus) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(StatusColor(status))
}

// FromEnv overlays the provided base palette with environment-provided colors.
// Hex values like "#88c0d0" or ANSI numbers like "33" are both supported.
//
// Supported variables:
//
//	SESSIONAUT_COLOR_ACCENT
//	SESSIONAUT_COLOR_WARNING
//	SESSIONAUT_COLOR_DIM
//	SESSIONAUT_COLOR_SUCCESS
//	SESSIONAUT_COLOR_DANGER
//	SESSIONAUT_COLOR_PROGRESS
//	SESSIONAUT_COLOR_UNKNOWN
//	SESSIONAUT_COLOR_INFO
//	SESSIONAUT_COLOR_TEXT
//	SESSIONAUT_COLOR_GRAY
//	SESSIONAUT_BG_SELECTED
//	SESSIONAUT_BG_CURSOR
//	SESSIONAUT_BG_CURSOR_SELECTED
//	SESSIONAUT_COLOR_BORDER
func FromEnv(base Palette) Palette {
	set := func(env string, apply func(color.Color)) {
		if v := os.Getenv(env); v != "" {
			apply(lipgloss.Color(v))
		}
	}

	set("SESSIONAUT_COLOR_ACCENT", func(c color.Color) { base.Accent = c; base.SelectedBG = c })
	set("SESSIONAUT_COLOR_WARNING", func(c color.Color) { base.Warning = c })
	set("SESSIONAUT_COLOR_DIM", func(c color.Color) { base.Dim = c })
	set("SESSIONAUT_COLOR_SUCCESS", func(c color.Color) { base.Success = c })
	set("SESSIONAUT_COLOR_DANGER", func(c color.Color) { base.Danger = c })
	set("SESSIONAUT_COLOR_PROGRESS", func(c color.Color) { base.Progress = c })
	set("SESSIONAUT_COLOR_UNKNOWN", func(c color.Color) { base.Unknown = c })
	set("SESSIONAUT_COLOR_INFO", func(c color.Color) { base.Info = c })
	set("SESSIONAUT_COLOR_TEXT", func(c color.Color) { base.Text = c })
	set("SESSIONAUT_COLOR_GRAY", func(c color.Color) { base.Gray = c })
	set("SESSIONAUT_BG_SELECTED", func(c color.Color) { base.SelectedBG = c })
	set("SESSIONAUT_BG_CURSOR", func(c color.Color) { base.CursorBG = c })
	set("SESSIONAUT_BG_CURSOR_SELECTED", func(c color.Color) { base.CursorSelectedBG = c })
	set("SESSIONAUT_COLOR_BORDER", func(c color.Color) { base.Border = c })
	set("SESSIONAUT_BG_MUTED", func(c color.Color) { base.MutedBG = c })
	set("SESSIONAUT_BG_SHADE", func(c color.Color) { base.ShadeBG = c })
	set("SESSIONAUT_BG_DARK", func(c color.Color) { base.DarkBG = c })
	return base
}
