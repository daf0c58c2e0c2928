package theme

import (
	"image/color"

	"github.com/charmbracelet/lipgloss/v2"

	"github.com/sessionaut/sessionaut/pkg/config"
)

// FromConfig resolves the configured theme and applies per-color overrides
// from the appearance section.
func FromConfig(cfg *config.AppConfig) Palette {
	base := FromName(cfg.Appearance.Theme)
	if len(cfg.Appearance.Overrides) == 0 {
		return base
	}
	return applyOverrides(base, cfg.Appearance.Overrides)
}

// applyOverrides overlays named colors onto the palette. Unknown keys are
// ignored. Overriding accent also moves selected_bg unless that is
// overridden itself.
func applyOverrides(base Palette, overrides map[string]string) Palette {
	set := func(key string, apply func(color.Color)) {
		if v, ok := overrides[key]; ok && v != "" {
			apply(lipgloss.Color(v))
		}
	}

	set("accent", func(c color.Color) { base.Accent = c; base.SelectedBG = c })
	set("warning", func(c color.Color) { base.Warning = c })
	set("dim", func(c color.Color) { base.Dim = c })
	set("success", func(c color.Color) { base.Success = c })
	set("danger", func(c color.Color) { base.Danger = c })
	set("progress", func(c color.Color) { base.Progress = c })
	set("unknown", func(c color.Color) { base.Unknown = c })
	set("info", func(c color.Color) { base.Info = c })
	set("text", func(c color.Color) { base.Text = c })
	set("gray", func(c color.Color) { base.Gray = c })
	set("selected_bg", func(c color.Color) { base.SelectedBG = c })
	set("cursor_bg", func(c color.Color) { base.CursorBG = c })
	set("cursor_selected_bg", func(c color.Color) { base.CursorSelectedBG = c })
	set("border", func(c color.Color) { base.Border = c })
	set("muted_bg", func(c color.Color) { base.MutedBG = c })
	set("shade_bg", func(c color.Color) { base.ShadeBG = c })
	set("dark_bg", func(c color.Color) { base.DarkBG = c })
	return base
}
