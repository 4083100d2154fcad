// Package themes is the static catalog of visual presets a form can pick.
// Presets are immutable constants; unrecognized ids fall back to "minimal".
package themes

import "github.com/openformhq/openform/model"

const fontFamily = `"Rubik", sans-serif`

var Presets = []model.ThemeConfig{
	{
		ID:              "midnight",
		Name:            "Midnight",
		PrimaryColor:    "#8B5CF6",
		BackgroundColor: "#0F0F1A",
		TextColor:       "#FFFFFF",
		AccentColor:     "#A78BFA",
		FontFamily:      fontFamily,
	},
	{
		ID:              "ocean",
		Name:            "Ocean",
		PrimaryColor:    "#0EA5E9",
		BackgroundColor: "#0C1929",
		TextColor:       "#F0F9FF",
		AccentColor:     "#38BDF8",
		FontFamily:      fontFamily,
	},
	{
		ID:              "sunset",
		Name:            "Sunset",
		PrimaryColor:    "#F97316",
		BackgroundColor: "#FFFBEB",
		TextColor:       "#1C1917",
		AccentColor:     "#FB923C",
		FontFamily:      fontFamily,
	},
	{
		ID:              "forest",
		Name:            "Forest",
		PrimaryColor:    "#10B981",
		BackgroundColor: "#022C22",
		TextColor:       "#ECFDF5",
		AccentColor:     "#34D399",
		FontFamily:      fontFamily,
	},
	{
		ID:              "lavender",
		Name:            "Lavender",
		PrimaryColor:    "#A855F7",
		BackgroundColor: "#FAF5FF",
		TextColor:       "#1E1B4B",
		AccentColor:     "#C084FC",
		FontFamily:      fontFamily,
	},
	{
		ID:              "minimal",
		Name:            "Minimal",
		PrimaryColor:    "#18181B",
		BackgroundColor: "#FFFFFF",
		TextColor:       "#18181B",
		AccentColor:     "#3F3F46",
		FontFamily:      fontFamily,
	},
}

// Get returns the preset for the id, or the minimal preset when the id is
// not recognized. Never fails.
func Get(id string) model.ThemeConfig {
	for _, theme := range Presets {
		if theme.ID == id {
			return theme
		}
	}
	return Presets[len(Presets)-1] // minimal
}

// CSSVariables renders a preset as CSS custom properties for the public
// form page.
func CSSVariables(theme model.ThemeConfig) map[string]string {
	return map[string]string{
		"--theme-primary":    theme.PrimaryColor,
		"--theme-background": theme.BackgroundColor,
		"--theme-text":       theme.TextColor,
		"--theme-accent":     theme.AccentColor,
		"--theme-font":       theme.FontFamily,
	}
}
