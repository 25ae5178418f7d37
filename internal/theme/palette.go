package theme

// Palette defines the semantic color roles used by every screen. Adding a
// role means adding it to both palettes below.
type Palette struct {
	Background          string
	Surface             string
	Text                string
	TextMuted           string
	Border              string
	Primary             string
	PrimaryText         string
	Accent              string
	Success             string
	Warning             string
	Error               string
	Info                string
	Link                string
	InputBackground     string
	InputText           string
	Placeholder         string
	DropdownBackground  string
	DropdownText        string
	ActiveTabBackground string
	ActiveTabText       string
	InactiveTabText     string
	StatusbarColor      string
}

// LightPalette is used when the effective theme is light.
var LightPalette = Palette{
	Background:          "#FFFFFF",
	Surface:             "#F4F7FB",
	Text:                "#1B2430",
	TextMuted:           "#5F6B7A",
	Border:              "#D0D7E2",
	Primary:             "#055FFC",
	PrimaryText:         "#FFFFFF",
	Accent:              "#0A9396",
	Success:             "#1F8B4C",
	Warning:             "#B7791F",
	Error:               "#D64545",
	Info:                "#2B6CB0",
	Link:                "#055FFC",
	InputBackground:     "#FFFFFF",
	InputText:           "#1B2430",
	Placeholder:         "#8A94A6",
	DropdownBackground:  "#FFFFFF",
	DropdownText:        "#1B2430",
	ActiveTabBackground: "#055FFC",
	ActiveTabText:       "#FFFFFF",
	InactiveTabText:     "#5F6B7A",
	StatusbarColor:      "#E8EEF7",
}

// DarkPalette is used when the effective theme is dark.
var DarkPalette = Palette{
	Background:          "#0B0F14",
	Surface:             "#121821",
	Text:                "#E6EDF3",
	TextMuted:           "#8B9AAE",
	Border:              "#223043",
	Primary:             "#5B8DEF",
	PrimaryText:         "#0B0F14",
	Accent:              "#2EC4B6",
	Success:             "#3FB950",
	Warning:             "#D29922",
	Error:               "#F85149",
	Info:                "#58A6FF",
	Link:                "#7AA2F7",
	InputBackground:     "#161D27",
	InputText:           "#E6EDF3",
	Placeholder:         "#6B7A8F",
	DropdownBackground:  "#161D27",
	DropdownText:        "#E6EDF3",
	ActiveTabBackground: "#5B8DEF",
	ActiveTabText:       "#0B0F14",
	InactiveTabText:     "#8B9AAE",
	StatusbarColor:      "#05080C",
}

// PaletteFor returns the static palette for an effective theme.
func PaletteFor(effective Effective) Palette {
	if effective == EffectiveDark {
		return DarkPalette
	}
	return LightPalette
}

// Tokens returns the palette as ordered name/value pairs, for listings.
func (p Palette) Tokens() []Token {
	return []Token{
		{"background", p.Background},
		{"surface", p.Surface},
		{"text", p.Text},
		{"textMuted", p.TextMuted},
		{"border", p.Border},
		{"primary", p.Primary},
		{"primaryText", p.PrimaryText},
		{"accent", p.Accent},
		{"success", p.Success},
		{"warning", p.Warning},
		{"error", p.Error},
		{"info", p.Info},
		{"link", p.Link},
		{"inputBackground", p.InputBackground},
		{"inputText", p.InputText},
		{"placeholder", p.Placeholder},
		{"dropdownBackground", p.DropdownBackground},
		{"dropdownText", p.DropdownText},
		{"activeTabBackground", p.ActiveTabBackground},
		{"activeTabText", p.ActiveTabText},
		{"inactiveTabText", p.InactiveTabText},
		{"statusbarColor", p.StatusbarColor},
	}
}

// Token is a single named color.
type Token struct {
	Name  string
	Value string
}
