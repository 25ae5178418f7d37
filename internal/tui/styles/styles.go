// Package styles turns a theme palette into lipgloss styles.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/caredesk/caredesk/internal/theme"
)

// Styles contains lipgloss styles derived from a palette.
type Styles struct {
	Palette theme.Palette

	App         lipgloss.Style
	Title       lipgloss.Style
	Text        lipgloss.Style
	Muted       lipgloss.Style
	Accent      lipgloss.Style
	Link        lipgloss.Style
	Panel       lipgloss.Style
	Border      lipgloss.Style
	Focus       lipgloss.Style
	Button      lipgloss.Style
	Input       lipgloss.Style
	Placeholder lipgloss.Style
	Dropdown    lipgloss.Style
	ActiveTab   lipgloss.Style
	InactiveTab lipgloss.Style
	StatusBar   lipgloss.Style
	Success     lipgloss.Style
	Warning     lipgloss.Style
	Error       lipgloss.Style
	Info        lipgloss.Style
}

// DefaultStyles builds styles from the light palette.
func DefaultStyles() Styles {
	return BuildStyles(theme.LightPalette)
}

// ForSnapshot builds styles for the snapshot's resolved palette.
func ForSnapshot(snap theme.Snapshot) Styles {
	return BuildStyles(snap.Palette)
}

// BuildStyles converts palette tokens into lipgloss styles.
func BuildStyles(p theme.Palette) Styles {
	color := func(token string) lipgloss.Color { return lipgloss.Color(token) }

	return Styles{
		Palette:     p,
		App:         lipgloss.NewStyle().Foreground(color(p.Text)).Background(color(p.Background)),
		Title:       lipgloss.NewStyle().Foreground(color(p.Text)).Bold(true),
		Text:        lipgloss.NewStyle().Foreground(color(p.Text)),
		Muted:       lipgloss.NewStyle().Foreground(color(p.TextMuted)),
		Accent:      lipgloss.NewStyle().Foreground(color(p.Accent)),
		Link:        lipgloss.NewStyle().Foreground(color(p.Link)).Underline(true),
		Panel:       lipgloss.NewStyle().Foreground(color(p.Text)).Background(color(p.Surface)).BorderStyle(lipgloss.RoundedBorder()).BorderForeground(color(p.Border)).Padding(0, 1),
		Border:      lipgloss.NewStyle().Foreground(color(p.Border)),
		Focus:       lipgloss.NewStyle().Foreground(color(p.Primary)).Bold(true),
		Button:      lipgloss.NewStyle().Foreground(color(p.PrimaryText)).Background(color(p.Primary)).Bold(true).Padding(0, 2),
		Input:       lipgloss.NewStyle().Foreground(color(p.InputText)).Background(color(p.InputBackground)),
		Placeholder: lipgloss.NewStyle().Foreground(color(p.Placeholder)),
		Dropdown:    lipgloss.NewStyle().Foreground(color(p.DropdownText)).Background(color(p.DropdownBackground)),
		ActiveTab:   lipgloss.NewStyle().Foreground(color(p.ActiveTabText)).Background(color(p.ActiveTabBackground)).Bold(true).Padding(0, 1),
		InactiveTab: lipgloss.NewStyle().Foreground(color(p.InactiveTabText)).Padding(0, 1),
		StatusBar:   lipgloss.NewStyle().Foreground(color(p.PrimaryText)).Background(color(p.StatusbarColor)).Padding(0, 1),
		Success:     lipgloss.NewStyle().Foreground(color(p.Success)),
		Warning:     lipgloss.NewStyle().Foreground(color(p.Warning)),
		Error:       lipgloss.NewStyle().Foreground(color(p.Error)),
		Info:        lipgloss.NewStyle().Foreground(color(p.Info)),
	}
}
