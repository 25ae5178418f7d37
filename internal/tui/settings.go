package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/caredesk/caredesk/internal/theme"
)

type settingsScreen struct {
	selected theme.Mode
}

func newSettingsScreen(mode theme.Mode) settingsScreen {
	return settingsScreen{selected: mode}
}

func (m model) updateSettings(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	modes := theme.Modes()
	idx := 0
	for i, mode := range modes {
		if mode == m.settings.selected {
			idx = i
		}
	}

	switch msg.String() {
	case "esc", "q":
		m.close()
	case "left", "up", "h", "k":
		m.settings.selected = modes[(idx-1+len(modes))%len(modes)]
	case "right", "down", "l", "j", "tab":
		m.settings.selected = modes[(idx+1)%len(modes)]
	case "enter", " ":
		if err := m.cfg.Theme.SetMode(m.settings.selected); err != nil {
			m.setError(err)
			return m, nil
		}
		m.restyle()
		m.setStatus("Theme: " + string(m.settings.selected))
		return m, m.auditThemeChange(m.settings.selected)
	}
	return m, nil
}

func (m model) viewSettings() string {
	st := m.styles
	var b strings.Builder
	b.WriteString(st.Title.Render("Appearance") + "\n\n")

	options := make([]string, 0, len(theme.Modes()))
	for _, mode := range theme.Modes() {
		label := modeLabel(mode)
		if mode == m.snapshot.Mode {
			label += " ✓"
		}
		if mode == m.settings.selected {
			options = append(options, st.ActiveTab.Render(label))
		} else {
			options = append(options, st.InactiveTab.Render(label))
		}
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, options...) + "\n\n")

	b.WriteString(st.Muted.Render("Device appearance  ") + st.Text.Render(string(m.snapshot.Appearance)) + "\n")
	b.WriteString(st.Muted.Render("In use             ") + st.Text.Render(string(m.snapshot.Effective)) + "\n\n")

	b.WriteString(st.Muted.Render("Palette") + "\n")
	for _, token := range m.snapshot.Palette.Tokens() {
		swatch := lipgloss.NewStyle().Background(lipgloss.Color(token.Value)).Render("  ")
		b.WriteString(fmt.Sprintf("  %s %s %s\n", swatch, st.Text.Render(fmt.Sprintf("%-20s", token.Name)), st.Muted.Render(token.Value)))
	}

	b.WriteString("\n" + st.Muted.Render("←/→ choose  enter apply  esc close"))
	return st.Panel.Render(b.String())
}

func modeLabel(mode theme.Mode) string {
	switch mode {
	case theme.ModeLight:
		return "Light"
	case theme.ModeDark:
		return "Dark"
	default:
		return "System"
	}
}
