package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/caredesk/caredesk/internal/registration"
	"github.com/caredesk/caredesk/internal/theme"
	"github.com/caredesk/caredesk/internal/tui/styles"
)

// RenderStepTabs renders the wizard steps as tabs with the current one
// highlighted. Completed steps are marked.
func RenderStepTabs(styleSet styles.Styles, current registration.Step) string {
	tabs := make([]string, 0, len(registration.FormSteps()))
	for i, step := range registration.FormSteps() {
		label := fmt.Sprintf("%d %s", i+1, step.Title())
		switch {
		case step == current:
			tabs = append(tabs, styleSet.ActiveTab.Render(label))
		case step < current:
			tabs = append(tabs, styleSet.InactiveTab.Render("✓ "+step.Title()))
		default:
			tabs = append(tabs, styleSet.InactiveTab.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// RenderThemeBadge shows the selected mode and, for system mode, what it
// resolved to.
func RenderThemeBadge(styleSet styles.Styles, snap theme.Snapshot) string {
	label := capitalize(string(snap.Mode))
	if snap.Mode == theme.ModeSystem {
		label = fmt.Sprintf("System (%s)", snap.Effective)
	}
	icon := "☀"
	if snap.Effective == theme.EffectiveDark {
		icon = "☾"
	}
	return styleSet.StatusBar.Render(icon + " " + label)
}

func capitalize(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "Unknown"
	}
	return strings.ToUpper(value[:1]) + value[1:]
}
