package components

import (
	"strings"

	"github.com/caredesk/caredesk/internal/registration"
	"github.com/caredesk/caredesk/internal/tui/styles"
)

// KeyHint is a key binding shown in the footer.
type KeyHint struct {
	Key     string
	Label   string
	Enabled bool
}

// RenderKeyHints renders enabled hints as "key label  key label".
func RenderKeyHints(styleSet styles.Styles, hints []KeyHint) string {
	var parts []string
	for _, hint := range hints {
		if !hint.Enabled {
			continue
		}
		parts = append(parts, styleSet.Accent.Bold(true).Render(hint.Key)+" "+styleSet.Muted.Render(hint.Label))
	}
	return strings.Join(parts, "  ")
}

// GlobalHints are available on every screen.
func GlobalHints(signedIn bool) []KeyHint {
	return []KeyHint{
		{Key: "ctrl+t", Label: "theme", Enabled: true},
		{Key: "f2", Label: "settings", Enabled: true},
		{Key: "f3", Label: "history", Enabled: signedIn},
		{Key: "ctrl+c", Label: "quit", Enabled: true},
	}
}

// WizardHints returns the bindings for a registration step.
func WizardHints(step registration.Step) []KeyHint {
	switch step {
	case registration.StepReview:
		return []KeyHint{
			{Key: "enter", Label: "submit", Enabled: true},
			{Key: "1-3", Label: "edit step", Enabled: true},
			{Key: "esc", Label: "back", Enabled: true},
		}
	case registration.StepSubmitted:
		return []KeyHint{
			{Key: "n", Label: "new registration", Enabled: true},
		}
	default:
		return []KeyHint{
			{Key: "tab", Label: "next field", Enabled: true},
			{Key: "←/→", Label: "change choice", Enabled: true},
			{Key: "enter", Label: "continue", Enabled: true},
			{Key: "esc", Label: "back", Enabled: step != registration.StepPatient},
		}
	}
}
