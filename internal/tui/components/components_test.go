package components

import (
	"strings"
	"testing"

	"github.com/caredesk/caredesk/internal/registration"
	"github.com/caredesk/caredesk/internal/theme"
	"github.com/caredesk/caredesk/internal/tui/styles"
)

func TestRenderKeyHintsSkipsDisabled(t *testing.T) {
	styleSet := styles.DefaultStyles()
	out := RenderKeyHints(styleSet, GlobalHints(false))

	if !strings.Contains(out, "ctrl+t") || !strings.Contains(out, "theme") {
		t.Errorf("expected theme hint, got: %s", out)
	}
	if strings.Contains(out, "history") {
		t.Errorf("history hint should be hidden before sign-in, got: %s", out)
	}
	if RenderKeyHints(styleSet, nil) != "" {
		t.Error("expected empty output for no hints")
	}
}

func TestWizardHints(t *testing.T) {
	styleSet := styles.DefaultStyles()

	first := RenderKeyHints(styleSet, WizardHints(registration.StepPatient))
	if strings.Contains(first, "back") {
		t.Errorf("first step cannot go back, got: %s", first)
	}
	if review := RenderKeyHints(styleSet, WizardHints(registration.StepReview)); !strings.Contains(review, "submit") {
		t.Errorf("review step should offer submit, got: %s", review)
	}
	if done := RenderKeyHints(styleSet, WizardHints(registration.StepSubmitted)); !strings.Contains(done, "new registration") {
		t.Errorf("submitted step should offer a new registration, got: %s", done)
	}
}

func TestRenderStepTabs(t *testing.T) {
	out := RenderStepTabs(styles.DefaultStyles(), registration.StepInsurance)
	for _, want := range []string{"✓ Patient", "✓ Appointment", "3 Insurance", "4 Review"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in tabs, got: %s", want, out)
		}
	}
}

func TestRenderThemeBadge(t *testing.T) {
	styleSet := styles.DefaultStyles()

	system := theme.NewState(nil, theme.AppearanceDark).Snapshot()
	if out := RenderThemeBadge(styleSet, system); !strings.Contains(out, "System (dark)") {
		t.Errorf("expected resolved system label, got: %s", out)
	}

	light := theme.NewState(nil, theme.AppearanceDark)
	if err := light.SetMode(theme.ModeLight); err != nil {
		t.Fatal(err)
	}
	light.Wait()
	if out := RenderThemeBadge(styleSet, light.Snapshot()); !strings.Contains(out, "Light") {
		t.Errorf("expected explicit light label, got: %s", out)
	}
}
