// Package platform reports the host's light/dark appearance.
package platform

import (
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/caredesk/caredesk/internal/theme"
)

// AppearanceEnv overrides detection when set to light or dark.
const AppearanceEnv = "CAREDESK_APPEARANCE"

// DetectFunc reports the current appearance.
type DetectFunc func() theme.Appearance

// Detect checks the environment override, then the OS setting, then the
// terminal background.
func Detect() theme.Appearance {
	if a := FromEnv(); a != theme.AppearanceUnknown {
		return a
	}
	if a := systemAppearance(); a != theme.AppearanceUnknown {
		return a
	}
	if lipgloss.HasDarkBackground() {
		return theme.AppearanceDark
	}
	return theme.AppearanceLight
}

// Poll is the detector used by the watcher. It never queries the terminal,
// which would race with a running TUI for stdin.
func Poll() theme.Appearance {
	if a := FromEnv(); a != theme.AppearanceUnknown {
		return a
	}
	return systemAppearance()
}

// FromEnv reads AppearanceEnv.
func FromEnv() theme.Appearance {
	return theme.ParseAppearance(os.Getenv(AppearanceEnv))
}
