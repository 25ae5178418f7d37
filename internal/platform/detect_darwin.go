//go:build darwin

package platform

import (
	"os/exec"
	"strings"

	"github.com/caredesk/caredesk/internal/theme"
)

func systemAppearance() theme.Appearance {
	out, err := exec.Command("defaults", "read", "-g", "AppleInterfaceStyle").Output()
	if err != nil {
		// The key is absent in light mode.
		return theme.AppearanceLight
	}
	if strings.EqualFold(strings.TrimSpace(string(out)), "dark") {
		return theme.AppearanceDark
	}
	return theme.AppearanceLight
}
