//go:build linux

package platform

import (
	"os/exec"

	"github.com/caredesk/caredesk/internal/theme"
)

const gnomeInterfaceSchema = "org.gnome.desktop.interface"

func systemAppearance() theme.Appearance {
	if _, err := exec.LookPath("gsettings"); err != nil {
		return theme.AppearanceUnknown
	}
	return parseGSettings(gsettingsGet("color-scheme"), gsettingsGet("gtk-theme"))
}

func gsettingsGet(key string) string {
	out, err := exec.Command("gsettings", "get", gnomeInterfaceSchema, key).Output()
	if err != nil {
		return ""
	}
	return string(out)
}
