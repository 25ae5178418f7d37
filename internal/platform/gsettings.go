package platform

import (
	"strings"

	"github.com/caredesk/caredesk/internal/theme"
)

// parseGSettings maps the GNOME interface settings to an appearance.
// colorScheme is the output of "gsettings get org.gnome.desktop.interface
// color-scheme" and gtkTheme that of "... gtk-theme"; either may be empty
// when the key could not be read.
func parseGSettings(colorScheme, gtkTheme string) theme.Appearance {
	switch unquoteGVariant(colorScheme) {
	case "prefer-dark":
		return theme.AppearanceDark
	case "prefer-light":
		return theme.AppearanceLight
	}

	// Older desktops only signal dark mode through the theme name.
	name := strings.ToLower(unquoteGVariant(gtkTheme))
	switch {
	case name == "":
		if unquoteGVariant(colorScheme) == "default" {
			return theme.AppearanceLight
		}
		return theme.AppearanceUnknown
	case strings.Contains(name, "dark"):
		return theme.AppearanceDark
	default:
		return theme.AppearanceLight
	}
}

func unquoteGVariant(s string) string {
	return strings.Trim(strings.TrimSpace(s), `'"`)
}
