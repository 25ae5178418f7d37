// Package theme resolves the active color palette from the user's mode
// preference and the platform appearance, and distributes it to the UI.
package theme

import (
	"errors"
	"fmt"
	"strings"
)

// Mode is the user-selectable theme preference.
type Mode string

// Theme modes.
const (
	ModeLight  Mode = "light"
	ModeDark   Mode = "dark"
	ModeSystem Mode = "system"
)

// ErrInvalidMode is returned when a mode string is not recognised.
var ErrInvalidMode = errors.New("invalid theme mode")

// Modes lists the selectable modes in display order.
func Modes() []Mode {
	return []Mode{ModeLight, ModeDark, ModeSystem}
}

// ParseMode parses a case-insensitive mode name.
func ParseMode(value string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(value))) {
	case ModeLight:
		return ModeLight, nil
	case ModeDark:
		return ModeDark, nil
	case ModeSystem:
		return ModeSystem, nil
	default:
		return "", fmt.Errorf("%w: %q (expected light, dark or system)", ErrInvalidMode, value)
	}
}

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeLight, ModeDark, ModeSystem:
		return true
	}
	return false
}

// Next cycles light -> dark -> system -> light.
func (m Mode) Next() Mode {
	switch m {
	case ModeLight:
		return ModeDark
	case ModeDark:
		return ModeSystem
	default:
		return ModeLight
	}
}

func (m Mode) String() string { return string(m) }

// Appearance is what the host environment reports. It is outside the
// application's control and may change at any time.
type Appearance string

// Platform appearances.
const (
	AppearanceUnknown Appearance = "unknown"
	AppearanceLight   Appearance = "light"
	AppearanceDark    Appearance = "dark"
)

// ParseAppearance maps a reported value to an Appearance. Anything that is
// not light or dark is unknown.
func ParseAppearance(value string) Appearance {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "light":
		return AppearanceLight
	case "dark":
		return AppearanceDark
	default:
		return AppearanceUnknown
	}
}

// Effective is the theme actually rendered. It is always light or dark.
type Effective string

// Effective themes.
const (
	EffectiveLight Effective = "light"
	EffectiveDark  Effective = "dark"
)

func (e Effective) String() string { return string(e) }
