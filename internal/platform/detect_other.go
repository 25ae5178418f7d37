//go:build !darwin && !linux

package platform

import "github.com/caredesk/caredesk/internal/theme"

func systemAppearance() theme.Appearance {
	return theme.AppearanceUnknown
}
