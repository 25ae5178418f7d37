package theme

// Resolve computes the effective theme. An explicit light or dark mode wins
// over the platform; system follows the platform and treats unknown as light.
func Resolve(mode Mode, appearance Appearance) Effective {
	switch mode {
	case ModeLight:
		return EffectiveLight
	case ModeDark:
		return EffectiveDark
	}
	if appearance == AppearanceDark {
		return EffectiveDark
	}
	return EffectiveLight
}
