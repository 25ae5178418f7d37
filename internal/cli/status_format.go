package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/caredesk/caredesk/internal/models"
	"github.com/caredesk/caredesk/internal/theme"
)

func formatRegistrationStatus(status models.RegistrationStatus, palette theme.Palette) string {
	label, color := statusLabelForRegistration(status, palette)
	return colorize(formatStatusLabel(label, string(status)), color)
}

func statusLabelForRegistration(status models.RegistrationStatus, palette theme.Palette) (string, string) {
	switch status {
	case models.RegistrationStatusConfirmed:
		return "OK", palette.Success
	case models.RegistrationStatusFailed:
		return "ERR", palette.Error
	case models.RegistrationStatusSubmitted:
		return "WAIT", palette.Warning
	default:
		return "WARN", palette.Warning
	}
}

func formatStatusLabel(label, status string) string {
	normalized := strings.TrimSpace(status)
	if normalized != "" {
		normalized = strings.ReplaceAll(normalized, "_", " ")
	}
	if normalized == "" {
		return label
	}
	return fmt.Sprintf("%s %s", label, normalized)
}

// colorize is a no-op when stdout has no color profile, so piped output
// stays plain.
func colorize(text, color string) string {
	if color == "" || IsJSONOutput() {
		return text
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(text)
}
