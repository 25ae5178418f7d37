// Package components provides reusable TUI components.
package components

import (
	"fmt"
	"strings"

	"github.com/caredesk/caredesk/internal/tui/styles"
)

// EmptyState is shown in place of a list that has nothing to show.
type EmptyState struct {
	// Icon is an optional leading glyph.
	Icon     string
	Title    string
	Subtitle string
	// Suggestions are keys or commands that resolve the empty state.
	Suggestions []Suggestion
}

// Suggestion is a key or command with a short description.
type Suggestion struct {
	Command     string
	Description string
}

// Render renders the empty state with the given styles.
func (e EmptyState) Render(styleSet styles.Styles) string {
	var lines []string

	titleLine := e.Title
	if e.Icon != "" {
		titleLine = e.Icon + "  " + titleLine
	}
	lines = append(lines, styleSet.Muted.Render(titleLine))

	if e.Subtitle != "" {
		lines = append(lines, styleSet.Muted.Render(e.Subtitle))
	}

	if len(e.Suggestions) > 0 {
		lines = append(lines, "", styleSet.Text.Render("What you can do:"))
		for _, s := range e.Suggestions {
			line := "  " + styleSet.Accent.Render(s.Command)
			if s.Description != "" {
				line += styleSet.Muted.Render("  " + s.Description)
			}
			lines = append(lines, line)
		}
	}

	return strings.Join(lines, "\n")
}

// RenderCompact renders a single-line empty state.
func (e EmptyState) RenderCompact(styleSet styles.Styles) string {
	line := e.Title
	if e.Icon != "" {
		line = e.Icon + " " + line
	}
	if len(e.Suggestions) > 0 {
		line += fmt.Sprintf(" Try: %s", e.Suggestions[0].Command)
	}
	return styleSet.Muted.Render(line)
}

// EmptyDoctors is shown when no assigned doctor offers the selected service.
func EmptyDoctors(serviceName string) EmptyState {
	title := "No doctors available"
	if serviceName != "" {
		title = fmt.Sprintf("No doctors available for %s", serviceName)
	}
	return EmptyState{
		Icon:     "+",
		Title:    title,
		Subtitle: "Only doctors assigned to your account are listed.",
		Suggestions: []Suggestion{
			{Command: "←/→ on Service", Description: "pick another service"},
		},
	}
}

// EmptyServices is shown when the catalog could not be loaded or is empty.
func EmptyServices() EmptyState {
	return EmptyState{
		Icon:     "!",
		Title:    "No services to book",
		Subtitle: "The service catalog is empty or failed to load.",
		Suggestions: []Suggestion{
			{Command: "ctrl+l", Description: "reload the catalog"},
			{Command: "caredesk devserver", Description: "run the local API"},
		},
	}
}

// EmptyHistory is shown before any registration has been submitted from
// this machine.
func EmptyHistory() EmptyState {
	return EmptyState{
		Icon:     "#",
		Title:    "No registrations yet",
		Subtitle: "Registrations you submit are kept here.",
		Suggestions: []Suggestion{
			{Command: "esc", Description: "back to the registration form"},
		},
	}
}
