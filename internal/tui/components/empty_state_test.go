package components

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/caredesk/caredesk/internal/tui/styles"
)

func TestEmptyStateRender(t *testing.T) {
	styleSet := styles.DefaultStyles()

	tests := []struct {
		name    string
		es      EmptyState
		compact bool
		want    []string
		absent  []string
	}{
		{
			name:   "title only",
			es:     EmptyState{Title: "No registrations"},
			want:   []string{"No registrations"},
			absent: []string{"What you can do"},
		},
		{
			name: "icon subtitle and suggestions",
			es: EmptyState{
				Icon:        "+",
				Title:       "No services",
				Subtitle:    "The catalog is empty",
				Suggestions: []Suggestion{{Command: "ctrl+l", Description: "reload"}},
			},
			want: []string{"+  No services", "The catalog is empty", "What you can do", "ctrl+l", "reload"},
		},
		{
			name:    "compact keeps the first suggestion",
			es:      EmptyState{Title: "Empty", Suggestions: []Suggestion{{Command: "esc"}, {Command: "q"}}},
			compact: true,
			want:    []string{"Empty", "Try: esc"},
			absent:  []string{"\n", "Try: q"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.es.Render(styleSet)
			if tt.compact {
				out = tt.es.RenderCompact(styleSet)
			}
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
			for _, a := range tt.absent {
				assert.False(t, strings.Contains(out, a), "unexpected %q in %q", a, out)
			}
		})
	}
}

func TestPrebuiltEmptyStates(t *testing.T) {
	styleSet := styles.DefaultStyles()

	tests := []struct {
		name     string
		es       EmptyState
		expected []string
	}{
		{
			name:     "EmptyDoctors",
			es:       EmptyDoctors("Cardiology"),
			expected: []string{"No doctors available for Cardiology", "another service"},
		},
		{
			name:     "EmptyDoctors without service",
			es:       EmptyDoctors(""),
			expected: []string{"No doctors available"},
		},
		{
			name:     "EmptyServices",
			es:       EmptyServices(),
			expected: []string{"No services", "caredesk devserver"},
		},
		{
			name:     "EmptyHistory",
			es:       EmptyHistory(),
			expected: []string{"No registrations yet"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.es.Render(styleSet)
			for _, exp := range tt.expected {
				if !strings.Contains(result, exp) {
					t.Errorf("Expected %q in %s output, got: %s", exp, tt.name, result)
				}
			}
		})
	}
}
