package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/caredesk/caredesk/internal/form"
	"github.com/caredesk/caredesk/internal/registration"
	"github.com/caredesk/caredesk/internal/tui/styles"
)

// cursorMode is the cursor style of new text inputs.
var cursorMode = cursor.CursorBlink

type fieldKind int

const (
	textField fieldKind = iota
	choiceField
)

type choice struct {
	label string
	value string
}

// field is one labelled input. Keys match the form.Errors keys produced by
// validation so messages land next to the right input.
type field struct {
	key      string
	label    string
	kind     fieldKind
	input    textinput.Model
	choices  []choice
	selected int
	hidden   bool
}

func newTextField(key, label, placeholder string) field {
	in := textinput.New()
	in.Prompt = ""
	in.Placeholder = placeholder
	in.CharLimit = 120
	in.Width = 32
	in.Cursor.SetMode(cursorMode)
	return field{key: key, label: label, kind: textField, input: in}
}

func newPasswordField(key, label string) field {
	f := newTextField(key, label, "")
	f.input.EchoMode = textinput.EchoPassword
	f.input.EchoCharacter = '•'
	return f
}

func newChoiceField(key, label string, choices []choice) field {
	return field{key: key, label: label, kind: choiceField, choices: choices}
}

func (f field) value() string {
	if f.kind == choiceField {
		if len(f.choices) == 0 {
			return ""
		}
		return f.choices[f.selected].value
	}
	if f.input.EchoMode == textinput.EchoPassword {
		return f.input.Value()
	}
	return strings.TrimSpace(f.input.Value())
}

func (f *field) setValue(value string) {
	if f.kind == textField {
		f.input.SetValue(value)
		return
	}
	for i, c := range f.choices {
		if c.value == value {
			f.selected = i
			return
		}
	}
}

// setChoices replaces the options, keeping the current value when it is
// still offered.
func (f *field) setChoices(choices []choice) {
	current := f.value()
	f.choices = choices
	f.selected = 0
	f.setValue(current)
}

func (f *field) cycle(delta int) {
	if n := len(f.choices); n > 0 {
		f.selected = (f.selected + delta + n) % n
	}
}

type fieldSet struct {
	fields []field
	focus  int
	errors form.Errors
}

func newFieldSet(fields ...field) fieldSet {
	s := fieldSet{fields: fields}
	s.focusIndex(0)
	return s
}

func (s *fieldSet) get(key string) *field {
	for i := range s.fields {
		if s.fields[i].key == key {
			return &s.fields[i]
		}
	}
	return nil
}

func (s *fieldSet) value(key string) string {
	if f := s.get(key); f != nil {
		return f.value()
	}
	return ""
}

func (s *fieldSet) focused() *field {
	if len(s.fields) == 0 {
		return nil
	}
	return &s.fields[s.focus]
}

func (s *fieldSet) focusIndex(i int) tea.Cmd {
	if len(s.fields) == 0 {
		return nil
	}
	s.focus = (i + len(s.fields)) % len(s.fields)
	var cmd tea.Cmd
	for j := range s.fields {
		if s.fields[j].kind != textField {
			continue
		}
		if j == s.focus {
			cmd = s.fields[j].input.Focus()
		} else {
			s.fields[j].input.Blur()
		}
	}
	return cmd
}

func (s *fieldSet) focusKey(key string) tea.Cmd {
	for i := range s.fields {
		if s.fields[i].key == key {
			return s.focusIndex(i)
		}
	}
	return nil
}

func (s *fieldSet) next() tea.Cmd { return s.move(1) }
func (s *fieldSet) prev() tea.Cmd { return s.move(-1) }

// move shifts focus by delta, skipping hidden fields.
func (s *fieldSet) move(delta int) tea.Cmd {
	n := len(s.fields)
	for i := 1; i <= n; i++ {
		j := ((s.focus+delta*i)%n + n) % n
		if !s.fields[j].hidden {
			return s.focusIndex(j)
		}
	}
	return nil
}

func (s *fieldSet) setHidden(key string, hidden bool) {
	if f := s.get(key); f != nil {
		f.hidden = hidden
	}
	if cur := s.focused(); cur != nil && cur.hidden {
		s.prev()
	}
}

// onLast reports whether no visible field follows the focused one.
func (s *fieldSet) onLast() bool {
	for j := s.focus + 1; j < len(s.fields); j++ {
		if !s.fields[j].hidden {
			return false
		}
	}
	return true
}

func (s *fieldSet) reset() {
	for i := range s.fields {
		if s.fields[i].kind == textField {
			s.fields[i].input.Reset()
		} else {
			s.fields[i].selected = 0
		}
	}
	s.errors = nil
	s.focusIndex(0)
}

// update routes a key to the focused field. changed reports a choice that
// moved, so callers can react to dependent fields.
func (s *fieldSet) update(msg tea.KeyMsg) (changed bool, cmd tea.Cmd) {
	f := s.focused()
	if f == nil {
		return false, nil
	}
	if f.kind == choiceField {
		switch msg.String() {
		case "left", "h":
			f.cycle(-1)
			return true, nil
		case "right", "l", " ":
			f.cycle(1)
			return true, nil
		}
		return false, nil
	}
	f.input, cmd = f.input.Update(msg)
	return false, cmd
}

// setErrors records validation failures and focuses the first one.
func (s *fieldSet) setErrors(err error) tea.Cmd {
	s.errors = fieldErrors(err)
	for i := range s.fields {
		if _, bad := s.errors[s.fields[i].key]; bad {
			return s.focusIndex(i)
		}
	}
	return nil
}

func (s *fieldSet) clearErrors() { s.errors = nil }

// restyle applies the palette to every text input.
func (s *fieldSet) restyle(st styles.Styles) {
	for i := range s.fields {
		in := &s.fields[i].input
		in.TextStyle = st.Input
		in.PlaceholderStyle = st.Placeholder
		in.Cursor.Style = st.Focus
	}
}

func (s fieldSet) view(st styles.Styles) string {
	var b strings.Builder
	for i, f := range s.fields {
		if f.hidden {
			continue
		}
		label := st.Muted.Render(f.label)
		marker := "  "
		if i == s.focus {
			label = st.Focus.Render(f.label)
			marker = st.Focus.Render("› ")
		}
		b.WriteString(marker + label + "\n")

		switch f.kind {
		case choiceField:
			if len(f.choices) == 0 {
				b.WriteString("    " + st.Muted.Render("(none available)") + "\n")
			} else {
				b.WriteString("    " + st.Dropdown.Render("‹ "+f.choices[f.selected].label+" ›") + "\n")
			}
		default:
			b.WriteString("    " + f.input.View() + "\n")
		}

		if msg, bad := s.errors[f.key]; bad {
			b.WriteString("    " + st.Error.Render(f.label+" "+msg) + "\n")
		}
	}
	return b.String()
}

// fieldErrors extracts per-field messages from validation errors.
func fieldErrors(err error) form.Errors {
	var formErr *form.Error
	if errors.As(err, &formErr) {
		return formErr.Fields
	}
	var stepErr *registration.ValidationError
	if errors.As(err, &stepErr) {
		return stepErr.Fields
	}
	return nil
}
