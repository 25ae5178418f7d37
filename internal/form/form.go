// Package form holds field validation shared by the login, reset and
// registration screens.
package form

import (
	"fmt"
	"net/mail"
	"sort"
	"strings"
)

// Errors maps a field name to its validation message.
type Errors map[string]string

// Add records msg for field unless the field already has an error.
func (e Errors) Add(field, msg string) {
	if _, exists := e[field]; !exists {
		e[field] = msg
	}
}

// Check records msg for field when err is non-nil.
func (e Errors) Check(field string, err error) {
	if err != nil {
		e.Add(field, err.Error())
	}
}

// Fields returns the failing field names in sorted order.
func (e Errors) Fields() []string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// Err returns nil when there are no errors.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return &Error{Fields: e}
}

// Error is returned when one or more fields fail validation.
type Error struct {
	Fields Errors
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields.Fields() {
		parts = append(parts, fmt.Sprintf("%s: %s", f, e.Fields[f]))
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// Required fails on blank values.
func Required(value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("is required")
	}
	return nil
}

// Email checks for a single bare address such as name@example.com.
func Email(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return fmt.Errorf("is required")
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value || addr.Name != "" {
		return fmt.Errorf("is not a valid email address")
	}
	at := strings.LastIndex(value, "@")
	if at < 1 || !strings.Contains(value[at+1:], ".") {
		return fmt.Errorf("is not a valid email address")
	}
	return nil
}

// Phone accepts 7 to 15 digits with optional leading +, spaces, dashes,
// dots and parentheses.
func Phone(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return fmt.Errorf("is required")
	}
	digits := 0
	for i, r := range value {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '+' && i == 0:
		case r == ' ' || r == '-' || r == '.' || r == '(' || r == ')':
		default:
			return fmt.Errorf("contains invalid character %q", r)
		}
	}
	if digits < 7 || digits > 15 {
		return fmt.Errorf("must have 7 to 15 digits")
	}
	return nil
}

// Digits checks for exactly n ASCII digits.
func Digits(value string, n int) error {
	value = strings.TrimSpace(value)
	if len(value) != n {
		return fmt.Errorf("must be %d digits", n)
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return fmt.Errorf("must be %d digits", n)
		}
	}
	return nil
}
