package models

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// EventType categorizes audit events.
type EventType string

const (
	// Session events
	EventTypeLoginSucceeded EventType = "auth.login_succeeded"
	EventTypeLoginFailed    EventType = "auth.login_failed"
	EventTypePasswordReset  EventType = "auth.password_reset"

	// Registration events
	EventTypeRegistrationSubmitted EventType = "registration.submitted"
	EventTypeRegistrationConfirmed EventType = "registration.confirmed"
	EventTypeRegistrationFailed    EventType = "registration.failed"

	// Preference events
	EventTypeThemeModeChanged EventType = "theme.mode_changed"
)

// EntityType identifies what an event is about.
type EntityType string

const (
	EntityTypeStaff        EntityType = "staff"
	EntityTypeRegistration EntityType = "registration"
	EntityTypePreference   EntityType = "preference"
)

// ErrInvalidEvent is returned for events missing a required field.
var ErrInvalidEvent = errors.New("invalid event")

// Event is an append-only audit log entry.
type Event struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`

	Type       EventType  `json:"type"`
	EntityType EntityType `json:"entity_type"`
	EntityID   string     `json:"entity_id"`

	// Payload holds one of the *Payload types below, JSON encoded.
	Payload json.RawMessage `json:"payload,omitempty"`

	Metadata map[string]string `json:"metadata,omitempty"`
}

// Validate checks the required fields.
func (e *Event) Validate() error {
	var missing []string
	if strings.TrimSpace(string(e.Type)) == "" {
		missing = append(missing, "type")
	}
	if strings.TrimSpace(string(e.EntityType)) == "" {
		missing = append(missing, "entity_type")
	}
	if strings.TrimSpace(e.EntityID) == "" {
		missing = append(missing, "entity_id")
	}
	if len(missing) > 0 {
		return errors.Join(ErrInvalidEvent, errors.New(strings.Join(missing, ", ")+" required"))
	}
	return nil
}

// SessionPayload is the payload for auth.* events. The entity is the
// staff email.
type SessionPayload struct {
	StaffID string `json:"staff_id,omitempty"`
	Name    string `json:"name,omitempty"`
	Role    string `json:"role,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// RegistrationPayload is the payload for registration.* events. The
// entity is the local registration ID.
type RegistrationPayload struct {
	PatientName  string `json:"patient_name,omitempty"`
	ServiceID    string `json:"service_id,omitempty"`
	PayableCents int64  `json:"payable_cents,omitempty"`
	RemoteID     string `json:"remote_id,omitempty"`
	Error        string `json:"error,omitempty"`
}

// ThemeModePayload is the payload for theme.mode_changed events.
type ThemeModePayload struct {
	Mode   string `json:"mode"`
	Source string `json:"source"` // "tui" or "cli"
}
