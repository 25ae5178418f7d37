// Package models defines records persisted by CareDesk.
package models

import "time"

// RegistrationStatus tracks a submitted registration locally.
type RegistrationStatus string

// Registration statuses.
const (
	RegistrationStatusSubmitted RegistrationStatus = "submitted"
	RegistrationStatusConfirmed RegistrationStatus = "confirmed"
	RegistrationStatusFailed    RegistrationStatus = "failed"
)

// RegistrationRecord is the local history entry for a submitted
// patient registration.
type RegistrationRecord struct {
	// ID is the local identifier.
	ID string `json:"id"`

	// RemoteID is the identifier assigned by the API, once confirmed.
	RemoteID string `json:"remote_id,omitempty"`

	PatientName  string `json:"patient_name"`
	PatientPhone string `json:"patient_phone,omitempty"`

	ServiceID string `json:"service_id"`
	DoctorID  string `json:"doctor_id,omitempty"`

	// AppointmentDate is the calendar day of the visit. It reads back as UTC
	// midnight of that day.
	AppointmentDate time.Time `json:"appointment_date"`
	TimeSlot        string    `json:"time_slot"`
	VisitType       string    `json:"visit_type"`

	SubtotalCents int64 `json:"subtotal_cents"`
	CoveredCents  int64 `json:"covered_cents"`
	PayableCents  int64 `json:"payable_cents"`

	Status      RegistrationStatus `json:"status"`
	SubmittedAt time.Time          `json:"submitted_at"`

	// Metadata contains additional context, e.g. insurance provider.
	Metadata map[string]string `json:"metadata,omitempty"`
}
