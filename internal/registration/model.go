// Package registration implements the multi-step patient registration and
// appointment wizard: per-step validation, conditional fields and fees.
package registration

import (
	"slices"
	"time"
)

// Step is a wizard page.
type Step int

// Wizard steps in order.
const (
	StepPatient Step = iota
	StepAppointment
	StepInsurance
	StepReview
	StepSubmitted
)

// FormSteps lists the steps the user fills in.
func FormSteps() []Step {
	return []Step{StepPatient, StepAppointment, StepInsurance, StepReview}
}

func (s Step) String() string {
	switch s {
	case StepPatient:
		return "patient"
	case StepAppointment:
		return "appointment"
	case StepInsurance:
		return "insurance"
	case StepReview:
		return "review"
	case StepSubmitted:
		return "submitted"
	default:
		return "unknown"
	}
}

// Title is the heading shown for the step.
func (s Step) Title() string {
	switch s {
	case StepPatient:
		return "Patient details"
	case StepAppointment:
		return "Appointment"
	case StepInsurance:
		return "Insurance"
	case StepReview:
		return "Review & confirm"
	case StepSubmitted:
		return "Submitted"
	default:
		return ""
	}
}

// VisitType distinguishes first visits from follow-ups.
type VisitType string

// Visit types.
const (
	VisitNew      VisitType = "new"
	VisitFollowUp VisitType = "follow-up"
)

// Gender as recorded on the patient form.
type Gender string

// Genders.
const (
	GenderFemale Gender = "female"
	GenderMale   Gender = "male"
	GenderOther  Gender = "other"
)

// Service is a bookable hospital service.
type Service struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	FeeCents       int64  `json:"fee_cents"`
	RequiresDoctor bool   `json:"requires_doctor"`
}

// Doctor is a practitioner the patient can be booked with.
type Doctor struct {
	ID                   string   `json:"id"`
	Name                 string   `json:"name"`
	Specialty            string   `json:"specialty"`
	ConsultationFeeCents int64    `json:"consultation_fee_cents"`
	ServiceIDs           []string `json:"service_ids"`
}

// Offers reports whether the doctor provides serviceID.
func (d Doctor) Offers(serviceID string) bool {
	return slices.Contains(d.ServiceIDs, serviceID)
}

// Catalog is the set of services and doctors available to the wizard.
type Catalog struct {
	Services []Service
	Doctors  []Doctor
}

// Service looks up a service by ID.
func (c Catalog) Service(id string) (Service, bool) {
	for _, s := range c.Services {
		if s.ID == id {
			return s, true
		}
	}
	return Service{}, false
}

// Doctor looks up a doctor by ID.
func (c Catalog) Doctor(id string) (Doctor, bool) {
	for _, d := range c.Doctors {
		if d.ID == id {
			return d, true
		}
	}
	return Doctor{}, false
}

// DoctorsFor returns the doctors offering serviceID.
func (c Catalog) DoctorsFor(serviceID string) []Doctor {
	var out []Doctor
	for _, d := range c.Doctors {
		if d.Offers(serviceID) {
			out = append(out, d)
		}
	}
	return out
}

// Patient holds the first step's fields.
type Patient struct {
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Phone       string    `json:"phone"`
	Email       string    `json:"email"`
	DateOfBirth time.Time `json:"date_of_birth"`
	Gender      Gender    `json:"gender"`
}

// FullName joins first and last name.
func (p Patient) FullName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

// Appointment holds the second step's fields.
type Appointment struct {
	ServiceID string    `json:"service_id"`
	DoctorID  string    `json:"doctor_id,omitempty"`
	Date      time.Time `json:"date"`
	TimeSlot  string    `json:"time_slot"`
	Visit     VisitType `json:"visit_type"`
}

// Insurance holds the third step's fields. Provider, policy and coverage
// only apply when HasInsurance is set.
type Insurance struct {
	HasInsurance    bool   `json:"has_insurance"`
	Provider        string `json:"provider,omitempty"`
	PolicyNumber    string `json:"policy_number,omitempty"`
	CoveragePercent int    `json:"coverage_percent,omitempty"`
}

// Form is everything the wizard collects.
type Form struct {
	Patient     Patient
	Appointment Appointment
	Insurance   Insurance
}

// Registration is the validated payload sent to the API.
type Registration struct {
	Patient     Patient     `json:"patient"`
	Appointment Appointment `json:"appointment"`
	Insurance   Insurance   `json:"insurance"`
	Fees        Fees        `json:"fees"`
}

// DefaultTimeSlots are the half-hour slots offered for booking.
var DefaultTimeSlots = []string{
	"09:00", "09:30", "10:00", "10:30", "11:00", "11:30",
	"14:00", "14:30", "15:00", "15:30", "16:00", "16:30",
}
