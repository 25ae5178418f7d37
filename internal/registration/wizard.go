package registration

import (
	"errors"
	"fmt"
	"time"

	"github.com/caredesk/caredesk/internal/form"
)

// Wizard errors.
var (
	ErrUnknownService   = errors.New("unknown service")
	ErrUnknownDoctor    = errors.New("unknown doctor")
	ErrDoctorNotOffered = errors.New("doctor does not offer the selected service")
	ErrNotOnReview      = errors.New("registration can only be submitted from the review step")
	ErrAlreadySubmitted = errors.New("registration already submitted")
	ErrSubmitRequired   = errors.New("review step is completed by Submit")
)

// Option configures a Wizard.
type Option func(*Wizard)

// WithRegistrationFee overrides DefaultRegistrationFeeCents.
func WithRegistrationFee(cents int64) Option {
	return func(w *Wizard) {
		if cents >= 0 {
			w.registrationFee = cents
		}
	}
}

// WithClock sets the clock used for date validation.
func WithClock(now func() time.Time) Option {
	return func(w *Wizard) {
		if now != nil {
			w.now = now
		}
	}
}

// Wizard walks a user through registration one step at a time. Moving
// forward validates the current step; moving back never does.
type Wizard struct {
	catalog         Catalog
	form            Form
	step            Step
	registrationFee int64
	now             func() time.Time
}

// NewWizard starts a wizard on the patient step.
func NewWizard(catalog Catalog, opts ...Option) *Wizard {
	w := &Wizard{
		catalog:         catalog,
		step:            StepPatient,
		registrationFee: DefaultRegistrationFeeCents,
		now:             time.Now,
	}
	w.form.Appointment.Visit = VisitNew
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Step returns the current step.
func (w *Wizard) Step() Step { return w.step }

// Form returns a copy of the collected fields.
func (w *Wizard) Form() Form { return w.form }

// Catalog returns the services and doctors the wizard offers.
func (w *Wizard) Catalog() Catalog { return w.catalog }

// SetCatalog replaces the catalog, e.g. after the doctor list loads. A
// selected doctor or service that is no longer offered is cleared.
func (w *Wizard) SetCatalog(catalog Catalog) {
	w.catalog = catalog
	a := &w.form.Appointment
	if _, ok := catalog.Service(a.ServiceID); !ok {
		a.ServiceID = ""
	}
	if d, ok := catalog.Doctor(a.DoctorID); !ok || (a.ServiceID != "" && !d.Offers(a.ServiceID)) {
		a.DoctorID = ""
	}
}

// SetPatient replaces the patient fields.
func (w *Wizard) SetPatient(p Patient) {
	w.form.Patient = p
}

// SelectService picks a service. A selected doctor who does not offer it is
// cleared.
func (w *Wizard) SelectService(id string) error {
	if id == "" {
		w.form.Appointment.ServiceID = ""
		return nil
	}
	if _, ok := w.catalog.Service(id); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownService, id)
	}
	w.form.Appointment.ServiceID = id
	if doctorID := w.form.Appointment.DoctorID; doctorID != "" {
		if d, ok := w.catalog.Doctor(doctorID); !ok || !d.Offers(id) {
			w.form.Appointment.DoctorID = ""
		}
	}
	return nil
}

// SelectDoctor picks a doctor; an empty id clears the selection.
func (w *Wizard) SelectDoctor(id string) error {
	if id == "" {
		w.form.Appointment.DoctorID = ""
		return nil
	}
	d, ok := w.catalog.Doctor(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownDoctor, id)
	}
	if serviceID := w.form.Appointment.ServiceID; serviceID != "" && !d.Offers(serviceID) {
		return ErrDoctorNotOffered
	}
	w.form.Appointment.DoctorID = id
	return nil
}

// SetSchedule sets date, time slot and visit type.
func (w *Wizard) SetSchedule(date time.Time, slot string, visit VisitType) {
	w.form.Appointment.Date = date
	w.form.Appointment.TimeSlot = slot
	w.form.Appointment.Visit = visit
}

// SetInsurance replaces the insurance fields. Without insurance the
// dependent fields are cleared.
func (w *Wizard) SetInsurance(ins Insurance) {
	if !ins.HasInsurance {
		ins = Insurance{}
	}
	w.form.Insurance = ins
}

// AvailableDoctors lists doctors for the selected service, or all doctors
// when no service is selected.
func (w *Wizard) AvailableDoctors() []Doctor {
	if w.form.Appointment.ServiceID == "" {
		return w.catalog.Doctors
	}
	return w.catalog.DoctorsFor(w.form.Appointment.ServiceID)
}

// DoctorRequired reports whether the selected service needs a doctor.
func (w *Wizard) DoctorRequired() bool {
	s, ok := w.catalog.Service(w.form.Appointment.ServiceID)
	return ok && s.RequiresDoctor
}

// Fees derives the cost from the current selection.
func (w *Wizard) Fees() Fees {
	a := w.form.Appointment
	service, _ := w.catalog.Service(a.ServiceID)
	var doctor *Doctor
	if d, ok := w.catalog.Doctor(a.DoctorID); ok {
		doctor = &d
	}
	return ComputeFees(service, doctor, a.Visit, w.form.Insurance, w.registrationFee)
}

// Validate checks a single step without moving.
func (w *Wizard) Validate(step Step) error {
	now := w.now()
	var errs form.Errors
	switch step {
	case StepPatient:
		errs = ValidatePatient(w.form.Patient, now)
	case StepAppointment:
		errs = ValidateAppointment(w.form.Appointment, w.catalog, now)
	case StepInsurance:
		errs = ValidateInsurance(w.form.Insurance)
	default:
		return nil
	}
	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{Step: step, Fields: errs}
}

// Next validates the current step and advances. On failure the step is
// unchanged and a *ValidationError is returned.
func (w *Wizard) Next() error {
	switch w.step {
	case StepSubmitted:
		return ErrAlreadySubmitted
	case StepReview:
		return ErrSubmitRequired
	}
	if err := w.Validate(w.step); err != nil {
		return err
	}
	w.step++
	return nil
}

// Back moves to the previous step. It is a no-op on the first step and
// after submission.
func (w *Wizard) Back() {
	if w.step > StepPatient && w.step < StepSubmitted {
		w.step--
	}
}

// GoTo jumps back to an earlier step, e.g. to edit from the review page.
// Jumping forward is not allowed.
func (w *Wizard) GoTo(step Step) bool {
	if step < StepPatient || step >= w.step || w.step == StepSubmitted {
		return false
	}
	w.step = step
	return true
}

// Submit re-validates every step from the review page and returns the
// payload for the API. On a validation failure the wizard jumps to the
// first failing step.
func (w *Wizard) Submit() (Registration, error) {
	switch w.step {
	case StepSubmitted:
		return Registration{}, ErrAlreadySubmitted
	case StepReview:
	default:
		return Registration{}, ErrNotOnReview
	}

	for _, step := range []Step{StepPatient, StepAppointment, StepInsurance} {
		if err := w.Validate(step); err != nil {
			w.step = step
			return Registration{}, err
		}
	}

	w.step = StepSubmitted
	return Registration{
		Patient:     w.form.Patient,
		Appointment: w.form.Appointment,
		Insurance:   w.form.Insurance,
		Fees:        w.Fees(),
	}, nil
}

// Reset clears the form and returns to the first step, keeping the catalog.
func (w *Wizard) Reset() {
	w.form = Form{}
	w.form.Appointment.Visit = VisitNew
	w.step = StepPatient
}
