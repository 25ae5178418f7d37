package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/caredesk/caredesk/internal/api"
	"github.com/caredesk/caredesk/internal/form"
	"github.com/caredesk/caredesk/internal/models"
	"github.com/caredesk/caredesk/internal/registration"
	"github.com/caredesk/caredesk/internal/tui/components"
)

const dateLayout = "2006-01-02"

type wizardScreen struct {
	wizard *registration.Wizard

	patient     fieldSet
	appointment fieldSet
	insurance   fieldSet

	catalogLoaded bool
	busy          bool
	// pending is the last payload whose submission failed; ctrl+s resends it.
	pending *registration.Registration
	receipt *api.Receipt
}

func newWizardScreen(w *registration.Wizard) wizardScreen {
	slots := make([]choice, 0, len(registration.DefaultTimeSlots)+1)
	slots = append(slots, choice{label: "Select a time", value: ""})
	for _, slot := range registration.DefaultTimeSlots {
		slots = append(slots, choice{label: slot, value: slot})
	}

	s := wizardScreen{
		wizard: w,
		patient: newFieldSet(
			newTextField("first_name", "First name", ""),
			newTextField("last_name", "Last name", ""),
			newTextField("phone", "Phone", "+1 555 010 0199"),
			newTextField("email", "Email", "patient@example.com"),
			newTextField("date_of_birth", "Date of birth", "YYYY-MM-DD"),
			newChoiceField("gender", "Gender", []choice{
				{label: "Select", value: ""},
				{label: "Female", value: string(registration.GenderFemale)},
				{label: "Male", value: string(registration.GenderMale)},
				{label: "Other", value: string(registration.GenderOther)},
			}),
		),
		appointment: newFieldSet(
			newChoiceField("service", "Service", nil),
			newChoiceField("doctor", "Doctor", nil),
			newTextField("date", "Date", "YYYY-MM-DD"),
			newChoiceField("time_slot", "Time", slots),
			newChoiceField("visit_type", "Visit", []choice{
				{label: "New patient", value: string(registration.VisitNew)},
				{label: "Follow-up", value: string(registration.VisitFollowUp)},
			}),
		),
		insurance: newFieldSet(
			newChoiceField("has_insurance", "Insured", []choice{
				{label: "No", value: "no"},
				{label: "Yes", value: "yes"},
			}),
			newTextField("provider", "Provider", ""),
			newTextField("policy_number", "Policy number", ""),
			newTextField("coverage_percent", "Coverage %", "1-100"),
		),
	}
	s.syncCatalog()
	s.syncInsurance()
	return s
}

// current returns the field set of the active step, or nil on review and
// after submission.
func (s *wizardScreen) current() *fieldSet {
	switch s.wizard.Step() {
	case registration.StepPatient:
		return &s.patient
	case registration.StepAppointment:
		return &s.appointment
	case registration.StepInsurance:
		return &s.insurance
	default:
		return nil
	}
}

// syncCatalog rebuilds the service and doctor choices from the wizard.
func (s *wizardScreen) syncCatalog() {
	catalog := s.wizard.Catalog()
	services := []choice{{label: "Select a service", value: ""}}
	for _, svc := range catalog.Services {
		services = append(services, choice{
			label: fmt.Sprintf("%s  %s", svc.Name, registration.FormatCents(svc.FeeCents)),
			value: svc.ID,
		})
	}
	s.appointment.get("service").setChoices(services)
	s.appointment.get("service").setValue(s.wizard.Form().Appointment.ServiceID)
	s.syncDoctors()
}

func (s *wizardScreen) syncDoctors() {
	var doctors []choice
	if !s.wizard.DoctorRequired() {
		doctors = append(doctors, choice{label: "No doctor", value: ""})
	}
	for _, d := range s.wizard.AvailableDoctors() {
		doctors = append(doctors, choice{
			label: fmt.Sprintf("%s, %s  %s", d.Name, d.Specialty, registration.FormatCents(d.ConsultationFeeCents)),
			value: d.ID,
		})
	}
	field := s.appointment.get("doctor")
	field.setChoices(doctors)
	field.setValue(s.wizard.Form().Appointment.DoctorID)
	// Keep the wizard in line with what the field shows.
	_ = s.wizard.SelectDoctor(field.value())
}

func (s *wizardScreen) syncInsurance() {
	hide := s.insurance.value("has_insurance") != "yes"
	for _, key := range []string{"provider", "policy_number", "coverage_percent"} {
		s.insurance.setHidden(key, hide)
	}
}

func (m model) handleCatalog(msg catalogMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.setError(fmt.Errorf("could not load services: %w", msg.err))
		return m, nil
	}
	m.wizard.wizard.SetCatalog(msg.catalog)
	m.wizard.catalogLoaded = true
	m.wizard.syncCatalog()
	if m.status != "" && !m.statusIsError {
		m.setStatus(fmt.Sprintf("%d services available.", len(msg.catalog.Services)))
	}
	return m, nil
}

func (m model) updateWizard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.wizard.busy {
		return m, nil
	}
	w := &m.wizard
	key := msg.String()

	if key == "ctrl+l" {
		return m, loadCatalogCmd(m.ctx, m.cfg.Client)
	}

	switch w.wizard.Step() {
	case registration.StepReview:
		return m.updateReview(key)
	case registration.StepSubmitted:
		if key == "n" {
			w.wizard.Reset()
			w.patient.reset()
			w.appointment.reset()
			w.insurance.reset()
			w.syncCatalog()
			w.syncInsurance()
			w.receipt = nil
			m.status = ""
			return m, w.patient.focusIndex(0)
		}
		if key == "ctrl+s" && w.pending != nil {
			return m.submit(*w.pending)
		}
		return m, nil
	}

	fs := w.current()
	switch key {
	case "tab", "down":
		return m, fs.next()
	case "shift+tab", "up":
		return m, fs.prev()
	case "esc":
		w.wizard.Back()
		if next := w.current(); next != nil {
			return m, next.focusIndex(0)
		}
		return m, nil
	case "enter":
		if !fs.onLast() {
			return m, fs.next()
		}
		return m, m.advanceWizard()
	}

	changed, cmd := fs.update(msg)
	if changed {
		m.onChoiceChanged(fs.focused().key)
	}
	return m, cmd
}

func (m *model) onChoiceChanged(key string) {
	w := &m.wizard
	switch key {
	case "service":
		if err := w.wizard.SelectService(w.appointment.value("service")); err != nil {
			m.setError(err)
		}
		w.syncDoctors()
	case "doctor":
		if err := w.wizard.SelectDoctor(w.appointment.value("doctor")); err != nil {
			m.setError(err)
		}
	case "has_insurance":
		w.syncInsurance()
	}
}

// advanceWizard copies the step's fields into the wizard and moves on when
// they validate. Unparseable dates and numbers are reported alongside the
// wizard's own validation.
func (m *model) advanceWizard() tea.Cmd {
	w := &m.wizard
	fs := w.current()
	parseErrs := form.Errors{}

	switch w.wizard.Step() {
	case registration.StepPatient:
		dob := parseDate(fs.value("date_of_birth"), "date_of_birth", parseErrs)
		w.wizard.SetPatient(registration.Patient{
			FirstName:   fs.value("first_name"),
			LastName:    fs.value("last_name"),
			Phone:       fs.value("phone"),
			Email:       fs.value("email"),
			DateOfBirth: dob,
			Gender:      registration.Gender(fs.value("gender")),
		})
	case registration.StepAppointment:
		date := parseDate(fs.value("date"), "date", parseErrs)
		w.wizard.SetSchedule(date, fs.value("time_slot"), registration.VisitType(fs.value("visit_type")))
	case registration.StepInsurance:
		ins := registration.Insurance{HasInsurance: fs.value("has_insurance") == "yes"}
		if ins.HasInsurance {
			ins.Provider = fs.value("provider")
			ins.PolicyNumber = fs.value("policy_number")
			if raw := fs.value("coverage_percent"); raw != "" {
				pct, err := strconv.Atoi(strings.TrimSuffix(raw, "%"))
				if err != nil {
					parseErrs.Add("coverage_percent", "must be a whole number")
				}
				ins.CoveragePercent = pct
			}
		}
		w.wizard.SetInsurance(ins)
	}

	if len(parseErrs) > 0 {
		if err := w.wizard.Validate(w.wizard.Step()); err != nil {
			for key, msg := range fieldErrors(err) {
				parseErrs.Add(key, msg)
			}
		}
		return fs.setErrors(parseErrs.Err())
	}

	if err := w.wizard.Next(); err != nil {
		return fs.setErrors(err)
	}
	fs.clearErrors()
	m.status = ""
	if next := w.current(); next != nil {
		return next.focusIndex(0)
	}
	return nil
}

func (m model) updateReview(key string) (tea.Model, tea.Cmd) {
	w := &m.wizard
	switch key {
	case "esc":
		w.wizard.Back()
		return m, w.current().focusIndex(0)
	case "1", "2", "3":
		step := registration.Step(key[0] - '1')
		if w.wizard.GoTo(step) {
			return m, w.current().focusIndex(0)
		}
	case "enter", "ctrl+s":
		reg, err := w.wizard.Submit()
		if err != nil {
			// Submit moved back to the failing step.
			if fs := w.current(); fs != nil {
				return m, fs.setErrors(err)
			}
			m.setError(err)
			return m, nil
		}
		return m.submit(reg)
	}
	return m, nil
}

func (m model) submit(reg registration.Registration) (tea.Model, tea.Cmd) {
	m.wizard.busy = true
	m.wizard.pending = nil
	m.setStatus("Submitting registration…")
	return m, m.submitCmd(reg)
}

func (m model) handleSubmitResult(msg submitResultMsg) (tea.Model, tea.Cmd) {
	m.wizard.busy = false
	if msg.err != nil {
		reg := msg.registration
		m.wizard.pending = &reg
		m.setError(fmt.Errorf("submission failed: %w (ctrl+s to retry)", msg.err))
		return m, nil
	}
	m.wizard.receipt = msg.receipt
	m.setStatus("Registration " + msg.receipt.ID + " confirmed.")
	return m, nil
}

func (m model) viewWizard() string {
	st := m.styles
	w := m.wizard
	var b strings.Builder

	b.WriteString(components.RenderStepTabs(st, w.wizard.Step()) + "\n\n")

	switch step := w.wizard.Step(); step {
	case registration.StepReview:
		b.WriteString(m.viewSummary())
	case registration.StepSubmitted:
		b.WriteString(m.viewSubmitted())
	default:
		b.WriteString(st.Title.Render(step.Title()) + "\n\n")
		if step == registration.StepAppointment && w.catalogLoaded && len(w.wizard.Catalog().Services) == 0 {
			b.WriteString(components.EmptyServices().Render(st) + "\n")
			break
		}
		b.WriteString(w.current().view(st))
		if step == registration.StepAppointment {
			if service, ok := w.wizard.Catalog().Service(w.wizard.Form().Appointment.ServiceID); ok && len(w.wizard.AvailableDoctors()) == 0 {
				b.WriteString(components.EmptyDoctors(service.Name).RenderCompact(st) + "\n")
			}
			b.WriteString("\n" + m.viewFees() + "\n")
		}
	}

	b.WriteString("\n" + components.RenderKeyHints(st, components.WizardHints(w.wizard.Step())))
	return st.Panel.Render(b.String())
}

func (m model) viewSummary() string {
	st := m.styles
	f := m.wizard.wizard.Form()
	catalog := m.wizard.wizard.Catalog()

	service, _ := catalog.Service(f.Appointment.ServiceID)
	doctor := "None"
	if d, ok := catalog.Doctor(f.Appointment.DoctorID); ok {
		doctor = d.Name
	}
	insurance := "None"
	if f.Insurance.HasInsurance {
		insurance = fmt.Sprintf("%s %s (%d%%)", f.Insurance.Provider, f.Insurance.PolicyNumber, f.Insurance.CoveragePercent)
	}

	rows := [][2]string{
		{"Patient", f.Patient.FullName()},
		{"Phone", f.Patient.Phone},
		{"Email", f.Patient.Email},
		{"Service", service.Name},
		{"Doctor", doctor},
		{"When", f.Appointment.Date.Format(dateLayout) + " " + f.Appointment.TimeSlot},
		{"Visit", string(f.Appointment.Visit)},
		{"Insurance", insurance},
	}

	var b strings.Builder
	b.WriteString(st.Title.Render("Review & confirm") + "\n\n")
	for _, row := range rows {
		b.WriteString(st.Muted.Render(fmt.Sprintf("%-10s", row[0])) + " " + st.Text.Render(row[1]) + "\n")
	}
	b.WriteString("\n" + m.viewFees() + "\n")
	return b.String()
}

func (m model) viewFees() string {
	st := m.styles
	fees := m.wizard.wizard.Fees()
	lines := []string{
		st.Muted.Render("Service       ") + registration.FormatCents(fees.ServiceCents),
		st.Muted.Render("Consultation  ") + registration.FormatCents(fees.DoctorCents),
	}
	if fees.RegistrationCents > 0 {
		lines = append(lines, st.Muted.Render("Registration  ")+registration.FormatCents(fees.RegistrationCents))
	}
	if fees.CoveredCents > 0 {
		lines = append(lines, st.Muted.Render("Insurance    -")+registration.FormatCents(fees.CoveredCents))
	}
	lines = append(lines, st.Title.Render("Payable       "+registration.FormatCents(fees.PayableCents)))
	return strings.Join(lines, "\n")
}

func (m model) viewSubmitted() string {
	st := m.styles
	w := m.wizard
	switch {
	case w.busy:
		return st.Info.Render("Submitting…") + "\n"
	case w.receipt != nil:
		return st.Success.Render("Registration confirmed") + "\n\n" +
			st.Muted.Render("Reference  ") + st.Text.Render(w.receipt.ID) + "\n" +
			st.Muted.Render("Payable    ") + st.Text.Render(registration.FormatCents(w.receipt.Fees.PayableCents)) + "\n"
	case w.pending != nil:
		return st.Error.Render("Not sent yet. Press ctrl+s to retry.") + "\n"
	default:
		return ""
	}
}

func parseDate(value, key string, errs form.Errors) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.ParseInLocation(dateLayout, value, time.Local)
	if err != nil {
		errs.Add(key, "must be YYYY-MM-DD")
		return time.Time{}
	}
	return t
}

func recordFor(reg registration.Registration) *models.RegistrationRecord {
	meta := map[string]string{"email": reg.Patient.Email}
	if reg.Insurance.HasInsurance {
		meta["insurance_provider"] = reg.Insurance.Provider
		meta["policy_number"] = reg.Insurance.PolicyNumber
	}
	return &models.RegistrationRecord{
		ID:              uuid.New().String(),
		PatientName:     reg.Patient.FullName(),
		PatientPhone:    reg.Patient.Phone,
		ServiceID:       reg.Appointment.ServiceID,
		DoctorID:        reg.Appointment.DoctorID,
		AppointmentDate: reg.Appointment.Date,
		TimeSlot:        reg.Appointment.TimeSlot,
		VisitType:       string(reg.Appointment.Visit),
		SubtotalCents:   reg.Fees.SubtotalCents,
		CoveredCents:    reg.Fees.CoveredCents,
		PayableCents:    reg.Fees.PayableCents,
		Metadata:        meta,
	}
}
