package registration

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 19, 10, 15, 0, 0, time.UTC)

func testCatalog() Catalog {
	return Catalog{
		Services: []Service{
			{ID: "gp", Name: "General consultation", FeeCents: 20000, RequiresDoctor: true},
			{ID: "cardio", Name: "Cardiology", FeeCents: 100000, RequiresDoctor: true},
			{ID: "lab", Name: "Blood test", FeeCents: 15000, RequiresDoctor: false},
		},
		Doctors: []Doctor{
			{ID: "d-ada", Name: "Dr. Ada", Specialty: "General", ConsultationFeeCents: 30000, ServiceIDs: []string{"gp"}},
			{ID: "d-ben", Name: "Dr. Ben", Specialty: "Cardiology", ConsultationFeeCents: 80001, ServiceIDs: []string{"cardio", "gp"}},
		},
	}
}

func validPatient() Patient {
	return Patient{
		FirstName:   "Maria",
		LastName:    "Garcia",
		Phone:       "+34 600 123 456",
		Email:       "maria@example.com",
		DateOfBirth: time.Date(1988, 4, 2, 0, 0, 0, 0, time.UTC),
		Gender:      GenderFemale,
	}
}

func newTestWizard() *Wizard {
	return NewWizard(testCatalog(), WithClock(func() time.Time { return fixedNow }))
}

func fillToReview(t *testing.T, w *Wizard) {
	t.Helper()
	w.SetPatient(validPatient())
	require.NoError(t, w.Next())

	require.NoError(t, w.SelectService("cardio"))
	require.NoError(t, w.SelectDoctor("d-ben"))
	w.SetSchedule(fixedNow.AddDate(0, 0, 3), "09:30", VisitNew)
	require.NoError(t, w.Next())

	w.SetInsurance(Insurance{HasInsurance: true, Provider: "Acme", PolicyNumber: "P-1", CoveragePercent: 80})
	require.NoError(t, w.Next())
	require.Equal(t, StepReview, w.Step())
}

func TestComputeFees(t *testing.T) {
	gp := Service{ID: "gp", FeeCents: 20000}
	doc := &Doctor{ConsultationFeeCents: 30001}

	tests := []struct {
		name   string
		doctor *Doctor
		visit  VisitType
		ins    Insurance
		regFee int64
		want   Fees
	}{
		{
			name:   "new patient without insurance",
			doctor: doc,
			visit:  VisitNew,
			regFee: 50000,
			want:   Fees{ServiceCents: 20000, DoctorCents: 30001, SubtotalCents: 50001, RegistrationCents: 50000, PayableCents: 100001},
		},
		{
			name:   "follow-up halves consultation and skips registration",
			doctor: doc,
			visit:  VisitFollowUp,
			regFee: 50000,
			want:   Fees{ServiceCents: 20000, DoctorCents: 15000, SubtotalCents: 35000, PayableCents: 35000},
		},
		{
			name:   "insurance covers service and consultation only",
			doctor: doc,
			visit:  VisitNew,
			ins:    Insurance{HasInsurance: true, CoveragePercent: 50},
			regFee: 50000,
			want:   Fees{ServiceCents: 20000, DoctorCents: 30001, SubtotalCents: 50001, RegistrationCents: 50000, CoveredCents: 25000, PayableCents: 75001},
		},
		{
			name:   "no doctor selected",
			visit:  VisitNew,
			regFee: 0,
			want:   Fees{ServiceCents: 20000, SubtotalCents: 20000, PayableCents: 20000},
		},
		{
			name:   "coverage clamps at 100",
			doctor: doc,
			visit:  VisitFollowUp,
			ins:    Insurance{HasInsurance: true, CoveragePercent: 150},
			want:   Fees{ServiceCents: 20000, DoctorCents: 15000, SubtotalCents: 35000, CoveredCents: 35000, PayableCents: 0},
		},
		{
			name:   "coverage ignored without insurance flag",
			visit:  VisitFollowUp,
			ins:    Insurance{HasInsurance: false, CoveragePercent: 90},
			want:   Fees{ServiceCents: 20000, SubtotalCents: 20000, PayableCents: 20000},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeFees(gp, tt.doctor, tt.visit, tt.ins, tt.regFee)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got.SubtotalCents+got.RegistrationCents, got.TotalCents())
		})
	}
}

func TestWizardHappyPath(t *testing.T) {
	w := newTestWizard()
	require.Equal(t, StepPatient, w.Step())

	fillToReview(t, w)

	reg, err := w.Submit()
	require.NoError(t, err)
	assert.Equal(t, StepSubmitted, w.Step())
	assert.Equal(t, "Maria Garcia", reg.Patient.FullName())
	assert.Equal(t, "d-ben", reg.Appointment.DoctorID)

	// 100000 service + 80001 doctor, 80% covered, plus registration.
	assert.Equal(t, int64(180001), reg.Fees.SubtotalCents)
	assert.Equal(t, int64(144000), reg.Fees.CoveredCents)
	assert.Equal(t, int64(180001+DefaultRegistrationFeeCents-144000), reg.Fees.PayableCents)

	_, err = w.Submit()
	require.ErrorIs(t, err, ErrAlreadySubmitted)
	require.ErrorIs(t, w.Next(), ErrAlreadySubmitted)
}

func TestNextStaysOnInvalidStep(t *testing.T) {
	w := newTestWizard()
	p := validPatient()
	p.Email = "not-an-email"
	p.Phone = ""
	w.SetPatient(p)

	err := w.Next()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, StepPatient, verr.Step)
	assert.Equal(t, []string{"email", "phone"}, verr.Fields.Fields())
	assert.Equal(t, StepPatient, w.Step())
	assert.Contains(t, err.Error(), "patient step incomplete")
}

func TestPatientValidation(t *testing.T) {
	future := validPatient()
	future.DateOfBirth = fixedNow.AddDate(0, 0, 1)
	errs := ValidatePatient(future, fixedNow)
	assert.Equal(t, "cannot be in the future", errs["date_of_birth"])

	missing := ValidatePatient(Patient{}, fixedNow)
	for _, field := range []string{"first_name", "last_name", "phone", "email", "date_of_birth", "gender"} {
		assert.Contains(t, missing, field)
	}

	odd := validPatient()
	odd.Gender = "robot"
	assert.Contains(t, ValidatePatient(odd, fixedNow), "gender")
}

func TestDoctorConditionalOnService(t *testing.T) {
	w := newTestWizard()

	// Lab work does not need a doctor.
	require.NoError(t, w.SelectService("lab"))
	assert.False(t, w.DoctorRequired())
	w.SetSchedule(fixedNow.AddDate(0, 0, 1), "10:00", VisitNew)
	assert.Empty(t, ValidateAppointment(w.Form().Appointment, w.Catalog(), fixedNow))

	// Consultations do.
	require.NoError(t, w.SelectService("gp"))
	assert.True(t, w.DoctorRequired())
	errs := ValidateAppointment(w.Form().Appointment, w.Catalog(), fixedNow)
	assert.Equal(t, "is required for General consultation", errs["doctor"])
}

func TestChangingServiceClearsIncompatibleDoctor(t *testing.T) {
	w := newTestWizard()
	require.NoError(t, w.SelectService("gp"))
	require.NoError(t, w.SelectDoctor("d-ada"))

	require.NoError(t, w.SelectService("cardio"))
	assert.Empty(t, w.Form().Appointment.DoctorID, "Dr. Ada does not do cardiology")

	require.NoError(t, w.SelectDoctor("d-ben"))
	require.NoError(t, w.SelectService("gp"))
	assert.Equal(t, "d-ben", w.Form().Appointment.DoctorID, "Dr. Ben offers both")
}

func TestSelectDoctorRejectsMismatch(t *testing.T) {
	w := newTestWizard()
	require.NoError(t, w.SelectService("cardio"))
	require.ErrorIs(t, w.SelectDoctor("d-ada"), ErrDoctorNotOffered)
	require.ErrorIs(t, w.SelectDoctor("d-zed"), ErrUnknownDoctor)
	require.ErrorIs(t, w.SelectService("dental"), ErrUnknownService)

	names := []string{}
	for _, d := range w.AvailableDoctors() {
		names = append(names, d.ID)
	}
	assert.Equal(t, []string{"d-ben"}, names)
}

func TestAppointmentDateAndSlot(t *testing.T) {
	catalog := testCatalog()
	base := Appointment{ServiceID: "lab", Visit: VisitFollowUp}

	past := base
	past.Date = fixedNow.AddDate(0, 0, -1)
	past.TimeSlot = "10:00"
	assert.Equal(t, "cannot be in the past", ValidateAppointment(past, catalog, fixedNow)["date"])

	earlierToday := base
	earlierToday.Date = fixedNow
	earlierToday.TimeSlot = "09:30"
	assert.Equal(t, "has already passed", ValidateAppointment(earlierToday, catalog, fixedNow)["time_slot"])

	laterToday := earlierToday
	laterToday.TimeSlot = "14:00"
	assert.Empty(t, ValidateAppointment(laterToday, catalog, fixedNow))

	badSlot := laterToday
	badSlot.TimeSlot = "2pm"
	assert.Equal(t, "must be HH:MM", ValidateAppointment(badSlot, catalog, fixedNow)["time_slot"])

	offHours := laterToday
	offHours.TimeSlot = "03:17"
	assert.Equal(t, "is not an offered slot", ValidateAppointment(offHours, catalog, fixedNow)["time_slot"])

	lunch := laterToday
	lunch.TimeSlot = "12:30"
	assert.Equal(t, "is not an offered slot", ValidateAppointment(lunch, catalog, fixedNow)["time_slot"])
}

func TestInsuranceConditionalFields(t *testing.T) {
	assert.Empty(t, ValidateInsurance(Insurance{}))

	errs := ValidateInsurance(Insurance{HasInsurance: true})
	assert.Equal(t, []string{"coverage_percent", "policy_number", "provider"}, errs.Fields())

	w := newTestWizard()
	w.SetInsurance(Insurance{HasInsurance: false, Provider: "Acme", CoveragePercent: 40})
	assert.Equal(t, Insurance{}, w.Form().Insurance)
}

func TestBackAndGoTo(t *testing.T) {
	w := newTestWizard()
	w.Back()
	assert.Equal(t, StepPatient, w.Step())

	fillToReview(t, w)
	require.ErrorIs(t, w.Next(), ErrSubmitRequired)

	w.Back()
	assert.Equal(t, StepInsurance, w.Step())

	// Back never validates.
	w.SetInsurance(Insurance{HasInsurance: true})
	w.Back()
	assert.Equal(t, StepAppointment, w.Step())

	assert.False(t, w.GoTo(StepReview), "cannot jump forward")
	assert.True(t, w.GoTo(StepPatient))
	assert.Equal(t, StepPatient, w.Step())
}

func TestSubmitRevalidates(t *testing.T) {
	w := newTestWizard()
	fillToReview(t, w)

	// The catalog changes under us and the doctor disappears.
	catalog := testCatalog()
	catalog.Doctors = catalog.Doctors[:1]
	w.SetCatalog(catalog)

	_, err := w.Submit()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, StepAppointment, verr.Step)
	assert.Equal(t, StepAppointment, w.Step())
}

func TestSubmitOnlyFromReview(t *testing.T) {
	w := newTestWizard()
	_, err := w.Submit()
	require.ErrorIs(t, err, ErrNotOnReview)
}

func TestResetKeepsCatalog(t *testing.T) {
	w := newTestWizard()
	fillToReview(t, w)
	w.Reset()

	assert.Equal(t, StepPatient, w.Step())
	assert.Equal(t, VisitNew, w.Form().Appointment.Visit)
	assert.Empty(t, w.Form().Patient.FirstName)
	assert.Len(t, w.Catalog().Services, 3)
}

func TestCustomRegistrationFee(t *testing.T) {
	w := NewWizard(testCatalog(), WithClock(func() time.Time { return fixedNow }), WithRegistrationFee(0))
	require.NoError(t, w.SelectService("lab"))
	assert.Equal(t, int64(15000), w.Fees().PayableCents)
}

func TestStepNames(t *testing.T) {
	assert.Equal(t, "appointment", StepAppointment.String())
	assert.Equal(t, "Review & confirm", StepReview.Title())
	assert.Len(t, FormSteps(), 4)
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "0.00", FormatCents(0))
	assert.Equal(t, "500.00", FormatCents(50000))
	assert.Equal(t, "12.05", FormatCents(1205))
	assert.Equal(t, "-0.99", FormatCents(-99))
}
