package registration

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/caredesk/caredesk/internal/form"
)

// ValidationError reports the fields that block leaving a step.
type ValidationError struct {
	Step   Step
	Fields form.Errors
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields.Fields() {
		parts = append(parts, fmt.Sprintf("%s %s", f, e.Fields[f]))
	}
	return fmt.Sprintf("%s step incomplete: %s", e.Step, strings.Join(parts, "; "))
}

// ValidatePatient checks the patient step.
func ValidatePatient(p Patient, now time.Time) form.Errors {
	errs := form.Errors{}
	errs.Check("first_name", form.Required(p.FirstName))
	errs.Check("last_name", form.Required(p.LastName))
	errs.Check("phone", form.Phone(p.Phone))
	errs.Check("email", form.Email(p.Email))

	switch {
	case p.DateOfBirth.IsZero():
		errs.Add("date_of_birth", "is required")
	case dayOf(p.DateOfBirth).After(dayOf(now)):
		errs.Add("date_of_birth", "cannot be in the future")
	case p.DateOfBirth.Before(now.AddDate(-130, 0, 0)):
		errs.Add("date_of_birth", "is too far in the past")
	}

	switch p.Gender {
	case GenderFemale, GenderMale, GenderOther:
	case "":
		errs.Add("gender", "is required")
	default:
		errs.Add("gender", "must be female, male or other")
	}
	return errs
}

// ValidateAppointment checks the appointment step against the catalog.
func ValidateAppointment(a Appointment, catalog Catalog, now time.Time) form.Errors {
	errs := form.Errors{}

	service, ok := catalog.Service(a.ServiceID)
	switch {
	case a.ServiceID == "":
		errs.Add("service", "is required")
	case !ok:
		errs.Add("service", "is not offered")
	}

	if a.DoctorID == "" {
		if ok && service.RequiresDoctor {
			errs.Add("doctor", "is required for "+service.Name)
		}
	} else if doctor, found := catalog.Doctor(a.DoctorID); !found {
		errs.Add("doctor", "is not available")
	} else if ok && !doctor.Offers(service.ID) {
		errs.Add("doctor", "does not offer "+service.Name)
	}

	today := dayOf(now)
	switch {
	case a.Date.IsZero():
		errs.Add("date", "is required")
	case dayOf(a.Date).Before(today):
		errs.Add("date", "cannot be in the past")
	}

	if slot, err := parseSlot(a.TimeSlot); err != nil {
		errs.Add("time_slot", err.Error())
	} else if !a.Date.IsZero() && dayOf(a.Date).Equal(today) {
		start := today.Add(slot)
		if !start.After(now) {
			errs.Add("time_slot", "has already passed")
		}
	}

	switch a.Visit {
	case VisitNew, VisitFollowUp:
	case "":
		errs.Add("visit_type", "is required")
	default:
		errs.Add("visit_type", "must be new or follow-up")
	}
	return errs
}

// ValidateInsurance checks the insurance step. Nothing is required when the
// patient has no insurance.
func ValidateInsurance(ins Insurance) form.Errors {
	errs := form.Errors{}
	if !ins.HasInsurance {
		return errs
	}
	errs.Check("provider", form.Required(ins.Provider))
	errs.Check("policy_number", form.Required(ins.PolicyNumber))
	if ins.CoveragePercent < 1 || ins.CoveragePercent > 100 {
		errs.Add("coverage_percent", "must be between 1 and 100")
	}
	return errs
}

func parseSlot(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("is required")
	}
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, fmt.Errorf("must be HH:MM")
	}
	if !slices.Contains(DefaultTimeSlots, t.Format("15:04")) {
		return 0, fmt.Errorf("is not an offered slot")
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
