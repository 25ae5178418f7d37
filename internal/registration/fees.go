package registration

import "fmt"

// DefaultRegistrationFeeCents is charged once, on a patient's first visit.
const DefaultRegistrationFeeCents int64 = 50000

// Fees is the cost breakdown in integer cents.
type Fees struct {
	ServiceCents      int64 `json:"service_cents"`
	DoctorCents       int64 `json:"doctor_cents"`
	SubtotalCents     int64 `json:"subtotal_cents"`
	RegistrationCents int64 `json:"registration_cents"`
	CoveredCents      int64 `json:"covered_cents"`
	PayableCents      int64 `json:"payable_cents"`
}

// ComputeFees derives the breakdown. Follow-up visits pay half the
// consultation fee and no registration fee. Insurance covers a percentage
// of service and consultation, never the registration fee. Fractional
// cents round down.
func ComputeFees(service Service, doctor *Doctor, visit VisitType, ins Insurance, registrationFeeCents int64) Fees {
	fees := Fees{ServiceCents: service.FeeCents}

	if doctor != nil {
		fees.DoctorCents = doctor.ConsultationFeeCents
		if visit == VisitFollowUp {
			fees.DoctorCents /= 2
		}
	}
	fees.SubtotalCents = fees.ServiceCents + fees.DoctorCents

	if visit != VisitFollowUp && registrationFeeCents > 0 {
		fees.RegistrationCents = registrationFeeCents
	}

	if ins.HasInsurance {
		coverage := int64(min(max(ins.CoveragePercent, 0), 100))
		fees.CoveredCents = fees.SubtotalCents * coverage / 100
	}

	fees.PayableCents = fees.SubtotalCents + fees.RegistrationCents - fees.CoveredCents
	return fees
}

// TotalCents is the amount before insurance.
func (f Fees) TotalCents() int64 {
	return f.SubtotalCents + f.RegistrationCents
}

// FormatCents renders cents as a decimal amount, e.g. 1205 as "12.05".
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
