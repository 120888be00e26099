package wizard

import (
	"time"

	"practica/models"
)

// Step is one visible stage of the booking wizard.
type Step string

const (
	StepService Step = "service"
	StepSlot    Step = "slot"
	StepDetails Step = "details"
	StepPayment Step = "payment"
	StepSuccess Step = "success"
	// StepExpired is the terminal sub-state reached when the hold deadline
	// passes while the visitor sits on the payment step.
	StepExpired Step = "expired"
)

// StepFor derives the current wizard step from which session fields are
// populated. This is how a reloaded page resumes where it left off:
// service+slot+paymentHandle lands on Payment, service+slot on Details,
// service alone on Slot, an empty session on Service.
func StepFor(s *models.BookingSession, now time.Time) Step {
	if s.Completed() {
		return StepSuccess
	}
	if s.Service == nil {
		return StepService
	}
	if s.Slot == nil {
		return StepSlot
	}
	if s.PaymentHandle != nil {
		if s.Expired(now) {
			return StepExpired
		}
		return StepPayment
	}
	return StepDetails
}
