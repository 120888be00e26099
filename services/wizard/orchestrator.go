package wizard

import (
	"context"
	"errors"
	"fmt"
	"time"

	catalogRepo "practica/database/repository/catalog"
	"practica/models"
	"practica/services/availability"
	"practica/services/expiration"
	"practica/services/payment"
	"practica/services/reservation"
	"practica/services/session"
	"practica/utils"

	"go.uber.org/zap"
)

// Orchestrator sequences the wizard steps and invokes the availability,
// reservation and payment components in the correct order. Every mutation of
// the session snapshot goes through here.
type Orchestrator interface {
	StartSession(ctx context.Context) (*models.BookingSession, error)
	Resume(ctx context.Context, sessionID string) (*models.BookingSession, Step, error)
	SelectService(ctx context.Context, sessionID, practitionerID, serviceID string) (*models.BookingSession, error)
	Slots(ctx context.Context, sessionID string, from, to time.Time, clientTimezone string) ([]models.Slot, error)
	SelectSlot(ctx context.Context, sessionID string, slot models.Slot, selectedDate, clientTimezone string) (*models.BookingSession, error)
	SubmitDetails(ctx context.Context, sessionID string, contact models.ContactDetails) (*models.BookingSession, Step, error)
	ConfirmPayment(ctx context.Context, sessionID string) (*models.BookingSession, error)
	Back(ctx context.Context, sessionID string) (*models.BookingSession, Step, error)
	Restart(ctx context.Context, sessionID string) (*models.BookingSession, error)
	Cancel(ctx context.Context, sessionID string) error
	BookingStatus(ctx context.Context, sessionID string) (*models.Booking, error)
	ConfirmAuthoritative(ctx context.Context, bookingID string, at time.Time) (*models.Booking, error)
}

// DefaultOrchestrator implements Orchestrator.
type DefaultOrchestrator struct {
	Sessions     session.Store
	Catalog      catalogRepo.CatalogRepository
	Availability availability.Resolver
	Reservations reservation.Coordinator
	Payments     payment.Bridge
	Now          func() time.Time
}

func (o *DefaultOrchestrator) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

func (o *DefaultOrchestrator) StartSession(ctx context.Context) (*models.BookingSession, error) {
	sess, err := o.Sessions.Create(ctx)
	if err != nil {
		return nil, err
	}
	utils.GetLogger().Info("booking session started", zap.String("sessionID", sess.SessionID))
	return sess, nil
}

// Resume returns the stored snapshot and the step the wizard should render.
func (o *DefaultOrchestrator) Resume(ctx context.Context, sessionID string) (*models.BookingSession, Step, error) {
	sess, err := o.Sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, "", err
	}
	return sess, StepFor(sess, o.now()), nil
}

// SelectService pins the service for the session. Any fields owned by later
// steps are cleared; a provisional booking created earlier is left to expire
// on its own.
func (o *DefaultOrchestrator) SelectService(ctx context.Context, sessionID, practitionerID, serviceID string) (*models.BookingSession, error) {
	sess, err := o.Sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	svc, err := o.Catalog.GetService(ctx, serviceID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrServiceNotFound) {
			return nil, reservation.NewValidationError(map[string]string{"serviceId": "unknown service"})
		}
		return nil, fmt.Errorf("failed to load service: %w", err)
	}
	if svc.PractitionerID != practitionerID {
		return nil, reservation.NewValidationError(map[string]string{"serviceId": "service does not belong to practitioner"})
	}

	sess.PractitionerID = practitionerID
	sess.Service = svc
	clearSlotOwned(sess)

	if err := o.Sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Slots computes fresh availability for the session's service.
func (o *DefaultOrchestrator) Slots(ctx context.Context, sessionID string, from, to time.Time, clientTimezone string) ([]models.Slot, error) {
	sess, err := o.Sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Service == nil {
		return nil, NewFlowError("select a service before browsing slots")
	}

	practitioner, err := o.Catalog.GetPractitioner(ctx, sess.PractitionerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load practitioner: %w", err)
	}

	if clientTimezone != "" && clientTimezone != sess.ClientTimezone {
		sess.ClientTimezone = clientTimezone
		if err := o.Sessions.Save(ctx, sess); err != nil {
			return nil, err
		}
	}

	return o.Availability.Resolve(ctx, *practitioner, *sess.Service, from, to, sess.ClientTimezone)
}

// SelectSlot records the visitor's chosen slot. The slot is not re-validated
// here; the reservation commit is the only check that counts.
func (o *DefaultOrchestrator) SelectSlot(ctx context.Context, sessionID string, slot models.Slot, selectedDate, clientTimezone string) (*models.BookingSession, error) {
	sess, err := o.Sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Service == nil {
		return nil, NewFlowError("select a service before picking a slot")
	}
	if slot.Start.IsZero() || !slot.Start.Before(slot.End) {
		return nil, reservation.NewValidationError(map[string]string{"slot": "invalid slot interval"})
	}

	sess.Slot = &slot
	sess.SelectedDate = selectedDate
	if clientTimezone != "" {
		sess.ClientTimezone = clientTimezone
	}
	clearDetailsOwned(sess)

	if err := o.Sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// SubmitDetails reserves the slot atomically and, for paid services, obtains
// the payment handle and starts the countdown. Free services confirm
// immediately and jump straight to Success. A resubmission while a live
// reservation exists reuses it instead of double-booking.
func (o *DefaultOrchestrator) SubmitDetails(ctx context.Context, sessionID string, contact models.ContactDetails) (*models.BookingSession, Step, error) {
	logger := utils.GetLogger()

	sess, err := o.Sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, "", err
	}
	if sess.Service == nil || sess.Slot == nil {
		return nil, "", NewFlowError("select a service and slot before submitting details")
	}

	now := o.now()
	if sess.BookingID != "" && !sess.Expired(now) {
		// The held booking is reused, but a resubmission may carry corrected
		// contact details; those still win until the booking is confirmed.
		if !sess.Completed() {
			if err := o.Reservations.UpdateContact(ctx, sess.BookingID, contact); err != nil {
				return nil, "", err
			}
			sess.Contact = &contact
		}
		return o.continueWithBooking(ctx, sess, now)
	}

	booking, err := o.Reservations.Reserve(ctx, reservation.ReserveRequest{
		ServiceID:      sess.Service.ID,
		PractitionerID: sess.PractitionerID,
		SlotStart:      sess.Slot.Start,
		ClientTimezone: sess.ClientTimezone,
		Contact:        contact,
	})
	if err != nil {
		var conflict *reservation.ConflictError
		if errors.As(err, &conflict) {
			// The slot was taken under us. Drop the stale selection so the
			// wizard lands back on Slot with a fresh availability query.
			clearSlotOwned(sess)
			if saveErr := o.Sessions.Save(ctx, sess); saveErr != nil {
				logger.Warn("failed to clear slot after conflict", zap.Error(saveErr))
			}
		}
		return nil, "", err
	}

	sess.Contact = &booking.Contact
	sess.BookingID = booking.ID
	expiresAt := booking.ExpiresAt
	sess.ExpiresAt = &expiresAt

	return o.continueWithBooking(ctx, sess, now)
}

// continueWithBooking finishes the Details step for a session holding a live
// reservation: free services confirm now, paid ones get a payment handle.
func (o *DefaultOrchestrator) continueWithBooking(ctx context.Context, sess *models.BookingSession, now time.Time) (*models.BookingSession, Step, error) {
	if sess.Service.Free() {
		if _, err := o.Reservations.Confirm(ctx, sess.BookingID, now); err != nil {
			return nil, "", err
		}
		sess.Outcome = &models.PaymentOutcome{
			Kind:      models.OutcomeConfirmedAuthoritatively,
			BookingID: sess.BookingID,
			At:        now,
		}
		if err := o.Sessions.Save(ctx, sess); err != nil {
			return nil, "", err
		}
		return sess, StepSuccess, nil
	}

	handle, err := o.Payments.CreateIntent(ctx, sess.BookingID)
	if err != nil {
		// The reservation stands; the visitor can retry payment setup while
		// the hold lasts.
		if saveErr := o.Sessions.Save(ctx, sess); saveErr != nil {
			utils.GetLogger().Warn("failed to save session after intent failure", zap.Error(saveErr))
		}
		return nil, "", err
	}

	sess.PaymentHandle = handle
	if err := o.Sessions.Save(ctx, sess); err != nil {
		return nil, "", err
	}
	return sess, StepPayment, nil
}

// ConfirmPayment records the client-side success signal. It is optimistic:
// the authoritative flip happens on the processor callback. The returned
// snapshot is frozen for the Success view and the stored session is cleared.
func (o *DefaultOrchestrator) ConfirmPayment(ctx context.Context, sessionID string) (*models.BookingSession, error) {
	sess, err := o.Sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.PaymentHandle == nil || sess.BookingID == "" {
		return nil, NewFlowError("no payment in progress for this session")
	}

	now := o.now()
	if sess.Expired(now) {
		// Deadline passed while the visitor sat on the payment step. Clear
		// the payment fields and force a restart from slot selection.
		clearSlotOwned(sess)
		if saveErr := o.Sessions.Save(ctx, sess); saveErr != nil {
			utils.GetLogger().Warn("failed to save expired session", zap.Error(saveErr))
		}
		return nil, expiration.NewExpirationError("booking hold expired before payment completed")
	}

	sess.Outcome = &models.PaymentOutcome{
		Kind:      models.OutcomeConfirmedLocally,
		BookingID: sess.BookingID,
		At:        now,
	}

	// Success view renders from this snapshot; the stored session is done.
	if err := o.Sessions.Delete(ctx, sessionID); err != nil {
		utils.GetLogger().Warn("failed to clear completed session",
			zap.String("sessionID", sessionID), zap.Error(err))
	}
	return sess, nil
}

// Back steps the wizard backwards, clearing the fields owned by the steps
// being left. A reservation already made is not cancelled; it expires on its
// own.
func (o *DefaultOrchestrator) Back(ctx context.Context, sessionID string) (*models.BookingSession, Step, error) {
	sess, err := o.Sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, "", err
	}

	switch StepFor(sess, o.now()) {
	case StepSlot:
		sess.Service = nil
		sess.PractitionerID = ""
		clearSlotOwned(sess)
	case StepDetails:
		clearSlotOwned(sess)
	case StepPayment, StepExpired:
		clearSlotOwned(sess)
	default:
		return nil, "", NewFlowError("nothing to go back to")
	}

	if err := o.Sessions.Save(ctx, sess); err != nil {
		return nil, "", err
	}
	return sess, StepFor(sess, o.now()), nil
}

// Restart wipes the session back to empty while keeping its identity, so the
// visitor's resume token stays valid.
func (o *DefaultOrchestrator) Restart(ctx context.Context, sessionID string) (*models.BookingSession, error) {
	sess, err := o.Sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	sess.PractitionerID = ""
	sess.Service = nil
	sess.ClientTimezone = ""
	clearSlotOwned(sess)

	if err := o.Sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Cancel discards the session outright. Any provisional booking it made is
// left to expire on its own.
func (o *DefaultOrchestrator) Cancel(ctx context.Context, sessionID string) error {
	if _, err := o.Sessions.Get(ctx, sessionID); err != nil {
		return err
	}
	if err := o.Sessions.Delete(ctx, sessionID); err != nil {
		return err
	}
	utils.GetLogger().Info("booking session cancelled", zap.String("sessionID", sessionID))
	return nil
}

// BookingStatus returns the current server-side record for the session's
// booking. The payment step polls this to observe the authoritative flip.
func (o *DefaultOrchestrator) BookingStatus(ctx context.Context, sessionID string) (*models.Booking, error) {
	sess, err := o.Sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.BookingID == "" {
		return nil, NewFlowError("no reservation exists for this session")
	}
	return o.Reservations.GetBooking(ctx, sess.BookingID)
}

// ConfirmAuthoritative handles the processor callback: the server-side
// provisional-to-confirmed flip, rejected when the deadline already passed.
func (o *DefaultOrchestrator) ConfirmAuthoritative(ctx context.Context, bookingID string, at time.Time) (*models.Booking, error) {
	return o.Reservations.Confirm(ctx, bookingID, at)
}

// clearSlotOwned drops the slot selection and everything after it, keeping
// whatever service is chosen. With the service still set the wizard lands
// back on the Slot step.
func clearSlotOwned(sess *models.BookingSession) {
	sess.Slot = nil
	sess.SelectedDate = ""
	clearDetailsOwned(sess)
}

// clearDetailsOwned drops everything from the Details step forward.
func clearDetailsOwned(sess *models.BookingSession) {
	sess.Contact = nil
	sess.BookingID = ""
	sess.PaymentHandle = nil
	sess.ExpiresAt = nil
	sess.Outcome = nil
}
