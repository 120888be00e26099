package reservation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	bookingRepo "practica/database/repository/booking"
	catalogRepo "practica/database/repository/catalog"
	"practica/models"
	"practica/services/expiration"
	"practica/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReserveRequest is the input for an atomic reservation attempt. Price and
// duration are echoed from the stored service record, never trusted from the
// client.
type ReserveRequest struct {
	ServiceID      string
	PractitionerID string
	SlotStart      time.Time
	ClientTimezone string
	Contact        models.ContactDetails
}

// Coordinator is the sole authority for conflict prevention: the occupancy
// check and the provisional insert happen as one indivisible operation at
// the repository, never recomputed from client-side slot lists.
type Coordinator interface {
	Reserve(ctx context.Context, req ReserveRequest) (*models.Booking, error)
	Confirm(ctx context.Context, bookingID string, at time.Time) (*models.Booking, error)
	UpdateContact(ctx context.Context, bookingID string, contact models.ContactDetails) error
	GetBooking(ctx context.Context, bookingID string) (*models.Booking, error)
}

// DefaultCoordinator implements Coordinator.
type DefaultCoordinator struct {
	Catalog  catalogRepo.CatalogRepository
	Bookings bookingRepo.BookingRepository
	Guard    *expiration.Guard
	Now      func() time.Time
}

func (c *DefaultCoordinator) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// Reserve validates the request, then creates a provisional booking if the
// interval still has capacity. On success the hold clock starts: the
// booking's CreatedAt drives the deadline and the deferred expiry task.
func (c *DefaultCoordinator) Reserve(ctx context.Context, req ReserveRequest) (*models.Booking, error) {
	logger := utils.GetLogger()

	if err := validateReserveRequest(req); err != nil {
		return nil, err
	}

	svc, err := c.Catalog.GetService(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrServiceNotFound) {
			return nil, NewValidationError(map[string]string{"serviceId": "unknown service"})
		}
		return nil, fmt.Errorf("failed to load service: %w", err)
	}
	if svc.PractitionerID != req.PractitionerID {
		return nil, NewValidationError(map[string]string{"serviceId": "service does not belong to practitioner"})
	}
	if _, err := c.Catalog.GetPractitioner(ctx, req.PractitionerID); err != nil {
		if errors.Is(err, catalogRepo.ErrPractitionerNotFound) {
			return nil, NewValidationError(map[string]string{"practitionerId": "unknown practitioner"})
		}
		return nil, fmt.Errorf("failed to load practitioner: %w", err)
	}

	now := c.now()
	if !req.SlotStart.After(now) {
		return nil, NewValidationError(map[string]string{"slotStart": "slot start must be in the future"})
	}

	start := req.SlotStart.UTC()
	booking := &models.Booking{
		ID:             uuid.New().String(),
		PractitionerID: req.PractitionerID,
		ServiceID:      svc.ID,
		Status:         models.BookingStatusProvisional,
		Start:          start,
		End:            start.Add(time.Duration(svc.DurationMinutes) * time.Minute),
		Price:          svc.Price,
		Currency:       svc.Currency,
		ClientTimezone: req.ClientTimezone,
		Contact:        req.Contact,
		CreatedAt:      now,
		ExpiresAt:      c.Guard.Deadline(now),
	}

	if err := c.Bookings.CreateProvisional(ctx, booking, svc.SeatCapacity()); err != nil {
		if errors.Is(err, bookingRepo.ErrCapacityExhausted) {
			logger.Info("reservation lost capacity race",
				zap.String("practitionerID", req.PractitionerID),
				zap.Time("slotStart", start))
			return nil, NewConflictError("slot is no longer available")
		}
		return nil, fmt.Errorf("reservation failed: %w", err)
	}

	c.Guard.Schedule(booking.ID, booking.ExpiresAt)

	logger.Info("provisional booking created",
		zap.String("bookingID", booking.ID),
		zap.String("practitionerID", booking.PractitionerID),
		zap.Time("expiresAt", booking.ExpiresAt))
	return booking, nil
}

// Confirm performs the authoritative provisional-to-confirmed flip. A
// confirmation arriving after the hold deadline is rejected, whatever the
// payment processor believes.
func (c *DefaultCoordinator) Confirm(ctx context.Context, bookingID string, at time.Time) (*models.Booking, error) {
	booking, err := c.Bookings.Confirm(ctx, bookingID, at)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrDeadlineElapsed) {
			return nil, expiration.NewExpirationError("booking hold expired before confirmation")
		}
		return nil, err
	}
	utils.GetLogger().Info("booking confirmed",
		zap.String("bookingID", booking.ID), zap.Time("at", at))
	return booking, nil
}

// UpdateContact rewrites the contact details on a still-provisional booking,
// used when the Details form is resubmitted while the hold is live.
func (c *DefaultCoordinator) UpdateContact(ctx context.Context, bookingID string, contact models.ContactDetails) error {
	if fields := validateContact(contact); len(fields) > 0 {
		return NewValidationError(fields)
	}
	if err := c.Bookings.UpdateContact(ctx, bookingID, contact); err != nil {
		return fmt.Errorf("failed to update booking contact: %w", err)
	}
	return nil
}

func (c *DefaultCoordinator) GetBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	return c.Bookings.GetByID(ctx, bookingID)
}

func validateContact(contact models.ContactDetails) map[string]string {
	fields := make(map[string]string)

	if strings.TrimSpace(contact.Name) == "" {
		fields["name"] = "name is required"
	}
	email := strings.TrimSpace(contact.Email)
	if email == "" {
		fields["email"] = "email is required"
	} else if !strings.Contains(email, "@") || strings.HasPrefix(email, "@") || strings.HasSuffix(email, "@") {
		fields["email"] = "email is invalid"
	}
	return fields
}

func validateReserveRequest(req ReserveRequest) error {
	fields := validateContact(req.Contact)

	if req.ServiceID == "" {
		fields["serviceId"] = "service is required"
	}
	if req.PractitionerID == "" {
		fields["practitionerId"] = "practitioner is required"
	}
	if req.SlotStart.IsZero() {
		fields["slotStart"] = "slot start is required"
	}

	if len(fields) > 0 {
		return NewValidationError(fields)
	}
	return nil
}
