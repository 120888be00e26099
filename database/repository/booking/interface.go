package bookingRepo

import (
	"context"
	"errors"
	"time"

	"practica/models"
)

var (
	// ErrNotFound is returned when no booking exists for the given ID.
	ErrNotFound = errors.New("booking not found")
	// ErrCapacityExhausted is returned when the reserve-time occupancy count
	// already equals the service capacity. It is the repository-level signal
	// behind a conflict: an expected race outcome, not a validation failure.
	ErrCapacityExhausted = errors.New("slot capacity exhausted")
	// ErrDeadlineElapsed is returned when a status flip is attempted after
	// the booking's hold deadline has passed.
	ErrDeadlineElapsed = errors.New("booking hold deadline elapsed")
)

// BookingRepository is the narrow reserve/query/release contract over the
// bookings datastore. CreateProvisional must be atomic with respect to the
// occupancy count: no two concurrent callers may both succeed past capacity.
type BookingRepository interface {
	GetByID(ctx context.Context, id string) (*models.Booking, error)

	// CreateProvisional counts live bookings overlapping the requested
	// interval and inserts the new provisional booking as one indivisible
	// operation. Returns ErrCapacityExhausted when the interval is full.
	CreateProvisional(ctx context.Context, booking *models.Booking, capacity int) error

	// ListLiveBetween returns all bookings of the practitioner that still
	// consume capacity at instant now and intersect [from, to).
	ListLiveBetween(ctx context.Context, practitionerID string, from, to, now time.Time) ([]models.Booking, error)

	// UpdateContact replaces the contact details on a provisional booking,
	// so a resubmitted Details form can correct a typo before confirmation.
	UpdateContact(ctx context.Context, bookingID string, contact models.ContactDetails) error

	// AttachPaymentIntent stores the payment handle on a provisional
	// booking. It is a plain set; idempotency is handled by the caller
	// reusing an already attached handle.
	AttachPaymentIntent(ctx context.Context, bookingID, intentID, clientSecret string) error

	// Confirm flips provisional to confirmed, but only while the hold
	// deadline has not elapsed at instant at. Confirming an already
	// confirmed booking is a no-op returning the stored record.
	Confirm(ctx context.Context, bookingID string, at time.Time) (*models.Booking, error)

	// CancelProvisional flips an overdue provisional booking to cancelled.
	// Returns false when the booking was not an expired provisional (it may
	// have been confirmed or cancelled in the meantime).
	CancelProvisional(ctx context.Context, bookingID string, now time.Time) (bool, error)

	// FindExpiredProvisional lists provisional bookings whose deadline has
	// passed, for the sweep path of the expiry worker.
	FindExpiredProvisional(ctx context.Context, now time.Time) ([]models.Booking, error)
}
