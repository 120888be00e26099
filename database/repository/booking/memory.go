package bookingRepo

import (
	"context"
	"sync"
	"time"

	"practica/models"
)

// MemoryBookingRepo is an in-memory BookingRepository guarded by a single
// mutex, which gives it the same observable guarantee as the mongo
// transaction: the occupancy count and the insert happen indivisibly.
// Used by tests and local development.
type MemoryBookingRepo struct {
	mu       sync.Mutex
	bookings map[string]*models.Booking
}

func NewMemoryBookingRepo() *MemoryBookingRepo {
	return &MemoryBookingRepo{bookings: make(map[string]*models.Booking)}
}

func (r *MemoryBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *b
	return &clone, nil
}

func (r *MemoryBookingRepo) CreateProvisional(ctx context.Context, booking *models.Booking, capacity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, b := range r.bookings {
		if b.PractitionerID == booking.PractitionerID &&
			b.Overlaps(booking.Start, booking.End) &&
			b.Live(booking.CreatedAt) {
			count++
		}
	}
	if count >= capacity {
		return ErrCapacityExhausted
	}

	clone := *booking
	r.bookings[booking.ID] = &clone
	return nil
}

func (r *MemoryBookingRepo) ListLiveBetween(ctx context.Context, practitionerID string, from, to, now time.Time) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Booking
	for _, b := range r.bookings {
		if b.PractitionerID == practitionerID && b.Overlaps(from, to) && b.Live(now) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *MemoryBookingRepo) UpdateContact(ctx context.Context, bookingID string, contact models.ContactDetails) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[bookingID]
	if !ok || b.Status != models.BookingStatusProvisional {
		return ErrNotFound
	}
	b.Contact = contact
	return nil
}

func (r *MemoryBookingRepo) AttachPaymentIntent(ctx context.Context, bookingID, intentID, clientSecret string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[bookingID]
	if !ok || b.Status != models.BookingStatusProvisional {
		return ErrNotFound
	}
	b.PaymentIntentID = intentID
	b.PaymentClientSecret = clientSecret
	return nil
}

func (r *MemoryBookingRepo) Confirm(ctx context.Context, bookingID string, at time.Time) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[bookingID]
	if !ok {
		return nil, ErrNotFound
	}
	if b.Status == models.BookingStatusConfirmed {
		clone := *b
		return &clone, nil
	}
	if b.Status != models.BookingStatusProvisional || !at.Before(b.ExpiresAt) {
		return nil, ErrDeadlineElapsed
	}
	b.Status = models.BookingStatusConfirmed
	confirmedAt := at
	b.ConfirmedAt = &confirmedAt
	clone := *b
	return &clone, nil
}

func (r *MemoryBookingRepo) CancelProvisional(ctx context.Context, bookingID string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[bookingID]
	if !ok || b.Status != models.BookingStatusProvisional || now.Before(b.ExpiresAt) {
		return false, nil
	}
	b.Status = models.BookingStatusCancelled
	return true, nil
}

func (r *MemoryBookingRepo) FindExpiredProvisional(ctx context.Context, now time.Time) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Booking
	for _, b := range r.bookings {
		if b.Status == models.BookingStatusProvisional && !now.Before(b.ExpiresAt) {
			out = append(out, *b)
		}
	}
	return out, nil
}
