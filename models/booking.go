package models

import "time"

// BookingStatus is the lifecycle state of a booking record.
type BookingStatus string

const (
	BookingStatusProvisional BookingStatus = "provisional"
	BookingStatusConfirmed   BookingStatus = "confirmed"
	BookingStatusCancelled   BookingStatus = "cancelled"
	BookingStatusCompleted   BookingStatus = "completed"
)

// ContactDetails are the visitor's details collected at the Details step.
// The visitor is unauthenticated, so this is all we know about them.
type ContactDetails struct {
	Name  string `bson:"name" json:"name" binding:"required"`
	Email string `bson:"email" json:"email" binding:"required"`
	Phone string `bson:"phone,omitempty" json:"phone,omitempty"`
	Notes string `bson:"notes,omitempty" json:"notes,omitempty"`
}

// Booking is the persisted reservation record. It is created in the
// provisional state by the reservation coordinator and flipped to confirmed
// only by the server-side payment confirmation path. CreatedAt is the sole
// source of truth for expiration; ExpiresAt is derived from it at creation.
type Booking struct {
	ID                  string         `bson:"id" json:"id"`
	PractitionerID      string         `bson:"practitioner_id" json:"practitionerId"`
	ServiceID           string         `bson:"service_id" json:"serviceId"`
	Status              BookingStatus  `bson:"status" json:"status"`
	Start               time.Time      `bson:"start" json:"start"`
	End                 time.Time      `bson:"end" json:"end"`
	Price               float64        `bson:"price" json:"price"`
	Currency            string         `bson:"currency" json:"currency"`
	ClientTimezone      string         `bson:"client_timezone" json:"clientTimezone"`
	Contact             ContactDetails `bson:"contact" json:"contact"`
	PaymentIntentID     string         `bson:"payment_intent_id,omitempty" json:"paymentIntentId,omitempty"`
	PaymentClientSecret string         `bson:"payment_client_secret,omitempty" json:"-"`
	CreatedAt           time.Time      `bson:"created_at" json:"createdAt"`
	ExpiresAt           time.Time      `bson:"expires_at" json:"expiresAt"`
	ConfirmedAt         *time.Time     `bson:"confirmed_at,omitempty" json:"confirmedAt,omitempty"`
}

// Live reports whether the booking still consumes capacity at the given
// instant: confirmed bookings always do, provisional ones only until their
// deadline. An expired provisional booking stops blocking its slot even if
// no worker has flipped it to cancelled yet.
func (b Booking) Live(now time.Time) bool {
	switch b.Status {
	case BookingStatusConfirmed, BookingStatusCompleted:
		return true
	case BookingStatusProvisional:
		return now.Before(b.ExpiresAt)
	default:
		return false
	}
}

// Overlaps reports whether the booking intersects [start, end).
func (b Booking) Overlaps(start, end time.Time) bool {
	return b.Start.Before(end) && start.Before(b.End)
}
