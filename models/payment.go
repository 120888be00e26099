package models

import "time"

// PaymentHandle is the opaque pair the payment processor hands back for a
// booking: the client secret drives the browser-side confirmation widget,
// the intent ID is the server-side payment reference.
type PaymentHandle struct {
	IntentID     string `bson:"intent_id" json:"intentId"`
	ClientSecret string `bson:"client_secret" json:"clientSecret"`
}

// PaymentOutcomeKind tags how far a payment confirmation has progressed.
// The distinction between a locally observed success and the authoritative
// server-side flip is deliberate: the client-visible success is optimistic.
type PaymentOutcomeKind string

const (
	OutcomePending                  PaymentOutcomeKind = "pending"
	OutcomeConfirmedLocally         PaymentOutcomeKind = "confirmed_locally"
	OutcomeConfirmedAuthoritatively PaymentOutcomeKind = "confirmed_authoritatively"
)

// PaymentOutcome records the confirmation progress for a booking.
type PaymentOutcome struct {
	Kind      PaymentOutcomeKind `bson:"kind" json:"kind"`
	BookingID string             `bson:"booking_id" json:"bookingId"`
	At        time.Time          `bson:"at" json:"at"`
}
