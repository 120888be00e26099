package models

import "time"

// BookingSession is the per-visitor wizard state, persisted in the session
// cache as a single versioned JSON snapshot so a visitor can resume across
// page reloads. Each wizard step owns the fields it populates; nothing else
// mutates them. Version increments on every save.
type BookingSession struct {
	SessionID      string          `json:"sessionId"`
	Version        int             `json:"version"`
	PractitionerID string          `json:"practitionerId,omitempty"`
	Service        *Service        `json:"service,omitempty"`
	SelectedDate   string          `json:"selectedDate,omitempty"` // YYYY-MM-DD in the visitor's timezone
	Slot           *Slot           `json:"slot,omitempty"`
	Contact        *ContactDetails `json:"contact,omitempty"`
	BookingID      string          `json:"bookingId,omitempty"`
	PaymentHandle  *PaymentHandle  `json:"paymentHandle,omitempty"`
	ExpiresAt      *time.Time      `json:"expiresAt,omitempty"`
	ClientTimezone string          `json:"clientTimezone,omitempty"`
	Outcome        *PaymentOutcome `json:"outcome,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// Expired reports whether the session's reservation deadline has passed.
// Sessions without a reservation never expire this way.
func (s BookingSession) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && !now.Before(*s.ExpiresAt)
}

// Completed reports whether a payment confirmation (optimistic or
// authoritative) has been recorded for this session.
func (s BookingSession) Completed() bool {
	return s.Outcome != nil && s.Outcome.Kind != OutcomePending
}
