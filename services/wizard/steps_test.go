package wizard

import (
	"testing"
	"time"

	"practica/models"

	"github.com/stretchr/testify/assert"
)

func TestStepFor(t *testing.T) {
	now := time.Date(2025, 6, 9, 8, 0, 0, 0, time.UTC)
	future := now.Add(10 * time.Minute)
	past := now.Add(-time.Minute)

	svc := &models.Service{ID: "svc-1", PractitionerID: "prac-1", DurationMinutes: 60, Price: 80}
	slot := &models.Slot{Start: now.Add(2 * time.Hour), End: now.Add(3 * time.Hour), SpotsLeft: 1}
	handle := &models.PaymentHandle{IntentID: "pi_1", ClientSecret: "pi_1_secret"}

	tests := []struct {
		name string
		sess models.BookingSession
		want Step
	}{
		{
			name: "empty session starts at service",
			sess: models.BookingSession{},
			want: StepService,
		},
		{
			name: "service chosen moves to slot",
			sess: models.BookingSession{Service: svc},
			want: StepSlot,
		},
		{
			name: "slot chosen moves to details",
			sess: models.BookingSession{Service: svc, Slot: slot},
			want: StepDetails,
		},
		{
			name: "payment handle moves to payment",
			sess: models.BookingSession{Service: svc, Slot: slot, BookingID: "b-1", PaymentHandle: handle, ExpiresAt: &future},
			want: StepPayment,
		},
		{
			name: "lapsed hold on payment step is expired",
			sess: models.BookingSession{Service: svc, Slot: slot, BookingID: "b-1", PaymentHandle: handle, ExpiresAt: &past},
			want: StepExpired,
		},
		{
			name: "recorded outcome is success",
			sess: models.BookingSession{
				Service: svc, Slot: slot, BookingID: "b-1", PaymentHandle: handle, ExpiresAt: &past,
				Outcome: &models.PaymentOutcome{Kind: models.OutcomeConfirmedLocally, BookingID: "b-1", At: now},
			},
			want: StepSuccess,
		},
		{
			name: "pending outcome does not complete",
			sess: models.BookingSession{
				Service: svc, Slot: slot,
				Outcome: &models.PaymentOutcome{Kind: models.OutcomePending},
			},
			want: StepDetails,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := tt.sess
			assert.Equal(t, tt.want, StepFor(&sess, now))
		})
	}
}
