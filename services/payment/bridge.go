package payment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	bookingRepo "practica/database/repository/booking"
	"practica/models"
	"practica/services/expiration"
	"practica/utils"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"go.uber.org/zap"
)

// IntentsAPI is the narrow slice of the processor the bridge consumes.
type IntentsAPI interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	Get(id string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

// StripeIntents calls Stripe through the package-level client (stripe.Key is
// set at startup).
type StripeIntents struct{}

func (StripeIntents) New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	return paymentintent.New(params)
}

func (StripeIntents) Get(id string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	return paymentintent.Get(id, params)
}

// Bridge obtains payment handles for provisional bookings. CreateIntent is
// idempotent per booking: a reload mid-flow gets the stored handle back
// instead of a duplicate intent.
type Bridge interface {
	CreateIntent(ctx context.Context, bookingID string) (*models.PaymentHandle, error)
}

// StripeBridge implements Bridge.
type StripeBridge struct {
	Bookings bookingRepo.BookingRepository
	Intents  IntentsAPI
	Now      func() time.Time
}

func (b *StripeBridge) now() time.Time {
	if b.Now != nil {
		return b.Now()
	}
	return time.Now()
}

func (b *StripeBridge) CreateIntent(ctx context.Context, bookingID string) (*models.PaymentHandle, error) {
	logger := utils.GetLogger()

	booking, err := b.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			return nil, NewPaymentError("unknown booking")
		}
		return nil, fmt.Errorf("failed to load booking: %w", err)
	}

	if booking.Status != models.BookingStatusProvisional {
		return nil, NewPaymentError("booking is not awaiting payment")
	}
	if !b.now().Before(booking.ExpiresAt) {
		return nil, expiration.NewExpirationError("booking hold expired before payment setup")
	}
	if booking.Price <= 0 {
		return nil, NewPaymentError("free bookings carry no payment intent")
	}

	// Reuse the handle a previous call already attached.
	if booking.PaymentIntentID != "" {
		return &models.PaymentHandle{
			IntentID:     booking.PaymentIntentID,
			ClientSecret: booking.PaymentClientSecret,
		}, nil
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(int64(math.Round(booking.Price * 100))),
		Currency: stripe.String(strings.ToLower(booking.Currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.AddMetadata("booking_id", booking.ID)
	params.SetIdempotencyKey("booking-intent-" + booking.ID)

	pi, err := b.Intents.New(params)
	if err != nil {
		logger.Error("payment intent creation failed",
			zap.String("bookingID", booking.ID), zap.Error(err))
		return nil, NewPaymentError("payment processor rejected the request")
	}

	if err := b.Bookings.AttachPaymentIntent(ctx, booking.ID, pi.ID, pi.ClientSecret); err != nil {
		return nil, fmt.Errorf("failed to store payment handle: %w", err)
	}

	logger.Info("payment intent created",
		zap.String("bookingID", booking.ID), zap.String("intentID", pi.ID))
	return &models.PaymentHandle{IntentID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}
