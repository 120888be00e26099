package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"practica/config"
	"practica/services/expiration"
	"practica/services/wizard"
	"practica/utils"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

// PaymentWebhookHandler receives the processor's callbacks. This is the only
// path that flips a booking to confirmed; the client-side success signal is
// never trusted for that.
type PaymentWebhookHandler struct {
	Orchestrator wizard.Orchestrator
	Logger       *zap.Logger
}

func NewPaymentWebhookHandler(orchestrator wizard.Orchestrator, logger *zap.Logger) *PaymentWebhookHandler {
	return &PaymentWebhookHandler{Orchestrator: orchestrator, Logger: logger}
}

func (h *PaymentWebhookHandler) HandleStripeEvent(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<16))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "failed to read webhook payload", err.Error())
		return
	}

	event, err := webhook.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), config.AppConfig.StripeWebhookSecret)
	if err != nil {
		h.Logger.Warn("webhook signature verification failed", zap.Error(err))
		utils.JSONError(c, http.StatusBadRequest, "invalid webhook signature", "")
		return
	}

	switch event.Type {
	case "payment_intent.succeeded":
		h.handleIntentSucceeded(c, event)
	case "payment_intent.payment_failed":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err == nil {
			h.Logger.Info("payment intent failed",
				zap.String("intentID", pi.ID),
				zap.String("bookingID", pi.Metadata["booking_id"]))
		}
		c.JSON(http.StatusOK, gin.H{"received": true})
	default:
		c.JSON(http.StatusOK, gin.H{"received": true})
	}
}

func (h *PaymentWebhookHandler) handleIntentSucceeded(c *gin.Context, event stripe.Event) {
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "malformed payment intent payload", err.Error())
		return
	}

	bookingID := pi.Metadata["booking_id"]
	if bookingID == "" {
		h.Logger.Warn("payment intent without booking metadata", zap.String("intentID", pi.ID))
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	booking, err := h.Orchestrator.ConfirmAuthoritative(c.Request.Context(), bookingID, time.Now())
	if err != nil {
		var expired *expiration.ExpirationError
		if errors.As(err, &expired) {
			// Late success: the hold already lapsed. The booking stays
			// unconfirmed; refunding is the processor-side policy.
			h.Logger.Warn("rejected late payment confirmation",
				zap.String("bookingID", bookingID), zap.String("intentID", pi.ID))
			c.JSON(http.StatusOK, gin.H{"received": true, "confirmed": false})
			return
		}
		h.Logger.Error("authoritative confirmation failed",
			zap.String("bookingID", bookingID), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "failed to confirm booking", err.Error())
		return
	}

	h.Logger.Info("booking confirmed by processor callback",
		zap.String("bookingID", booking.ID), zap.String("intentID", pi.ID))
	c.JSON(http.StatusOK, gin.H{"received": true, "confirmed": true})
}
