package handlers

import (
	"errors"
	"net/http"
	"time"

	"practica/config"
	"practica/models"
	"practica/services/expiration"
	"practica/services/payment"
	"practica/services/reservation"
	"practica/services/session"
	"practica/services/wizard"
	"practica/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler exposes the booking wizard over HTTP.
type BookingHandler struct {
	Orchestrator wizard.Orchestrator
	Logger       *zap.Logger
}

func NewBookingHandler(orchestrator wizard.Orchestrator, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{Orchestrator: orchestrator, Logger: logger}
}

// StartSessionHandler creates a fresh wizard session and hands the visitor a
// signed resume token.
func (h *BookingHandler) StartSessionHandler(c *gin.Context) {
	sess, err := h.Orchestrator.StartSession(c.Request.Context())
	if err != nil {
		respondBookingError(c, err)
		return
	}

	token, err := utils.GenerateSessionToken(sess.SessionID, config.SessionTTL())
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to issue session token", err.Error())
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"session":      sess,
		"sessionToken": token,
		"step":         wizard.StepService,
	})
}

// ResumeSessionHandler returns the stored snapshot plus the step to render.
func (h *BookingHandler) ResumeSessionHandler(c *gin.Context) {
	sess, step, err := h.Orchestrator.Resume(c.Request.Context(), c.Param("sessionID"))
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sess, "step": step})
}

// SelectServiceHandler pins the chosen service on the session.
func (h *BookingHandler) SelectServiceHandler(c *gin.Context) {
	var input struct {
		PractitionerID string `json:"practitionerId" binding:"required"`
		ServiceID      string `json:"serviceId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	sess, err := h.Orchestrator.SelectService(c.Request.Context(), c.Param("sessionID"), input.PractitionerID, input.ServiceID)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sess, "step": wizard.StepSlot})
}

// SessionSlotsHandler computes fresh availability for the session's service.
func (h *BookingHandler) SessionSlotsHandler(c *gin.Context) {
	from, to, err := parseDateRange(c.Query("from"), c.Query("to"))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid date range", err.Error())
		return
	}

	slots, err := h.Orchestrator.Slots(c.Request.Context(), c.Param("sessionID"), from, to, c.Query("tz"))
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"slots": slots})
}

// SelectSlotHandler records the visitor's slot pick.
func (h *BookingHandler) SelectSlotHandler(c *gin.Context) {
	var input struct {
		Slot         models.Slot `json:"slot" binding:"required"`
		SelectedDate string      `json:"selectedDate"`
		Timezone     string      `json:"timezone"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	sess, err := h.Orchestrator.SelectSlot(c.Request.Context(), c.Param("sessionID"), input.Slot, input.SelectedDate, input.Timezone)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sess, "step": wizard.StepDetails})
}

// SubmitDetailsHandler reserves the slot and moves the wizard to Payment, or
// straight to Success for free services.
func (h *BookingHandler) SubmitDetailsHandler(c *gin.Context) {
	var input struct {
		Contact models.ContactDetails `json:"contact" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	sess, step, err := h.Orchestrator.SubmitDetails(c.Request.Context(), c.Param("sessionID"), input.Contact)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sess, "step": step})
}

// ConfirmPaymentHandler records the optimistic client-side payment success.
func (h *BookingHandler) ConfirmPaymentHandler(c *gin.Context) {
	sess, err := h.Orchestrator.ConfirmPayment(c.Request.Context(), c.Param("sessionID"))
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sess, "step": wizard.StepSuccess})
}

// BookingStatusHandler returns the server-side booking record for the
// session; the payment view polls it for the authoritative confirmation.
func (h *BookingHandler) BookingStatusHandler(c *gin.Context) {
	booking, err := h.Orchestrator.BookingStatus(c.Request.Context(), c.Param("sessionID"))
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// CancelSessionHandler discards the session entirely.
func (h *BookingHandler) CancelSessionHandler(c *gin.Context) {
	if err := h.Orchestrator.Cancel(c.Request.Context(), c.Param("sessionID")); err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cancelled": true})
}

// BackHandler steps the wizard backwards.
func (h *BookingHandler) BackHandler(c *gin.Context) {
	sess, step, err := h.Orchestrator.Back(c.Request.Context(), c.Param("sessionID"))
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sess, "step": step})
}

// RestartHandler wipes the session back to the Service step.
func (h *BookingHandler) RestartHandler(c *gin.Context) {
	sess, err := h.Orchestrator.Restart(c.Request.Context(), c.Param("sessionID"))
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sess, "step": wizard.StepService})
}

// maxSlotRangeDays caps how far a single availability query may span. The
// resolver walks the range day by day, so the window has to stay bounded
// regardless of what the client asks for.
const maxSlotRangeDays = 90

// parseDateRange accepts RFC3339 instants or plain YYYY-MM-DD dates. An
// omitted range defaults to the week ahead; an oversized one is clamped.
func parseDateRange(fromStr, toStr string) (time.Time, time.Time, error) {
	parse := func(s string) (time.Time, error) {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t, nil
		}
		return time.Parse("2006-01-02", s)
	}

	from := time.Now().UTC()
	if fromStr != "" {
		t, err := parse(fromStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		from = t
	}

	to := from.AddDate(0, 0, 7)
	if toStr != "" {
		t, err := parse(toStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to = t
	}
	if !from.Before(to) {
		to = from.AddDate(0, 0, 7)
	}
	if limit := from.AddDate(0, 0, maxSlotRangeDays); to.After(limit) {
		to = limit
	}
	return from, to, nil
}

// respondBookingError maps the error taxonomy onto HTTP. Conflict and
// expiration outcomes carry the step the wizard must route back to.
func respondBookingError(c *gin.Context, err error) {
	var conflict *reservation.ConflictError
	var validation *reservation.ValidationError
	var expired *expiration.ExpirationError
	var payErr *payment.PaymentError
	var flow *wizard.FlowError

	switch {
	case errors.As(err, &conflict):
		utils.JSONRedirectError(c, http.StatusConflict, "slot no longer available", conflict.Message, string(wizard.StepSlot))
	case errors.As(err, &expired):
		utils.JSONRedirectError(c, http.StatusGone, "booking session expired", expired.Message, string(wizard.StepSlot))
	case errors.As(err, &validation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"message": "validation failed",
			"fields":  validation.Fields,
		})
	case errors.As(err, &payErr):
		utils.JSONError(c, http.StatusPaymentRequired, "payment failed", payErr.Message)
	case errors.As(err, &flow):
		utils.JSONError(c, http.StatusBadRequest, "invalid wizard transition", flow.Message)
	case errors.Is(err, session.ErrNotFound):
		utils.JSONError(c, http.StatusNotFound, "booking session not found or expired", "")
	default:
		utils.JSONError(c, http.StatusInternalServerError, "internal error", err.Error())
	}
}
