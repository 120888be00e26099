package routes

import (
	"practica/handlers"
	"practica/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterBookingRoutes registers all endpoints for the booking wizard.
func RegisterBookingRoutes(r *gin.Engine, bh *handlers.BookingHandler) {
	booking := r.Group("/api/booking")
	{
		booking.POST("/session", bh.StartSessionHandler) // Start the wizard

		// Everything addressing an existing session requires its resume token.
		sess := booking.Group("/session/:sessionID")
		sess.Use(middleware.SessionAuthMiddleware())
		{
			sess.GET("", bh.ResumeSessionHandler)
			sess.DELETE("", bh.CancelSessionHandler)
			sess.PUT("/service", bh.SelectServiceHandler)
			sess.GET("/slots", bh.SessionSlotsHandler)
			sess.PUT("/slot", bh.SelectSlotHandler)
			sess.POST("/details", bh.SubmitDetailsHandler)
			sess.GET("/booking", bh.BookingStatusHandler)
			sess.POST("/payment/confirm", bh.ConfirmPaymentHandler)
			sess.POST("/back", bh.BackHandler)
			sess.POST("/restart", bh.RestartHandler)
		}
	}
}
