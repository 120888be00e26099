package routes

import (
	"net/http"

	"practica/handlers"
	"practica/utils"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires every endpoint group onto the router.
func RegisterRoutes(r *gin.Engine, bh *handlers.BookingHandler, ch *handlers.CatalogHandler, wh *handlers.PaymentWebhookHandler) {
	RegisterBookingRoutes(r, bh)
	RegisterCatalogRoutes(r, ch)

	// Processor callbacks carry their own signature; no session token.
	r.POST("/api/webhooks/payment", wh.HandleStripeEvent)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, utils.GetHealthStatus())
	})
}

// RegisterCatalogRoutes registers the public catalogue endpoints.
func RegisterCatalogRoutes(r *gin.Engine, ch *handlers.CatalogHandler) {
	api := r.Group("/api/practitioners")
	{
		api.GET("/:practitionerID/services", ch.ListServicesHandler)
		api.GET("/:practitionerID/slots", ch.ListSlotsHandler)
	}
}
