package handlers

import (
	"errors"
	"net/http"

	catalogRepo "practica/database/repository/catalog"
	"practica/services/availability"
	"practica/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CatalogHandler serves the public read-only catalogue: a practitioner's
// services and their bookable slots.
type CatalogHandler struct {
	Catalog  catalogRepo.CatalogRepository
	Resolver availability.Resolver
	Logger   *zap.Logger
}

func NewCatalogHandler(catalog catalogRepo.CatalogRepository, resolver availability.Resolver, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{Catalog: catalog, Resolver: resolver, Logger: logger}
}

// ListServicesHandler returns the services a practitioner offers.
func (h *CatalogHandler) ListServicesHandler(c *gin.Context) {
	practitionerID := c.Param("practitionerID")

	services, err := h.Catalog.ListServices(c.Request.Context(), practitionerID)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to list services", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"services": services})
}

// ListSlotsHandler computes bookable slots for a practitioner and service
// over a date range, projected into the visitor's timezone.
func (h *CatalogHandler) ListSlotsHandler(c *gin.Context) {
	practitionerID := c.Param("practitionerID")
	serviceID := c.Query("serviceId")
	if serviceID == "" {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", "serviceId is required")
		return
	}

	from, to, err := parseDateRange(c.Query("from"), c.Query("to"))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid date range", err.Error())
		return
	}

	ctx := c.Request.Context()
	practitioner, err := h.Catalog.GetPractitioner(ctx, practitionerID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrPractitionerNotFound) {
			utils.JSONError(c, http.StatusNotFound, "practitioner not found", "")
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "failed to load practitioner", err.Error())
		return
	}

	service, err := h.Catalog.GetService(ctx, serviceID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrServiceNotFound) {
			utils.JSONError(c, http.StatusNotFound, "service not found", "")
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "failed to load service", err.Error())
		return
	}

	slots, err := h.Resolver.Resolve(ctx, *practitioner, *service, from, to, c.Query("tz"))
	if err != nil {
		h.Logger.Error("slot resolution failed",
			zap.String("practitionerID", practitionerID), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "failed to compute availability", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"slots": slots})
}
