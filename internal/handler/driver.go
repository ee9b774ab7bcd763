package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"freight/internal/service"
)

// DriverHandler handles HTTP requests for drivers.
type DriverHandler struct {
	locationService *service.LocationService
}

// NewDriverHandler creates a new DriverHandler.
func NewDriverHandler(locationService *service.LocationService) *DriverHandler {
	return &DriverHandler{locationService: locationService}
}

// UpdateLocationResponse is the HTTP response for a location update.
type UpdateLocationResponse struct {
	DriverID string `json:"driver_id"`
	Applied  bool   `json:"applied"`
}

// UpdateLocation handles POST /v1/drivers/:id/location
func (h *DriverHandler) UpdateLocation(c *gin.Context) {
	var req LocationBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	driverID := c.Param("id")
	applied, err := h.locationService.UpdateLocation(c.Request.Context(), driverID, req.toDomain())
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, UpdateLocationResponse{DriverID: driverID, Applied: applied})
}
