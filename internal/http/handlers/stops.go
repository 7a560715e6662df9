package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// GET /api/stops/nearby?lat=55.75&long=37.61
func NearbyStops(c *gin.Context) {
	lat, err := strconv.ParseFloat(strings.TrimSpace(c.Query("lat")), 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_lat", "lat must be a number", nil)
		return
	}
	long, err := strconv.ParseFloat(strings.TrimSpace(c.Query("long")), 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_long", "long must be a number", nil)
		return
	}

	stops, err := fleet(c).Stops.Nearby(c.Request.Context(), lat, long)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if stops == nil {
		c.JSON(http.StatusOK, []any{})
		return
	}
	c.JSON(http.StatusOK, stops)
}
