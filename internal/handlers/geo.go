package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// The geo endpoints answer without the envelope: an empty 200 on update and a
// bare array for nearby.

func (h HandlerSet) UpdateLocation(c *gin.Context) {
	lat, lon, valid := coordinates(c)
	if !valid {
		return
	}
	if err := h.services.Geo.UpdateLocation(c.Request.Context(), currentUser(c), lat, lon); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (h HandlerSet) NearbyProviders(c *gin.Context) {
	lat, lon, valid := coordinates(c)
	if !valid {
		return
	}
	radius := 0.0
	if raw := c.Query("radius"); raw != "" {
		r, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			badRequest(c, "Invalid radius")
			return
		}
		radius = r
	}

	providers, err := h.services.Geo.NearbyProviders(c.Request.Context(), lat, lon, radius)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, providers)
}

func coordinates(c *gin.Context) (float64, float64, bool) {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lon, errLon := strconv.ParseFloat(c.Query("lon"), 64)
	if errLat != nil || errLon != nil {
		badRequest(c, "lat and lon query parameters are required")
		return 0, 0, false
	}
	return lat, lon, true
}
