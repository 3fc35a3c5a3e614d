package handlers

import (
	"net/http"
	"time"

	"propertyservices/models"
	"propertyservices/services/location"
	"propertyservices/services/matching"
	"propertyservices/services/tasks"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// LocationHandler ingests provider positions and serves nearby-provider discovery. With a
// Queue set, reports are applied by the worker instead of inline.
type LocationHandler struct {
	Locations location.LocationService
	Matching  matching.MatchingService
	Queue     tasks.Enqueuer
}

func NewLocationHandler(locations location.LocationService, m matching.MatchingService, queue tasks.Enqueuer) *LocationHandler {
	return &LocationHandler{Locations: locations, Matching: m, Queue: queue}
}

type locationUpdateRequest struct {
	ProviderID  string     `json:"providerId" binding:"required"`
	Latitude    *float64   `json:"latitude" binding:"required"`
	Longitude   *float64   `json:"longitude" binding:"required"`
	IsAvailable *bool      `json:"isAvailable"`
	ReportedAt  *time.Time `json:"reportedAt"`
}

// UpdateLocation handles POST /api/location/providers/update.
func (h *LocationHandler) UpdateLocation(c *gin.Context) {
	logger := getLogger(c)
	var body locationUpdateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}

	req := location.ReportRequest{
		ProviderID:  body.ProviderID,
		Location:    models.Location{Latitude: *body.Latitude, Longitude: *body.Longitude},
		IsAvailable: body.IsAvailable == nil || *body.IsAvailable,
	}
	if body.ReportedAt != nil {
		req.ReportedAt = *body.ReportedAt
	}

	if h.Queue != nil {
		if err := tasks.EnqueueLocationReport(c.Request.Context(), h.Queue, req); err != nil {
			respondError(c, err)
			return
		}
		logger.Debug("Queued location report", zap.String("providerId", req.ProviderID))
		c.JSON(http.StatusAccepted, gin.H{"queued": true})
		return
	}

	res, err := h.Locations.Report(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type nearbyQuery struct {
	Lat         *float64 `form:"lat" binding:"required"`
	Lng         *float64 `form:"lng" binding:"required"`
	Radius      float64  `form:"radius" binding:"omitempty,min=1,max=50"`
	ServiceType string   `form:"serviceType"`
}

// NearbyProviders handles GET /api/location/providers/nearby.
func (h *LocationHandler) NearbyProviders(c *gin.Context) {
	var q nearbyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	results, err := h.Matching.DiscoverProviders(c.Request.Context(), matching.DiscoveryQuery{
		Origin:      models.Location{Latitude: *q.Lat, Longitude: *q.Lng},
		RadiusKm:    q.Radius,
		ServiceType: q.ServiceType,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"providers": results,
		"count":     len(results),
	})
}
