package handlers

import (
	"net/http"
	"time"

	"propertyservices/config"
	"propertyservices/models"
	"propertyservices/services/pricing"
	"propertyservices/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ProximityAdminHandler exposes proximity configuration, test calculations and analytics.
type ProximityAdminHandler struct {
	Pricing pricing.PricingService
	Config  *config.EngineStore
}

func NewProximityAdminHandler(p pricing.PricingService, cfg *config.EngineStore) *ProximityAdminHandler {
	return &ProximityAdminHandler{Pricing: p, Config: cfg}
}

type testCalculationRequest struct {
	PropertyLat       *float64        `json:"propertyLat" binding:"required"`
	PropertyLng       *float64        `json:"propertyLng" binding:"required"`
	ProviderLat       *float64        `json:"providerLat" binding:"required"`
	ProviderLng       *float64        `json:"providerLng" binding:"required"`
	ServiceType       string          `json:"serviceType" binding:"required"`
	RequestedDateTime time.Time       `json:"requestedDateTime" binding:"required"`
	Priority          models.Priority `json:"priority" binding:"required"`
	MarketID          string          `json:"marketId" binding:"required"`
}

// TestCalculation handles POST /api/admin/proximity/test.
func (h *ProximityAdminHandler) TestCalculation(c *gin.Context) {
	var body testCalculationRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.Pricing.TestCalculation(c.Request.Context(), pricing.TestCalculationRequest{
		PropertyLocation: models.Location{Latitude: *body.PropertyLat, Longitude: *body.PropertyLng},
		ProviderLocation: models.Location{Latitude: *body.ProviderLat, Longitude: *body.ProviderLng},
		ServiceType:      body.ServiceType,
		RequestedAt:      body.RequestedDateTime,
		Priority:         body.Priority,
		MarketID:         body.MarketID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"data":        res.Result,
		"explanation": res.Explanation,
		"details":     res.Details,
	})
}

// GetConfig handles GET /api/admin/proximity/config.
func (h *ProximityAdminHandler) GetConfig(c *gin.Context) {
	cfg := h.Config.Current()
	c.JSON(http.StatusOK, gin.H{
		"version":             cfg.Version,
		"proximity":           cfg.ProximityMultipliers,
		"providerIncentives":  cfg.ProviderIncentives,
		"priorityMultipliers": cfg.PriorityMultipliers,
	})
}

// ReloadConfig handles POST /api/admin/proximity/reload. A rejected file leaves the current
// configuration in place.
func (h *ProximityAdminHandler) ReloadConfig(c *gin.Context) {
	previous := h.Config.Current().Version
	if err := h.Config.Reload(); err != nil {
		getLogger(c).Warn("Engine config reload rejected", zap.String("version", previous), zap.Error(err))
		utils.JSONError(c, http.StatusUnprocessableEntity, "configuration rejected", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"previousVersion": previous,
		"version":         h.Config.Current().Version,
	})
}

type analyticsQuery struct {
	Days int `form:"days" binding:"omitempty,min=1,max=365"`
}

// Analytics handles GET /api/admin/proximity/analytics.
func (h *ProximityAdminHandler) Analytics(c *gin.Context) {
	var q analyticsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	dist, err := h.Pricing.Analytics(c.Request.Context(), time.Duration(q.Days)*24*time.Hour)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dist)
}
