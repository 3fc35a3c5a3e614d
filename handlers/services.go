package handlers

import (
	"net/http"
	"time"

	"propertyservices/config"
	"propertyservices/models"
	"propertyservices/services/matching"
	"propertyservices/services/pricing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ServiceHandler serves matching, cost estimates and the service catalogue.
type ServiceHandler struct {
	Matching matching.MatchingService
	Pricing  pricing.PricingService
	Config   *config.EngineStore
	Now      func() time.Time
}

func NewServiceHandler(m matching.MatchingService, p pricing.PricingService, cfg *config.EngineStore) *ServiceHandler {
	return &ServiceHandler{Matching: m, Pricing: p, Config: cfg, Now: time.Now}
}

type matchRequest struct {
	Property          models.PropertyLocation `json:"property"`
	ServiceType       string                  `json:"serviceType" binding:"required"`
	RequestedDateTime *time.Time              `json:"requestedDateTime"`
	Priority          models.Priority         `json:"priority"`
}

// FindMatches handles POST /api/services/match.
func (h *ServiceHandler) FindMatches(c *gin.Context) {
	logger := getLogger(c)
	var body matchRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}

	requestedAt := h.Now()
	if body.RequestedDateTime != nil {
		requestedAt = *body.RequestedDateTime
	}

	results, err := h.Matching.FindMatchingProviders(c.Request.Context(), matching.MatchRequest{
		Property:    body.Property,
		ServiceType: body.ServiceType,
		RequestedAt: requestedAt,
		Priority:    body.Priority,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	logger.Info("Matched providers", zap.String("serviceType", body.ServiceType), zap.Int("count", len(results)))
	c.JSON(http.StatusOK, gin.H{
		"providers": results,
		"count":     len(results),
	})
}

type estimateRequest struct {
	Property          models.PropertyLocation `json:"property"`
	ServiceType       string                  `json:"serviceType" binding:"required"`
	Priority          models.Priority         `json:"priority"`
	ProviderID        string                  `json:"providerId"`
	RequestedDateTime *time.Time              `json:"requestedDateTime"`
}

// EstimateCost handles POST /api/services/estimate-cost.
func (h *ServiceHandler) EstimateCost(c *gin.Context) {
	var body estimateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}

	price, err := h.Pricing.PriceService(c.Request.Context(), pricing.PriceRequest{
		Property:    body.Property,
		ServiceType: body.ServiceType,
		Priority:    body.Priority,
		ProviderID:  body.ProviderID,
		RequestedAt: body.RequestedDateTime,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	resp := gin.H{"pricing": price}
	if price.Proximity != nil {
		resp["proximityExplanation"] = pricing.ExplainProximityItems(*price.Proximity)
	}
	c.JSON(http.StatusOK, resp)
}

type serviceTypeView struct {
	Key string `json:"key"`
	config.ServiceTypeConfig
}

// ListServiceTypes handles GET /api/services/types.
func (h *ServiceHandler) ListServiceTypes(c *gin.Context) {
	cfg := h.Config.Current()
	names := cfg.ServiceTypeNames()
	types := make([]serviceTypeView, 0, len(names))
	for _, name := range names {
		st, _ := cfg.ServiceType(name)
		types = append(types, serviceTypeView{Key: name, ServiceTypeConfig: st})
	}
	c.JSON(http.StatusOK, gin.H{"serviceTypes": types})
}
