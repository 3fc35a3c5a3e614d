package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Service endpoints
	MatchProvidersHandler   gin.HandlerFunc
	EstimateCostHandler     gin.HandlerFunc
	ListServiceTypesHandler gin.HandlerFunc

	// Location endpoints
	UpdateLocationHandler  gin.HandlerFunc
	NearbyProvidersHandler gin.HandlerFunc

	// Proximity admin endpoints
	ProximityTestHandler      gin.HandlerFunc
	ProximityConfigHandler    gin.HandlerFunc
	ProximityReloadHandler    gin.HandlerFunc
	ProximityAnalyticsHandler gin.HandlerFunc

	HealthHandler gin.HandlerFunc
}

// NewHandlerBundle assembles the bundle from the per-area handlers.
func NewHandlerBundle(services *ServiceHandler, locations *LocationHandler, admin *ProximityAdminHandler) *HandlerBundle {
	return &HandlerBundle{
		MatchProvidersHandler:   services.FindMatches,
		EstimateCostHandler:     services.EstimateCost,
		ListServiceTypesHandler: services.ListServiceTypes,

		UpdateLocationHandler:  locations.UpdateLocation,
		NearbyProvidersHandler: locations.NearbyProviders,

		ProximityTestHandler:      admin.TestCalculation,
		ProximityConfigHandler:    admin.GetConfig,
		ProximityReloadHandler:    admin.ReloadConfig,
		ProximityAnalyticsHandler: admin.Analytics,

		HealthHandler: HealthHandler,
	}
}
