package routes

import (
	"net/http"
	"time"

	"propertyservices/handlers"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterServiceRoutes registers matching, estimate and catalogue endpoints.
func RegisterServiceRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/services")
	{
		api.POST("/match", hb.MatchProvidersHandler)
		api.POST("/estimate-cost", hb.EstimateCostHandler)
		api.GET("/types", hb.ListServiceTypesHandler)
	}
}

// RegisterLocationRoutes registers provider location ingestion and discovery.
func RegisterLocationRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/location/providers")
	{
		api.POST("/update", hb.UpdateLocationHandler)
		api.GET("/nearby", hb.NearbyProvidersHandler)
	}
}

// RegisterAdminRoutes sets up the proximity administration endpoints.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	adminGroup := r.Group("/api/admin/proximity")
	{
		adminGroup.POST("/test", hb.ProximityTestHandler)
		adminGroup.GET("/config", hb.ProximityConfigHandler)
		adminGroup.POST("/reload", hb.ProximityReloadHandler)
		adminGroup.GET("/analytics", hb.ProximityAnalyticsHandler)
	}
}

// RegisterHealthRoute registers the health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.HealthHandler)
}

// RegisterMetricsRoute exposes the Prometheus scrape endpoint.
func RegisterMetricsRoute(r *gin.Engine, metrics http.Handler) {
	r.GET("/metrics", gin.WrapH(metrics))
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, metrics http.Handler) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}))

	RegisterServiceRoutes(r, hb)
	RegisterLocationRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
	RegisterHealthRoute(r, hb)
	RegisterMetricsRoute(r, metrics)
}
