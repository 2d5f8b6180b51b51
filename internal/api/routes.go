package api

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"landradar/server/config"
)

func SetupRoutes(router *gin.Engine, cfg *config.Config, logger *logrus.Logger) {
	handler := NewHandler(cfg, logger)

	api := router.Group("/api")
	{
		api.GET("/area-prices", handler.GetAreaPrices)
		api.GET("/price-trend", handler.GetPriceTrend)
		api.GET("/utilities", handler.GetUtilities)
		api.GET("/location", handler.GetLocation)
		api.GET("/mapbox-search", handler.MapboxSearch)

		api.POST("/valuation", handler.RequestValuation)
		api.POST("/create-payload", handler.CreatePayload)
		api.POST("/planning-analysis", handler.PlanningAnalysis)
		api.POST("/radar-score", handler.RadarScore)
		api.POST("/valuation-summary", handler.ValuationSummary)

		api.GET("/map-tile-proxy", handler.MapTileProxy)
		api.POST("/map-service/detail-layer", handler.DetailLayer)

		proxy := api.Group("/guland-proxy")
		{
			proxy.POST("/planning", handler.GulandPlanning)
			proxy.GET("/check-plan", handler.GulandCheckPlan)
			proxy.GET("/geocoding", handler.GulandGeocoding)
			proxy.POST("/geocoding", handler.GulandGeocoding)
			proxy.GET("/road-points", handler.GulandRoadPoints)
			proxy.GET("/health", handler.GulandHealth)
			proxy.POST("/refresh-token", handler.GulandRefreshToken)
			proxy.GET("/pricing", handler.GulandPricing)
			proxy.POST("/pricing", handler.GulandPricing)
		}
	}
}
