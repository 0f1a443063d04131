// internal/api/api.go
package api

import (
	"strings"
	"time"

	"github.com/andresuchdata/stockcast/internal/api/handlers"
	"github.com/andresuchdata/stockcast/internal/api/middleware"
	"github.com/andresuchdata/stockcast/internal/insight"
	"github.com/andresuchdata/stockcast/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Services struct {
	PlanningService *service.PlanningService
	InsightService  *insight.Service
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	// Add middleware
	router.Use(middleware.Logger())
	router.Use(gin.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	apiGroup := router.Group("/api/v1")

	if services != nil && services.PlanningService != nil {
		planHandler := handlers.NewPlanHandler(services.PlanningService, services.InsightService)
		planGroup := apiGroup.Group("/plan")
		{
			planGroup.GET("/risks", planHandler.GetRisks)
			planGroup.GET("/actions", planHandler.GetActions)
			planGroup.GET("/forecast/:sku", planHandler.GetForecast)
			planGroup.GET("/warnings", planHandler.GetWarnings)
			planGroup.GET("/insight", planHandler.GetInsight)
		}
		apiGroup.GET("/vendors/performance", planHandler.GetVendorPerformance)
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
