package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/andresuchdata/stockcast/internal/insight"
	"github.com/andresuchdata/stockcast/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type PlanHandler struct {
	service *service.PlanningService
	insight *insight.Service
}

func NewPlanHandler(planningService *service.PlanningService, insightService *insight.Service) *PlanHandler {
	if insightService == nil {
		insightService = insight.NewService(nil)
	}
	return &PlanHandler{service: planningService, insight: insightService}
}

// parseToday reads an optional ?date=YYYY-MM-DD override, defaulting to the
// wall clock. The override exists so clients can replay a plan for a fixed
// day.
func parseToday(c *gin.Context) (time.Time, bool) {
	raw := strings.TrimSpace(c.Query("date"))
	if raw == "" {
		return time.Now().UTC(), true
	}
	today, err := time.Parse("2006-01-02", raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return time.Time{}, false
	}
	return today, true
}

func (h *PlanHandler) GetRisks(c *gin.Context) {
	today, ok := parseToday(c)
	if !ok {
		return
	}

	plan, err := h.service.CurrentPlan(c.Request.Context(), today)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to compute plan")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"risks": plan.Risks,
		"total": len(plan.Risks),
	})
}

func (h *PlanHandler) GetActions(c *gin.Context) {
	today, ok := parseToday(c)
	if !ok {
		return
	}

	plan, err := h.service.CurrentPlan(c.Request.Context(), today)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to compute plan")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"actions": plan.Actions,
		"total":   len(plan.Actions),
	})
}

func (h *PlanHandler) GetForecast(c *gin.Context) {
	today, ok := parseToday(c)
	if !ok {
		return
	}

	sku := strings.TrimSpace(c.Param("sku"))
	if sku == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sku is required"})
		return
	}

	fc, found, err := h.service.Forecast(c.Request.Context(), sku, today)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to compute forecast")
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown sku"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sku":      sku,
		"forecast": fc,
	})
}

func (h *PlanHandler) GetWarnings(c *gin.Context) {
	today, ok := parseToday(c)
	if !ok {
		return
	}

	plan, err := h.service.CurrentPlan(c.Request.Context(), today)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to compute plan")
		return
	}

	c.JSON(http.StatusOK, gin.H{"warnings": plan.Warnings})
}

func (h *PlanHandler) GetVendorPerformance(c *gin.Context) {
	today, ok := parseToday(c)
	if !ok {
		return
	}

	plan, err := h.service.CurrentPlan(c.Request.Context(), today)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to compute plan")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"vendors": plan.Vendors,
		"total":   len(plan.Vendors),
	})
}

// GetInsight serves the narrative summary. Collaborator failures degrade to
// fallback text inside the insight service, so this endpoint cannot 5xx on
// the collaborator's behalf.
func (h *PlanHandler) GetInsight(c *gin.Context) {
	today, ok := parseToday(c)
	if !ok {
		return
	}

	plan, err := h.service.CurrentPlan(c.Request.Context(), today)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to compute plan")
		return
	}

	c.JSON(http.StatusOK, gin.H{"insight": h.insight.Summary(c.Request.Context(), plan)})
}

func errorResponse(c *gin.Context, statusCode int, message string) {
	log.Error().Msg(message)
	c.JSON(statusCode, gin.H{"error": message})
}
