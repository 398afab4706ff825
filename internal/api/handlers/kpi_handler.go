// internal/api/handlers/kpi_handler.go
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aguavida/kpi-backend/internal/repository"
	"github.com/aguavida/kpi-backend/internal/service"
)

type KPIHandler struct {
	service *service.KPIService
}

func NewKPIHandler(service *service.KPIService) *KPIHandler {
	return &KPIHandler{service: service}
}

// GetDashboard returns the full metrics set for the reference date. The
// optional ?date=YYYY-MM-DD query lets clients replay a past day; everything
// else runs against today.
func (h *KPIHandler) GetDashboard(c *gin.Context) {
	referenceDate := time.Now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		referenceDate = parsed
	}

	metrics, err := h.service.GetDashboard(c.Request.Context(), referenceDate)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repository.ErrDataUnavailable) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, metrics)
}

// GetDiagnostics exposes what the latest aggregation pass recovered from.
func (h *KPIHandler) GetDiagnostics(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Diagnostics())
}

// GetHistorical returns the labeled revenue series for the trend chart.
func (h *KPIHandler) GetHistorical(c *gin.Context) {
	points, err := h.service.Historical(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, points)
}
