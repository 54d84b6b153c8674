package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thebethel/portal-api/internal/service"
	"github.com/thebethel/portal-api/pkg/response"
)

// MetricsHandler exposes runtime metric snapshots for operators.
type MetricsHandler struct {
	metrics *service.MetricsService
}

// NewMetricsHandler constructs MetricsHandler.
func NewMetricsHandler(metrics *service.MetricsService) *MetricsHandler {
	return &MetricsHandler{metrics: metrics}
}

// Snapshot godoc
// @Summary Aggregated runtime metrics
// @Tags System
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /system/metrics [get]
func (h *MetricsHandler) Snapshot(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.metrics.Snapshot(), nil)
}

// Prometheus returns the raw Prometheus exposition handler.
func (h *MetricsHandler) Prometheus() gin.HandlerFunc {
	return gin.WrapH(h.metrics.Handler())
}
