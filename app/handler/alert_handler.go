package handler

import (
	"net/http"

	"lineflow/internal/service"
	"lineflow/pkg/logger"

	"github.com/gin-gonic/gin"
)

// AlertHandler handles scheduling alert operations
type AlertHandler struct {
	alertService *service.AlertService
}

// NewAlertHandler creates alert handler
func NewAlertHandler(alertService *service.AlertService) *AlertHandler {
	return &AlertHandler{alertService: alertService}
}

// ListActive lists active alerts, optionally scoped to one factory
// @Summary List active alerts
// @Tags Alert
// @Produce json
// @Router /api/v1/alerts [get]
func (h *AlertHandler) ListActive(c *gin.Context) {
	alerts, err := h.alertService.ListActive(c.Request.Context(), c.Query("factory_id"))
	if err != nil {
		logger.ErrorCtx(c.Request.Context(), "failed to list alerts: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts, "count": len(alerts)})
}

// Acknowledge moves an active alert to acknowledged
// @Summary Acknowledge an alert
// @Tags Alert
// @Accept json
// @Produce json
// @Router /api/v1/alerts/{alert_id}/ack [post]
func (h *AlertHandler) Acknowledge(c *gin.Context) {
	var req struct {
		Actor string `json:"actor" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.alertService.Acknowledge(c.Request.Context(), c.Param("alert_id"), req.Actor); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "acknowledged"})
}

// Resolve closes an alert
// @Summary Resolve an alert
// @Tags Alert
// @Produce json
// @Router /api/v1/alerts/{alert_id}/resolve [post]
func (h *AlertHandler) Resolve(c *gin.Context) {
	if err := h.alertService.Resolve(c.Request.Context(), c.Param("alert_id")); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "resolved"})
}

// Ignore dismisses an active alert with a reason
// @Summary Ignore an alert
// @Tags Alert
// @Accept json
// @Produce json
// @Router /api/v1/alerts/{alert_id}/ignore [post]
func (h *AlertHandler) Ignore(c *gin.Context) {
	var req struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.alertService.Ignore(c.Request.Context(), c.Param("alert_id"), req.Reason); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ignored"})
}
