package handler

import (
	"net/http"

	"lineflow/internal/model"
	"lineflow/internal/service"
	"lineflow/pkg/logger"
	"lineflow/pkg/store/mysql"

	"github.com/gin-gonic/gin"
)

// ConfigHandler handles scheduling configuration operations
type ConfigHandler struct {
	configService *service.ConfigService
	historyRepo   *mysql.WeightHistoryRepository
}

// NewConfigHandler creates config handler
func NewConfigHandler(configService *service.ConfigService, historyRepo *mysql.WeightHistoryRepository) *ConfigHandler {
	return &ConfigHandler{configService: configService, historyRepo: historyRepo}
}

// Get returns the factory's configuration, creating defaults on first use
// @Summary Get scheduling config
// @Tags Config
// @Produce json
// @Router /api/v1/factories/{factory_id}/config [get]
func (h *ConfigHandler) Get(c *gin.Context) {
	cfg, err := h.configService.GetOrCreate(c.Request.Context(), c.Param("factory_id"))
	if err != nil {
		logger.ErrorCtx(c.Request.Context(), "failed to get config: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// Override applies a partial admin update under optimistic versioning
// @Summary Override scheduling config
// @Tags Config
// @Accept json
// @Produce json
// @Router /api/v1/factories/{factory_id}/config [put]
func (h *ConfigHandler) Override(c *gin.Context) {
	var req model.ConfigOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg, err := h.configService.Override(c.Request.Context(), c.Param("factory_id"), &req)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// WeightHistory lists recent adaptation events for audit
// @Summary List weight adaptation history
// @Tags Config
// @Produce json
// @Router /api/v1/factories/{factory_id}/weight-history [get]
func (h *ConfigHandler) WeightHistory(c *gin.Context) {
	const historyLimit = 50
	events, err := h.historyRepo.ListByFactory(c.Request.Context(), c.Param("factory_id"), historyLimit)
	if err != nil {
		logger.ErrorCtx(c.Request.Context(), "failed to list weight history: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events, "count": len(events)})
}
