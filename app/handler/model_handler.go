package handler

import (
	"net/http"
	"strconv"

	"lineflow/internal/model"
	"lineflow/internal/service"
	"lineflow/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ModelHandler handles prediction model lifecycle operations
type ModelHandler struct {
	modelService *service.ModelService
}

// NewModelHandler creates model handler
func NewModelHandler(modelService *service.ModelService) *ModelHandler {
	return &ModelHandler{modelService: modelService}
}

// Register records a new model version in TRAINING state
// @Summary Register a model version
// @Tags Model
// @Accept json
// @Produce json
// @Router /api/v1/models [post]
func (h *ModelHandler) Register(c *gin.Context) {
	var req model.RegisterModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	mv, err := h.modelService.Register(c.Request.Context(), &req)
	if err != nil {
		logger.ErrorCtx(c.Request.Context(), "failed to register model: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, mv)
}

// MarkTrained records training metrics and the artifact reference
// @Summary Mark a model version trained
// @Tags Model
// @Accept json
// @Produce json
// @Router /api/v1/models/{model_id}/trained [post]
func (h *ModelHandler) MarkTrained(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("model_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid model id"})
		return
	}

	var req model.MarkTrainedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.modelService.MarkTrained(c.Request.Context(), id, &req); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "trained"})
}

// Promote makes a trained version the active one for its factory and type
// @Summary Promote a model version
// @Tags Model
// @Produce json
// @Router /api/v1/models/{model_id}/promote [post]
func (h *ModelHandler) Promote(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("model_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid model id"})
		return
	}

	if err := h.modelService.Promote(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "promoted"})
}

// List lists a factory's model versions
// @Summary List model versions
// @Tags Model
// @Produce json
// @Router /api/v1/factories/{factory_id}/models [get]
func (h *ModelHandler) List(c *gin.Context) {
	versions, err := h.modelService.ListByFactory(c.Request.Context(), c.Param("factory_id"))
	if err != nil {
		logger.ErrorCtx(c.Request.Context(), "failed to list model versions: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"versions": versions, "count": len(versions)})
}
