package handler

import (
	"encoding/json"
	"net/http"

	"lineflow/internal/model"
	"lineflow/internal/service"
	"lineflow/pkg/constants"
	"lineflow/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/pretty"
)

// PlanHandler handles scheduling plan operations
type PlanHandler struct {
	planService *service.PlanService
}

// NewPlanHandler creates plan handler
func NewPlanHandler(planService *service.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

// Build builds the plan for one factory and date from a submitted snapshot
// @Summary Build a scheduling plan
// @Tags Plan
// @Accept json
// @Produce json
// @Router /api/v1/plans [post]
func (h *PlanHandler) Build(c *gin.Context) {
	var req model.PlanBuildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	plan, err := h.planService.BuildPlan(c.Request.Context(), &req)
	if err != nil {
		logger.ErrorCtx(c.Request.Context(), "failed to build plan: %v", err)
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, plan)
}

// Get returns a plan with its schedules and assignments
// @Summary Get plan detail
// @Tags Plan
// @Produce json
// @Router /api/v1/plans/{plan_id} [get]
func (h *PlanHandler) Get(c *gin.Context) {
	detail, err := h.planService.GetDetail(c.Request.Context(), c.Param("plan_id"))
	if err != nil {
		logger.ErrorCtx(c.Request.Context(), "failed to get plan: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if detail == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "plan not found"})
		return
	}
	c.JSON(http.StatusOK, detail)
}

// GetByDate returns the plan for a factory and date
// @Summary Get plan by factory and date
// @Tags Plan
// @Produce json
// @Router /api/v1/plans [get]
func (h *PlanHandler) GetByDate(c *gin.Context) {
	factoryID := c.Query("factory_id")
	date := c.Query("date")
	if factoryID == "" || date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "factory_id and date are required"})
		return
	}

	plan, err := h.planService.GetByFactoryDate(c.Request.Context(), factoryID, date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if plan == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no plan for that factory and date"})
		return
	}
	c.JSON(http.StatusOK, plan)
}

// Confirm marks a draft plan confirmed
// @Summary Confirm a draft plan
// @Tags Plan
// @Produce json
// @Router /api/v1/plans/{plan_id}/confirm [post]
func (h *PlanHandler) Confirm(c *gin.Context) {
	var req struct {
		ConfirmedBy string `json:"confirmed_by" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.planService.Confirm(c.Request.Context(), c.Param("plan_id"), req.ConfirmedBy); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "confirmed"})
}

// Export returns the full plan as indented JSON for download
// @Summary Export a plan
// @Tags Plan
// @Produce json
// @Router /api/v1/plans/{plan_id}/export [get]
func (h *PlanHandler) Export(c *gin.Context) {
	detail, err := h.planService.GetDetail(c.Request.Context(), c.Param("plan_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if detail == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "plan not found"})
		return
	}

	raw, err := json.Marshal(detail)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", "attachment; filename=plan-"+detail.Plan.ID+".json")
	c.Data(http.StatusOK, "application/json", pretty.Pretty(raw))
}

// UpdateAssignmentStatus transitions one assignment through its state machine
// @Summary Update assignment status
// @Tags Plan
// @Accept json
// @Produce json
// @Router /api/v1/assignments/{assignment_id}/status [post]
func (h *PlanHandler) UpdateAssignmentStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status := constants.AssignmentStatus(req.Status)
	switch status {
	case constants.AssignmentStatusCheckedIn, constants.AssignmentStatusCheckedOut, constants.AssignmentStatusAbsent:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid assignment status"})
		return
	}

	if err := h.planService.UpdateAssignmentStatus(c.Request.Context(), c.Param("assignment_id"), status); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": req.Status})
}
