package handler

import (
	"net/http"
	"time"

	"lineflow/internal/model"
	"lineflow/pkg/logger"
	"lineflow/pkg/queue/asynq"
	"lineflow/pkg/store/mysql"

	"github.com/gin-gonic/gin"
)

// EventHandler ingests batch completion events from collaborators
type EventHandler struct {
	queue          *asynq.Manager
	predictionRepo *mysql.PredictionRepository
}

// NewEventHandler creates event handler
func NewEventHandler(queue *asynq.Manager, predictionRepo *mysql.PredictionRepository) *EventHandler {
	return &EventHandler{queue: queue, predictionRepo: predictionRepo}
}

// BatchCompleted accepts a completion event and queues it for collection
// @Summary Report a completed batch
// @Tags Event
// @Accept json
// @Produce json
// @Router /api/v1/events/batch-completed [post]
func (h *EventHandler) BatchCompleted(c *gin.Context) {
	var event model.BatchCompletedEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if event.FactoryID == "" || event.BatchID == "" || event.LineScheduleID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "factory_id, batch_id and line_schedule_id are required"})
		return
	}
	if event.CompletedAt.IsZero() {
		event.CompletedAt = time.Now()
	}

	if err := h.queue.EnqueueBatchCompleted(c.Request.Context(), &event); err != nil {
		logger.ErrorCtx(c.Request.Context(), "failed to enqueue batch completion: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "queued", "batch_id": event.BatchID})
}

// SchedulePredictions lists stored predictions for one line schedule
// @Summary List schedule predictions
// @Tags Event
// @Produce json
// @Router /api/v1/schedules/{schedule_id}/predictions [get]
func (h *EventHandler) SchedulePredictions(c *gin.Context) {
	predictions, err := h.predictionRepo.ListBySchedule(c.Request.Context(), c.Param("schedule_id"))
	if err != nil {
		logger.ErrorCtx(c.Request.Context(), "failed to list predictions: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"predictions": predictions, "count": len(predictions)})
}
