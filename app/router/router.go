package router

import (
	"lineflow/app/handler"
	"lineflow/app/middleware"

	"github.com/gin-gonic/gin"
)

// Router Router
type Router struct {
	planHandler   *handler.PlanHandler
	alertHandler  *handler.AlertHandler
	configHandler *handler.ConfigHandler
	modelHandler  *handler.ModelHandler
	eventHandler  *handler.EventHandler
}

// NewRouter creates a new Router
func NewRouter(planHandler *handler.PlanHandler, alertHandler *handler.AlertHandler, configHandler *handler.ConfigHandler, modelHandler *handler.ModelHandler, eventHandler *handler.EventHandler) *Router {
	return &Router{
		planHandler:   planHandler,
		alertHandler:  alertHandler,
		configHandler: configHandler,
		modelHandler:  modelHandler,
		eventHandler:  eventHandler,
	}
}

// Setup sets up routes
func (r *Router) Setup(engine *gin.Engine) {
	engine.Use(middleware.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Logger())

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := engine.Group("/api/v1")
	{
		// Plan building and execution
		v1.POST("/plans", r.planHandler.Build)
		v1.GET("/plans", r.planHandler.GetByDate)
		v1.GET("/plans/:plan_id", r.planHandler.Get)
		v1.POST("/plans/:plan_id/confirm", r.planHandler.Confirm)
		v1.GET("/plans/:plan_id/export", r.planHandler.Export)
		v1.POST("/assignments/:assignment_id/status", r.planHandler.UpdateAssignmentStatus)

		// Batch completion ingest and prediction lookups
		v1.POST("/events/batch-completed", r.eventHandler.BatchCompleted)
		v1.GET("/schedules/:schedule_id/predictions", r.eventHandler.SchedulePredictions)

		// Alert lifecycle
		v1.GET("/alerts", r.alertHandler.ListActive)
		v1.POST("/alerts/:alert_id/ack", r.alertHandler.Acknowledge)
		v1.POST("/alerts/:alert_id/resolve", r.alertHandler.Resolve)
		v1.POST("/alerts/:alert_id/ignore", r.alertHandler.Ignore)

		// Admin surface behind the API key
		admin := v1.Group("", middleware.AuthMiddleware())
		{
			admin.GET("/factories/:factory_id/config", r.configHandler.Get)
			admin.PUT("/factories/:factory_id/config", r.configHandler.Override)
			admin.GET("/factories/:factory_id/weight-history", r.configHandler.WeightHistory)

			admin.POST("/models", r.modelHandler.Register)
			admin.POST("/models/:model_id/trained", r.modelHandler.MarkTrained)
			admin.POST("/models/:model_id/promote", r.modelHandler.Promote)
			admin.GET("/factories/:factory_id/models", r.modelHandler.List)
		}
	}
}
