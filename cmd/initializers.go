package main

import (
	"fmt"
	"net/http"

	"lineflow/app/handler"
	"lineflow/app/router"
	"lineflow/internal/service"
	"lineflow/pkg/config"
	"lineflow/pkg/lock"
	"lineflow/pkg/logger"
	"lineflow/pkg/notification"
	"lineflow/pkg/prediction"
	queueasynq "lineflow/pkg/queue/asynq"
	mysqlstore "lineflow/pkg/store/mysql"
	redisstore "lineflow/pkg/store/redis"
	"lineflow/pkg/tuner"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
)

// initConfig initializes configuration
func (app *Application) initConfig() error {
	if err := config.Init(); err != nil {
		return err
	}
	app.config = config.GlobalConfig
	return nil
}

// initLogger initializes logging
func (app *Application) initLogger() error {
	if err := logger.Init(); err != nil {
		return err
	}
	app.registerCleanup(func() {
		logger.Sync()
	})
	return nil
}

// initMySQL initializes MySQL
func (app *Application) initMySQL() error {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		app.config.MySQL.User,
		app.config.MySQL.Password,
		app.config.MySQL.Host,
		app.config.MySQL.Port,
		app.config.MySQL.Database,
	)

	repo, err := mysqlstore.NewRepository(dsn)
	if err != nil {
		return err
	}

	app.mysqlRepo = repo
	app.registerCleanup(func() {
		repo.Close()
		logger.InfoCtx(app.ctx, "MySQL connection has been closed")
	})

	return nil
}

// initRedis initializes Redis. The connection backs the per-factory locks;
// without it the process runs in single-instance mode.
func (app *Application) initRedis() error {
	client, err := redisstore.NewRedisClient(app.config)
	if err != nil {
		logger.WarnCtx(app.ctx, "Redis unavailable, running without distributed locks: %v", err)
		return nil
	}

	app.redisClient = client
	app.registerCleanup(func() {
		client.Close()
		logger.InfoCtx(app.ctx, "Redis connection has been closed")
	})
	return nil
}

// initQueue initializes the batch completion event queue
func (app *Application) initQueue() error {
	mgr, err := queueasynq.NewManager(app.config)
	if err != nil {
		return err
	}
	app.queue = mgr
	app.registerCleanup(func() {
		mgr.Close()
		logger.InfoCtx(app.ctx, "Queue client has been closed")
	})
	return nil
}

// initServices wires the service layer
func (app *Application) initServices() error {
	repo := app.mysqlRepo

	app.configService = service.NewConfigService(repo.SchedulingConfig, repo.WeightHistory)

	app.predictor = prediction.NewService(repo.ModelVersion, repo.PredictionWeight, prediction.FileArtifactResolver{})

	notifier := notification.NewWebhookNotifier()
	app.alertService = service.NewAlertService(repo.Alert, notifier)

	app.weightTuner = tuner.NewTuner(
		repo.SchedulingConfig,
		repo.TrainingData,
		repo.WeightHistory,
		repo.Assignment,
		app.alertService,
		app.lockFactory("tuner"),
	)

	app.planService = service.NewPlanService(
		app.configService,
		repo.WorkerProfile,
		repo.Plan,
		repo.Assignment,
		repo.Prediction,
		app.predictor,
		app.alertService,
		app.lockFactory("planner"),
	)

	app.trainingService = service.NewTrainingService(
		repo.Plan,
		repo.Assignment,
		repo.WorkerProfile,
		repo.TrainingData,
		app.weightTuner,
	)

	app.modelService = service.NewModelService(repo.ModelVersion)

	app.queue.RegisterHandler(queueasynq.TypeBatchCompleted, asynq.HandlerFunc(app.trainingService.HandleBatchCompletedTask))

	return nil
}

// lockFactory builds per-factory distributed locks for one subsystem. With
// Redis down the locks degrade to single-instance mode.
func (app *Application) lockFactory(subsystem string) func(factoryID string) lock.DistributedLock {
	return func(factoryID string) lock.DistributedLock {
		if app.redisClient == nil {
			return lock.NewRedisDistributedLock(nil, subsystem+":factory:"+factoryID)
		}
		return lock.NewRedisDistributedLock(app.redisClient.GetClient(), subsystem+":factory:"+factoryID)
	}
}

// initHandlers wires the handler layer
func (app *Application) initHandlers() error {
	app.planHandler = handler.NewPlanHandler(app.planService)
	app.alertHandler = handler.NewAlertHandler(app.alertService)
	app.configHandler = handler.NewConfigHandler(app.configService, app.mysqlRepo.WeightHistory)
	app.modelHandler = handler.NewModelHandler(app.modelService)
	app.eventHandler = handler.NewEventHandler(app.queue, app.mysqlRepo.Prediction)
	return nil
}

// initHTTPServer initializes the HTTP server
func (app *Application) initHTTPServer() error {
	r := router.NewRouter(app.planHandler, app.alertHandler, app.configHandler, app.modelHandler, app.eventHandler)

	// Set Gin mode
	gin.SetMode(app.config.Server.Mode)

	// Create Gin engine
	app.ginEngine = gin.New()

	// Setup routes
	r.Setup(app.ginEngine)

	// Create HTTP server
	app.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", app.config.Server.Port),
		Handler: app.ginEngine,
	}

	return nil
}
