package asynq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"lineflow/internal/model"
	"lineflow/pkg/config"
	"lineflow/pkg/logger"

	"github.com/hibiken/asynq"
)

const (
	TypeBatchCompleted = "batch:completed"
)

// Manager queue manager
type Manager struct {
	client *asynq.Client
	server *asynq.Server
	mux    *asynq.ServeMux
}

// NewManager creates queue manager
func NewManager(cfg *config.Config) (*Manager, error) {
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	client := asynq.NewClient(redisOpt)

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: cfg.Queue.Concurrency,
			Queues: map[string]int{
				"default": 10,
			},
			RetryDelayFunc: func(n int, err error, task *asynq.Task) time.Duration {
				return time.Duration(n) * time.Second
			},
		},
	)

	mux := asynq.NewServeMux()

	return &Manager{
		client: client,
		server: server,
		mux:    mux,
	}, nil
}

// EnqueueBatchCompleted enqueues a batch completion event. The batch ID is
// the task ID, so a double-submitted event dedups at the queue already.
func (m *Manager) EnqueueBatchCompleted(ctx context.Context, event *model.BatchCompletedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal batch completion event: %w", err)
	}

	task := asynq.NewTask(TypeBatchCompleted, payload)

	opts := []asynq.Option{
		asynq.TaskID(event.BatchID),
		asynq.MaxRetry(config.GlobalConfig.Queue.MaxRetry),
	}

	info, err := m.client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		if err == asynq.ErrTaskIDConflict {
			logger.InfoCtx(ctx, "batch completion event already queued, batch_id: %s", event.BatchID)
			return nil
		}
		return fmt.Errorf("failed to enqueue batch completion event: %w", err)
	}

	logger.InfoCtx(ctx, "batch completion event enqueued, batch_id: %s, queue: %s", event.BatchID, info.Queue)

	return nil
}

// RegisterHandler registers task handler
func (m *Manager) RegisterHandler(pattern string, handler asynq.Handler) {
	m.mux.Handle(pattern, handler)
}

// Start starts queue processor
func (m *Manager) Start() error {
	logger.InfoCtx(context.Background(), "starting queue server")
	return m.server.Start(m.mux)
}

// Stop stops queue processor
func (m *Manager) Stop() {
	logger.InfoCtx(context.Background(), "stopping queue server")
	m.server.Stop()
	m.server.Shutdown()
}

// Close closes client
func (m *Manager) Close() error {
	return m.client.Close()
}

// GetPendingTaskCount retrieves pending task count
func (m *Manager) GetPendingTaskCount() (int, error) {
	inspector := asynq.NewInspector(asynq.RedisClientOpt{
		Addr:     config.GlobalConfig.Redis.Addr,
		Password: config.GlobalConfig.Redis.Password,
		DB:       config.GlobalConfig.Redis.DB,
	})
	defer inspector.Close()

	stats, err := inspector.GetQueueInfo("default")
	if err != nil {
		return 0, err
	}

	return stats.Pending, nil
}
