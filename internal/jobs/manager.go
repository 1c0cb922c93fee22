package jobs

import (
	"context"
	"sync"
	"time"

	"lineflow/pkg/logger"

	"github.com/robfig/cron/v3"
)

// Job represents a periodic background task.
type Job interface {
	Name() string
	Interval() time.Duration
	Run(ctx context.Context) error
}

// CronJob is a job driven by a cron expression instead of a fixed interval.
type CronJob interface {
	Name() string
	CronSpec() string
	Run(ctx context.Context) error
}

// Manager orchestrates the lifecycle of background jobs.
type Manager struct {
	ctx     context.Context
	cancel  context.CancelFunc
	jobs    []Job
	cron    *cron.Cron
	started bool

	mu sync.Mutex
	wg sync.WaitGroup
}

// NewManager creates a job manager bound to the provided context.
func NewManager(parent context.Context) *Manager {
	ctx, cancel := context.WithCancel(parent)
	return &Manager{
		ctx:    ctx,
		cancel: cancel,
		jobs:   make([]Job, 0),
		cron:   cron.New(),
	}
}

// Register adds an interval job to the manager.
func (m *Manager) Register(job Job) {
	if job == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs = append(m.jobs, job)
}

// RegisterCron adds a cron-expression job to the manager.
func (m *Manager) RegisterCron(job CronJob) error {
	if job == nil {
		return nil
	}
	_, err := m.cron.AddFunc(job.CronSpec(), func() {
		if err := job.Run(m.ctx); err != nil {
			logger.WarnCtx(m.ctx, "background job %s failed: %v", job.Name(), err)
		}
	})
	if err != nil {
		return err
	}
	logger.Infof("registered cron job %s (%s)", job.Name(), job.CronSpec())
	return nil
}

// Start launches all registered jobs.
func (m *Manager) Start() {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return
	}
	m.started = true
	jobs := append([]Job(nil), m.jobs...)
	m.mu.Unlock()

	for _, job := range jobs {
		m.wg.Add(1)
		go m.runJob(job)
	}
	m.cron.Start()
}

// Stop signals all jobs to stop.
func (m *Manager) Stop() {
	m.cancel()
	cronCtx := m.cron.Stop()
	<-cronCtx.Done()
}

// Wait blocks until all interval jobs exit.
func (m *Manager) Wait() {
	m.wg.Wait()
}

func (m *Manager) runJob(job Job) {
	defer m.wg.Done()

	interval := job.Interval()
	if interval <= 0 {
		interval = time.Minute
	}

	// Run immediately once.
	m.executeJob(job)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.executeJob(job)
		}
	}
}

func (m *Manager) executeJob(job Job) {
	if err := job.Run(m.ctx); err != nil {
		logger.WarnCtx(m.ctx, "background job %s failed: %v", job.Name(), err)
	}
}
