package jobs

import (
	"context"
	"time"

	"lineflow/pkg/logger"
	"lineflow/pkg/store/mysql"
)

// PlanLifecycleJob advances plan statuses as the calendar moves: confirmed
// plans whose date has arrived start, and in-progress plans whose schedules
// have all closed complete.
type PlanLifecycleJob struct {
	interval time.Duration
	planRepo *mysql.PlanRepository
}

// NewPlanLifecycleJob creates the plan status rollup job
func NewPlanLifecycleJob(interval time.Duration, planRepo *mysql.PlanRepository) *PlanLifecycleJob {
	return &PlanLifecycleJob{interval: interval, planRepo: planRepo}
}

func (j *PlanLifecycleJob) Name() string { return "plan-lifecycle" }

func (j *PlanLifecycleJob) Interval() time.Duration { return j.interval }

func (j *PlanLifecycleJob) Run(ctx context.Context) error {
	started, err := j.planRepo.StartDuePlans(ctx, time.Now())
	if err != nil {
		return err
	}
	completed, err := j.planRepo.CompleteFinishedPlans(ctx)
	if err != nil {
		return err
	}
	if started > 0 || completed > 0 {
		logger.InfoCtx(ctx, "plan lifecycle: %d started, %d completed", started, completed)
	}
	return nil
}
