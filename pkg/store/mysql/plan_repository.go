package mysql

import (
	"context"
	"fmt"
	"time"

	"lineflow/pkg/constants"
	"lineflow/pkg/store/mysql/model"

	"gorm.io/gorm"
)

// PlanRepository handles scheduling plan and line schedule persistence
type PlanRepository struct {
	ds *Datastore
}

// NewPlanRepository creates a new plan repository
func NewPlanRepository(ds *Datastore) *PlanRepository {
	return &PlanRepository{ds: ds}
}

// ExecTx runs fn in one transaction spanning this repository's datastore, so
// callers can combine plan writes with other repositories atomically.
func (r *PlanRepository) ExecTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.ds.ExecTx(ctx, fn)
}

// Create creates a plan together with its line schedules
func (r *PlanRepository) Create(ctx context.Context, plan *model.SchedulingPlan, schedules []*model.LineSchedule) error {
	return r.ds.ExecTx(ctx, func(txCtx context.Context) error {
		if err := r.ds.DB(txCtx).Create(plan).Error; err != nil {
			return fmt.Errorf("failed to create plan: %w", err)
		}
		if len(schedules) > 0 {
			if err := r.ds.DB(txCtx).Create(schedules).Error; err != nil {
				return fmt.Errorf("failed to create line schedules: %w", err)
			}
		}
		return nil
	})
}

// Get retrieves a plan by ID, nil if none exists
func (r *PlanRepository) Get(ctx context.Context, planID string) (*model.SchedulingPlan, error) {
	var plan model.SchedulingPlan
	err := r.ds.DB(ctx).Where("id = ?", planID).First(&plan).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	return &plan, nil
}

// GetByFactoryDate retrieves the plan for a factory and date, nil if none exists.
// Plans are unique per (factory, date).
func (r *PlanRepository) GetByFactoryDate(ctx context.Context, factoryID string, date time.Time) (*model.SchedulingPlan, error) {
	var plan model.SchedulingPlan
	day := date.Truncate(24 * time.Hour)
	err := r.ds.DB(ctx).Where("factory_id = ? AND plan_date = ?", factoryID, day).First(&plan).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get plan by factory/date: %w", err)
	}
	return &plan, nil
}

// UpdateStatus transitions a plan's status
func (r *PlanRepository) UpdateStatus(ctx context.Context, planID string, status constants.PlanStatus) error {
	return r.ds.DB(ctx).Model(&model.SchedulingPlan{}).
		Where("id = ?", planID).
		Update("status", status).Error
}

// Confirm marks a draft plan confirmed by a human
func (r *PlanRepository) Confirm(ctx context.Context, planID, confirmedBy string) error {
	now := time.Now()
	res := r.ds.DB(ctx).Model(&model.SchedulingPlan{}).
		Where("id = ? AND status = ?", planID, constants.PlanStatusDraft).
		Updates(map[string]interface{}{
			"status":       constants.PlanStatusConfirmed,
			"confirmed_by": confirmedBy,
			"confirmed_at": &now,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to confirm plan: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("plan %s is not in draft state", planID)
	}
	return nil
}

// Delete removes a draft plan with its schedules and assignments, used when
// rebuilding a plan before it has been confirmed.
func (r *PlanRepository) Delete(ctx context.Context, planID string) error {
	return r.ds.ExecTx(ctx, func(txCtx context.Context) error {
		if err := r.ds.DB(txCtx).Where("plan_id = ?", planID).Delete(&model.WorkerAssignment{}).Error; err != nil {
			return fmt.Errorf("failed to delete assignments: %w", err)
		}
		if err := r.ds.DB(txCtx).Where("plan_id = ?", planID).Delete(&model.LineSchedule{}).Error; err != nil {
			return fmt.Errorf("failed to delete line schedules: %w", err)
		}
		if err := r.ds.DB(txCtx).Where("id = ?", planID).Delete(&model.SchedulingPlan{}).Error; err != nil {
			return fmt.Errorf("failed to delete plan: %w", err)
		}
		return nil
	})
}

// StartDuePlans moves confirmed plans whose date has arrived to IN_PROGRESS.
// Returns the number of plans started.
func (r *PlanRepository) StartDuePlans(ctx context.Context, now time.Time) (int64, error) {
	res := r.ds.DB(ctx).Model(&model.SchedulingPlan{}).
		Where("status = ? AND plan_date <= ?", constants.PlanStatusConfirmed, now).
		Update("status", constants.PlanStatusInProgress)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to start due plans: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// CompleteFinishedPlans moves in-progress plans to COMPLETED once none of
// their schedules remain open. Returns the number of plans completed.
func (r *PlanRepository) CompleteFinishedPlans(ctx context.Context) (int64, error) {
	open := []constants.ScheduleStatus{
		constants.ScheduleStatusPlanned,
		constants.ScheduleStatusUnderstaffed,
		constants.ScheduleStatusInProgress,
	}
	res := r.ds.DB(ctx).Model(&model.SchedulingPlan{}).
		Where("status = ?", constants.PlanStatusInProgress).
		Where("NOT EXISTS (SELECT 1 FROM line_schedules WHERE line_schedules.plan_id = scheduling_plans.id AND line_schedules.status IN ?)", open).
		Update("status", constants.PlanStatusCompleted)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to complete finished plans: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// ListSchedules retrieves all line schedules of a plan
func (r *PlanRepository) ListSchedules(ctx context.Context, planID string) ([]*model.LineSchedule, error) {
	var schedules []*model.LineSchedule
	err := r.ds.DB(ctx).Where("plan_id = ?", planID).Order("line_id, planned_start").Find(&schedules).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list line schedules: %w", err)
	}
	return schedules, nil
}

// GetSchedule retrieves one line schedule by ID, nil if none exists
func (r *PlanRepository) GetSchedule(ctx context.Context, scheduleID string) (*model.LineSchedule, error) {
	var schedule model.LineSchedule
	err := r.ds.DB(ctx).Where("id = ?", scheduleID).First(&schedule).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get line schedule: %w", err)
	}
	return &schedule, nil
}

// UpdateScheduleActuals records actual timings and efficiency as a batch completes
func (r *PlanRepository) UpdateScheduleActuals(ctx context.Context, scheduleID string, actualStart, actualEnd time.Time, actualEfficiency float64) error {
	return r.ds.DB(ctx).Model(&model.LineSchedule{}).
		Where("id = ?", scheduleID).
		Updates(map[string]interface{}{
			"status":            constants.ScheduleStatusCompleted,
			"actual_start":      &actualStart,
			"actual_end":        &actualEnd,
			"actual_efficiency": actualEfficiency,
		}).Error
}

// UpdateScheduleRisk updates the predicted efficiency and risk level of a schedule
func (r *PlanRepository) UpdateScheduleRisk(ctx context.Context, scheduleID string, predictedEfficiency float64, risk constants.RiskLevel) error {
	return r.ds.DB(ctx).Model(&model.LineSchedule{}).
		Where("id = ?", scheduleID).
		Updates(map[string]interface{}{
			"predicted_efficiency": predictedEfficiency,
			"risk_level":           risk,
		}).Error
}
