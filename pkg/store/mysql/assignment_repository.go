package mysql

import (
	"context"
	"fmt"
	"time"

	"lineflow/pkg/constants"
	"lineflow/pkg/store/mysql/model"

	"gorm.io/gorm"
)

// AssignmentRepository handles worker assignment persistence
type AssignmentRepository struct {
	ds *Datastore
}

// NewAssignmentRepository creates a new assignment repository
func NewAssignmentRepository(ds *Datastore) *AssignmentRepository {
	return &AssignmentRepository{ds: ds}
}

// CreateBatch creates assignments in one transaction
func (r *AssignmentRepository) CreateBatch(ctx context.Context, assignments []*model.WorkerAssignment) error {
	if len(assignments) == 0 {
		return nil
	}
	return r.ds.DB(ctx).Create(assignments).Error
}

// Get retrieves an assignment by ID, nil if none exists
func (r *AssignmentRepository) Get(ctx context.Context, assignmentID string) (*model.WorkerAssignment, error) {
	var assignment model.WorkerAssignment
	err := r.ds.DB(ctx).Where("id = ?", assignmentID).First(&assignment).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}
	return &assignment, nil
}

// ListByPlan retrieves all assignments of a plan, ordered for deterministic output
func (r *AssignmentRepository) ListByPlan(ctx context.Context, planID string) ([]*model.WorkerAssignment, error) {
	var assignments []*model.WorkerAssignment
	err := r.ds.DB(ctx).Where("plan_id = ?", planID).
		Order("line_schedule_id, worker_id").Find(&assignments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments by plan: %w", err)
	}
	return assignments, nil
}

// ListBySchedule retrieves all assignments of one line schedule
func (r *AssignmentRepository) ListBySchedule(ctx context.Context, scheduleID string) ([]*model.WorkerAssignment, error) {
	var assignments []*model.WorkerAssignment
	err := r.ds.DB(ctx).Where("line_schedule_id = ?", scheduleID).
		Order("worker_id").Find(&assignments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments by schedule: %w", err)
	}
	return assignments, nil
}

// CountRecentByWorker counts a worker's assignments since the given time,
// the input of the fairness bonus.
func (r *AssignmentRepository) CountRecentByWorker(ctx context.Context, workerID string, since time.Time) (int64, error) {
	var count int64
	err := r.ds.DB(ctx).Model(&model.WorkerAssignment{}).
		Where("worker_id = ? AND created_at >= ?", workerID, since).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count recent assignments: %w", err)
	}
	return count, nil
}

// ListRecentByFactory retrieves assignments of a factory's plans since the given
// time, joined through line schedules. Feeds the scoring history snapshot.
func (r *AssignmentRepository) ListRecentByFactory(ctx context.Context, factoryID string, since time.Time) ([]*model.WorkerAssignment, error) {
	var assignments []*model.WorkerAssignment
	err := r.ds.DB(ctx).
		Joins("JOIN line_schedules ON line_schedules.id = worker_assignments.line_schedule_id").
		Where("line_schedules.factory_id = ? AND worker_assignments.created_at >= ?", factoryID, since).
		Order("worker_assignments.created_at").
		Find(&assignments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recent assignments: %w", err)
	}
	return assignments, nil
}

// AssignmentHistoryRow is one past assignment joined with its schedule,
// the raw material of the scoring history indices.
type AssignmentHistoryRow struct {
	WorkerID     string    `gorm:"column:worker_id"`
	TaskType     string    `gorm:"column:task_type"`
	PlannedStart time.Time `gorm:"column:planned_start"`

	// Observed reward for the bandit, nil while the assignment is open
	PerformanceScore *float64 `gorm:"column:performance_score"`

	SKUComplexity        float64 `gorm:"column:sku_complexity"`
	EquipmentUtilization float64 `gorm:"column:equipment_utilization"`
}

// ListHistoryByFactory retrieves (worker, task type, date) history rows for a
// factory since the given time, ordered by date ascending.
func (r *AssignmentRepository) ListHistoryByFactory(ctx context.Context, factoryID string, since time.Time) ([]AssignmentHistoryRow, error) {
	var rows []AssignmentHistoryRow
	err := r.ds.DB(ctx).Model(&model.WorkerAssignment{}).
		Select("worker_assignments.worker_id, line_schedules.task_type, line_schedules.planned_start, worker_assignments.performance_score, line_schedules.sku_complexity, line_schedules.equipment_utilization").
		Joins("JOIN line_schedules ON line_schedules.id = worker_assignments.line_schedule_id").
		Where("line_schedules.factory_id = ? AND line_schedules.planned_start >= ?", factoryID, since).
		Order("line_schedules.planned_start").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list assignment history: %w", err)
	}
	return rows, nil
}

// UpdateStatus transitions an assignment through its state machine.
// Terminal states (CHECKED_OUT, ABSENT) are immutable.
func (r *AssignmentRepository) UpdateStatus(ctx context.Context, assignmentID string, status constants.AssignmentStatus) error {
	now := time.Now()
	updates := map[string]interface{}{"status": status}
	switch status {
	case constants.AssignmentStatusCheckedIn:
		updates["checked_in_at"] = &now
	case constants.AssignmentStatusCheckedOut:
		updates["checked_out_at"] = &now
	}

	res := r.ds.DB(ctx).Model(&model.WorkerAssignment{}).
		Where("id = ? AND status NOT IN ?", assignmentID,
			[]constants.AssignmentStatus{constants.AssignmentStatusCheckedOut, constants.AssignmentStatusAbsent}).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to update assignment status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("assignment %s not found or already finalized", assignmentID)
	}
	return nil
}

// UpdatePerformance records an assignment's observed performance score
func (r *AssignmentRepository) UpdatePerformance(ctx context.Context, assignmentID string, performanceScore float64) error {
	return r.ds.DB(ctx).Model(&model.WorkerAssignment{}).
		Where("id = ?", assignmentID).
		Update("performance_score", performanceScore).Error
}
