package model

import (
	"time"

	"lineflow/pkg/constants"
)

// WorkerAssignment MySQL model for worker_assignments table.
// Binds one worker to one line schedule; immutable once checked out or absent.
type WorkerAssignment struct {
	ID             string `gorm:"primaryKey;column:id;type:varchar(36)" json:"id"`
	LineScheduleID string `gorm:"column:line_schedule_id;type:varchar(36);not null;index:idx_schedule" json:"line_schedule_id"`
	PlanID         string `gorm:"column:plan_id;type:varchar(36);not null;index:idx_plan" json:"plan_id"`
	WorkerID       string `gorm:"column:worker_id;type:varchar(64);not null;index:idx_worker" json:"worker_id"`

	Status constants.AssignmentStatus `gorm:"column:status;type:varchar(20);not null;default:'ASSIGNED';index:idx_status" json:"status"`

	// Score the planner committed this assignment at, kept for audit
	Score            float64 `gorm:"column:score;type:double;not null;default:0" json:"score"`
	ScoreExplanation string  `gorm:"column:score_explanation;type:text" json:"score_explanation,omitempty"`

	// From the temp-worker guarantee pass rather than the greedy pass
	GuaranteeAssignment bool `gorm:"column:guarantee_assignment;type:boolean;not null;default:false" json:"guarantee_assignment"`

	CheckedInAt  *time.Time `gorm:"column:checked_in_at;type:datetime(3)" json:"checked_in_at,omitempty"`
	CheckedOutAt *time.Time `gorm:"column:checked_out_at;type:datetime(3)" json:"checked_out_at,omitempty"`

	LaborCost        float64  `gorm:"column:labor_cost;type:double;not null;default:0" json:"labor_cost"`
	PerformanceScore *float64 `gorm:"column:performance_score;type:double" json:"performance_score,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;type:datetime(3);not null;default:CURRENT_TIMESTAMP(3)" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:datetime(3);not null;default:CURRENT_TIMESTAMP(3)" json:"updated_at"`
}

// TableName specifies the table name for WorkerAssignment
func (WorkerAssignment) TableName() string {
	return "worker_assignments"
}
