package model

import (
	"time"

	"lineflow/pkg/constants"
)

// SchedulingPlan MySQL model for scheduling_plans table.
// One factory's plan for one calendar date; unique per (factory, date).
type SchedulingPlan struct {
	ID        string    `gorm:"primaryKey;column:id;type:varchar(36)" json:"id"`
	FactoryID string    `gorm:"column:factory_id;type:varchar(64);not null;uniqueIndex:idx_factory_date" json:"factory_id"`
	PlanDate  time.Time `gorm:"column:plan_date;type:date;not null;uniqueIndex:idx_factory_date" json:"plan_date"`

	Status constants.PlanStatus `gorm:"column:status;type:varchar(20);not null;default:'DRAFT';index:idx_status" json:"status"`

	TotalSchedules    int `gorm:"column:total_schedules;type:int;not null;default:0" json:"total_schedules"`
	TotalAssignments  int `gorm:"column:total_assignments;type:int;not null;default:0" json:"total_assignments"`
	UnderstaffedLines int `gorm:"column:understaffed_lines;type:int;not null;default:0" json:"understaffed_lines"`

	ConfirmedBy string     `gorm:"column:confirmed_by;type:varchar(64)" json:"confirmed_by,omitempty"`
	ConfirmedAt *time.Time `gorm:"column:confirmed_at;type:datetime(3)" json:"confirmed_at,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;type:datetime(3);not null;default:CURRENT_TIMESTAMP(3)" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:datetime(3);not null;default:CURRENT_TIMESTAMP(3)" json:"updated_at"`
}

// TableName specifies the table name for SchedulingPlan
func (SchedulingPlan) TableName() string {
	return "scheduling_plans"
}
