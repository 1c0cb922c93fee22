package model

import (
	"time"

	"lineflow/pkg/constants"
)

// LineSchedule MySQL model for line_schedules table.
// One batch on one production line in a time window; belongs to exactly one plan.
type LineSchedule struct {
	ID        string `gorm:"primaryKey;column:id;type:varchar(36)" json:"id"`
	PlanID    string `gorm:"column:plan_id;type:varchar(36);not null;index:idx_plan" json:"plan_id"`
	FactoryID string `gorm:"column:factory_id;type:varchar(64);not null;index:idx_factory" json:"factory_id"`
	LineID    string `gorm:"column:line_id;type:varchar(64);not null;index:idx_line" json:"line_id"`
	BatchID   string `gorm:"column:batch_id;type:varchar(64);not null;index:idx_batch" json:"batch_id"`
	SKUCode   string `gorm:"column:sku_code;type:varchar(64)" json:"sku_code"`

	// Skill category of the work, kept so scoring history can be rebuilt
	TaskType string `gorm:"column:task_type;type:varchar(64);not null" json:"task_type"`

	// Product and equipment features, snapshotted at plan build so the
	// training collector can assemble samples at completion time
	SKUComplexity        float64 `gorm:"column:sku_complexity;type:double;not null;default:0" json:"sku_complexity"`
	ProductType          string  `gorm:"column:product_type;type:varchar(64)" json:"product_type"`
	EquipmentAgeYears    float64 `gorm:"column:equipment_age_years;type:double;not null;default:0" json:"equipment_age_years"`
	EquipmentUtilization float64 `gorm:"column:equipment_utilization;type:double;not null;default:0" json:"equipment_utilization"`

	Status constants.ScheduleStatus `gorm:"column:status;type:varchar(20);not null;default:'PLANNED';index:idx_status" json:"status"`

	PlannedStart time.Time  `gorm:"column:planned_start;type:datetime(3);not null" json:"planned_start"`
	PlannedEnd   time.Time  `gorm:"column:planned_end;type:datetime(3);not null" json:"planned_end"`
	ActualStart  *time.Time `gorm:"column:actual_start;type:datetime(3)" json:"actual_start,omitempty"`
	ActualEnd    *time.Time `gorm:"column:actual_end;type:datetime(3)" json:"actual_end,omitempty"`
	Deadline     *time.Time `gorm:"column:deadline;type:datetime(3)" json:"deadline,omitempty"`

	RequiredWorkers int `gorm:"column:required_workers;type:int;not null;default:1" json:"required_workers"`
	AssignedWorkers int `gorm:"column:assigned_workers;type:int;not null;default:0" json:"assigned_workers"`

	// Line capacity at plan build, consulted by the conflict scan
	LineMaxWorkers int `gorm:"column:line_max_workers;type:int;not null;default:0" json:"line_max_workers"`

	PredictedEfficiency float64  `gorm:"column:predicted_efficiency;type:double;not null;default:0" json:"predicted_efficiency"`
	ActualEfficiency    *float64 `gorm:"column:actual_efficiency;type:double" json:"actual_efficiency,omitempty"`

	RiskLevel       constants.RiskLevel `gorm:"column:risk_level;type:varchar(10);not null;default:'LOW'" json:"risk_level"`
	AdjustmentCount int                 `gorm:"column:adjustment_count;type:int;not null;default:0" json:"adjustment_count"`

	CreatedAt time.Time `gorm:"column:created_at;type:datetime(3);not null;default:CURRENT_TIMESTAMP(3)" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:datetime(3);not null;default:CURRENT_TIMESTAMP(3)" json:"updated_at"`
}

// TableName specifies the table name for LineSchedule
func (LineSchedule) TableName() string {
	return "line_schedules"
}
