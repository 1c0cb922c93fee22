package model

import (
	"time"

	"lineflow/pkg/constants"
)

// SchedulingAlert MySQL model for scheduling_alerts table.
// ActiveKey is "<schedule_id>:<alert_type>" while the alert is active and NULL
// once it leaves the active state; the unique index on it makes the
// check-then-create dedup atomic under concurrent evaluation.
type SchedulingAlert struct {
	ID        string `gorm:"primaryKey;column:id;type:varchar(36)" json:"id"`
	FactoryID string `gorm:"column:factory_id;type:varchar(64);not null;index:idx_factory" json:"factory_id"`

	ScheduleID string              `gorm:"column:schedule_id;type:varchar(36);not null;index:idx_schedule" json:"schedule_id"`
	AlertType  constants.AlertType `gorm:"column:alert_type;type:varchar(30);not null" json:"alert_type"`

	ActiveKey *string `gorm:"column:active_key;type:varchar(80);uniqueIndex:idx_active_dedup" json:"-"`

	Severity        constants.AlertSeverity `gorm:"column:severity;type:varchar(10);not null" json:"severity"`
	Status          constants.AlertStatus   `gorm:"column:status;type:varchar(20);not null;default:'ACTIVE';index:idx_status" json:"status"`
	Message         string                  `gorm:"column:message;type:text" json:"message"`
	SuggestedAction string                  `gorm:"column:suggested_action;type:text" json:"suggested_action"`

	AcknowledgedBy string     `gorm:"column:acknowledged_by;type:varchar(64)" json:"acknowledged_by,omitempty"`
	AcknowledgedAt *time.Time `gorm:"column:acknowledged_at;type:datetime(3)" json:"acknowledged_at,omitempty"`
	ResolvedAt     *time.Time `gorm:"column:resolved_at;type:datetime(3)" json:"resolved_at,omitempty"`
	IgnoreReason   string     `gorm:"column:ignore_reason;type:varchar(255)" json:"ignore_reason,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;type:datetime(3);not null;default:CURRENT_TIMESTAMP(3)" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:datetime(3);not null;default:CURRENT_TIMESTAMP(3)" json:"updated_at"`
}

// TableName specifies the table name for SchedulingAlert
func (SchedulingAlert) TableName() string {
	return "scheduling_alerts"
}
