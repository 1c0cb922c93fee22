package model

import (
	"time"

	"lineflow/pkg/constants"
)

// AssignmentPrediction MySQL model for assignment_predictions table.
// One row per (assignment, model_type): the forecast value, the confidence tier
// derived from the serving model's R², and which model produced it. Advisory
// only; plan commitment never depends on these rows.
type AssignmentPrediction struct {
	ID             int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	AssignmentID   string `gorm:"column:assignment_id;type:varchar(36);not null;uniqueIndex:idx_assignment_type" json:"assignment_id"`
	LineScheduleID string `gorm:"column:line_schedule_id;type:varchar(36);not null;index:idx_schedule" json:"line_schedule_id"`
	FactoryID      string `gorm:"column:factory_id;type:varchar(64);not null" json:"factory_id"`

	ModelType constants.ModelType  `gorm:"column:model_type;type:varchar(20);not null;uniqueIndex:idx_assignment_type" json:"model_type"`
	Value     float64              `gorm:"column:value;type:double;not null" json:"value"`
	Confidence constants.Confidence `gorm:"column:confidence;type:varchar(10);not null" json:"confidence"`

	// Version string of the serving ModelVersion, or "linear-fallback"
	ModelVersion string `gorm:"column:model_version;type:varchar(64);not null" json:"model_version"`

	CreatedAt time.Time `gorm:"column:created_at;type:datetime(3);not null;default:CURRENT_TIMESTAMP(3)" json:"created_at"`
}

// TableName specifies the table name for AssignmentPrediction
func (AssignmentPrediction) TableName() string {
	return "assignment_predictions"
}
