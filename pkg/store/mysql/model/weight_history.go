package model

import "time"

// WeightHistory MySQL model for weight_histories table.
// Append-only audit trail: one row per adaptation event, recording the full
// weight set before and after (JSON) plus the trigger and a metrics snapshot.
type WeightHistory struct {
	ID        string `gorm:"primaryKey;column:id;type:varchar(36)" json:"id"`
	FactoryID string `gorm:"column:factory_id;type:varchar(64);not null;index:idx_factory_created" json:"factory_id"`

	WeightsBefore string `gorm:"column:weights_before;type:text;not null" json:"weights_before"`
	WeightsAfter  string `gorm:"column:weights_after;type:text;not null" json:"weights_after"`

	// e.g. "below_efficiency_target", "anomaly_recalibration", "admin_override";
	// clamped adjustments append "(clamped)" so the event is reconstructable
	TriggerReason string `gorm:"column:trigger_reason;type:varchar(255);not null" json:"trigger_reason"`

	AvgEfficiency  float64 `gorm:"column:avg_efficiency;type:double;not null;default:0" json:"avg_efficiency"`
	DiversityIndex float64 `gorm:"column:diversity_index;type:double;not null;default:0" json:"diversity_index"`
	SampleCount    int     `gorm:"column:sample_count;type:int;not null;default:0" json:"sample_count"`

	CreatedAt time.Time `gorm:"column:created_at;type:datetime(3);not null;default:CURRENT_TIMESTAMP(3);index:idx_factory_created" json:"created_at"`
}

// TableName specifies the table name for WeightHistory
func (WeightHistory) TableName() string {
	return "weight_histories"
}
