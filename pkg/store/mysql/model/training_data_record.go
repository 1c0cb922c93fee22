package model

import "time"

// TrainingDataRecord MySQL model for training_data_records table.
// One immutable sample per completed batch; the only write path is the
// training data collector, existing rows are never mutated.
type TrainingDataRecord struct {
	ID             int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	FactoryID      string `gorm:"column:factory_id;type:varchar(64);not null;index:idx_factory_created" json:"factory_id"`
	BatchID        string `gorm:"column:batch_id;type:varchar(64);not null;uniqueIndex:idx_batch_unique" json:"batch_id"`
	LineScheduleID string `gorm:"column:line_schedule_id;type:varchar(36);not null" json:"line_schedule_id"`

	// Time features
	HourOfDay    int  `gorm:"column:hour_of_day;type:int;not null" json:"hour_of_day"`
	DayOfWeek    int  `gorm:"column:day_of_week;type:int;not null" json:"day_of_week"`
	IsOvertime   bool `gorm:"column:is_overtime;type:boolean;not null;default:false" json:"is_overtime"`

	// Crew features
	WorkerCount     int     `gorm:"column:worker_count;type:int;not null" json:"worker_count"`
	AvgExperience   float64 `gorm:"column:avg_experience;type:double;not null;default:0" json:"avg_experience"`
	AvgSkillLevel   float64 `gorm:"column:avg_skill_level;type:double;not null;default:0" json:"avg_skill_level"`
	TempWorkerRatio float64 `gorm:"column:temp_worker_ratio;type:double;not null;default:0" json:"temp_worker_ratio"`

	// Product features
	SKUComplexity float64 `gorm:"column:sku_complexity;type:double;not null;default:0" json:"sku_complexity"`
	ProductType   string  `gorm:"column:product_type;type:varchar(64)" json:"product_type"`

	// Equipment features
	EquipmentAgeYears    float64 `gorm:"column:equipment_age_years;type:double;not null;default:0" json:"equipment_age_years"`
	EquipmentUtilization float64 `gorm:"column:equipment_utilization;type:double;not null;default:0" json:"equipment_utilization"`

	// Observed outcomes
	ActualEfficiency   float64 `gorm:"column:actual_efficiency;type:double;not null" json:"actual_efficiency"`
	ActualDurationMins float64 `gorm:"column:actual_duration_mins;type:double;not null" json:"actual_duration_mins"`
	ActualQuality      float64 `gorm:"column:actual_quality;type:double;not null" json:"actual_quality"`

	CreatedAt time.Time `gorm:"column:created_at;type:datetime(3);not null;default:CURRENT_TIMESTAMP(3);index:idx_factory_created" json:"created_at"`
}

// TableName specifies the table name for TrainingDataRecord
func (TrainingDataRecord) TableName() string {
	return "training_data_records"
}
