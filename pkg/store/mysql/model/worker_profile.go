package model

import "time"

// WorkerProfile MySQL model for worker_profiles table.
// Scheduling-relevant state of one worker; skill level is updated after each
// completed assignment. The temp->permanent transition is terminal.
type WorkerProfile struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	WorkerID  string `gorm:"column:worker_id;type:varchar(64);not null;uniqueIndex:idx_worker_unique" json:"worker_id"`
	FactoryID string `gorm:"column:factory_id;type:varchar(64);not null;index:idx_factory" json:"factory_id"`
	Name      string `gorm:"column:name;type:varchar(255)" json:"name"`

	SkillLevel       float64 `gorm:"column:skill_level;type:double;not null;default:1" json:"skill_level"`
	GrowthRate       float64 `gorm:"column:growth_rate;type:double;not null;default:0.05" json:"growth_rate"`
	ReliabilityScore float64 `gorm:"column:reliability_score;type:double;not null;default:0.8" json:"reliability_score"`

	IsTemp          bool       `gorm:"column:is_temp;type:boolean;not null;default:false;index:idx_temp" json:"is_temp"`
	HiredAt         time.Time  `gorm:"column:hired_at;type:datetime(3);not null" json:"hired_at"`
	ExpectedEndDate *time.Time `gorm:"column:expected_end_date;type:datetime(3)" json:"expected_end_date,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;type:datetime(3);not null;default:CURRENT_TIMESTAMP(3)" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:datetime(3);not null;default:CURRENT_TIMESTAMP(3)" json:"updated_at"`
}

// TableName specifies the table name for WorkerProfile
func (WorkerProfile) TableName() string {
	return "worker_profiles"
}
