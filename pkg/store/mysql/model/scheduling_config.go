package model

import "time"

// SchedulingConfig MySQL model for scheduling_configs table.
// One row per factory; created on first use with defaults and mutated only by the
// adaptive tuner or an explicit admin override. Version supports optimistic locking.
type SchedulingConfig struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	FactoryID string `gorm:"column:factory_id;type:varchar(64);not null;uniqueIndex:idx_factory_unique" json:"factory_id"`

	// Scoring weights
	LinUCBWeight           float64 `gorm:"column:linucb_weight;type:double;not null;default:0.60" json:"linucb_weight"`
	FairnessWeight         float64 `gorm:"column:fairness_weight;type:double;not null;default:0.15" json:"fairness_weight"`
	SkillMaintenanceWeight float64 `gorm:"column:skill_maintenance_weight;type:double;not null;default:0.10" json:"skill_maintenance_weight"`
	RepetitionWeight       float64 `gorm:"column:repetition_weight;type:double;not null;default:0.10" json:"repetition_weight"`
	SKUComplexityWeight    float64 `gorm:"column:sku_complexity_weight;type:double;not null;default:0.05" json:"sku_complexity_weight"`

	// Valid range for every scoring weight; adaptation clamps to [WeightMin, WeightMax]
	WeightMin float64 `gorm:"column:weight_min;type:double;not null;default:0.01" json:"weight_min"`
	WeightMax float64 `gorm:"column:weight_max;type:double;not null;default:0.95" json:"weight_max"`

	// Exploration strength of the contextual bandit term
	ExplorationAlpha float64 `gorm:"column:exploration_alpha;type:double;not null;default:0.5" json:"exploration_alpha"`

	// Decay windows (days)
	SkillDecayDays     int `gorm:"column:skill_decay_days;type:int;not null;default:30" json:"skill_decay_days"`
	FairnessPeriodDays int `gorm:"column:fairness_period_days;type:int;not null;default:7" json:"fairness_period_days"`
	RepetitionDays     int `gorm:"column:repetition_days;type:int;not null;default:3" json:"repetition_days"`
	MaxConsecutiveDays int `gorm:"column:max_consecutive_days;type:int;not null;default:5" json:"max_consecutive_days"`

	// Complexity matching
	HighComplexitySkillThreshold float64 `gorm:"column:high_complexity_skill_threshold;type:double;not null;default:3" json:"high_complexity_skill_threshold"`
	LowComplexityForTraining     bool    `gorm:"column:low_complexity_for_training;type:boolean;not null;default:true" json:"low_complexity_for_training"`

	// Temp-worker factors
	TempWorkerScoreFactor    float64 `gorm:"column:temp_worker_score_factor;type:double;not null;default:0.8" json:"temp_worker_score_factor"`
	TempWorkerFairnessBoost  float64 `gorm:"column:temp_worker_fairness_boost;type:double;not null;default:1.5" json:"temp_worker_fairness_boost"`
	TempSkillDecayDays       int     `gorm:"column:temp_skill_decay_days;type:int;not null;default:14" json:"temp_skill_decay_days"`
	TempWorkerMinAssignments int     `gorm:"column:temp_worker_min_assignments;type:int;not null;default:1" json:"temp_worker_min_assignments"`

	// Planner caps
	MaxAssignmentsPerDay int `gorm:"column:max_assignments_per_day;type:int;not null;default:2" json:"max_assignments_per_day"`

	// Adaptive learning
	AdaptiveLearningEnabled bool    `gorm:"column:adaptive_learning_enabled;type:boolean;not null;default:true" json:"adaptive_learning_enabled"`
	LearningRate            float64 `gorm:"column:learning_rate;type:double;not null;default:0.02" json:"learning_rate"`
	MinSamplesForAdaptation int     `gorm:"column:min_samples_for_adaptation;type:int;not null;default:20" json:"min_samples_for_adaptation"`
	EfficiencyTarget        float64 `gorm:"column:efficiency_target;type:double;not null;default:0.85" json:"efficiency_target"`
	DiversityTarget         float64 `gorm:"column:diversity_target;type:double;not null;default:0.6" json:"diversity_target"`

	// Anomaly-triggered recalibration
	EfficiencyAnomalyThreshold float64 `gorm:"column:efficiency_anomaly_threshold;type:double;not null;default:0.50" json:"efficiency_anomaly_threshold"`
	AnomalyCountForCalibration int     `gorm:"column:anomaly_count_for_calibration;type:int;not null;default:3" json:"anomaly_count_for_calibration"`

	// Alerting
	CompletionProbAlertThreshold float64 `gorm:"column:completion_prob_alert_threshold;type:double;not null;default:0.7" json:"completion_prob_alert_threshold"`

	// Optimistic lock version, bumped on every write
	Version int64 `gorm:"column:version;type:bigint;not null;default:0" json:"version"`

	CreatedAt time.Time `gorm:"column:created_at;type:datetime(3);not null;default:CURRENT_TIMESTAMP(3)" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:datetime(3);not null;default:CURRENT_TIMESTAMP(3)" json:"updated_at"`
}

// TableName specifies the table name for SchedulingConfig
func (SchedulingConfig) TableName() string {
	return "scheduling_configs"
}
