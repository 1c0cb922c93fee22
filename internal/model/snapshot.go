package model

import "time"

// RosterWorker is one worker in the roster snapshot a collaborator submits
// for a plan build. Profile fields override any stored WorkerProfile for the
// duration of the build; missing workers are created on the fly.
type RosterWorker struct {
	WorkerID         string     `json:"worker_id" binding:"required"`
	Name             string     `json:"name"`
	SkillLevel       float64    `json:"skill_level"`
	GrowthRate       float64    `json:"growth_rate"`
	ReliabilityScore float64    `json:"reliability_score"`
	IsTemp           bool       `json:"is_temp"`
	HiredAt          time.Time  `json:"hired_at"`
	ExpectedEndDate  *time.Time `json:"expected_end_date,omitempty"`
}

// ProductionLine describes one line and its equipment for a plan build.
type ProductionLine struct {
	LineID               string  `json:"line_id" binding:"required"`
	Name                 string  `json:"name"`
	MinWorkers           int     `json:"min_workers"`
	MaxWorkers           int     `json:"max_workers"`
	EquipmentAgeYears    float64 `json:"equipment_age_years"`
	EquipmentUtilization float64 `json:"equipment_utilization"`
}

// ProductionBatch is one batch/order to be scheduled on a line.
type ProductionBatch struct {
	BatchID         string     `json:"batch_id" binding:"required"`
	LineID          string     `json:"line_id" binding:"required"`
	SKUCode         string     `json:"sku_code"`
	SKUComplexity   float64    `json:"sku_complexity"`
	TaskType        string     `json:"task_type" binding:"required"`
	ProductType     string     `json:"product_type"`
	PlannedStart    time.Time  `json:"planned_start" binding:"required"`
	PlannedEnd      time.Time  `json:"planned_end" binding:"required"`
	Deadline        *time.Time `json:"deadline,omitempty"`
	RequiredWorkers int        `json:"required_workers"`
}

// PlanBuildRequest is the full input snapshot for building one factory/date
// plan. Everything scoring needs is resolved here up front.
type PlanBuildRequest struct {
	FactoryID string            `json:"factory_id" binding:"required"`
	PlanDate  string            `json:"plan_date" binding:"required"` // YYYY-MM-DD
	Workers   []RosterWorker    `json:"workers" binding:"required"`
	Lines     []ProductionLine  `json:"lines" binding:"required"`
	Batches   []ProductionBatch `json:"batches" binding:"required"`
}

// BatchCompletedEvent is the queue payload emitted when a batch finishes on
// a line. BatchID doubles as the idempotency key: a redelivered event hits
// the unique index on training_data_records and is dropped.
type BatchCompletedEvent struct {
	FactoryID      string    `json:"factory_id"`
	BatchID        string    `json:"batch_id"`
	LineScheduleID string    `json:"line_schedule_id"`
	CompletedAt    time.Time `json:"completed_at"`

	ActualEfficiency   float64 `json:"actual_efficiency"`
	ActualDurationMins float64 `json:"actual_duration_mins"`
	ActualQuality      float64 `json:"actual_quality"`
}
