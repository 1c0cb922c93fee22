package model

import mysqlModel "lineflow/pkg/store/mysql/model"

// ScheduleDetail is one line schedule with its crew.
type ScheduleDetail struct {
	Schedule    *mysqlModel.LineSchedule       `json:"schedule"`
	Assignments []*mysqlModel.WorkerAssignment `json:"assignments"`
}

// PlanDetail is the full view of one plan for execution and check-in UIs.
type PlanDetail struct {
	Plan      *mysqlModel.SchedulingPlan `json:"plan"`
	Schedules []ScheduleDetail           `json:"schedules"`
}
