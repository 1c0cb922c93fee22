package constants

// PlanStatus lifecycle of a daily scheduling plan
type PlanStatus string

const (
	PlanStatusDraft      PlanStatus = "DRAFT"
	PlanStatusConfirmed  PlanStatus = "CONFIRMED"
	PlanStatusInProgress PlanStatus = "IN_PROGRESS"
	PlanStatusCompleted  PlanStatus = "COMPLETED"
	PlanStatusCancelled  PlanStatus = "CANCELLED"
)

func (s PlanStatus) String() string {
	return string(s)
}

// ScheduleStatus lifecycle of one batch on one line
type ScheduleStatus string

const (
	ScheduleStatusPlanned      ScheduleStatus = "PLANNED"
	ScheduleStatusInProgress   ScheduleStatus = "IN_PROGRESS"
	ScheduleStatusCompleted    ScheduleStatus = "COMPLETED"
	ScheduleStatusCancelled    ScheduleStatus = "CANCELLED"
	ScheduleStatusUnderstaffed ScheduleStatus = "UNDERSTAFFED"
)

func (s ScheduleStatus) String() string {
	return string(s)
}

// AssignmentStatus state machine of a worker assignment.
// CheckedOut and Absent are terminal; the record is immutable afterwards.
type AssignmentStatus string

const (
	AssignmentStatusAssigned   AssignmentStatus = "ASSIGNED"
	AssignmentStatusCheckedIn  AssignmentStatus = "CHECKED_IN"
	AssignmentStatusCheckedOut AssignmentStatus = "CHECKED_OUT"
	AssignmentStatusAbsent     AssignmentStatus = "ABSENT"
)

func (s AssignmentStatus) String() string {
	return string(s)
}

// IsTerminal reports whether the assignment can no longer be mutated.
func (s AssignmentStatus) IsTerminal() bool {
	return s == AssignmentStatusCheckedOut || s == AssignmentStatusAbsent
}

// RiskLevel predicted execution risk of a line schedule
type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "LOW"
	RiskLevelMedium RiskLevel = "MEDIUM"
	RiskLevelHigh   RiskLevel = "HIGH"
)

func (r RiskLevel) String() string {
	return string(r)
}
