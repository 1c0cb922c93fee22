package constants

// AlertType categories of scheduling risk detected by the alert monitor
type AlertType string

const (
	AlertTypeDeadlineRisk     AlertType = "DEADLINE_RISK"
	AlertTypeWorkerShortage   AlertType = "WORKER_SHORTAGE"
	AlertTypeResourceConflict AlertType = "RESOURCE_CONFLICT"
	AlertTypeEfficiencyDrop   AlertType = "EFFICIENCY_DROP"
)

func (t AlertType) String() string {
	return string(t)
}

// AlertSeverity severity ladder for scheduling alerts
type AlertSeverity string

const (
	AlertSeverityInfo     AlertSeverity = "INFO"
	AlertSeverityWarning  AlertSeverity = "WARNING"
	AlertSeverityCritical AlertSeverity = "CRITICAL"
)

func (s AlertSeverity) String() string {
	return string(s)
}

// AlertStatus state machine: ACTIVE -> ACKNOWLEDGED -> RESOLVED, or ACTIVE -> IGNORED
type AlertStatus string

const (
	AlertStatusActive       AlertStatus = "ACTIVE"
	AlertStatusAcknowledged AlertStatus = "ACKNOWLEDGED"
	AlertStatusResolved     AlertStatus = "RESOLVED"
	AlertStatusIgnored      AlertStatus = "IGNORED"
)

func (s AlertStatus) String() string {
	return string(s)
}

// CanTransitionTo validates an alert state transition.
func (s AlertStatus) CanTransitionTo(next AlertStatus) bool {
	switch s {
	case AlertStatusActive:
		return next == AlertStatusAcknowledged || next == AlertStatusIgnored || next == AlertStatusResolved
	case AlertStatusAcknowledged:
		return next == AlertStatusResolved
	default:
		return false
	}
}
