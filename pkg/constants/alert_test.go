package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAlertStatusCanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    AlertStatus
		to      AlertStatus
		allowed bool
	}{
		{name: "active to acknowledged", from: AlertStatusActive, to: AlertStatusAcknowledged, allowed: true},
		{name: "active to ignored", from: AlertStatusActive, to: AlertStatusIgnored, allowed: true},
		{name: "active to resolved", from: AlertStatusActive, to: AlertStatusResolved, allowed: true},
		{name: "acknowledged to resolved", from: AlertStatusAcknowledged, to: AlertStatusResolved, allowed: true},
		{name: "acknowledged to ignored", from: AlertStatusAcknowledged, to: AlertStatusIgnored, allowed: false},
		{name: "acknowledged back to active", from: AlertStatusAcknowledged, to: AlertStatusActive, allowed: false},
		{name: "resolved is terminal", from: AlertStatusResolved, to: AlertStatusActive, allowed: false},
		{name: "ignored is terminal", from: AlertStatusIgnored, to: AlertStatusAcknowledged, allowed: false},
		{name: "ignored cannot resolve", from: AlertStatusIgnored, to: AlertStatusResolved, allowed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestAssignmentStatusIsTerminal(t *testing.T) {
	assert.True(t, AssignmentStatusCheckedOut.IsTerminal())
	assert.True(t, AssignmentStatusAbsent.IsTerminal())
	assert.False(t, AssignmentStatusAssigned.IsTerminal())
	assert.False(t, AssignmentStatusCheckedIn.IsTerminal())
}
