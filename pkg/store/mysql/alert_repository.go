package mysql

import (
	"context"
	"fmt"
	"time"

	"lineflow/pkg/constants"
	"lineflow/pkg/store/mysql/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AlertRepository handles scheduling alert persistence and deduplication
type AlertRepository struct {
	ds *Datastore
}

// NewAlertRepository creates a new alert repository
func NewAlertRepository(ds *Datastore) *AlertRepository {
	return &AlertRepository{ds: ds}
}

func activeKey(scheduleID string, alertType constants.AlertType) string {
	return scheduleID + ":" + string(alertType)
}

// CreateIfAbsent inserts the alert unless an active alert of the same
// (schedule, type) already exists. The unique index on active_key makes the
// check-then-create atomic under concurrent evaluation. Returns true when the
// alert was created, false when it was deduplicated.
func (r *AlertRepository) CreateIfAbsent(ctx context.Context, alert *model.SchedulingAlert) (bool, error) {
	key := activeKey(alert.ScheduleID, alert.AlertType)
	alert.ActiveKey = &key
	alert.Status = constants.AlertStatusActive

	res := r.ds.DB(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(alert)
	if res.Error != nil {
		// Some MySQL configurations surface the duplicate instead of honoring
		// DO NOTHING on the secondary unique index
		if IsDuplicateKey(res.Error) {
			return false, nil
		}
		return false, fmt.Errorf("failed to create alert: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Get retrieves an alert by ID, nil if none exists
func (r *AlertRepository) Get(ctx context.Context, alertID string) (*model.SchedulingAlert, error) {
	var alert model.SchedulingAlert
	err := r.ds.DB(ctx).Where("id = ?", alertID).First(&alert).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get alert: %w", err)
	}
	return &alert, nil
}

// ListActive retrieves active alerts, optionally filtered by factory
func (r *AlertRepository) ListActive(ctx context.Context, factoryID string) ([]*model.SchedulingAlert, error) {
	q := r.ds.DB(ctx).Where("status = ?", constants.AlertStatusActive)
	if factoryID != "" {
		q = q.Where("factory_id = ?", factoryID)
	}
	var alerts []*model.SchedulingAlert
	err := q.Order("created_at DESC").Find(&alerts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active alerts: %w", err)
	}
	return alerts, nil
}

// Transition moves an alert to the next state, clearing the dedup key when the
// alert leaves ACTIVE so a fresh alert of the same type may be raised later.
func (r *AlertRepository) Transition(ctx context.Context, alertID string, from, to constants.AlertStatus, actor, reason string) error {
	if !from.CanTransitionTo(to) {
		return fmt.Errorf("invalid alert transition %s -> %s", from, to)
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":     to,
		"active_key": nil,
	}
	switch to {
	case constants.AlertStatusAcknowledged:
		updates["acknowledged_by"] = actor
		updates["acknowledged_at"] = &now
	case constants.AlertStatusResolved:
		updates["resolved_at"] = &now
	case constants.AlertStatusIgnored:
		updates["ignore_reason"] = reason
	}

	res := r.ds.DB(ctx).Model(&model.SchedulingAlert{}).
		Where("id = ? AND status = ?", alertID, from).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to transition alert: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("alert %s is not in state %s", alertID, from)
	}
	return nil
}

// ListActiveForCompletedSchedules retrieves active alerts whose underlying
// schedule has since completed, the candidates for the auto-expire sweep.
func (r *AlertRepository) ListActiveForCompletedSchedules(ctx context.Context) ([]*model.SchedulingAlert, error) {
	var alerts []*model.SchedulingAlert
	err := r.ds.DB(ctx).
		Joins("JOIN line_schedules ON line_schedules.id = scheduling_alerts.schedule_id").
		Where("scheduling_alerts.status = ? AND line_schedules.status = ?",
			constants.AlertStatusActive, constants.ScheduleStatusCompleted).
		Find(&alerts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list expirable alerts: %w", err)
	}
	return alerts, nil
}
