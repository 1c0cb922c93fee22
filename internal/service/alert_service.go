package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"lineflow/pkg/constants"
	"lineflow/pkg/logger"
	mysqlModel "lineflow/pkg/store/mysql/model"

	"github.com/google/uuid"
)

// AlertStore persists alerts with active-pair dedup, implemented by
// mysql.AlertRepository.
type AlertStore interface {
	CreateIfAbsent(ctx context.Context, alert *mysqlModel.SchedulingAlert) (bool, error)
	Get(ctx context.Context, alertID string) (*mysqlModel.SchedulingAlert, error)
	ListActive(ctx context.Context, factoryID string) ([]*mysqlModel.SchedulingAlert, error)
	Transition(ctx context.Context, alertID string, from, to constants.AlertStatus, actor, reason string) error
	ListActiveForCompletedSchedules(ctx context.Context) ([]*mysqlModel.SchedulingAlert, error)
}

// AlertPusher delivers a newly raised alert to an external channel.
type AlertPusher interface {
	PushAlert(ctx context.Context, alert *mysqlModel.SchedulingAlert) error
}

// AlertService detects scheduling risks on committed plans and manages the
// alert lifecycle. Dedup lives in the store: at most one active alert
// per (schedule, type).
type AlertService struct {
	alertRepo AlertStore
	notifier  AlertPusher
}

// NewAlertService creates a new alert service
func NewAlertService(alertRepo AlertStore, notifier AlertPusher) *AlertService {
	return &AlertService{
		alertRepo: alertRepo,
		notifier:  notifier,
	}
}

// ScanPlan evaluates a freshly built plan: deadline risk from completion
// probability and predicted overrun, worker shortage on understaffed lines,
// and resource conflicts between overlapping schedules on one line.
func (s *AlertService) ScanPlan(ctx context.Context, cfg *mysqlModel.SchedulingConfig, plan *mysqlModel.SchedulingPlan, schedules []*mysqlModel.LineSchedule, completionProbs map[string]float64) error {
	for _, schedule := range schedules {
		if prob, ok := completionProbs[schedule.ID]; ok && prob < cfg.CompletionProbAlertThreshold {
			severity := constants.AlertSeverityWarning
			if prob < cfg.CompletionProbAlertThreshold-0.2 {
				severity = constants.AlertSeverityCritical
			}
			s.raise(ctx, &mysqlModel.SchedulingAlert{
				FactoryID:  plan.FactoryID,
				ScheduleID: schedule.ID,
				AlertType:  constants.AlertTypeDeadlineRisk,
				Severity:   severity,
				Message: fmt.Sprintf("batch %s on line %s: completion probability %.2f below threshold %.2f",
					schedule.BatchID, schedule.LineID, prob, cfg.CompletionProbAlertThreshold),
				SuggestedAction: "add experienced workers to the line or move the batch earlier",
			})
		}

		if schedule.Deadline != nil && schedule.PlannedEnd.After(*schedule.Deadline) {
			s.raise(ctx, &mysqlModel.SchedulingAlert{
				FactoryID:  plan.FactoryID,
				ScheduleID: schedule.ID,
				AlertType:  constants.AlertTypeDeadlineRisk,
				Severity:   constants.AlertSeverityCritical,
				Message: fmt.Sprintf("batch %s on line %s: planned end %s is past the deadline %s",
					schedule.BatchID, schedule.LineID,
					schedule.PlannedEnd.Format(time.RFC3339), schedule.Deadline.Format(time.RFC3339)),
				SuggestedAction: "reschedule the batch or negotiate the deadline",
			})
		}

		if schedule.AssignedWorkers < schedule.RequiredWorkers {
			severity := constants.AlertSeverityWarning
			if schedule.Status == constants.ScheduleStatusUnderstaffed {
				severity = constants.AlertSeverityCritical
			}
			s.raise(ctx, &mysqlModel.SchedulingAlert{
				FactoryID:  plan.FactoryID,
				ScheduleID: schedule.ID,
				AlertType:  constants.AlertTypeWorkerShortage,
				Severity:   severity,
				Message: fmt.Sprintf("batch %s on line %s: %d of %d required workers assigned",
					schedule.BatchID, schedule.LineID, schedule.AssignedWorkers, schedule.RequiredWorkers),
				SuggestedAction: "recruit temp workers or relax the assignment caps for the day",
			})
		}
	}

	s.scanConflicts(ctx, plan, schedules)
	return nil
}

// scanConflicts raises one resource-conflict alert per line whose overlapping
// schedules together demand more workers than the line holds. However many
// schedules collide, the line gets a single alert, keyed to the smallest
// schedule ID so dedup is stable across rescans.
func (s *AlertService) scanConflicts(ctx context.Context, plan *mysqlModel.SchedulingPlan, schedules []*mysqlModel.LineSchedule) {
	byLine := make(map[string][]*mysqlModel.LineSchedule)
	for _, schedule := range schedules {
		byLine[schedule.LineID] = append(byLine[schedule.LineID], schedule)
	}

	for lineID, group := range byLine {
		conflicting := make(map[string]*mysqlModel.LineSchedule)
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				a, b := group[i], group[j]
				if !a.PlannedStart.Before(b.PlannedEnd) || !b.PlannedStart.Before(a.PlannedEnd) {
					continue
				}
				if !exceedsLineCapacity(a, b) {
					continue
				}
				conflicting[a.ID] = a
				conflicting[b.ID] = b
			}
		}
		if len(conflicting) == 0 {
			continue
		}

		ids := make([]string, 0, len(conflicting))
		for id := range conflicting {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		batches := make([]string, 0, len(ids))
		for _, id := range ids {
			batches = append(batches, conflicting[id].BatchID)
		}
		s.raise(ctx, &mysqlModel.SchedulingAlert{
			FactoryID:  plan.FactoryID,
			ScheduleID: ids[0],
			AlertType:  constants.AlertTypeResourceConflict,
			Severity:   constants.AlertSeverityWarning,
			Message: fmt.Sprintf("line %s is over capacity: batches %s overlap in time",
				lineID, strings.Join(batches, ", ")),
			SuggestedAction: "stagger the overlapping batches or split them across lines",
		})
	}
}

// exceedsLineCapacity reports whether two overlapping schedules together need
// more workers than the line can hold. A schedule without a capacity snapshot
// treats any overlap as a conflict.
func exceedsLineCapacity(a, b *mysqlModel.LineSchedule) bool {
	capacity := a.LineMaxWorkers
	if b.LineMaxWorkers > capacity {
		capacity = b.LineMaxWorkers
	}
	if capacity <= 0 {
		return true
	}
	return a.AssignedWorkers+b.AssignedWorkers > capacity
}

// RaiseEfficiencyDrop raises the factory-level alert fired by anomaly
// recalibration. The factory ID stands in as the schedule scope, so at most
// one such alert is active per factory.
func (s *AlertService) RaiseEfficiencyDrop(ctx context.Context, factoryID string, avgEfficiency float64, sampleCount int) error {
	s.raise(ctx, &mysqlModel.SchedulingAlert{
		FactoryID:  factoryID,
		ScheduleID: factoryID,
		AlertType:  constants.AlertTypeEfficiencyDrop,
		Severity:   constants.AlertSeverityCritical,
		Message: fmt.Sprintf("efficiency averaged %.2f over the last %d completed batches, weights recalibrated",
			avgEfficiency, sampleCount),
		SuggestedAction: "inspect the affected lines and review the recalibrated weights",
	})
	return nil
}

// raise creates the alert unless an active duplicate exists, then pushes it.
func (s *AlertService) raise(ctx context.Context, alert *mysqlModel.SchedulingAlert) {
	alert.ID = uuid.New().String()
	created, err := s.alertRepo.CreateIfAbsent(ctx, alert)
	if err != nil {
		logger.ErrorCtx(ctx, "failed to raise %s alert on schedule %s: %v", alert.AlertType, alert.ScheduleID, err)
		return
	}
	if !created {
		logger.DebugCtx(ctx, "%s alert on schedule %s already active, deduplicated", alert.AlertType, alert.ScheduleID)
		return
	}

	logger.InfoCtx(ctx, "raised %s alert (%s) on schedule %s", alert.AlertType, alert.Severity, alert.ScheduleID)
	if s.notifier != nil {
		if err := s.notifier.PushAlert(ctx, alert); err != nil {
			logger.WarnCtx(ctx, "failed to push alert %s: %v", alert.ID, err)
		}
	}
}

// Acknowledge moves an active alert to acknowledged.
func (s *AlertService) Acknowledge(ctx context.Context, alertID, actor string) error {
	return s.alertRepo.Transition(ctx, alertID, constants.AlertStatusActive, constants.AlertStatusAcknowledged, actor, "")
}

// Resolve closes an alert from active or acknowledged.
func (s *AlertService) Resolve(ctx context.Context, alertID string) error {
	alert, err := s.alertRepo.Get(ctx, alertID)
	if err != nil {
		return err
	}
	if alert == nil {
		return fmt.Errorf("alert %s not found", alertID)
	}
	return s.alertRepo.Transition(ctx, alertID, alert.Status, constants.AlertStatusResolved, "", "")
}

// Ignore dismisses an active alert with a reason.
func (s *AlertService) Ignore(ctx context.Context, alertID, reason string) error {
	return s.alertRepo.Transition(ctx, alertID, constants.AlertStatusActive, constants.AlertStatusIgnored, "", reason)
}

// ListActive lists active alerts, optionally scoped to one factory.
func (s *AlertService) ListActive(ctx context.Context, factoryID string) ([]*mysqlModel.SchedulingAlert, error) {
	return s.alertRepo.ListActive(ctx, factoryID)
}

// SweepExpired auto-resolves active alerts whose underlying schedule has since
// completed successfully. The scheduled sweep is the only non-human resolver.
func (s *AlertService) SweepExpired(ctx context.Context) (int, error) {
	alerts, err := s.alertRepo.ListActiveForCompletedSchedules(ctx)
	if err != nil {
		return 0, err
	}

	swept := 0
	for _, alert := range alerts {
		if err := s.alertRepo.Transition(ctx, alert.ID, constants.AlertStatusActive, constants.AlertStatusResolved, "", ""); err != nil {
			logger.WarnCtx(ctx, "failed to auto-expire alert %s: %v", alert.ID, err)
			continue
		}
		swept++
	}
	if swept > 0 {
		logger.InfoCtx(ctx, "auto-expired %d alerts for completed schedules", swept)
	}
	return swept, nil
}
