package service

import (
	"context"
	"encoding/json"
	"fmt"

	"lineflow/internal/model"
	"lineflow/pkg/constants"
	"lineflow/pkg/logger"
	"lineflow/pkg/prediction"
	"lineflow/pkg/store/mysql"
	mysqlModel "lineflow/pkg/store/mysql/model"
	"lineflow/pkg/tuner"

	"github.com/hibiken/asynq"
)

// maxSkillLevel caps skill growth.
const maxSkillLevel = 5

// TrainingService is the only write path into the training corpus. On batch
// completion it assembles one immutable sample, records actuals, updates
// worker skills, and hands the factory to the tuner's anomaly check.
type TrainingService struct {
	planRepo       *mysql.PlanRepository
	assignmentRepo *mysql.AssignmentRepository
	workerRepo     *mysql.WorkerProfileRepository
	trainingRepo   *mysql.TrainingDataRepository
	tuner          *tuner.Tuner
}

// NewTrainingService creates a new training data collector
func NewTrainingService(
	planRepo *mysql.PlanRepository,
	assignmentRepo *mysql.AssignmentRepository,
	workerRepo *mysql.WorkerProfileRepository,
	trainingRepo *mysql.TrainingDataRepository,
	weightTuner *tuner.Tuner,
) *TrainingService {
	return &TrainingService{
		planRepo:       planRepo,
		assignmentRepo: assignmentRepo,
		workerRepo:     workerRepo,
		trainingRepo:   trainingRepo,
		tuner:          weightTuner,
	}
}

// HandleBatchCompletedTask is the queue handler for batch completion events.
func (s *TrainingService) HandleBatchCompletedTask(ctx context.Context, task *asynq.Task) error {
	var event model.BatchCompletedEvent
	if err := json.Unmarshal(task.Payload(), &event); err != nil {
		// Malformed payloads never become valid; drop instead of retrying
		logger.ErrorCtx(ctx, "dropping malformed batch completion event: %v", err)
		return nil
	}
	return s.ProcessCompletion(ctx, &event)
}

// ProcessCompletion ingests one batch completion. Redelivered events dedup on
// the batch ID and are dropped without touching existing records.
func (s *TrainingService) ProcessCompletion(ctx context.Context, event *model.BatchCompletedEvent) error {
	schedule, err := s.planRepo.GetSchedule(ctx, event.LineScheduleID)
	if err != nil {
		return err
	}
	if schedule == nil {
		logger.WarnCtx(ctx, "batch completion for unknown schedule %s, dropping event", event.LineScheduleID)
		return nil
	}

	assignments, err := s.assignmentRepo.ListBySchedule(ctx, event.LineScheduleID)
	if err != nil {
		return err
	}

	crew, err := s.loadCrew(ctx, assignments)
	if err != nil {
		return err
	}

	record := buildRecord(event, schedule, crew)
	if err := s.trainingRepo.Append(ctx, record); err != nil {
		if mysql.IsDuplicateKey(err) {
			logger.InfoCtx(ctx, "batch %s already collected, dropping redelivered event", event.BatchID)
			return nil
		}
		return fmt.Errorf("failed to append training record: %w", err)
	}

	actualStart := schedule.PlannedStart
	if schedule.ActualStart != nil {
		actualStart = *schedule.ActualStart
	}
	if err := s.planRepo.UpdateScheduleActuals(ctx, schedule.ID, actualStart, event.CompletedAt, event.ActualEfficiency); err != nil {
		return fmt.Errorf("failed to record schedule actuals: %w", err)
	}

	s.closeAssignments(ctx, assignments, event)
	s.growSkills(ctx, crew, event)

	logger.InfoCtx(ctx, "collected training sample for batch %s (efficiency %.2f, quality %.2f, %d workers)",
		event.BatchID, event.ActualEfficiency, event.ActualQuality, len(crew))

	if s.tuner != nil {
		if err := s.tuner.OnBatchCompleted(ctx, event.FactoryID); err != nil {
			logger.ErrorCtx(ctx, "anomaly check failed for factory %s: %v", event.FactoryID, err)
		}
	}
	return nil
}

func (s *TrainingService) loadCrew(ctx context.Context, assignments []*mysqlModel.WorkerAssignment) ([]*mysqlModel.WorkerProfile, error) {
	crew := make([]*mysqlModel.WorkerProfile, 0, len(assignments))
	for _, a := range assignments {
		profile, err := s.workerRepo.Get(ctx, a.WorkerID)
		if err != nil {
			return nil, err
		}
		if profile == nil {
			continue
		}
		crew = append(crew, profile)
	}
	return crew, nil
}

// closeAssignments finalizes open assignments with the observed performance.
// Already-finalized ones (checked out, absent) are left untouched.
func (s *TrainingService) closeAssignments(ctx context.Context, assignments []*mysqlModel.WorkerAssignment, event *model.BatchCompletedEvent) {
	for _, a := range assignments {
		if a.Status.IsTerminal() {
			continue
		}
		if err := s.assignmentRepo.UpdatePerformance(ctx, a.ID, event.ActualEfficiency); err != nil {
			logger.WarnCtx(ctx, "failed to record performance on assignment %s: %v", a.ID, err)
		}
		if err := s.assignmentRepo.UpdateStatus(ctx, a.ID, constants.AssignmentStatusCheckedOut); err != nil {
			logger.WarnCtx(ctx, "failed to close assignment %s: %v", a.ID, err)
		}
	}
}

// growSkills applies post-completion skill growth: skill advances by the
// worker's growth rate scaled by the observed efficiency, and reliability
// drifts toward the observed quality.
func (s *TrainingService) growSkills(ctx context.Context, crew []*mysqlModel.WorkerProfile, event *model.BatchCompletedEvent) {
	for _, p := range crew {
		skill := p.SkillLevel + p.GrowthRate*event.ActualEfficiency
		if skill > maxSkillLevel {
			skill = maxSkillLevel
		}
		reliability := 0.9*p.ReliabilityScore + 0.1*event.ActualQuality

		if err := s.workerRepo.UpdateSkill(ctx, p.WorkerID, skill, reliability); err != nil {
			logger.WarnCtx(ctx, "failed to update skill for worker %s: %v", p.WorkerID, err)
		}
	}
}

func buildRecord(event *model.BatchCompletedEvent, schedule *mysqlModel.LineSchedule, crew []*mysqlModel.WorkerProfile) *mysqlModel.TrainingDataRecord {
	record := &mysqlModel.TrainingDataRecord{
		FactoryID:      event.FactoryID,
		BatchID:        event.BatchID,
		LineScheduleID: schedule.ID,

		HourOfDay:  schedule.PlannedStart.Hour(),
		DayOfWeek:  int(schedule.PlannedStart.Weekday()),
		IsOvertime: prediction.IsOvertime(schedule.PlannedStart),

		SKUComplexity: schedule.SKUComplexity,
		ProductType:   schedule.ProductType,

		EquipmentAgeYears:    schedule.EquipmentAgeYears,
		EquipmentUtilization: schedule.EquipmentUtilization,

		ActualEfficiency:   event.ActualEfficiency,
		ActualDurationMins: event.ActualDurationMins,
		ActualQuality:      event.ActualQuality,
	}

	if len(crew) > 0 {
		var expSum, skillSum float64
		var tempCount int
		for _, p := range crew {
			expSum += schedule.PlannedStart.Sub(p.HiredAt).Hours() / (24 * 365)
			skillSum += p.SkillLevel
			if p.IsTemp {
				tempCount++
			}
		}
		n := float64(len(crew))
		record.WorkerCount = len(crew)
		record.AvgExperience = expSum / n
		record.AvgSkillLevel = skillSum / n
		record.TempWorkerRatio = float64(tempCount) / n
	}
	return record
}
