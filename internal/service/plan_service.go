package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"lineflow/internal/model"
	"lineflow/pkg/constants"
	"lineflow/pkg/lock"
	"lineflow/pkg/logger"
	"lineflow/pkg/prediction"
	"lineflow/pkg/scheduling"
	"lineflow/pkg/store/mysql"
	mysqlModel "lineflow/pkg/store/mysql/model"

	"github.com/google/uuid"
)

const planDateLayout = "2006-01-02"

// PlanService builds and manages daily scheduling plans. One factory/date
// build runs single-threaded from one consistent snapshot; different
// factories build fully in parallel.
type PlanService struct {
	configService  *ConfigService
	workerRepo     *mysql.WorkerProfileRepository
	planRepo       *mysql.PlanRepository
	assignmentRepo *mysql.AssignmentRepository
	predictionRepo *mysql.PredictionRepository
	predictor      *prediction.Service
	alertService   *AlertService
	newLock        func(factoryID string) lock.DistributedLock
}

// NewPlanService creates a new plan service
func NewPlanService(
	configService *ConfigService,
	workerRepo *mysql.WorkerProfileRepository,
	planRepo *mysql.PlanRepository,
	assignmentRepo *mysql.AssignmentRepository,
	predictionRepo *mysql.PredictionRepository,
	predictor *prediction.Service,
	alertService *AlertService,
	newLock func(factoryID string) lock.DistributedLock,
) *PlanService {
	return &PlanService{
		configService:  configService,
		workerRepo:     workerRepo,
		planRepo:       planRepo,
		assignmentRepo: assignmentRepo,
		predictionRepo: predictionRepo,
		predictor:      predictor,
		alertService:   alertService,
		newLock:        newLock,
	}
}

// BuildPlan builds the plan for one factory and date from the submitted
// snapshot. Rebuilding a draft plan replaces it; a confirmed plan is
// immutable through this path.
func (s *PlanService) BuildPlan(ctx context.Context, req *model.PlanBuildRequest) (*mysqlModel.SchedulingPlan, error) {
	planDate, err := time.Parse(planDateLayout, req.PlanDate)
	if err != nil {
		return nil, fmt.Errorf("invalid plan date %q: %w", req.PlanDate, err)
	}

	lk := s.newLock(req.FactoryID)
	acquired, err := lk.TryLock(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire plan lock: %w", err)
	}
	if !acquired {
		return nil, fmt.Errorf("plan build for factory %s already in progress", req.FactoryID)
	}
	defer func() {
		if err := lk.Unlock(ctx); err != nil {
			logger.WarnCtx(ctx, "failed to release plan lock for factory %s: %v", req.FactoryID, err)
		}
	}()

	existing, err := s.planRepo.GetByFactoryDate(ctx, req.FactoryID, planDate)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Status != constants.PlanStatusDraft {
		return nil, fmt.Errorf("plan for %s on %s is %s and cannot be rebuilt",
			req.FactoryID, req.PlanDate, existing.Status)
	}

	storedCfg, err := s.configService.GetOrCreate(ctx, req.FactoryID)
	if err != nil {
		return nil, err
	}
	cfg := ScoringConfig(storedCfg)

	workers, err := s.syncRoster(ctx, req)
	if err != nil {
		return nil, err
	}
	tasks := tasksFromBatches(req)

	engine, err := s.buildEngine(ctx, req.FactoryID, planDate, cfg, workers)
	if err != nil {
		return nil, err
	}

	result := scheduling.NewPlanner(cfg, engine).Build(workers, tasks)

	plan, schedules, assignments := s.materialize(req.FactoryID, planDate, result)

	// Replacing a draft and writing the new plan commit as one unit, so a
	// failed rebuild never leaves the factory/date without a plan
	err = s.planRepo.ExecTx(ctx, func(txCtx context.Context) error {
		if existing != nil {
			if err := s.planRepo.Delete(txCtx, existing.ID); err != nil {
				return err
			}
		}
		if err := s.planRepo.Create(txCtx, plan, schedules); err != nil {
			return err
		}
		return s.assignmentRepo.CreateBatch(txCtx, assignments)
	})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		logger.InfoCtx(ctx, "replaced draft plan %s for factory %s on %s", existing.ID, req.FactoryID, req.PlanDate)
	}

	// Advisory: prediction or alert failures never roll back the plan
	s.predictAndScan(ctx, storedCfg, plan, result, workers, schedules, assignments)

	logger.InfoCtx(ctx, "built plan %s for factory %s on %s: %d schedules, %d assignments, %d understaffed",
		plan.ID, req.FactoryID, req.PlanDate, plan.TotalSchedules, plan.TotalAssignments, plan.UnderstaffedLines)
	return plan, nil
}

// syncRoster persists unknown roster workers and returns scoring snapshots.
// The submitted snapshot wins over stored profile values for this build.
func (s *PlanService) syncRoster(ctx context.Context, req *model.PlanBuildRequest) ([]scheduling.Worker, error) {
	workers := make([]scheduling.Worker, 0, len(req.Workers))
	for _, rw := range req.Workers {
		profile, err := s.workerRepo.Get(ctx, rw.WorkerID)
		if err != nil {
			return nil, err
		}
		if profile == nil {
			profile = &mysqlModel.WorkerProfile{
				WorkerID:         rw.WorkerID,
				FactoryID:        req.FactoryID,
				Name:             rw.Name,
				SkillLevel:       rw.SkillLevel,
				GrowthRate:       rw.GrowthRate,
				ReliabilityScore: rw.ReliabilityScore,
				IsTemp:           rw.IsTemp,
				HiredAt:          rw.HiredAt,
				ExpectedEndDate:  rw.ExpectedEndDate,
			}
			if err := s.workerRepo.Create(ctx, profile); err != nil {
				return nil, err
			}
		}
		workers = append(workers, scheduling.Worker{
			ID:               rw.WorkerID,
			SkillLevel:       rw.SkillLevel,
			GrowthRate:       rw.GrowthRate,
			ReliabilityScore: rw.ReliabilityScore,
			IsTemp:           rw.IsTemp,
			HiredAt:          rw.HiredAt,
		})
	}
	return workers, nil
}

func tasksFromBatches(req *model.PlanBuildRequest) []scheduling.Task {
	lines := make(map[string]model.ProductionLine, len(req.Lines))
	for _, l := range req.Lines {
		lines[l.LineID] = l
	}

	tasks := make([]scheduling.Task, 0, len(req.Batches))
	for _, b := range req.Batches {
		line := lines[b.LineID] // zero value contributes neutral defaults
		tasks = append(tasks, scheduling.Task{
			LineID:          b.LineID,
			BatchID:         b.BatchID,
			SKUCode:         b.SKUCode,
			SKUComplexity:   b.SKUComplexity,
			ProductType:     b.ProductType,
			TaskType:        b.TaskType,
			Start:           b.PlannedStart,
			End:             b.PlannedEnd,
			Deadline:        b.Deadline,
			RequiredWorkers: b.RequiredWorkers,
			MinWorkers:      line.MinWorkers,
			MaxWorkers:      line.MaxWorkers,

			EquipmentAgeYears:    line.EquipmentAgeYears,
			EquipmentUtilization: line.EquipmentUtilization,
		})
	}
	return tasks
}

// buildEngine rebuilds the scoring indices and the bandit state from stored
// assignment history, far enough back to cover every scoring window.
func (s *PlanService) buildEngine(ctx context.Context, factoryID string, planDate time.Time, cfg scheduling.Config, workers []scheduling.Worker) (*scheduling.Engine, error) {
	lookbackDays := cfg.FairnessPeriodDays
	for _, d := range []int{cfg.SkillDecayDays, cfg.TempSkillDecayDays, cfg.RepetitionDays, cfg.MaxConsecutiveDays + 1} {
		if d > lookbackDays {
			lookbackDays = d
		}
	}
	since := planDate.AddDate(0, 0, -lookbackDays)

	rows, err := s.assignmentRepo.ListHistoryByFactory(ctx, factoryID, since)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]scheduling.Worker, len(workers))
	for _, w := range workers {
		byID[w.ID] = w
	}

	entries := make([]scheduling.HistoryEntry, 0, len(rows))
	bandit := scheduling.NewBandit()
	for _, row := range rows {
		entries = append(entries, scheduling.HistoryEntry{
			WorkerID: row.WorkerID,
			TaskType: row.TaskType,
			Date:     row.PlannedStart,
		})

		if row.PerformanceScore == nil {
			continue
		}
		w, ok := byID[row.WorkerID]
		if !ok {
			continue
		}
		x := scheduling.Features(w, scheduling.Task{
			Start:                row.PlannedStart,
			SKUComplexity:        row.SKUComplexity,
			EquipmentUtilization: row.EquipmentUtilization,
		})
		bandit.Observe(scheduling.ArmKey(row.WorkerID, row.TaskType), x, *row.PerformanceScore)
	}

	history := scheduling.NewHistory(entries, planDate, cfg)
	return scheduling.NewEngine(cfg, bandit, history), nil
}

// materialize converts the planner output to persistence rows.
func (s *PlanService) materialize(factoryID string, planDate time.Time, result *scheduling.PlanResult) (*mysqlModel.SchedulingPlan, []*mysqlModel.LineSchedule, []*mysqlModel.WorkerAssignment) {
	plan := &mysqlModel.SchedulingPlan{
		ID:                uuid.New().String(),
		FactoryID:         factoryID,
		PlanDate:          planDate,
		Status:            constants.PlanStatusDraft,
		TotalSchedules:    len(result.Schedules),
		TotalAssignments:  result.TotalAssignments,
		UnderstaffedLines: result.UnderstaffedLines,
	}

	schedules := make([]*mysqlModel.LineSchedule, 0, len(result.Schedules))
	var assignments []*mysqlModel.WorkerAssignment
	for _, ps := range result.Schedules {
		status := constants.ScheduleStatusPlanned
		if ps.Understaffed {
			status = constants.ScheduleStatusUnderstaffed
		}
		schedule := &mysqlModel.LineSchedule{
			ID:        uuid.New().String(),
			PlanID:    plan.ID,
			FactoryID: factoryID,
			LineID:    ps.Task.LineID,
			BatchID:   ps.Task.BatchID,
			SKUCode:   ps.Task.SKUCode,

			TaskType: ps.Task.TaskType,

			SKUComplexity:        ps.Task.SKUComplexity,
			ProductType:          ps.Task.ProductType,
			EquipmentAgeYears:    ps.Task.EquipmentAgeYears,
			EquipmentUtilization: ps.Task.EquipmentUtilization,

			Status:          status,
			PlannedStart:    ps.Task.Start,
			PlannedEnd:      ps.Task.End,
			Deadline:        ps.Task.Deadline,
			RequiredWorkers: ps.Task.RequiredWorkers,
			AssignedWorkers: len(ps.Assignments),
			LineMaxWorkers:  ps.Task.MaxWorkers,
		}
		schedules = append(schedules, schedule)

		for _, pa := range ps.Assignments {
			explanation, _ := json.Marshal(pa.Explanation)
			assignments = append(assignments, &mysqlModel.WorkerAssignment{
				ID:                  uuid.New().String(),
				LineScheduleID:      schedule.ID,
				PlanID:              plan.ID,
				WorkerID:            pa.WorkerID,
				Status:              constants.AssignmentStatusAssigned,
				Score:               pa.Score,
				ScoreExplanation:    string(explanation),
				GuaranteeAssignment: pa.Guarantee,
			})
		}
	}
	return plan, schedules, assignments
}

// predictAndScan forecasts each schedule, stores per-assignment predictions,
// flags schedule risk, and runs the alert scan. Failures here are logged and
// swallowed; the committed plan stands.
func (s *PlanService) predictAndScan(ctx context.Context, cfg *mysqlModel.SchedulingConfig, plan *mysqlModel.SchedulingPlan, result *scheduling.PlanResult, workers []scheduling.Worker, schedules []*mysqlModel.LineSchedule, assignments []*mysqlModel.WorkerAssignment) {
	byScheduleID := make(map[string][]*mysqlModel.WorkerAssignment)
	for _, a := range assignments {
		byScheduleID[a.LineScheduleID] = append(byScheduleID[a.LineScheduleID], a)
	}

	snapshots := make(map[string]scheduling.Worker, len(workers))
	for _, w := range workers {
		snapshots[w.ID] = w
	}
	completionProbs := make(map[string]float64)

	var rows []*mysqlModel.AssignmentPrediction
	for i, ps := range result.Schedules {
		schedule := schedules[i]

		crew := make([]scheduling.Worker, 0, len(ps.Assignments))
		for _, pa := range ps.Assignments {
			if w, ok := snapshots[pa.WorkerID]; ok {
				crew = append(crew, w)
			}
		}
		if len(crew) == 0 {
			crew = nil
		}
		vector := prediction.BuildVector(ps.Task, crew)

		results, err := s.predictor.Predict(ctx, plan.FactoryID, vector)
		if err != nil {
			logger.WarnCtx(ctx, "prediction failed for schedule %s, plan committed without forecasts: %v", schedule.ID, err)
			continue
		}

		var predictedEfficiency, completionProb float64
		for _, r := range results {
			switch r.ModelType {
			case constants.ModelTypeEfficiency:
				predictedEfficiency = r.Value
			case constants.ModelTypeCompletionProb:
				completionProb = r.Value
			}
			for _, a := range byScheduleID[schedule.ID] {
				rows = append(rows, &mysqlModel.AssignmentPrediction{
					AssignmentID:   a.ID,
					LineScheduleID: schedule.ID,
					FactoryID:      plan.FactoryID,
					ModelType:      r.ModelType,
					Value:          r.Value,
					Confidence:     r.Confidence,
					ModelVersion:   r.ModelVersion,
				})
			}
		}
		completionProbs[schedule.ID] = completionProb

		risk := riskFromCompletionProb(completionProb, cfg.CompletionProbAlertThreshold)
		if err := s.planRepo.UpdateScheduleRisk(ctx, schedule.ID, predictedEfficiency, risk); err != nil {
			logger.WarnCtx(ctx, "failed to flag risk on schedule %s: %v", schedule.ID, err)
		}
	}

	if len(rows) > 0 {
		if err := s.predictionRepo.SaveBatch(ctx, rows); err != nil {
			logger.WarnCtx(ctx, "failed to store predictions for plan %s: %v", plan.ID, err)
		}
	}

	if s.alertService != nil {
		if err := s.alertService.ScanPlan(ctx, cfg, plan, schedules, completionProbs); err != nil {
			logger.WarnCtx(ctx, "alert scan failed for plan %s: %v", plan.ID, err)
		}
	}
}

// riskFromCompletionProb maps a completion probability to a risk level
// relative to the alert threshold.
func riskFromCompletionProb(prob, threshold float64) constants.RiskLevel {
	switch {
	case prob < threshold-0.2:
		return constants.RiskLevelHigh
	case prob < threshold:
		return constants.RiskLevelMedium
	default:
		return constants.RiskLevelLow
	}
}

// Confirm marks a draft plan confirmed by a human.
func (s *PlanService) Confirm(ctx context.Context, planID, confirmedBy string) error {
	return s.planRepo.Confirm(ctx, planID, confirmedBy)
}

// GetDetail returns a plan with its schedules and assignments.
func (s *PlanService) GetDetail(ctx context.Context, planID string) (*model.PlanDetail, error) {
	plan, err := s.planRepo.Get(ctx, planID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, nil
	}

	schedules, err := s.planRepo.ListSchedules(ctx, planID)
	if err != nil {
		return nil, err
	}
	assignments, err := s.assignmentRepo.ListByPlan(ctx, planID)
	if err != nil {
		return nil, err
	}

	detail := &model.PlanDetail{Plan: plan}
	byScheduleID := make(map[string][]*mysqlModel.WorkerAssignment)
	for _, a := range assignments {
		byScheduleID[a.LineScheduleID] = append(byScheduleID[a.LineScheduleID], a)
	}
	for _, sched := range schedules {
		detail.Schedules = append(detail.Schedules, model.ScheduleDetail{
			Schedule:    sched,
			Assignments: byScheduleID[sched.ID],
		})
	}
	return detail, nil
}

// GetByFactoryDate returns the plan for one factory and date, nil if none.
func (s *PlanService) GetByFactoryDate(ctx context.Context, factoryID, date string) (*mysqlModel.SchedulingPlan, error) {
	planDate, err := time.Parse(planDateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("invalid plan date %q: %w", date, err)
	}
	return s.planRepo.GetByFactoryDate(ctx, factoryID, planDate)
}

// UpdateAssignmentStatus transitions one assignment through its state machine.
func (s *PlanService) UpdateAssignmentStatus(ctx context.Context, assignmentID string, status constants.AssignmentStatus) error {
	return s.assignmentRepo.UpdateStatus(ctx, assignmentID, status)
}
