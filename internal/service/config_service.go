package service

import (
	"context"
	"fmt"

	"lineflow/internal/model"
	"lineflow/pkg/logger"
	"lineflow/pkg/scheduling"
	"lineflow/pkg/store/mysql"
	mysqlModel "lineflow/pkg/store/mysql/model"
	"lineflow/pkg/tuner"

	"github.com/google/uuid"
)

// ConfigService manages per-factory scheduling configurations.
type ConfigService struct {
	configRepo  *mysql.SchedulingConfigRepository
	historyRepo *mysql.WeightHistoryRepository
}

// NewConfigService creates a new config service
func NewConfigService(configRepo *mysql.SchedulingConfigRepository, historyRepo *mysql.WeightHistoryRepository) *ConfigService {
	return &ConfigService{
		configRepo:  configRepo,
		historyRepo: historyRepo,
	}
}

// GetOrCreate returns the factory's configuration, creating it with factory
// defaults on first use so plan generation never fails for a missing config.
func (s *ConfigService) GetOrCreate(ctx context.Context, factoryID string) (*mysqlModel.SchedulingConfig, error) {
	cfg, err := s.configRepo.Get(ctx, factoryID)
	if err != nil {
		return nil, err
	}
	if cfg != nil {
		return cfg, nil
	}

	cfg = defaultStoredConfig(factoryID)
	if err := s.configRepo.Create(ctx, cfg); err != nil {
		// Lost a creation race; the winner's row is the one to use
		if mysql.IsDuplicateKey(err) {
			return s.configRepo.Get(ctx, factoryID)
		}
		return nil, fmt.Errorf("failed to create scheduling config: %w", err)
	}
	logger.InfoCtx(ctx, "created default scheduling config for factory %s", factoryID)
	return cfg, nil
}

// Override applies a partial admin update. The stored version must match; a
// stale request is rejected so an admin never silently clobbers a concurrent
// adaptation. Weight changes land in the audit trail like any other.
func (s *ConfigService) Override(ctx context.Context, factoryID string, req *model.ConfigOverrideRequest) (*mysqlModel.SchedulingConfig, error) {
	cfg, err := s.configRepo.Get(ctx, factoryID)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("no scheduling config for factory %s", factoryID)
	}
	if cfg.Version != req.Version {
		return nil, fmt.Errorf("config version mismatch: have %d, got %d", cfg.Version, req.Version)
	}

	before := tuner.WeightsFromConfig(cfg)

	setWeight := func(dst *float64, src *float64) error {
		if src == nil {
			return nil
		}
		if *src < cfg.WeightMin || *src > cfg.WeightMax {
			return fmt.Errorf("weight %.3f outside valid range [%.2f, %.2f]", *src, cfg.WeightMin, cfg.WeightMax)
		}
		*dst = *src
		return nil
	}
	for _, pair := range []struct {
		dst *float64
		src *float64
	}{
		{&cfg.LinUCBWeight, req.LinUCBWeight},
		{&cfg.FairnessWeight, req.FairnessWeight},
		{&cfg.SkillMaintenanceWeight, req.SkillMaintenanceWeight},
		{&cfg.RepetitionWeight, req.RepetitionWeight},
		{&cfg.SKUComplexityWeight, req.SKUComplexityWeight},
	} {
		if err := setWeight(pair.dst, pair.src); err != nil {
			return nil, err
		}
	}

	if req.ExplorationAlpha != nil {
		cfg.ExplorationAlpha = *req.ExplorationAlpha
	}
	if req.AdaptiveLearningEnabled != nil {
		cfg.AdaptiveLearningEnabled = *req.AdaptiveLearningEnabled
	}
	if req.LearningRate != nil {
		cfg.LearningRate = *req.LearningRate
	}
	if req.EfficiencyTarget != nil {
		cfg.EfficiencyTarget = *req.EfficiencyTarget
	}
	if req.DiversityTarget != nil {
		cfg.DiversityTarget = *req.DiversityTarget
	}

	ok, err := s.configRepo.UpdateVersioned(ctx, cfg, req.Version)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("config version mismatch: concurrent update for factory %s", factoryID)
	}

	after := tuner.WeightsFromConfig(cfg)
	if before != after {
		history := &mysqlModel.WeightHistory{
			ID:            uuid.New().String(),
			FactoryID:     factoryID,
			WeightsBefore: before.JSON(),
			WeightsAfter:  after.JSON(),
			TriggerReason: "admin_override by " + req.Actor,
		}
		if err := s.historyRepo.Append(ctx, history); err != nil {
			return nil, fmt.Errorf("failed to append weight history: %w", err)
		}
	}

	logger.InfoCtx(ctx, "scheduling config for factory %s overridden by %s", factoryID, req.Actor)
	return cfg, nil
}

// ScoringConfig converts a stored configuration to the in-memory snapshot the
// scoring engine and planner consume.
func ScoringConfig(cfg *mysqlModel.SchedulingConfig) scheduling.Config {
	if cfg == nil {
		return scheduling.DefaultConfig()
	}
	return scheduling.Config{
		LinUCBWeight:           cfg.LinUCBWeight,
		FairnessWeight:         cfg.FairnessWeight,
		SkillMaintenanceWeight: cfg.SkillMaintenanceWeight,
		RepetitionWeight:       cfg.RepetitionWeight,
		SKUComplexityWeight:    cfg.SKUComplexityWeight,

		WeightMin: cfg.WeightMin,
		WeightMax: cfg.WeightMax,

		ExplorationAlpha: cfg.ExplorationAlpha,

		SkillDecayDays:     cfg.SkillDecayDays,
		FairnessPeriodDays: cfg.FairnessPeriodDays,
		RepetitionDays:     cfg.RepetitionDays,
		MaxConsecutiveDays: cfg.MaxConsecutiveDays,

		HighComplexitySkillThreshold: cfg.HighComplexitySkillThreshold,
		LowComplexityForTraining:     cfg.LowComplexityForTraining,

		TempWorkerScoreFactor:    cfg.TempWorkerScoreFactor,
		TempWorkerFairnessBoost:  cfg.TempWorkerFairnessBoost,
		TempSkillDecayDays:       cfg.TempSkillDecayDays,
		TempWorkerMinAssignments: cfg.TempWorkerMinAssignments,

		MaxAssignmentsPerDay: cfg.MaxAssignmentsPerDay,
	}
}

// defaultStoredConfig builds a stored row carrying the factory defaults.
func defaultStoredConfig(factoryID string) *mysqlModel.SchedulingConfig {
	d := scheduling.DefaultConfig()
	return &mysqlModel.SchedulingConfig{
		FactoryID: factoryID,

		LinUCBWeight:           d.LinUCBWeight,
		FairnessWeight:         d.FairnessWeight,
		SkillMaintenanceWeight: d.SkillMaintenanceWeight,
		RepetitionWeight:       d.RepetitionWeight,
		SKUComplexityWeight:    d.SKUComplexityWeight,

		WeightMin: d.WeightMin,
		WeightMax: d.WeightMax,

		ExplorationAlpha: d.ExplorationAlpha,

		SkillDecayDays:     d.SkillDecayDays,
		FairnessPeriodDays: d.FairnessPeriodDays,
		RepetitionDays:     d.RepetitionDays,
		MaxConsecutiveDays: d.MaxConsecutiveDays,

		HighComplexitySkillThreshold: d.HighComplexitySkillThreshold,
		LowComplexityForTraining:     d.LowComplexityForTraining,

		TempWorkerScoreFactor:    d.TempWorkerScoreFactor,
		TempWorkerFairnessBoost:  d.TempWorkerFairnessBoost,
		TempSkillDecayDays:       d.TempSkillDecayDays,
		TempWorkerMinAssignments: d.TempWorkerMinAssignments,

		MaxAssignmentsPerDay: d.MaxAssignmentsPerDay,

		AdaptiveLearningEnabled: true,
		LearningRate:            0.02,
		MinSamplesForAdaptation: 20,
		EfficiencyTarget:        0.85,
		DiversityTarget:         0.6,

		EfficiencyAnomalyThreshold: 0.50,
		AnomalyCountForCalibration: 3,

		CompletionProbAlertThreshold: 0.7,
	}
}
