package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultStoredConfig(t *testing.T) {
	cfg := defaultStoredConfig("f1")

	assert.Equal(t, "f1", cfg.FactoryID)
	assert.Equal(t, 0.60, cfg.LinUCBWeight)
	assert.Equal(t, 0.15, cfg.FairnessWeight)
	assert.Equal(t, 0.10, cfg.SkillMaintenanceWeight)
	assert.Equal(t, 0.10, cfg.RepetitionWeight)
	assert.Equal(t, 0.05, cfg.SKUComplexityWeight)
	assert.Equal(t, 0.01, cfg.WeightMin)
	assert.Equal(t, 0.95, cfg.WeightMax)
	assert.Equal(t, 0.5, cfg.ExplorationAlpha)

	assert.Equal(t, 30, cfg.SkillDecayDays)
	assert.Equal(t, 7, cfg.FairnessPeriodDays)
	assert.Equal(t, 3, cfg.RepetitionDays)
	assert.Equal(t, 5, cfg.MaxConsecutiveDays)

	assert.True(t, cfg.AdaptiveLearningEnabled)
	assert.Equal(t, 0.02, cfg.LearningRate)
	assert.Equal(t, 20, cfg.MinSamplesForAdaptation)
	assert.Equal(t, 0.85, cfg.EfficiencyTarget)
	assert.Equal(t, 0.6, cfg.DiversityTarget)
	assert.Equal(t, 0.50, cfg.EfficiencyAnomalyThreshold)
	assert.Equal(t, 3, cfg.AnomalyCountForCalibration)
	assert.Equal(t, 0.7, cfg.CompletionProbAlertThreshold)
}

func TestScoringConfigConversion(t *testing.T) {
	stored := defaultStoredConfig("f1")
	stored.LinUCBWeight = 0.55
	stored.TempWorkerFairnessBoost = 2.0
	stored.MaxAssignmentsPerDay = 3

	cfg := ScoringConfig(stored)

	assert.Equal(t, 0.55, cfg.LinUCBWeight)
	assert.Equal(t, 2.0, cfg.TempWorkerFairnessBoost)
	assert.Equal(t, 3, cfg.MaxAssignmentsPerDay)
	assert.Equal(t, stored.ExplorationAlpha, cfg.ExplorationAlpha)
	assert.Equal(t, stored.HighComplexitySkillThreshold, cfg.HighComplexitySkillThreshold)
	assert.Equal(t, stored.LowComplexityForTraining, cfg.LowComplexityForTraining)
}

func TestScoringConfigNilFallsBackToDefaults(t *testing.T) {
	cfg := ScoringConfig(nil)
	assert.Equal(t, 0.60, cfg.LinUCBWeight)
	assert.Equal(t, 7, cfg.FairnessPeriodDays)
}
