package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"lineflow/internal/model"
	"lineflow/pkg/constants"
)

func TestRiskFromCompletionProb(t *testing.T) {
	tests := []struct {
		name      string
		prob      float64
		threshold float64
		expected  constants.RiskLevel
	}{
		{name: "comfortably above threshold", prob: 0.9, threshold: 0.7, expected: constants.RiskLevelLow},
		{name: "exactly at threshold", prob: 0.7, threshold: 0.7, expected: constants.RiskLevelLow},
		{name: "just below threshold", prob: 0.65, threshold: 0.7, expected: constants.RiskLevelMedium},
		{name: "exactly at high boundary", prob: 0.5, threshold: 0.7, expected: constants.RiskLevelMedium},
		{name: "far below threshold", prob: 0.45, threshold: 0.7, expected: constants.RiskLevelHigh},
		{name: "zero probability", prob: 0, threshold: 0.7, expected: constants.RiskLevelHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, riskFromCompletionProb(tt.prob, tt.threshold))
		})
	}
}

func TestTasksFromBatches(t *testing.T) {
	start := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	deadline := start.Add(10 * time.Hour)
	req := &model.PlanBuildRequest{
		FactoryID: "f1",
		PlanDate:  "2025-06-02",
		Lines: []model.ProductionLine{
			{LineID: "L1", MinWorkers: 2, MaxWorkers: 5, EquipmentAgeYears: 3, EquipmentUtilization: 0.8},
		},
		Batches: []model.ProductionBatch{
			{
				BatchID:         "B1",
				LineID:          "L1",
				SKUCode:         "SKU-9",
				SKUComplexity:   3.5,
				TaskType:        "assembly",
				ProductType:     "electronics",
				PlannedStart:    start,
				PlannedEnd:      start.Add(8 * time.Hour),
				Deadline:        &deadline,
				RequiredWorkers: 3,
			},
			{
				BatchID:      "B2",
				LineID:       "L9", // no matching line entry
				TaskType:     "packaging",
				PlannedStart: start,
				PlannedEnd:   start.Add(8 * time.Hour),
			},
		},
	}

	tasks := tasksFromBatches(req)

	assert.Len(t, tasks, 2)

	assert.Equal(t, "L1/B1", tasks[0].Key())
	assert.Equal(t, "assembly", tasks[0].TaskType)
	assert.Equal(t, "electronics", tasks[0].ProductType)
	assert.Equal(t, 3.5, tasks[0].SKUComplexity)
	assert.Equal(t, 2, tasks[0].MinWorkers)
	assert.Equal(t, 5, tasks[0].MaxWorkers)
	assert.Equal(t, 3.0, tasks[0].EquipmentAgeYears)
	assert.Equal(t, 0.8, tasks[0].EquipmentUtilization)
	assert.Equal(t, &deadline, tasks[0].Deadline)

	// A batch on an unknown line carries neutral line attributes
	assert.Equal(t, 0, tasks[1].MinWorkers)
	assert.Equal(t, 0, tasks[1].MaxWorkers)
	assert.Equal(t, 0.0, tasks[1].EquipmentUtilization)
}
