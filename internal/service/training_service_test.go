package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"lineflow/internal/model"
	mysqlModel "lineflow/pkg/store/mysql/model"
)

func TestBuildRecordFromScheduleSnapshot(t *testing.T) {
	start := time.Date(2025, 6, 2, 19, 0, 0, 0, time.UTC) // Monday, overtime band
	schedule := &mysqlModel.LineSchedule{
		ID:                   "sched-1",
		PlannedStart:         start,
		SKUComplexity:        3,
		ProductType:          "electronics",
		EquipmentAgeYears:    4,
		EquipmentUtilization: 0.7,
	}
	event := &model.BatchCompletedEvent{
		FactoryID:          "f1",
		BatchID:            "B1",
		LineScheduleID:     "sched-1",
		ActualEfficiency:   0.82,
		ActualDurationMins: 460,
		ActualQuality:      0.97,
	}
	crew := []*mysqlModel.WorkerProfile{
		{WorkerID: "w1", SkillLevel: 4, HiredAt: start.AddDate(-2, 0, 0)},
		{WorkerID: "w2", SkillLevel: 2, IsTemp: true, HiredAt: start.AddDate(0, -6, 0)},
	}

	record := buildRecord(event, schedule, crew)

	assert.Equal(t, "f1", record.FactoryID)
	assert.Equal(t, "B1", record.BatchID)
	assert.Equal(t, "sched-1", record.LineScheduleID)

	assert.Equal(t, 19, record.HourOfDay)
	assert.Equal(t, 1, record.DayOfWeek)
	assert.True(t, record.IsOvertime)

	assert.Equal(t, 3.0, record.SKUComplexity)
	assert.Equal(t, "electronics", record.ProductType)
	assert.Equal(t, 4.0, record.EquipmentAgeYears)
	assert.Equal(t, 0.7, record.EquipmentUtilization)

	assert.Equal(t, 2, record.WorkerCount)
	assert.Equal(t, 3.0, record.AvgSkillLevel)
	assert.Equal(t, 0.5, record.TempWorkerRatio)
	assert.InDelta(t, 1.25, record.AvgExperience, 0.05)

	assert.Equal(t, 0.82, record.ActualEfficiency)
	assert.Equal(t, 460.0, record.ActualDurationMins)
	assert.Equal(t, 0.97, record.ActualQuality)
}

func TestBuildRecordEmptyCrew(t *testing.T) {
	start := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	schedule := &mysqlModel.LineSchedule{ID: "sched-1", PlannedStart: start}
	event := &model.BatchCompletedEvent{FactoryID: "f1", BatchID: "B1", ActualEfficiency: 0.5}

	record := buildRecord(event, schedule, nil)

	assert.False(t, record.IsOvertime)
	assert.Equal(t, 0, record.WorkerCount)
	assert.Equal(t, 0.0, record.AvgSkillLevel)
	assert.Equal(t, 0.0, record.TempWorkerRatio)
}
