package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func plannerTask(lineID, batchID string, required, min, max int) Task {
	start := dayAt(2025, 6, 2).Add(8 * time.Hour)
	return Task{
		LineID:          lineID,
		BatchID:         batchID,
		SKUCode:         "SKU-" + batchID,
		SKUComplexity:   2,
		TaskType:        "assembly",
		Start:           start,
		End:             start.Add(8 * time.Hour),
		RequiredWorkers: required,
		MinWorkers:      min,
		MaxWorkers:      max,
	}
}

func newTestPlanner(cfg Config, entries []HistoryEntry) *Planner {
	history := NewHistory(entries, dayAt(2025, 6, 2), cfg)
	return NewPlanner(cfg, NewEngine(cfg, NewBandit(), history))
}

func TestPlannerFillsRequiredCrew(t *testing.T) {
	cfg := DefaultConfig()
	p := newTestPlanner(cfg, nil)

	workers := []Worker{
		{ID: "w1", SkillLevel: 4},
		{ID: "w2", SkillLevel: 3},
		{ID: "w3", SkillLevel: 3},
	}
	tasks := []Task{plannerTask("L1", "B1", 2, 1, 4)}

	result := p.Build(workers, tasks)

	assert.Len(t, result.Schedules, 1)
	assert.Len(t, result.Schedules[0].Assignments, 2)
	assert.False(t, result.Schedules[0].Understaffed)
	assert.Equal(t, 2, result.TotalAssignments)
	assert.Equal(t, 0, result.UnderstaffedLines)
}

func TestPlannerDeterministic(t *testing.T) {
	cfg := DefaultConfig()
	workers := []Worker{
		{ID: "w3", SkillLevel: 3},
		{ID: "w1", SkillLevel: 3},
		{ID: "w2", SkillLevel: 3},
	}
	tasks := []Task{
		plannerTask("L2", "B2", 2, 1, 3),
		plannerTask("L1", "B1", 2, 1, 3),
	}

	first := newTestPlanner(cfg, nil).Build(workers, tasks)

	// Same inputs in a different order must produce the identical plan
	shuffledWorkers := []Worker{workers[1], workers[2], workers[0]}
	shuffledTasks := []Task{tasks[1], tasks[0]}
	second := newTestPlanner(cfg, nil).Build(shuffledWorkers, shuffledTasks)

	assert.Equal(t, first.TotalAssignments, second.TotalAssignments)
	assert.Len(t, first.Schedules, len(second.Schedules))
	for i := range first.Schedules {
		assert.Equal(t, first.Schedules[i].Task.Key(), second.Schedules[i].Task.Key())
		assert.Len(t, first.Schedules[i].Assignments, len(second.Schedules[i].Assignments))
		for j := range first.Schedules[i].Assignments {
			assert.Equal(t,
				first.Schedules[i].Assignments[j].WorkerID,
				second.Schedules[i].Assignments[j].WorkerID)
		}
	}
}

func TestPlannerTieBreaksByWorkerID(t *testing.T) {
	cfg := DefaultConfig()
	p := newTestPlanner(cfg, nil)

	// Identical workers score identically; the lower ID must win the only slot
	workers := []Worker{
		{ID: "w2", SkillLevel: 3},
		{ID: "w1", SkillLevel: 3},
	}
	tasks := []Task{plannerTask("L1", "B1", 1, 1, 1)}

	result := p.Build(workers, tasks)

	assert.Len(t, result.Schedules[0].Assignments, 1)
	assert.Equal(t, "w1", result.Schedules[0].Assignments[0].WorkerID)
}

func TestPlannerMarksUnderstaffed(t *testing.T) {
	cfg := DefaultConfig()
	p := newTestPlanner(cfg, nil)

	workers := []Worker{{ID: "w1", SkillLevel: 4}}
	tasks := []Task{plannerTask("L1", "B1", 3, 2, 4)}

	result := p.Build(workers, tasks)

	// One worker cannot satisfy a minimum of two; the line commits anyway
	assert.Len(t, result.Schedules[0].Assignments, 1)
	assert.True(t, result.Schedules[0].Understaffed)
	assert.Equal(t, 1, result.UnderstaffedLines)
}

func TestPlannerRespectsDailyCap(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxAssignmentsPerDay = 1
	p := newTestPlanner(cfg, nil)

	workers := []Worker{{ID: "w1", SkillLevel: 4}}
	tasks := []Task{
		plannerTask("L1", "B1", 1, 0, 2),
		plannerTask("L2", "B2", 1, 0, 2),
	}

	result := p.Build(workers, tasks)

	assert.Equal(t, 1, result.TotalAssignments)
}

func TestPlannerTempGuaranteePass(t *testing.T) {
	cfg := DefaultConfig()
	p := newTestPlanner(cfg, nil)

	// Enough permanent workers to fill every required slot ahead of the temp;
	// the guarantee pass still places the temp worker
	workers := []Worker{
		{ID: "p1", SkillLevel: 5, ReliabilityScore: 1},
		{ID: "p2", SkillLevel: 5, ReliabilityScore: 1},
		{ID: "t1", SkillLevel: 3, IsTemp: true},
	}
	tasks := []Task{plannerTask("L1", "B1", 2, 1, 4)}

	result := p.Build(workers, tasks)

	var tempAssignment *PlannedAssignment
	for i := range result.Schedules[0].Assignments {
		if result.Schedules[0].Assignments[i].WorkerID == "t1" {
			tempAssignment = &result.Schedules[0].Assignments[i]
		}
	}
	if assert.NotNil(t, tempAssignment, "temp worker received no assignment") {
		assert.True(t, tempAssignment.Guarantee)
	}
}

func TestPlannerGuaranteeNeverExceedsLineCapacity(t *testing.T) {
	cfg := DefaultConfig()
	p := newTestPlanner(cfg, nil)

	// MaxWorkers 2 on the only line: the temp cannot be squeezed in
	workers := []Worker{
		{ID: "p1", SkillLevel: 5, ReliabilityScore: 1},
		{ID: "p2", SkillLevel: 5, ReliabilityScore: 1},
		{ID: "t1", SkillLevel: 3, IsTemp: true},
	}
	tasks := []Task{plannerTask("L1", "B1", 2, 1, 2)}

	result := p.Build(workers, tasks)

	assert.Len(t, result.Schedules[0].Assignments, 2)
	for _, a := range result.Schedules[0].Assignments {
		assert.NotEqual(t, "t1", a.WorkerID)
	}
}

func TestPlannerSkipsHardRejectedPairs(t *testing.T) {
	cfg := DefaultConfig()
	p := newTestPlanner(cfg, nil)

	// Only a trainee available for a high-complexity line
	workers := []Worker{{ID: "w1", SkillLevel: 1}}
	task := plannerTask("L1", "B1", 1, 1, 2)
	task.SKUComplexity = 4.5

	result := p.Build(workers, []Task{task})

	assert.Empty(t, result.Schedules[0].Assignments)
	assert.True(t, result.Schedules[0].Understaffed)
}

func TestPlannerEmptyInputs(t *testing.T) {
	cfg := DefaultConfig()
	p := newTestPlanner(cfg, nil)

	result := p.Build(nil, nil)
	assert.Empty(t, result.Schedules)
	assert.Equal(t, 0, result.TotalAssignments)

	withTasks := p.Build(nil, []Task{plannerTask("L1", "B1", 1, 1, 2)})
	assert.Len(t, withTasks.Schedules, 1)
	assert.True(t, withTasks.Schedules[0].Understaffed)
}
