package scheduling

import "time"

// Worker is the scheduling-relevant snapshot of one worker. Snapshots are plain
// values resolved up front by the caller; scoring never fetches anything.
type Worker struct {
	ID               string    `json:"id"`
	SkillLevel       float64   `json:"skill_level"`
	GrowthRate       float64   `json:"growth_rate"`
	ReliabilityScore float64   `json:"reliability_score"`
	IsTemp           bool      `json:"is_temp"`
	HiredAt          time.Time `json:"hired_at"`
}

// Task is one batch slot on one production line in a time window.
type Task struct {
	LineID          string     `json:"line_id"`
	BatchID         string     `json:"batch_id"`
	SKUCode         string     `json:"sku_code"`
	SKUComplexity   float64    `json:"sku_complexity"`
	ProductType     string     `json:"product_type"`
	TaskType        string     `json:"task_type"` // skill category of the work
	Start           time.Time  `json:"start"`
	End             time.Time  `json:"end"`
	Deadline        *time.Time `json:"deadline,omitempty"`
	RequiredWorkers int        `json:"required_workers"`
	MinWorkers      int        `json:"min_workers"`
	MaxWorkers      int        `json:"max_workers"`

	EquipmentAgeYears    float64 `json:"equipment_age_years"`
	EquipmentUtilization float64 `json:"equipment_utilization"`
}

// Key identifies a task for scoring and tie-breaking; unique within one plan.
func (t Task) Key() string {
	return t.LineID + "/" + t.BatchID
}

// Config is the in-memory view of a factory's scheduling parameters, converted
// from the stored configuration before a plan build so scoring works from one
// consistent snapshot.
type Config struct {
	LinUCBWeight           float64
	FairnessWeight         float64
	SkillMaintenanceWeight float64
	RepetitionWeight       float64
	SKUComplexityWeight    float64

	WeightMin float64
	WeightMax float64

	ExplorationAlpha float64

	SkillDecayDays     int
	FairnessPeriodDays int
	RepetitionDays     int
	MaxConsecutiveDays int

	HighComplexitySkillThreshold float64
	LowComplexityForTraining     bool

	TempWorkerScoreFactor    float64
	TempWorkerFairnessBoost  float64
	TempSkillDecayDays       int
	TempWorkerMinAssignments int

	MaxAssignmentsPerDay int
}

// DefaultConfig returns the built-in factory defaults, used whenever no stored
// configuration exists so plan generation never fails for that reason.
func DefaultConfig() Config {
	return Config{
		LinUCBWeight:           0.60,
		FairnessWeight:         0.15,
		SkillMaintenanceWeight: 0.10,
		RepetitionWeight:       0.10,
		SKUComplexityWeight:    0.05,

		WeightMin: 0.01,
		WeightMax: 0.95,

		ExplorationAlpha: 0.5,

		SkillDecayDays:     30,
		FairnessPeriodDays: 7,
		RepetitionDays:     3,
		MaxConsecutiveDays: 5,

		HighComplexitySkillThreshold: 3,
		LowComplexityForTraining:     true,

		TempWorkerScoreFactor:    0.8,
		TempWorkerFairnessBoost:  1.5,
		TempSkillDecayDays:       14,
		TempWorkerMinAssignments: 1,

		MaxAssignmentsPerDay: 2,
	}
}

// HistoryEntry is one past assignment observation used to build scoring indices.
type HistoryEntry struct {
	WorkerID string
	TaskType string
	Date     time.Time
}

// History holds index lookups over recent assignments so scoring is pure map
// access with no I/O.
type History struct {
	now time.Time

	fairnessCounts map[string]int                  // worker -> assignments within the fairness window
	lastSkillUse   map[string]map[string]time.Time // worker -> task type -> most recent date
	repetition     map[string]map[string]int       // worker -> task type -> count within the repetition window
	consecutive    map[string]map[string]int       // worker -> task type -> consecutive days ending yesterday
}

// NewHistory builds the scoring indices from raw assignment history.
// now is the plan date; entries on or after it are ignored.
func NewHistory(entries []HistoryEntry, now time.Time, cfg Config) *History {
	h := &History{
		now:            now,
		fairnessCounts: make(map[string]int),
		lastSkillUse:   make(map[string]map[string]time.Time),
		repetition:     make(map[string]map[string]int),
		consecutive:    make(map[string]map[string]int),
	}

	fairnessSince := now.AddDate(0, 0, -cfg.FairnessPeriodDays)
	repetitionSince := now.AddDate(0, 0, -cfg.RepetitionDays)

	// day -> worker -> task type, for the consecutive-day runs
	byDay := make(map[string]map[string]map[string]bool)

	for _, e := range entries {
		if !e.Date.Before(now) {
			continue
		}
		if !e.Date.Before(fairnessSince) {
			h.fairnessCounts[e.WorkerID]++
		}
		if !e.Date.Before(repetitionSince) {
			if h.repetition[e.WorkerID] == nil {
				h.repetition[e.WorkerID] = make(map[string]int)
			}
			h.repetition[e.WorkerID][e.TaskType]++
		}
		if last, ok := h.lastUse(e.WorkerID, e.TaskType); !ok || e.Date.After(last) {
			if h.lastSkillUse[e.WorkerID] == nil {
				h.lastSkillUse[e.WorkerID] = make(map[string]time.Time)
			}
			h.lastSkillUse[e.WorkerID][e.TaskType] = e.Date
		}

		day := e.Date.Format("2006-01-02")
		if byDay[day] == nil {
			byDay[day] = make(map[string]map[string]bool)
		}
		if byDay[day][e.WorkerID] == nil {
			byDay[day][e.WorkerID] = make(map[string]bool)
		}
		byDay[day][e.WorkerID][e.TaskType] = true
	}

	// Walk backwards day by day from yesterday to count unbroken runs
	for worker, tasks := range h.lastSkillUse {
		for taskType := range tasks {
			run := 0
			for d := 1; ; d++ {
				day := now.AddDate(0, 0, -d).Format("2006-01-02")
				if byDay[day] == nil || !byDay[day][worker][taskType] {
					break
				}
				run++
			}
			if run > 0 {
				if h.consecutive[worker] == nil {
					h.consecutive[worker] = make(map[string]int)
				}
				h.consecutive[worker][taskType] = run
			}
		}
	}

	return h
}

// FairnessCount returns the worker's assignment count within the fairness window.
func (h *History) FairnessCount(workerID string) int {
	return h.fairnessCounts[workerID]
}

// RepetitionCount returns how often the worker did this task type within the
// repetition window.
func (h *History) RepetitionCount(workerID, taskType string) int {
	if m := h.repetition[workerID]; m != nil {
		return m[taskType]
	}
	return 0
}

// ConsecutiveDays returns the worker's unbroken run of days on this task type
// ending yesterday.
func (h *History) ConsecutiveDays(workerID, taskType string) int {
	if m := h.consecutive[workerID]; m != nil {
		return m[taskType]
	}
	return 0
}

func (h *History) lastUse(workerID, taskType string) (time.Time, bool) {
	if m := h.lastSkillUse[workerID]; m != nil {
		t, ok := m[taskType]
		return t, ok
	}
	return time.Time{}, false
}

// DaysSinceSkillUse returns how many days ago the worker last performed the task
// type. The second return is false when the worker has never performed it.
func (h *History) DaysSinceSkillUse(workerID, taskType string) (int, bool) {
	last, ok := h.lastUse(workerID, taskType)
	if !ok {
		return 0, false
	}
	return int(h.now.Sub(last).Hours() / 24), true
}
