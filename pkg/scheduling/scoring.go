package scheduling

import "math"

// traineeCeiling bounds both the complexity of a task considered "low
// complexity for training" and the skill level considered trainee-grade.
const traineeCeiling = 2.0

// Score is the result of scoring one (worker, task) pair.
type Score struct {
	Value       float64     `json:"value"`
	HardReject  bool        `json:"hard_reject"`
	RejectCause string      `json:"reject_cause,omitempty"`
	Explanation Explanation `json:"explanation"`
}

// Explanation is the audit breakdown of a score: each raw term and the
// effective (temp-adjusted) weights it was combined with.
type Explanation struct {
	Reward            float64          `json:"reward"`
	FairnessBonus     float64          `json:"fairness_bonus"`
	SkillBonus        float64          `json:"skill_bonus"`
	RepetitionPenalty float64          `json:"repetition_penalty"`
	MismatchPenalty   float64          `json:"mismatch_penalty"`
	Weights           EffectiveWeights `json:"weights"`
	TempWorker        bool             `json:"temp_worker"`
}

// Engine scores worker/task pairs. It is a pure function of its inputs and safe
// to call concurrently for independent plans.
type Engine struct {
	cfg     Config
	bandit  *Bandit
	history *History
}

// NewEngine creates a scoring engine over one consistent snapshot of config,
// bandit state and assignment history.
func NewEngine(cfg Config, bandit *Bandit, history *History) *Engine {
	return &Engine{cfg: cfg, bandit: bandit, history: history}
}

// Score combines the bandit reward estimate with the fairness, skill-retention,
// repetition and complexity terms. Hard rejects yield -Inf without an error so
// the pair is simply excluded from assignment.
func (e *Engine) Score(worker Worker, task Task) Score {
	weights := ApplyTempPolicy(e.cfg, worker)
	expl := Explanation{Weights: weights, TempWorker: worker.IsTemp}

	// Complexity gate first: it can reject outright
	highComplexity := task.SKUComplexity > e.cfg.HighComplexitySkillThreshold
	if highComplexity && worker.SkillLevel < e.cfg.HighComplexitySkillThreshold {
		return Score{
			Value:       math.Inf(-1),
			HardReject:  true,
			RejectCause: "skill below complexity threshold",
			Explanation: expl,
		}
	}

	// Consecutive-day gate: exceeding the cap is a hard reject, not a penalty
	consecutive := e.history.ConsecutiveDays(worker.ID, task.TaskType)
	if e.cfg.MaxConsecutiveDays > 0 && consecutive+1 > e.cfg.MaxConsecutiveDays {
		return Score{
			Value:       math.Inf(-1),
			HardReject:  true,
			RejectCause: "max consecutive days exceeded",
			Explanation: expl,
		}
	}

	expl.Reward = e.bandit.Score(ArmKey(worker.ID, task.TaskType), Features(worker, task), e.cfg.ExplorationAlpha)
	expl.FairnessBonus = fairnessBonus(e.history.FairnessCount(worker.ID))
	expl.SkillBonus = e.skillBonus(worker, task)
	expl.RepetitionPenalty = e.repetitionPenalty(worker, task)
	expl.MismatchPenalty = e.mismatchPenalty(worker, task)

	value := weights.LinUCB*expl.Reward +
		weights.Fairness*expl.FairnessBonus +
		weights.SkillMaintenance*expl.SkillBonus -
		weights.Repetition*expl.RepetitionPenalty -
		weights.SKUComplexity*expl.MismatchPenalty

	return Score{Value: value, Explanation: expl}
}

// fairnessBonus is strictly monotonically decreasing in the recent assignment
// count: 1 for an idle worker, approaching 0 as assignments pile up.
func fairnessBonus(recentCount int) float64 {
	return 1 / (1 + float64(recentCount))
}

// skillBonus rewards workers whose proficiency at the task type is about to
// decay: it ramps from 0 (used today) to 1 (unused for the full decay window).
// A worker who has never performed the task type contributes a neutral 0.
func (e *Engine) skillBonus(worker Worker, task Task) float64 {
	days, ok := e.history.DaysSinceSkillUse(worker.ID, task.TaskType)
	if !ok {
		return 0
	}
	window := SkillDecayWindow(e.cfg, worker)
	if window <= 0 {
		return 0
	}
	if days >= window {
		return 1
	}
	return float64(days) / float64(window)
}

// repetitionPenalty grows with how often the worker did the same task type
// within the repetition window.
func (e *Engine) repetitionPenalty(worker Worker, task Task) float64 {
	count := e.history.RepetitionCount(worker.ID, task.TaskType)
	if count == 0 || e.cfg.RepetitionDays <= 0 {
		return 0
	}
	return float64(count) / float64(e.cfg.RepetitionDays)
}

// mismatchPenalty penalizes a skill gap on demanding tasks. When low-complexity
// training is enabled, easy tasks turn into a bonus (negative penalty) for
// trainee-level workers so they get deliberate practice slots.
func (e *Engine) mismatchPenalty(worker Worker, task Task) float64 {
	if e.cfg.LowComplexityForTraining &&
		task.SKUComplexity <= traineeCeiling && worker.SkillLevel <= traineeCeiling {
		return -1
	}
	gap := task.SKUComplexity - worker.SkillLevel
	if gap <= 0 {
		return 0
	}
	return gap / 5
}
