package scheduling

import "sort"

// PlannedAssignment is one worker bound to one task in a plan build.
type PlannedAssignment struct {
	WorkerID    string      `json:"worker_id"`
	Score       float64     `json:"score"`
	Explanation Explanation `json:"explanation"`
	Guarantee   bool        `json:"guarantee"` // placed by the temp-worker guarantee pass
}

// PlannedSchedule is one task with its crew.
type PlannedSchedule struct {
	Task         Task                `json:"task"`
	Assignments  []PlannedAssignment `json:"assignments"`
	Understaffed bool                `json:"understaffed"`
}

// PlanResult is the outcome of one plan build for one factory and date.
type PlanResult struct {
	Schedules         []PlannedSchedule `json:"schedules"`
	TotalAssignments  int               `json:"total_assignments"`
	UnderstaffedLines int               `json:"understaffed_lines"`
}

type candidate struct {
	workerIdx int
	taskIdx   int
	score     Score
}

// Planner turns scored worker/task candidates into a day plan. Given identical
// inputs two runs produce identical plans: candidates are sorted by score
// descending with ties broken by worker ID then task key, both ascending.
type Planner struct {
	cfg    Config
	engine *Engine
}

// NewPlanner creates a planner over one scoring engine snapshot.
func NewPlanner(cfg Config, engine *Engine) *Planner {
	return &Planner{cfg: cfg, engine: engine}
}

// Build produces the plan. Understaffed lines are marked and committed rather
// than failing the build; escalation is the alert monitor's job.
func (p *Planner) Build(workers []Worker, tasks []Task) *PlanResult {
	// Stable input order regardless of caller ordering
	workers = append([]Worker(nil), workers...)
	sort.Slice(workers, func(i, j int) bool { return workers[i].ID < workers[j].ID })
	tasks = append([]Task(nil), tasks...)
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].Key() < tasks[j].Key() })

	candidates := make([]candidate, 0, len(workers)*len(tasks))
	for wi, w := range workers {
		for ti, t := range tasks {
			s := p.engine.Score(w, t)
			if s.HardReject {
				continue
			}
			candidates = append(candidates, candidate{workerIdx: wi, taskIdx: ti, score: s})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score.Value != candidates[j].score.Value {
			return candidates[i].score.Value > candidates[j].score.Value
		}
		wi, wj := workers[candidates[i].workerIdx].ID, workers[candidates[j].workerIdx].ID
		if wi != wj {
			return wi < wj
		}
		return tasks[candidates[i].taskIdx].Key() < tasks[candidates[j].taskIdx].Key()
	})

	schedules := make([]PlannedSchedule, len(tasks))
	for i, t := range tasks {
		schedules[i] = PlannedSchedule{Task: t}
	}

	workerLoad := make([]int, len(workers))
	assigned := make(map[int]map[int]bool) // task idx -> worker idx

	place := func(c candidate, guarantee bool) {
		schedules[c.taskIdx].Assignments = append(schedules[c.taskIdx].Assignments, PlannedAssignment{
			WorkerID:    workers[c.workerIdx].ID,
			Score:       c.score.Value,
			Explanation: c.score.Explanation,
			Guarantee:   guarantee,
		})
		workerLoad[c.workerIdx]++
		if assigned[c.taskIdx] == nil {
			assigned[c.taskIdx] = make(map[int]bool)
		}
		assigned[c.taskIdx][c.workerIdx] = true
	}

	// Greedy pass: fill each task toward its required crew, best score first
	for _, c := range candidates {
		t := tasks[c.taskIdx]
		if len(schedules[c.taskIdx].Assignments) >= p.greedyTarget(t) {
			continue
		}
		if workerLoad[c.workerIdx] >= p.cfg.MaxAssignmentsPerDay {
			continue
		}
		place(c, false)
	}

	// Guarantee pass: every temp worker below the minimum receives additional
	// assignments, possibly lower-score ones, before the plan is finalized
	if p.cfg.TempWorkerMinAssignments > 0 {
		for wi, w := range workers {
			if !w.IsTemp {
				continue
			}
			for _, c := range candidates {
				if workerLoad[wi] >= p.cfg.TempWorkerMinAssignments ||
					workerLoad[wi] >= p.cfg.MaxAssignmentsPerDay {
					break
				}
				if c.workerIdx != wi || assigned[c.taskIdx][wi] {
					continue
				}
				if len(schedules[c.taskIdx].Assignments) >= p.hardCap(tasks[c.taskIdx]) {
					continue
				}
				place(c, true)
			}
		}
	}

	result := &PlanResult{Schedules: schedules}
	for i := range schedules {
		// Deterministic crew order inside each schedule
		sort.Slice(schedules[i].Assignments, func(a, b int) bool {
			return schedules[i].Assignments[a].WorkerID < schedules[i].Assignments[b].WorkerID
		})
		result.TotalAssignments += len(schedules[i].Assignments)
		if len(schedules[i].Assignments) < schedules[i].Task.MinWorkers {
			schedules[i].Understaffed = true
			result.UnderstaffedLines++
		}
	}
	return result
}

// greedyTarget caps the greedy pass at the required crew size, bounded by the
// line's hard capacity.
func (p *Planner) greedyTarget(t Task) int {
	target := t.RequiredWorkers
	if target <= 0 {
		target = t.MinWorkers
	}
	if hard := p.hardCap(t); target > hard {
		target = hard
	}
	return target
}

// hardCap is the line's physical worker capacity; the guarantee pass may exceed
// the required crew but never this.
func (p *Planner) hardCap(t Task) int {
	if t.MaxWorkers > 0 {
		return t.MaxWorkers
	}
	if t.RequiredWorkers > 0 {
		return t.RequiredWorkers
	}
	return 1
}
