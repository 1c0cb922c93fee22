package scheduling

// EffectiveWeights are the scoring weights after temp-worker adjustment.
type EffectiveWeights struct {
	LinUCB           float64 `json:"linucb"`
	Fairness         float64 `json:"fairness"`
	SkillMaintenance float64 `json:"skill_maintenance"`
	Repetition       float64 `json:"repetition"`
	SKUComplexity    float64 `json:"sku_complexity"`
}

// ApplyTempPolicy pre-scales the configured weights for a worker. Permanent
// workers pass through unchanged; temp workers get a more cautious bandit term
// and a boosted fairness term so new hires are not starved of work while the
// system still avoids betting heavily on them.
func ApplyTempPolicy(cfg Config, worker Worker) EffectiveWeights {
	w := EffectiveWeights{
		LinUCB:           cfg.LinUCBWeight,
		Fairness:         cfg.FairnessWeight,
		SkillMaintenance: cfg.SkillMaintenanceWeight,
		Repetition:       cfg.RepetitionWeight,
		SKUComplexity:    cfg.SKUComplexityWeight,
	}
	if !worker.IsTemp {
		return w
	}

	w.LinUCB *= cfg.TempWorkerScoreFactor
	w.SkillMaintenance *= cfg.TempWorkerScoreFactor
	w.Fairness *= cfg.TempWorkerFairnessBoost
	return w
}

// SkillDecayWindow returns the decay window applicable to a worker. Temp
// workers use the shorter window so their skills are refreshed more often.
func SkillDecayWindow(cfg Config, worker Worker) int {
	if worker.IsTemp && cfg.TempSkillDecayDays > 0 {
		return cfg.TempSkillDecayDays
	}
	return cfg.SkillDecayDays
}
