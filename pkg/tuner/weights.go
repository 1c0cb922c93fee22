package tuner

import (
	"encoding/json"

	"lineflow/pkg/store/mysql/model"
)

// WeightSet is the adaptable slice of a scheduling configuration, serialized
// into WeightHistory rows as JSON so an adaptation event is reconstructable.
type WeightSet struct {
	LinUCB           float64 `json:"linucb"`
	Fairness         float64 `json:"fairness"`
	SkillMaintenance float64 `json:"skill_maintenance"`
	Repetition       float64 `json:"repetition"`
	SKUComplexity    float64 `json:"sku_complexity"`
}

// WeightsFromConfig extracts the weight set from a stored configuration.
func WeightsFromConfig(cfg *model.SchedulingConfig) WeightSet {
	return WeightSet{
		LinUCB:           cfg.LinUCBWeight,
		Fairness:         cfg.FairnessWeight,
		SkillMaintenance: cfg.SkillMaintenanceWeight,
		Repetition:       cfg.RepetitionWeight,
		SKUComplexity:    cfg.SKUComplexityWeight,
	}
}

// Apply writes the weight set back onto a stored configuration.
func (w WeightSet) Apply(cfg *model.SchedulingConfig) {
	cfg.LinUCBWeight = w.LinUCB
	cfg.FairnessWeight = w.Fairness
	cfg.SkillMaintenanceWeight = w.SkillMaintenance
	cfg.RepetitionWeight = w.Repetition
	cfg.SKUComplexityWeight = w.SKUComplexity
}

// JSON serializes the weight set for the audit trail.
func (w WeightSet) JSON() string {
	b, _ := json.Marshal(w)
	return string(b)
}

// Clamp bounds a value to [min, max], reporting whether clamping occurred.
func Clamp(v, min, max float64) (float64, bool) {
	if v < min {
		return min, true
	}
	if v > max {
		return max, true
	}
	return v, false
}

// Delta is one weight nudge proposed by an adaptation cycle.
type Delta struct {
	Weight string  `json:"weight"`
	Amount float64 `json:"amount"`
}

// ComputeDeltas derives the weight nudges for one cycle. Below-target
// efficiency leans the mix toward exploitation and complexity matching; a
// below-target diversity index leans it back toward fairness and
// anti-repetition. Both may fire in the same cycle.
func ComputeDeltas(avgEfficiency, efficiencyTarget, diversityIndex, diversityTarget, learningRate float64) ([]Delta, []string) {
	var deltas []Delta
	var reasons []string

	if avgEfficiency < efficiencyTarget {
		reasons = append(reasons, "below_efficiency_target")
		deltas = append(deltas,
			Delta{Weight: "linucb", Amount: learningRate},
			Delta{Weight: "sku_complexity", Amount: learningRate},
			Delta{Weight: "fairness", Amount: -learningRate},
		)
	}
	if diversityIndex < diversityTarget {
		reasons = append(reasons, "below_diversity_target")
		deltas = append(deltas,
			Delta{Weight: "fairness", Amount: learningRate},
			Delta{Weight: "repetition", Amount: learningRate},
			Delta{Weight: "linucb", Amount: -learningRate},
		)
	}
	return deltas, reasons
}

// ApplyDeltas applies nudges to a weight set, clamping every result to
// [min, max]. The returned names list which weights were clamped.
func ApplyDeltas(w WeightSet, deltas []Delta, min, max float64) (WeightSet, []string) {
	var clamped []string
	adjust := func(name string, current float64) float64 {
		v := current
		for _, d := range deltas {
			if d.Weight == name {
				v += d.Amount
			}
		}
		out, wasClamped := Clamp(v, min, max)
		if wasClamped {
			clamped = append(clamped, name)
		}
		return out
	}

	w.LinUCB = adjust("linucb", w.LinUCB)
	w.Fairness = adjust("fairness", w.Fairness)
	w.SkillMaintenance = adjust("skill_maintenance", w.SkillMaintenance)
	w.Repetition = adjust("repetition", w.Repetition)
	w.SKUComplexity = adjust("sku_complexity", w.SKUComplexity)
	return w, clamped
}
