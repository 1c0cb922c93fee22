package scheduling

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestProperty_FairnessBonusMonotone(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("more recent assignments never raises the fairness bonus", prop.ForAll(
		func(count int) bool {
			return fairnessBonus(count+1) < fairnessBonus(count)
		},
		gen.IntRange(0, 1000),
	))

	properties.Property("fairness bonus stays in (0, 1]", prop.ForAll(
		func(count int) bool {
			b := fairnessBonus(count)
			return b > 0 && b <= 1
		},
		gen.IntRange(0, 1000),
	))

	properties.TestingRun(t)
}

func TestProperty_FeaturesAlwaysBounded(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("every feature component lands in [0, 1]", prop.ForAll(
		func(skill, reliability, complexity, utilization float64, hourOffset int, tenureDays int) bool {
			start := dayAt(2025, 6, 2).Add(time.Duration(hourOffset) * time.Hour)
			w := Worker{
				ID:               "w",
				SkillLevel:       skill,
				ReliabilityScore: reliability,
				HiredAt:          start.AddDate(0, 0, -tenureDays),
			}
			task := Task{
				LineID:               "L",
				BatchID:              "B",
				SKUComplexity:        complexity,
				EquipmentUtilization: utilization,
				Start:                start,
			}
			for _, v := range Features(w, task) {
				if v < 0 || v > 1 {
					return false
				}
			}
			return true
		},
		gen.Float64Range(-2, 10),
		gen.Float64Range(-1, 2),
		gen.Float64Range(-2, 10),
		gen.Float64Range(-1, 2),
		gen.IntRange(0, 23),
		gen.IntRange(0, 36500),
	))

	properties.TestingRun(t)
}

func TestProperty_TempPolicyNeverChangesPenaltyWeights(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("temp adjustment touches only bandit, skill and fairness weights", prop.ForAll(
		func(scoreFactor, fairnessBoost float64) bool {
			cfg := DefaultConfig()
			cfg.TempWorkerScoreFactor = scoreFactor
			cfg.TempWorkerFairnessBoost = fairnessBoost
			w := ApplyTempPolicy(cfg, Worker{ID: "t", IsTemp: true})
			return w.Repetition == cfg.RepetitionWeight && w.SKUComplexity == cfg.SKUComplexityWeight
		},
		gen.Float64Range(0, 1),
		gen.Float64Range(1, 3),
	))

	properties.TestingRun(t)
}
