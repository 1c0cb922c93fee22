package tuner

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestProperty_ClampAlwaysInRange(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("clamped value always lands in [min, max]", prop.ForAll(
		func(v float64) bool {
			out, _ := Clamp(v, 0.01, 0.95)
			return out >= 0.01 && out <= 0.95
		},
		gen.Float64Range(-100, 100),
	))

	properties.Property("in-range values pass through unchanged", prop.ForAll(
		func(v float64) bool {
			out, clamped := Clamp(v, 0.01, 0.95)
			return out == v && !clamped
		},
		gen.Float64Range(0.01, 0.95),
	))

	properties.TestingRun(t)
}

func TestProperty_ApplyDeltasPreservesRange(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("every adapted weight stays within the valid range", prop.ForAll(
		func(linucb, fairness, amount float64) bool {
			w := baseWeights()
			w.LinUCB = linucb
			w.Fairness = fairness
			out, _ := ApplyDeltas(w, []Delta{
				{Weight: "linucb", Amount: amount},
				{Weight: "fairness", Amount: -amount},
			}, 0.01, 0.95)
			for _, v := range []float64{out.LinUCB, out.Fairness, out.SkillMaintenance, out.Repetition, out.SKUComplexity} {
				if v < 0.01 || v > 0.95 {
					return false
				}
			}
			return true
		},
		gen.Float64Range(0.01, 0.95),
		gen.Float64Range(0.01, 0.95),
		gen.Float64Range(-1, 1),
	))

	properties.TestingRun(t)
}

func TestProperty_DiversityIndexBounded(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("diversity index lands in [0, 1] for any count vector", prop.ForAll(
		func(counts []int) bool {
			d := DiversityIndex(counts)
			return d >= 0 && d <= 1
		},
		gen.SliceOf(gen.IntRange(0, 50)),
	))

	properties.TestingRun(t)
}
