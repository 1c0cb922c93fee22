package scheduling

// FeatureDim is the length of the context vector fed to the bandit.
const FeatureDim = 8

// Features builds the numeric context vector for a (worker, task, time) triple.
// All components are scaled to roughly [0, 1]; anything missing from the
// snapshot contributes a neutral 0 instead of failing the build.
func Features(worker Worker, task Task) []float64 {
	x := make([]float64, FeatureDim)

	x[0] = 1 // bias
	x[1] = float64(task.Start.Hour()) / 24
	x[2] = float64(task.Start.Weekday()) / 7
	x[3] = clamp01(worker.SkillLevel / 5)
	x[4] = clamp01(worker.ReliabilityScore)
	if !worker.HiredAt.IsZero() {
		tenureYears := task.Start.Sub(worker.HiredAt).Hours() / (24 * 365)
		x[5] = clamp01(tenureYears / 10)
	}
	x[6] = clamp01(task.SKUComplexity / 5)
	x[7] = clamp01(task.EquipmentUtilization)

	return x
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
