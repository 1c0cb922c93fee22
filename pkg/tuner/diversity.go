package tuner

import "math"

// DiversityIndex measures how evenly recent work is spread across a crew as
// the normalized Shannon entropy of per-worker assignment counts, in [0, 1].
// 1 means perfectly even distribution, 0 means one worker holds all work.
// Crews of one worker (or no work at all) have no spread to measure and
// return 0.
func DiversityIndex(assignmentsPerWorker []int) float64 {
	if len(assignmentsPerWorker) <= 1 {
		return 0
	}

	var total int
	for _, c := range assignmentsPerWorker {
		total += c
	}
	if total == 0 {
		return 0
	}

	var entropy float64
	for _, c := range assignmentsPerWorker {
		if c == 0 {
			continue
		}
		p := float64(c) / float64(total)
		entropy -= p * math.Log(p)
	}

	return entropy / math.Log(float64(len(assignmentsPerWorker)))
}
