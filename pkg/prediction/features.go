package prediction

import (
	"time"

	"lineflow/pkg/scheduling"
)

// Feature names shared between trained model artifacts, the fallback linear
// weights and the training corpus. Unknown names in an artifact are ignored;
// missing features evaluate to a neutral 0.
const (
	FeatureHourOfDay     = "hour_of_day"
	FeatureDayOfWeek     = "day_of_week"
	FeatureIsOvertime    = "is_overtime"
	FeatureWorkerCount   = "worker_count"
	FeatureAvgExperience = "avg_experience"
	FeatureAvgSkill      = "avg_skill_level"
	FeatureTempRatio     = "temp_worker_ratio"
	FeatureSKUComplexity = "sku_complexity"
	FeatureProductType   = "product_type"
	FeatureEquipmentAge  = "equipment_age_years"
	FeatureEquipmentUtil = "equipment_utilization"
)

// overtimeStartHour marks the shift boundary after which work counts as overtime.
const overtimeStartHour = 18

// Vector is a named feature vector. Lookups of absent features return 0.
type Vector map[string]float64

// Get returns the feature value, neutral 0 when absent.
func (v Vector) Get(name string) float64 {
	return v[name]
}

// BuildVector assembles the prediction feature vector for one scheduled task
// and its crew. Incomplete crews produce neutral defaults rather than errors.
func BuildVector(task scheduling.Task, crew []scheduling.Worker) Vector {
	v := Vector{
		FeatureHourOfDay:     float64(task.Start.Hour()),
		FeatureDayOfWeek:     float64(task.Start.Weekday()),
		FeatureSKUComplexity: task.SKUComplexity,
		FeatureEquipmentAge:  task.EquipmentAgeYears,
		FeatureEquipmentUtil: task.EquipmentUtilization,
	}
	if task.Start.Hour() >= overtimeStartHour {
		v[FeatureIsOvertime] = 1
	}

	if len(crew) == 0 {
		return v
	}

	var expSum, skillSum float64
	var tempCount int
	for _, w := range crew {
		if !w.HiredAt.IsZero() {
			expSum += task.Start.Sub(w.HiredAt).Hours() / (24 * 365)
		}
		skillSum += w.SkillLevel
		if w.IsTemp {
			tempCount++
		}
	}

	n := float64(len(crew))
	v[FeatureWorkerCount] = n
	v[FeatureAvgExperience] = expSum / n
	v[FeatureAvgSkill] = skillSum / n
	v[FeatureTempRatio] = float64(tempCount) / n
	return v
}

// IsOvertime reports whether a start time falls in the overtime band,
// mirroring the flag BuildVector sets.
func IsOvertime(start time.Time) bool {
	return start.Hour() >= overtimeStartHour
}
