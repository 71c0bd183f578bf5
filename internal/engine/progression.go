package engine

import (
	"math"

	"forgefit/internal/models"
)

// Estimate1RM estimates a one-rep max from a weight/reps pair (Epley).
func Estimate1RM(weight float64, reps int) float64 {
	if reps == 0 || weight <= 0 {
		return 0
	}
	return weight * (1 + float64(reps)/30)
}

// WeightForReps inverts Epley: the weight at which the given e1RM yields
// the target rep count.
func WeightForReps(e1rm float64, reps int) float64 {
	if e1rm <= 0 || reps <= 0 {
		return 0
	}
	return e1rm / (1 + float64(reps)/30)
}

// WeightStep returns the loadable increment for the exercise's equipment.
func (r *Rules) WeightStep(ex models.Exercise) float64 {
	return r.WeightSteps[ex.PrimaryEquipmentClass()]
}

// RoundToStep snaps a weight to the nearest multiple of step. A zero step
// (bodyweight, bands) leaves the weight untouched. Never negative.
func RoundToStep(weight, step float64) float64 {
	if weight <= 0 {
		return 0
	}
	if step <= 0 {
		return weight
	}
	return math.Round(weight/step) * step
}

// ProgressionDecision is the outcome of comparing the previous session's
// performance against its targets.
type ProgressionDecision string

const (
	ProgressionIncrease ProgressionDecision = "increase"
	ProgressionHold     ProgressionDecision = "hold"
	ProgressionDeload   ProgressionDecision = "deload"
)

// EvaluateProgression inspects the previous session's sets for one
// exercise. Every set reaching the target reps with all reported RPEs at 8
// or below earns an increase; any set short of target by 20% or more forces
// a deload; anything between holds.
func EvaluateProgression(lastSets []models.SetSample, targetReps int) ProgressionDecision {
	if len(lastSets) == 0 || targetReps <= 0 {
		return ProgressionHold
	}
	allHit := true
	for _, set := range lastSets {
		if float64(set.Reps) <= float64(targetReps)*0.8 {
			return ProgressionDeload
		}
		if set.Reps < targetReps || (set.RPE > 0 && set.RPE > 8) {
			allHit = false
		}
	}
	if allHit {
		return ProgressionIncrease
	}
	return ProgressionHold
}

// CalculateNextWeight turns a progression decision into the next working
// weight, snapped to the equipment step.
func (r *Rules) CalculateNextWeight(ex models.Exercise, lastWeight float64, decision ProgressionDecision) float64 {
	step := r.WeightStep(ex)
	switch decision {
	case ProgressionIncrease:
		return RoundToStep(lastWeight+step, step)
	case ProgressionDeload:
		return RoundToStep(lastWeight*0.9, step)
	default:
		return RoundToStep(lastWeight, step)
	}
}

// DefaultLoad looks up the conservative starting weight for an exercise a
// user has no history with. Bodyweight exercises always load 0.
func (r *Rules) DefaultLoad(ex models.Exercise, experience models.Difficulty) float64 {
	if ex.IsBodyweight() {
		return 0
	}
	loads, ok := r.DefaultLoads[experience]
	if !ok {
		loads = r.DefaultLoads[models.DifficultyBeginner]
	}
	return loads[ex.PrimaryEquipmentClass()]
}
