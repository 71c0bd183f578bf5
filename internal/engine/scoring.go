package engine

import (
	"sort"

	"forgefit/internal/models"
)

// Score components. Exclusions are hard (candidate dropped), bonuses and
// penalties are additive on top of a zero base.
const (
	scoreDifficultyExact   = 40
	scoreDifficultyClose   = 20
	scoreDifficultyFar     = -20
	scoreEquipmentBias     = 15
	scoreCompound          = 25
	scorePriorityIntent    = 10
	scoreDuplicatePenalty  = -50
	scoreDislikedPenalty   = -30
)

// HasEquipment reports whether the constraints satisfy the exercise's
// equipment declaration. An explicit all-required list needs every item; an
// explicit any-of list needs at least one; both must independently pass
// when both are present. Without explicit lists the legacy equipment list
// is treated as any-of, and an empty list is always satisfied.
func HasEquipment(ex models.Exercise, constraints models.TrainingConstraints) bool {
	explicit := len(ex.EquipmentAll) > 0 || len(ex.EquipmentAny) > 0

	if len(ex.EquipmentAll) > 0 {
		for _, item := range ex.EquipmentAll {
			if !constraints.HasEquipmentItem(item) {
				return false
			}
		}
	}
	if len(ex.EquipmentAny) > 0 {
		if !anyAvailable(ex.EquipmentAny, constraints) {
			return false
		}
	}
	if explicit {
		return true
	}
	if len(ex.Equipment) == 0 {
		return true
	}
	return anyAvailable(ex.Equipment, constraints)
}

func anyAvailable(items []string, constraints models.TrainingConstraints) bool {
	for _, item := range items {
		if constraints.HasEquipmentItem(item) {
			return true
		}
	}
	return false
}

// ScoreInput carries everything one scoring pass needs besides the
// exercise itself.
type ScoreInput struct {
	Intent      models.Intent
	Constraints models.TrainingConstraints
	Experience  models.Difficulty
	// Selected holds exercise ids already picked for this session.
	Selected map[string]bool
}

// ScoreExercise rates one candidate for a required intent. ok is false when
// a hard exclusion applies; reason then names it.
func (r *Rules) ScoreExercise(ex models.Exercise, in ScoreInput) (score int, ok bool, reason string) {
	if !ex.HasIntent(in.Intent) {
		return 0, false, "does not train required movement"
	}
	if !HasEquipment(ex, in.Constraints) {
		return 0, false, "required equipment unavailable"
	}
	for _, tag := range ex.Contraindications {
		for _, injury := range in.Constraints.Injuries {
			if tag == injury {
				return 0, false, "contraindicated for reported injury: " + injury
			}
		}
	}
	for _, intent := range ex.Intents {
		if in.Constraints.IntentForbidden(intent) {
			return 0, false, "trains forbidden movement: " + string(intent)
		}
	}

	switch diff := ex.Difficulty.Rank() - in.Experience.Rank(); {
	case diff == 0:
		score += scoreDifficultyExact
	case diff == 1 || diff == -1:
		score += scoreDifficultyClose
	default:
		score += scoreDifficultyFar
	}

	if matchesBias(ex, in.Constraints.EquipmentBias) {
		score += scoreEquipmentBias
	}
	if r.IsCompound(ex.Intents) {
		score += scoreCompound
	}
	for _, p := range in.Constraints.PriorityIntents {
		if ex.HasIntent(p) {
			score += scorePriorityIntent
			break
		}
	}
	if in.Selected[ex.ID] {
		score += scoreDuplicatePenalty
	}
	for _, disliked := range in.Constraints.DislikedExercises {
		if disliked == ex.ID {
			score += scoreDislikedPenalty
			break
		}
	}
	return score, true, ""
}

func matchesBias(ex models.Exercise, bias models.EquipmentBias) bool {
	class := ex.PrimaryEquipmentClass()
	switch bias {
	case models.BiasMachines:
		return class == models.EquipmentMachine || class == models.EquipmentCable
	case models.BiasFreeWeights:
		return class == models.EquipmentBarbell || class == models.EquipmentDumbbells ||
			class == models.EquipmentKettlebell
	default:
		return false
	}
}

// Candidate is a scored, still-viable exercise.
type Candidate struct {
	Exercise models.Exercise
	Score    int
}

// ChooseExercise scores every pool exercise against the input and returns
// the positive-score candidates, best first. The sort is stable so catalog
// order breaks ties, which keeps generation deterministic.
func (r *Rules) ChooseExercise(pool []models.Exercise, in ScoreInput) []Candidate {
	var candidates []Candidate
	for _, ex := range pool {
		score, ok, _ := r.ScoreExercise(ex, in)
		if ok && score > 0 {
			candidates = append(candidates, Candidate{Exercise: ex, Score: score})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	return candidates
}
