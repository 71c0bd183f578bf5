package engine

import (
	"fmt"
	"math"
	"strings"
	"time"

	"forgefit/internal/catalog"
	"forgefit/internal/models"
)

// BuildInput collects everything one session generation needs. Now is
// injected so identical inputs always produce identical plans.
type BuildInput struct {
	TemplateID    string
	GroupingStyle string
	Label         string
	Goals         models.GoalWeights
	Constraints   models.TrainingConstraints
	User          models.UserState
	Now           time.Time
}

// BuildSession composes a single session plan: exercise selection per
// required intent, goal-blended prescriptions, loading suggestions and a
// decision trace per pick. An unknown template id is a programming error
// and fails immediately; an intent with no viable candidate is skipped.
func (r *Rules) BuildSession(cat *catalog.Catalog, in BuildInput) (models.SessionPlan, error) {
	tmpl, ok := r.Templates[in.TemplateID]
	if !ok {
		return models.SessionPlan{}, fmt.Errorf("unknown session template %q", in.TemplateID)
	}

	goals := in.Goals.Normalized()
	selected := make(map[string]bool)
	muscleUse := make(map[string]int)
	var exercises []models.PlannedExercise

	addPick := func(pick Candidate, alternatives []Candidate, intent models.Intent) {
		tier := r.TierFor(pick.Exercise)
		presc := r.blend(goals, tier)
		weight, progressionNote := r.suggestLoad(pick.Exercise, in.User, presc.targetReps())

		ex := models.PlannedExercise{
			Exercise: pick.Exercise,
			Order:    len(exercises) + 1,
			Tier:     tier,
			Intents:  []models.Intent{intent},
			RepRange: models.RepRange{Min: presc.RepMin, Max: presc.RepMax},
			Sets:     buildSets(presc, weight),
			Trace:    r.buildTrace(pick, alternatives, intent, in.Constraints, progressionNote),
		}
		exercises = append(exercises, ex)
		selected[pick.Exercise.ID] = true
		for _, muscle := range pick.Exercise.PrimaryMuscles {
			muscleUse[muscle]++
		}
	}

	// Required intents, user priorities first (stable otherwise).
	for _, intent := range reorderByPriority(tmpl.Required, in.Constraints.PriorityIntents) {
		candidates := r.ChooseExercise(cat.All(), ScoreInput{
			Intent:      intent,
			Constraints: in.Constraints,
			Experience:  in.User.Experience,
			Selected:    selected,
		})
		if len(candidates) == 0 {
			continue // non-fatal, the plan just ends up shorter
		}
		addPick(candidates[0], candidates[1:], intent)
	}

	// Optional intents round-robin until the experience cap, preferring
	// candidates whose primary muscles are not already worked twice.
	maxExercises := r.MaxExercises[in.User.Experience]
	if maxExercises == 0 {
		maxExercises = 4
	}
	exhausted := make(map[models.Intent]bool)
	for len(exercises) < maxExercises && len(exhausted) < len(tmpl.Optional) {
		progressed := false
		for _, intent := range tmpl.Optional {
			if len(exercises) >= maxExercises || exhausted[intent] {
				continue
			}
			candidates := r.ChooseExercise(cat.All(), ScoreInput{
				Intent:      intent,
				Constraints: in.Constraints,
				Experience:  in.User.Experience,
				Selected:    selected,
			})
			candidates = dropSelected(candidates, selected)
			if len(candidates) == 0 {
				exhausted[intent] = true
				continue
			}
			pick := preferFreshMuscles(candidates, muscleUse)
			addPick(pick, alternativesTo(candidates, pick), intent)
			progressed = true
		}
		if !progressed {
			break
		}
	}

	plan := models.SessionPlan{
		TemplateID:    in.TemplateID,
		GroupingStyle: in.GroupingStyle,
		Goals:         in.Goals,
		Constraints:   in.Constraints,
		Experience:    in.User.Experience,
		Exercises:     exercises,
		CreatedAt:     in.Now,
		Label:         in.Label,
	}
	plan.EstimatedMinutes = r.estimateMinutes(exercises)
	return plan, nil
}

// blendedPrescription is a goal-weighted prescription before sets are laid
// out.
type blendedPrescription struct {
	RepMin      int
	RepMax      int
	Sets        int
	RestSeconds int
}

// targetReps is the midpoint of the blended range, rounded half up.
func (p blendedPrescription) targetReps() int {
	return (p.RepMin + p.RepMax + 1) / 2
}

// blend normalizes active goal weights and takes the weighted average of
// each goal's rule-table row for the tier. Rep endpoints round
// independently, sets round to a whole number of at least 1, rest rounds
// to the nearest 5 seconds.
func (r *Rules) blend(goals models.GoalWeights, tier models.PriorityTier) blendedPrescription {
	// Fixed iteration order: float accumulation must not depend on map
	// order or plans stop being reproducible.
	var repMin, repMax, sets, rest float64
	for _, goal := range []models.Goal{models.GoalBuildStrength, models.GoalBuildMuscle, models.GoalImproveEndurance, models.GoalGeneralFitness} {
		weight, active := goals[goal]
		if !active {
			continue
		}
		row, ok := r.Prescriptions[goal][tier]
		if !ok {
			row = r.Prescriptions[models.GoalGeneralFitness][tier]
		}
		repMin += weight * float64(row.RepMin)
		repMax += weight * float64(row.RepMax)
		sets += weight * float64(row.Sets)
		rest += weight * float64(row.RestSeconds)
	}
	out := blendedPrescription{
		RepMin:      int(math.Round(repMin)),
		RepMax:      int(math.Round(repMax)),
		Sets:        int(math.Round(sets)),
		RestSeconds: int(math.Round(rest/5)) * 5,
	}
	if out.Sets < 1 {
		out.Sets = 1
	}
	if out.RepMin < 1 {
		out.RepMin = 1
	}
	if out.RepMax < out.RepMin {
		out.RepMax = out.RepMin
	}
	return out
}

func buildSets(presc blendedPrescription, weight float64) []models.PlannedSet {
	sets := make([]models.PlannedSet, presc.Sets)
	for i := range sets {
		sets[i] = models.PlannedSet{
			Index:       i + 1,
			TargetReps:  presc.targetReps(),
			Weight:      weight,
			RestSeconds: presc.RestSeconds,
		}
	}
	return sets
}

// suggestLoad picks a working weight by precedence: recent-performance
// e1RM, supplied 1RM, progression on the last session's best set, then the
// conservative defaults table. Bodyweight exercises always load 0.
func (r *Rules) suggestLoad(ex models.Exercise, user models.UserState, targetReps int) (float64, string) {
	if ex.IsBodyweight() {
		return 0, ""
	}
	step := r.WeightStep(ex)

	if sample, ok := user.RecentBest[ex.ID]; ok && sample.Weight > 0 && sample.Reps > 0 {
		e1rm := Estimate1RM(sample.Weight, sample.Reps)
		w := RoundToStep(WeightForReps(e1rm, targetReps), step)
		return w, fmt.Sprintf("Loaded from recent best %.1f×%d (e1RM %.1f).", sample.Weight, sample.Reps, e1rm)
	}
	if orm := user.OneRMs[ex.ID]; orm > 0 {
		w := RoundToStep(WeightForReps(orm, targetReps), step)
		return w, fmt.Sprintf("Loaded from supplied 1RM %.1f.", orm)
	}
	if last := user.LastSessionSets[ex.ID]; len(last) > 0 {
		best := last[0]
		for _, s := range last[1:] {
			if s.Weight > best.Weight {
				best = s
			}
		}
		decision := EvaluateProgression(last, targetReps)
		w := r.CalculateNextWeight(ex, best.Weight, decision)
		switch decision {
		case ProgressionIncrease:
			return w, fmt.Sprintf("All target reps hit last session; progressing %.1f → %.1f.", best.Weight, w)
		case ProgressionDeload:
			return w, fmt.Sprintf("Last session fell well short of targets; deloading %.1f → %.1f.", best.Weight, w)
		default:
			return w, fmt.Sprintf("Holding %.1f from last session.", w)
		}
	}
	return r.DefaultLoad(ex, user.Experience), ""
}

func (r *Rules) buildTrace(pick Candidate, alternatives []Candidate, intent models.Intent, constraints models.TrainingConstraints, progressionNote string) models.DecisionTrace {
	applied := []string{
		fmt.Sprintf("movement %s required", intent),
		fmt.Sprintf("equipment available: %s", strings.Join(constraints.AvailableEquipment, ", ")),
	}
	if len(constraints.Injuries) > 0 {
		applied = append(applied, fmt.Sprintf("no contraindication for: %s", strings.Join(constraints.Injuries, ", ")))
	}
	if len(constraints.ForbiddenIntents) > 0 {
		forbidden := make([]string, len(constraints.ForbiddenIntents))
		for i, f := range constraints.ForbiddenIntents {
			forbidden[i] = string(f)
		}
		applied = append(applied, fmt.Sprintf("excluded movements: %s", strings.Join(forbidden, ", ")))
	}

	trace := models.DecisionTrace{
		AppliedConstraints: applied,
		Rationale:          fmt.Sprintf("Top-scoring candidate for %s (score %d).", intent, pick.Score),
		Confidence:         confidence(pick, alternatives),
		ProgressionNote:    progressionNote,
	}
	for i, alt := range alternatives {
		if i == 3 {
			break
		}
		trace.Alternatives = append(trace.Alternatives, models.Alternative{
			ExerciseID: alt.Exercise.ID,
			Score:      alt.Score,
			Reason:     fmt.Sprintf("scored %d, %d behind", alt.Score, pick.Score-alt.Score),
		})
	}
	return trace
}

// confidence grows with the score gap to the runner-up; a sole viable
// candidate is near-certain.
func confidence(pick Candidate, alternatives []Candidate) float64 {
	if len(alternatives) == 0 {
		return 0.95
	}
	gap := float64(pick.Score - alternatives[0].Score)
	conf := 0.6 + gap/200
	if conf > 0.95 {
		conf = 0.95
	}
	return conf
}

func reorderByPriority(required, priority []models.Intent) []models.Intent {
	if len(priority) == 0 {
		return required
	}
	isPriority := make(map[models.Intent]bool, len(priority))
	for _, p := range priority {
		isPriority[p] = true
	}
	out := make([]models.Intent, 0, len(required))
	for _, in := range required {
		if isPriority[in] {
			out = append(out, in)
		}
	}
	for _, in := range required {
		if !isPriority[in] {
			out = append(out, in)
		}
	}
	return out
}

func dropSelected(candidates []Candidate, selected map[string]bool) []Candidate {
	out := candidates[:0:0]
	for _, c := range candidates {
		if !selected[c.Exercise.ID] {
			out = append(out, c)
		}
	}
	return out
}

// preferFreshMuscles picks the first candidate none of whose primary
// muscles has been used twice already, falling back to the best score.
func preferFreshMuscles(candidates []Candidate, muscleUse map[string]int) Candidate {
	for _, c := range candidates {
		fresh := true
		for _, muscle := range c.Exercise.PrimaryMuscles {
			if muscleUse[muscle] >= 2 {
				fresh = false
				break
			}
		}
		if fresh {
			return c
		}
	}
	return candidates[0]
}

func alternativesTo(candidates []Candidate, pick Candidate) []Candidate {
	out := make([]Candidate, 0, len(candidates)-1)
	for _, c := range candidates {
		if c.Exercise.ID != pick.Exercise.ID {
			out = append(out, c)
		}
	}
	return out
}

func (r *Rules) estimateMinutes(exercises []models.PlannedExercise) int {
	minutes := r.WarmupMinutes + r.CooldownMinutes
	for _, ex := range exercises {
		minutes += r.TierMinutes[ex.Tier]
	}
	return minutes
}
