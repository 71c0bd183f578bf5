package engine

import (
	"fmt"
	"time"

	"forgefit/internal/models"
)

// Adaptation trace entries that come from session-level triggers rather
// than per-set autoregulation rules.
const (
	RuleExerciseSkipped = "EXERCISE_SKIPPED"
	RuleExerciseSwapped = "EXERCISE_SWAPPED"
	RuleTimePressure    = "TIME_PRESSURE_TRIM"
	RuleSessionFatigue  = "SESSION_FATIGUE_TRIM"
)

// AdaptReason is a cross-cutting session adaptation trigger.
type AdaptReason string

const (
	AdaptTimePressure AdaptReason = "time_pressure"
	AdaptFatigue      AdaptReason = "fatigue"
)

// InitializeRuntime seeds runtime state from a plan. itemIDs maps every
// planned exercise id to its persistence-layer item identifier; the
// runtime never mints those itself.
func InitializeRuntime(plan models.SessionPlan, sessionID models.ItemID, runtimeID models.LocalID, itemIDs map[string]models.ItemID, now time.Time) (models.SessionRuntimeState, error) {
	state := models.SessionRuntimeState{
		RuntimeID:  runtimeID,
		SessionID:  sessionID,
		TemplateID: plan.TemplateID,
		Mode:       "guided",
		StartedAt:  now,
		Exercises:  make(map[string]models.ExerciseRuntimeState, len(plan.Exercises)),
		Status:     models.SessionActive,
		Plan:       plan,
	}
	for _, planned := range plan.Exercises {
		itemID, ok := itemIDs[planned.Exercise.ID]
		if !ok || itemID == "" {
			return models.SessionRuntimeState{}, fmt.Errorf("no item id for exercise %q", planned.Exercise.ID)
		}
		state.Order = append(state.Order, planned.Exercise.ID)
		state.Exercises[planned.Exercise.ID] = models.ExerciseRuntimeState{
			ExerciseID:   planned.Exercise.ID,
			ItemID:       itemID,
			Status:       models.ExercisePending,
			Planned:      planned,
			NextSetIndex: 1,
		}
	}
	return state, nil
}

// ResumeRuntime reactivates a paused or freshly-loaded state.
func ResumeRuntime(state models.SessionRuntimeState) (models.SessionRuntimeState, error) {
	if state.Status == models.SessionCompleted {
		return state, fmt.Errorf("session %s is already completed", state.SessionID)
	}
	out := cloneState(state)
	out.Status = models.SessionActive
	return out, nil
}

// SetInput is one performed set as reported by the user.
type SetInput struct {
	SetIndex int
	Weight   float64
	Reps     int
	RPE      *float64
}

// LogSet appends a set log entry, consumes any pending adjustment for that
// set, and consults autoregulation for the next set when an RPE was
// reported and sets remain. Returns the new state and the autoregulation
// outcome.
func LogSet(state models.SessionRuntimeState, exerciseID string, in SetInput, now time.Time) (models.SessionRuntimeState, AutoregulationOutcome, error) {
	ex, ok := state.Exercises[exerciseID]
	if !ok {
		return state, AutoregulationOutcome{}, fmt.Errorf("exercise %q is not part of this session", exerciseID)
	}
	if ex.Status == models.ExerciseSkipped {
		return state, AutoregulationOutcome{}, fmt.Errorf("exercise %q was skipped", exerciseID)
	}

	out := cloneState(state)
	ex = out.Exercises[exerciseID]

	var planned models.PlannedSet
	if in.SetIndex >= 1 && in.SetIndex <= len(ex.Planned.Sets) {
		planned = ex.Planned.Sets[in.SetIndex-1]
	}
	var applied *models.AutoregulationAdjustment
	if adj, pending := ex.PendingAdjustments[in.SetIndex]; pending {
		applied = &adj
		delete(ex.PendingAdjustments, in.SetIndex)
	}

	entry := models.SetLogEntry{
		ExerciseID:        exerciseID,
		ItemID:            ex.ItemID,
		SetIndex:          in.SetIndex,
		Weight:            in.Weight,
		Reps:              in.Reps,
		RPE:               in.RPE,
		PlannedWeight:     planned.Weight,
		PlannedReps:       planned.TargetReps,
		AppliedAdjustment: applied,
		LoggedAt:          now,
	}

	priorSets := setsFor(out.SetLogs, exerciseID)
	out.SetLogs = append(out.SetLogs, entry)

	ex.CompletedSets++
	ex.NextSetIndex = in.SetIndex + 1
	if ex.CompletedSets >= len(ex.Planned.Sets) {
		ex.Status = models.ExerciseCompleted
	} else {
		ex.Status = models.ExerciseInProgress
	}

	var outcome AutoregulationOutcome
	setsRemain := ex.CompletedSets < len(ex.Planned.Sets)
	if setsRemain && in.RPE != nil {
		outcome = ApplyAutoregulation(AutoregulationInput{
			SetIndex:   in.SetIndex,
			TargetReps: planned.TargetReps,
			Weight:     in.Weight,
			Reps:       in.Reps,
			RPE:        in.RPE,
			PriorSets:  priorSets,
			Bodyweight: ex.Planned.Exercise.IsBodyweight(),
		})
		if outcome.Adjustment != nil {
			if ex.PendingAdjustments == nil {
				ex.PendingAdjustments = make(map[int]models.AutoregulationAdjustment)
			}
			ex.PendingAdjustments[in.SetIndex+1] = *outcome.Adjustment
			out.Adaptations = append(out.Adaptations, models.AdaptationEvent{
				ExerciseID: exerciseID,
				SetIndex:   in.SetIndex + 1,
				Adjustment: *outcome.Adjustment,
				At:         now,
			})
			if outcome.Adjustment.SkipRemaining {
				ex.Status = models.ExerciseCompleted
			}
		}
	} else {
		outcome = noop(RuleFirstSetBaseline, "No further sets to adjust.")
	}

	out.Exercises[exerciseID] = ex
	return out, outcome, nil
}

// AdvanceExercise moves the cursor to the next exercise, marking the
// outgoing one completed if it logged anything.
func AdvanceExercise(state models.SessionRuntimeState) models.SessionRuntimeState {
	out := cloneState(state)
	if current, ok := out.CurrentExercise(); ok {
		if current.CompletedSets > 0 && current.Status != models.ExerciseSkipped {
			current.Status = models.ExerciseCompleted
			out.Exercises[current.ExerciseID] = current
		}
	}
	if out.Cursor < len(out.Order) {
		out.Cursor++
	}
	return out
}

// SkipExercise marks an exercise skipped (terminal) with a reason and
// records a trace entry. Skipping the current exercise advances the
// cursor.
func SkipExercise(state models.SessionRuntimeState, exerciseID, reason string, now time.Time) (models.SessionRuntimeState, error) {
	ex, ok := state.Exercises[exerciseID]
	if !ok {
		return state, fmt.Errorf("exercise %q is not part of this session", exerciseID)
	}
	if ex.Status == models.ExerciseCompleted {
		return state, fmt.Errorf("exercise %q is already completed", exerciseID)
	}

	out := cloneState(state)
	ex = out.Exercises[exerciseID]
	ex.Status = models.ExerciseSkipped
	ex.SkipReason = reason
	out.Exercises[exerciseID] = ex
	out.Adaptations = append(out.Adaptations, models.AdaptationEvent{
		ExerciseID: exerciseID,
		Adjustment: models.AutoregulationAdjustment{
			SkipRemaining: true,
			RuleID:        RuleExerciseSkipped,
			Message:       reason,
			Confidence:    1,
		},
		At: now,
	})
	if current, hasCurrent := out.CurrentExercise(); hasCurrent && current.ExerciseID == exerciseID {
		out.Cursor++
	}
	return out, nil
}

// SwapExercise replaces a not-yet-started exercise with another one in the
// same slot. The outgoing exercise stays in the map as skipped, the
// replacement takes its position, prescription (sets, reps, rest) and
// order. newItemID is the replacement's persistence identifier, minted by
// the caller.
func (r *Rules) SwapExercise(state models.SessionRuntimeState, exerciseID string, replacement models.Exercise, newItemID models.ItemID, now time.Time) (models.SessionRuntimeState, error) {
	ex, ok := state.Exercises[exerciseID]
	if !ok {
		return state, fmt.Errorf("exercise %q is not part of this session", exerciseID)
	}
	if ex.CompletedSets > 0 {
		return state, fmt.Errorf("exercise %q already has logged sets", exerciseID)
	}
	if terminal(ex.Status) {
		return state, fmt.Errorf("exercise %q is already %s", exerciseID, ex.Status)
	}
	if _, exists := state.Exercises[replacement.ID]; exists {
		return state, fmt.Errorf("exercise %q is already part of this session", replacement.ID)
	}
	if newItemID == "" {
		return state, fmt.Errorf("no item id for replacement %q", replacement.ID)
	}

	out := cloneState(state)
	ex = out.Exercises[exerciseID]
	ex.Status = models.ExerciseSkipped
	ex.SkipReason = "swapped for " + replacement.ID
	out.Exercises[exerciseID] = ex

	planned := ex.Planned
	planned.Exercise = replacement
	planned.Sets = append([]models.PlannedSet(nil), ex.Planned.Sets...)
	weight := r.DefaultLoad(replacement, out.Plan.Experience)
	for i := range planned.Sets {
		planned.Sets[i].Weight = weight
	}
	planned.Trace = models.DecisionTrace{
		AppliedConstraints: []string{"swap"},
		Rationale:          fmt.Sprintf("Swapped in for %s at the user's request.", exerciseID),
		Confidence:         1,
	}

	out.Exercises[replacement.ID] = models.ExerciseRuntimeState{
		ExerciseID:   replacement.ID,
		ItemID:       newItemID,
		Status:       models.ExercisePending,
		Planned:      planned,
		NextSetIndex: 1,
	}
	for i, id := range out.Order {
		if id == exerciseID {
			out.Order[i] = replacement.ID
			break
		}
	}
	out.Adaptations = append(out.Adaptations, models.AdaptationEvent{
		ExerciseID: exerciseID,
		Adjustment: models.AutoregulationAdjustment{
			RuleID:     RuleExerciseSwapped,
			Message:    fmt.Sprintf("Replaced by %s.", replacement.ID),
			Confidence: 1,
		},
		At: now,
	})
	return out, nil
}

// GetAdjustedSetParams applies any pending adjustment to a planned set:
// multiplier first, then the additive delta, rounded to 0.5 and clamped at
// zero; the rep delta never pushes the target below one rep.
func GetAdjustedSetParams(state models.SessionRuntimeState, exerciseID string, setIndex int) (weight float64, reps int, adjusted bool, err error) {
	ex, ok := state.Exercises[exerciseID]
	if !ok {
		return 0, 0, false, fmt.Errorf("exercise %q is not part of this session", exerciseID)
	}
	if setIndex < 1 || setIndex > len(ex.Planned.Sets) {
		return 0, 0, false, fmt.Errorf("set index %d out of range for %q", setIndex, exerciseID)
	}
	planned := ex.Planned.Sets[setIndex-1]
	weight, reps = planned.Weight, planned.TargetReps

	adj, pending := ex.PendingAdjustments[setIndex]
	if !pending {
		return weight, reps, false, nil
	}
	if adj.WeightMultiplier != nil {
		weight *= *adj.WeightMultiplier
	}
	if adj.WeightDelta != nil {
		weight += *adj.WeightDelta
	}
	weight = roundToHalf(weight)
	if weight < 0 {
		weight = 0
	}
	if adj.RepDelta != nil {
		reps += *adj.RepDelta
		if reps < 1 {
			reps = 1
		}
	}
	return weight, reps, true, nil
}

// AdaptSession handles the two cross-cutting triggers outside normal set
// logging. time_pressure drops the lowest-priority remaining exercises
// until the remaining estimate fits the budget, then trims isolation work
// to one set and accessory work to two. fatigue proportionally truncates
// remaining sets based on the detected fatigue score.
func (r *Rules) AdaptSession(state models.SessionRuntimeState, reason AdaptReason, now time.Time) (models.SessionRuntimeState, error) {
	switch reason {
	case AdaptTimePressure:
		return r.adaptTimePressure(state, now), nil
	case AdaptFatigue:
		return r.adaptFatigue(state, now), nil
	default:
		return state, fmt.Errorf("unknown adaptation reason %q", reason)
	}
}

func (r *Rules) adaptTimePressure(state models.SessionRuntimeState, now time.Time) models.SessionRuntimeState {
	out := cloneState(state)
	budget := out.Plan.Constraints.TimeBudgetMinutes
	if budget <= 0 {
		budget = out.Plan.EstimatedMinutes
	}
	elapsed := int(now.Sub(out.StartedAt).Minutes())
	remainingBudget := budget - elapsed

	// Drop whole exercises, lowest tier first, least recently ordered last.
	for _, tier := range []models.PriorityTier{models.TierIsolation, models.TierAccessory} {
		for i := len(out.Order) - 1; i >= 0; i-- {
			if r.estimateRemaining(out) <= remainingBudget {
				break
			}
			ex := out.Exercises[out.Order[i]]
			if ex.Planned.Tier != tier || ex.CompletedSets > 0 {
				continue
			}
			if ex.Status != models.ExercisePending {
				continue
			}
			ex.Status = models.ExerciseSkipped
			ex.SkipReason = string(AdaptTimePressure)
			out.Exercises[ex.ExerciseID] = ex
			out.Adaptations = append(out.Adaptations, models.AdaptationEvent{
				ExerciseID: ex.ExerciseID,
				Adjustment: models.AutoregulationAdjustment{
					SkipRemaining: true,
					RuleID:        RuleTimePressure,
					Message:       "Dropped to fit the remaining time budget.",
					Confidence:    0.9,
				},
				At: now,
			})
		}
	}

	// Then trim sets on what survived.
	maxSets := map[models.PriorityTier]int{
		models.TierIsolation: 1,
		models.TierAccessory: 2,
	}
	if r.estimateRemaining(out) > remainingBudget {
		for _, id := range out.Order {
			ex := out.Exercises[id]
			limit, trims := maxSets[ex.Planned.Tier]
			if !trims || terminal(ex.Status) {
				continue
			}
			if limit < ex.CompletedSets {
				limit = ex.CompletedSets
			}
			if len(ex.Planned.Sets) <= limit {
				continue
			}
			ex.Planned.Sets = ex.Planned.Sets[:limit]
			if ex.CompletedSets >= len(ex.Planned.Sets) {
				ex.Status = models.ExerciseCompleted
			}
			out.Exercises[id] = ex
			out.Adaptations = append(out.Adaptations, models.AdaptationEvent{
				ExerciseID: id,
				Adjustment: models.AutoregulationAdjustment{
					RuleID:     RuleTimePressure,
					Message:    fmt.Sprintf("Trimmed to %d set(s) to fit the remaining time budget.", limit),
					Confidence: 0.9,
				},
				At: now,
			})
		}
	}
	return out
}

func (r *Rules) adaptFatigue(state models.SessionRuntimeState, now time.Time) models.SessionRuntimeState {
	report := DetectSessionFatigue(state.SetLogs)
	var keep float64
	switch {
	case report.Score > 0.7:
		keep = 0.5
	case report.Score > 0.5:
		keep = 0.7
	default:
		return state
	}

	out := cloneState(state)
	for _, id := range out.Order {
		ex := out.Exercises[id]
		if terminal(ex.Status) {
			continue
		}
		remaining := len(ex.Planned.Sets) - ex.CompletedSets
		if remaining <= 0 {
			continue
		}
		kept := int(float64(remaining)*keep + 0.5)
		if kept < 1 {
			kept = 1
		}
		if kept >= remaining {
			continue
		}
		ex.Planned.Sets = ex.Planned.Sets[:ex.CompletedSets+kept]
		out.Exercises[id] = ex
		out.Adaptations = append(out.Adaptations, models.AdaptationEvent{
			ExerciseID: id,
			Adjustment: models.AutoregulationAdjustment{
				RuleID:     RuleSessionFatigue,
				Message:    fmt.Sprintf("Fatigue %.2f (%s); keeping %d of %d remaining set(s).", report.Score, report.Band, kept, remaining),
				Confidence: 0.8,
			},
			At: now,
		})
	}
	return out
}

// estimateRemaining estimates minutes left: full tier minutes for
// untouched exercises, half for ones mid-flight.
func (r *Rules) estimateRemaining(state models.SessionRuntimeState) int {
	var minutes int
	for _, id := range state.Order {
		ex := state.Exercises[id]
		if terminal(ex.Status) {
			continue
		}
		tierMinutes := r.TierMinutes[ex.Planned.Tier]
		if ex.Status == models.ExerciseInProgress {
			tierMinutes = (tierMinutes + 1) / 2
		}
		minutes += tierMinutes
	}
	return minutes
}

func terminal(status models.ExerciseStatus) bool {
	return status == models.ExerciseCompleted || status == models.ExerciseSkipped
}

// EndSession closes the session: duration, counts, volume, PR detection
// against supplied previous bests (strict inequality only) and the full
// adaptation trace. The runtime state is discarded by the caller afterwards.
func EndSession(state models.SessionRuntimeState, previousBests map[string]models.PreviousBests, now time.Time) (models.SessionRuntimeResult, models.SessionRuntimeState) {
	out := cloneState(state)
	out.Status = models.SessionCompleted

	result := models.SessionRuntimeResult{
		SessionID:       out.SessionID,
		DurationSeconds: int(now.Sub(out.StartedAt).Seconds()),
		TotalSets:       len(out.SetLogs),
		Adaptations:     out.Adaptations,
	}
	for _, id := range out.Order {
		switch out.Exercises[id].Status {
		case models.ExerciseCompleted:
			result.CompletedExercises++
		case models.ExerciseSkipped:
			result.SkippedExercises++
		}
	}
	for _, entry := range out.SetLogs {
		result.TotalVolume += entry.Weight * float64(entry.Reps)
	}

	for _, id := range out.Order {
		sets := setsFor(out.SetLogs, id)
		if len(sets) == 0 {
			continue
		}
		bests, known := previousBests[id]
		prs, levelUp := detectPRs(id, sets, bests, known)
		result.PRs = append(result.PRs, prs...)
		if levelUp != nil {
			result.LevelUps = append(result.LevelUps, *levelUp)
		}
	}
	return result, out
}

// detectPRs compares session metrics against previous bests. A PR is only
// reported when the new value strictly exceeds the prior one.
func detectPRs(exerciseID string, sets []models.SetLogEntry, bests models.PreviousBests, known bool) ([]models.PersonalRecord, *models.LevelUpEvent) {
	var maxWeight, bestE1RM, volume float64
	for _, s := range sets {
		if s.Weight > maxWeight {
			maxWeight = s.Weight
		}
		if e := Estimate1RM(s.Weight, s.Reps); e > bestE1RM {
			bestE1RM = e
		}
		volume += s.Weight * float64(s.Reps)
	}
	repsNearMax := 0
	for _, s := range sets {
		if s.Weight >= maxWeight*0.9 && s.Reps > repsNearMax {
			repsNearMax = s.Reps
		}
	}

	if !known {
		return nil, nil
	}
	var prs []models.PersonalRecord
	record := func(metric string, previous, current float64) {
		if current > previous {
			prs = append(prs, models.PersonalRecord{
				ExerciseID: exerciseID,
				Metric:     metric,
				Previous:   previous,
				New:        current,
			})
		}
	}
	record("weight", bests.MaxWeight, maxWeight)
	record("reps_near_max", float64(bests.MaxRepsNearMax), float64(repsNearMax))
	record("e1rm", bests.BestE1RM, bestE1RM)
	record("session_volume", bests.BestSessionVolume, volume)

	var levelUp *models.LevelUpEvent
	if bests.BestE1RM > 0 && bestE1RM >= bests.BestE1RM*1.05 {
		levelUp = &models.LevelUpEvent{
			ExerciseID: exerciseID,
			FromE1RM:   bests.BestE1RM,
			ToE1RM:     bestE1RM,
		}
	}
	return prs, levelUp
}

func setsFor(logs []models.SetLogEntry, exerciseID string) []models.SetLogEntry {
	var out []models.SetLogEntry
	for _, entry := range logs {
		if entry.ExerciseID == exerciseID {
			out = append(out, entry)
		}
	}
	return out
}

// cloneState deep-copies the mutable parts so transitions stay pure.
func cloneState(s models.SessionRuntimeState) models.SessionRuntimeState {
	out := s
	out.Order = append([]string(nil), s.Order...)
	out.SetLogs = append([]models.SetLogEntry(nil), s.SetLogs...)
	out.Adaptations = append([]models.AdaptationEvent(nil), s.Adaptations...)
	out.Exercises = make(map[string]models.ExerciseRuntimeState, len(s.Exercises))
	for id, ex := range s.Exercises {
		cloned := ex
		cloned.Planned.Sets = append([]models.PlannedSet(nil), ex.Planned.Sets...)
		if ex.PendingAdjustments != nil {
			cloned.PendingAdjustments = make(map[int]models.AutoregulationAdjustment, len(ex.PendingAdjustments))
			for k, v := range ex.PendingAdjustments {
				cloned.PendingAdjustments[k] = v
			}
		}
		out.Exercises[id] = cloned
	}
	return out
}
