package engine

import (
	"testing"
	"time"

	"forgefit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sessionStart = time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)

func plannedSets(n, reps int, weight float64, rest int) []models.PlannedSet {
	sets := make([]models.PlannedSet, n)
	for i := range sets {
		sets[i] = models.PlannedSet{Index: i + 1, TargetReps: reps, Weight: weight, RestSeconds: rest}
	}
	return sets
}

func fixturePlan() models.SessionPlan {
	bench := models.Exercise{
		ID: "bench_press", Name: "Barbell Bench Press",
		Intents:        []models.Intent{models.IntentHorizontalPress},
		EquipmentAll:   []string{"barbell", "bench"},
		PrimaryMuscles: []string{"chest"},
		Difficulty:     models.DifficultyIntermediate,
	}
	row := models.Exercise{
		ID: "barbell_row", Name: "Barbell Row",
		Intents:        []models.Intent{models.IntentHorizontalPull},
		Equipment:      []string{"barbell"},
		PrimaryMuscles: []string{"lats"},
		Difficulty:     models.DifficultyIntermediate,
	}
	curl := models.Exercise{
		ID: "dumbbell_curl", Name: "Dumbbell Curl",
		Intents:        []models.Intent{models.IntentElbowFlexion},
		Equipment:      []string{"dumbbells"},
		PrimaryMuscles: []string{"biceps"},
		Difficulty:     models.DifficultyBeginner,
	}
	return models.SessionPlan{
		TemplateID:    "upper_day",
		GroupingStyle: "upper_lower",
		Goals:         models.GoalWeights{models.GoalBuildMuscle: 1},
		Constraints:   models.TrainingConstraints{TimeBudgetMinutes: 60},
		Experience:    models.DifficultyIntermediate,
		Exercises: []models.PlannedExercise{
			{Exercise: bench, Order: 1, Tier: models.TierPrimary,
				RepRange: models.RepRange{Min: 6, Max: 10}, Sets: plannedSets(4, 8, 60, 90),
				Trace: models.DecisionTrace{Alternatives: []models.Alternative{{ExerciseID: "push_up", Score: 45}}}},
			{Exercise: row, Order: 2, Tier: models.TierAccessory,
				RepRange: models.RepRange{Min: 8, Max: 12}, Sets: plannedSets(3, 10, 40, 90)},
			{Exercise: curl, Order: 3, Tier: models.TierIsolation,
				RepRange: models.RepRange{Min: 12, Max: 15}, Sets: plannedSets(3, 12, 10, 60)},
		},
		EstimatedMinutes: 29,
		CreatedAt:        sessionStart,
	}
}

func fixtureItemIDs() map[string]models.ItemID {
	return map[string]models.ItemID{
		"bench_press":   "item-bench",
		"barbell_row":   "item-row",
		"dumbbell_curl": "item-curl",
	}
}

func newRuntime(t *testing.T) models.SessionRuntimeState {
	t.Helper()
	state, err := InitializeRuntime(fixturePlan(), "sess-1", "local-1", fixtureItemIDs(), sessionStart)
	require.NoError(t, err)
	return state
}

func TestInitializeRuntime(t *testing.T) {
	state := newRuntime(t)

	assert.Equal(t, models.SessionActive, state.Status)
	assert.Equal(t, []string{"bench_press", "barbell_row", "dumbbell_curl"}, state.Order)
	assert.Equal(t, 0, state.Cursor)

	bench := state.Exercises["bench_press"]
	assert.Equal(t, models.ItemID("item-bench"), bench.ItemID)
	assert.Equal(t, models.ExercisePending, bench.Status)
	assert.Equal(t, 1, bench.NextSetIndex)

	// A missing item id is a caller bug and must fail loudly.
	ids := fixtureItemIDs()
	delete(ids, "barbell_row")
	_, err := InitializeRuntime(fixturePlan(), "sess-1", "local-1", ids, sessionStart)
	assert.ErrorContains(t, err, "no item id for exercise")
}

func TestLogSetStoresAndConsumesAdjustments(t *testing.T) {
	state := newRuntime(t)
	now := sessionStart.Add(2 * time.Minute)

	// First set at RPE 10: next set gets a 10% cut queued.
	next, outcome, err := LogSet(state, "bench_press", SetInput{SetIndex: 1, Weight: 60, Reps: 8, RPE: rpe(10)}, now)
	require.NoError(t, err)
	assert.Equal(t, RuleFirstSetVeryHighRPE, outcome.RuleID)

	bench := next.Exercises["bench_press"]
	assert.Equal(t, models.ExerciseInProgress, bench.Status)
	assert.Equal(t, 1, bench.CompletedSets)
	assert.Equal(t, 2, bench.NextSetIndex)
	require.Contains(t, bench.PendingAdjustments, 2)
	require.Len(t, next.Adaptations, 1)

	// The queued adjustment previews on set 2 and nowhere else.
	weight, reps, adjusted, err := GetAdjustedSetParams(next, "bench_press", 2)
	require.NoError(t, err)
	assert.True(t, adjusted)
	assert.Equal(t, 54.0, weight)
	assert.Equal(t, 8, reps)
	_, _, adjusted, err = GetAdjustedSetParams(next, "bench_press", 3)
	require.NoError(t, err)
	assert.False(t, adjusted)

	// Logging set 2 consumes it and stamps the entry.
	after, _, err := LogSet(next, "bench_press", SetInput{SetIndex: 2, Weight: 54, Reps: 8, RPE: rpe(8)}, now)
	require.NoError(t, err)
	assert.NotContains(t, after.Exercises["bench_press"].PendingAdjustments, 2)
	entry := after.SetLogs[1]
	require.NotNil(t, entry.AppliedAdjustment)
	assert.Equal(t, RuleFirstSetVeryHighRPE, entry.AppliedAdjustment.RuleID)
	assert.Equal(t, 60.0, entry.PlannedWeight)

	// Input state is untouched: transitions return new values.
	assert.Equal(t, 0, state.Exercises["bench_press"].CompletedSets)
	assert.Empty(t, state.SetLogs)
}

func TestLogSetFatigueSkipsRemainingSets(t *testing.T) {
	state := newRuntime(t)
	now := sessionStart

	state, _, err := LogSet(state, "bench_press", SetInput{SetIndex: 1, Weight: 60, Reps: 8, RPE: rpe(9)}, now)
	require.NoError(t, err)
	state, _, err = LogSet(state, "bench_press", SetInput{SetIndex: 2, Weight: 60, Reps: 7, RPE: rpe(9.5)}, now)
	require.NoError(t, err)
	state, outcome, err := LogSet(state, "bench_press", SetInput{SetIndex: 3, Weight: 60, Reps: 6, RPE: rpe(10)}, now)
	require.NoError(t, err)

	// Third straight set at RPE 9+: the fourth set is abandoned.
	assert.Equal(t, RuleFatigueDetected, outcome.RuleID)
	assert.Equal(t, models.ExerciseCompleted, state.Exercises["bench_press"].Status)
	assert.Equal(t, 3, state.Exercises["bench_press"].CompletedSets)
}

func TestLogSetRejectsUnknownAndSkipped(t *testing.T) {
	state := newRuntime(t)

	_, _, err := LogSet(state, "leg_press", SetInput{SetIndex: 1}, sessionStart)
	assert.ErrorContains(t, err, "not part of this session")

	skipped, err := SkipExercise(state, "dumbbell_curl", "equipment taken", sessionStart)
	require.NoError(t, err)
	_, _, err = LogSet(skipped, "dumbbell_curl", SetInput{SetIndex: 1}, sessionStart)
	assert.ErrorContains(t, err, "was skipped")
}

func TestAdvanceAndSkip(t *testing.T) {
	state := newRuntime(t)

	state, _, err := LogSet(state, "bench_press", SetInput{SetIndex: 1, Weight: 60, Reps: 8}, sessionStart)
	require.NoError(t, err)
	state = AdvanceExercise(state)
	// Advancing off a started exercise closes it out.
	assert.Equal(t, models.ExerciseCompleted, state.Exercises["bench_press"].Status)
	assert.Equal(t, 1, state.Cursor)

	// Skipping the current exercise advances the cursor and records why.
	state, err = SkipExercise(state, "barbell_row", "shoulder tweak", sessionStart)
	require.NoError(t, err)
	row := state.Exercises["barbell_row"]
	assert.Equal(t, models.ExerciseSkipped, row.Status)
	assert.Equal(t, "shoulder tweak", row.SkipReason)
	assert.Equal(t, 2, state.Cursor)
	require.NotEmpty(t, state.Adaptations)
	assert.Equal(t, RuleExerciseSkipped, state.Adaptations[len(state.Adaptations)-1].Adjustment.RuleID)

	// A completed exercise cannot be skipped after the fact.
	_, err = SkipExercise(state, "bench_press", "nope", sessionStart)
	assert.ErrorContains(t, err, "already completed")
}

func TestSwapExercise(t *testing.T) {
	state := newRuntime(t)
	rules := DefaultRules()
	pushUp := models.Exercise{
		ID: "push_up", Name: "Push-Up",
		Intents:        []models.Intent{models.IntentHorizontalPress},
		PrimaryMuscles: []string{"chest"},
		Difficulty:     models.DifficultyBeginner,
	}

	next, err := rules.SwapExercise(state, "bench_press", pushUp, "item-pushup", sessionStart)
	require.NoError(t, err)

	assert.Equal(t, []string{"push_up", "barbell_row", "dumbbell_curl"}, next.Order)
	old := next.Exercises["bench_press"]
	assert.Equal(t, models.ExerciseSkipped, old.Status)
	assert.Contains(t, old.SkipReason, "swapped")

	swapped := next.Exercises["push_up"]
	assert.Equal(t, models.ItemID("item-pushup"), swapped.ItemID)
	assert.Equal(t, models.ExercisePending, swapped.Status)
	// Prescription carries over; the bodyweight replacement loads zero.
	assert.Len(t, swapped.Planned.Sets, 4)
	assert.Zero(t, swapped.Planned.Sets[0].Weight)

	// Started exercises cannot be swapped out.
	started, _, err := LogSet(state, "barbell_row", SetInput{SetIndex: 1, Weight: 40, Reps: 10}, sessionStart)
	require.NoError(t, err)
	_, err = rules.SwapExercise(started, "barbell_row", pushUp, "item-x", sessionStart)
	assert.ErrorContains(t, err, "already has logged sets")
}

func TestAdaptSessionTimePressure(t *testing.T) {
	state := newRuntime(t)
	rules := DefaultRules()

	// 55 of the 60 budgeted minutes are gone; 16 minutes of work remain.
	// Both untouched lower-tier exercises get dropped.
	next, err := rules.AdaptSession(state, AdaptTimePressure, sessionStart.Add(55*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, models.ExerciseSkipped, next.Exercises["dumbbell_curl"].Status)
	assert.Equal(t, models.ExerciseSkipped, next.Exercises["barbell_row"].Status)
	assert.Equal(t, models.ExercisePending, next.Exercises["bench_press"].Status)
	assert.Len(t, next.Adaptations, 2)

	// A started accessory cannot be dropped, only trimmed.
	started, _, err := LogSet(state, "barbell_row", SetInput{SetIndex: 1, Weight: 40, Reps: 10}, sessionStart)
	require.NoError(t, err)
	next, err = rules.AdaptSession(started, AdaptTimePressure, sessionStart.Add(50*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, models.ExerciseSkipped, next.Exercises["dumbbell_curl"].Status)
	row := next.Exercises["barbell_row"]
	assert.Equal(t, models.ExerciseInProgress, row.Status)
	assert.Len(t, row.Planned.Sets, 2)
}

func TestAdaptSessionFatigue(t *testing.T) {
	state := newRuntime(t)
	rules := DefaultRules()

	// Two easy sets: no fatigue, state passes through unchanged.
	easy, _, err := LogSet(state, "bench_press", SetInput{SetIndex: 1, Weight: 60, Reps: 8, RPE: rpe(6)}, sessionStart)
	require.NoError(t, err)
	same, err := rules.AdaptSession(easy, AdaptFatigue, sessionStart)
	require.NoError(t, err)
	assert.Equal(t, easy, same)

	hard, _, err := LogSet(state, "bench_press", SetInput{SetIndex: 1, Weight: 60, Reps: 8, RPE: rpe(9)}, sessionStart)
	require.NoError(t, err)
	hard, _, err = LogSet(hard, "bench_press", SetInput{SetIndex: 2, Weight: 60, Reps: 7, RPE: rpe(10)}, sessionStart)
	require.NoError(t, err)

	next, err := rules.AdaptSession(hard, AdaptFatigue, sessionStart)
	require.NoError(t, err)
	// High fatigue keeps half of what remains everywhere.
	assert.Len(t, next.Exercises["bench_press"].Planned.Sets, 3)
	assert.Len(t, next.Exercises["barbell_row"].Planned.Sets, 2)
	assert.Len(t, next.Exercises["dumbbell_curl"].Planned.Sets, 2)
}

func TestAdaptSessionUnknownReason(t *testing.T) {
	state := newRuntime(t)
	_, err := DefaultRules().AdaptSession(state, AdaptReason("boredom"), sessionStart)
	assert.ErrorContains(t, err, "unknown adaptation reason")
}

func TestEndSession(t *testing.T) {
	state := newRuntime(t)
	now := sessionStart

	state, _, err := LogSet(state, "bench_press", SetInput{SetIndex: 1, Weight: 62.5, Reps: 8}, now)
	require.NoError(t, err)
	state, _, err = LogSet(state, "bench_press", SetInput{SetIndex: 2, Weight: 62.5, Reps: 8}, now)
	require.NoError(t, err)
	state = AdvanceExercise(state)
	state, err = SkipExercise(state, "barbell_row", "out of time", now)
	require.NoError(t, err)

	bests := map[string]models.PreviousBests{
		"bench_press": {MaxWeight: 60, MaxRepsNearMax: 8, BestE1RM: 70, BestSessionVolume: 2000},
	}
	result, final := EndSession(state, bests, sessionStart.Add(45*time.Minute))

	assert.Equal(t, models.SessionCompleted, final.Status)
	assert.Equal(t, models.ItemID("sess-1"), result.SessionID)
	assert.Equal(t, 45*60, result.DurationSeconds)
	assert.Equal(t, 1, result.CompletedExercises)
	assert.Equal(t, 1, result.SkippedExercises)
	assert.Equal(t, 2, result.TotalSets)
	assert.InDelta(t, 1000, result.TotalVolume, 1e-9)

	// 62.5 beats the 60 weight best; e1RM 79.2 beats 70 and clears the 5%
	// level-up bar. Reps near max tie at 8 and stay silent; volume is short.
	metrics := make(map[string]bool)
	for _, pr := range result.PRs {
		assert.Equal(t, "bench_press", pr.ExerciseID)
		metrics[pr.Metric] = true
	}
	assert.Equal(t, map[string]bool{"weight": true, "e1rm": true}, metrics)
	require.Len(t, result.LevelUps, 1)
	assert.Equal(t, 70.0, result.LevelUps[0].FromE1RM)
}

func TestEndSessionWithoutHistoryReportsNoPRs(t *testing.T) {
	state := newRuntime(t)
	state, _, err := LogSet(state, "bench_press", SetInput{SetIndex: 1, Weight: 60, Reps: 8}, sessionStart)
	require.NoError(t, err)

	result, _ := EndSession(state, nil, sessionStart.Add(10*time.Minute))
	assert.Empty(t, result.PRs)
	assert.Empty(t, result.LevelUps)
}

func TestResumeRuntime(t *testing.T) {
	state := newRuntime(t)
	state.Status = models.SessionPaused

	resumed, err := ResumeRuntime(state)
	require.NoError(t, err)
	assert.Equal(t, models.SessionActive, resumed.Status)

	state.Status = models.SessionCompleted
	_, err = ResumeRuntime(state)
	assert.ErrorContains(t, err, "already completed")
}
