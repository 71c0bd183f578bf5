package utils

import (
	"testing"
	"time"

	"forgefit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleState() *models.SessionRuntimeState {
	rpe9 := 9.0
	mult := 0.95
	return &models.SessionRuntimeState{
		RuntimeID:  "rt-1",
		SessionID:  "sess-1",
		TemplateID: "push_day",
		Mode:       "generated",
		StartedAt:  time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC),
		Cursor:     0,
		Order:      []string{"bench_press", "lateral_raise"},
		Exercises: map[string]models.ExerciseRuntimeState{
			"bench_press": {
				ExerciseID:    "bench_press",
				ItemID:        "item-1",
				Status:        models.ExerciseInProgress,
				CompletedSets: 1,
				NextSetIndex:  2,
				PendingAdjustments: map[int]models.AutoregulationAdjustment{
					2: {WeightMultiplier: &mult, RuleID: "FIRST_SET_HIGH_RPE", Confidence: 0.8},
				},
			},
			"lateral_raise": {
				ExerciseID:   "lateral_raise",
				ItemID:       "item-2",
				Status:       models.ExercisePending,
				NextSetIndex: 1,
			},
		},
		SetLogs: []models.SetLogEntry{
			{ExerciseID: "bench_press", ItemID: "item-1", SetIndex: 1, Weight: 60, Reps: 8, RPE: &rpe9,
				PlannedWeight: 60, PlannedReps: 8, LoggedAt: time.Date(2026, 3, 2, 18, 5, 0, 0, time.UTC)},
		},
		Status: models.SessionActive,
	}
}

func TestSessionStateRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	assert.False(t, SessionExists())
	require.NoError(t, SaveSessionState(sampleState()))
	assert.True(t, SessionExists())

	loaded, err := LoadSessionState()
	require.NoError(t, err)
	assert.Equal(t, sampleState(), loaded)

	// Integer-keyed pending adjustments survive the JSON file.
	bench := loaded.Exercises["bench_press"]
	adj, ok := bench.PendingAdjustments[2]
	require.True(t, ok)
	assert.Equal(t, 0.95, *adj.WeightMultiplier)
}

func TestSaveSessionStateOverwrites(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	require.NoError(t, SaveSessionState(sampleState()))

	updated := sampleState()
	updated.Cursor = 1
	updated.Status = models.SessionCompleting
	require.NoError(t, SaveSessionState(updated))

	loaded, err := LoadSessionState()
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Cursor)
	assert.Equal(t, models.SessionCompleting, loaded.Status)
}

func TestClearSessionState(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	require.NoError(t, SaveSessionState(sampleState()))
	require.NoError(t, ClearSessionState())
	assert.False(t, SessionExists())

	_, err := LoadSessionState()
	assert.Error(t, err)
}

func TestLoadSessionStateMissing(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	_, err := LoadSessionState()
	assert.Error(t, err)
}
