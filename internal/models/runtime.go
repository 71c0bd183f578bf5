package models

import "time"

type SessionStatus string

const (
	SessionActive     SessionStatus = "active"
	SessionPaused     SessionStatus = "paused"
	SessionCompleting SessionStatus = "completing"
	SessionCompleted  SessionStatus = "completed"
)

type ExerciseStatus string

const (
	ExercisePending    ExerciseStatus = "pending"
	ExerciseInProgress ExerciseStatus = "in_progress"
	ExerciseCompleted  ExerciseStatus = "completed"
	ExerciseSkipped    ExerciseStatus = "skipped"
)

// AutoregulationAdjustment is the outcome of one autoregulation rule,
// applied to a future set of the same exercise.
type AutoregulationAdjustment struct {
	WeightMultiplier *float64 `json:"weightMultiplier,omitempty"`
	WeightDelta      *float64 `json:"weightDelta,omitempty"`
	RepDelta         *int     `json:"repDelta,omitempty"`
	SkipRemaining    bool     `json:"skipRemaining,omitempty"`
	RuleID           string   `json:"ruleId"`
	Message          string   `json:"message"`
	Confidence       float64  `json:"confidence"`
}

// SetLogEntry records one performed set, alongside what was planned for it
// and any pending adjustment that was in effect when it was logged.
type SetLogEntry struct {
	ExerciseID        string                    `json:"exerciseId"`
	ItemID            ItemID                    `json:"itemId"`
	SetIndex          int                       `json:"setIndex"`
	Weight            float64                   `json:"weight"`
	Reps              int                       `json:"reps"`
	RPE               *float64                  `json:"rpe,omitempty"`
	PlannedWeight     float64                   `json:"plannedWeight"`
	PlannedReps       int                       `json:"plannedReps"`
	AppliedAdjustment *AutoregulationAdjustment `json:"appliedAdjustment,omitempty"`
	LoggedAt          time.Time                 `json:"loggedAt"`
}

// AdaptationEvent is one entry of the append-only session adaptation trace.
type AdaptationEvent struct {
	ExerciseID string                   `json:"exerciseId"`
	SetIndex   int                      `json:"setIndex,omitempty"`
	Adjustment AutoregulationAdjustment `json:"adjustment"`
	At         time.Time                `json:"at"`
}

// ExerciseRuntimeState tracks one exercise through a live session.
type ExerciseRuntimeState struct {
	ExerciseID string `json:"exerciseId"`
	// ItemID is the persistence-layer identifier for this session item.
	// Never a locally-synthesized placeholder.
	ItemID        ItemID          `json:"itemId"`
	Status        ExerciseStatus  `json:"status"`
	Planned       PlannedExercise `json:"planned"`
	CompletedSets int             `json:"completedSets"`
	NextSetIndex  int             `json:"nextSetIndex"`
	SkipReason    string          `json:"skipReason,omitempty"`
	// PendingAdjustments maps a future set index to the adjustment computed
	// after the previous set.
	PendingAdjustments map[int]AutoregulationAdjustment `json:"pendingAdjustments,omitempty"`
}

// SessionRuntimeState is the whole live-session state. It evolves only
// through pure transition functions that return a new value.
type SessionRuntimeState struct {
	RuntimeID   LocalID                         `json:"runtimeId"`
	SessionID   ItemID                          `json:"sessionId"`
	TemplateID  string                          `json:"templateId"`
	Mode        string                          `json:"mode"`
	StartedAt   time.Time                       `json:"startedAt"`
	Cursor      int                             `json:"cursor"`
	Order       []string                        `json:"order"` // exercise ids in plan order
	Exercises   map[string]ExerciseRuntimeState `json:"exercises"`
	SetLogs     []SetLogEntry                   `json:"setLogs"`
	Adaptations []AdaptationEvent               `json:"adaptations,omitempty"`
	Status      SessionStatus                   `json:"status"`
	Plan        SessionPlan                     `json:"plan"`
}

// CurrentExercise returns the exercise under the cursor.
func (s SessionRuntimeState) CurrentExercise() (ExerciseRuntimeState, bool) {
	if s.Cursor < 0 || s.Cursor >= len(s.Order) {
		return ExerciseRuntimeState{}, false
	}
	ex, ok := s.Exercises[s.Order[s.Cursor]]
	return ex, ok
}

// PreviousBests are the prior records PR detection compares against.
type PreviousBests struct {
	MaxWeight         float64 `json:"maxWeight"`
	MaxRepsNearMax    int     `json:"maxRepsNearMax"`
	BestE1RM          float64 `json:"bestE1RM"`
	BestSessionVolume float64 `json:"bestSessionVolume"`
}

// PersonalRecord reports one strictly-exceeded previous best.
type PersonalRecord struct {
	ExerciseID string  `json:"exerciseId"`
	Metric     string  `json:"metric"` // weight | reps_near_max | e1rm | session_volume
	Previous   float64 `json:"previous"`
	New        float64 `json:"new"`
}

// LevelUpEvent fires when an exercise's session e1RM beats its previous
// best by at least 5%.
type LevelUpEvent struct {
	ExerciseID string  `json:"exerciseId"`
	FromE1RM   float64 `json:"fromE1RM"`
	ToE1RM     float64 `json:"toE1RM"`
}

// SessionRuntimeResult is the handoff artifact produced by ending a
// session, consumed by analytics/notification collaborators.
type SessionRuntimeResult struct {
	SessionID          ItemID            `json:"sessionId"`
	DurationSeconds    int               `json:"durationSeconds"`
	CompletedExercises int               `json:"completedExercises"`
	SkippedExercises   int               `json:"skippedExercises"`
	TotalSets          int               `json:"totalSets"`
	TotalVolume        float64           `json:"totalVolume"`
	PRs                []PersonalRecord  `json:"prs,omitempty"`
	LevelUps           []LevelUpEvent    `json:"levelUps,omitempty"`
	Adaptations        []AdaptationEvent `json:"adaptations,omitempty"`
}
