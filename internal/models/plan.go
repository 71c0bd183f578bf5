package models

import "time"

// PriorityTier orders exercises within a session by how central they are.
type PriorityTier string

const (
	TierPrimary   PriorityTier = "primary"
	TierAccessory PriorityTier = "accessory"
	TierIsolation PriorityTier = "isolation"
)

// PlannedSet is one prescribed set. Indices are 1-based and contiguous
// within an exercise.
type PlannedSet struct {
	Index       int     `json:"index"`
	TargetReps  int     `json:"targetReps"`
	Weight      float64 `json:"weight"`
	RestSeconds int     `json:"restSeconds"`
}

// RepRange is an inclusive target-rep window.
type RepRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Alternative is a runner-up candidate kept in the decision trace.
type Alternative struct {
	ExerciseID string `json:"exerciseId"`
	Score      int    `json:"score"`
	Reason     string `json:"reason"`
}

// DecisionTrace explains one exercise selection well enough that the choice
// can be checked by a machine or argued about by a human.
type DecisionTrace struct {
	AppliedConstraints []string      `json:"appliedConstraints"`
	Rationale          string        `json:"rationale"`
	Alternatives       []Alternative `json:"alternatives,omitempty"`
	Confidence         float64       `json:"confidence"`
	ProgressionNote    string        `json:"progressionNote,omitempty"`
}

// PlannedExercise is one selected exercise with its full prescription.
type PlannedExercise struct {
	Exercise Exercise      `json:"exercise"`
	Order    int           `json:"order"`
	Tier     PriorityTier  `json:"tier"`
	Intents  []Intent      `json:"intents"`
	RepRange RepRange      `json:"repRange"`
	Sets     []PlannedSet  `json:"sets"`
	Trace    DecisionTrace `json:"trace"`
}

// SessionPlan is the immutable output of the plan builder.
type SessionPlan struct {
	TemplateID       string              `json:"templateId"`
	GroupingStyle    string              `json:"groupingStyle"`
	Goals            GoalWeights         `json:"goals"`
	Constraints      TrainingConstraints `json:"constraints"`
	Experience       Difficulty          `json:"experience"`
	Exercises        []PlannedExercise   `json:"exercises"`
	EstimatedMinutes int                 `json:"estimatedMinutes"`
	CreatedAt        time.Time           `json:"createdAt"`
	Label            string              `json:"label,omitempty"`
}

// TotalSets counts every planned set across all exercises.
func (p SessionPlan) TotalSets() int {
	var n int
	for _, ex := range p.Exercises {
		n += len(ex.Sets)
	}
	return n
}

// PrimaryRepRange returns the rep range of the first primary-tier exercise,
// the figure surfaced in previews.
func (p SessionPlan) PrimaryRepRange() (RepRange, bool) {
	for _, ex := range p.Exercises {
		if ex.Tier == TierPrimary {
			return ex.RepRange, true
		}
	}
	return RepRange{}, false
}
