package models

// Goal is a named training goal users weight against each other.
type Goal string

const (
	GoalBuildStrength    Goal = "build_strength"
	GoalBuildMuscle      Goal = "build_muscle"
	GoalImproveEndurance Goal = "improve_endurance"
	GoalGeneralFitness   Goal = "general_fitness"
)

// GoalWeights maps goals to non-negative weights. Weights need not sum to 1,
// the engine normalizes before blending.
type GoalWeights map[Goal]float64

// Normalized returns a copy whose positive weights sum to 1. Zero and
// negative weights are dropped. An empty or all-zero map falls back to
// general fitness only.
func (g GoalWeights) Normalized() GoalWeights {
	var total float64
	for _, w := range g {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return GoalWeights{GoalGeneralFitness: 1}
	}
	out := make(GoalWeights, len(g))
	for goal, w := range g {
		if w > 0 {
			out[goal] = w / total
		}
	}
	return out
}

// Dominant returns the heaviest goal and the runner-up. Iteration follows a
// fixed goal order so the result is deterministic regardless of map order;
// on equal weight the earlier goal in that order wins.
func (g GoalWeights) Dominant() (primary, secondary Goal) {
	var best, second float64
	for _, goal := range []Goal{GoalBuildStrength, GoalBuildMuscle, GoalImproveEndurance, GoalGeneralFitness} {
		w := g[goal]
		if w <= 0 {
			continue
		}
		switch {
		case w > best:
			second, secondary = best, primary
			best, primary = w, goal
		case w > second:
			second, secondary = w, goal
		}
	}
	if primary == "" {
		primary = GoalGeneralFitness
	}
	return primary, secondary
}

// EquipmentBias expresses a machine vs free-weight preference.
type EquipmentBias string

const (
	BiasNone        EquipmentBias = ""
	BiasMachines    EquipmentBias = "machines"
	BiasFreeWeights EquipmentBias = "free_weights"
)

// MuscleFrequency is how often the user wants each muscle trained per week.
type MuscleFrequency string

const (
	FrequencyAuto        MuscleFrequency = "auto"
	FrequencyTwiceWeekly MuscleFrequency = "twice_weekly"
)

// TrainingConstraints is everything that restricts exercise selection for
// one user.
type TrainingConstraints struct {
	AvailableEquipment []string      `toml:"available_equipment" json:"availableEquipment"`
	Injuries           []string      `toml:"injuries,omitempty" json:"injuries,omitempty"`
	ForbiddenIntents   []Intent      `toml:"forbidden_intents,omitempty" json:"forbiddenIntents,omitempty"`
	TimeBudgetMinutes  int           `toml:"time_budget_minutes,omitempty" json:"timeBudgetMinutes,omitempty"`
	PriorityIntents    []Intent      `toml:"priority_intents,omitempty" json:"priorityIntents,omitempty"`
	EquipmentBias      EquipmentBias `toml:"equipment_bias,omitempty" json:"equipmentBias,omitempty"`
	DislikedExercises  []string      `toml:"disliked_exercises,omitempty" json:"dislikedExercises,omitempty"`
}

// HasEquipmentItem reports whether the given item is available.
func (c TrainingConstraints) HasEquipmentItem(item string) bool {
	class := ClassifyEquipment(item)
	if class == EquipmentBodyweight {
		return true
	}
	for _, have := range c.AvailableEquipment {
		if have == item {
			return true
		}
	}
	return false
}

// IntentForbidden reports whether the intent is on the forbidden list.
func (c TrainingConstraints) IntentForbidden(intent Intent) bool {
	for _, f := range c.ForbiddenIntents {
		if f == intent {
			return true
		}
	}
	return false
}

// UserProfile is the stable part of a user's setup, persisted in config.
type UserProfile struct {
	Experience      Difficulty          `toml:"experience" json:"experience"`
	Goals           GoalWeights         `toml:"goals" json:"goals"`
	Constraints     TrainingConstraints `toml:"constraints" json:"constraints"`
	MuscleFrequency MuscleFrequency     `toml:"muscle_frequency,omitempty" json:"muscleFrequency,omitempty"`
}

// SetSample is a single historical weight/reps observation used for loading
// suggestions.
type SetSample struct {
	Weight float64 `json:"weight"`
	Reps   int     `json:"reps"`
	RPE    float64 `json:"rpe,omitempty"`
}

// UserState is the per-generation snapshot of history the plan builder
// consumes. Assembled by the caller (storage queries in production, fixtures
// in preview) so the builder itself stays pure.
type UserState struct {
	Experience Difficulty
	// RecentBest holds the best single set in the recent window, per
	// exercise id. Feeds the e1RM-based loading suggestion.
	RecentBest map[string]SetSample
	// OneRMs holds explicitly supplied one-rep maxes, per exercise id.
	OneRMs map[string]float64
	// LastSessionSets holds every set from the previous session of the same
	// template, per exercise id. Feeds progression evaluation.
	LastSessionSets map[string][]SetSample
}
