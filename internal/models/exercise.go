package models

// Intent is a named movement pattern an exercise trains.
type Intent string

const (
	IntentHorizontalPress Intent = "horizontal_press"
	IntentVerticalPress   Intent = "vertical_press"
	IntentHorizontalPull  Intent = "horizontal_pull"
	IntentVerticalPull    Intent = "vertical_pull"
	IntentSquat           Intent = "squat"
	IntentHinge           Intent = "hinge"
	IntentLunge           Intent = "lunge"
	IntentElbowFlexion    Intent = "elbow_flexion"
	IntentElbowExtension  Intent = "elbow_extension"
	IntentLateralRaise    Intent = "lateral_raise"
	IntentCalfRaise       Intent = "calf_raise"
	IntentCoreBrace       Intent = "core_brace"
)

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Rank maps a tier to an integer so difficulty closeness can be scored.
// Unknown tiers rank as intermediate.
func (d Difficulty) Rank() int {
	switch d {
	case DifficultyBeginner:
		return 0
	case DifficultyAdvanced:
		return 2
	default:
		return 1
	}
}

// EquipmentClass groups equipment items for weight increments and defaults.
type EquipmentClass string

const (
	EquipmentBarbell    EquipmentClass = "barbell"
	EquipmentDumbbells  EquipmentClass = "dumbbells"
	EquipmentMachine    EquipmentClass = "machine"
	EquipmentCable      EquipmentClass = "cable"
	EquipmentKettlebell EquipmentClass = "kettlebell"
	EquipmentBodyweight EquipmentClass = "bodyweight"
	EquipmentOther      EquipmentClass = "other"
)

// Exercise is one immutable catalog entry. Loaded once at startup, never
// mutated afterwards.
type Exercise struct {
	ID                string     `toml:"id" json:"id"`
	Name              string     `toml:"name" json:"name"`
	Aliases           []string   `toml:"aliases,omitempty" json:"aliases,omitempty"`
	Intents           []Intent   `toml:"intents" json:"intents"`
	Equipment         []string   `toml:"equipment,omitempty" json:"equipment,omitempty"`
	EquipmentAll      []string   `toml:"equipment_all,omitempty" json:"equipmentAll,omitempty"`
	EquipmentAny      []string   `toml:"equipment_any,omitempty" json:"equipmentAny,omitempty"`
	PrimaryMuscles    []string   `toml:"primary_muscles" json:"primaryMuscles"`
	SecondaryMuscles  []string   `toml:"secondary_muscles,omitempty" json:"secondaryMuscles,omitempty"`
	Difficulty        Difficulty `toml:"difficulty" json:"difficulty"`
	Contraindications []string   `toml:"contraindications,omitempty" json:"contraindications,omitempty"`
	SubstitutionTags  []string   `toml:"substitution_tags,omitempty" json:"substitutionTags,omitempty"`
	Unilateral        bool       `toml:"unilateral,omitempty" json:"unilateral,omitempty"`
}

// HasIntent reports whether the exercise trains the given movement pattern.
func (e Exercise) HasIntent(intent Intent) bool {
	for _, in := range e.Intents {
		if in == intent {
			return true
		}
	}
	return false
}

// allEquipment returns every equipment item the exercise references,
// regardless of which declaration style it uses.
func (e Exercise) allEquipment() []string {
	out := make([]string, 0, len(e.Equipment)+len(e.EquipmentAll)+len(e.EquipmentAny))
	out = append(out, e.Equipment...)
	out = append(out, e.EquipmentAll...)
	out = append(out, e.EquipmentAny...)
	return out
}

// IsBodyweight reports whether the exercise needs no loadable equipment at
// all. Such exercises always prescribe weight 0.
func (e Exercise) IsBodyweight() bool {
	items := e.allEquipment()
	if len(items) == 0 {
		return true
	}
	for _, item := range items {
		class := ClassifyEquipment(item)
		if class != EquipmentBodyweight && class != EquipmentOther {
			return false
		}
	}
	return true
}

// ClassifyEquipment buckets a single equipment item into its class.
func ClassifyEquipment(item string) EquipmentClass {
	switch item {
	case "barbell", "ez_bar", "trap_bar", "rack", "bench":
		return EquipmentBarbell
	case "dumbbells", "dumbbell":
		return EquipmentDumbbells
	case "machine", "leg_press", "smith_machine", "hack_squat":
		return EquipmentMachine
	case "cable", "cable_station", "lat_pulldown":
		return EquipmentCable
	case "kettlebell", "kettlebells":
		return EquipmentKettlebell
	case "", "bodyweight", "pullup_bar", "dip_station", "floor":
		return EquipmentBodyweight
	default:
		return EquipmentOther
	}
}

// PrimaryEquipmentClass picks the class used for weight steps and loading
// defaults: the first non-bodyweight item wins, in declaration order.
func (e Exercise) PrimaryEquipmentClass() EquipmentClass {
	for _, item := range e.allEquipment() {
		class := ClassifyEquipment(item)
		if class != EquipmentBodyweight && class != EquipmentOther {
			return class
		}
	}
	return EquipmentBodyweight
}
