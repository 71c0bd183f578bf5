package engine

import "forgefit/internal/models"

// Prescription is one goal's rule-table row for a priority tier.
type Prescription struct {
	RepMin      int
	RepMax      int
	Sets        int
	RestSeconds int
}

// Template names the movement intents a session must and may cover.
type Template struct {
	ID       string
	Label    string
	Required []models.Intent
	Optional []models.Intent
}

// SplitDay is one training day of a weekly split.
type SplitDay struct {
	Label      string
	TemplateID string
}

// Split is a weekly layout of session templates.
type Split struct {
	Style string
	Days  []SplitDay
}

// Rules is the injected, read-only rules configuration: goal tables,
// templates, splits and loading defaults. Constructed once at startup;
// tests swap fixtures instead of mutating.
type Rules struct {
	Prescriptions map[models.Goal]map[models.PriorityTier]Prescription
	Templates     map[string]Template
	// Splits keys days-per-week (2..6) to the auto split. TwiceWeekly holds
	// the variant satisfying a twice-per-week muscle frequency where one
	// exists at that day count.
	Splits      map[int]Split
	TwiceWeekly map[int]Split

	MaxExercises    map[models.Difficulty]int
	WarmupMinutes   int
	CooldownMinutes int
	TierMinutes     map[models.PriorityTier]int

	CompoundIntents map[models.Intent]bool

	// WeightSteps is the loadable increment per equipment class.
	WeightSteps map[models.EquipmentClass]float64
	// DefaultLoads is the conservative starting weight by experience and
	// equipment class, used when no history exists.
	DefaultLoads map[models.Difficulty]map[models.EquipmentClass]float64
}

var (
	fullBodySplit = Split{Style: "full_body", Days: []SplitDay{
		{Label: "Full Body", TemplateID: "full_body"},
	}}
	pplSplit = Split{Style: "push_pull_legs", Days: []SplitDay{
		{Label: "Push", TemplateID: "push_day"},
		{Label: "Pull", TemplateID: "pull_day"},
		{Label: "Legs", TemplateID: "leg_day"},
	}}
	upperLowerSplit = Split{Style: "upper_lower", Days: []SplitDay{
		{Label: "Upper", TemplateID: "upper_day"},
		{Label: "Lower", TemplateID: "lower_day"},
	}}
	pplUpperLowerSplit = Split{Style: "ppl_upper_lower", Days: []SplitDay{
		{Label: "Push", TemplateID: "push_day"},
		{Label: "Pull", TemplateID: "pull_day"},
		{Label: "Legs", TemplateID: "leg_day"},
		{Label: "Upper", TemplateID: "upper_day"},
		{Label: "Lower", TemplateID: "lower_day"},
	}}
)

// DefaultRules returns the production rules tables.
func DefaultRules() *Rules {
	return &Rules{
		Prescriptions: map[models.Goal]map[models.PriorityTier]Prescription{
			models.GoalBuildStrength: {
				models.TierPrimary:   {RepMin: 3, RepMax: 6, Sets: 5, RestSeconds: 180},
				models.TierAccessory: {RepMin: 6, RepMax: 8, Sets: 4, RestSeconds: 150},
				models.TierIsolation: {RepMin: 8, RepMax: 10, Sets: 3, RestSeconds: 90},
			},
			models.GoalBuildMuscle: {
				models.TierPrimary:   {RepMin: 6, RepMax: 10, Sets: 4, RestSeconds: 150},
				models.TierAccessory: {RepMin: 8, RepMax: 12, Sets: 3, RestSeconds: 90},
				models.TierIsolation: {RepMin: 12, RepMax: 15, Sets: 3, RestSeconds: 60},
			},
			models.GoalImproveEndurance: {
				models.TierPrimary:   {RepMin: 12, RepMax: 15, Sets: 3, RestSeconds: 75},
				models.TierAccessory: {RepMin: 15, RepMax: 20, Sets: 3, RestSeconds: 60},
				models.TierIsolation: {RepMin: 15, RepMax: 20, Sets: 2, RestSeconds: 45},
			},
			models.GoalGeneralFitness: {
				models.TierPrimary:   {RepMin: 8, RepMax: 12, Sets: 3, RestSeconds: 120},
				models.TierAccessory: {RepMin: 10, RepMax: 12, Sets: 3, RestSeconds: 90},
				models.TierIsolation: {RepMin: 12, RepMax: 15, Sets: 2, RestSeconds: 60},
			},
		},
		Templates: map[string]Template{
			"full_body": {
				ID:       "full_body",
				Label:    "Full Body",
				Required: []models.Intent{models.IntentSquat, models.IntentHorizontalPress, models.IntentHorizontalPull},
				Optional: []models.Intent{models.IntentHinge, models.IntentVerticalPress, models.IntentElbowFlexion, models.IntentCoreBrace, models.IntentCalfRaise},
			},
			"push_day": {
				ID:       "push_day",
				Label:    "Push",
				Required: []models.Intent{models.IntentHorizontalPress, models.IntentVerticalPress},
				Optional: []models.Intent{models.IntentElbowExtension, models.IntentLateralRaise, models.IntentCoreBrace},
			},
			"pull_day": {
				ID:       "pull_day",
				Label:    "Pull",
				Required: []models.Intent{models.IntentHorizontalPull, models.IntentVerticalPull},
				Optional: []models.Intent{models.IntentElbowFlexion, models.IntentCoreBrace},
			},
			"leg_day": {
				ID:       "leg_day",
				Label:    "Legs",
				Required: []models.Intent{models.IntentSquat, models.IntentHinge},
				Optional: []models.Intent{models.IntentLunge, models.IntentCalfRaise, models.IntentCoreBrace},
			},
			"upper_day": {
				ID:       "upper_day",
				Label:    "Upper",
				Required: []models.Intent{models.IntentHorizontalPress, models.IntentHorizontalPull, models.IntentVerticalPress},
				Optional: []models.Intent{models.IntentVerticalPull, models.IntentElbowFlexion, models.IntentElbowExtension, models.IntentLateralRaise},
			},
			"lower_day": {
				ID:       "lower_day",
				Label:    "Lower",
				Required: []models.Intent{models.IntentSquat, models.IntentHinge},
				Optional: []models.Intent{models.IntentLunge, models.IntentCalfRaise, models.IntentCoreBrace},
			},
		},
		Splits: map[int]Split{
			2: fullBodySplit,
			3: pplSplit,
			4: upperLowerSplit,
			5: pplUpperLowerSplit,
			6: pplSplit,
		},
		TwiceWeekly: map[int]Split{
			2: fullBodySplit,
			3: fullBodySplit,
			4: upperLowerSplit,
			6: pplSplit,
		},
		MaxExercises: map[models.Difficulty]int{
			models.DifficultyBeginner:     4,
			models.DifficultyIntermediate: 6,
			models.DifficultyAdvanced:     8,
		},
		WarmupMinutes:   8,
		CooldownMinutes: 5,
		TierMinutes: map[models.PriorityTier]int{
			models.TierPrimary:   8,
			models.TierAccessory: 5,
			models.TierIsolation: 3,
		},
		CompoundIntents: map[models.Intent]bool{
			models.IntentSquat:           true,
			models.IntentHinge:           true,
			models.IntentLunge:           true,
			models.IntentHorizontalPress: true,
			models.IntentVerticalPress:   true,
			models.IntentHorizontalPull:  true,
			models.IntentVerticalPull:    true,
		},
		WeightSteps: map[models.EquipmentClass]float64{
			models.EquipmentBarbell:    2.5,
			models.EquipmentDumbbells:  2.5,
			models.EquipmentMachine:    5.0,
			models.EquipmentCable:      2.5,
			models.EquipmentKettlebell: 4.0,
			models.EquipmentBodyweight: 0,
			models.EquipmentOther:      0,
		},
		DefaultLoads: map[models.Difficulty]map[models.EquipmentClass]float64{
			models.DifficultyBeginner: {
				models.EquipmentBarbell:    20,
				models.EquipmentDumbbells:  7.5,
				models.EquipmentMachine:    20,
				models.EquipmentCable:      10,
				models.EquipmentKettlebell: 12,
			},
			models.DifficultyIntermediate: {
				models.EquipmentBarbell:    40,
				models.EquipmentDumbbells:  12.5,
				models.EquipmentMachine:    35,
				models.EquipmentCable:      15,
				models.EquipmentKettlebell: 16,
			},
			models.DifficultyAdvanced: {
				models.EquipmentBarbell:    60,
				models.EquipmentDumbbells:  20,
				models.EquipmentMachine:    50,
				models.EquipmentCable:      20,
				models.EquipmentKettlebell: 24,
			},
		},
	}
}

// IsCompound reports whether any of the intents is a compound movement.
func (r *Rules) IsCompound(intents []models.Intent) bool {
	for _, in := range intents {
		if r.CompoundIntents[in] {
			return true
		}
	}
	return false
}

// TierFor assigns the priority tier from intent type and muscle breadth:
// compound movements spanning three or more muscles lead the session,
// narrower compounds support it, pure isolation work fills it out.
func (r *Rules) TierFor(ex models.Exercise) models.PriorityTier {
	if !r.IsCompound(ex.Intents) {
		return models.TierIsolation
	}
	if len(ex.PrimaryMuscles)+len(ex.SecondaryMuscles) >= 3 {
		return models.TierPrimary
	}
	return models.TierAccessory
}
