package models

import "time"

// ProgramDayPlan is one training day inside the frozen block: a label, the
// intents it covers and the session template to build from on that day.
type ProgramDayPlan struct {
	Label      string   `json:"label"`
	TemplateID string   `json:"templateId"`
	Intents    []Intent `json:"intents"`
}

// WeekPlan maps canonical weekdays (1=Monday .. 7=Sunday) to day plans.
type WeekPlan struct {
	Days map[int]ProgramDayPlan `json:"days"`
}

// FourWeekProgramPlan is the frozen periodization block. All four weeks
// share the same weekday→day-plan mapping; progression happens through
// loading suggestions at generation time, not by mutating the block.
type FourWeekProgramPlan struct {
	Weekdays      []int       `json:"weekdays"`
	Weeks         [4]WeekPlan `json:"weeks"`
	GroupingStyle string      `json:"groupingStyle"`
	DominantGoal  Goal        `json:"dominantGoal"`
	SecondaryGoal Goal        `json:"secondaryGoal,omitempty"`
	Warnings      []string    `json:"warnings,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
}

// ProgramDay is a concrete calendar date resolved from the block.
type ProgramDay struct {
	Week       int    `json:"week"`    // 1..4
	Weekday    int    `json:"weekday"` // 1=Monday..7
	Date       string `json:"date"`    // local YYYY-MM-DD
	TemplateID string `json:"templateId"`
	Label      string `json:"label"`
}
