package engine

import (
	"fmt"
	"math"

	"forgefit/internal/models"
)

// Autoregulation rule ids, in evaluation priority order.
const (
	RuleFirstSetVeryHighRPE = "FIRST_SET_VERY_HIGH_RPE"
	RuleFirstSetHighRPE     = "FIRST_SET_HIGH_RPE"
	RuleFirstSetBaseline    = "FIRST_SET_BASELINE"
	RuleFatigueDetected     = "FATIGUE_DETECTED"
	RuleRisingRPETrend      = "RISING_RPE_TREND"
	RuleVeryHighRPE         = "VERY_HIGH_RPE"
	RuleHighRPE             = "HIGH_RPE"
	RuleLargeRepShortfall   = "LARGE_REP_SHORTFALL"
	RuleRepShortfall        = "REP_SHORTFALL"
	RuleProgression         = "PROGRESSION_OPPORTUNITY"
	RuleNoAdjustment        = "NO_ADJUSTMENT"
)

// AutoregulationInput describes the set that was just logged.
type AutoregulationInput struct {
	SetIndex   int
	TargetReps int
	Weight     float64
	Reps       int
	RPE        *float64
	// PriorSets are this exercise's earlier logged sets, oldest first.
	PriorSets []models.SetLogEntry
	// Bodyweight exercises get rep-target reductions instead of weight
	// multipliers, since their load cannot go below zero.
	Bodyweight bool
}

// AutoregulationOutcome reports the rule that fired. Adjustment is nil for
// the no-op branches. AdjustedWeight previews the input weight with the
// adjustment applied (rounded to 0.5, clamped at 0).
type AutoregulationOutcome struct {
	Adjustment     *models.AutoregulationAdjustment
	RuleID         string
	Message        string
	Confidence     float64
	AdjustedWeight *float64
	AdjustedReps   *int
}

// ApplyAutoregulation evaluates the rule bank in fixed priority order and
// returns the first matching outcome. It is pure: same input, same answer.
// A missing RPE degrades to the baseline no-op rather than failing.
func ApplyAutoregulation(in AutoregulationInput) AutoregulationOutcome {
	if in.RPE == nil {
		return noop(RuleFirstSetBaseline, "No RPE reported; keeping the plan as written.")
	}
	rpe := *in.RPE

	// First set with no prior data: only the RPE-based first-set rules.
	if len(in.PriorSets) == 0 {
		switch {
		case rpe >= 10:
			return adjust(in, RuleFirstSetVeryHighRPE, 0.9, nil, 0.9,
				"First set at RPE 10; dropping weight 10% before fatigue compounds.")
		case rpe >= 9:
			return adjust(in, RuleFirstSetHighRPE, 0.95, nil, 0.8,
				"First set at RPE 9+; easing weight 5%.")
		default:
			return noop(RuleFirstSetBaseline, "First set logged; no adjustment needed.")
		}
	}

	// Accumulated fatigue: three or more sets at RPE 9+, counting this one.
	highRPECount := 1
	if rpe < 9 {
		highRPECount = 0
	}
	for _, prior := range in.PriorSets {
		if prior.RPE != nil && *prior.RPE >= 9 {
			highRPECount++
		}
	}
	if highRPECount >= 3 {
		return adjustSkip(RuleFatigueDetected, 0.9,
			fmt.Sprintf("%d sets at RPE 9 or above; skipping the remaining sets of this exercise.", highRPECount))
	}
	if lastRPE, ok := lastReportedRPE(in.PriorSets); ok && lastRPE < rpe && rpe >= 8 {
		return adjust(in, RuleRisingRPETrend, 0.95, nil, 0.75,
			fmt.Sprintf("RPE climbing (%.1f → %.1f); easing weight 5%% to hold the trend.", lastRPE, rpe))
	}

	// Plain high-exertion rules.
	if rpe >= 10 {
		repDelta := -2
		return adjust(in, RuleVeryHighRPE, 0.9, &repDelta, 0.85,
			"RPE 10; dropping weight 10% and target reps by 2.")
	}
	if rpe >= 9 {
		return adjust(in, RuleHighRPE, 0.95, nil, 0.8,
			"RPE 9+; easing weight 5%.")
	}

	// Rep shortfall against the planned target.
	if in.TargetReps > 0 {
		shortfall := float64(in.TargetReps-in.Reps) / float64(in.TargetReps)
		if shortfall >= 0.3 {
			repDelta := -1
			return adjust(in, RuleLargeRepShortfall, 0.9, &repDelta, 0.85,
				fmt.Sprintf("Only %d of %d target reps; reducing weight 10%% and the target by 1.", in.Reps, in.TargetReps))
		}
		if shortfall >= 0.2 {
			return adjust(in, RuleRepShortfall, 0.95, nil, 0.75,
				fmt.Sprintf("%d of %d target reps; reducing weight 5%%.", in.Reps, in.TargetReps))
		}
	}

	// Advisory headroom check, deliberately lower confidence.
	if in.Reps >= in.TargetReps && rpe <= 7 {
		if in.Reps >= in.TargetReps+2 && rpe <= 6 {
			return adjust(in, RuleProgression, 1.025, nil, 0.5,
				fmt.Sprintf("Beat target by %d reps at RPE %.1f; room for 2.5%% more weight.", in.Reps-in.TargetReps, rpe))
		}
	}

	return noop(RuleNoAdjustment, "Performance on target; no adjustment.")
}

func noop(ruleID, message string) AutoregulationOutcome {
	return AutoregulationOutcome{RuleID: ruleID, Message: message, Confidence: 1}
}

func adjustSkip(ruleID string, confidence float64, message string) AutoregulationOutcome {
	return AutoregulationOutcome{
		Adjustment: &models.AutoregulationAdjustment{
			SkipRemaining: true,
			RuleID:        ruleID,
			Message:       message,
			Confidence:    confidence,
		},
		RuleID:     ruleID,
		Message:    message,
		Confidence: confidence,
	}
}

func adjust(in AutoregulationInput, ruleID string, multiplier float64, repDelta *int, confidence float64, message string) AutoregulationOutcome {
	adj := &models.AutoregulationAdjustment{
		RuleID:     ruleID,
		Message:    message,
		Confidence: confidence,
	}
	if in.Bodyweight && multiplier < 1 {
		// No load to reduce: translate the weight cut into a rep-target cut.
		if repDelta == nil {
			delta := -1
			if multiplier <= 0.9 {
				delta = -2
			}
			repDelta = &delta
		}
		adj.RepDelta = repDelta
	} else {
		m := multiplier
		adj.WeightMultiplier = &m
		adj.RepDelta = repDelta
	}

	out := AutoregulationOutcome{
		Adjustment: adj,
		RuleID:     ruleID,
		Message:    message,
		Confidence: confidence,
	}
	if adj.WeightMultiplier != nil {
		w := roundToHalf(in.Weight * *adj.WeightMultiplier)
		if w < 0 {
			w = 0
		}
		out.AdjustedWeight = &w
	}
	if adj.RepDelta != nil {
		reps := in.TargetReps + *adj.RepDelta
		if reps < 1 {
			reps = 1
		}
		out.AdjustedReps = &reps
	}
	return out
}

func lastReportedRPE(priors []models.SetLogEntry) (float64, bool) {
	for i := len(priors) - 1; i >= 0; i-- {
		if priors[i].RPE != nil {
			return *priors[i].RPE, true
		}
	}
	return 0, false
}

func roundToHalf(w float64) float64 {
	return math.Round(w*2) / 2
}

// FatigueBand labels a fatigue score.
type FatigueBand string

const (
	FatigueLow      FatigueBand = "low"
	FatigueModerate FatigueBand = "moderate"
	FatigueHigh     FatigueBand = "high"
)

// FatigueReport is the aggregated session fatigue picture.
type FatigueReport struct {
	Score float64
	Band  FatigueBand
}

// DetectSessionFatigue aggregates the last five logged sets into a 0–1
// fatigue score: average RPE carries half the weight, the high-RPE ratio
// under a third, and rising-RPE runs the rest.
func DetectSessionFatigue(logs []models.SetLogEntry) FatigueReport {
	var rpes []float64
	for _, entry := range logs {
		if entry.RPE != nil {
			rpes = append(rpes, *entry.RPE)
		}
	}
	if len(rpes) > 5 {
		rpes = rpes[len(rpes)-5:]
	}
	if len(rpes) == 0 {
		return FatigueReport{Score: 0, Band: FatigueLow}
	}

	var sum float64
	var high int
	var rises int
	for i, rpe := range rpes {
		sum += rpe
		if rpe >= 9 {
			high++
		}
		if i > 0 && rpe > rpes[i-1] {
			rises++
		}
	}
	avg := sum / float64(len(rpes))
	avgNorm := clamp01((avg - 6) / 4)
	highRatio := float64(high) / float64(len(rpes))
	trend := math.Min(1, float64(rises)/2)

	score := 0.5*avgNorm + 0.3*highRatio + 0.2*trend
	band := FatigueLow
	switch {
	case score > 0.7:
		band = FatigueHigh
	case score >= 0.4:
		band = FatigueModerate
	}
	return FatigueReport{Score: score, Band: band}
}

// AdjustedRestTime extends rest after grinding sets and trims it after
// easy ones, never below 45 seconds.
func AdjustedRestTime(baseSeconds int, rpe *float64) int {
	if rpe == nil {
		return baseSeconds
	}
	switch {
	case *rpe >= 10:
		return baseSeconds + 60
	case *rpe >= 9:
		return baseSeconds + 30
	case *rpe <= 6:
		rest := baseSeconds - 15
		if rest < 45 {
			rest = 45
		}
		return rest
	default:
		return baseSeconds
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
