// Package signals derives session-level behavioral booleans from the summary
// counters. Synthesis is a pure function: the same summary always yields the
// same flags.
package signals

import "github.com/replaysight/replaysight/internal/domain"

// Thresholds tune the counter rules behind each behavioral flag. The zero
// value is not usable; start from DefaultThresholds.
type Thresholds struct {
	ExploringScrollDepth   int
	ExploringScrolls       int
	FrustratedDeadClicks   int
	FrustratedRapidScrolls int
	EngagedClicks          int
	EngagedInputs          int
	ConfusedHesitations    int
	ConfusedReversals      int
	GoalFormSubmissions    int
}

// DefaultThresholds returns the shipped rule set.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ExploringScrollDepth:   50,
		ExploringScrolls:       5,
		FrustratedDeadClicks:   2,
		FrustratedRapidScrolls: 3,
		EngagedClicks:          5,
		EngagedInputs:          2,
		ConfusedHesitations:    2,
		ConfusedReversals:      5,
		GoalFormSubmissions:    1,
	}
}

// Synthesize maps a session summary to the six behavioral flags.
func Synthesize(s domain.SessionSummary, t Thresholds) domain.BehavioralFlags {
	return domain.BehavioralFlags{
		IsExploring: s.MaxScrollDepth >= t.ExploringScrollDepth ||
			s.Scrolls > t.ExploringScrolls,

		IsFrustrated: s.RageClicks > 0 ||
			s.DeadClicks > t.FrustratedDeadClicks ||
			s.RapidScrolls > t.FrustratedRapidScrolls ||
			s.ConsoleErrors > 0 ||
			s.NetworkErrors > 0,

		IsEngaged: s.Clicks >= t.EngagedClicks ||
			s.Inputs >= t.EngagedInputs ||
			s.MediaInteractions > 0,

		IsConfused: s.Hesitations > t.ConfusedHesitations ||
			s.ScrollReversals > t.ConfusedReversals ||
			s.AbandonedInputs >= 1,

		IsMobile: s.Touches > 0,

		CompletedGoal: s.FormSubmissions >= t.GoalFormSubmissions,
	}
}
