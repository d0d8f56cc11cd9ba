// Package scoring merges independently detected behavioral signals into one
// weighted, recency-adjusted priority score per user and ranks the result.
// The merge is idempotent and commutative: the same signal set produces the
// same profile regardless of how it was split across detector reports.
package scoring

import (
	"fmt"
	"sort"
	"strings"

	"github.com/replaysight/replaysight/internal/domain"
)

const (
	maxScore = 100

	// Diversity multipliers reward users exhibiting several distinct
	// signal types.
	tripleTypeMultiplier = 1.3
	doubleTypeMultiplier = 1.15

	summaryDescriptions = 3
)

// Engine computes priority scores from signal sets. The weight table and
// recency curve are injected so deployments (and tests) can retune them.
type Engine struct {
	weights WeightTable
	recency []RecencyBreakpoint
}

// NewEngine creates an Engine. Nil arguments fall back to the shipped
// defaults.
func NewEngine(weights WeightTable, recency []RecencyBreakpoint) *Engine {
	if weights == nil {
		weights = DefaultWeightTable()
	}
	if recency == nil {
		recency = DefaultRecencyBreakpoints()
	}
	return &Engine{weights: weights, recency: recency}
}

// Merge folds detector reports into an accumulator of per-user profiles.
// Signals are deduplicated by (type, description); identity fields keep the
// first non-empty value encountered. Scores and summaries are recomputed from
// the merged signal set, which makes repeated merging of the same report a
// no-op. Merge performs read-modify-write per user and must not be called
// concurrently on the same accumulator.
func (e *Engine) Merge(acc map[string]*domain.UserSignalProfile, reports ...[]domain.UserSignals) {
	for _, report := range reports {
		for _, user := range report {
			if user.DistinctID == "" {
				continue
			}
			profile := acc[user.DistinctID]
			if profile == nil {
				profile = &domain.UserSignalProfile{DistinctID: user.DistinctID}
				acc[user.DistinctID] = profile
			}

			if profile.Email == "" {
				profile.Email = user.Email
			}
			if profile.Name == "" {
				profile.Name = user.Name
			}
			for k, v := range user.Properties {
				if profile.Properties == nil {
					profile.Properties = make(map[string]any)
				}
				if _, exists := profile.Properties[k]; !exists {
					profile.Properties[k] = v
				}
			}

			profile.Signals = e.dedupe(append(profile.Signals, user.Signals...))
			profile.PriorityScore = e.Score(profile.Signals)
			profile.SignalSummary = summarize(profile.Signals)
		}
	}
}

// Score computes the clamped [0,100] priority score for one signal set.
func (e *Engine) Score(signals []domain.BehavioralSignal) float64 {
	if len(signals) == 0 {
		return 0
	}

	total := 0.0
	types := make(map[domain.SignalType]struct{}, len(signals))
	for _, s := range signals {
		total += e.effectiveWeight(s) * e.recencyMultiplier(s)
		types[s.Type] = struct{}{}
	}

	switch {
	case len(types) >= 3:
		total *= tripleTypeMultiplier
	case len(types) == 2:
		total *= doubleTypeMultiplier
	}

	if total > maxScore {
		return maxScore
	}
	if total < 0 {
		return 0
	}
	return total
}

// Rank turns the accumulator into the final queue: descending by score, an
// optional minimum-score filter, truncated to limit (0 means no limit).
func (e *Engine) Rank(acc map[string]*domain.UserSignalProfile, minScore float64, limit int) []domain.PriorityQueueEntry {
	queue := make([]domain.PriorityQueueEntry, 0, len(acc))
	for _, profile := range acc {
		if profile.PriorityScore < minScore {
			continue
		}
		queue = append(queue, *profile)
	}

	sort.Slice(queue, func(i, j int) bool {
		if queue[i].PriorityScore != queue[j].PriorityScore {
			return queue[i].PriorityScore > queue[j].PriorityScore
		}
		return queue[i].DistinctID < queue[j].DistinctID
	})

	if limit > 0 && len(queue) > limit {
		queue = queue[:limit]
	}
	return queue
}

// BuildQueue is the one-shot path: merge all reports into a fresh accumulator
// and rank it.
func (e *Engine) BuildQueue(reports [][]domain.UserSignals, minScore float64, limit int) []domain.PriorityQueueEntry {
	acc := make(map[string]*domain.UserSignalProfile)
	for _, report := range reports {
		e.Merge(acc, report)
	}
	return e.Rank(acc, minScore, limit)
}

func (e *Engine) effectiveWeight(s domain.BehavioralSignal) float64 {
	if s.Weight > 0 {
		return s.Weight
	}
	if w, ok := e.weights[s.Type]; ok {
		return w
	}
	return defaultUnknownWeight
}

func (e *Engine) recencyMultiplier(s domain.BehavioralSignal) float64 {
	if s.Metadata == nil || s.Metadata.DaysAgo == nil {
		return 1.0
	}
	age := *s.Metadata.DaysAgo
	for _, bp := range e.recency {
		if age <= bp.MaxDaysAgo {
			return bp.Multiplier
		}
	}
	return FallbackMultiplier
}

// dedupe drops duplicate (type, description) pairs, then orders the set
// deterministically (heaviest base weight first) so summaries are stable no
// matter how reports were split across detectors.
func (e *Engine) dedupe(signals []domain.BehavioralSignal) []domain.BehavioralSignal {
	seen := make(map[string]struct{}, len(signals))
	out := signals[:0]
	for _, s := range signals {
		key := string(s.Type) + "\x00" + s.Description
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}

	sort.SliceStable(out, func(i, j int) bool {
		wi, wj := e.effectiveWeight(out[i]), e.effectiveWeight(out[j])
		if wi != wj {
			return wi > wj
		}
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].Description < out[j].Description
	})
	return out
}

// summarize joins the first few signal descriptions into the human-readable
// summary shown in the queue.
func summarize(signals []domain.BehavioralSignal) string {
	if len(signals) == 0 {
		return ""
	}
	n := summaryDescriptions
	if len(signals) < n {
		n = len(signals)
	}
	parts := make([]string, 0, n)
	for _, s := range signals[:n] {
		parts = append(parts, s.Description)
	}
	summary := strings.Join(parts, ", ")
	if rest := len(signals) - n; rest > 0 {
		summary += fmt.Sprintf(" +%d more", rest)
	}
	return summary
}
