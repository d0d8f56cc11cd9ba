package scoring

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/replaysight/replaysight/internal/domain"
)

// WeightTable maps every known signal type to its base weight. It is plain
// data: edit the table (or ship a YAML override) to retune a deployment.
type WeightTable map[domain.SignalType]float64

// RecencyBreakpoint pairs a maximum signal age with the multiplier applied to
// signals at most that old. Breakpoints are evaluated in ascending MaxDaysAgo
// order; ages beyond the last breakpoint use FallbackMultiplier.
type RecencyBreakpoint struct {
	MaxDaysAgo float64 `yaml:"max_days_ago" json:"maxDaysAgo"`
	Multiplier float64 `yaml:"multiplier" json:"multiplier"`
}

// FallbackMultiplier applies to signals older than every breakpoint.
const FallbackMultiplier = 0.5

// defaultUnknownWeight is used when a signal type is absent from the table.
const defaultUnknownWeight = 5

// DefaultWeightTable returns the shipped weight table. Types tied to
// irreversible or urgent decline carry the highest weights; weak-intent
// browsing carries the lowest.
func DefaultWeightTable() WeightTable {
	return WeightTable{
		domain.SignalPowerUserGoneSilent:   60,
		domain.SignalCancellationPageVisit: 55,
		domain.SignalChurnRisk:             52,
		domain.SignalDowngradeAttempt:      50,
		domain.SignalEngagementDecay:       45,
		domain.SignalTrialExpiring:         42,
		domain.SignalCheckoutAbandoned:     40,
		domain.SignalRepeatedError:         38,
		domain.SignalOnboardingAbandoned:   36,
		domain.SignalIntegrationFailed:     35,
		domain.SignalNPSDetractor:          34,
		domain.SignalSignupIncomplete:      32,
		domain.SignalFunnelDropoff:         30,
		domain.SignalNegativeFeedback:      30,
		domain.SignalSupportTicket:         28,
		domain.SignalErrorSession:          26,
		domain.SignalFrustratedSession:     25,
		domain.SignalRageClickSession:      24,
		domain.SignalFormAbandonment:       22,
		domain.SignalDeadClickSession:      20,
		domain.SignalConfusedSession:       18,
		domain.SignalMobileFriction:        16,
		domain.SignalSlowPageExperience:    15,
		domain.SignalPricingPageBounce:     14,
		domain.SignalSearchNoResults:       12,
		domain.SignalDocsRabbitHole:        10,
		domain.SignalFeatureNotDiscovered:  10,
		domain.SignalBillingPageVisit:      8,
		domain.SignalInviteUnused:          6,
		domain.SignalNewPowerUser:          4,
		domain.SignalLowIntentBrowse:       2,
	}
}

// DefaultRecencyBreakpoints returns the shipped recency curve: fresh signals
// are boosted, stale ones decay.
func DefaultRecencyBreakpoints() []RecencyBreakpoint {
	return []RecencyBreakpoint{
		{MaxDaysAgo: 1, Multiplier: 1.5},
		{MaxDaysAgo: 3, Multiplier: 1.3},
		{MaxDaysAgo: 7, Multiplier: 1.1},
		{MaxDaysAgo: 14, Multiplier: 1.0},
		{MaxDaysAgo: 30, Multiplier: 0.8},
	}
}

type weightConfigFile struct {
	Weights map[string]float64  `yaml:"weights"`
	Recency []RecencyBreakpoint `yaml:"recency"`
}

// LoadWeightConfig reads a YAML override file. Either section may be omitted;
// omitted sections fall back to the shipped defaults. Weight overrides are
// applied on top of the default table so a file only needs to list the types
// it changes.
func LoadWeightConfig(path string) (WeightTable, []RecencyBreakpoint, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read weight config %s: %w", path, err)
	}

	var cfg weightConfigFile
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, nil, fmt.Errorf("parse weight config %s: %w", path, err)
	}

	table := DefaultWeightTable()
	for name, weight := range cfg.Weights {
		if weight < 0 {
			return nil, nil, fmt.Errorf("weight for %q is negative", name)
		}
		table[domain.SignalType(name)] = weight
	}

	recency := cfg.Recency
	if len(recency) == 0 {
		recency = DefaultRecencyBreakpoints()
	} else {
		sort.Slice(recency, func(i, j int) bool {
			return recency[i].MaxDaysAgo < recency[j].MaxDaysAgo
		})
	}

	return table, recency, nil
}
