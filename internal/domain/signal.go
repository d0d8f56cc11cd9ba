package domain

import "context"

// SignalType names one kind of behavioral observation. Detectors may emit any
// of these; the scoring engine maps each to a base weight via its configured
// weight table.
type SignalType string

const (
	SignalPowerUserGoneSilent   SignalType = "power_user_gone_silent"
	SignalEngagementDecay       SignalType = "engagement_decay"
	SignalChurnRisk             SignalType = "churn_risk"
	SignalCancellationPageVisit SignalType = "cancellation_page_visit"
	SignalDowngradeAttempt      SignalType = "downgrade_attempt"
	SignalTrialExpiring         SignalType = "trial_expiring"
	SignalCheckoutAbandoned     SignalType = "checkout_abandoned"
	SignalOnboardingAbandoned   SignalType = "onboarding_abandoned"
	SignalSignupIncomplete      SignalType = "signup_incomplete"
	SignalFunnelDropoff         SignalType = "funnel_dropoff"
	SignalRepeatedError         SignalType = "repeated_error"
	SignalErrorSession          SignalType = "error_session"
	SignalIntegrationFailed     SignalType = "integration_failed"
	SignalFrustratedSession     SignalType = "frustrated_session"
	SignalRageClickSession      SignalType = "rage_click_session"
	SignalDeadClickSession      SignalType = "dead_click_session"
	SignalConfusedSession       SignalType = "confused_session"
	SignalFormAbandonment       SignalType = "form_abandonment"
	SignalMobileFriction        SignalType = "mobile_friction"
	SignalSlowPageExperience    SignalType = "slow_page_experience"
	SignalSearchNoResults       SignalType = "search_no_results"
	SignalDocsRabbitHole        SignalType = "docs_rabbit_hole"
	SignalSupportTicket         SignalType = "support_ticket"
	SignalNegativeFeedback      SignalType = "negative_feedback"
	SignalNPSDetractor          SignalType = "nps_detractor"
	SignalBillingPageVisit      SignalType = "billing_page_visit"
	SignalPricingPageBounce     SignalType = "pricing_page_bounce"
	SignalFeatureNotDiscovered  SignalType = "feature_not_discovered"
	SignalNewPowerUser          SignalType = "new_power_user"
	SignalInviteUnused          SignalType = "invite_unused"
	SignalLowIntentBrowse       SignalType = "low_intent_browse"
)

// SignalMetadata carries optional context about a signal. DaysAgo drives the
// recency multiplier; nil means "age unknown" and scores at the neutral
// multiplier.
type SignalMetadata struct {
	DaysAgo *float64       `json:"daysAgo,omitempty"`
	Extra   map[string]any `json:"extra,omitempty"`
}

// BehavioralSignal is one typed, weighted observation about one user. Weight
// zero means "use the configured table weight". Signals are immutable once
// produced.
type BehavioralSignal struct {
	Type        SignalType      `json:"type"`
	Description string          `json:"description"`
	Weight      float64         `json:"weight,omitempty"`
	Metadata    *SignalMetadata `json:"metadata,omitempty"`
}

// UserSignals is a detector's report for one user: identity fields plus the
// signals observed for them.
type UserSignals struct {
	DistinctID string             `json:"distinctId"`
	Email      string             `json:"email,omitempty"`
	Name       string             `json:"name,omitempty"`
	Properties map[string]any     `json:"properties,omitempty"`
	Signals    []BehavioralSignal `json:"signals"`
}

// UserSignalProfile accumulates all signals for one user across detectors.
// It is mutated only by the scoring engine's merge step.
type UserSignalProfile struct {
	DistinctID    string             `json:"distinctId"`
	Email         string             `json:"email,omitempty"`
	Name          string             `json:"name,omitempty"`
	Properties    map[string]any     `json:"properties,omitempty"`
	Signals       []BehavioralSignal `json:"signals"`
	PriorityScore float64            `json:"priorityScore"`
	SignalSummary string             `json:"signalSummary"`
}

// PriorityQueueEntry is one ranked candidate in the outreach queue.
type PriorityQueueEntry = UserSignalProfile

// Detector is the contract every independent signal detector implements: a
// pure function from its own data source to per-user signal reports. Detectors
// hold no shared state and are safe to run concurrently.
type Detector interface {
	Name() string
	Detect(ctx context.Context) ([]UserSignals, error)
}

// DetectorFailure records one detector that errored during a scoring run. Its
// contribution is absent from the queue; the run itself still succeeds.
type DetectorFailure struct {
	Detector string `json:"detector"`
	Error    string `json:"error"`
}

// ScoringRunResult is the outcome of one scoring run: the ranked queue plus
// partial-failure notes for any detectors that errored.
type ScoringRunResult struct {
	RunID    string               `json:"runId"`
	Queue    []PriorityQueueEntry `json:"queue"`
	Failures []DetectorFailure    `json:"failures,omitempty"`
}
