package signals

import (
	"context"
	"fmt"

	"github.com/replaysight/replaysight/internal/domain"
)

// SessionDetector converts analyzed sessions into behavioral signals, one
// detector among the many independent ones feeding the scoring engine. It is
// a pure function of the sessions it was built with.
type SessionDetector struct {
	sessions map[string][]domain.SemanticSession // keyed by user id
}

// NewSessionDetector wraps a batch of per-user analyzed sessions.
func NewSessionDetector(sessions map[string][]domain.SemanticSession) *SessionDetector {
	return &SessionDetector{sessions: sessions}
}

func (d *SessionDetector) Name() string { return "session-replay" }

// Detect emits one signal per behavioral observation across each user's
// sessions. Duplicate observations collapse later in the scoring merge.
func (d *SessionDetector) Detect(ctx context.Context) ([]domain.UserSignals, error) {
	out := make([]domain.UserSignals, 0, len(d.sessions))
	for userID, sessions := range d.sessions {
		var signals []domain.BehavioralSignal
		for _, s := range sessions {
			signals = append(signals, sessionSignals(s)...)
		}
		if len(signals) == 0 {
			continue
		}
		out = append(out, domain.UserSignals{DistinctID: userID, Signals: signals})
	}
	return out, nil
}

func sessionSignals(s domain.SemanticSession) []domain.BehavioralSignal {
	var signals []domain.BehavioralSignal
	add := func(t domain.SignalType, desc string) {
		signals = append(signals, domain.BehavioralSignal{Type: t, Description: desc})
	}

	flags := s.BehavioralSignals
	if flags.IsFrustrated {
		add(domain.SignalFrustratedSession, fmt.Sprintf("frustrated session on %s", s.PageURL))
	}
	if flags.IsConfused {
		add(domain.SignalConfusedSession, fmt.Sprintf("confused session on %s", s.PageURL))
	}
	if s.Summary.RageClicks > 0 {
		add(domain.SignalRageClickSession, fmt.Sprintf("%d rage clicks on %s", s.Summary.RageClicks, s.PageURL))
	}
	if s.Summary.DeadClicks > 1 {
		add(domain.SignalDeadClickSession, fmt.Sprintf("%d unresponsive clicks on %s", s.Summary.DeadClicks, s.PageURL))
	}
	if s.Summary.ConsoleErrors > 0 || s.Summary.NetworkErrors > 0 {
		add(domain.SignalErrorSession, fmt.Sprintf("%d errors encountered on %s",
			s.Summary.ConsoleErrors+s.Summary.NetworkErrors, s.PageURL))
	}
	if flags.IsMobile && flags.IsFrustrated {
		add(domain.SignalMobileFriction, fmt.Sprintf("mobile friction on %s", s.PageURL))
	}
	if s.Summary.AbandonedInputs > 0 && !flags.CompletedGoal {
		add(domain.SignalFormAbandonment, fmt.Sprintf("abandoned form fields on %s", s.PageURL))
	}
	return signals
}
