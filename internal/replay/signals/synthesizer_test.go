package signals

import (
	"testing"

	"github.com/replaysight/replaysight/internal/domain"
)

func TestSynthesize(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		name    string
		summary domain.SessionSummary
		want    domain.BehavioralFlags
	}{
		{
			name:    "empty summary yields all false",
			summary: domain.SessionSummary{},
			want:    domain.BehavioralFlags{},
		},
		{
			name:    "single rage click marks frustrated",
			summary: domain.SessionSummary{RageClicks: 1},
			want:    domain.BehavioralFlags{IsFrustrated: true},
		},
		{
			name:    "dead clicks below threshold do not mark frustrated",
			summary: domain.SessionSummary{DeadClicks: 2},
			want:    domain.BehavioralFlags{},
		},
		{
			name:    "dead clicks above threshold mark frustrated",
			summary: domain.SessionSummary{DeadClicks: 3},
			want:    domain.BehavioralFlags{IsFrustrated: true},
		},
		{
			name:    "network error marks frustrated",
			summary: domain.SessionSummary{NetworkErrors: 1},
			want:    domain.BehavioralFlags{IsFrustrated: true},
		},
		{
			name:    "abandoned input marks confused",
			summary: domain.SessionSummary{AbandonedInputs: 1},
			want:    domain.BehavioralFlags{IsConfused: true},
		},
		{
			name:    "hesitations above threshold mark confused",
			summary: domain.SessionSummary{Hesitations: 3},
			want:    domain.BehavioralFlags{IsConfused: true},
		},
		{
			name:    "deep scroll marks exploring",
			summary: domain.SessionSummary{MaxScrollDepth: 60},
			want:    domain.BehavioralFlags{IsExploring: true},
		},
		{
			name:    "touches mark mobile",
			summary: domain.SessionSummary{Touches: 1},
			want:    domain.BehavioralFlags{IsMobile: true},
		},
		{
			name:    "form submission marks goal completed",
			summary: domain.SessionSummary{FormSubmissions: 1},
			want:    domain.BehavioralFlags{CompletedGoal: true},
		},
		{
			name:    "clicks and inputs mark engaged",
			summary: domain.SessionSummary{Clicks: 6, Inputs: 2},
			want:    domain.BehavioralFlags{IsEngaged: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Synthesize(tt.summary, th); got != tt.want {
				t.Errorf("Synthesize() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSynthesizeDeterministic(t *testing.T) {
	th := DefaultThresholds()
	summary := domain.SessionSummary{RageClicks: 2, Scrolls: 10, Touches: 1}
	first := Synthesize(summary, th)
	for i := 0; i < 5; i++ {
		if got := Synthesize(summary, th); got != first {
			t.Fatalf("synthesis not deterministic: %+v vs %+v", got, first)
		}
	}
}
