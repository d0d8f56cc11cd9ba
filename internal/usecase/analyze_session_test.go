package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/replaysight/replaysight/internal/adapter/pii"
	"github.com/replaysight/replaysight/internal/replay/semantic"
	"github.com/replaysight/replaysight/internal/replay/signals"
)

func newAnalyzeUseCase() *AnalyzeSessionUseCase {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewAnalyzeSessionUseCase(
		pii.NewRedactor(true),
		semantic.DefaultOptions(),
		signals.DefaultThresholds(),
		logger,
	)
}

func sessionRecords(t *testing.T, lines ...string) []json.RawMessage {
	t.Helper()
	records := make([]json.RawMessage, len(lines))
	for i, line := range lines {
		records[i] = json.RawMessage(line)
	}
	return records
}

func TestAnalyzeEmptySession(t *testing.T) {
	uc := newAnalyzeUseCase()

	result := uc.Analyze(context.Background(), nil)

	s := result.Session
	if s.EventCount != 0 {
		t.Errorf("eventCount = %d, want 0", s.EventCount)
	}
	if s.TotalDuration != "00:00" {
		t.Errorf("totalDuration = %q, want 00:00", s.TotalDuration)
	}
	flags := s.BehavioralSignals
	if flags.IsExploring || flags.IsFrustrated || flags.IsEngaged || flags.IsConfused || flags.IsMobile || flags.CompletedGoal {
		t.Errorf("expected all behavioral flags false, got %+v", flags)
	}
}

func TestAnalyzeFullPipeline(t *testing.T) {
	uc := newAnalyzeUseCase()

	records := sessionRecords(t,
		`{"type": 4, "timestamp": 1000, "data": {"href": "https://app.test/signup", "width": 1280, "height": 800}}`,
		`{"type": 2, "timestamp": 1010, "data": {"node": {"type": 2, "id": 2, "tagName": "button", "childNodes": [{"type": 3, "id": 3, "textContent": "Sign up"}]}}}`,
		`{"type": 3, "timestamp": 2000, "data": {"source": 2, "type": 2, "id": 2, "x": 1, "y": 1}}`,
		`{"type": 3, "timestamp": 2200, "data": {"source": 2, "type": 2, "id": 2, "x": 1, "y": 1}}`,
		`{"type": 3, "timestamp": 2400, "data": {"source": 2, "type": 2, "id": 2, "x": 1, "y": 1}}`,
		`not even json`,
	)

	result := uc.Analyze(context.Background(), records)

	if result.Dropped != 1 {
		t.Errorf("dropped = %d, want 1", result.Dropped)
	}
	if result.Decoded != 5 {
		t.Errorf("decoded = %d, want 5", result.Decoded)
	}
	if result.Session.Summary.RageClicks == 0 {
		t.Error("expected rage clicks to be detected")
	}
	if !result.Session.BehavioralSignals.IsFrustrated {
		t.Error("expected frustrated flag from rage clicks")
	}
	if result.Session.PageURL != "https://app.test/signup" {
		t.Errorf("pageUrl = %q", result.Session.PageURL)
	}
}

func TestAnalyzeBatchConcurrent(t *testing.T) {
	uc := newAnalyzeUseCase()

	sessions := make([][]json.RawMessage, 20)
	for i := range sessions {
		sessions[i] = sessionRecords(t,
			fmt.Sprintf(`{"type": 4, "timestamp": %d, "data": {"href": "https://app.test/%d"}}`, 1000+i, i),
			fmt.Sprintf(`{"type": 3, "timestamp": %d, "data": {"source": 3, "id": 1, "x": 0, "y": 100}}`, 2000+i),
		)
	}

	results := uc.AnalyzeBatch(context.Background(), sessions, 4)

	if len(results) != len(sessions) {
		t.Fatalf("expected %d results, got %d", len(sessions), len(results))
	}
	for i, r := range results {
		want := fmt.Sprintf("https://app.test/%d", i)
		if r.Session.PageURL != want {
			t.Errorf("result %d misaligned: pageUrl = %q, want %q", i, r.Session.PageURL, want)
		}
		if r.Session.Summary.Scrolls != 1 {
			t.Errorf("result %d: scrolls = %d, want 1", i, r.Session.Summary.Scrolls)
		}
	}
}

func TestAnalyzeBatchZeroLimit(t *testing.T) {
	uc := newAnalyzeUseCase()
	sessions := [][]json.RawMessage{
		sessionRecords(t, `{"type": 4, "timestamp": 1, "data": {"href": "https://a.test/"}}`),
	}

	results := uc.AnalyzeBatch(context.Background(), sessions, 0)
	if len(results) != 1 || results[0].Session.PageURL != "https://a.test/" {
		t.Errorf("unexpected results: %+v", results)
	}
}
