package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/replaysight/replaysight/internal/adapter/api"
	"github.com/replaysight/replaysight/internal/adapter/metrics"
	"github.com/replaysight/replaysight/internal/adapter/pii"
	"github.com/replaysight/replaysight/internal/domain"
	"github.com/replaysight/replaysight/internal/pkg/config"
	"github.com/replaysight/replaysight/internal/replay/semantic"
	"github.com/replaysight/replaysight/internal/replay/signals"
	"github.com/replaysight/replaysight/internal/scoring"
	"github.com/replaysight/replaysight/internal/usecase"
)

var testMetrics = metrics.NewAnalyzerMetrics()

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{
		MaxBodySize:    10 << 20,
		SessionWorkers: 4,
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
	}

	analyzeUC := usecase.NewAnalyzeSessionUseCase(
		pii.NewRedactor(true),
		semantic.DefaultOptions(),
		signals.DefaultThresholds(),
		logger,
	)
	scoreUC := usecase.NewScoreUsersUseCase(scoring.NewEngine(nil, nil), nil, logger)

	srv := httptest.NewServer(api.NewRouter(cfg, logger, analyzeUC, scoreUC, testMetrics))
	t.Cleanup(srv.Close)
	return srv
}

// frustratedSessionBody builds a raw record stream in which a user rage
// clicks an unresponsive button and hits a console error.
func frustratedSessionBody() string {
	records := []string{
		`{"type": 4, "timestamp": 1000, "data": {"href": "https://shop.test/checkout", "title": "Checkout", "width": 1280, "height": 800}}`,
		`{"type": 2, "timestamp": 1100, "data": {"node": {"type": 2, "id": 1, "tagName": "body", "childNodes": [
			{"type": 2, "id": 2, "tagName": "button", "childNodes": [{"type": 3, "id": 3, "textContent": "Place order"}]}
		]}}}`,
		// Three clicks inside the rage window, none producing a reaction.
		`{"type": 3, "timestamp": 2000, "data": {"source": 2, "type": 2, "id": 2, "x": 100, "y": 200}}`,
		`{"type": 3, "timestamp": 2500, "data": {"source": 2, "type": 2, "id": 2, "x": 101, "y": 201}}`,
		`{"type": 3, "timestamp": 3000, "data": {"source": 2, "type": 2, "id": 2, "x": 102, "y": 202}}`,
		`{"type": 3, "timestamp": 9000, "data": {"source": 11, "level": "error", "payload": ["TypeError: submitOrder is not a function"]}}`,
	}
	var buf bytes.Buffer
	buf.WriteString(`{"events": [`)
	for i, r := range records {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(r)
	}
	buf.WriteString(`]}`)
	return buf.String()
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func TestAnalyzeToQueueFlow(t *testing.T) {
	srv := newTestServer(t)

	// 1. Analyze the session over HTTP.
	resp := postJSON(t, srv.URL+"/v1/sessions/analyze", frustratedSessionBody())
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("analyze status = %d, want 200", resp.StatusCode)
	}

	var session domain.SemanticSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		t.Fatalf("decode session: %v", err)
	}

	if session.PageURL != "https://shop.test/checkout" {
		t.Errorf("pageUrl = %q", session.PageURL)
	}
	if session.Summary.RageClicks == 0 {
		t.Error("expected rage clicks in summary")
	}
	if session.Summary.ConsoleErrors != 1 {
		t.Errorf("consoleErrors = %d, want 1", session.Summary.ConsoleErrors)
	}
	if !session.BehavioralSignals.IsFrustrated {
		t.Error("expected the frustrated flag")
	}

	// 2. Feed the analyzed session through the replay detector.
	detector := signals.NewSessionDetector(map[string][]domain.SemanticSession{
		"user-42": {session},
	})
	reports, err := detector.Detect(context.Background())
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(reports) != 1 {
		t.Fatalf("expected 1 user report, got %d", len(reports))
	}

	// 3. Build the priority queue from the detector report over HTTP.
	scoreBody, err := json.Marshal(map[string]any{
		"reports": [][]domain.UserSignals{reports},
	})
	if err != nil {
		t.Fatalf("marshal score request: %v", err)
	}

	scoreResp := postJSON(t, srv.URL+"/v1/scoring/run", string(scoreBody))
	defer scoreResp.Body.Close()
	if scoreResp.StatusCode != http.StatusOK {
		t.Fatalf("score status = %d, want 200", scoreResp.StatusCode)
	}

	var scored struct {
		RunID string                      `json:"runId"`
		Queue []domain.PriorityQueueEntry `json:"queue"`
	}
	if err := json.NewDecoder(scoreResp.Body).Decode(&scored); err != nil {
		t.Fatalf("decode queue: %v", err)
	}
	if scored.RunID == "" {
		t.Error("expected a run id")
	}
	if len(scored.Queue) != 1 {
		t.Fatalf("expected 1 queue entry, got %d", len(scored.Queue))
	}
	entry := scored.Queue[0]
	if entry.DistinctID != "user-42" {
		t.Errorf("distinctId = %q", entry.DistinctID)
	}
	if entry.PriorityScore <= 0 {
		t.Errorf("priorityScore = %v, want > 0", entry.PriorityScore)
	}
	if len(entry.Signals) < 3 {
		t.Errorf("expected frustrated, rage, and error signals, got %d", len(entry.Signals))
	}
	if entry.SignalSummary == "" {
		t.Error("expected a signal summary")
	}
}

func TestBatchAnalyzeFlow(t *testing.T) {
	srv := newTestServer(t)

	var buf bytes.Buffer
	buf.WriteString(`{"sessions": [`)
	for i := 0; i < 3; i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, `{"events": [{"type": 4, "timestamp": 1000, "data": {"href": "https://shop.test/p/%d"}}]}`, i)
	}
	buf.WriteString(`]}`)

	resp := postJSON(t, srv.URL+"/v1/sessions/analyze-batch", buf.String())
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("batch status = %d, want 200", resp.StatusCode)
	}

	var sessions []domain.SemanticSession
	if err := json.NewDecoder(resp.Body).Decode(&sessions); err != nil {
		t.Fatalf("decode sessions: %v", err)
	}
	if len(sessions) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(sessions))
	}
	for i, s := range sessions {
		want := fmt.Sprintf("https://shop.test/p/%d", i)
		if s.PageURL != want {
			t.Errorf("session %d pageUrl = %q, want %q", i, s.PageURL, want)
		}
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health status = %d, want 200", resp.StatusCode)
	}
}
