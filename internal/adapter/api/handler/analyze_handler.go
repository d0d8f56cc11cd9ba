package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/replaysight/replaysight/internal/adapter/metrics"
	"github.com/replaysight/replaysight/internal/usecase"
)

// AnalyzeRequest is the push payload for one session's raw replay records.
type AnalyzeRequest struct {
	Events []json.RawMessage `json:"events"`
}

// BatchAnalyzeRequest carries many sessions to analyze concurrently.
type BatchAnalyzeRequest struct {
	Sessions []AnalyzeRequest `json:"sessions"`
}

// AnalyzeHandler serves session analysis requests.
type AnalyzeHandler struct {
	useCase     *usecase.AnalyzeSessionUseCase
	logger      *slog.Logger
	metrics     *metrics.AnalyzerMetrics
	maxBodySize int64
	workers     int
}

// NewAnalyzeHandler creates an AnalyzeHandler.
func NewAnalyzeHandler(uc *usecase.AnalyzeSessionUseCase, logger *slog.Logger, m *metrics.AnalyzerMetrics, maxBodySize int64, workers int) *AnalyzeHandler {
	return &AnalyzeHandler{
		useCase:     uc,
		logger:      logger,
		metrics:     m,
		maxBodySize: maxBodySize,
		workers:     workers,
	}
}

// HandleSession processes a single session and responds with its
// SemanticSession.
func (h *AnalyzeHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)

	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.metrics.SessionsTotal.WithLabelValues("error_parse").Inc()
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	start := time.Now()
	result := h.useCase.Analyze(r.Context(), req.Events)
	h.observe(result, time.Since(start))

	writeJSON(w, h.logger, result.Session)
}

// HandleBatch processes many sessions under the configured worker limit and
// responds with positionally aligned SemanticSessions.
func (h *AnalyzeHandler) HandleBatch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)

	var req BatchAnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.metrics.SessionsTotal.WithLabelValues("error_parse").Inc()
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	sessions := make([][]json.RawMessage, len(req.Sessions))
	for i, s := range req.Sessions {
		sessions[i] = s.Events
	}

	start := time.Now()
	results := h.useCase.AnalyzeBatch(r.Context(), sessions, h.workers)
	elapsed := time.Since(start)

	out := make([]any, len(results))
	for i, res := range results {
		h.observe(res, elapsed/time.Duration(maxInt(len(results), 1)))
		out[i] = res.Session
	}

	writeJSON(w, h.logger, out)
}

func (h *AnalyzeHandler) observe(res usecase.AnalyzeResult, elapsed time.Duration) {
	status := "ok"
	if res.Session.EventCount == 0 {
		status = "empty"
	}
	h.metrics.SessionsTotal.WithLabelValues(status).Inc()
	h.metrics.EventsDecoded.Add(float64(res.Decoded))
	h.metrics.RecordsDropped.Add(float64(res.Dropped))
	h.metrics.AnalyzeDuration.Observe(elapsed.Seconds())
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
