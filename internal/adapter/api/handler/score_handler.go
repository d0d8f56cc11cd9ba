package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/replaysight/replaysight/internal/adapter/metrics"
	"github.com/replaysight/replaysight/internal/domain"
	"github.com/replaysight/replaysight/internal/usecase"
)

// ScoreRequest carries per-detector signal reports collected elsewhere, plus
// ranking parameters.
type ScoreRequest struct {
	Reports  [][]domain.UserSignals `json:"reports"`
	MinScore float64                `json:"minScore,omitempty"`
	Limit    int                    `json:"limit,omitempty"`
}

// ScoreResponse is the ranked queue for one run.
type ScoreResponse struct {
	RunID string                      `json:"runId"`
	Queue []domain.PriorityQueueEntry `json:"queue"`
}

// ScoreHandler serves priority-queue builds from posted signal reports.
type ScoreHandler struct {
	useCase     *usecase.ScoreUsersUseCase
	logger      *slog.Logger
	metrics     *metrics.AnalyzerMetrics
	maxBodySize int64
}

// NewScoreHandler creates a ScoreHandler.
func NewScoreHandler(uc *usecase.ScoreUsersUseCase, logger *slog.Logger, m *metrics.AnalyzerMetrics, maxBodySize int64) *ScoreHandler {
	return &ScoreHandler{
		useCase:     uc,
		logger:      logger,
		metrics:     m,
		maxBodySize: maxBodySize,
	}
}

func (h *ScoreHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)

	var req ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	queue := h.useCase.ScoreReports(req.Reports, req.MinScore, req.Limit)
	h.metrics.ScoringRunsTotal.WithLabelValues("ok").Inc()
	h.metrics.QueueSize.Set(float64(len(queue)))

	writeJSON(w, h.logger, ScoreResponse{RunID: uuid.NewString(), Queue: queue})
}
