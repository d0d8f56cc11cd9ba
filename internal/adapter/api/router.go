package api

import (
	"log/slog"
	"net/http"

	"github.com/replaysight/replaysight/internal/adapter/api/handler"
	"github.com/replaysight/replaysight/internal/adapter/api/middleware"
	"github.com/replaysight/replaysight/internal/adapter/metrics"
	"github.com/replaysight/replaysight/internal/pkg/config"
	"github.com/replaysight/replaysight/internal/usecase"
)

// NewRouter creates and configures the main HTTP router for the analyzer
// service.
func NewRouter(
	cfg *config.Config,
	logger *slog.Logger,
	analyzeUseCase *usecase.AnalyzeSessionUseCase,
	scoreUseCase *usecase.ScoreUsersUseCase,
	m *metrics.AnalyzerMetrics,
) http.Handler {
	mux := http.NewServeMux()

	analyzeHandler := handler.NewAnalyzeHandler(analyzeUseCase, logger, m, cfg.MaxBodySize, cfg.SessionWorkers)
	scoreHandler := handler.NewScoreHandler(scoreUseCase, logger, m, cfg.MaxBodySize)

	rateLimit := middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, logger)

	mux.Handle("POST /v1/sessions/analyze", rateLimit(http.HandlerFunc(analyzeHandler.HandleSession)))
	mux.Handle("POST /v1/sessions/analyze-batch", rateLimit(http.HandlerFunc(analyzeHandler.HandleBatch)))
	mux.Handle("POST /v1/scoring/run", rateLimit(scoreHandler))

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return mux
}
