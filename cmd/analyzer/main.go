package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/replaysight/replaysight/internal/adapter/api"
	"github.com/replaysight/replaysight/internal/adapter/api/middleware"
	"github.com/replaysight/replaysight/internal/adapter/metrics"
	"github.com/replaysight/replaysight/internal/adapter/pii"
	"github.com/replaysight/replaysight/internal/pkg/config"
	"github.com/replaysight/replaysight/internal/pkg/logger"
	"github.com/replaysight/replaysight/internal/replay/semantic"
	"github.com/replaysight/replaysight/internal/replay/signals"
	"github.com/replaysight/replaysight/internal/scoring"
	"github.com/replaysight/replaysight/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	m := metrics.NewAnalyzerMetrics()

	// --- Metrics Server ---
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{
		Addr:    cfg.MetricsAddr,
		Handler: metricsMux,
	}

	go func() {
		log.Info("starting metrics server", "addr", metricsServer.Addr)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("metrics server failed", "error", err)
		}
	}()

	// --- Graceful Shutdown Context ---
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Scoring Configuration ---
	weights := scoring.DefaultWeightTable()
	recency := scoring.DefaultRecencyBreakpoints()
	if cfg.WeightConfigPath != "" {
		weights, recency, err = scoring.LoadWeightConfig(cfg.WeightConfigPath)
		if err != nil {
			log.Error("failed to load weight config", "error", err, "path", cfg.WeightConfigPath)
			os.Exit(1)
		}
		log.Info("loaded weight config", "path", cfg.WeightConfigPath)
	}

	// --- Initialize Use Cases ---
	redactor := pii.NewRedactor(cfg.PIIRedaction)
	analyzeUseCase := usecase.NewAnalyzeSessionUseCase(redactor, semantic.DefaultOptions(), signals.DefaultThresholds(), log)
	scoreUseCase := usecase.NewScoreUsersUseCase(scoring.NewEngine(weights, recency), nil, log)

	// --- Initialize API Server ---
	router := api.NewRouter(cfg, log, analyzeUseCase, scoreUseCase, m)
	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      middleware.Logging(log)(router),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("starting analyzer server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("analyzer server failed", "error", err)
			stop() // Trigger shutdown on server error
		}
	}()

	// --- Wait for shutdown signal ---
	<-ctx.Done()
	log.Info("shutting down servers...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Error("metrics server shutdown failed", "error", err)
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("analyzer server shutdown failed", "error", err)
	}

	log.Info("servers shut down gracefully")
}
