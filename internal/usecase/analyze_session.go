package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/replaysight/replaysight/internal/adapter/pii"
	"github.com/replaysight/replaysight/internal/domain"
	"github.com/replaysight/replaysight/internal/replay/decoder"
	"github.com/replaysight/replaysight/internal/replay/nodereg"
	"github.com/replaysight/replaysight/internal/replay/semantic"
	"github.com/replaysight/replaysight/internal/replay/signals"
)

// AnalyzeSessionUseCase runs the full replay pipeline for one session:
// decode raw records, build the node registry, fold the semantic narrative,
// synthesize behavioral flags.
type AnalyzeSessionUseCase struct {
	decoder    *decoder.Decoder
	redactor   *pii.Redactor
	opts       semantic.Options
	thresholds signals.Thresholds
	logger     *slog.Logger
}

// NewAnalyzeSessionUseCase creates the use case. Options and thresholds are
// injected so deployments can retune detection without code changes.
func NewAnalyzeSessionUseCase(redactor *pii.Redactor, opts semantic.Options, thresholds signals.Thresholds, logger *slog.Logger) *AnalyzeSessionUseCase {
	return &AnalyzeSessionUseCase{
		decoder:    decoder.New(logger),
		redactor:   redactor,
		opts:       opts,
		thresholds: thresholds,
		logger:     logger,
	}
}

// AnalyzeResult pairs the session output with decode statistics.
type AnalyzeResult struct {
	Session domain.SemanticSession
	Decoded int
	Dropped int
}

// Analyze processes one session's raw records. An empty or nil record list
// yields a well-defined empty session, never an error. All state is local to
// the call, so Analyze is safe to run concurrently for different sessions.
func (uc *AnalyzeSessionUseCase) Analyze(ctx context.Context, records []json.RawMessage) AnalyzeResult {
	events, dropped := uc.decoder.Normalize(records)

	registry := nodereg.New(uc.redactor)
	logger := semantic.New(registry, uc.redactor, uc.opts, uc.logger)
	session := logger.Run(events)
	session.BehavioralSignals = signals.Synthesize(session.Summary, uc.thresholds)

	return AnalyzeResult{Session: session, Decoded: len(events), Dropped: dropped}
}

// AnalyzeBatch analyzes many sessions concurrently under a caller-supplied
// worker limit. Results are positionally aligned with the input. A limit
// below one runs everything sequentially.
func (uc *AnalyzeSessionUseCase) AnalyzeBatch(ctx context.Context, sessions [][]json.RawMessage, limit int) []AnalyzeResult {
	results := make([]AnalyzeResult, len(sessions))
	if len(sessions) == 0 {
		return results
	}
	if limit < 1 {
		limit = 1
	}

	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup
	for i := range sessions {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = uc.Analyze(ctx, sessions[i])
		}(i)
	}
	wg.Wait()
	return results
}
