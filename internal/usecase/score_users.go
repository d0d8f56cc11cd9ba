package usecase

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/replaysight/replaysight/internal/domain"
	"github.com/replaysight/replaysight/internal/scoring"
)

// ScoreUsersUseCase orchestrates one scoring run: dispatch all registered
// detectors concurrently, await them together, then merge their reports
// serially into the ranked priority queue.
type ScoreUsersUseCase struct {
	engine    *scoring.Engine
	detectors []domain.Detector
	logger    *slog.Logger
}

// NewScoreUsersUseCase creates the use case over an injected scoring engine
// and detector set.
func NewScoreUsersUseCase(engine *scoring.Engine, detectors []domain.Detector, logger *slog.Logger) *ScoreUsersUseCase {
	return &ScoreUsersUseCase{
		engine:    engine,
		detectors: detectors,
		logger:    logger,
	}
}

// Run executes every detector and builds the queue. A failing detector never
// aborts the run: its contribution is absent and reported as a partial
// failure on the result.
func (uc *ScoreUsersUseCase) Run(ctx context.Context, minScore float64, limit int) domain.ScoringRunResult {
	type outcome struct {
		name   string
		report []domain.UserSignals
		err    error
	}

	outcomes := make([]outcome, len(uc.detectors))
	var wg sync.WaitGroup
	for i, det := range uc.detectors {
		wg.Add(1)
		go func(i int, det domain.Detector) {
			defer wg.Done()
			report, err := det.Detect(ctx)
			outcomes[i] = outcome{name: det.Name(), report: report, err: err}
		}(i, det)
	}
	wg.Wait()

	result := domain.ScoringRunResult{RunID: uuid.NewString()}

	// The merge performs read-modify-write per user id and stays on this
	// goroutine.
	acc := make(map[string]*domain.UserSignalProfile)
	for _, o := range outcomes {
		if o.err != nil {
			uc.logger.Warn("detector failed, skipping its contribution", "detector", o.name, "error", o.err)
			result.Failures = append(result.Failures, domain.DetectorFailure{Detector: o.name, Error: o.err.Error()})
			continue
		}
		uc.engine.Merge(acc, o.report)
	}

	result.Queue = uc.engine.Rank(acc, minScore, limit)
	uc.logger.Info("scoring run complete",
		"run_id", result.RunID,
		"detectors", len(uc.detectors),
		"failures", len(result.Failures),
		"queue_size", len(result.Queue),
	)
	return result
}

// ScoreReports builds a queue from externally collected per-detector reports,
// the path used when detectors run outside this process and post their signal
// lists.
func (uc *ScoreUsersUseCase) ScoreReports(reports [][]domain.UserSignals, minScore float64, limit int) []domain.PriorityQueueEntry {
	return uc.engine.BuildQueue(reports, minScore, limit)
}
