package optd

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/GoSim-25-26J-441/optimizer-core/internal/pipeline"
	"github.com/GoSim-25-26J-441/optimizer-core/internal/sim"
	"github.com/GoSim-25-26J-441/optimizer-core/pkg/logger"
)

var (
	ErrRunNotFound  = errors.New("run not found")
	ErrRunTerminal  = errors.New("run is terminal")
	ErrRunIDMissing = errors.New("run_id is required")
)

// RunExecutor manages asynchronous pipeline execution and per-run
// cancellation. Each run acquires its own simulator session from the
// factory and releases it when the run ends.
type RunExecutor struct {
	store   *RunStore
	factory sim.EvaluatorFactory
	opts    pipeline.Options

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
	wg      sync.WaitGroup
}

func NewRunExecutor(store *RunStore, factory sim.EvaluatorFactory, opts pipeline.Options) *RunExecutor {
	return &RunExecutor{
		store:   store,
		factory: factory,
		opts:    opts,
		cancels: make(map[string]context.CancelFunc),
	}
}

// Start begins executing a run asynchronously. Starting a running run is
// a no-op; starting a terminal run is an error.
func (e *RunExecutor) Start(runID string) (*RunRecord, error) {
	if runID == "" {
		return nil, ErrRunIDMissing
	}

	rec, ok := e.store.Get(runID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if rec.Status == StatusRunning {
		return rec, nil
	}
	if rec.Status.Terminal() {
		return nil, fmt.Errorf("%w: %s", ErrRunTerminal, runID)
	}

	updated, err := e.store.SetStatus(runID, StatusRunning, "")
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.mu.Lock()
	if old, exists := e.cancels[runID]; exists {
		old()
	}
	e.cancels[runID] = cancel
	e.mu.Unlock()

	e.wg.Add(1)
	go e.runPipeline(ctx, runID, rec)
	return updated, nil
}

// Stop requests cancellation for a running run and marks it cancelled.
func (e *RunExecutor) Stop(runID string) (*RunRecord, error) {
	if runID == "" {
		return nil, ErrRunIDMissing
	}

	e.mu.Lock()
	cancel, ok := e.cancels[runID]
	e.mu.Unlock()
	if ok {
		cancel()
	}

	updated, err := e.store.SetStatus(runID, StatusCancelled, "")
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return updated, nil
}

// Wait blocks until every started run has finished. Used on shutdown.
func (e *RunExecutor) Wait() {
	e.wg.Wait()
}

func (e *RunExecutor) cleanup(runID string) {
	e.mu.Lock()
	if cancel, ok := e.cancels[runID]; ok {
		cancel()
		delete(e.cancels, runID)
	}
	e.mu.Unlock()
}

func (e *RunExecutor) runPipeline(ctx context.Context, runID string, rec *RunRecord) {
	defer e.wg.Done()
	defer e.cleanup(runID)

	evaluator, err := e.factory()
	if err != nil {
		logger.Error("acquiring simulator failed", "run_id", runID, "error", err)
		e.store.SetStatus(runID, StatusFailed, err.Error())
		return
	}
	session := sim.NewSession(evaluator)
	defer session.Close()

	result, err := pipeline.New(session, e.opts).Run(ctx, rec.Problem)
	if result != nil {
		e.store.SetResult(runID, result)
	}

	switch {
	case err == nil:
		e.store.SetStatus(runID, StatusCompleted, "")
		logger.Info("run completed", "run_id", runID)
	case errors.Is(err, context.Canceled):
		// Stop already set the cancelled status.
		logger.Info("run cancelled", "run_id", runID)
	default:
		e.store.SetStatus(runID, StatusFailed, err.Error())
		logger.Error("run failed", "run_id", runID, "error", err)
	}
}
