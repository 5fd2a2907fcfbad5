// Package pipeline ties the stages of an optimization run together:
// sample the design space, collect ground truth, fit the surrogate,
// search it for the Pareto front, select candidates, and verify them
// against the simulator. Quality gates annotate the result at each
// stage; the pipeline never retries a stage on its own.
package pipeline

import (
	"context"
	"fmt"

	"github.com/GoSim-25-26J-441/optimizer-core/internal/doe"
	"github.com/GoSim-25-26J-441/optimizer-core/internal/pareto"
	"github.com/GoSim-25-26J-441/optimizer-core/internal/sim"
	"github.com/GoSim-25-26J-441/optimizer-core/internal/surrogate"
	"github.com/GoSim-25-26J-441/optimizer-core/pkg/config"
	"github.com/GoSim-25-26J-441/optimizer-core/pkg/logger"
	"github.com/GoSim-25-26J-441/optimizer-core/pkg/models"
)

// Options configures a pipeline run.
type Options struct {
	// SampleCount is the number of DOE points evaluated against the
	// simulator before the surrogate is fitted.
	SampleCount int
	// Seed drives both the DOE and the Pareto search.
	Seed   int64
	Search pareto.Params
	Gates  Thresholds
}

// DefaultOptions returns the options used when the operator does not
// override anything.
func DefaultOptions() Options {
	return Options{
		SampleCount: 20,
		Seed:        42,
		Search:      pareto.DefaultParams(),
		Gates:       DefaultThresholds(),
	}
}

// Result is everything a finished (or partially finished) run produced.
// When Run returns an error the result still carries the stages that
// completed before the failure.
type Result struct {
	Problem       *config.Problem      `json:"problem"`
	Samples       []models.Sample      `json:"samples"`
	FeasibleRatio float64              `json:"feasible_ratio"`
	R2            map[string]float64   `json:"r2,omitempty"`
	Front         *models.ParetoResult `json:"front,omitempty"`
	Candidates    []models.Candidate   `json:"candidates,omitempty"`
	Gates         []models.GateSignal  `json:"gates,omitempty"`
}

// Orchestrator runs the full pipeline against one simulator session.
// The session must be open for the whole run; the caller owns its
// lifetime and closes it afterwards.
type Orchestrator struct {
	session *sim.Session
	opts    Options
}

func New(session *sim.Session, opts Options) *Orchestrator {
	if opts.SampleCount <= 0 {
		opts.SampleCount = DefaultOptions().SampleCount
	}
	return &Orchestrator{session: session, opts: opts}
}

// Run executes sample, collect, fit, search, select, and verify in
// order. Gate signals accumulate on the result as each stage finishes.
func (o *Orchestrator) Run(ctx context.Context, problem *config.Problem) (*Result, error) {
	result := &Result{Problem: problem}

	vectors, err := doe.GenerateLHS(problem, o.opts.SampleCount, o.opts.Seed)
	if err != nil {
		return result, fmt.Errorf("sampling design space: %w", err)
	}

	collector := doe.NewCollector(o.session)
	samples, err := collector.RunDOE(ctx, problem, vectors)
	result.Samples = samples
	if err != nil {
		return result, fmt.Errorf("collecting ground truth: %w", err)
	}
	result.FeasibleRatio = doe.FeasibleRatio(samples)
	result.Gates = append(result.Gates, feasibilityGate(result.FeasibleRatio, o.opts.Gates))

	model := surrogate.New()
	if err := model.Fit(samples, problem); err != nil {
		return result, fmt.Errorf("fitting surrogate: %w", err)
	}
	scores, err := model.R2Scores()
	if err != nil {
		return result, fmt.Errorf("scoring surrogate: %w", err)
	}
	result.R2 = scores
	result.Gates = append(result.Gates, r2Gates(scores, problem.ObjectiveNames(), o.opts.Gates)...)

	search := o.opts.Search
	if search.Seed == 0 {
		search.Seed = o.opts.Seed
	}
	front, err := pareto.Run(model, problem, search)
	if err != nil {
		return result, fmt.Errorf("searching surrogate: %w", err)
	}
	result.Front = front
	if len(front.Points) == 0 {
		return result, fmt.Errorf("search produced an empty front")
	}

	result.Candidates = pareto.SelectTop3(front, problem)
	if err := Verify(ctx, o.session, problem, result.Candidates); err != nil {
		return result, fmt.Errorf("verifying candidates: %w", err)
	}
	result.Gates = append(result.Gates,
		verificationGates(result.Candidates, problem.ObjectiveNames(), o.opts.Gates)...)

	logger.Info("pipeline run finished",
		"design", problem.Design,
		"samples", len(result.Samples),
		"feasible_ratio", result.FeasibleRatio,
		"front_size", len(front.Points),
		"candidates", len(result.Candidates))
	return result, nil
}

// GatesPassed reports whether every gate signal on the result passed.
func (r *Result) GatesPassed() bool {
	for _, g := range r.Gates {
		if !g.Passed {
			return false
		}
	}
	return true
}
