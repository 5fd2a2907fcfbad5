package sim

import (
	"context"
	"errors"
	"math"
	"sync"

	"github.com/GoSim-25-26J-441/optimizer-core/pkg/config"
	"github.com/GoSim-25-26J-441/optimizer-core/pkg/logger"
	"github.com/GoSim-25-26J-441/optimizer-core/pkg/models"
)

// Evaluator is the capability an external simulator supplies. ApplyDesign
// mutates the simulator's live design in place; Run executes one simulation
// and returns the named time series the problem references. Implementations
// are not safe for concurrent use.
type Evaluator interface {
	// ApplyDesign sets the design variable values on the live design.
	ApplyDesign(variables []config.DesignVariable, values []float64) error
	// Run executes one simulation and returns its time series by name.
	Run(ctx context.Context) (map[string][]float64, error)
	// CurrentValues reads back the current value of each variable.
	CurrentValues(variables []config.DesignVariable) (map[string]float64, error)
	// Close releases the underlying simulator resource.
	Close() error
}

// EvaluatorFactory creates a fresh evaluator for one pipeline run.
type EvaluatorFactory func() (Evaluator, error)

// ErrSessionClosed is returned by session operations after Close.
var ErrSessionClosed = errors.New("simulator session is closed")

// Session wraps an acquired simulator as a scoped, process-wide singleton
// resource. All evaluations are serialized through the session mutex because
// the underlying simulator is not reentrant. The session must be held for
// every ground-truth evaluation of a run (the DOE batch and the verification
// batch) and cannot be reopened once closed.
type Session struct {
	mu     sync.Mutex
	ev     Evaluator
	closed bool
}

// NewSession wraps an acquired evaluator in a session. The caller owns the
// session and must Close it on every exit path.
func NewSession(ev Evaluator) *Session {
	return &Session{ev: ev}
}

// Close releases the simulator resource. Safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.ev.Close()
}

// Evaluate applies the design vector, runs one simulation, and extracts one
// scalar per objective and constraint. Any failure along the way yields NaN
// for every output name; failures never propagate as errors because a failed
// sample is a legitimate (infeasible) data point.
func (s *Session) Evaluate(ctx context.Context, problem *config.Problem, x []float64) models.OutputMap {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		logger.Warn("evaluate called on closed session")
		return FailedOutputs(problem)
	}

	rounded := problem.RoundIntegers(x)
	if err := s.ev.ApplyDesign(problem.Variables, rounded); err != nil {
		logger.Warn("apply design failed", "error", err)
		return FailedOutputs(problem)
	}

	series, err := s.ev.Run(ctx)
	if err != nil {
		logger.Warn("simulation run failed", "error", err)
		return FailedOutputs(problem)
	}

	outputs := make(models.OutputMap, problem.NObj()+problem.NConstr())
	for _, obj := range problem.Objectives {
		data, ok := series[obj.Series]
		if !ok {
			logger.Warn("series missing from simulation output", "series", obj.Series)
			return FailedOutputs(problem)
		}
		outputs[obj.Name] = ExtractScalar(data, obj.Extraction)
	}
	for _, con := range problem.Constraints {
		data, ok := series[con.Series]
		if !ok {
			logger.Warn("series missing from simulation output", "series", con.Series)
			return FailedOutputs(problem)
		}
		outputs[con.Name] = ExtractScalar(data, con.Extraction)
	}
	return outputs
}

// CurrentValues reads the current design values from the live design.
func (s *Session) CurrentValues(problem *config.Problem) (map[string]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSessionClosed
	}
	return s.ev.CurrentValues(problem.Variables)
}

// FailedOutputs returns the all-NaN output map recorded for a failed
// evaluation: one non-numeric entry per objective and constraint name.
func FailedOutputs(problem *config.Problem) models.OutputMap {
	outputs := make(models.OutputMap, problem.NObj()+problem.NConstr())
	for _, name := range problem.OutputNames() {
		outputs[name] = math.NaN()
	}
	return outputs
}
