package sim

import (
	"context"
	"fmt"

	"github.com/GoSim-25-26J-441/optimizer-core/pkg/config"
)

// FuncEvaluator adapts plain Go functions to the Evaluator interface.
// Each series function receives the most recently applied design vector and
// returns a time series; returning nil signals a simulation failure for
// that run. Used by tests and embedded callers that have no external
// simulator process.
type FuncEvaluator struct {
	Series map[string]func(x []float64) []float64

	applied []float64
	closed  bool
}

// NewFuncEvaluator creates a function-backed evaluator.
func NewFuncEvaluator(series map[string]func(x []float64) []float64) *FuncEvaluator {
	return &FuncEvaluator{Series: series}
}

// ApplyDesign records the design vector for the next Run.
func (e *FuncEvaluator) ApplyDesign(variables []config.DesignVariable, values []float64) error {
	if e.closed {
		return ErrSessionClosed
	}
	if len(variables) != len(values) {
		return fmt.Errorf("design vector length %d does not match variable count %d", len(values), len(variables))
	}
	e.applied = append([]float64(nil), values...)
	return nil
}

// Run evaluates every series function against the applied vector.
func (e *FuncEvaluator) Run(_ context.Context) (map[string][]float64, error) {
	if e.closed {
		return nil, ErrSessionClosed
	}
	if e.applied == nil {
		return nil, fmt.Errorf("no design applied")
	}
	out := make(map[string][]float64, len(e.Series))
	for name, fn := range e.Series {
		series := fn(e.applied)
		if series == nil {
			return nil, fmt.Errorf("series %s: simulation failed", name)
		}
		out[name] = series
	}
	return out, nil
}

// CurrentValues returns the applied vector keyed by variable name.
func (e *FuncEvaluator) CurrentValues(variables []config.DesignVariable) (map[string]float64, error) {
	if e.closed {
		return nil, ErrSessionClosed
	}
	if e.applied == nil {
		return nil, fmt.Errorf("no design applied")
	}
	out := make(map[string]float64, len(variables))
	for i, v := range variables {
		if i < len(e.applied) {
			out[v.Name] = e.applied[i]
		}
	}
	return out, nil
}

// Close marks the evaluator released.
func (e *FuncEvaluator) Close() error {
	e.closed = true
	return nil
}
