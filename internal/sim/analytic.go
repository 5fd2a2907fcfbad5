package sim

import (
	"context"
	"fmt"
	"math"

	"gopkg.in/yaml.v3"

	"github.com/GoSim-25-26J-441/optimizer-core/pkg/config"
)

// ResponseTerm is one additive term of an analytic response:
// coef * value(var)^power. A zero power is treated as 1 so problem files
// may omit it for linear terms.
type ResponseTerm struct {
	Var   string  `yaml:"var"`
	Coef  float64 `yaml:"coef"`
	Power float64 `yaml:"power,omitempty"`
}

// ProductTerm is a coefficient times the product of several variable values.
type ProductTerm struct {
	Vars []string `yaml:"vars"`
	Coef float64  `yaml:"coef"`
}

// ResponseSpec defines one named output series as a closed-form function of
// the applied design values.
type ResponseSpec struct {
	Constant float64        `yaml:"constant,omitempty"`
	Terms    []ResponseTerm `yaml:"terms,omitempty"`
	Products []ProductTerm  `yaml:"products,omitempty"`
}

// AnalyticSpec configures an AnalyticEvaluator from yaml.
type AnalyticSpec struct {
	Responses map[string]ResponseSpec `yaml:"responses"`
}

// ParseAnalyticYAML parses and validates an analytic evaluator spec.
func ParseAnalyticYAML(data []byte) (*AnalyticSpec, error) {
	var spec AnalyticSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("failed to parse analytic spec yaml: %w", err)
	}
	if len(spec.Responses) == 0 {
		return nil, fmt.Errorf("invalid analytic spec: at least one response must be defined")
	}
	for name, resp := range spec.Responses {
		for i, term := range resp.Terms {
			if term.Var == "" {
				return nil, fmt.Errorf("invalid analytic spec: response %s term %d has no var", name, i)
			}
		}
		for i, prod := range resp.Products {
			if len(prod.Vars) == 0 {
				return nil, fmt.Errorf("invalid analytic spec: response %s product %d has no vars", name, i)
			}
		}
	}
	return &spec, nil
}

// AnalyticEvaluator is a built-in Evaluator computing closed-form responses
// from the applied design values. It stands in for an external simulator in
// the daemon default, demos, and end-to-end tests; real simulators implement
// the same interface out of tree.
type AnalyticEvaluator struct {
	spec   *AnalyticSpec
	values map[string]float64
	closed bool
}

// NewAnalyticEvaluator creates an analytic evaluator from a spec.
func NewAnalyticEvaluator(spec *AnalyticSpec) *AnalyticEvaluator {
	return &AnalyticEvaluator{
		spec:   spec,
		values: make(map[string]float64),
	}
}

// ApplyDesign records the design values by variable name.
func (e *AnalyticEvaluator) ApplyDesign(variables []config.DesignVariable, values []float64) error {
	if e.closed {
		return ErrSessionClosed
	}
	if len(variables) != len(values) {
		return fmt.Errorf("design vector length %d does not match variable count %d", len(values), len(variables))
	}
	for i, v := range variables {
		e.values[v.Name] = values[i]
	}
	return nil
}

// Run evaluates every response against the current design values. Responses
// are returned as single-point series; extraction modes all reduce them to
// the same scalar. Referencing an unapplied variable is an evaluation
// failure.
func (e *AnalyticEvaluator) Run(_ context.Context) (map[string][]float64, error) {
	if e.closed {
		return nil, ErrSessionClosed
	}
	series := make(map[string][]float64, len(e.spec.Responses))
	for name, resp := range e.spec.Responses {
		value, err := e.compute(resp)
		if err != nil {
			return nil, fmt.Errorf("response %s: %w", name, err)
		}
		series[name] = []float64{value}
	}
	return series, nil
}

func (e *AnalyticEvaluator) compute(resp ResponseSpec) (float64, error) {
	value := resp.Constant
	for _, term := range resp.Terms {
		x, ok := e.values[term.Var]
		if !ok {
			return 0, fmt.Errorf("variable %s has not been applied", term.Var)
		}
		power := term.Power
		if power == 0 {
			power = 1
		}
		value += term.Coef * math.Pow(x, power)
	}
	for _, prod := range resp.Products {
		p := prod.Coef
		for _, v := range prod.Vars {
			x, ok := e.values[v]
			if !ok {
				return 0, fmt.Errorf("variable %s has not been applied", v)
			}
			p *= x
		}
		value += p
	}
	return value, nil
}

// CurrentValues returns the currently applied value of each variable.
func (e *AnalyticEvaluator) CurrentValues(variables []config.DesignVariable) (map[string]float64, error) {
	if e.closed {
		return nil, ErrSessionClosed
	}
	out := make(map[string]float64, len(variables))
	for _, v := range variables {
		value, ok := e.values[v.Name]
		if !ok {
			return nil, fmt.Errorf("variable %s has not been applied", v.Name)
		}
		out[v.Name] = value
	}
	return out, nil
}

// Close marks the evaluator released.
func (e *AnalyticEvaluator) Close() error {
	e.closed = true
	return nil
}
