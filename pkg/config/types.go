package config

import "math"

// Extraction reduces a named time series to a single scalar.
type Extraction string

const (
	ExtractionMax   Extraction = "max"
	ExtractionMin   Extraction = "min"
	ExtractionFinal Extraction = "final"
	ExtractionMean  Extraction = "mean"
)

// Direction indicates whether an objective is maximized or minimized.
type Direction string

const (
	DirectionMaximize Direction = "maximize"
	DirectionMinimize Direction = "minimize"
)

// Operator is a constraint comparison operator.
type Operator string

const (
	OperatorGE Operator = "ge"
	OperatorLE Operator = "le"
	OperatorEQ Operator = "eq"
)

// EqualityRelTol is the relative tolerance applied to EQ constraints.
const EqualityRelTol = 1e-6

// DesignVariable describes one controllable property of the external design.
// Component and Property are opaque handles interpreted by the evaluator;
// the core only cares about bounds and flags.
type DesignVariable struct {
	Name               string  `yaml:"name"`
	Component          string  `yaml:"component,omitempty"`
	Property           string  `yaml:"property,omitempty"`
	LowerBound         float64 `yaml:"lower_bound"`
	UpperBound         float64 `yaml:"upper_bound"`
	Unit               string  `yaml:"unit,omitempty"`
	IsInteger          bool    `yaml:"is_integer,omitempty"`
	IsSimulationOption bool    `yaml:"is_simulation_option,omitempty"`
}

// ObjectiveFunction is an optimization target extracted from a named
// simulation time series.
type ObjectiveFunction struct {
	Name       string     `yaml:"name"`
	Series     string     `yaml:"series"`
	Extraction Extraction `yaml:"extraction"`
	Direction  Direction  `yaml:"direction"`
}

// Constraint is a feasibility condition on a simulation output.
type Constraint struct {
	Name       string     `yaml:"name"`
	Series     string     `yaml:"series"`
	Extraction Extraction `yaml:"extraction"`
	Operator   Operator   `yaml:"operator"`
	Threshold  float64    `yaml:"threshold"`
}

// Problem is a complete optimization problem definition. Variable order is
// load-bearing: index i of every design vector corresponds to Variables[i].
type Problem struct {
	// Design is an opaque handle to the external design artifact
	// (e.g. a design file path understood by the evaluator).
	Design      string              `yaml:"design,omitempty"`
	Variables   []DesignVariable    `yaml:"variables"`
	Objectives  []ObjectiveFunction `yaml:"objectives"`
	Constraints []Constraint        `yaml:"constraints,omitempty"`
}

// NVar returns the number of design variables
func (p *Problem) NVar() int {
	return len(p.Variables)
}

// NObj returns the number of objectives
func (p *Problem) NObj() int {
	return len(p.Objectives)
}

// NConstr returns the number of constraints
func (p *Problem) NConstr() int {
	return len(p.Constraints)
}

// LowerBounds returns the per-index lower bound vector
func (p *Problem) LowerBounds() []float64 {
	bounds := make([]float64, len(p.Variables))
	for i, v := range p.Variables {
		bounds[i] = v.LowerBound
	}
	return bounds
}

// UpperBounds returns the per-index upper bound vector
func (p *Problem) UpperBounds() []float64 {
	bounds := make([]float64, len(p.Variables))
	for i, v := range p.Variables {
		bounds[i] = v.UpperBound
	}
	return bounds
}

// OutputNames returns all objective and constraint names in problem order.
// This is the full set of keys an evaluation produces.
func (p *Problem) OutputNames() []string {
	names := make([]string, 0, len(p.Objectives)+len(p.Constraints))
	for _, o := range p.Objectives {
		names = append(names, o.Name)
	}
	for _, c := range p.Constraints {
		names = append(names, c.Name)
	}
	return names
}

// ObjectiveNames returns the objective names in problem order
func (p *Problem) ObjectiveNames() []string {
	names := make([]string, len(p.Objectives))
	for i, o := range p.Objectives {
		names[i] = o.Name
	}
	return names
}

// RoundIntegers returns a copy of x with integer-flagged dimensions rounded
// to the nearest integer. Non-integer dimensions pass through unchanged.
func (p *Problem) RoundIntegers(x []float64) []float64 {
	out := make([]float64, len(x))
	copy(out, x)
	for i, v := range p.Variables {
		if i >= len(out) {
			break
		}
		if v.IsInteger {
			out[i] = math.Round(out[i])
		}
	}
	return out
}
