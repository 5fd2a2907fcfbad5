package config

import (
	"fmt"
	"os"
)

// LoadProblem loads and parses a problem definition file
func LoadProblem(path string) (*Problem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read problem file %s: %w", path, err)
	}
	problem, err := ParseProblemYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse problem file %s: %w", path, err)
	}
	return problem, nil
}

// validateProblem performs validation on a problem definition.
// All degenerate-input errors are reported here, before any expensive
// evaluation takes place.
func validateProblem(p *Problem) error {
	if len(p.Objectives) == 0 {
		return fmt.Errorf("at least one objective must be defined")
	}

	names := make(map[string]bool)

	for i, v := range p.Variables {
		if v.Name == "" {
			return fmt.Errorf("variable %d: name cannot be empty", i)
		}
		if names[v.Name] {
			return fmt.Errorf("duplicate variable name: %s", v.Name)
		}
		names[v.Name] = true
		if v.LowerBound > v.UpperBound {
			return fmt.Errorf("variable %s: lower_bound %g exceeds upper_bound %g", v.Name, v.LowerBound, v.UpperBound)
		}
	}

	outputNames := make(map[string]bool)

	for i, o := range p.Objectives {
		if o.Name == "" {
			return fmt.Errorf("objective %d: name cannot be empty", i)
		}
		if outputNames[o.Name] {
			return fmt.Errorf("duplicate objective name: %s", o.Name)
		}
		outputNames[o.Name] = true
		if o.Series == "" {
			return fmt.Errorf("objective %s: series reference cannot be empty", o.Name)
		}
		if err := validateExtraction(o.Extraction); err != nil {
			return fmt.Errorf("objective %s: %w", o.Name, err)
		}
		switch o.Direction {
		case DirectionMaximize, DirectionMinimize:
		default:
			return fmt.Errorf("objective %s: invalid direction %q (must be maximize or minimize)", o.Name, o.Direction)
		}
	}

	for i, c := range p.Constraints {
		if c.Name == "" {
			return fmt.Errorf("constraint %d: name cannot be empty", i)
		}
		if outputNames[c.Name] {
			return fmt.Errorf("constraint name collides with another output: %s", c.Name)
		}
		outputNames[c.Name] = true
		if c.Series == "" {
			return fmt.Errorf("constraint %s: series reference cannot be empty", c.Name)
		}
		if err := validateExtraction(c.Extraction); err != nil {
			return fmt.Errorf("constraint %s: %w", c.Name, err)
		}
		switch c.Operator {
		case OperatorGE, OperatorLE, OperatorEQ:
		default:
			return fmt.Errorf("constraint %s: invalid operator %q (must be ge, le, or eq)", c.Name, c.Operator)
		}
	}

	return nil
}

func validateExtraction(e Extraction) error {
	switch e {
	case ExtractionMax, ExtractionMin, ExtractionFinal, ExtractionMean:
		return nil
	default:
		return fmt.Errorf("invalid extraction %q (must be max, min, final, or mean)", e)
	}
}
