package sim

import (
	"math"

	"github.com/GoSim-25-26J-441/optimizer-core/pkg/config"
	"github.com/GoSim-25-26J-441/optimizer-core/pkg/models"
)

// CheckConstraint reports whether a single constraint is satisfied by the
// extracted scalar. A non-numeric scalar is always a violation, regardless
// of operator or threshold. GE and LE are boundary-inclusive; EQ uses a
// relative tolerance of config.EqualityRelTol.
func CheckConstraint(c config.Constraint, value float64) bool {
	if !models.IsNumeric(value) {
		return false
	}
	switch c.Operator {
	case config.OperatorGE:
		return value >= c.Threshold
	case config.OperatorLE:
		return value <= c.Threshold
	case config.OperatorEQ:
		return math.Abs(value-c.Threshold) <= config.EqualityRelTol*math.Max(1, math.Abs(c.Threshold))
	default:
		return false
	}
}

// SampleFeasible reports whether a collected sample counts as feasible:
// every constraint satisfied and every objective scalar numeric. A failed
// evaluation records NaN for all outputs and is therefore never feasible,
// even on a problem with no constraints.
func SampleFeasible(problem *config.Problem, outputs models.OutputMap) bool {
	for _, obj := range problem.Objectives {
		if !models.IsNumeric(outputs[obj.Name]) {
			return false
		}
	}
	return CheckFeasible(problem.Constraints, outputs)
}

// CheckFeasible reports whether every constraint is satisfied by the given
// outputs. Vacuously true when the problem has no constraints. A missing
// output counts as non-numeric and therefore as a violation.
func CheckFeasible(constraints []config.Constraint, outputs models.OutputMap) bool {
	for _, c := range constraints {
		value, ok := outputs[c.Name]
		if !ok {
			return false
		}
		if !CheckConstraint(c, value) {
			return false
		}
	}
	return true
}
