package pipeline

import (
	"math"

	"github.com/GoSim-25-26J-441/optimizer-core/pkg/models"
)

// Thresholds holds the quality-gate levels a run is judged against.
// Gates only report; they never retry or abort anything on their own.
type Thresholds struct {
	// MinFeasibleRatio is the fraction of DOE samples that must satisfy
	// all constraints before the surrogate fit is trusted.
	MinFeasibleRatio float64 `yaml:"min_feasible_ratio"`
	// MinR2 is the leave-one-out R^2 below which a per-objective
	// surrogate is flagged.
	MinR2 float64 `yaml:"min_r2"`
	// MaxVerificationError is the relative error between a candidate's
	// predicted and ground-truth objective above which it is flagged.
	MaxVerificationError float64 `yaml:"max_verification_error"`
}

// DefaultThresholds returns the gate levels used when the operator does
// not override anything.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinFeasibleRatio:     0.3,
		MinR2:                0.7,
		MaxVerificationError: 0.15,
	}
}

// feasibilityGate judges the DOE feasible ratio.
func feasibilityGate(ratio float64, th Thresholds) models.GateSignal {
	return models.GateSignal{
		Metric:    models.MetricFeasibleRatio,
		Observed:  ratio,
		Threshold: th.MinFeasibleRatio,
		Passed:    ratio >= th.MinFeasibleRatio,
	}
}

// r2Gates judges each objective's leave-one-out R^2 score.
func r2Gates(scores map[string]float64, names []string, th Thresholds) []models.GateSignal {
	gates := make([]models.GateSignal, 0, len(names))
	for _, name := range names {
		score := scores[name]
		gates = append(gates, models.GateSignal{
			Metric:    models.MetricLOORSquared,
			Subject:   name,
			Observed:  score,
			Threshold: th.MinR2,
			Passed:    score >= th.MinR2,
		})
	}
	return gates
}

// verificationGates judges every candidate/objective pair after
// ground-truth verification. A candidate whose ground truth failed
// carries a NaN error and the gate fails with a null observation.
func verificationGates(candidates []models.Candidate, names []string, th Thresholds) []models.GateSignal {
	var gates []models.GateSignal
	for _, c := range candidates {
		for _, name := range names {
			relErr, ok := c.RelativeError[name]
			if !ok {
				relErr = math.NaN()
			}
			passed := models.IsNumeric(relErr) && relErr <= th.MaxVerificationError
			gates = append(gates, models.GateSignal{
				Metric:    models.MetricVerificationError,
				Subject:   c.Label + "/" + name,
				Observed:  relErr,
				Threshold: th.MaxVerificationError,
				Passed:    passed,
			})
		}
	}
	return gates
}
